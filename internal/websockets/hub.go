package websockets

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"hwstats-agent/internal/logging"
	"hwstats-agent/internal/monitoring"
)

// WebSocketMessage is the envelope of every frame the server sends.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MessageTypeError carries a request the server could not interpret.
const MessageTypeError = "error"

// SnapshotSource assembles snapshots and reports each one to subscribers.
type SnapshotSource interface {
	Snapshot(ctx context.Context, mode monitoring.Mode) *monitoring.MetricSnapshot
	Subscribe(obs monitoring.SnapshotObserver)
}

// Hub tracks connected clients and fans every assembled snapshot out to them.
// A client that requests a snapshot gets it as a direct reply; the broadcast
// to everyone else is best effort.
type Hub struct {
	snapshots  SnapshotSource
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	replies    chan clientMessage
	done       chan struct{}
	count      atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
}

// clientMessage is addressed to a single client.
type clientMessage struct {
	client *Client
	data   []byte
}

// broadcastMessage goes to every client except the one that requested it.
type broadcastMessage struct {
	data    []byte
	exclude *Client
}

type requesterKey struct{}

func withRequester(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, requesterKey{}, c)
}

func requesterFrom(ctx context.Context) *Client {
	c, _ := ctx.Value(requesterKey{}).(*Client)
	return c
}

// NewHub creates a hub and subscribes it to source.
func NewHub(source SnapshotSource) *Hub {
	h := &Hub{
		snapshots:  source,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan clientMessage, 16),
		done:       make(chan struct{}),
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	source.Subscribe(h.Publish)
	return h
}

// Run handles registration and broadcast until ctx is cancelled, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.cancel()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int32(len(h.clients)))
			logging.LogInfo("WebSocket client connected", "client_id", client.id, "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				logging.LogInfo("WebSocket client disconnected", "client_id", client.id, "clients", len(h.clients))
			}
		case msg := <-h.replies:
			if _, ok := h.clients[msg.client]; ok {
				select {
				case msg.client.send <- msg.data:
				default:
					logging.LogWarn("WebSocket client too slow, dropping", "client_id", msg.client.id)
					h.remove(msg.client)
				}
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				if client == message.exclude {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					logging.LogWarn("WebSocket client too slow, dropping", "client_id", client.id)
					h.remove(client)
				}
			}
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int32(len(h.clients)))
}

// baseContext is cancelled when Run returns.
func (h *Hub) baseContext() context.Context {
	return h.ctx
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Publish queues a snapshot for every client other than its requester, which
// is answered directly. It never blocks; when the queue is full the snapshot
// is dropped.
func (h *Hub) Publish(ctx context.Context, mode monitoring.Mode, snapshot *monitoring.MetricSnapshot) {
	message, err := json.Marshal(WebSocketMessage{Type: string(mode), Data: snapshot})
	if err != nil {
		logging.LogError("Error marshalling snapshot", "error", err)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{data: message, exclude: requesterFrom(ctx)}:
	default:
		logging.LogDebug("Broadcast queue full, snapshot dropped", "mode", mode)
	}
}
