package websockets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"hwstats-agent/internal/logging"
	"hwstats-agent/internal/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client sits between the Hub and one WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type snapshotRequest struct {
	Type string `json:"type"`
}

// parseRequest accepts a bare mode ("fullstats") or {"type": "fullstats"}.
func parseRequest(payload []byte) (monitoring.Mode, bool) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var req snapshotRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return "", false
		}
		text = req.Type
	}
	return monitoring.ParseMode(text)
}

// writePump sends hub messages to the connection and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump turns incoming requests into snapshots and replies with each one.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.LogWarn("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}

		mode, ok := parseRequest(payload)
		if !ok {
			c.reply(WebSocketMessage{Type: MessageTypeError, Data: "unknown request " + strings.TrimSpace(string(payload))})
			continue
		}
		snapshot := c.hub.snapshots.Snapshot(withRequester(c.hub.baseContext(), c), mode)
		c.reply(WebSocketMessage{Type: string(mode), Data: snapshot})
	}
}

// reply goes through the hub, which owns the send channel.
func (c *Client) reply(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.LogError("Error marshalling reply", "client_id", c.id, "error", err)
		return
	}
	select {
	case c.hub.replies <- clientMessage{client: c, data: data}:
	case <-c.hub.done:
	}
}

// ServeWs upgrades the HTTP connection and registers the client with the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.LogWarn("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{id: uuid.NewString(), hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// RegisterRoutes mounts the WebSocket endpoint on /ws.
func RegisterRoutes(r *mux.Router, hub *Hub) {
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}).Methods("GET")
}
