package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"hwstats-agent/internal/logging"
	"hwstats-agent/internal/monitoring"
)

// SnapshotSource assembles snapshots on demand. *monitoring.Assembler is the
// production implementation.
type SnapshotSource interface {
	Snapshot(ctx context.Context, mode monitoring.Mode) *monitoring.MetricSnapshot
	GPUAvailable() bool
	Platform() string
}

// Handler manages the dependencies of the stats handlers.
type Handler struct {
	Snapshots SnapshotSource
}

// NewHandler creates a new Handler instance.
func NewHandler(snapshots SnapshotSource) *Handler {
	return &Handler{Snapshots: snapshots}
}

// RegisterRoutes registers the stats routes on the mux router.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/stats", h.SnapshotHandler(monitoring.ModeLegacy)).Methods("GET")
	r.HandleFunc("/fullstats", h.SnapshotHandler(monitoring.ModeFull)).Methods("GET")
	r.HandleFunc("/minstats", h.SnapshotHandler(monitoring.ModeMinimal)).Methods("GET")
	r.HandleFunc("/healthz", h.HealthHandler).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// SnapshotHandler serves one snapshot of the given shape. Source failures
// degrade the body; the status is always 200.
func (h *Handler) SnapshotHandler(mode monitoring.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := h.Snapshots.Snapshot(r.Context(), mode)
		writeJSON(w, http.StatusOK, snapshot)
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	Platform     string `json:"platform"`
	GPUAvailable bool   `json:"gpu_available"`
}

// HealthHandler reports liveness without sampling any source.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Platform:     h.Snapshots.Platform(),
		GPUAvailable: h.Snapshots.GPUAvailable(),
	})
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.LogError("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}
