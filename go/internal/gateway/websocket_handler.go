package gateway

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for wheel connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	registry          *Registry
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, registry *Registry) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		registry:          registry,
	}
}

// HandleWheelConnection handles WebSocket connections for a specific wheel.
// The first message on the socket is a Snapshot of the wheel.
func (h *WebSocketHandler) HandleWheelConnection(w http.ResponseWriter, r *http.Request) {
	wheelIDStr := r.URL.Query().Get("wheel_id")
	if wheelIDStr == "" {
		http.Error(w, "wheel_id is required", http.StatusBadRequest)
		return
	}

	wheelID, err := uuid.Parse(wheelIDStr)
	if err != nil {
		http.Error(w, "invalid wheel_id format", http.StatusBadRequest)
		return
	}

	room, ok := h.registry.Get(wheelID)
	if !ok {
		http.Error(w, "wheel not found", http.StatusNotFound)
		return
	}

	// On failure the upgrader has already written an HTTP error response.
	if _, err := h.connectionManager.UpgradeConnection(w, r, wheelID, room.SnapshotEvent); err != nil {
		log.Error().
			Err(err).
			Str("wheel_id", wheelID.String()).
			Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/wheel", h.HandleWheelConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
