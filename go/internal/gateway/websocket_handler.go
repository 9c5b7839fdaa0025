package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/timers"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

// StateProvider supplies evaluated timer state for initial render and
// reconnect sync. Implemented by the timers App.
type StateProvider interface {
	TimerState(ctx context.Context, id uuid.UUID) (*timers.TimerState, error)
	ListTimerStates(ctx context.Context) []timers.TimerState
}

// WebSocketHandler handles WebSocket upgrade requests for timer
// subscriptions.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	state             StateProvider
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(cm *ConnectionManager, state StateProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		state:             state,
	}
}

// HandleTimerConnection handles WebSocket connections for a specific timer.
func (h *WebSocketHandler) HandleTimerConnection(w http.ResponseWriter, r *http.Request) {
	timerIDStr := r.URL.Query().Get("timer_id")
	if timerIDStr == "" {
		http.Error(w, "timer_id is required", http.StatusBadRequest)
		return
	}

	timerID, err := uuid.Parse(timerIDStr)
	if err != nil {
		http.Error(w, "invalid timer_id format", http.StatusBadRequest)
		return
	}

	state, err := h.state.TimerState(r.Context(), timerID)
	if err != nil {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, timerID)
	if err != nil {
		log.Error().
			Err(err).
			Str("timer_id", timerID.String()).
			Msg("failed to upgrade WebSocket connection")
		return
	}

	// Seed the client with the current state so it can render before the
	// first tick arrives.
	h.sendStateSync(conn, timerID, state)
}

// sendStateSync pushes a synthetic tick carrying the timer's current state
// to a newly connected client.
func (h *WebSocketHandler) sendStateSync(conn *Connection, timerID uuid.UUID, state *timers.TimerState) {
	now := time.Now()
	event, err := events.New(timerID, events.EventTypeTimerTick, now, events.TimerTickPayload{
		TimerID:      state.TimerID,
		Remaining:    state.Remaining,
		RemainingSec: state.RemainingSec,
		Progress:     state.Progress,
		EndsAt:       state.EndsAt,
		Running:      state.Running,
		Finished:     state.Finished,
		TickedAt:     now,
	})
	if err != nil {
		log.Error().Err(err).Str("timer_id", timerID.String()).Msg("failed to build state sync event")
		return
	}
	h.connectionManager.SendEvent(conn, event)
}

// HandleConnectionStats returns statistics about active connections.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	stats := h.connectionManager.GetConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/timer", h.HandleTimerConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
