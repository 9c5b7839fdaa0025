package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StateHandler handles HTTP requests for timer state.
type StateHandler struct {
	state StateProvider
}

// NewStateHandler creates a new state handler.
func NewStateHandler(state StateProvider) *StateHandler {
	return &StateHandler{state: state}
}

// HandleListTimers handles GET /api/timers.
func (h *StateHandler) HandleListTimers(w http.ResponseWriter, r *http.Request) {
	states := h.state.ListTimerStates(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(states); err != nil {
		log.Error().Err(err).Msg("failed to encode timer list response")
	}
}

// HandleGetTimerState handles GET /api/timers/{id}/state.
func (h *StateHandler) HandleGetTimerState(w http.ResponseWriter, r *http.Request, timerID uuid.UUID) {
	state, err := h.state.TimerState(r.Context(), timerID)
	if err != nil {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Str("timer_id", timerID.String()).Msg("failed to encode timer state response")
	}
}

// extractTimerPath splits a path like /api/timers/{id}[/{action}] into its
// ID and action parts. action is empty for the bare timer path.
func extractTimerPath(path string) (id string, action string, ok bool) {
	const prefix = "/api/timers/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
