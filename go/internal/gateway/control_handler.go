package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/countdown"
	"github.com/mcdev12/countdown/go/internal/timers"
)

// ControlApp defines the user intents the control surface forwards to the
// timers App.
type ControlApp interface {
	CreateTimer(ctx context.Context, req timers.CreateTimerRequest) (*timers.Timer, error)
	DeleteTimer(ctx context.Context, id uuid.UUID) error
	StartTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error)
	PauseTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error)
	ResumeTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error)
	ResetTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error)
	SetTimerDuration(ctx context.Context, id uuid.UUID, seconds int) (countdown.Snapshot, error)
	AddTimerTime(ctx context.Context, id uuid.UUID, seconds int) (countdown.Snapshot, error)
}

// ControlHandler handles the mutating timer endpoints.
type ControlHandler struct {
	app   ControlApp
	state StateProvider
}

// NewControlHandler creates a new control handler.
func NewControlHandler(app ControlApp, state StateProvider) *ControlHandler {
	return &ControlHandler{app: app, state: state}
}

// CreateTimerBody is the request body for POST /api/timers. The duration
// can be given in seconds or as a clock string ("00:05:00"); the clock
// string wins when both are present.
type CreateTimerBody struct {
	Label       string `json:"label"`
	DurationSec int    `json:"duration_sec"`
	Duration    string `json:"duration"`
}

// SetDurationBody is the request body for POST /api/timers/{id}/duration.
type SetDurationBody struct {
	Seconds  int    `json:"seconds"`
	Duration string `json:"duration"`
}

// AddTimeBody is the request body for POST /api/timers/{id}/add.
type AddTimeBody struct {
	Seconds int `json:"seconds"`
}

// HandleCreateTimer handles POST /api/timers.
func (h *ControlHandler) HandleCreateTimer(w http.ResponseWriter, r *http.Request) {
	var body CreateTimerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	durationSec := body.DurationSec
	if body.Duration != "" {
		parsed, err := countdown.ParseClock(body.Duration)
		if err != nil {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		durationSec = parsed
	}

	timer, err := h.app.CreateTimer(r.Context(), timers.CreateTimerRequest{
		Label:       body.Label,
		DurationSec: durationSec,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create timer")
		http.Error(w, "failed to create timer", http.StatusInternalServerError)
		return
	}

	h.respondWithState(w, r, timer.ID, http.StatusCreated)
}

// HandleDeleteTimer handles DELETE /api/timers/{id}.
func (h *ControlHandler) HandleDeleteTimer(w http.ResponseWriter, r *http.Request, timerID uuid.UUID) {
	if err := h.app.DeleteTimer(r.Context(), timerID); err != nil {
		if errors.Is(err, timers.ErrTimerNotFound) {
			http.Error(w, "timer not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("timer_id", timerID.String()).Msg("failed to delete timer")
		http.Error(w, "failed to delete timer", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTimerIntent handles POST /api/timers/{id}/{start|pause|resume|reset}.
func (h *ControlHandler) HandleTimerIntent(w http.ResponseWriter, r *http.Request, timerID uuid.UUID, intent string) {
	var err error
	switch intent {
	case "start":
		_, err = h.app.StartTimer(r.Context(), timerID)
	case "pause":
		_, err = h.app.PauseTimer(r.Context(), timerID)
	case "resume":
		_, err = h.app.ResumeTimer(r.Context(), timerID)
	case "reset":
		_, err = h.app.ResetTimer(r.Context(), timerID)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		h.writeIntentError(w, timerID, intent, err)
		return
	}
	h.respondWithState(w, r, timerID, http.StatusOK)
}

// HandleSetDuration handles POST /api/timers/{id}/duration.
func (h *ControlHandler) HandleSetDuration(w http.ResponseWriter, r *http.Request, timerID uuid.UUID) {
	var body SetDurationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seconds := body.Seconds
	if body.Duration != "" {
		parsed, err := countdown.ParseClock(body.Duration)
		if err != nil {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		seconds = parsed
	}

	if _, err := h.app.SetTimerDuration(r.Context(), timerID, seconds); err != nil {
		h.writeIntentError(w, timerID, "duration", err)
		return
	}
	h.respondWithState(w, r, timerID, http.StatusOK)
}

// HandleAddTime handles POST /api/timers/{id}/add.
func (h *ControlHandler) HandleAddTime(w http.ResponseWriter, r *http.Request, timerID uuid.UUID) {
	var body AddTimeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.app.AddTimerTime(r.Context(), timerID, body.Seconds); err != nil {
		h.writeIntentError(w, timerID, "add", err)
		return
	}
	h.respondWithState(w, r, timerID, http.StatusOK)
}

// respondWithState replies to a successful mutation with the timer's fresh
// evaluated state, so controllers can render without a second round trip.
func (h *ControlHandler) respondWithState(w http.ResponseWriter, r *http.Request, timerID uuid.UUID, status int) {
	state, err := h.state.TimerState(r.Context(), timerID)
	if err != nil {
		log.Error().Err(err).Str("timer_id", timerID.String()).Msg("failed to fetch state after mutation")
		http.Error(w, "failed to fetch timer state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Str("timer_id", timerID.String()).Msg("failed to encode timer state response")
	}
}

func (h *ControlHandler) writeIntentError(w http.ResponseWriter, timerID uuid.UUID, intent string, err error) {
	if errors.Is(err, timers.ErrTimerNotFound) {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Str("timer_id", timerID.String()).Str("intent", intent).Msg("timer intent failed")
	http.Error(w, "timer intent failed", http.StatusInternalServerError)
}
