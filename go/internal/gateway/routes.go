package gateway

import (
	"net/http"

	"github.com/google/uuid"
)

// RegisterAPIRoutes wires the timer state and control endpoints onto the
// mux:
//
//	GET    /api/timers               list evaluated timer states
//	POST   /api/timers               create a timer
//	GET    /api/timers/{id}          evaluated state of one timer
//	GET    /api/timers/{id}/state    same as above
//	DELETE /api/timers/{id}          remove a timer
//	POST   /api/timers/{id}/start    (re)start from the configured duration
//	POST   /api/timers/{id}/pause    pause (no-op when not running)
//	POST   /api/timers/{id}/resume   resume (no-op when not paused)
//	POST   /api/timers/{id}/reset    back to idle, duration kept
//	POST   /api/timers/{id}/duration set the configured duration
//	POST   /api/timers/{id}/add      add seconds to the countdown
func RegisterAPIRoutes(mux *http.ServeMux, state *StateHandler, control *ControlHandler) {
	mux.HandleFunc("/api/timers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			state.HandleListTimers(w, r)
		case http.MethodPost:
			control.HandleCreateTimer(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/timers/", func(w http.ResponseWriter, r *http.Request) {
		idStr, action, ok := extractTimerPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		timerID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid timer ID format", http.StatusBadRequest)
			return
		}

		switch action {
		case "", "state":
			switch {
			case r.Method == http.MethodGet:
				state.HandleGetTimerState(w, r, timerID)
			case r.Method == http.MethodDelete && action == "":
				control.HandleDeleteTimer(w, r, timerID)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case "start", "pause", "resume", "reset":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			control.HandleTimerIntent(w, r, timerID, action)
		case "duration":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			control.HandleSetDuration(w, r, timerID)
		case "add":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			control.HandleAddTime(w, r, timerID)
		default:
			http.NotFound(w, r)
		}
	})
}
