package timers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/countdown"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

// App applies user intents to timers and emits the corresponding domain
// events. It is the single mutation path for the registry.
type App struct {
	repo       *Repository
	dispatcher *events.Dispatcher
	clock      clockwork.Clock
}

// NewApp creates a new timers App.
func NewApp(repo *Repository, dispatcher *events.Dispatcher, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:       repo,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// CreateTimerRequest holds the fields for creating a timer.
type CreateTimerRequest struct {
	Label       string `json:"label"`
	DurationSec int    `json:"duration_sec"`
}

// TimerState is the full view of a timer for rendering clients.
type TimerState struct {
	TimerID      string    `json:"timer_id"`
	Label        string    `json:"label"`
	Phase        string    `json:"phase"`
	Remaining    string    `json:"remaining"` // HH:MM:SS
	RemainingSec float64   `json:"remaining_sec"`
	Progress     float64   `json:"progress"`
	DurationSec  int       `json:"duration_sec"`
	EndsAt       time.Time `json:"ends_at"`
	Running      bool      `json:"running"`
	Finished     bool      `json:"finished"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTimer registers a new timer with the given label and duration.
func (a *App) CreateTimer(ctx context.Context, req CreateTimerRequest) (*Timer, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = "Timer"
	}

	timer := newTimer(uuid.New(), label, a.clock)
	timer.SetDuration(req.DurationSec)
	a.repo.Insert(timer)

	log.Info().
		Str("timer_id", timer.ID.String()).
		Str("label", label).
		Int("duration_sec", timer.DurationSec()).
		Msg("timer created")

	a.publish(ctx, timer.ID, events.EventTypeTimerCreated, events.TimerCreatedPayload{
		TimerID:     timer.ID.String(),
		Label:       label,
		DurationSec: timer.DurationSec(),
		CreatedAt:   timer.CreatedAt,
	})
	return timer, nil
}

// GetTimer returns the timer with the given ID.
func (a *App) GetTimer(ctx context.Context, id uuid.UUID) (*Timer, error) {
	return a.repo.Get(id)
}

// ListTimers returns all registered timers ordered by creation time.
func (a *App) ListTimers(ctx context.Context) []*Timer {
	return a.repo.List()
}

// DeleteTimer removes a timer from the registry.
func (a *App) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.Delete(id); err != nil {
		return fmt.Errorf("delete timer: %w", err)
	}

	log.Info().Str("timer_id", id.String()).Msg("timer deleted")

	a.publish(ctx, id, events.EventTypeTimerDeleted, events.TimerDeletedPayload{
		TimerID:   id.String(),
		DeletedAt: a.clock.Now(),
	})
	return nil
}

// StartTimer (re)starts a timer from its configured duration.
func (a *App) StartTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap := timer.Start()

	log.Info().
		Str("timer_id", id.String()).
		Dur("duration", snap.Total).
		Time("ends_at", snap.End).
		Msg("timer started")

	a.publish(ctx, id, events.EventTypeTimerStarted, events.TimerStartedPayload{
		TimerID:     id.String(),
		DurationSec: timer.DurationSec(),
		StartedAt:   snap.End.Add(-snap.Total),
		EndsAt:      snap.End,
	})
	return snap, nil
}

// PauseTimer pauses a running timer. Pausing an idle or already-paused
// timer is a no-op and emits no event.
func (a *App) PauseTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap, applied := timer.Pause()
	if !applied {
		return snap, nil
	}

	log.Info().
		Str("timer_id", id.String()).
		Dur("remaining", snap.Remaining).
		Msg("timer paused")

	a.publish(ctx, id, events.EventTypeTimerPaused, events.TimerPausedPayload{
		TimerID:      id.String(),
		PausedAt:     snap.Now,
		RemainingSec: snap.Remaining.Seconds(),
	})
	return snap, nil
}

// ResumeTimer resumes a paused timer. Resuming an idle or running timer is
// a no-op and emits no event.
func (a *App) ResumeTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap, applied := timer.Resume()
	if !applied {
		return snap, nil
	}

	log.Info().
		Str("timer_id", id.String()).
		Time("ends_at", snap.End).
		Msg("timer resumed")

	a.publish(ctx, id, events.EventTypeTimerResumed, events.TimerResumedPayload{
		TimerID:   id.String(),
		ResumedAt: a.clock.Now(),
		EndsAt:    snap.End,
	})
	return snap, nil
}

// ResetTimer returns a timer to idle, keeping its configured duration.
func (a *App) ResetTimer(ctx context.Context, id uuid.UUID) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap := timer.Reset()

	log.Info().Str("timer_id", id.String()).Msg("timer reset")

	a.publish(ctx, id, events.EventTypeTimerReset, events.TimerResetPayload{
		TimerID:     id.String(),
		DurationSec: timer.DurationSec(),
		ResetAt:     a.clock.Now(),
	})
	return snap, nil
}

// SetTimerDuration reconfigures a timer's duration, resetting any run in
// progress.
func (a *App) SetTimerDuration(ctx context.Context, id uuid.UUID, seconds int) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap := timer.SetDuration(seconds)

	log.Info().
		Str("timer_id", id.String()).
		Int("duration_sec", timer.DurationSec()).
		Msg("timer duration set")

	a.publish(ctx, id, events.EventTypeDurationSet, events.DurationSetPayload{
		TimerID:     id.String(),
		DurationSec: timer.DurationSec(),
		SetAt:       a.clock.Now(),
	})
	return snap, nil
}

// AddTimerTime adds seconds to a timer: a started timer's deadline moves
// out, an idle timer's configured duration grows. Non-positive seconds are
// a no-op and emit no event.
func (a *App) AddTimerTime(ctx context.Context, id uuid.UUID, seconds int) (countdown.Snapshot, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return countdown.Snapshot{}, err
	}

	snap, applied, wasStarted := timer.AddTime(seconds)
	if !applied {
		return snap, nil
	}

	payload := events.TimeAddedPayload{
		TimerID:  id.String(),
		AddedSec: seconds,
		AddedAt:  a.clock.Now(),
	}
	if wasStarted {
		endsAt := snap.End
		payload.EndsAt = &endsAt
	} else {
		durationSec := timer.DurationSec()
		payload.DurationSec = &durationSec
	}

	log.Info().
		Str("timer_id", id.String()).
		Int("added_sec", seconds).
		Bool("was_started", wasStarted).
		Msg("timer time added")

	a.publish(ctx, id, events.EventTypeTimeAdded, payload)
	return snap, nil
}

// TimerState evaluates a timer and returns its full rendering view.
func (a *App) TimerState(ctx context.Context, id uuid.UUID) (*TimerState, error) {
	timer, err := a.repo.Get(id)
	if err != nil {
		return nil, err
	}
	state := a.stateOf(timer)
	return &state, nil
}

// ListTimerStates evaluates every timer and returns their rendering views,
// ordered by creation time.
func (a *App) ListTimerStates(ctx context.Context) []TimerState {
	timers := a.repo.List()
	states := make([]TimerState, 0, len(timers))
	for _, timer := range timers {
		states = append(states, a.stateOf(timer))
	}
	return states
}

func (a *App) stateOf(timer *Timer) TimerState {
	snap, status := timer.Evaluate(a.clock.Now())
	return TimerState{
		TimerID:      timer.ID.String(),
		Label:        timer.Label,
		Phase:        status.Phase(),
		Remaining:    countdown.FormatClock(snap.Remaining),
		RemainingSec: snap.Remaining.Seconds(),
		Progress:     snap.Progress,
		DurationSec:  timer.DurationSec(),
		EndsAt:       snap.End,
		Running:      status.Running,
		Finished:     status.Finished,
		CreatedAt:    timer.CreatedAt,
	}
}

// Dispatcher exposes the event dispatcher for collaborators that publish
// their own events (the poller).
func (a *App) Dispatcher() *events.Dispatcher {
	return a.dispatcher
}

// Clock exposes the app clock so collaborators share the same time source.
func (a *App) Clock() clockwork.Clock {
	return a.clock
}

func (a *App) publish(ctx context.Context, timerID uuid.UUID, eventType events.EventType, payload interface{}) {
	event, err := events.New(timerID, eventType, a.clock.Now(), payload)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", string(eventType)).
			Str("timer_id", timerID.String()).
			Msg("failed to build event")
		return
	}
	a.dispatcher.Publish(ctx, event)
}
