package timers

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/countdown/go/internal/countdown"
)

// Timer is a named countdown owned by the registry. The embedded state
// machine is not thread-safe, so every operation takes the timer's mutex;
// evaluation and mutation are atomic with respect to each other, which
// keeps the poller and the control handlers from interleaving mid-update.
type Timer struct {
	ID        uuid.UUID
	Label     string
	CreatedAt time.Time

	clock clockwork.Clock

	mu    sync.Mutex
	state *countdown.State
}

// Status is the derived control state of a timer.
type Status struct {
	Started  bool `json:"started"`
	Paused   bool `json:"paused"`
	Running  bool `json:"running"`
	Finished bool `json:"finished"`
}

// Phase returns the status as a single display label.
func (s Status) Phase() string {
	switch {
	case s.Finished:
		return "FINISHED"
	case !s.Started:
		return "IDLE"
	case s.Paused:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

func newTimer(id uuid.UUID, label string, clock clockwork.Clock) *Timer {
	return &Timer{
		ID:        id,
		Label:     label,
		CreatedAt: clock.Now(),
		clock:     clock,
		state:     countdown.New(clock),
	}
}

func (t *Timer) status() Status {
	return Status{
		Started:  t.state.Started(),
		Paused:   t.state.Paused(),
		Running:  t.state.IsRunning(),
		Finished: t.state.HasFinished(),
	}
}

// Evaluate computes the timer's snapshot at the given time and returns the
// status observed after evaluation (a finishing timer reports Finished on
// the same call that observed it).
func (t *Timer) Evaluate(now time.Time) (countdown.Snapshot, Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.state.Evaluate(now)
	return snap, t.status()
}

// Status returns the timer's current derived state without evaluating it.
func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status()
}

// DurationSec returns the configured duration in whole seconds.
func (t *Timer) DurationSec() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.state.Duration() / time.Second)
}

// Start (re)starts the countdown and returns the fresh snapshot.
func (t *Timer) Start() countdown.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Start()
	return t.state.Evaluate(t.clock.Now())
}

// Pause pauses the countdown. It reports whether the call took effect.
func (t *Timer) Pause() (countdown.Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	applied := t.state.Pause()
	return t.state.Evaluate(t.clock.Now()), applied
}

// Resume resumes a paused countdown. It reports whether the call took
// effect.
func (t *Timer) Resume() (countdown.Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	applied := t.state.Resume()
	return t.state.Evaluate(t.clock.Now()), applied
}

// Reset returns the countdown to idle, keeping its configured duration.
func (t *Timer) Reset() countdown.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Reset()
	return t.state.Evaluate(t.clock.Now())
}

// SetDuration reconfigures the countdown duration, resetting any run in
// progress.
func (t *Timer) SetDuration(seconds int) countdown.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.SetDuration(seconds)
	return t.state.Evaluate(t.clock.Now())
}

// AddTime adds seconds to the countdown. wasStarted reports which branch
// applied: the deadline of a started run was extended, or the idle
// configured duration grew.
func (t *Timer) AddTime(seconds int) (snap countdown.Snapshot, applied bool, wasStarted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasStarted = t.state.Started()
	applied = t.state.AddTime(seconds)
	snap = t.state.Evaluate(t.clock.Now())
	return snap, applied, wasStarted
}
