// Package countdown implements the countdown timer state machine. A State
// stores absolute wall-clock start/end timestamps and recomputes the
// remaining time on every evaluation, so the reported time stays accurate
// no matter how long the caller goes between polls.
package countdown

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// State tracks a single countdown across start, pause, resume, reset and
// mid-flight time additions.
//
// State is not safe for concurrent use; callers that share a State across
// goroutines must serialize access (see timers.Timer).
type State struct {
	clock clockwork.Clock

	// duration is the configured duration used the next time the
	// countdown is (re)started.
	duration time.Duration

	// startTime/endTime are zero until Start is called. Resume shifts
	// both forward by the paused interval so paused time never counts
	// as elapsed.
	startTime time.Time
	endTime   time.Time

	paused    bool
	pauseTime time.Time
	finished  bool
}

// Snapshot is the result of evaluating a State at a point in time.
type Snapshot struct {
	// Remaining is the time left on the countdown, clamped to zero.
	Remaining time.Duration
	// Total is the full span of the current run (end - start), or the
	// configured duration when the countdown has not been started.
	Total time.Duration
	// Progress is the fraction of Total already elapsed, in [0, 1].
	Progress float64
	// Now is the effective evaluation time: the pause timestamp while
	// paused, otherwise the caller-supplied time.
	Now time.Time
	// End is the wall-clock deadline of the countdown.
	End time.Time
}

// New returns an idle State with a configured duration of zero.
func New(clock clockwork.Clock) *State {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &State{
		clock:  clock,
		paused: true,
	}
}

// SetDuration sets the configured duration (negative values clamp to zero)
// and resets the countdown. Changing the duration invalidates any run in
// progress.
func (s *State) SetDuration(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	s.duration = time.Duration(seconds) * time.Second
	s.Reset()
}

// Duration returns the configured duration.
func (s *State) Duration() time.Duration {
	return s.duration
}

// Start (re)starts the countdown from the configured duration, regardless
// of the current state.
func (s *State) Start() {
	now := s.clock.Now()
	s.startTime = now
	s.endTime = now.Add(s.duration)
	s.paused = false
	s.pauseTime = time.Time{}
	s.finished = false
}

// Pause freezes the countdown at the current instant. It reports whether
// the call took effect; pausing an idle or already-paused countdown is a
// no-op.
func (s *State) Pause() bool {
	if s.startTime.IsZero() || s.paused {
		return false
	}
	s.paused = true
	s.pauseTime = s.clock.Now()
	return true
}

// Resume continues a paused countdown. The interval spent paused is added
// to both the start and end timestamps, which preserves the elapsed time
// across the pause and pushes the deadline out by exactly the paused
// interval. It reports whether the call took effect.
func (s *State) Resume() bool {
	if s.startTime.IsZero() || !s.paused {
		return false
	}
	now := s.clock.Now()
	if !s.pauseTime.IsZero() && !s.endTime.IsZero() {
		pausedDelta := now.Sub(s.pauseTime)
		s.startTime = s.startTime.Add(pausedDelta)
		s.endTime = s.endTime.Add(pausedDelta)
	}
	s.paused = false
	s.pauseTime = time.Time{}
	return true
}

// Reset returns the countdown to idle. The configured duration is kept; it
// is the value shown while idle and used on the next Start.
func (s *State) Reset() {
	s.paused = true
	s.pauseTime = time.Time{}
	s.startTime = time.Time{}
	s.endTime = time.Time{}
	s.finished = false
}

// AddTime extends a started countdown's deadline by the given number of
// seconds, or extends the configured duration when the countdown is idle.
// Either way a finished countdown is un-finished. Zero or negative seconds
// are a no-op. It reports whether the call took effect.
//
// Note: adding time to a finished countdown clears the finished flag but
// leaves the countdown paused; it does not visibly resume until Resume or
// Start is called.
func (s *State) AddTime(seconds int) bool {
	if seconds <= 0 {
		return false
	}
	s.finished = false
	extra := time.Duration(seconds) * time.Second
	if !s.startTime.IsZero() && !s.endTime.IsZero() {
		s.endTime = s.endTime.Add(extra)
	} else {
		s.duration += extra
	}
	return true
}

// Evaluate computes the countdown's snapshot at the given time. The first
// evaluation that observes a remaining time of zero or less marks the
// countdown finished and paused; later evaluations keep returning a zero
// remaining time until Start, Reset or AddTime intervenes.
func (s *State) Evaluate(now time.Time) Snapshot {
	if s.startTime.IsZero() || s.endTime.IsZero() {
		// Never started (or reset): show the configured duration at rest.
		return Snapshot{
			Remaining: s.duration,
			Total:     s.duration,
			Progress:  0.0,
			Now:       now,
			End:       now.Add(s.duration),
		}
	}

	// While paused the countdown is frozen at the pause instant, so
	// repeated polls neither shrink nor stretch the remaining time.
	effectiveNow := now
	if s.paused && !s.pauseTime.IsZero() {
		effectiveNow = s.pauseTime
	}

	remaining := s.endTime.Sub(effectiveNow)
	total := s.endTime.Sub(s.startTime)
	if remaining <= 0 {
		remaining = 0
		s.finished = true
		s.paused = true
	}

	elapsed := total - remaining
	totalSeconds := total.Seconds()
	if totalSeconds < 1 {
		totalSeconds = 1
	}
	progress := elapsed.Seconds() / totalSeconds
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	return Snapshot{
		Remaining: remaining,
		Total:     total,
		Progress:  progress,
		Now:       effectiveNow,
		End:       s.endTime,
	}
}

// IsRunning reports whether the countdown is actively ticking down.
func (s *State) IsRunning() bool {
	return !s.startTime.IsZero() && !s.paused && !s.finished
}

// HasFinished reports whether a previous evaluation observed the countdown
// reach zero. It does not evaluate the countdown itself.
func (s *State) HasFinished() bool {
	return s.finished
}

// Paused reports whether the countdown is paused. An idle countdown counts
// as paused for display purposes.
func (s *State) Paused() bool {
	return s.paused
}

// Started reports whether the countdown has been started since the last
// reset.
func (s *State) Started() bool {
	return !s.startTime.IsZero()
}
