// Package poller drives the countdown timers on a fixed cadence. It is the
// rendering-side collaborator of the state machines: it evaluates every
// timer, pushes TimerTick events to the dispatcher, and raises exactly one
// TimerFinished per transition into the finished state.
package poller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/countdown"
	"github.com/mcdev12/countdown/go/internal/timers"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Poller evaluates all registered timers at a fixed interval.
type Poller struct {
	app        *timers.App
	dispatcher *events.Dispatcher
	clock      clockwork.Clock
	interval   time.Duration

	// seenFinished tracks which timers have already had their
	// TimerFinished event emitted, so completion fires once per
	// transition rather than once per poll.
	seenFinished map[uuid.UUID]bool
}

// New creates a poller over the given app. A non-positive interval falls
// back to DefaultInterval.
func New(app *timers.App, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		app:          app,
		dispatcher:   app.Dispatcher(),
		clock:        app.Clock(),
		interval:     interval,
		seenFinished: make(map[uuid.UUID]bool),
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().Dur("interval", p.interval).Msg("poller started")

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("poller shutting down")
			return nil
		case <-ticker.Chan():
			p.poll(ctx)
		}
	}
}

// poll evaluates every timer once.
func (p *Poller) poll(ctx context.Context) {
	now := p.clock.Now()
	live := make(map[uuid.UUID]bool)

	for _, timer := range p.app.ListTimers(ctx) {
		live[timer.ID] = true
		snap, status := timer.Evaluate(now)

		p.publishTick(ctx, timer, snap, status)

		if status.Finished && !p.seenFinished[timer.ID] {
			p.seenFinished[timer.ID] = true
			p.publishFinished(ctx, timer, snap)
		} else if !status.Finished {
			// Start/Reset/AddTime re-armed the timer; the next
			// completion fires again.
			delete(p.seenFinished, timer.ID)
		}
	}

	// Drop debounce entries for deleted timers.
	for id := range p.seenFinished {
		if !live[id] {
			delete(p.seenFinished, id)
		}
	}
}

func (p *Poller) publishTick(ctx context.Context, timer *timers.Timer, snap countdown.Snapshot, status timers.Status) {
	event, err := events.New(timer.ID, events.EventTypeTimerTick, snap.Now, events.TimerTickPayload{
		TimerID:      timer.ID.String(),
		Remaining:    countdown.FormatClock(snap.Remaining),
		RemainingSec: snap.Remaining.Seconds(),
		Progress:     snap.Progress,
		EndsAt:       snap.End,
		Running:      status.Running,
		Finished:     status.Finished,
		TickedAt:     snap.Now,
	})
	if err != nil {
		log.Error().Err(err).Str("timer_id", timer.ID.String()).Msg("failed to build tick event")
		return
	}
	p.dispatcher.Publish(ctx, event)
}

func (p *Poller) publishFinished(ctx context.Context, timer *timers.Timer, snap countdown.Snapshot) {
	log.Info().
		Str("timer_id", timer.ID.String()).
		Str("label", timer.Label).
		Msg("timer finished")

	event, err := events.New(timer.ID, events.EventTypeTimerFinished, p.clock.Now(), events.TimerFinishedPayload{
		TimerID:     timer.ID.String(),
		Label:       timer.Label,
		DurationSec: timer.DurationSec(),
		FinishedAt:  snap.End,
	})
	if err != nil {
		log.Error().Err(err).Str("timer_id", timer.ID.String()).Msg("failed to build finished event")
		return
	}
	p.dispatcher.Publish(ctx, event)
}
