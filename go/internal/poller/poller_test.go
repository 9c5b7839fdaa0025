package poller

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/countdown/go/internal/timers"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	events []*events.Event
}

func (s *recordingSink) Publish(ctx context.Context, event *events.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) ofType(eventType events.EventType) []*events.Event {
	var matched []*events.Event
	for _, event := range s.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newTestPoller() (*Poller, *timers.App, *recordingSink, *clockwork.FakeClock) {
	sink := &recordingSink{}
	clock := clockwork.NewFakeClockAt(testEpoch)
	app := timers.NewApp(timers.NewRepository(), events.NewDispatcher(sink), clock)
	return New(app, 100*time.Millisecond), app, sink, clock
}

func TestPollPublishesTicks(t *testing.T) {
	p, app, sink, clock := newTestPoller()
	ctx := context.Background()

	timer, err := app.CreateTimer(ctx, timers.CreateTimerRequest{Label: "tick", DurationSec: 60})
	require.NoError(t, err)
	_, err = app.StartTimer(ctx, timer.ID)
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	p.poll(ctx)

	ticks := sink.ofType(events.EventTypeTimerTick)
	require.Len(t, ticks, 1)

	payload, err := events.ParsePayload(ticks[0])
	require.NoError(t, err)
	tick := payload.(events.TimerTickPayload)
	assert.Equal(t, "00:00:50", tick.Remaining)
	assert.Equal(t, 50.0, tick.RemainingSec)
	assert.True(t, tick.Running)
	assert.False(t, tick.Finished)
}

func TestPollEmitsFinishedOncePerCompletion(t *testing.T) {
	p, app, sink, clock := newTestPoller()
	ctx := context.Background()

	timer, err := app.CreateTimer(ctx, timers.CreateTimerRequest{Label: "done", DurationSec: 2})
	require.NoError(t, err)
	_, err = app.StartTimer(ctx, timer.ID)
	require.NoError(t, err)

	p.poll(ctx)
	assert.Empty(t, sink.ofType(events.EventTypeTimerFinished))

	clock.Advance(3 * time.Second)
	p.poll(ctx)
	p.poll(ctx)
	p.poll(ctx)

	finished := sink.ofType(events.EventTypeTimerFinished)
	require.Len(t, finished, 1)

	payload, err := events.ParsePayload(finished[0])
	require.NoError(t, err)
	assert.Equal(t, "done", payload.(events.TimerFinishedPayload).Label)
	assert.Equal(t, testEpoch.Add(2*time.Second), payload.(events.TimerFinishedPayload).FinishedAt)
}

func TestPollRearmsAfterRestart(t *testing.T) {
	p, app, sink, clock := newTestPoller()
	ctx := context.Background()

	timer, err := app.CreateTimer(ctx, timers.CreateTimerRequest{Label: "again", DurationSec: 2})
	require.NoError(t, err)
	_, err = app.StartTimer(ctx, timer.ID)
	require.NoError(t, err)

	clock.Advance(3 * time.Second)
	p.poll(ctx)
	require.Len(t, sink.ofType(events.EventTypeTimerFinished), 1)

	// Restarting clears the finished flag, so the next completion fires a
	// fresh event.
	_, err = app.StartTimer(ctx, timer.ID)
	require.NoError(t, err)
	p.poll(ctx)
	require.Len(t, sink.ofType(events.EventTypeTimerFinished), 1)

	clock.Advance(3 * time.Second)
	p.poll(ctx)
	require.Len(t, sink.ofType(events.EventTypeTimerFinished), 2)
}

func TestPollPrunesDeletedTimers(t *testing.T) {
	p, app, _, clock := newTestPoller()
	ctx := context.Background()

	timer, err := app.CreateTimer(ctx, timers.CreateTimerRequest{Label: "prune", DurationSec: 1})
	require.NoError(t, err)
	_, err = app.StartTimer(ctx, timer.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	p.poll(ctx)
	assert.Len(t, p.seenFinished, 1)

	require.NoError(t, app.DeleteTimer(ctx, timer.ID))
	p.poll(ctx)
	assert.Empty(t, p.seenFinished)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p, _, _, _ := newTestPoller()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancel")
	}
}
