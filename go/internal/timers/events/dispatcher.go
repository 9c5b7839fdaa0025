package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sink receives published timer events. Implementations must not block for
// long; slow consumers should buffer or drop internally.
type Sink interface {
	Publish(ctx context.Context, event *Event) error
}

// Dispatcher fans events out to a fixed set of sinks. A failing sink is
// logged and skipped; event delivery is best-effort and never fails the
// operation that produced the event.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// AddSink registers an additional sink. Not safe to call concurrently with
// Publish; wire all sinks before starting the service.
func (d *Dispatcher) AddSink(sink Sink) {
	d.sinks = append(d.sinks, sink)
}

// Publish delivers the event to every sink.
func (d *Dispatcher) Publish(ctx context.Context, event *Event) {
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_type", string(event.Type)).
				Str("timer_id", event.TimerID).
				Msg("failed to publish event to sink")
		}
	}
}
