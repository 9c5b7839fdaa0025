// Package notify bridges timer events onto NATS subjects so external
// integrations (notification daemons, home-automation hooks) can react to
// timers without speaking the gateway's WebSocket protocol.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/timers/events"
)

// NATSConfig holds configuration for the NATS bridge.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "timers.events"
	PublishTicks  bool   // ticks arrive at poll cadence; off by default
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS bridge configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "timers.events",
		PublishTicks:  false,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes timer events to NATS. It implements events.Sink.
type NATSPublisher struct {
	nc     *nats.Conn
	config NATSConfig
}

// NewNATSPublisher connects to NATS and returns a publisher sink.
func NewNATSPublisher(config NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().
		Str("url", config.URL).
		Str("subject_prefix", config.SubjectPrefix).
		Msg("NATS publisher connected")

	return &NATSPublisher{nc: nc, config: config}, nil
}

// Publish implements events.Sink. Events go to
// {prefix}.{event_type}.{timer_id}, so consumers can subscribe to a type
// ("timers.events.TimerFinished.>") or to one timer's full stream
// ("timers.events.*.{id}").
func (p *NATSPublisher) Publish(ctx context.Context, event *events.Event) error {
	if event.Type == events.EventTypeTimerTick && !p.config.PublishTicks {
		return nil
	}

	subject := fmt.Sprintf("%s.%s.%s", p.config.SubjectPrefix, event.Type, event.TimerID)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_type", string(event.Type)).
		Msg("event published to NATS")
	return nil
}

// Close flushes and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Flush(); err != nil {
		log.Error().Err(err).Msg("failed to flush NATS connection")
	}
	p.nc.Close()
}
