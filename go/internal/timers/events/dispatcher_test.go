package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	received []*Event
	err      error
}

func (s *captureSink) Publish(ctx context.Context, event *Event) error {
	if s.err != nil {
		return s.err
	}
	s.received = append(s.received, event)
	return nil
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	d := NewDispatcher(first, second)

	event, err := New(uuid.New(), EventTypeTimerStarted, time.Now(), TimerStartedPayload{})
	require.NoError(t, err)

	d.Publish(context.Background(), event)
	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestDispatcherFailingSinkDoesNotBlockOthers(t *testing.T) {
	failing := &captureSink{err: errors.New("sink down")}
	healthy := &captureSink{}
	d := NewDispatcher(failing, healthy)

	event, err := New(uuid.New(), EventTypeTimerFinished, time.Now(), TimerFinishedPayload{})
	require.NoError(t, err)

	d.Publish(context.Background(), event)
	assert.Len(t, healthy.received, 1)
}

func TestParsePayloadRejectsUnknownType(t *testing.T) {
	_, err := ParsePayload(&Event{Type: "Bogus", Data: []byte("{}")})
	assert.Error(t, err)
}

func TestParsePayloadRoundTrip(t *testing.T) {
	event, err := New(uuid.New(), EventTypeTimerPaused, time.Now(), TimerPausedPayload{
		TimerID:      "abc",
		RemainingSec: 12.5,
	})
	require.NoError(t, err)

	payload, err := ParsePayload(event)
	require.NoError(t, err)
	assert.Equal(t, 12.5, payload.(TimerPausedPayload).RemainingSec)
}
