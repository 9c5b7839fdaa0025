// Package events defines the domain events emitted by the timer service and
// the fan-out used to deliver them to sinks (WebSocket gateway, NATS
// bridge).
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of timer event.
type EventType string

const (
	EventTypeTimerCreated  EventType = "TimerCreated"
	EventTypeTimerStarted  EventType = "TimerStarted"
	EventTypeTimerPaused   EventType = "TimerPaused"
	EventTypeTimerResumed  EventType = "TimerResumed"
	EventTypeTimerReset    EventType = "TimerReset"
	EventTypeDurationSet   EventType = "DurationSet"
	EventTypeTimeAdded     EventType = "TimeAdded"
	EventTypeTimerTick     EventType = "TimerTick"
	EventTypeTimerFinished EventType = "TimerFinished"
	EventTypeTimerDeleted  EventType = "TimerDeleted"
)

// Event is the envelope for all timer events.
type Event struct {
	ID        string          `json:"id"`        // Event UUID
	TimerID   string          `json:"timer_id"`  // Timer UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// New builds an event envelope around the given payload.
func New(timerID uuid.UUID, eventType EventType, timestamp time.Time, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		TimerID:   timerID.String(),
		Type:      eventType,
		Timestamp: timestamp,
		Data:      data,
	}, nil
}

// ParsePayload parses an event's data into the payload struct for its type.
func ParsePayload(event *Event) (interface{}, error) {
	switch event.Type {
	case EventTypeTimerCreated:
		var payload TimerCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerStarted:
		var payload TimerStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerPaused:
		var payload TimerPausedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerResumed:
		var payload TimerResumedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerReset:
		var payload TimerResetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeDurationSet:
		var payload DurationSetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimeAdded:
		var payload TimeAddedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerTick:
		var payload TimerTickPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerFinished:
		var payload TimerFinishedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerDeleted:
		var payload TimerDeletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}
