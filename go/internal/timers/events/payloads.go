package events

import (
	"time"
)

// TimerCreatedPayload is the payload for a TimerCreated event.
type TimerCreatedPayload struct {
	TimerID     string    `json:"timer_id"`
	Label       string    `json:"label"`
	DurationSec int       `json:"duration_sec"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimerStartedPayload is the payload for a TimerStarted event.
type TimerStartedPayload struct {
	TimerID     string    `json:"timer_id"`
	DurationSec int       `json:"duration_sec"`
	StartedAt   time.Time `json:"started_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// TimerPausedPayload is the payload for a TimerPaused event.
type TimerPausedPayload struct {
	TimerID      string    `json:"timer_id"`
	PausedAt     time.Time `json:"paused_at"`
	RemainingSec float64   `json:"remaining_sec"`
}

// TimerResumedPayload is the payload for a TimerResumed event.
type TimerResumedPayload struct {
	TimerID   string    `json:"timer_id"`
	ResumedAt time.Time `json:"resumed_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// TimerResetPayload is the payload for a TimerReset event.
type TimerResetPayload struct {
	TimerID     string    `json:"timer_id"`
	DurationSec int       `json:"duration_sec"`
	ResetAt     time.Time `json:"reset_at"`
}

// DurationSetPayload is the payload for a DurationSet event.
type DurationSetPayload struct {
	TimerID     string    `json:"timer_id"`
	DurationSec int       `json:"duration_sec"`
	SetAt       time.Time `json:"set_at"`
}

// TimeAddedPayload is the payload for a TimeAdded event. EndsAt is set when
// the timer was running (deadline extended); DurationSec is set when it was
// idle (configured duration extended).
type TimeAddedPayload struct {
	TimerID     string     `json:"timer_id"`
	AddedSec    int        `json:"added_sec"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	DurationSec *int       `json:"duration_sec,omitempty"`
	AddedAt     time.Time  `json:"added_at"`
}

// TimerTickPayload carries the periodic poll snapshot pushed to rendering
// clients.
type TimerTickPayload struct {
	TimerID      string    `json:"timer_id"`
	Remaining    string    `json:"remaining"` // HH:MM:SS for direct display
	RemainingSec float64   `json:"remaining_sec"`
	Progress     float64   `json:"progress"`
	EndsAt       time.Time `json:"ends_at"`
	Running      bool      `json:"running"`
	Finished     bool      `json:"finished"`
	TickedAt     time.Time `json:"ticked_at"`
}

// TimerFinishedPayload is the payload for a TimerFinished event. Emitted
// exactly once per transition into the finished state.
type TimerFinishedPayload struct {
	TimerID     string    `json:"timer_id"`
	Label       string    `json:"label"`
	DurationSec int       `json:"duration_sec"`
	FinishedAt  time.Time `json:"finished_at"`
}

// TimerDeletedPayload is the payload for a TimerDeleted event.
type TimerDeletedPayload struct {
	TimerID   string    `json:"timer_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
