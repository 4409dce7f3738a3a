package models

import "time"

// Event types written to the timer event log.
const (
	EventStart  = "START"
	EventCancel = "CANCEL"
	EventExpire = "EXPIRE"
	EventResume = "RESUME"
	EventNotify = "NOTIFY"
	EventSnooze = "SNOOZE"
	EventPush   = "PUSH"
	EventError  = "ERROR"
)

// TimerEvent is a single log entry.
type TimerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | CANCEL | EXPIRE | RESUME | NOTIFY | SNOOZE | PUSH | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
