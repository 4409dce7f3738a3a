package models

import "time"

// NoDuration marks a TimerState with no selected duration.
const NoDuration = -1

// TimerState is the observable countdown snapshot.
type TimerState struct {
	DurationIndex   int       `json:"duration_index"`              // -1 until a duration is selected
	IsActive        bool      `json:"is_active"`                   // a wake-up registration exists
	RemainingMillis int64     `json:"remaining_millis"`            // triggerAt - now, 0 when idle
	TriggerAtMillis int64     `json:"trigger_at_millis,omitempty"` // unix ms, 0 when idle
	UpdatedAt       time.Time `json:"updated_at"`
}

// DurationOption is one selectable countdown length.
type DurationOption struct {
	Index    int    `json:"index"`
	Minutes  int    `json:"minutes,omitempty"`
	Millis   int64  `json:"millis"`
	Label    string `json:"label"`
	TestOnly bool   `json:"test_only,omitempty"`
}
