package scheduler

import "time"

// Event is a pending wake-up in the scheduler heap.
type Event struct {
	// Key identifies the registration; at most one Event per Key is queued.
	Key string
	// TriggerAt is the wall-clock time at which the event fires.
	TriggerAt time.Time
	// CronExpr makes the event recurring. Empty means one-shot.
	CronExpr string
}
