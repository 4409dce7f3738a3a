package models

import "time"

// Wakeup is a durable wake-up registration. Key is unique: registering the
// same key again replaces the previous trigger.
type Wakeup struct {
	Key       string    `json:"key"`
	TriggerAt int64     `json:"trigger_at"`          // unix ms
	CronExpr  string    `json:"cron_expr,omitempty"` // empty for one-shot
	CreatedAt time.Time `json:"created_at"`
}

// Recurring reports whether the wake-up re-arms itself after firing.
func (w Wakeup) Recurring() bool { return w.CronExpr != "" }
