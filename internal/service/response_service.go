package service

import (
	"time"

	"eggtimer/internal/models"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "CANCEL", "EXPIRE", "RESUME", "NOTIFY", "SNOOZE", "PUSH", "ERROR"
}

// NotificationUpdate is published whenever the displayed notification
// changes. A nil Current means it was cleared.
type NotificationUpdate struct {
	Current *models.Notification `json:"current"`
}
