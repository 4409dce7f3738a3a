package models

import "time"

// Notification is what the presenter last displayed.
type Notification struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Sound     bool      `json:"sound"`
	ShownAt   time.Time `json:"shown_at"`
}
