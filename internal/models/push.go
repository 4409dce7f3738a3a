package models

// PushNotification is the display part of a push message.
type PushNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// PushMessage is a topic message. Data is logged; Notification, when present,
// is shown to the topic's channel.
type PushMessage struct {
	From         string            `json:"from,omitempty"`
	Topic        string            `json:"topic"`
	Data         map[string]string `json:"data,omitempty"`
	Notification *PushNotification `json:"notification,omitempty"`
}
