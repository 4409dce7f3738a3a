// Package notify delivers notifications to the host desktop. Linux uses
// notify-send, macOS uses osascript; everything else falls back to a no-op.
package notify

// Notifier shows a desktop notification.
type Notifier interface {
	// Send shows a silent notification.
	Send(title, message string) error

	// SendWithSound shows a notification and asks the host to play a sound.
	SendWithSound(title, message string) error

	// IsSupported reports whether the host can display notifications.
	IsSupported() bool
}

type noopNotifier struct{}

func (noopNotifier) Send(title, message string) error          { return nil }
func (noopNotifier) SendWithSound(title, message string) error { return nil }
func (noopNotifier) IsSupported() bool                         { return false }

// Nop returns a Notifier that discards everything.
func Nop() Notifier {
	return noopNotifier{}
}

// New returns the platform notifier tagged with appName, or a no-op
// notifier when disabled or the host tool is missing.
func New(appName string, enabled bool) Notifier {
	if !enabled {
		return Nop()
	}
	if appName == "" {
		appName = DefaultAppName
	}
	n := newPlatformNotifier(appName)
	if n == nil || !n.IsSupported() {
		return Nop()
	}
	return n
}

// DefaultAppName is used when no application name is configured.
const DefaultAppName = "eggtimer"
