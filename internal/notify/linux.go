//go:build linux

package notify

import (
	"fmt"
	"os/exec"
)

type linuxNotifier struct {
	appName string
}

func newPlatformNotifier(appName string) Notifier {
	return &linuxNotifier{appName: appName}
}

func (n *linuxNotifier) Send(title, message string) error {
	return n.run(notifySendArgs(n.appName, title, message, false))
}

// SendWithSound raises urgency; whether a sound plays depends on the
// notification daemon.
func (n *linuxNotifier) SendWithSound(title, message string) error {
	return n.run(notifySendArgs(n.appName, title, message, true))
}

func (n *linuxNotifier) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (n *linuxNotifier) run(args []string) error {
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

func notifySendArgs(appName, title, message string, sound bool) []string {
	args := []string{"--app-name=" + appName}
	if sound {
		args = append(args, "--urgency=critical", "--hint=string:sound-name:alarm-clock-elapsed")
	} else {
		args = append(args, "--urgency=low")
	}
	return append(args, title, message)
}
