//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

type darwinNotifier struct {
	appName string
}

func newPlatformNotifier(appName string) Notifier {
	return &darwinNotifier{appName: appName}
}

func (n *darwinNotifier) Send(title, message string) error {
	return n.run(title, message, false)
}

func (n *darwinNotifier) SendWithSound(title, message string) error {
	return n.run(title, message, true)
}

func (n *darwinNotifier) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (n *darwinNotifier) run(title, message string, sound bool) error {
	script := appleScript(n.appName, title, message, sound)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	return nil
}

func appleScript(appName, title, message string, sound bool) string {
	script := fmt.Sprintf(`display notification "%s" with title "%s" subtitle "%s"`,
		escapeAppleScript(message), escapeAppleScript(appName), escapeAppleScript(title))
	if sound {
		script += ` sound name "default"`
	}
	return script
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
