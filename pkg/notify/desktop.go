package notify

import (
	"fmt"
	"os/exec"
)

// DesktopSender mirrors notifications to the desktop via notify-send.
type DesktopSender struct {
	path string
}

// NewDesktopSender returns a sender when notify-send is available, nil
// otherwise. A nil sender disables mirroring.
func NewDesktopSender() *DesktopSender {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return nil
	}
	return &DesktopSender{path: path}
}

// Send emits a transient desktop notification.
func (s *DesktopSender) Send(title, message string) error {
	if err := exec.Command(s.path, title, message).Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}
