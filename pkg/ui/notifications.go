package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=fredcat", title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier reports the end of long crawls. Text always goes to Output;
// the desktop notification is best effort.
type Notifier struct {
	sender NotificationSender
}

// NewNotifier picks a sender for the current platform. Platforms without
// one only get console output.
func NewNotifier() *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}
	return &Notifier{sender: sender}
}

// NewNotifierWithSender is used by tests and callers that want to silence
// desktop notifications (nil sender).
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendSuccess announces a finished crawl
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(Output, "\n%s: %s\n", Green(title), message)
	n.send(title, message)
}

// SendError announces a failed crawl
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(Output, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}
