package notification

import (
	"os"
	"path/filepath"
)

// ContextNotifier wraps another notifier and names the working directory
// in the title, so notifications from several projects can be told apart.
type ContextNotifier struct {
	underlying  Notifier
	cwdBasename string
}

// NewContextNotifier creates a new context notifier
func NewContextNotifier(underlying Notifier) *ContextNotifier {
	cwdBasename := ""
	if cwd, err := os.Getwd(); err == nil {
		cwdBasename = filepath.Base(cwd)
	}

	return &ContextNotifier{
		underlying:  underlying,
		cwdBasename: cwdBasename,
	}
}

// Send implements the Notifier interface
func (cn *ContextNotifier) Send(notification Notification) error {
	if cn.cwdBasename != "" {
		notification.Title = "run-all (" + cn.cwdBasename + "): " + notification.Title
	} else {
		notification.Title = "run-all: " + notification.Title
	}
	return cn.underlying.Send(notification)
}
