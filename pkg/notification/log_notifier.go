package notification

import (
	"github.com/charmbracelet/log"
)

// LogNotifier writes notifications to the diagnostic log. Used when no
// ntfy topic is configured.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier that logs at debug level
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send implements the Notifier interface
func (n *LogNotifier) Send(notification Notification) error {
	n.logger.Debug("notify", "title", notification.Title, "message", notification.Message, "tag", notification.Tag)
	return nil
}
