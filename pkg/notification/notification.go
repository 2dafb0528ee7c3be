package notification

import "time"

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Time    time.Time
	Tag     string // "exit" for a failed child, "summary" at the end of a run
}

// Notifier interface for sending notifications
type Notifier interface {
	Send(notification Notification) error
}
