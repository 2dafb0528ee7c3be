// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"github.com/nakkulla/run-all/pkg/notification"
	"github.com/nakkulla/run-all/pkg/output"
)

// LineWriter writes one complete line to a stream, atomically with
// respect to every other line written through it.
type LineWriter interface {
	WriteLine(stream output.Stream, line string) error
}

// OutputHandler observes lines read from child processes.
type OutputHandler interface {
	HandleLine(alias string, stream output.Stream, line string)
}

// OutputTracker observes lines and reports how many were seen per alias.
type OutputTracker interface {
	OutputHandler
	LineCount(alias string) int
}

// Notifier sends notifications
type Notifier interface {
	Send(notification notification.Notification) error
}
