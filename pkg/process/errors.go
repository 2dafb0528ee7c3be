package process

import (
	"fmt"

	"github.com/nakkulla/run-all/pkg/output"
)

// SpawnError reports a command the OS refused to start
type SpawnError struct {
	Alias   string
	Program string
	Err     error
}

// Error implements the error interface
func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start program '%s' (%s): %v", e.Program, e.Alias, e.Err)
}

// Unwrap returns the underlying error
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StreamError reports a failure reading or forwarding one output stream
// of a child. Only the affected reader stops.
type StreamError struct {
	Alias  string
	Stream output.Stream
	Err    error
}

// Error implements the error interface
func (e *StreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Alias, e.Stream, e.Err)
}

// Unwrap returns the underlying error
func (e *StreamError) Unwrap() error {
	return e.Err
}
