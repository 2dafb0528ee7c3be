// Package output serializes prefixed, colorized lines onto the terminal.
package output

import (
	"io"
	"sync"
)

// Stream identifies one of the two output destinations
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// String returns the conventional name of the stream
func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Gate is the single point through which every line reaches the terminal.
// One mutex guards both destinations: some terminals corrupt color escape
// sequences when stdout and stderr writes interleave, even though they are
// separate streams.
type Gate struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewGate creates a gate writing to the given destinations
func NewGate(stdout, stderr io.Writer) *Gate {
	return &Gate{
		stdout: stdout,
		stderr: stderr,
	}
}

// WriteLine writes line followed by a newline to the chosen stream.
// The whole line is written with a single Write while the gate is held.
func (g *Gate) WriteLine(stream Stream, line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.dest(stream).Write(buf)
	return err
}

// Writer returns an io.Writer for the stream whose writes are serialized
// with WriteLine. Used by the diagnostic logger.
func (g *Gate) Writer(stream Stream) io.Writer {
	return &gatedWriter{gate: g, stream: stream}
}

func (g *Gate) dest(stream Stream) io.Writer {
	if stream == Stderr {
		return g.stderr
	}
	return g.stdout
}

type gatedWriter struct {
	gate   *Gate
	stream Stream
}

func (w *gatedWriter) Write(p []byte) (int, error) {
	w.gate.mu.Lock()
	defer w.gate.mu.Unlock()
	return w.gate.dest(w.stream).Write(p)
}
