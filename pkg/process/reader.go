package process

import (
	"bufio"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nakkulla/run-all/pkg/interfaces"
	"github.com/nakkulla/run-all/pkg/monitor"
	"github.com/nakkulla/run-all/pkg/output"
)

// Reader drains one output stream of one child, forwarding each line,
// prefixed and colored, to a LineWriter.
type Reader struct {
	Alias     string
	Stream    output.Stream
	Source    io.Reader
	Prefix    string       // Padded "[alias]" prefix
	Color     *color.Color // nil writes plain lines
	Sink      interfaces.LineWriter
	Observer  interfaces.OutputHandler // Optional
	StripANSI bool
}

// Run reads until end of stream. A final line without a terminating
// newline is still forwarded. If the sink fails, the rest of the stream
// is drained and discarded so the child never blocks on a full pipe.
func (r *Reader) Run() error {
	br := bufio.NewReader(r.Source)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if werr := r.emit(line); werr != nil {
				_, _ = io.Copy(io.Discard, br)
				return &StreamError{Alias: r.Alias, Stream: r.Stream, Err: werr}
			}
		}

		if err != nil {
			if err == io.EOF || isPTYClosed(err) {
				return nil
			}
			return &StreamError{Alias: r.Alias, Stream: r.Stream, Err: err}
		}
	}
}

func (r *Reader) emit(raw string) error {
	line := raw
	if strings.HasSuffix(line, "\n") {
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
	}
	line = strings.ToValidUTF8(line, "\uFFFD")
	if r.StripANSI {
		line = monitor.StripANSI(line)
	}

	if r.Observer != nil {
		r.Observer.HandleLine(r.Alias, r.Stream, line)
	}

	formatted := output.FormatLine(r.Prefix, line)
	if r.Color != nil {
		formatted = r.Color.Sprint(formatted)
	}
	return r.Sink.WriteLine(r.Stream, formatted)
}
