package monitor

import (
	"sync"
	"time"

	"github.com/nakkulla/run-all/pkg/output"
)

// Stats summarizes the output seen for one alias
type Stats struct {
	StdoutLines int
	StderrLines int
	LastOutput  time.Time // Last line with visible content
}

// Lines returns the total number of lines on both streams
func (s Stats) Lines() int {
	return s.StdoutLines + s.StderrLines
}

// OutputMonitor tracks per-alias output activity. Safe for concurrent use
// by every reader.
type OutputMonitor struct {
	mu    sync.RWMutex
	stats map[string]*Stats
	now   func() time.Time
}

// NewOutputMonitor creates a new output monitor
func NewOutputMonitor() *OutputMonitor {
	return &OutputMonitor{
		stats: make(map[string]*Stats),
		now:   time.Now,
	}
}

// HandleLine records one line read from a child
func (om *OutputMonitor) HandleLine(alias string, stream output.Stream, line string) {
	om.mu.Lock()
	defer om.mu.Unlock()

	s, ok := om.stats[alias]
	if !ok {
		s = &Stats{}
		om.stats[alias] = s
	}
	if stream == output.Stderr {
		s.StderrLines++
	} else {
		s.StdoutLines++
	}
	if HasVisibleContent(line) {
		s.LastOutput = om.now()
	}
}

// LineCount returns the number of lines seen for alias
func (om *OutputMonitor) LineCount(alias string) int {
	return om.Stats(alias).Lines()
}

// Stats returns a snapshot of the statistics for alias
func (om *OutputMonitor) Stats(alias string) Stats {
	om.mu.RLock()
	defer om.mu.RUnlock()
	if s, ok := om.stats[alias]; ok {
		return *s
	}
	return Stats{}
}

// LastOutputTime returns the most recent output time across all aliases
func (om *OutputMonitor) LastOutputTime() time.Time {
	om.mu.RLock()
	defer om.mu.RUnlock()

	var last time.Time
	for _, s := range om.stats {
		if s.LastOutput.After(last) {
			last = s.LastOutput
		}
	}
	return last
}
