package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nakkulla/run-all/pkg/command"
	"github.com/nakkulla/run-all/pkg/interfaces"
	"github.com/nakkulla/run-all/pkg/notification"
	"github.com/nakkulla/run-all/pkg/output"
)

// Options configures how the manager renders and stops children
type Options struct {
	StdoutColor bool // Color lines written to stdout
	StderrColor bool // Color lines written to stderr
	StripANSI   bool // Remove escape sequences emitted by children
	StopTimeout time.Duration
}

// Result describes how one child ended
type Result struct {
	Alias    string
	Command  string
	ExitCode int   // -1 if the child could not be reaped
	Err      error // Stream failures, if any
	Lines    int   // Lines forwarded for the alias
}

// Failed reports whether the child exited non-zero or lost output
func (r Result) Failed() bool {
	return r.ExitCode != 0 || r.Err != nil
}

// Manager runs a set of children, forwarding their output through a
// shared LineWriter until every stream is closed.
type Manager struct {
	launcher *Launcher
	sink     interfaces.LineWriter
	tracker  interfaces.OutputTracker
	notifier interfaces.Notifier
	logger   *log.Logger
	opts     Options

	mu          sync.Mutex
	handles     []*Handle
	results     []Result
	group       *errgroup.Group
	interrupted bool
	stopOnce    sync.Once
	sigChan     chan os.Signal
	done        chan struct{}
}

// NewManager creates a new process manager. tracker and notifier may be nil.
func NewManager(launcher *Launcher, sink interfaces.LineWriter, tracker interfaces.OutputTracker,
	notifier interfaces.Notifier, logger *log.Logger, opts Options) *Manager {
	return &Manager{
		launcher: launcher,
		sink:     sink,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		done:     make(chan struct{}),
	}
}

// Start launches every descriptor and begins forwarding output. Nothing
// is left running if it returns an error.
func (m *Manager) Start(descs []command.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.group != nil {
		return fmt.Errorf("processes already started")
	}

	handles, err := m.launcher.Launch(descs)
	if err != nil {
		return err
	}

	aliases := make([]string, len(handles))
	for i, h := range handles {
		aliases[i] = h.Alias
	}
	width := output.AliasWidth(aliases)

	m.handles = handles
	m.results = make([]Result, len(handles))
	m.group = new(errgroup.Group)
	for i, h := range handles {
		m.group.Go(func() error {
			m.results[i] = m.supervise(h, output.Prefix(h.Alias, width))
			return m.results[i].Err
		})
	}

	m.setupSignalForwarding()

	return nil
}

// supervise runs both readers of a child, then reaps it
func (m *Manager) supervise(h *Handle, prefix string) Result {
	readers := []*Reader{
		m.newReader(h, output.Stdout, h.stdout, prefix, m.opts.StdoutColor),
		m.newReader(h, output.Stderr, h.stderr, prefix, m.opts.StderrColor),
	}

	var g errgroup.Group
	var streamErrs []error
	var errMu sync.Mutex
	for _, r := range readers {
		g.Go(func() error {
			err := r.Run()
			if err != nil {
				m.logger.Error("output stream failed", "alias", r.Alias, "stream", r.Stream, "err", err)
				errMu.Lock()
				streamErrs = append(streamErrs, err)
				errMu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()

	waitErr := h.cmd.Wait()
	if h.pty != nil {
		_ = h.pty.Close()
	}
	close(h.exited)

	res := Result{
		Alias:    h.Alias,
		Command:  h.Command,
		ExitCode: exitCode(h.cmd, waitErr),
		Err:      errors.Join(streamErrs...),
	}
	if m.tracker != nil {
		res.Lines = m.tracker.LineCount(h.Alias)
	}

	if res.ExitCode != 0 {
		m.logger.Warn("process exited", "alias", res.Alias, "code", res.ExitCode, "lines", res.Lines)
		m.notify(notification.Notification{
			Title:   fmt.Sprintf("%s exited with code %d", res.Alias, res.ExitCode),
			Message: res.Command,
			Time:    time.Now(),
			Tag:     "exit",
		})
	} else {
		m.logger.Info("process exited", "alias", res.Alias, "code", res.ExitCode, "lines", res.Lines)
	}

	return res
}

func (m *Manager) newReader(h *Handle, stream output.Stream, src io.Reader, prefix string, colored bool) *Reader {
	r := &Reader{
		Alias:     h.Alias,
		Stream:    stream,
		Source:    src,
		Prefix:    prefix,
		Sink:      m.sink,
		StripANSI: m.opts.StripANSI,
	}
	if colored {
		r.Color = output.Color(h.Index, true)
	}
	if m.tracker != nil {
		r.Observer = m.tracker
	}
	return r
}

// exitCode maps the result of cmd.Wait to a shell style exit code
func exitCode(cmd *exec.Cmd, waitErr error) int {
	state := cmd.ProcessState
	if state == nil {
		return -1
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	if waitErr != nil {
		return 1
	}
	return 0
}

// Wait blocks until every output stream of every child has been drained
// and every child has been reaped. The returned error joins the stream
// failures of all children.
func (m *Manager) Wait() ([]Result, error) {
	m.mu.Lock()
	group := m.group
	m.mu.Unlock()

	if group == nil {
		return nil, fmt.Errorf("processes not started")
	}

	_ = group.Wait()

	close(m.done)
	m.cleanupSignals()

	var errs []error
	failed := 0
	for _, res := range m.results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		if res.Failed() {
			failed++
		}
	}

	if failed > 0 {
		m.notify(notification.Notification{
			Title:   fmt.Sprintf("%d of %d commands failed", failed, len(m.results)),
			Message: "run finished",
			Time:    time.Now(),
			Tag:     "summary",
		})
	}

	return m.results, errors.Join(errs...)
}

// ExitCode returns 0 if every child exited 0 with its output intact,
// otherwise the code of the first failed child in launch order.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, res := range m.results {
		if res.ExitCode > 0 {
			return res.ExitCode
		}
		if res.Failed() {
			return 1
		}
	}
	return 0
}

// Interrupted reports whether a termination signal was received
func (m *Manager) Interrupted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interrupted
}

func (m *Manager) notify(n notification.Notification) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Send(n); err != nil {
		m.logger.Warn("notification failed", "err", err)
	}
}

// setupSignalForwarding forwards termination signals to every child.
// A second termination signal stops the children instead.
func (m *Manager) setupSignalForwarding() {
	signals := append([]os.Signal{}, forwardedSignals...)
	if resizeSignal != nil {
		signals = append(signals, resizeSignal)
	}

	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan, signals...)

	go m.forwardSignals()
}

func (m *Manager) forwardSignals() {
	for {
		select {
		case sig := <-m.sigChan:
			if resizeSignal != nil && sig == resizeSignal {
				m.resizePTYs()
				continue
			}

			m.mu.Lock()
			repeated := m.interrupted
			m.interrupted = true
			m.mu.Unlock()

			if repeated {
				m.logger.Warn("received second signal, stopping processes", "signal", sig)
				go func() { _ = m.Stop() }()
				continue
			}

			m.logger.Info("forwarding signal", "signal", sig)
			for _, h := range m.handles {
				if !h.running() {
					continue
				}
				if err := h.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					m.logger.Warn("signal forward failed", "alias", h.Alias, "err", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

func (m *Manager) resizePTYs() {
	for _, h := range m.handles {
		if h.pty == nil || !h.running() {
			continue
		}
		if err := copyTerminalSize(h.pty); err != nil {
			m.logger.Debug("failed to resize pty", "alias", h.Alias, "err", err)
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop asks every running child to terminate and kills those still
// running after the stop timeout. It does not wait for output to drain;
// call Wait for that.
func (m *Manager) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		err = m.stop()
	})
	return err
}

func (m *Manager) stop() error {
	m.mu.Lock()
	handles := m.handles
	m.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if !h.running() {
			continue
		}
		if err := h.Signal(terminateSignal); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("%s: %w", h.Alias, err))
		}
	}

	deadline := time.NewTimer(m.opts.StopTimeout)
	defer deadline.Stop()

	for _, h := range handles {
		select {
		case <-h.Exited():
		case <-deadline.C:
			for _, h := range handles {
				if !h.running() {
					continue
				}
				m.logger.Warn("process did not exit, killing", "alias", h.Alias, "pid", h.Pid())
				if err := h.kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
					errs = append(errs, fmt.Errorf("%s: %w", h.Alias, err))
				}
			}
			return errors.Join(errs...)
		}
	}

	return errors.Join(errs...)
}
