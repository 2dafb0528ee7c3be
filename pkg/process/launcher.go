package process

import (
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/nakkulla/run-all/pkg/command"
	"github.com/nakkulla/run-all/pkg/output"
)

// Handle is a successfully started child process
type Handle struct {
	Alias   string
	Index   int             // Launch order
	Command string          // Command line as given
	Color   color.Attribute // Palette entry for Index

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
	pty    *os.File // Set in tty mode; also the stdout source
	exited chan struct{}
}

// Pid returns the process ID of the child
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Signal sends sig to the child and everything it started
func (h *Handle) Signal(sig os.Signal) error {
	return signalGroup(h.cmd.Process, sig)
}

func (h *Handle) kill() error {
	return signalGroup(h.cmd.Process, os.Kill)
}

// Exited is closed once the child has been reaped
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

func (h *Handle) running() bool {
	select {
	case <-h.exited:
		return false
	default:
		return true
	}
}

// abandon kills and reaps a child whose output will never be read
func (h *Handle) abandon() {
	_ = h.kill()
	_ = h.cmd.Wait()
	if h.pty != nil {
		_ = h.pty.Close()
	}
	close(h.exited)
}

// LaunchOptions configures how children are started
type LaunchOptions struct {
	Env []string // Child environment; nil inherits the parent's
	TTY bool     // Attach child stdout to a pseudo-terminal
}

// Launcher starts one child per command descriptor
type Launcher struct {
	opts   LaunchOptions
	logger *log.Logger
}

// NewLauncher creates a new launcher
func NewLauncher(opts LaunchOptions, logger *log.Logger) *Launcher {
	return &Launcher{
		opts:   opts,
		logger: logger,
	}
}

// Launch starts every descriptor in order. Stdin of each child is the
// null device; stdout and stderr are captured. If any command fails to
// start, the children that did start are killed and the returned error
// joins one *SpawnError per failed command.
func (l *Launcher) Launch(descs []command.Descriptor) ([]*Handle, error) {
	handles := make([]*Handle, 0, len(descs))
	var errs []error

	for i, desc := range descs {
		h, err := l.start(i, desc)
		if err != nil {
			l.logger.Debug("spawn failed", "alias", desc.Alias, "program", desc.Program, "err", err)
			errs = append(errs, err)
			continue
		}
		l.logger.Debug("started", "alias", h.Alias, "pid", h.Pid(), "command", h.Command)
		handles = append(handles, h)
	}

	if len(errs) > 0 {
		for _, h := range handles {
			l.logger.Debug("stopping sibling after spawn failure", "alias", h.Alias, "pid", h.Pid())
			h.abandon()
		}
		return nil, errors.Join(errs...)
	}

	return handles, nil
}

func (l *Launcher) start(index int, desc command.Descriptor) (*Handle, error) {
	spawnErr := func(err error) error {
		return &SpawnError{Alias: desc.Alias, Program: desc.Program, Err: err}
	}

	cmd := exec.Command(desc.Program, desc.Args...)
	cmd.Env = l.opts.Env
	setProcessGroup(cmd)

	h := &Handle{
		Alias:   desc.Alias,
		Index:   index,
		Command: desc.String(),
		Color:   output.Attribute(index),
		cmd:     cmd,
		exited:  make(chan struct{}),
	}

	var err error
	if h.stderr, err = cmd.StderrPipe(); err != nil {
		return nil, spawnErr(err)
	}

	var tty *os.File
	if l.opts.TTY {
		if h.pty, tty, err = openPTY(); err != nil {
			return nil, spawnErr(err)
		}
		cmd.Stdout = tty
		h.stdout = h.pty
	} else if h.stdout, err = cmd.StdoutPipe(); err != nil {
		return nil, spawnErr(err)
	}

	if err := cmd.Start(); err != nil {
		if h.pty != nil {
			_ = h.pty.Close()
			_ = tty.Close()
		}
		return nil, spawnErr(err)
	}

	// The child holds its own copy; keeping ours open would hide EOF
	if tty != nil {
		_ = tty.Close()
	}

	return h, nil
}
