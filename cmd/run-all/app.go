package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nakkulla/run-all/pkg/command"
	"github.com/nakkulla/run-all/pkg/config"
	"github.com/nakkulla/run-all/pkg/interfaces"
	"github.com/nakkulla/run-all/pkg/monitor"
	"github.com/nakkulla/run-all/pkg/notification"
	"github.com/nakkulla/run-all/pkg/output"
	"github.com/nakkulla/run-all/pkg/process"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config         *config.Config
	Gate           *output.Gate
	Logger         *log.Logger
	OutputMonitor  *monitor.OutputMonitor
	Notifier       interfaces.Notifier
	ProcessManager *process.Manager
}

// NewDependencies creates all dependencies with the given configuration.
// Child output and diagnostics go to stdout and stderr through one gate.
func NewDependencies(cfg *config.Config, stdout, stderr io.Writer) (*Dependencies, error) {
	colorMode, err := output.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	deps := &Dependencies{
		Config:        cfg,
		Gate:          output.NewGate(stdout, stderr),
		OutputMonitor: monitor.NewOutputMonitor(),
	}

	// Diagnostics share the gate so they never tear a child's line
	deps.Logger = log.NewWithOptions(deps.Gate.Writer(output.Stderr), log.Options{
		Prefix: "run-all",
		Level:  level,
	})

	if cfg.NtfyTopic != "" {
		deps.Notifier = notification.NewContextNotifier(notification.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic))
	} else {
		deps.Notifier = notification.NewLogNotifier(deps.Logger)
	}

	var env []string
	if cfg.EnvFile != "" {
		if env, err = process.LoadEnv(cfg.EnvFile); err != nil {
			return nil, err
		}
	}

	launcher := process.NewLauncher(process.LaunchOptions{
		Env: env,
		TTY: cfg.TTY,
	}, deps.Logger)

	deps.ProcessManager = process.NewManager(launcher, deps.Gate, deps.OutputMonitor, deps.Notifier, deps.Logger, process.Options{
		StdoutColor: colorMode.Enabled(stdout),
		StderrColor: colorMode.Enabled(stderr),
		StripANSI:   cfg.StripANSI,
		StopTimeout: cfg.StopTimeout,
	})

	return deps, nil
}

// Application represents the main application
type Application struct {
	deps        *Dependencies
	startFailed bool
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run starts every command and blocks until all of their output has been
// forwarded and every child has exited.
func (a *Application) Run(descs []command.Descriptor) error {
	if err := a.deps.ProcessManager.Start(descs); err != nil {
		a.startFailed = true
		return err
	}

	results, err := a.deps.ProcessManager.Wait()
	for _, res := range results {
		a.deps.Logger.Debug("summary", "alias", res.Alias, "code", res.ExitCode, "lines", res.Lines,
			"last_output", a.deps.OutputMonitor.Stats(res.Alias).LastOutput)
	}
	a.deps.Logger.Info("run finished", "commands", len(results), "exit_code", a.deps.ProcessManager.ExitCode(),
		"last_output", a.deps.OutputMonitor.LastOutputTime().Format(time.RFC3339))
	return err
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	return a.deps.ProcessManager.Stop()
}

// Started reports whether every command was launched
func (a *Application) Started() bool {
	return !a.startFailed
}

// ExitCode returns the exit code for run-all itself
func (a *Application) ExitCode() int {
	switch {
	case a.startFailed:
		return 1
	case a.deps.ProcessManager.Interrupted():
		return 130
	default:
		return a.deps.ProcessManager.ExitCode()
	}
}
