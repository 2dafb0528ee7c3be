package main

import (
	"bytes"
	"os/exec"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/nakkulla/run-all/pkg/command"
	"github.com/nakkulla/run-all/pkg/config"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		ours     []string
		commands []string
	}{
		{
			name:     "commands only",
			args:     []string{"-a", "web", "npm start", "make watch"},
			commands: []string{"-a", "web", "npm start", "make watch"},
		},
		{
			name:     "options before commands",
			args:     []string{"--no-color", "--config", "run.yaml", "-a", "web", "npm start"},
			ours:     []string{"--no-color", "--config", "run.yaml"},
			commands: []string{"-a", "web", "npm start"},
		},
		{
			name:     "options mixed in",
			args:     []string{"echo a", "--tty", "--alias", "b", "echo b", "--color=always"},
			ours:     []string{"--tty", "--color=always"},
			commands: []string{"echo a", "--alias", "b", "echo b"},
		},
		{
			name:     "value option at end",
			args:     []string{"echo a", "--log-level"},
			ours:     []string{"--log-level"},
			commands: []string{"echo a"},
		},
		{
			name:     "value taken verbatim",
			args:     []string{"--env-file", "-a", "echo a"},
			ours:     []string{"--env-file", "-a"},
			commands: []string{"echo a"},
		},
		{
			name:     "unknown options left for the parser",
			args:     []string{"--verbose", "echo a"},
			commands: []string{"--verbose", "echo a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours, commands := splitArgs(tt.args)
			if !reflect.DeepEqual(ours, tt.ours) {
				t.Errorf("expected options %q, got %q", tt.ours, ours)
			}
			if !reflect.DeepEqual(commands, tt.commands) {
				t.Errorf("expected commands %q, got %q", tt.commands, commands)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--config", "run.yaml", "--color=never", "--tty", "--strip-ansi",
		"--env-file", ".env", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("parseOptions failed: %v", err)
	}

	expected := &options{
		configPath: "run.yaml",
		color:      "never",
		envFile:    ".env",
		logLevel:   "debug",
		tty:        true,
		stripANSI:  true,
	}
	if !reflect.DeepEqual(opts, expected) {
		t.Errorf("expected %+v, got %+v", expected, opts)
	}

	t.Run("help", func(t *testing.T) {
		for _, arg := range []string{"-h", "--help"} {
			opts, err := parseOptions([]string{arg})
			if err != nil {
				t.Fatalf("parseOptions(%s) failed: %v", arg, err)
			}
			if !opts.help {
				t.Errorf("expected help for %s", arg)
			}
		}
	})

	t.Run("missing value", func(t *testing.T) {
		if _, err := parseOptions([]string{"--config"}); err == nil {
			t.Error("expected error for missing value")
		}
	})

	t.Run("conflicting color options", func(t *testing.T) {
		if _, err := parseOptions([]string{"--no-color", "--color", "always"}); err == nil {
			t.Error("expected error for --no-color with --color always")
		}
		if _, err := parseOptions([]string{"--no-color", "--color", "never"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestApplyOptions(t *testing.T) {
	t.Run("overrides config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := applyOptions(cfg, &options{noColor: true, tty: true, stripANSI: true, logLevel: "info", envFile: ".env"})
		if err != nil {
			t.Fatalf("applyOptions failed: %v", err)
		}
		if cfg.Color != "never" || !cfg.TTY || !cfg.StripANSI || cfg.LogLevel != "info" || cfg.EnvFile != ".env" {
			t.Errorf("options not applied: %+v", cfg)
		}
	})

	t.Run("keeps config when unset", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.TTY = true
		cfg.Color = "always"
		if err := applyOptions(cfg, &options{}); err != nil {
			t.Fatalf("applyOptions failed: %v", err)
		}
		if !cfg.TTY || cfg.Color != "always" {
			t.Errorf("config overwritten: %+v", cfg)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		if err := applyOptions(config.DefaultConfig(), &options{color: "sometimes"}); err == nil {
			t.Error("expected error for invalid color")
		}
		if err := applyOptions(config.DefaultConfig(), &options{logLevel: "loud"}); err == nil {
			t.Error("expected error for invalid log level")
		}
	})
}

func TestConfigCommands(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commands = []config.CommandSpec{
		{Alias: "web", Command: "npm run dev"},
		{Command: "make watch"},
	}

	descs, err := configCommands(cfg)
	if err != nil {
		t.Fatalf("configCommands failed: %v", err)
	}

	expected := []command.Descriptor{
		{Alias: "web", Program: "npm", Args: []string{"run", "dev"}},
		{Alias: "make", Program: "make", Args: []string{"watch"}},
	}
	if !reflect.DeepEqual(descs, expected) {
		t.Errorf("expected %+v, got %+v", expected, descs)
	}

	cfg.Commands = []config.CommandSpec{{Alias: "blank", Command: "   "}}
	if _, err := configCommands(cfg); err == nil {
		t.Error("expected error for blank command")
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf, "run-all")
	if !strings.HasPrefix(buf.String(), "Usage: run-all [OPTIONS] [{-a|--alias} <alias>] <command> ...") {
		t.Errorf("unexpected usage: %q", buf.String())
	}
}

func TestApplicationRun(t *testing.T) {
	requireShell(t)

	cfg := config.DefaultConfig()
	cfg.Color = "always"
	cfg.LogLevel = "info"
	var stdout, stderr bytes.Buffer

	deps, err := NewDependencies(cfg, &stdout, &stderr)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	app := NewApplication(deps)

	descs := []command.Descriptor{
		{Alias: "ok", Program: "sh", Args: []string{"-c", "echo fine"}},
		{Alias: "bad", Program: "sh", Args: []string{"-c", "echo broken >&2; exit 2"}},
	}

	if err := app.Run(descs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !app.Started() {
		t.Error("expected application to be started")
	}
	if code := app.ExitCode(); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if stdout.String() != "\x1b[96m[ok]  fine\x1b[0m\n" {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "\x1b[95m[bad] broken\x1b[0m\n") {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
	if deps.OutputMonitor.LastOutputTime().IsZero() {
		t.Error("expected last output time to be recorded")
	}
	if !strings.Contains(stderr.String(), "run finished") {
		t.Errorf("expected run summary in the log, got %q", stderr.String())
	}
}

func TestApplicationSpawnFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	var stdout, stderr bytes.Buffer

	deps, err := NewDependencies(cfg, &stdout, &stderr)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	app := NewApplication(deps)

	err = app.Run([]command.Descriptor{{Alias: "x", Program: "run-all-test-missing-binary"}})
	if err == nil {
		t.Fatal("expected spawn error")
	}
	if app.Started() {
		t.Error("expected application not to be started")
	}
	if code := app.ExitCode(); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(err.Error(), "run-all-test-missing-binary") {
		t.Errorf("expected program name in error, got %v", err)
	}
}
