package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/nakkulla/run-all/pkg/command"
	"github.com/nakkulla/run-all/pkg/config"
	"github.com/nakkulla/run-all/pkg/output"
)

// Tool options taking a value; everything else on the command line
// belongs to the command parser.
var valueOptions = map[string]bool{
	"--config":    true,
	"--color":     true,
	"--env-file":  true,
	"--log-level": true,
}

var boolOptions = map[string]bool{
	"--no-color":   true,
	"--tty":        true,
	"--strip-ansi": true,
	"--help":       true,
	"-h":           true,
}

type options struct {
	configPath string
	color      string
	envFile    string
	logLevel   string
	noColor    bool
	tty        bool
	stripANSI  bool
	help       bool
}

func main() {
	program := "run-all"
	if len(os.Args) > 0 {
		program = filepath.Base(os.Args[0])
	}

	ourArgs, commandArgs := splitArgs(os.Args[1:])

	opts, err := parseOptions(ourArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.help {
		printUsage(os.Stdout, program)
		os.Exit(0)
	}

	// The config path must be known before loading
	if opts.configPath != "" {
		if err := os.Setenv("RUN_ALL_CONFIG", opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := applyOptions(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	descs, err := command.Parse(commandArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(descs) == 0 {
		if descs, err = configCommands(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if len(descs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: Expected at least one command to run\n")
		printUsage(os.Stderr, program)
		os.Exit(1)
	}

	deps, err := NewDependencies(cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := NewApplication(deps)

	// Stream failures were logged as they happened; spawn failures were not
	if err := app.Run(descs); err != nil && !app.Started() {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(os.Stderr, "Error: %s\n", line)
		}
	}

	os.Exit(app.ExitCode())
}

// splitArgs separates run-all's own options from the command arguments.
// Options are recognized anywhere on the command line.
func splitArgs(args []string) (ours, commands []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")

		switch {
		case valueOptions[name]:
			ours = append(ours, arg)
			if !hasValue && i+1 < len(args) {
				ours = append(ours, args[i+1])
				i++
			}
		case boolOptions[arg]:
			ours = append(ours, arg)
		default:
			commands = append(commands, arg)
		}
	}
	return ours, commands
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("run-all", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.color, "color", "", "Color mode: auto, always or never")
	fs.StringVar(&opts.envFile, "env-file", "", "Load environment variables for the commands from a file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colors")
	fs.BoolVar(&opts.tty, "tty", false, "Attach each command's stdout to a pseudo-terminal")
	fs.BoolVar(&opts.stripANSI, "strip-ansi", false, "Remove escape sequences from command output")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.noColor && opts.color != "" && opts.color != string(output.ColorNever) {
		return nil, fmt.Errorf("--no-color conflicts with --color %s", opts.color)
	}

	return opts, nil
}

// applyOptions overrides the loaded configuration with command line options
func applyOptions(cfg *config.Config, opts *options) error {
	if opts.color != "" {
		cfg.Color = opts.color
	}
	if opts.noColor {
		cfg.Color = string(output.ColorNever)
	}
	if opts.envFile != "" {
		cfg.EnvFile = opts.envFile
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.tty {
		cfg.TTY = true
	}
	if opts.stripANSI {
		cfg.StripANSI = true
	}
	return config.Validate(cfg)
}

// configCommands builds descriptors from the commands in the config file
func configCommands(cfg *config.Config) ([]command.Descriptor, error) {
	descs := make([]command.Descriptor, 0, len(cfg.Commands))
	for _, c := range cfg.Commands {
		desc, err := command.New(c.Alias, c.Command)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func printUsage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s [OPTIONS] [{-a|--alias} <alias>] <command> ...\n", program)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Runs every command at once and prefixes each output line with the")
	fmt.Fprintln(w, "command's alias. A command is one argument: quote it in your shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "      --config string      Path to config file")
	fmt.Fprintln(w, "      --color string       Color mode: auto, always or never (default auto)")
	fmt.Fprintln(w, "      --no-color           Disable colors")
	fmt.Fprintln(w, "      --tty                Attach each command's stdout to a pseudo-terminal")
	fmt.Fprintln(w, "      --strip-ansi         Remove escape sequences from command output")
	fmt.Fprintln(w, "      --env-file string    Load environment variables for the commands from a file")
	fmt.Fprintln(w, "      --log-level string   Diagnostic log level (default warn)")
	fmt.Fprintln(w, "  -h, --help               Show help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintf(w, "  %s -a web \"npm run dev\" -a api \"go run ./cmd/api\"\n", program)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  RUN_ALL_CONFIG          Path to config file")
	fmt.Fprintln(w, "  RUN_ALL_COLOR           Color mode")
	fmt.Fprintln(w, "  RUN_ALL_TTY             Attach stdout to a pseudo-terminal (true/false)")
	fmt.Fprintln(w, "  RUN_ALL_STRIP_ANSI      Remove escape sequences (true/false)")
	fmt.Fprintln(w, "  RUN_ALL_ENV_FILE        Environment file for the commands")
	fmt.Fprintln(w, "  RUN_ALL_STOP_TIMEOUT    Grace period before killing on a second interrupt (default 5s)")
	fmt.Fprintln(w, "  RUN_ALL_LOG_LEVEL       Diagnostic log level")
	fmt.Fprintln(w, "  RUN_ALL_NTFY_TOPIC      Ntfy topic notified when a command fails")
	fmt.Fprintln(w, "  RUN_ALL_NTFY_SERVER     Ntfy server URL (default: https://ntfy.sh)")
	fmt.Fprintln(w, "  NO_COLOR                Disable colors")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/run-all/config.yaml")
}
