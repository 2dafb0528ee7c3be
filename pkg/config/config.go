package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nakkulla/run-all/pkg/output"
)

// CommandSpec is a command listed in the config file
type CommandSpec struct {
	Alias   string `yaml:"alias"`
	Command string `yaml:"command"`
}

// Config holds all configuration for run-all
type Config struct {
	// Output settings
	Color     string `yaml:"color" env:"RUN_ALL_COLOR"`
	StripANSI bool   `yaml:"strip_ansi" env:"RUN_ALL_STRIP_ANSI"`
	LogLevel  string `yaml:"log_level" env:"RUN_ALL_LOG_LEVEL"`

	// Child process settings
	TTY         bool          `yaml:"tty" env:"RUN_ALL_TTY"`
	EnvFile     string        `yaml:"env_file" env:"RUN_ALL_ENV_FILE"`
	StopTimeout time.Duration `yaml:"stop_timeout" env:"RUN_ALL_STOP_TIMEOUT"`

	// Failure notifications, disabled when the topic is empty
	NtfyTopic  string `yaml:"ntfy_topic" env:"RUN_ALL_NTFY_TOPIC"`
	NtfyServer string `yaml:"ntfy_server" env:"RUN_ALL_NTFY_SERVER"`

	// Commands run when none are given on the command line
	Commands []CommandSpec `yaml:"commands"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Color:       string(output.ColorAuto),
		LogLevel:    "warn",
		StopTimeout: 5 * time.Second,
		NtfyServer:  "https://ntfy.sh",
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("RUN_ALL_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "run-all", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "run-all", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = string(output.ColorNever)
	}

	if color := os.Getenv("RUN_ALL_COLOR"); color != "" {
		cfg.Color = color
	}

	if level := os.Getenv("RUN_ALL_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if envFile := os.Getenv("RUN_ALL_ENV_FILE"); envFile != "" {
		cfg.EnvFile = envFile
	}

	if timeout := os.Getenv("RUN_ALL_STOP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid RUN_ALL_STOP_TIMEOUT: %w", err)
		}
		cfg.StopTimeout = d
	}

	for name, target := range map[string]*bool{
		"RUN_ALL_TTY":        &cfg.TTY,
		"RUN_ALL_STRIP_ANSI": &cfg.StripANSI,
	} {
		if err := parseBoolEnv(name, target); err != nil {
			return err
		}
	}

	if topic := os.Getenv("RUN_ALL_NTFY_TOPIC"); topic != "" {
		cfg.NtfyTopic = topic
	}

	if server := os.Getenv("RUN_ALL_NTFY_SERVER"); server != "" {
		cfg.NtfyServer = server
	}

	return nil
}

func parseBoolEnv(name string, target *bool) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		*target = true
	case "false", "0", "no":
		*target = false
	default:
		return fmt.Errorf("invalid %s value: %q (use true/false)", name, value)
	}
	return nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if _, err := output.ParseColorMode(cfg.Color); err != nil {
		return err
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}

	if cfg.StopTimeout < 0 {
		return fmt.Errorf("stop_timeout must be non-negative")
	}

	for i, c := range cfg.Commands {
		if strings.TrimSpace(c.Command) == "" {
			return fmt.Errorf("commands[%d]: command is required", i)
		}
	}

	return nil
}
