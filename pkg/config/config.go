package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Source names
const (
	SourceSS      = "ss"
	SourceProcNet = "procnet"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config represents the sockwatch configuration
type Config struct {
	// LogLevel: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Source selects the socket query: "ss" or "procnet"
	Source string `yaml:"source"`

	// Command configures the external utility used by the "ss" source
	Command CommandConfig `yaml:"command"`

	// PollInterval is the delay between queries (e.g. "100ms")
	PollInterval string `yaml:"poll_interval"`

	// QueryTimeout bounds a single query (e.g. "5s")
	QueryTimeout string `yaml:"query_timeout"`

	// ReportClosed also prints sockets that disappeared
	ReportClosed bool `yaml:"report_closed"`

	// Output: text or json
	Output string `yaml:"output"`

	pollInterval time.Duration
	queryTimeout time.Duration
}

// CommandConfig describes how to invoke the socket-statistics utility
type CommandConfig struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
	Sudo bool     `yaml:"sudo"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Source:   SourceSS,
		Command: CommandConfig{
			Path: "ss",
			Args: []string{"-plunteia"},
			Sudo: true,
		},
		PollInterval: "100ms",
		QueryTimeout: "5s",
		Output:       OutputText,
	}
}

// DefaultPath returns ~/.config/sockwatch/config.yaml
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sockwatch", "config.yaml"), nil
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	} else {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		path = expanded
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration and resolves durations and paths
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	switch c.Source {
	case SourceSS:
		if c.Command.Path == "" {
			return fmt.Errorf("invalid command: path is required for source %q", SourceSS)
		}
		expanded, err := homedir.Expand(c.Command.Path)
		if err != nil {
			return fmt.Errorf("failed to expand command path: %w", err)
		}
		c.Command.Path = expanded
	case SourceProcNet:
		// Valid
	default:
		return fmt.Errorf("invalid source: %s (must be '%s' or '%s')", c.Source, SourceSS, SourceProcNet)
	}

	switch c.Output {
	case OutputText, OutputJSON:
		// Valid
	default:
		return fmt.Errorf("invalid output: %s (must be '%s' or '%s')", c.Output, OutputText, OutputJSON)
	}

	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("invalid poll interval: %s (must be positive)", c.PollInterval)
	}
	c.pollInterval = interval

	timeout, err := time.ParseDuration(c.QueryTimeout)
	if err != nil {
		return fmt.Errorf("invalid query timeout: %w", err)
	}
	if timeout < 0 {
		return fmt.Errorf("invalid query timeout: %s (must not be negative)", c.QueryTimeout)
	}
	c.queryTimeout = timeout

	return nil
}

// PollIntervalDuration returns the parsed poll interval. Valid after Validate.
func (c *Config) PollIntervalDuration() time.Duration {
	return c.pollInterval
}

// QueryTimeoutDuration returns the parsed query timeout; zero disables it.
// Valid after Validate.
func (c *Config) QueryTimeoutDuration() time.Duration {
	return c.queryTimeout
}
