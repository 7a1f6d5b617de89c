package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source != SourceSS {
		t.Errorf("DefaultConfig() Source = %v, want %v", cfg.Source, SourceSS)
	}
	if cfg.Command.Path != "ss" {
		t.Errorf("DefaultConfig() Command.Path = %v, want %v", cfg.Command.Path, "ss")
	}
	if len(cfg.Command.Args) != 1 || cfg.Command.Args[0] != "-plunteia" {
		t.Errorf("DefaultConfig() Command.Args = %v, want [-plunteia]", cfg.Command.Args)
	}
	if !cfg.Command.Sudo {
		t.Errorf("DefaultConfig() Command.Sudo = false, want true")
	}
	if cfg.PollInterval != "100ms" {
		t.Errorf("DefaultConfig() PollInterval = %v, want %v", cfg.PollInterval, "100ms")
	}
	if cfg.ReportClosed {
		t.Errorf("DefaultConfig() ReportClosed = true, want false")
	}
	if cfg.Output != OutputText {
		t.Errorf("DefaultConfig() Output = %v, want %v", cfg.Output, OutputText)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() does not validate: %v", err)
	}
	if cfg.PollIntervalDuration() != 100*time.Millisecond {
		t.Errorf("PollIntervalDuration() = %v, want 100ms", cfg.PollIntervalDuration())
	}
	if cfg.QueryTimeoutDuration() != 5*time.Second {
		t.Errorf("QueryTimeoutDuration() = %v, want 5s", cfg.QueryTimeoutDuration())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Config
		wantErr bool
	}{
		{
			name: "valid config",
			content: `log_level: debug
source: procnet
poll_interval: 1s
report_closed: true
output: json`,
			want: &Config{
				LogLevel:     "debug",
				Source:       SourceProcNet,
				PollInterval: "1s",
				ReportClosed: true,
				Output:       OutputJSON,
			},
		},
		{
			name: "partial config",
			content: `command:
  path: /usr/sbin/ss
  args: ["-tlnp"]
  sudo: false`,
			want: &Config{
				LogLevel:     "info",
				Source:       SourceSS,
				PollInterval: "100ms",
				Output:       OutputText,
			},
		},
		{
			name:    "empty config",
			content: "",
			want:    DefaultConfig(),
		},
		{
			name:    "invalid yaml",
			content: "source: [invalid yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "config.yaml")

			if tt.content != "" {
				if err := os.WriteFile(tmpFile, []byte(tt.content), 0644); err != nil {
					t.Fatalf("Failed to write test config: %v", err)
				}
			}

			got, err := Load(tmpFile)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.LogLevel != tt.want.LogLevel {
				t.Errorf("Load() LogLevel = %v, want %v", got.LogLevel, tt.want.LogLevel)
			}
			if got.Source != tt.want.Source {
				t.Errorf("Load() Source = %v, want %v", got.Source, tt.want.Source)
			}
			if got.PollInterval != tt.want.PollInterval {
				t.Errorf("Load() PollInterval = %v, want %v", got.PollInterval, tt.want.PollInterval)
			}
			if got.ReportClosed != tt.want.ReportClosed {
				t.Errorf("Load() ReportClosed = %v, want %v", got.ReportClosed, tt.want.ReportClosed)
			}
			if got.Output != tt.want.Output {
				t.Errorf("Load() Output = %v, want %v", got.Output, tt.want.Output)
			}
		})
	}
}

func TestLoadCommand(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `command:
  path: /usr/sbin/ss
  args: ["-tlnp"]
  sudo: false`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Command.Path != "/usr/sbin/ss" {
		t.Errorf("Command.Path = %v, want /usr/sbin/ss", cfg.Command.Path)
	}
	if len(cfg.Command.Args) != 1 || cfg.Command.Args[0] != "-tlnp" {
		t.Errorf("Command.Args = %v, want [-tlnp]", cfg.Command.Args)
	}
	if cfg.Command.Sudo {
		t.Errorf("Command.Sudo = true, want false")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/non/existent/path/config.yaml")
	if err != nil {
		t.Errorf("Load() with non-existent file should return default config, got error: %v", err)
	}
	if cfg == nil {
		t.Fatalf("Load() with non-existent file should return default config, got nil")
	}
	if cfg.Source != SourceSS {
		t.Errorf("Load() Source = %v, want %v", cfg.Source, SourceSS)
	}
}

func TestValidate(t *testing.T) {
	valid := func(mod func(c *Config)) *Config {
		c := DefaultConfig()
		mod(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults",
			config: DefaultConfig(),
		},
		{
			name:   "procnet without command",
			config: valid(func(c *Config) { c.Source = SourceProcNet; c.Command.Path = "" }),
		},
		{
			name:    "ss without command",
			config:  valid(func(c *Config) { c.Command.Path = "" }),
			wantErr: true,
			errMsg:  "invalid command",
		},
		{
			name:    "invalid source",
			config:  valid(func(c *Config) { c.Source = "netstat" }),
			wantErr: true,
			errMsg:  "invalid source: netstat",
		},
		{
			name:    "invalid output",
			config:  valid(func(c *Config) { c.Output = "yaml" }),
			wantErr: true,
			errMsg:  "invalid output: yaml",
		},
		{
			name:    "invalid log level",
			config:  valid(func(c *Config) { c.LogLevel = "verbose" }),
			wantErr: true,
			errMsg:  "invalid log level: verbose",
		},
		{
			name:    "unparseable interval",
			config:  valid(func(c *Config) { c.PollInterval = "fast" }),
			wantErr: true,
			errMsg:  "invalid poll interval",
		},
		{
			name:    "zero interval",
			config:  valid(func(c *Config) { c.PollInterval = "0s" }),
			wantErr: true,
			errMsg:  "invalid poll interval",
		},
		{
			name:    "negative timeout",
			config:  valid(func(c *Config) { c.QueryTimeout = "-1s" }),
			wantErr: true,
			errMsg:  "invalid query timeout",
		},
		{
			name:   "zero timeout disables it",
			config: valid(func(c *Config) { c.QueryTimeout = "0s" }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.HasPrefix(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error starting with %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with log level %s should not error, got: %v", level, err)
		}
	}
}
