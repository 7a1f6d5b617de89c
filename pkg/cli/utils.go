package cli

import (
	"fmt"
	"time"

	"github.com/phinze/sockwatch/pkg/config"
	"github.com/spf13/cobra"
)

var (
	sourceName   string
	outputFormat string
	noSudo       bool
	queryTimeout time.Duration

	pollInterval time.Duration
	reportClosed bool
)

// bindQueryFlags adds the flags shared by every command that runs a query
func bindQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceName, "source", config.SourceSS, "Socket source: ss or procnet")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", config.OutputText, "Output format: text or json")
	cmd.Flags().BoolVar(&noSudo, "no-sudo", false, "Run the socket utility without sudo")
	cmd.Flags().DurationVar(&queryTimeout, "timeout", 5*time.Second, "Timeout for a single query (0 disables)")
}

func bindWatchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&pollInterval, "interval", "i", 100*time.Millisecond, "Polling interval")
	cmd.Flags().BoolVar(&reportClosed, "closed", false, "Also print sockets that disappeared")
}

// loadConfig loads the config file and applies any flags the user set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = sourceName
	}
	if flags.Changed("output") {
		cfg.Output = outputFormat
	}
	if flags.Changed("no-sudo") {
		cfg.Command.Sudo = !noSudo
	}
	if flags.Changed("timeout") {
		cfg.QueryTimeout = queryTimeout.String()
	}
	if flags.Changed("interval") {
		cfg.PollInterval = pollInterval.String()
	}
	if flags.Changed("closed") {
		cfg.ReportClosed = reportClosed
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
