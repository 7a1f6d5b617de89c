package cli

import (
	"fmt"

	"github.com/phinze/sockwatch/internal/logger"
	"github.com/phinze/sockwatch/pkg/monitor"
	"github.com/phinze/sockwatch/pkg/output"
	"github.com/phinze/sockwatch/pkg/source"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current sockets once and exit",
		Long:  `Runs a single query and prints the header followed by every socket, each with a timestamp.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := logger.Setup(cfg.LogLevel)

			src, err := source.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create socket source: %w", err)
			}

			printer, err := output.New(cmd.OutOrStdout(), cfg.Output)
			if err != nil {
				return err
			}

			mon := monitor.New(monitor.Config{Source: src, Logger: log})
			events, err := mon.Poll(cmd.Context())
			if err != nil {
				return err
			}

			for _, event := range events {
				if err := printer.Print(event); err != nil {
					return fmt.Errorf("failed to print event: %w", err)
				}
			}
			return nil
		},
	}

	bindQueryFlags(cmd)

	return cmd
}
