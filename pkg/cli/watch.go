package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phinze/sockwatch/internal/logger"
	"github.com/phinze/sockwatch/pkg/monitor"
	"github.com/phinze/sockwatch/pkg/output"
	"github.com/phinze/sockwatch/pkg/source"
	"github.com/phinze/sockwatch/version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously print newly observed sockets",
		Long: `Polls the socket table on a fixed interval and prints one timestamped
line per socket that was not present in the previous poll. The header of
the query output is printed once at startup. Query failures are logged
and retried on the next poll.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	bindQueryFlags(cmd)
	bindWatchFlags(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting sockwatch",
		"version", version.GetVersion(),
		"source", cfg.Source,
		"interval", cfg.PollIntervalDuration(),
		"reportClosed", cfg.ReportClosed)

	g, gctx := errgroup.WithContext(ctx)

	mon := monitor.New(monitor.Config{
		Source:       src,
		PollInterval: cfg.PollIntervalDuration(),
		ReportClosed: cfg.ReportClosed,
		Logger:       log,
	})
	g.Go(func() error {
		return mon.Run(gctx)
	})
	g.Go(func() error {
		return printEvents(mon, printer)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Debug("sockwatch stopped")
	return nil
}

// printEvents prints events until the source closes its channel
func printEvents(src monitor.EventSource, printer *output.Printer) error {
	for event := range src.Events() {
		if err := printer.Print(event); err != nil {
			return fmt.Errorf("failed to print event: %w", err)
		}
	}
	return nil
}
