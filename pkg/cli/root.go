package cli

import (
	"github.com/phinze/sockwatch/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sockwatch",
		Short: "Print sockets as they appear",
		Long: `sockwatch polls the system's socket table (ss -plunteia by default) and
prints every socket that was not present in the previous poll, prefixed
with a millisecond timestamp.

Running sockwatch without a subcommand is the same as "sockwatch watch".`,
		Version:       version.GetFullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWatch,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.config/sockwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	bindQueryFlags(rootCmd)
	bindWatchFlags(rootCmd)

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
