package cli

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/phinze/sockwatch/pkg/config"
	"github.com/phinze/sockwatch/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long:  `Displays the configuration sockwatch would run with, after defaults and the config file are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path := configPath
			if path == "" {
				path, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}
			expanded, err := homedir.Expand(path)
			if err != nil {
				return fmt.Errorf("failed to expand config path: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(expanded); err == nil {
				fmt.Fprintf(out, "# config file: %s\n", expanded)
			} else {
				fmt.Fprintf(out, "# config file: %s (not found, using defaults)\n", expanded)
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sockwatch "+version.GetFullVersion())
		},
	}
}
