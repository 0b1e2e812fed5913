package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudramp/cloudramp/cmd/cloudramp/handlers"
)

// Config returns the command that prints the fully resolved
// configuration, defaults and environment overrides included.
func Config() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.PrintConfig(configPath, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: cloudramp.yaml)")

	return cmd
}
