package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudramp/cloudramp/cmd/cloudramp/handlers"
)

// Foundation returns the command that runs only the foundation
// pipeline: billed project, enabled services, node identity, cluster.
func Foundation() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "foundation",
		Short: "Converge the project, billing, identity, and cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Foundation(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: cloudramp.yaml)")

	return cmd
}
