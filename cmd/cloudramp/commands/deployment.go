package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudramp/cloudramp/cmd/cloudramp/handlers"
)

// Deployment returns the command that runs only the deployment
// pipeline against an already-provisioned cluster.
func Deployment() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Converge the image, ingress, TLS issuer, and release",
		Long: `Converge the deployment onto an existing cluster: chart repositories,
container repository, static address, image, namespace, TLS issuer,
ingress controller, and application release.

The cluster must already exist; run 'cloudramp foundation' first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deployment(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: cloudramp.yaml)")

	return cmd
}
