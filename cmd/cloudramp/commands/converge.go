package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudramp/cloudramp/cmd/cloudramp/handlers"
)

// Converge returns the command that runs both pipelines in order.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect cloudramp.yaml)
//
// Environment variables with the CLOUDRAMP_ prefix override any
// parameter, e.g. CLOUDRAMP_HOST, CLOUDRAMP_EMAIL.
func Converge() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Run the foundation and deployment pipelines",
		Long: `Converge the full system: project, billing, services, node identity,
cluster, container repository, image, static address, TLS issuer,
ingress controller, and application release.

Re-running is always safe: already-converged resources are probed and
left untouched, and a run halted by a failure is repaired forward on
the next run.

Examples:
  # Converge using cloudramp.yaml in the current directory
  cloudramp converge

  # Converge using a specific config file
  cloudramp converge -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Converge(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: cloudramp.yaml)")

	return cmd
}
