// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the cloudramp CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloudramp",
		Short: "Converge a cloud project, cluster, and application release",
	}

	cmd.AddCommand(Converge())
	cmd.AddCommand(Foundation())
	cmd.AddCommand(Deployment())
	cmd.AddCommand(Config())
	cmd.AddCommand(Version())

	return cmd
}
