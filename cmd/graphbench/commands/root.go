// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the graphbench CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphbench",
		Short: "Provision AWS infrastructure for graph retrieval benchmarks",
	}

	cmd.AddCommand(Provision())
	cmd.AddCommand(Status())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Version())

	return cmd
}
