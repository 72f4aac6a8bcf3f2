package commands

import (
	"github.com/spf13/cobra"

	"github.com/marcusholm/graphbench/cmd/graphbench/handlers"
)

// Status returns the status command, a read-only view of the environment.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current state of the benchmark environment",
		Long: `Status describes the network, database cluster, and search domain and
prints their current state. It never creates, modifies, or deletes
anything.

Example:
  graphbench status -c graphbench.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "graphbench.yaml", "Path to configuration file")

	return cmd
}
