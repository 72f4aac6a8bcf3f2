package commands

import (
	"github.com/spf13/cobra"

	"github.com/marcusholm/graphbench/cmd/graphbench/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command removes every resource provision created, in
// dependency order: database instances, the cluster and its groups, the
// search domain, NAT gateway, elastic IP, internet gateway, subnets, route
// tables, security group, and finally the VPC.
func Destroy() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the benchmark environment and all associated resources",
		Long: `Destroy removes every resource provision created.

Resources are deleted in dependency order. Deletion only proceeds when
cleanup.enabled is set in the configuration AND --yes is passed; either
gate alone leaves everything in place.

Example:
  graphbench destroy -c graphbench.yaml --yes

WARNING: This operation is irreversible. All stored graph and vector data
will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "graphbench.yaml", "Path to configuration file")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	return cmd
}
