package commands

import (
	"github.com/spf13/cobra"

	"github.com/marcusholm/graphbench/cmd/graphbench/handlers"
)

// Provision returns the command that builds or repairs the benchmark
// environment.
//
// The command is idempotent: resources that already exist and match the
// configuration are reused, partially built environments are repaired, and
// a fully converged environment is a no-op.
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or repair the benchmark environment",
		Long: `Provision builds the full benchmark environment on AWS:

  - VPC with public/private subnets, internet and NAT gateways
  - Neptune serverless cluster with IAM authentication
  - OpenSearch domain with the vector index

Re-running provision against an existing environment reuses what matches
the configuration and repairs what is missing.

Examples:
  # Provision using graphbench.yaml in the current directory
  graphbench provision

  # Provision using a specific config file
  graphbench provision -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "graphbench.yaml", "Path to configuration file")

	return cmd
}
