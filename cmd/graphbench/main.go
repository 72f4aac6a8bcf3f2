// Package main is the entry point for the graphbench CLI.
//
// graphbench provisions the cloud environment for a graph retrieval
// benchmark: a VPC with public and private subnets, a Neptune serverless
// cluster reachable over Gremlin, and an OpenSearch domain holding the
// vector index. Everything is reconciled idempotently, so re-running
// provision against a half-built or fully built environment converges
// instead of failing.
//
// Commands: provision, status, destroy.
//
// For detailed usage information, run:
//
//	graphbench --help
package main

import (
	"fmt"
	"os"

	"github.com/marcusholm/graphbench/cmd/graphbench/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
