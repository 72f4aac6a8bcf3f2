package handlers

import (
	"context"
	"fmt"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/provisioning"
)

// Teardowner interface for testing - matches provisioning.TeardownController.
type Teardowner interface {
	Teardown(ctx context.Context, authorized bool) error
}

// newTeardown creates the teardown controller - can be replaced in tests.
var newTeardown = func(clients *awscloud.Clients, cfg *config.Config, timeouts *config.Timeouts, obs provisioning.Observer) Teardowner {
	return provisioning.NewTeardownController(clients.EC2, clients.Neptune, clients.OpenSearch, cfg, timeouts, obs)
}

// Destroy deletes the benchmark environment.
//
// Both gates must hold: cleanup.enabled in the configuration and the --yes
// flag. Failing either gate is an error rather than a silent no-op, so a
// destroy invocation never appears to succeed while leaving billable
// resources running.
func Destroy(ctx context.Context, configPath string, yes bool) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	if !cfg.Cleanup.Enabled {
		return fmt.Errorf("cleanup.enabled is false in %s; set it to allow destroy", configPath)
	}
	if !yes {
		return fmt.Errorf("destroy is irreversible; re-run with --yes to confirm")
	}

	obs := provisioning.NewConsoleObserver(cfg.Verbose)
	timeouts := loadTimeouts()

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("resolving AWS configuration: %w", err)
	}
	clients := newClients(awsCfg)

	if err := newTeardown(clients, cfg, timeouts, obs).Teardown(ctx, yes); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	fmt.Printf("Environment %s destroyed.\n", cfg.ClusterName)
	return nil
}
