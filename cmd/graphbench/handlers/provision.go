// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/gremlin"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/provisioning"
	"github.com/marcusholm/graphbench/internal/search"
)

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// loadTimeouts loads the poll timeout bounds.
	loadTimeouts = config.LoadTimeouts

	// loadAWSConfig resolves the AWS session configuration.
	loadAWSConfig = resolveAWSConfig

	// newClients creates the control-plane clients.
	newClients = awscloud.NewClients

	// callerIdentity resolves the ARN the session authenticates as.
	callerIdentity = stsCallerARN

	// runPhases executes the provisioning pipeline.
	runPhases = provisioning.RunPhases

	// verifyConnectivity dials the cluster's Gremlin endpoint.
	verifyConnectivity = dialGremlin

	// prepareVectorIndex ensures the vector index exists on the domain.
	prepareVectorIndex = ensureVectorIndex
)

// Provision builds or repairs the full benchmark environment.
//
// The handler orchestrates the complete provisioning workflow:
//  1. Loads and validates the configuration
//  2. Resolves AWS credentials and builds the control-plane clients
//  3. Runs the provisioning phases: network, database cluster, search domain
//  4. Verifies Gremlin connectivity against the live cluster endpoint
//  5. Ensures the vector index exists on the search domain
//
// Every phase is idempotent; re-running provision after a partial failure
// picks up where the previous run stopped.
func Provision(ctx context.Context, configPath string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	obs := provisioning.NewConsoleObserver(cfg.Verbose)
	timeouts := loadTimeouts()

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("resolving AWS configuration: %w", err)
	}
	clients := newClients(awsCfg)

	arn, err := callerIdentity(ctx, awsCfg)
	if err != nil {
		// Without the caller ARN the domain access policy falls back to the
		// account default rather than a caller-scoped grant.
		obs.Printf("could not resolve caller identity: %v", err)
		arn = ""
	}

	resolver := awscloud.NetResolver{}
	phases := []provisioning.Phase{
		provisioning.NewNetworkProvisioner(clients.EC2, cfg, timeouts, obs),
		provisioning.NewClusterProvisioner(clients.Neptune, clients.EC2, resolver, cfg, timeouts, obs),
		provisioning.NewDomainProvisioner(clients.OpenSearch, resolver, cfg, timeouts, obs, arn),
	}

	pctx := provisioning.NewContext(ctx, cfg, timeouts, obs)
	if err := runPhases(pctx, phases); err != nil {
		return err
	}

	if err := verifyConnectivity(ctx, awsCfg, cfg, pctx.State.Cluster, obs); err != nil {
		return fmt.Errorf("verifying database connectivity: %w", err)
	}
	if err := prepareVectorIndex(ctx, awsCfg, cfg, pctx.State.Domain, obs); err != nil {
		return fmt.Errorf("preparing vector index: %w", err)
	}

	printProvisionSummary(cfg, pctx.State)
	return nil
}

// resolveAWSConfig builds the session configuration from the default chain,
// with region, profile, and static credentials from the config file taking
// precedence when set.
func resolveAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AWS.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.AccessKey != "" && cfg.AWS.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// stsCallerARN returns the ARN of the identity the session authenticates
// as. The domain access policy is scoped to it.
func stsCallerARN(ctx context.Context, awsCfg aws.Config) (string, error) {
	out, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.Arn), nil
}

// dialGremlin opens a signed WebSocket session against the cluster
// endpoint and closes it again. Dial already retries through the window
// where a fresh cluster reports available but is not yet reachable.
func dialGremlin(ctx context.Context, awsCfg aws.Config, cfg *config.Config, cluster *provisioning.ClusterResource, obs provisioning.Observer) error {
	if !cluster.Usable() {
		return fmt.Errorf("cluster %s is not usable (status %s)", cluster.ClusterID, cluster.Status)
	}

	client, err := gremlin.Dial(ctx, gremlin.Config{
		Endpoint:    cluster.Endpoint,
		Port:        cluster.Port,
		Region:      cfg.Region,
		Credentials: awsCfg.Credentials,
		MaxRetries:  cfg.Retry.MaxRetries,
		MinDelay:    cfg.Retry.MinDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Logger:      obs,
	})
	if err != nil {
		return err
	}
	obs.Printf("gremlin endpoint %s:%d is reachable", cluster.Endpoint, cluster.Port)
	return client.Close()
}

// ensureVectorIndex creates the vector index on the domain if it is
// missing, recreating it when the stored mapping no longer matches the
// configured embedding dimension.
func ensureVectorIndex(ctx context.Context, awsCfg aws.Config, cfg *config.Config, domain *provisioning.DomainResource, obs provisioning.Observer) error {
	if !domain.Active() {
		return fmt.Errorf("domain %s is not active (status %s)", domain.Name, domain.Status)
	}

	client := search.NewClient(search.Config{
		Endpoint:    domain.Endpoint,
		Region:      cfg.Region,
		Credentials: awsCfg.Credentials,
		Index:       cfg.Search.IndexName,
		Dimension:   cfg.Search.VectorDimension,
		SearchType:  cfg.Search.SearchType,
		MaxRetries:  cfg.Retry.MaxRetries,
		MinDelay:    cfg.Retry.MinDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Logger:      obs,
	})
	return client.EnsureIndex(ctx)
}

// printProvisionSummary outputs the converged environment endpoints.
func printProvisionSummary(cfg *config.Config, state *provisioning.State) {
	fmt.Printf("\nEnvironment %s is ready.\n\n", cfg.ClusterName)
	fmt.Printf("  Gremlin:    wss://%s:%d/gremlin\n", state.Cluster.Endpoint, state.Cluster.Port)
	fmt.Printf("  OpenSearch: https://%s\n", state.Domain.Endpoint)
	fmt.Printf("  Index:      %s (dimension %d)\n", cfg.Search.IndexName, cfg.Search.VectorDimension)
	if state.Cluster.Reused {
		fmt.Printf("\nThe database cluster pre-existed this run and was reused.\n")
	}
}
