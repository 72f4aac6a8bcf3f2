// Package config defines the benchmark run configuration and its loading,
// defaulting, and validation rules.
package config

import (
	"fmt"
	"net"
	"regexp"
	"time"
)

// Access modes for the database security group ingress rule.
const (
	// AccessCIDR permits inbound traffic on the database port from a CIDR
	// block (external clients).
	AccessCIDR = "cidr"
	// AccessPeer permits inbound traffic on the database port from a peer
	// security group (clients inside the VPC).
	AccessPeer = "peer"
)

// Search result scoring modes.
const (
	SearchKNN         = "knn"
	SearchScriptScore = "script_score"
)

// Config holds the full configuration for one benchmark environment.
type Config struct {
	// ClusterName is the logical name of the graph cluster; it prefixes
	// every network and database resource.
	ClusterName string `yaml:"clusterName"`

	// DomainName is the OpenSearch domain name. Defaults to ClusterName
	// truncated to the provider limit.
	DomainName string `yaml:"domainName"`

	Region  string `yaml:"region"`
	Verbose bool   `yaml:"verbose"`

	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Network  NetworkConfig  `yaml:"network"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Retry    RetryConfig    `yaml:"retry"`
	AWS      AWSConfig      `yaml:"aws"`
}

// CleanupConfig gates teardown. Nothing is ever deleted unless Enabled is
// set explicitly.
type CleanupConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NetworkConfig describes the VPC topology.
type NetworkConfig struct {
	VPCCIDR string `yaml:"vpcCIDR"`

	// Access selects how clients reach the database port: "cidr" opens the
	// port to AllowedCIDR, "peer" opens it to PeerSecurityGroup.
	Access            string `yaml:"access"`
	AllowedCIDR       string `yaml:"allowedCIDR"`
	PeerSecurityGroup string `yaml:"peerSecurityGroup"`
}

// DatabaseConfig describes the Neptune cluster.
type DatabaseConfig struct {
	EngineVersion        string  `yaml:"engineVersion"`
	ParameterGroupFamily string  `yaml:"parameterGroupFamily"`
	InstanceClass        string  `yaml:"instanceClass"`
	Port                 int32   `yaml:"port"`
	MinCapacity          float64 `yaml:"minCapacity"`
	MaxCapacity          float64 `yaml:"maxCapacity"`
}

// SearchConfig describes the OpenSearch domain and vector index.
type SearchConfig struct {
	EngineVersion string `yaml:"engineVersion"`
	InstanceType  string `yaml:"instanceType"`
	InstanceCount int32  `yaml:"instanceCount"`
	VolumeSize    int32  `yaml:"volumeSize"`

	IndexName       string `yaml:"indexName"`
	SearchType      string `yaml:"searchType"`
	VectorDimension int    `yaml:"vectorDimension"`
}

// RetryConfig tunes the backoff applied to control-plane and data-plane
// calls.
type RetryConfig struct {
	MaxRetries int           `yaml:"maxRetries"`
	MinDelay   time.Duration `yaml:"minDelay"`
	MaxDelay   time.Duration `yaml:"maxDelay"`
}

// AWSConfig holds optional credential overrides. When empty the default
// credential chain applies.
type AWSConfig struct {
	Profile   string `yaml:"profile"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// MaxDomainNameLength is the OpenSearch Service limit on domain names.
const MaxDomainNameLength = 28

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ApplyDefaults fills unset fields with the standard benchmark topology.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = "us-west-2"
	}
	if c.DomainName == "" {
		c.DomainName = c.ClusterName
		if len(c.DomainName) > MaxDomainNameLength {
			c.DomainName = c.DomainName[:MaxDomainNameLength]
		}
	}
	if c.Network.VPCCIDR == "" {
		c.Network.VPCCIDR = "10.0.0.0/16"
	}
	if c.Network.Access == "" {
		c.Network.Access = AccessCIDR
	}
	if c.Network.AllowedCIDR == "" {
		c.Network.AllowedCIDR = "0.0.0.0/0"
	}
	if c.Database.EngineVersion == "" {
		c.Database.EngineVersion = "1.2.1.0"
	}
	if c.Database.ParameterGroupFamily == "" {
		c.Database.ParameterGroupFamily = "neptune1.2"
	}
	if c.Database.InstanceClass == "" {
		c.Database.InstanceClass = "db.serverless"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 8182
	}
	if c.Database.MinCapacity == 0 {
		c.Database.MinCapacity = 1.0
	}
	if c.Database.MaxCapacity == 0 {
		c.Database.MaxCapacity = 8.0
	}
	if c.Search.EngineVersion == "" {
		c.Search.EngineVersion = "OpenSearch_2.3"
	}
	if c.Search.InstanceType == "" {
		c.Search.InstanceType = "t3.small.search"
	}
	if c.Search.InstanceCount == 0 {
		c.Search.InstanceCount = 1
	}
	if c.Search.VolumeSize == 0 {
		c.Search.VolumeSize = 10
	}
	if c.Search.IndexName == "" {
		c.Search.IndexName = c.ClusterName + "-vectors"
	}
	if c.Search.SearchType == "" {
		c.Search.SearchType = SearchKNN
	}
	if c.Search.VectorDimension == 0 {
		c.Search.VectorDimension = 1024
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 5
	}
	if c.Retry.MinDelay == 0 {
		c.Retry.MinDelay = 1 * time.Second
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 30 * time.Second
	}
}

// Validate rejects configurations that would fail against the control plane
// anyway, before any network call is made.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("clusterName is required")
	}
	if !namePattern.MatchString(c.ClusterName) {
		return fmt.Errorf("clusterName %q must start with a letter and contain only lowercase letters, digits, and hyphens", c.ClusterName)
	}
	if !namePattern.MatchString(c.DomainName) {
		return fmt.Errorf("domainName %q must start with a letter and contain only lowercase letters, digits, and hyphens", c.DomainName)
	}
	if len(c.DomainName) > MaxDomainNameLength {
		return fmt.Errorf("domainName %q exceeds the %d character limit", c.DomainName, MaxDomainNameLength)
	}
	if _, _, err := net.ParseCIDR(c.Network.VPCCIDR); err != nil {
		return fmt.Errorf("network.vpcCIDR: %w", err)
	}
	switch c.Network.Access {
	case AccessCIDR:
		if _, _, err := net.ParseCIDR(c.Network.AllowedCIDR); err != nil {
			return fmt.Errorf("network.allowedCIDR: %w", err)
		}
	case AccessPeer:
		if c.Network.PeerSecurityGroup == "" {
			return fmt.Errorf("network.peerSecurityGroup is required when access is %q", AccessPeer)
		}
	default:
		return fmt.Errorf("network.access must be %q or %q, got %q", AccessCIDR, AccessPeer, c.Network.Access)
	}
	switch c.Search.SearchType {
	case SearchKNN, SearchScriptScore:
	default:
		return fmt.Errorf("search.searchType must be %q or %q, got %q", SearchKNN, SearchScriptScore, c.Search.SearchType)
	}
	if c.Database.MinCapacity > c.Database.MaxCapacity {
		return fmt.Errorf("database.minCapacity %v exceeds maxCapacity %v", c.Database.MinCapacity, c.Database.MaxCapacity)
	}
	return nil
}
