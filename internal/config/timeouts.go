package config

import (
	"os"
	"time"
)

// Timeouts holds the convergence bounds for every poll loop.
// These values can be customized via environment variables.
type Timeouts struct {
	ClusterAvailable  time.Duration // cluster create/modify convergence
	InstanceAvailable time.Duration // compute instance convergence
	DomainActive      time.Duration // search domain convergence
	NATAvailable      time.Duration // NAT gateway convergence
	Delete            time.Duration // deletion confirmation per resource
	DNSPropagation    time.Duration // endpoint DNS resolution window

	PollInterval time.Duration // status re-query interval
	DNSInterval  time.Duration // DNS re-query interval
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
//
// Environment Variables:
//   - GRAPHBENCH_TIMEOUT_CLUSTER (default: 30m)
//   - GRAPHBENCH_TIMEOUT_INSTANCE (default: 30m)
//   - GRAPHBENCH_TIMEOUT_DOMAIN (default: 30m)
//   - GRAPHBENCH_TIMEOUT_NAT (default: 10m)
//   - GRAPHBENCH_TIMEOUT_DELETE (default: 30m)
//   - GRAPHBENCH_TIMEOUT_DNS (default: 5m)
//   - GRAPHBENCH_POLL_INTERVAL (default: 30s)
//   - GRAPHBENCH_DNS_INTERVAL (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ClusterAvailable:  parseDuration("GRAPHBENCH_TIMEOUT_CLUSTER", 30*time.Minute),
		InstanceAvailable: parseDuration("GRAPHBENCH_TIMEOUT_INSTANCE", 30*time.Minute),
		DomainActive:      parseDuration("GRAPHBENCH_TIMEOUT_DOMAIN", 30*time.Minute),
		NATAvailable:      parseDuration("GRAPHBENCH_TIMEOUT_NAT", 10*time.Minute),
		Delete:            parseDuration("GRAPHBENCH_TIMEOUT_DELETE", 30*time.Minute),
		DNSPropagation:    parseDuration("GRAPHBENCH_TIMEOUT_DNS", 5*time.Minute),
		PollInterval:      parseDuration("GRAPHBENCH_POLL_INTERVAL", 30*time.Second),
		DNSInterval:       parseDuration("GRAPHBENCH_DNS_INTERVAL", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
