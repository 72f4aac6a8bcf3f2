package awscloud

import (
	"context"
	"net"
)

// Resolver abstracts hostname resolution so tests can simulate DNS
// propagation lag without touching the network.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// NetResolver resolves through the system resolver.
type NetResolver struct{}

func (NetResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, host)
}
