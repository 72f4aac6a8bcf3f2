package provisioning

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	opensearchtypes "github.com/aws/aws-sdk-go-v2/service/opensearch/types"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/util/waiter"
)

// DomainProvisioner converges the OpenSearch domain that backs vector
// search. The domain is created with encryption at rest, node-to-node
// encryption, and HTTPS-only endpoints; an existing domain is reused once
// it stops processing changes.
type DomainProvisioner struct {
	search   awscloud.OpenSearchAPI
	resolver awscloud.Resolver
	cfg      *config.Config
	timeouts *config.Timeouts
	obs      Observer

	// callerARN scopes the domain access policy to the provisioning
	// identity. Empty leaves the policy unset.
	callerARN string
}

// NewDomainProvisioner creates a search domain provisioner.
func NewDomainProvisioner(search awscloud.OpenSearchAPI, resolver awscloud.Resolver, cfg *config.Config, timeouts *config.Timeouts, obs Observer, callerARN string) *DomainProvisioner {
	return &DomainProvisioner{search: search, resolver: resolver, cfg: cfg, timeouts: timeouts, obs: obs, callerARN: callerARN}
}

// Name implements Phase.
func (p *DomainProvisioner) Name() string { return "search" }

// Provision implements Phase.
func (p *DomainProvisioner) Provision(ctx *Context) error {
	res, err := p.EnsureDomain(ctx)
	if err != nil {
		return err
	}
	ctx.State.Domain = res
	return nil
}

// EnsureDomain finds or creates the search domain and returns it once it is
// active with an endpoint. A domain mid-deletion is waited out and then
// recreated; a domain mid-processing is waited on; an active domain is
// returned immediately without the DNS grace period.
func (p *DomainProvisioner) EnsureDomain(ctx context.Context) (*DomainResource, error) {
	name := p.cfg.DomainName
	if len(name) > config.MaxDomainNameLength {
		return nil, fmt.Errorf("domain name %q exceeds the %d character limit", name, config.MaxDomainNameLength)
	}

	status, err := p.findDomain(ctx, name)
	if err != nil {
		return nil, err
	}
	if status != nil {
		if aws.ToBool(status.Deleted) {
			p.obs.Printf("domain %s is mid-deletion, waiting for it to disappear", name)
			if err := p.waitDomainGone(ctx, name); err != nil {
				return nil, err
			}
		} else {
			return p.reuseDomain(ctx, name, status)
		}
	}
	return p.createDomain(ctx, name)
}

func (p *DomainProvisioner) call(ctx context.Context, fn func() error) error {
	return cloudCall(ctx, p.cfg.Retry, fn)
}

func (p *DomainProvisioner) findDomain(ctx context.Context, name string) (*opensearchtypes.DomainStatus, error) {
	var out *opensearch.DescribeDomainOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.search.DescribeDomain(ctx, &opensearch.DescribeDomainInput{
			DomainName: aws.String(name),
		})
		return err
	})
	if awscloud.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("describing domain %s: %w", name, err)
	}
	return out.DomainStatus, nil
}

func (p *DomainProvisioner) reuseDomain(ctx context.Context, name string, status *opensearchtypes.DomainStatus) (*DomainResource, error) {
	endpoint := domainEndpoint(status)
	if aws.ToBool(status.Processing) || endpoint == "" {
		p.obs.Printf("reusing domain %s, waiting for it to finish processing", name)
		var err error
		endpoint, err = p.waitDomainActive(ctx, name)
		if err != nil {
			return nil, err
		}
	} else {
		p.obs.Printf("reusing domain %s", name)
	}

	return &DomainResource{
		Name:          name,
		EngineVersion: aws.ToString(status.EngineVersion),
		Endpoint:      endpoint,
		Status:        StatusActive,
		Reused:        true,
	}, nil
}

func (p *DomainProvisioner) createDomain(ctx context.Context, name string) (*DomainResource, error) {
	p.obs.Printf("creating domain %s", name)
	in := &opensearch.CreateDomainInput{
		DomainName:    aws.String(name),
		EngineVersion: aws.String(p.cfg.Search.EngineVersion),
		ClusterConfig: &opensearchtypes.ClusterConfig{
			InstanceType:           opensearchtypes.OpenSearchPartitionInstanceType(p.cfg.Search.InstanceType),
			InstanceCount:          aws.Int32(p.cfg.Search.InstanceCount),
			DedicatedMasterEnabled: aws.Bool(false),
			ZoneAwarenessEnabled:   aws.Bool(false),
		},
		EBSOptions: &opensearchtypes.EBSOptions{
			EBSEnabled: aws.Bool(true),
			VolumeType: opensearchtypes.VolumeTypeGp2,
			VolumeSize: aws.Int32(p.cfg.Search.VolumeSize),
		},
		EncryptionAtRestOptions: &opensearchtypes.EncryptionAtRestOptions{
			Enabled: aws.Bool(true),
		},
		NodeToNodeEncryptionOptions: &opensearchtypes.NodeToNodeEncryptionOptions{
			Enabled: aws.Bool(true),
		},
		DomainEndpointOptions: &opensearchtypes.DomainEndpointOptions{
			EnforceHTTPS:      aws.Bool(true),
			TLSSecurityPolicy: opensearchtypes.TLSSecurityPolicyPolicyMinTls12201907,
		},
	}
	if p.callerARN != "" {
		in.AccessPolicies = aws.String(accessPolicy(p.callerARN, p.cfg.Region, name))
	}

	err := p.call(ctx, func() error {
		_, err := p.search.CreateDomain(ctx, in)
		return err
	})
	if err != nil && !awscloud.IsAlreadyExists(err) {
		return nil, fmt.Errorf("creating domain %s: %w", name, err)
	}

	endpoint, err := p.waitDomainActive(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := waitDNS(ctx, p.resolver, endpoint, p.timeouts.DNSInterval, p.timeouts.DNSPropagation); err != nil {
		return nil, err
	}

	return &DomainResource{
		Name:          name,
		EngineVersion: p.cfg.Search.EngineVersion,
		Endpoint:      endpoint,
		Status:        StatusActive,
	}, nil
}

// waitDomainActive blocks until the domain stops processing and publishes
// an endpoint, and returns that endpoint.
func (p *DomainProvisioner) waitDomainActive(ctx context.Context, name string) (string, error) {
	var endpoint string
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "domain " + name,
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.DomainActive,
		Fatal:    []string{string(StatusDeleting)},
	}, func(ctx context.Context) (string, bool, error) {
		status, err := p.findDomain(ctx, name)
		if err != nil {
			return "", false, err
		}
		if status == nil {
			return string(StatusAbsent), false, nil
		}
		if aws.ToBool(status.Deleted) {
			return string(StatusDeleting), false, nil
		}
		if aws.ToBool(status.Processing) {
			return string(StatusProcessing), false, nil
		}
		endpoint = domainEndpoint(status)
		if endpoint == "" {
			return string(StatusCreating), false, nil
		}
		return string(StatusActive), true, nil
	})
	return endpoint, err
}

func (p *DomainProvisioner) waitDomainGone(ctx context.Context, name string) error {
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "deletion of domain " + name,
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.Delete,
	}, func(ctx context.Context) (string, bool, error) {
		status, err := p.findDomain(ctx, name)
		if err != nil {
			return "", false, err
		}
		if status == nil {
			return "deleted", true, nil
		}
		return string(StatusDeleting), false, nil
	})
	return err
}

// domainEndpoint extracts the usable endpoint from a domain status,
// covering both public and VPC-scoped domains.
func domainEndpoint(status *opensearchtypes.DomainStatus) string {
	if ep := aws.ToString(status.Endpoint); ep != "" {
		return ep
	}
	if ep, ok := status.Endpoints["vpc"]; ok {
		return ep
	}
	return ""
}

// accessPolicy renders a domain access policy granting the provisioning
// identity full access to this domain only.
func accessPolicy(callerARN, region, domain string) string {
	account := ""
	if parts := strings.Split(callerARN, ":"); len(parts) >= 5 {
		account = parts[4]
	}
	return fmt.Sprintf(
		`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":%q},"Action":"es:*","Resource":"arn:aws:es:%s:%s:domain/%s/*"}]}`,
		callerARN, region, account, domain,
	)
}
