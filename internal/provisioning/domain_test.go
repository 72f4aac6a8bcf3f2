package provisioning

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	opensearchtypes "github.com/aws/aws-sdk-go-v2/service/opensearch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusholm/graphbench/internal/platform/awscloud"
)

const testDomainEndpoint = "search-bench-abc123.us-west-2.es.amazonaws.com"

func activeDomain(name string) *opensearch.DescribeDomainOutput {
	return &opensearch.DescribeDomainOutput{
		DomainStatus: &opensearchtypes.DomainStatus{
			DomainName:    aws.String(name),
			EngineVersion: aws.String("OpenSearch_2.3"),
			Processing:    aws.Bool(false),
			Deleted:       aws.Bool(false),
			Endpoint:      aws.String(testDomainEndpoint),
		},
	}
}

func TestEnsureDomain_RejectsOverlongName(t *testing.T) {
	rec := &awscloud.Recorder{}
	cfg := testConfig()
	cfg.DomainName = strings.Repeat("a", 29)

	p := NewDomainProvisioner(&awscloud.MockOpenSearch{Recorder: rec}, &fakeResolver{}, cfg, testTimeouts(), NopObserver{}, "")
	_, err := p.EnsureDomain(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "character limit")
	assert.Empty(t, rec.Calls, "the name is rejected before any API call")
}

func TestEnsureDomain_ReusesActive(t *testing.T) {
	rec := &awscloud.Recorder{}
	mock := &awscloud.MockOpenSearch{
		Recorder: rec,
		DescribeDomainFunc: func(_ context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error) {
			return activeDomain(aws.ToString(params.DomainName)), nil
		},
	}

	resolver := &fakeResolver{}
	p := NewDomainProvisioner(mock, resolver, testConfig(), testTimeouts(), NopObserver{}, "")
	res, err := p.EnsureDomain(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Reused)
	assert.True(t, res.Active())
	assert.Equal(t, testDomainEndpoint, res.Endpoint)
	assert.Equal(t, 0, rec.Count("CreateDomain"))
	assert.Equal(t, 0, resolver.calls, "no DNS grace period for a pre-existing domain")
}

func TestEnsureDomain_WaitsForProcessingDomain(t *testing.T) {
	rec := &awscloud.Recorder{}
	describes := 0
	mock := &awscloud.MockOpenSearch{
		Recorder: rec,
		DescribeDomainFunc: func(_ context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error) {
			describes++
			if describes < 3 {
				return &opensearch.DescribeDomainOutput{
					DomainStatus: &opensearchtypes.DomainStatus{
						DomainName: params.DomainName,
						Processing: aws.Bool(true),
						Deleted:    aws.Bool(false),
					},
				}, nil
			}
			return activeDomain(aws.ToString(params.DomainName)), nil
		},
	}

	p := NewDomainProvisioner(mock, &fakeResolver{}, testConfig(), testTimeouts(), NopObserver{}, "")
	res, err := p.EnsureDomain(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Reused)
	assert.Equal(t, testDomainEndpoint, res.Endpoint)
	assert.Equal(t, 0, rec.Count("CreateDomain"), "a processing domain is waited on, not recreated")
}

func TestEnsureDomain_CreatesWhenAbsent(t *testing.T) {
	rec := &awscloud.Recorder{}
	var created bool
	var describesAfterCreate int
	var createInput *opensearch.CreateDomainInput

	mock := &awscloud.MockOpenSearch{
		Recorder: rec,
		DescribeDomainFunc: func(_ context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error) {
			if !created {
				return nil, awscloud.APIError("ResourceNotFoundException", "no such domain")
			}
			describesAfterCreate++
			if describesAfterCreate == 1 {
				return &opensearch.DescribeDomainOutput{
					DomainStatus: &opensearchtypes.DomainStatus{
						DomainName: params.DomainName,
						Processing: aws.Bool(true),
						Deleted:    aws.Bool(false),
					},
				}, nil
			}
			return activeDomain(aws.ToString(params.DomainName)), nil
		},
		CreateDomainFunc: func(_ context.Context, params *opensearch.CreateDomainInput) (*opensearch.CreateDomainOutput, error) {
			created = true
			createInput = params
			return &opensearch.CreateDomainOutput{}, nil
		},
	}

	resolver := &fakeResolver{failures: 1}
	callerARN := "arn:aws:iam::123456789012:user/bench"
	p := NewDomainProvisioner(mock, resolver, testConfig(), testTimeouts(), NopObserver{}, callerARN)

	res, err := p.EnsureDomain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bench", res.Name)
	assert.Equal(t, testDomainEndpoint, res.Endpoint)
	assert.True(t, res.Active())
	assert.False(t, res.Reused)
	assert.Equal(t, 1, rec.Count("CreateDomain"))

	require.NotNil(t, createInput)
	assert.Equal(t, "OpenSearch_2.3", aws.ToString(createInput.EngineVersion))
	assert.Equal(t, opensearchtypes.OpenSearchPartitionInstanceType("t3.small.search"), createInput.ClusterConfig.InstanceType)
	assert.Equal(t, int32(1), aws.ToInt32(createInput.ClusterConfig.InstanceCount))
	assert.True(t, aws.ToBool(createInput.EBSOptions.EBSEnabled))
	assert.Equal(t, int32(10), aws.ToInt32(createInput.EBSOptions.VolumeSize))
	assert.True(t, aws.ToBool(createInput.EncryptionAtRestOptions.Enabled))
	assert.True(t, aws.ToBool(createInput.NodeToNodeEncryptionOptions.Enabled))
	assert.True(t, aws.ToBool(createInput.DomainEndpointOptions.EnforceHTTPS))
	assert.Equal(t, opensearchtypes.TLSSecurityPolicyPolicyMinTls12201907, createInput.DomainEndpointOptions.TLSSecurityPolicy)

	policy := aws.ToString(createInput.AccessPolicies)
	assert.Contains(t, policy, callerARN)
	assert.Contains(t, policy, "arn:aws:es:us-west-2:123456789012:domain/bench/*")

	assert.Equal(t, 2, resolver.calls, "endpoint DNS is awaited after create")
}

func TestEnsureDomain_WaitsOutDeletionThenRecreates(t *testing.T) {
	rec := &awscloud.Recorder{}
	var created bool
	var describes int
	mock := &awscloud.MockOpenSearch{
		Recorder: rec,
		DescribeDomainFunc: func(_ context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error) {
			describes++
			if created {
				return activeDomain(aws.ToString(params.DomainName)), nil
			}
			if describes == 1 {
				return &opensearch.DescribeDomainOutput{
					DomainStatus: &opensearchtypes.DomainStatus{
						DomainName: params.DomainName,
						Processing: aws.Bool(true),
						Deleted:    aws.Bool(true),
					},
				}, nil
			}
			return nil, awscloud.APIError("ResourceNotFoundException", "no such domain")
		},
		CreateDomainFunc: func(_ context.Context, _ *opensearch.CreateDomainInput) (*opensearch.CreateDomainOutput, error) {
			created = true
			return &opensearch.CreateDomainOutput{}, nil
		},
	}

	p := NewDomainProvisioner(mock, &fakeResolver{}, testConfig(), testTimeouts(), NopObserver{}, "")
	res, err := p.EnsureDomain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count("CreateDomain"))
	assert.True(t, res.Active())
	assert.False(t, res.Reused)
}
