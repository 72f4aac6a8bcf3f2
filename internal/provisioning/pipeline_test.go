package provisioning

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusholm/graphbench/internal/platform/awscloud"
)

type fakePhase struct {
	name string
	err  error
	log  *[]string
}

func (p *fakePhase) Name() string { return p.name }

func (p *fakePhase) Provision(_ *Context) error {
	*p.log = append(*p.log, p.name)
	return p.err
}

func TestRunPhases_SequentialOrder(t *testing.T) {
	var log []string
	ctx := NewContext(context.Background(), testConfig(), testTimeouts(), NopObserver{})

	err := RunPhases(ctx, []Phase{
		&fakePhase{name: "first", log: &log},
		&fakePhase{name: "second", log: &log},
		&fakePhase{name: "third", log: &log},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, log)
}

func TestRunPhases_StopsOnFailure(t *testing.T) {
	var log []string
	ctx := NewContext(context.Background(), testConfig(), testTimeouts(), NopObserver{})

	err := RunPhases(ctx, []Phase{
		&fakePhase{name: "first", log: &log},
		&fakePhase{name: "second", err: fmt.Errorf("boom"), log: &log},
		&fakePhase{name: "third", log: &log},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second phase failed")
	assert.Equal(t, []string{"first", "second"}, log, "phases after a failure must not run")
}

func TestClusterPhase_RequiresTopology(t *testing.T) {
	rec := &awscloud.Recorder{}
	p := NewClusterProvisioner(&awscloud.MockNeptune{Recorder: rec}, &awscloud.MockEC2{Recorder: rec}, &fakeResolver{}, testConfig(), testTimeouts(), NopObserver{})

	ctx := NewContext(context.Background(), testConfig(), testTimeouts(), NopObserver{})
	err := p.Provision(ctx)
	require.Error(t, err)
	assert.Empty(t, rec.Calls, "the database phase must not run without a network")
}

// TestRunPhases_ConvergedEnvironmentIsReadOnly runs the full pipeline
// against an environment where everything already exists and asserts that
// provisioning completes, populates the shared state, and never mutates
// anything.
func TestRunPhases_ConvergedEnvironmentIsReadOnly(t *testing.T) {
	rec := &awscloud.Recorder{}
	cfg := testConfig()
	timeouts := testTimeouts()

	ec2Mock := convergedNetworkMock(rec)
	dbMock := &awscloud.MockNeptune{
		Recorder: rec,
		DescribeDBClustersFunc: func(_ context.Context, _ *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error) {
			return describedCluster("available", true, "bench-params"), nil
		},
		DescribeDBInstancesFunc: func(_ context.Context, params *neptune.DescribeDBInstancesInput) (*neptune.DescribeDBInstancesOutput, error) {
			return availableInstance(aws.ToString(params.DBInstanceIdentifier)), nil
		},
	}
	searchMock := &awscloud.MockOpenSearch{
		Recorder: rec,
		DescribeDomainFunc: func(_ context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error) {
			return activeDomain(aws.ToString(params.DomainName)), nil
		},
	}
	resolver := &fakeResolver{}

	phases := []Phase{
		NewNetworkProvisioner(ec2Mock, cfg, timeouts, NopObserver{}),
		NewClusterProvisioner(dbMock, ec2Mock, resolver, cfg, timeouts, NopObserver{}),
		NewDomainProvisioner(searchMock, resolver, cfg, timeouts, NopObserver{}, ""),
	}

	ctx := NewContext(context.Background(), cfg, timeouts, NopObserver{})
	require.NoError(t, RunPhases(ctx, phases))

	require.NotNil(t, ctx.State.Topology)
	require.NotNil(t, ctx.State.Cluster)
	require.NotNil(t, ctx.State.Domain)
	assert.Equal(t, "vpc-1", ctx.State.Topology.VPCID)
	assert.True(t, ctx.State.Cluster.Usable())
	assert.True(t, ctx.State.Cluster.Reused)
	assert.True(t, ctx.State.Domain.Active())
	assert.True(t, ctx.State.Domain.Reused)

	for _, call := range rec.Calls {
		if strings.HasPrefix(call, "Create") || strings.HasPrefix(call, "Modify") ||
			strings.HasPrefix(call, "Delete") || strings.HasPrefix(call, "Authorize") {
			t.Fatalf("mutating call %s issued against a converged environment", call)
		}
	}
	assert.Equal(t, 0, resolver.calls, "no DNS waits on a fully converged environment")
}
