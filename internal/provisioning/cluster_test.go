package provisioning

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	neptunetypes "github.com/aws/aws-sdk-go-v2/service/neptune/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusholm/graphbench/internal/platform/awscloud"
)

const testEndpoint = "bench.cluster-abc.us-west-2.neptune.amazonaws.com"

// fakeResolver resolves after a configurable number of failures and counts
// lookups, so tests can tell whether the DNS wait ran.
type fakeResolver struct {
	failures int
	calls    int
}

func (r *fakeResolver) LookupHost(_ context.Context, _ string) ([]string, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, fmt.Errorf("no such host")
	}
	return []string{"10.0.1.20"}, nil
}

func testTopology() *NetworkTopology {
	return &NetworkTopology{
		VPCID:             "vpc-1",
		PublicSubnetIDs:   []string{"subnet-pub1", "subnet-pub2"},
		PrivateSubnetIDs:  []string{"subnet-priv1", "subnet-priv2"},
		InternetGatewayID: "igw-1",
		NATGatewayID:      "nat-1",
		AllocationID:      "eipalloc-1",
		SecurityGroupID:   "sg-1",
	}
}

// validationEC2Mock answers the cross-VPC checks with resources in the
// given VPCs.
func validationEC2Mock(rec *awscloud.Recorder, sgVPC, subnetVPC string) *awscloud.MockEC2 {
	return &awscloud.MockEC2{
		Recorder: rec,
		DescribeSecurityGroupsFunc: func(_ context.Context, params *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return &ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{GroupId: aws.String(params.GroupIds[0]), VpcId: aws.String(sgVPC)},
				},
			}, nil
		},
		DescribeSubnetsFunc: func(_ context.Context, params *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			subnets := make([]ec2types.Subnet, 0, len(params.SubnetIds))
			for _, id := range params.SubnetIds {
				subnets = append(subnets, ec2types.Subnet{
					SubnetId: aws.String(id),
					VpcId:    aws.String(subnetVPC),
				})
			}
			return &ec2.DescribeSubnetsOutput{Subnets: subnets}, nil
		},
	}
}

func describedCluster(status string, iamAuth bool, paramGroup string) *neptune.DescribeDBClustersOutput {
	return &neptune.DescribeDBClustersOutput{
		DBClusters: []neptunetypes.DBCluster{{
			DBClusterIdentifier:              aws.String("bench"),
			Status:                           aws.String(status),
			Endpoint:                         aws.String(testEndpoint),
			IAMDatabaseAuthenticationEnabled: aws.Bool(iamAuth),
			DBClusterParameterGroup:          aws.String(paramGroup),
			DBSubnetGroup:                    aws.String("bench-subnet-group"),
		}},
	}
}

func availableInstance(id string) *neptune.DescribeDBInstancesOutput {
	return &neptune.DescribeDBInstancesOutput{
		DBInstances: []neptunetypes.DBInstance{{
			DBInstanceIdentifier: aws.String(id),
			DBInstanceStatus:     aws.String("available"),
		}},
	}
}

func TestEnsureCluster_CreatesWhenAbsent(t *testing.T) {
	rec := &awscloud.Recorder{}
	var created, instanceCreated bool
	var describesAfterCreate, instanceDescribes int
	var createInput *neptune.CreateDBClusterInput

	db := &awscloud.MockNeptune{
		Recorder: rec,
		DescribeDBClustersFunc: func(_ context.Context, _ *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error) {
			if !created {
				return nil, awscloud.APIError("DBClusterNotFoundFault", "no such cluster")
			}
			describesAfterCreate++
			status := "creating"
			if describesAfterCreate > 1 {
				status = "available"
			}
			return describedCluster(status, true, "bench-params"), nil
		},
		CreateDBClusterFunc: func(_ context.Context, params *neptune.CreateDBClusterInput) (*neptune.CreateDBClusterOutput, error) {
			created = true
			createInput = params
			return &neptune.CreateDBClusterOutput{}, nil
		},
		DescribeDBInstancesFunc: func(_ context.Context, _ *neptune.DescribeDBInstancesInput) (*neptune.DescribeDBInstancesOutput, error) {
			if !instanceCreated {
				return nil, awscloud.APIError("DBInstanceNotFound", "no such instance")
			}
			instanceDescribes++
			if instanceDescribes == 1 {
				return &neptune.DescribeDBInstancesOutput{
					DBInstances: []neptunetypes.DBInstance{{
						DBInstanceIdentifier: aws.String("bench-instance"),
						DBInstanceStatus:     aws.String("creating"),
					}},
				}, nil
			}
			return availableInstance("bench-instance"), nil
		},
		CreateDBInstanceFunc: func(_ context.Context, params *neptune.CreateDBInstanceInput) (*neptune.CreateDBInstanceOutput, error) {
			instanceCreated = true
			assert.Equal(t, "bench-instance", aws.ToString(params.DBInstanceIdentifier))
			assert.Equal(t, "db.serverless", aws.ToString(params.DBInstanceClass))
			return &neptune.CreateDBInstanceOutput{}, nil
		},
	}

	resolver := &fakeResolver{failures: 2}
	p := NewClusterProvisioner(db, validationEC2Mock(rec, "vpc-1", "vpc-1"), resolver, testConfig(), testTimeouts(), NopObserver{})

	res, err := p.EnsureCluster(context.Background(), testTopology())
	require.NoError(t, err)

	assert.Equal(t, "bench", res.ClusterID)
	assert.Equal(t, "bench-instance", res.InstanceID)
	assert.Equal(t, testEndpoint, res.Endpoint)
	assert.Equal(t, int32(8182), res.Port)
	assert.True(t, res.IAMAuthEnabled)
	assert.True(t, res.Usable())
	assert.False(t, res.Reused)

	assert.Equal(t, 1, rec.Count("CreateDBClusterParameterGroup"))
	assert.Equal(t, 1, rec.Count("CreateDBSubnetGroup"))
	assert.Equal(t, 1, rec.Count("CreateDBCluster"))
	assert.Equal(t, 1, rec.Count("CreateDBInstance"))

	require.NotNil(t, createInput)
	assert.Equal(t, "neptune", aws.ToString(createInput.Engine))
	assert.Equal(t, "1.2.1.0", aws.ToString(createInput.EngineVersion))
	assert.Equal(t, int32(8182), aws.ToInt32(createInput.Port))
	assert.True(t, aws.ToBool(createInput.EnableIAMDatabaseAuthentication))
	assert.False(t, aws.ToBool(createInput.DeletionProtection))
	assert.Equal(t, []string{"sg-1"}, createInput.VpcSecurityGroupIds)
	require.NotNil(t, createInput.ServerlessV2ScalingConfiguration)
	assert.Equal(t, 1.0, aws.ToFloat64(createInput.ServerlessV2ScalingConfiguration.MinCapacity))
	assert.Equal(t, 8.0, aws.ToFloat64(createInput.ServerlessV2ScalingConfiguration.MaxCapacity))

	assert.Equal(t, 3, resolver.calls, "endpoint DNS is awaited after create")
}

func TestEnsureCluster_ReusesConverged(t *testing.T) {
	rec := &awscloud.Recorder{}
	db := &awscloud.MockNeptune{
		Recorder: rec,
		DescribeDBClustersFunc: func(_ context.Context, _ *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error) {
			return describedCluster("available", true, "bench-params"), nil
		},
		DescribeDBInstancesFunc: func(_ context.Context, params *neptune.DescribeDBInstancesInput) (*neptune.DescribeDBInstancesOutput, error) {
			return availableInstance(aws.ToString(params.DBInstanceIdentifier)), nil
		},
	}

	resolver := &fakeResolver{}
	p := NewClusterProvisioner(db, validationEC2Mock(rec, "vpc-1", "vpc-1"), resolver, testConfig(), testTimeouts(), NopObserver{})

	res, err := p.EnsureCluster(context.Background(), testTopology())
	require.NoError(t, err)

	assert.True(t, res.Reused)
	assert.True(t, res.Usable())
	assert.Equal(t, testEndpoint, res.Endpoint)

	assert.Equal(t, 0, rec.Count("CreateDBCluster"))
	assert.Equal(t, 0, rec.Count("CreateDBInstance"))
	assert.Equal(t, 0, rec.Count("CreateDBClusterParameterGroup"))
	assert.Equal(t, 0, rec.Count("CreateDBSubnetGroup"))
	assert.Equal(t, 0, rec.Count("ModifyDBCluster"))
	assert.Equal(t, 0, resolver.calls, "no DNS wait when the cluster was already converged")
}

func TestEnsureCluster_EnablesIAMAuth(t *testing.T) {
	rec := &awscloud.Recorder{}
	iamEnabled := false
	var modifyInput *neptune.ModifyDBClusterInput

	db := &awscloud.MockNeptune{
		Recorder: rec,
		DescribeDBClustersFunc: func(_ context.Context, _ *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error) {
			return describedCluster("available", iamEnabled, "bench-params"), nil
		},
		ModifyDBClusterFunc: func(_ context.Context, params *neptune.ModifyDBClusterInput) (*neptune.ModifyDBClusterOutput, error) {
			modifyInput = params
			iamEnabled = true
			return &neptune.ModifyDBClusterOutput{}, nil
		},
		DescribeDBInstancesFunc: func(_ context.Context, params *neptune.DescribeDBInstancesInput) (*neptune.DescribeDBInstancesOutput, error) {
			return availableInstance(aws.ToString(params.DBInstanceIdentifier)), nil
		},
	}

	resolver := &fakeResolver{}
	p := NewClusterProvisioner(db, validationEC2Mock(rec, "vpc-1", "vpc-1"), resolver, testConfig(), testTimeouts(), NopObserver{})

	res, err := p.EnsureCluster(context.Background(), testTopology())
	require.NoError(t, err)

	require.NotNil(t, modifyInput)
	assert.True(t, aws.ToBool(modifyInput.EnableIAMDatabaseAuthentication))
	assert.True(t, aws.ToBool(modifyInput.ApplyImmediately))
	assert.Equal(t, 1, rec.Count("ModifyDBCluster"))
	assert.Equal(t, 0, rec.Count("CreateDBCluster"), "repair must not recreate")
	assert.True(t, res.Reused)
	assert.True(t, res.IAMAuthEnabled)
	assert.Greater(t, resolver.calls, 0, "a repaired cluster gets the DNS wait")
}

func TestEnsureCluster_RejectsCrossVPCWiring(t *testing.T) {
	rec := &awscloud.Recorder{}
	db := &awscloud.MockNeptune{Recorder: rec}
	p := NewClusterProvisioner(db, validationEC2Mock(rec, "vpc-1", "vpc-2"), &fakeResolver{}, testConfig(), testTimeouts(), NopObserver{})

	_, err := p.EnsureCluster(context.Background(), testTopology())
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Contains(t, mismatch.Resource, "subnet")
	assert.Equal(t, 0, rec.Count("CreateDBCluster"), "nothing is created on a wiring mismatch")
}

func TestEnsureCluster_RefusesDeletingCluster(t *testing.T) {
	rec := &awscloud.Recorder{}
	db := &awscloud.MockNeptune{
		Recorder: rec,
		DescribeDBClustersFunc: func(_ context.Context, _ *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error) {
			return describedCluster("deleting", true, "bench-params"), nil
		},
	}
	p := NewClusterProvisioner(db, validationEC2Mock(rec, "vpc-1", "vpc-1"), &fakeResolver{}, testConfig(), testTimeouts(), NopObserver{})

	_, err := p.EnsureCluster(context.Background(), testTopology())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
	assert.Equal(t, 0, rec.Count("CreateDBCluster"))
	assert.Equal(t, 0, rec.Count("DeleteDBCluster"))
}

func TestClusterStatusMapping(t *testing.T) {
	tests := []struct {
		api  string
		want Status
	}{
		{"", StatusAbsent},
		{"available", StatusAvailable},
		{"creating", StatusCreating},
		{"backing-up", StatusCreating},
		{"modifying", StatusCreating},
		{"deleting", StatusDeleting},
		{"failed", StatusFailed},
		{"inaccessible-encryption-credentials", StatusFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClusterStatus(tt.api), "status %q", tt.api)
	}
}
