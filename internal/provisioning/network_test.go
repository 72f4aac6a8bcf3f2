package provisioning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
)

func testConfig() *config.Config {
	cfg := &config.Config{ClusterName: "bench"}
	cfg.ApplyDefaults()
	cfg.Retry = config.RetryConfig{MaxRetries: 2, MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return cfg
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		ClusterAvailable:  time.Second,
		InstanceAvailable: time.Second,
		DomainActive:      time.Second,
		NATAvailable:      time.Second,
		Delete:            time.Second,
		DNSPropagation:    time.Second,
		PollInterval:      time.Millisecond,
		DNSInterval:       time.Millisecond,
	}
}

func filterValues(filters []ec2types.Filter, name string) []string {
	for _, f := range filters {
		if aws.ToString(f.Name) == name {
			return f.Values
		}
	}
	return nil
}

func firstFilterValue(filters []ec2types.Filter, name string) string {
	if vals := filterValues(filters, name); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func twoZones(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error) {
	return &ec2.DescribeAvailabilityZonesOutput{
		AvailabilityZones: []ec2types.AvailabilityZone{
			{ZoneName: aws.String("us-west-2a"), State: ec2types.AvailabilityZoneStateAvailable},
			{ZoneName: aws.String("us-west-2b"), State: ec2types.AvailabilityZoneStateAvailable},
		},
	}, nil
}

// convergedNetworkMock describes a fully built topology for cluster
// "bench": vpc-1 with DNS hostnames on, igw-1 attached, four subnets, an
// available NAT gateway, both route tables with their default routes and
// associations, and the security group with its port rule.
func convergedNetworkMock(rec *awscloud.Recorder) *awscloud.MockEC2 {
	return &awscloud.MockEC2{
		Recorder: rec,
		DescribeVpcsFunc: func(_ context.Context, _ *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
			return &ec2.DescribeVpcsOutput{Vpcs: []ec2types.Vpc{{VpcId: aws.String("vpc-1")}}}, nil
		},
		DescribeVpcAttributeFunc: func(_ context.Context, _ *ec2.DescribeVpcAttributeInput) (*ec2.DescribeVpcAttributeOutput, error) {
			return &ec2.DescribeVpcAttributeOutput{
				EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
			}, nil
		},
		DescribeInternetGatewaysFunc: func(_ context.Context, _ *ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error) {
			return &ec2.DescribeInternetGatewaysOutput{
				InternetGateways: []ec2types.InternetGateway{{InternetGatewayId: aws.String("igw-1")}},
			}, nil
		},
		DescribeAvailabilityZonesFunc: twoZones,
		DescribeSubnetsFunc: func(_ context.Context, params *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			ids := map[string]string{
				"bench-public-1":  "subnet-pub1",
				"bench-private-1": "subnet-priv1",
				"bench-public-2":  "subnet-pub2",
				"bench-private-2": "subnet-priv2",
			}
			id, ok := ids[firstFilterValue(params.Filters, "tag:Name")]
			if !ok {
				return &ec2.DescribeSubnetsOutput{}, nil
			}
			return &ec2.DescribeSubnetsOutput{
				Subnets: []ec2types.Subnet{{SubnetId: aws.String(id), VpcId: aws.String("vpc-1")}},
			}, nil
		},
		DescribeNatGatewaysFunc: func(_ context.Context, _ *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
			return &ec2.DescribeNatGatewaysOutput{
				NatGateways: []ec2types.NatGateway{{
					NatGatewayId: aws.String("nat-1"),
					State:        ec2types.NatGatewayStateAvailable,
					NatGatewayAddresses: []ec2types.NatGatewayAddress{
						{AllocationId: aws.String("eipalloc-1")},
					},
				}},
			}, nil
		},
		DescribeRouteTablesFunc: func(_ context.Context, params *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
			switch firstFilterValue(params.Filters, "tag:Name") {
			case "bench-public-rt":
				return &ec2.DescribeRouteTablesOutput{RouteTables: []ec2types.RouteTable{{
					RouteTableId: aws.String("rtb-pub"),
					Routes: []ec2types.Route{
						{DestinationCidrBlock: aws.String("0.0.0.0/0"), GatewayId: aws.String("igw-1")},
					},
					Associations: []ec2types.RouteTableAssociation{
						{SubnetId: aws.String("subnet-pub1")},
						{SubnetId: aws.String("subnet-pub2")},
					},
				}}}, nil
			case "bench-private-rt":
				return &ec2.DescribeRouteTablesOutput{RouteTables: []ec2types.RouteTable{{
					RouteTableId: aws.String("rtb-priv"),
					Routes: []ec2types.Route{
						{DestinationCidrBlock: aws.String("0.0.0.0/0"), NatGatewayId: aws.String("nat-1")},
					},
					Associations: []ec2types.RouteTableAssociation{
						{SubnetId: aws.String("subnet-priv1")},
						{SubnetId: aws.String("subnet-priv2")},
					},
				}}}, nil
			}
			return &ec2.DescribeRouteTablesOutput{}, nil
		},
		DescribeSecurityGroupsFunc: func(_ context.Context, _ *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return &ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{{
					GroupId:   aws.String("sg-1"),
					GroupName: aws.String("bench-sg"),
					VpcId:     aws.String("vpc-1"),
					IpPermissions: []ec2types.IpPermission{{
						IpProtocol: aws.String("tcp"),
						FromPort:   aws.Int32(8182),
						ToPort:     aws.Int32(8182),
					}},
					IpPermissionsEgress: []ec2types.IpPermission{{IpProtocol: aws.String("-1")}},
				}},
			}, nil
		},
	}
}

func assertNoMutations(t *testing.T, rec *awscloud.Recorder) {
	t.Helper()
	for _, call := range rec.Calls {
		if strings.HasPrefix(call, "Create") || strings.HasPrefix(call, "Authorize") ||
			strings.HasPrefix(call, "Modify") || strings.HasPrefix(call, "Delete") ||
			call == "AllocateAddress" || call == "AttachInternetGateway" ||
			call == "AssociateRouteTable" || call == "ReplaceRoute" {
			t.Fatalf("mutating call %s issued against a converged environment", call)
		}
	}
}

func TestEnsureNetwork_CreatesMissingTopology(t *testing.T) {
	rec := &awscloud.Recorder{}
	var subnetCIDRs []string
	var routeTargets []string
	rtCount := 0
	mock := &awscloud.MockEC2{
		Recorder:                      rec,
		DescribeAvailabilityZonesFunc: twoZones,
		CreateVpcFunc: func(_ context.Context, params *ec2.CreateVpcInput) (*ec2.CreateVpcOutput, error) {
			assert.Equal(t, "10.0.0.0/16", aws.ToString(params.CidrBlock))
			return &ec2.CreateVpcOutput{Vpc: &ec2types.Vpc{VpcId: aws.String("vpc-new")}}, nil
		},
		CreateInternetGatewayFunc: func(_ context.Context, _ *ec2.CreateInternetGatewayInput) (*ec2.CreateInternetGatewayOutput, error) {
			return &ec2.CreateInternetGatewayOutput{
				InternetGateway: &ec2types.InternetGateway{InternetGatewayId: aws.String("igw-new")},
			}, nil
		},
		CreateSubnetFunc: func(_ context.Context, params *ec2.CreateSubnetInput) (*ec2.CreateSubnetOutput, error) {
			cidr := aws.ToString(params.CidrBlock)
			subnetCIDRs = append(subnetCIDRs, cidr)
			return &ec2.CreateSubnetOutput{
				Subnet: &ec2types.Subnet{SubnetId: aws.String("subnet-" + cidr)},
			}, nil
		},
		AllocateAddressFunc: func(_ context.Context, _ *ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error) {
			return &ec2.AllocateAddressOutput{AllocationId: aws.String("eipalloc-new")}, nil
		},
		CreateNatGatewayFunc: func(_ context.Context, params *ec2.CreateNatGatewayInput) (*ec2.CreateNatGatewayOutput, error) {
			assert.Equal(t, "subnet-10.0.0.0/24", aws.ToString(params.SubnetId), "NAT must land in the first public subnet")
			assert.Equal(t, "eipalloc-new", aws.ToString(params.AllocationId))
			return &ec2.CreateNatGatewayOutput{
				NatGateway: &ec2types.NatGateway{NatGatewayId: aws.String("nat-new")},
			}, nil
		},
		DescribeNatGatewaysFunc: func(_ context.Context, params *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
			if len(params.NatGatewayIds) == 0 {
				return &ec2.DescribeNatGatewaysOutput{}, nil
			}
			return &ec2.DescribeNatGatewaysOutput{
				NatGateways: []ec2types.NatGateway{{
					NatGatewayId: aws.String(params.NatGatewayIds[0]),
					State:        ec2types.NatGatewayStateAvailable,
				}},
			}, nil
		},
		CreateRouteTableFunc: func(_ context.Context, _ *ec2.CreateRouteTableInput) (*ec2.CreateRouteTableOutput, error) {
			rtCount++
			id := "rtb-pub"
			if rtCount > 1 {
				id = "rtb-priv"
			}
			return &ec2.CreateRouteTableOutput{
				RouteTable: &ec2types.RouteTable{RouteTableId: aws.String(id)},
			}, nil
		},
		CreateRouteFunc: func(_ context.Context, params *ec2.CreateRouteInput) (*ec2.CreateRouteOutput, error) {
			if params.GatewayId != nil {
				routeTargets = append(routeTargets, aws.ToString(params.GatewayId))
			} else {
				routeTargets = append(routeTargets, aws.ToString(params.NatGatewayId))
			}
			return &ec2.CreateRouteOutput{}, nil
		},
		CreateSecurityGroupFunc: func(_ context.Context, params *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error) {
			assert.Equal(t, "bench-sg", aws.ToString(params.GroupName))
			return &ec2.CreateSecurityGroupOutput{GroupId: aws.String("sg-new")}, nil
		},
	}

	p := NewNetworkProvisioner(mock, testConfig(), testTimeouts(), NopObserver{})
	topo, err := p.EnsureNetwork(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "vpc-new", topo.VPCID)
	assert.Equal(t, "igw-new", topo.InternetGatewayID)
	assert.Equal(t, "nat-new", topo.NATGatewayID)
	assert.Equal(t, "eipalloc-new", topo.AllocationID)
	assert.Equal(t, "sg-new", topo.SecurityGroupID)
	assert.Len(t, topo.PublicSubnetIDs, 2)
	assert.Len(t, topo.PrivateSubnetIDs, 2)

	assert.Equal(t, []string{"10.0.0.0/24", "10.0.1.0/24", "10.0.2.0/24", "10.0.3.0/24"}, subnetCIDRs,
		"public subnets take even third octets, private odd")
	assert.Equal(t, []string{"igw-new", "nat-new"}, routeTargets)

	assert.Equal(t, 1, rec.Count("CreateVpc"))
	assert.Equal(t, 1, rec.Count("ModifyVpcAttribute"), "DNS hostnames enabled on the new VPC")
	assert.Equal(t, 4, rec.Count("CreateSubnet"))
	assert.Equal(t, 2, rec.Count("ModifySubnetAttribute"), "only public subnets map public IPs")
	assert.Equal(t, 1, rec.Count("CreateNatGateway"))
	assert.Equal(t, 2, rec.Count("CreateRouteTable"))
	assert.Equal(t, 4, rec.Count("AssociateRouteTable"))
	assert.Equal(t, 1, rec.Count("AuthorizeSecurityGroupIngress"))
	assert.Equal(t, 0, rec.Count("AuthorizeSecurityGroupEgress"), "fresh groups carry the default egress rule")
}

func TestEnsureNetwork_ReusesConvergedTopology(t *testing.T) {
	rec := &awscloud.Recorder{}
	p := NewNetworkProvisioner(convergedNetworkMock(rec), testConfig(), testTimeouts(), NopObserver{})

	topo, err := p.EnsureNetwork(context.Background())
	require.NoError(t, err)
	assertNoMutations(t, rec)

	assert.Equal(t, "vpc-1", topo.VPCID)
	assert.Equal(t, "igw-1", topo.InternetGatewayID)
	assert.Equal(t, "nat-1", topo.NATGatewayID)
	assert.Equal(t, "eipalloc-1", topo.AllocationID)
	assert.Equal(t, "sg-1", topo.SecurityGroupID)
	assert.Equal(t, []string{"subnet-pub1", "subnet-pub2"}, topo.PublicSubnetIDs)
	assert.Equal(t, []string{"subnet-priv1", "subnet-priv2"}, topo.PrivateSubnetIDs)

	// A second pass is a pure no-op yielding the identical topology.
	again, err := p.EnsureNetwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, topo, again)
	assertNoMutations(t, rec)
}

func TestEnsureNetwork_RepairsMissingNAT(t *testing.T) {
	rec := &awscloud.Recorder{}
	mock := convergedNetworkMock(rec)

	// The NAT gateway is gone and the private route table lost its default
	// route with it. Everything else is intact.
	mock.DescribeNatGatewaysFunc = func(_ context.Context, params *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
		if len(params.NatGatewayIds) > 0 {
			return &ec2.DescribeNatGatewaysOutput{
				NatGateways: []ec2types.NatGateway{{
					NatGatewayId: aws.String(params.NatGatewayIds[0]),
					State:        ec2types.NatGatewayStateAvailable,
				}},
			}, nil
		}
		return &ec2.DescribeNatGatewaysOutput{}, nil
	}
	inner := mock.DescribeRouteTablesFunc
	mock.DescribeRouteTablesFunc = func(ctx context.Context, params *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
		out, err := inner(ctx, params)
		if err == nil && firstFilterValue(params.Filters, "tag:Name") == "bench-private-rt" {
			out.RouteTables[0].Routes = nil
		}
		return out, err
	}
	mock.AllocateAddressFunc = func(_ context.Context, _ *ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error) {
		return &ec2.AllocateAddressOutput{AllocationId: aws.String("eipalloc-new")}, nil
	}
	var natRoute string
	mock.CreateNatGatewayFunc = func(_ context.Context, _ *ec2.CreateNatGatewayInput) (*ec2.CreateNatGatewayOutput, error) {
		return &ec2.CreateNatGatewayOutput{
			NatGateway: &ec2types.NatGateway{NatGatewayId: aws.String("nat-new")},
		}, nil
	}
	mock.CreateRouteFunc = func(_ context.Context, params *ec2.CreateRouteInput) (*ec2.CreateRouteOutput, error) {
		natRoute = aws.ToString(params.NatGatewayId)
		return &ec2.CreateRouteOutput{}, nil
	}

	p := NewNetworkProvisioner(mock, testConfig(), testTimeouts(), NopObserver{})
	topo, err := p.EnsureNetwork(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count("AllocateAddress"))
	assert.Equal(t, 1, rec.Count("CreateNatGateway"))
	assert.Equal(t, 1, rec.Count("CreateRoute"))
	assert.Equal(t, "nat-new", natRoute, "the repaired route targets the new NAT gateway")

	assert.Equal(t, 0, rec.Count("CreateVpc"))
	assert.Equal(t, 0, rec.Count("CreateSubnet"))
	assert.Equal(t, 0, rec.Count("CreateInternetGateway"))
	assert.Equal(t, 0, rec.Count("CreateSecurityGroup"))

	assert.Equal(t, "vpc-1", topo.VPCID, "pre-existing identities stay untouched")
	assert.Equal(t, "nat-new", topo.NATGatewayID)
	assert.Equal(t, "eipalloc-new", topo.AllocationID)
}

func TestEnsureNetwork_ReplacesBlackholedNATRoute(t *testing.T) {
	rec := &awscloud.Recorder{}
	mock := convergedNetworkMock(rec)

	// The NAT gateway was deleted out of band. EC2 keeps the default route
	// in the table but flips it to blackhole, so the private table still
	// carries a 0.0.0.0/0 entry pointing at the dead gateway.
	mock.DescribeNatGatewaysFunc = func(_ context.Context, params *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
		if len(params.NatGatewayIds) > 0 {
			return &ec2.DescribeNatGatewaysOutput{
				NatGateways: []ec2types.NatGateway{{
					NatGatewayId: aws.String(params.NatGatewayIds[0]),
					State:        ec2types.NatGatewayStateAvailable,
				}},
			}, nil
		}
		return &ec2.DescribeNatGatewaysOutput{}, nil
	}
	inner := mock.DescribeRouteTablesFunc
	mock.DescribeRouteTablesFunc = func(ctx context.Context, params *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
		out, err := inner(ctx, params)
		if err == nil && firstFilterValue(params.Filters, "tag:Name") == "bench-private-rt" {
			out.RouteTables[0].Routes = []ec2types.Route{{
				DestinationCidrBlock: aws.String("0.0.0.0/0"),
				NatGatewayId:         aws.String("nat-old"),
				State:                ec2types.RouteStateBlackhole,
			}}
		}
		return out, err
	}
	mock.AllocateAddressFunc = func(_ context.Context, _ *ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error) {
		return &ec2.AllocateAddressOutput{AllocationId: aws.String("eipalloc-new")}, nil
	}
	mock.CreateNatGatewayFunc = func(_ context.Context, _ *ec2.CreateNatGatewayInput) (*ec2.CreateNatGatewayOutput, error) {
		return &ec2.CreateNatGatewayOutput{
			NatGateway: &ec2types.NatGateway{NatGatewayId: aws.String("nat-new")},
		}, nil
	}
	var replaced string
	mock.ReplaceRouteFunc = func(_ context.Context, params *ec2.ReplaceRouteInput) (*ec2.ReplaceRouteOutput, error) {
		assert.Equal(t, "rtb-priv", aws.ToString(params.RouteTableId))
		assert.Equal(t, "0.0.0.0/0", aws.ToString(params.DestinationCidrBlock))
		replaced = aws.ToString(params.NatGatewayId)
		return &ec2.ReplaceRouteOutput{}, nil
	}

	p := NewNetworkProvisioner(mock, testConfig(), testTimeouts(), NopObserver{})
	topo, err := p.EnsureNetwork(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count("CreateNatGateway"))
	assert.Equal(t, 1, rec.Count("ReplaceRoute"))
	assert.Equal(t, 0, rec.Count("CreateRoute"), "the stale entry is replaced, not shadowed")
	assert.Equal(t, "nat-new", replaced, "the default route is repointed at the new NAT gateway")
	assert.Equal(t, "nat-new", topo.NATGatewayID)
}

func TestEnsureNetwork_FailureNamesStep(t *testing.T) {
	rec := &awscloud.Recorder{}
	mock := convergedNetworkMock(rec)
	mock.DescribeInternetGatewaysFunc = func(_ context.Context, _ *ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error) {
		return nil, awscloud.APIError("InternalError", "boom")
	}

	p := NewNetworkProvisioner(mock, testConfig(), testTimeouts(), NopObserver{})
	_, err := p.EnsureNetwork(context.Background())
	require.Error(t, err)

	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "internet-gateway", depErr.Step)
}

func TestEnsureNetwork_RequiresTwoZones(t *testing.T) {
	rec := &awscloud.Recorder{}
	mock := convergedNetworkMock(rec)
	mock.DescribeAvailabilityZonesFunc = func(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error) {
		return &ec2.DescribeAvailabilityZonesOutput{
			AvailabilityZones: []ec2types.AvailabilityZone{{ZoneName: aws.String("us-west-2a")}},
		}, nil
	}

	p := NewNetworkProvisioner(mock, testConfig(), testTimeouts(), NopObserver{})
	_, err := p.EnsureNetwork(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "availability zones")
	assert.Equal(t, 0, rec.Count("CreateSubnet"))
}

func TestSubnetCIDR(t *testing.T) {
	tests := []struct {
		vpc   string
		index int
		want  string
	}{
		{"10.0.0.0/16", 0, "10.0.0.0/24"},
		{"10.0.0.0/16", 3, "10.0.3.0/24"},
		{"172.31.0.0/16", 1, "172.31.1.0/24"},
	}
	for _, tt := range tests {
		got, err := subnetCIDR(tt.vpc, tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := subnetCIDR("not-a-cidr", 0)
	assert.Error(t, err)
}
