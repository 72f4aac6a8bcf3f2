package awscloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	"github.com/aws/smithy-go"
)

// APIError fabricates a control-plane error with the given code. Tests use
// it to simulate NotFound, Throttling, and friends.
func APIError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

// Recorder collects the names of API calls in invocation order. Shared
// between mocks so cross-service ordering (e.g. teardown) can be asserted.
type Recorder struct {
	Calls []string
}

func (r *Recorder) record(name string) {
	if r != nil {
		r.Calls = append(r.Calls, name)
	}
}

// Count returns how many times the named call was recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// MockEC2 implements EC2API with overridable behavior per call. Calls with
// a nil Func return an empty output.
type MockEC2 struct {
	Recorder *Recorder

	DescribeVpcsFunc         func(ctx context.Context, params *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error)
	CreateVpcFunc            func(ctx context.Context, params *ec2.CreateVpcInput) (*ec2.CreateVpcOutput, error)
	DeleteVpcFunc            func(ctx context.Context, params *ec2.DeleteVpcInput) (*ec2.DeleteVpcOutput, error)
	DescribeVpcAttributeFunc func(ctx context.Context, params *ec2.DescribeVpcAttributeInput) (*ec2.DescribeVpcAttributeOutput, error)
	ModifyVpcAttributeFunc   func(ctx context.Context, params *ec2.ModifyVpcAttributeInput) (*ec2.ModifyVpcAttributeOutput, error)

	DescribeAvailabilityZonesFunc func(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error)

	DescribeSubnetsFunc       func(ctx context.Context, params *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	CreateSubnetFunc          func(ctx context.Context, params *ec2.CreateSubnetInput) (*ec2.CreateSubnetOutput, error)
	ModifySubnetAttributeFunc func(ctx context.Context, params *ec2.ModifySubnetAttributeInput) (*ec2.ModifySubnetAttributeOutput, error)
	DeleteSubnetFunc          func(ctx context.Context, params *ec2.DeleteSubnetInput) (*ec2.DeleteSubnetOutput, error)

	DescribeInternetGatewaysFunc func(ctx context.Context, params *ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error)
	CreateInternetGatewayFunc    func(ctx context.Context, params *ec2.CreateInternetGatewayInput) (*ec2.CreateInternetGatewayOutput, error)
	AttachInternetGatewayFunc    func(ctx context.Context, params *ec2.AttachInternetGatewayInput) (*ec2.AttachInternetGatewayOutput, error)
	DetachInternetGatewayFunc    func(ctx context.Context, params *ec2.DetachInternetGatewayInput) (*ec2.DetachInternetGatewayOutput, error)
	DeleteInternetGatewayFunc    func(ctx context.Context, params *ec2.DeleteInternetGatewayInput) (*ec2.DeleteInternetGatewayOutput, error)

	DescribeNatGatewaysFunc func(ctx context.Context, params *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error)
	CreateNatGatewayFunc    func(ctx context.Context, params *ec2.CreateNatGatewayInput) (*ec2.CreateNatGatewayOutput, error)
	DeleteNatGatewayFunc    func(ctx context.Context, params *ec2.DeleteNatGatewayInput) (*ec2.DeleteNatGatewayOutput, error)

	DescribeAddressesFunc func(ctx context.Context, params *ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error)
	AllocateAddressFunc   func(ctx context.Context, params *ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error)
	ReleaseAddressFunc    func(ctx context.Context, params *ec2.ReleaseAddressInput) (*ec2.ReleaseAddressOutput, error)

	DescribeRouteTablesFunc func(ctx context.Context, params *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error)
	CreateRouteTableFunc    func(ctx context.Context, params *ec2.CreateRouteTableInput) (*ec2.CreateRouteTableOutput, error)
	CreateRouteFunc         func(ctx context.Context, params *ec2.CreateRouteInput) (*ec2.CreateRouteOutput, error)
	ReplaceRouteFunc        func(ctx context.Context, params *ec2.ReplaceRouteInput) (*ec2.ReplaceRouteOutput, error)
	AssociateRouteTableFunc func(ctx context.Context, params *ec2.AssociateRouteTableInput) (*ec2.AssociateRouteTableOutput, error)
	DeleteRouteTableFunc    func(ctx context.Context, params *ec2.DeleteRouteTableInput) (*ec2.DeleteRouteTableOutput, error)

	DescribeSecurityGroupsFunc        func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroupFunc           func(ctx context.Context, params *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngressFunc func(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	AuthorizeSecurityGroupEgressFunc  func(ctx context.Context, params *ec2.AuthorizeSecurityGroupEgressInput) (*ec2.AuthorizeSecurityGroupEgressOutput, error)
	DeleteSecurityGroupFunc           func(ctx context.Context, params *ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error)
}

func (m *MockEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	m.Recorder.record("DescribeVpcs")
	if m.DescribeVpcsFunc != nil {
		return m.DescribeVpcsFunc(ctx, params)
	}
	return &ec2.DescribeVpcsOutput{}, nil
}

func (m *MockEC2) CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, _ ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	m.Recorder.record("CreateVpc")
	if m.CreateVpcFunc != nil {
		return m.CreateVpcFunc(ctx, params)
	}
	return &ec2.CreateVpcOutput{}, nil
}

func (m *MockEC2) DeleteVpc(ctx context.Context, params *ec2.DeleteVpcInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error) {
	m.Recorder.record("DeleteVpc")
	if m.DeleteVpcFunc != nil {
		return m.DeleteVpcFunc(ctx, params)
	}
	return &ec2.DeleteVpcOutput{}, nil
}

func (m *MockEC2) DescribeVpcAttribute(ctx context.Context, params *ec2.DescribeVpcAttributeInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcAttributeOutput, error) {
	m.Recorder.record("DescribeVpcAttribute")
	if m.DescribeVpcAttributeFunc != nil {
		return m.DescribeVpcAttributeFunc(ctx, params)
	}
	return &ec2.DescribeVpcAttributeOutput{}, nil
}

func (m *MockEC2) ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	m.Recorder.record("ModifyVpcAttribute")
	if m.ModifyVpcAttributeFunc != nil {
		return m.ModifyVpcAttributeFunc(ctx, params)
	}
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

func (m *MockEC2) DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	m.Recorder.record("DescribeAvailabilityZones")
	if m.DescribeAvailabilityZonesFunc != nil {
		return m.DescribeAvailabilityZonesFunc(ctx, params)
	}
	return &ec2.DescribeAvailabilityZonesOutput{}, nil
}

func (m *MockEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	m.Recorder.record("DescribeSubnets")
	if m.DescribeSubnetsFunc != nil {
		return m.DescribeSubnetsFunc(ctx, params)
	}
	return &ec2.DescribeSubnetsOutput{}, nil
}

func (m *MockEC2) CreateSubnet(ctx context.Context, params *ec2.CreateSubnetInput, _ ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	m.Recorder.record("CreateSubnet")
	if m.CreateSubnetFunc != nil {
		return m.CreateSubnetFunc(ctx, params)
	}
	return &ec2.CreateSubnetOutput{}, nil
}

func (m *MockEC2) ModifySubnetAttribute(ctx context.Context, params *ec2.ModifySubnetAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifySubnetAttributeOutput, error) {
	m.Recorder.record("ModifySubnetAttribute")
	if m.ModifySubnetAttributeFunc != nil {
		return m.ModifySubnetAttributeFunc(ctx, params)
	}
	return &ec2.ModifySubnetAttributeOutput{}, nil
}

func (m *MockEC2) DeleteSubnet(ctx context.Context, params *ec2.DeleteSubnetInput, _ ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error) {
	m.Recorder.record("DeleteSubnet")
	if m.DeleteSubnetFunc != nil {
		return m.DeleteSubnetFunc(ctx, params)
	}
	return &ec2.DeleteSubnetOutput{}, nil
}

func (m *MockEC2) DescribeInternetGateways(ctx context.Context, params *ec2.DescribeInternetGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error) {
	m.Recorder.record("DescribeInternetGateways")
	if m.DescribeInternetGatewaysFunc != nil {
		return m.DescribeInternetGatewaysFunc(ctx, params)
	}
	return &ec2.DescribeInternetGatewaysOutput{}, nil
}

func (m *MockEC2) CreateInternetGateway(ctx context.Context, params *ec2.CreateInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	m.Recorder.record("CreateInternetGateway")
	if m.CreateInternetGatewayFunc != nil {
		return m.CreateInternetGatewayFunc(ctx, params)
	}
	return &ec2.CreateInternetGatewayOutput{}, nil
}

func (m *MockEC2) AttachInternetGateway(ctx context.Context, params *ec2.AttachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	m.Recorder.record("AttachInternetGateway")
	if m.AttachInternetGatewayFunc != nil {
		return m.AttachInternetGatewayFunc(ctx, params)
	}
	return &ec2.AttachInternetGatewayOutput{}, nil
}

func (m *MockEC2) DetachInternetGateway(ctx context.Context, params *ec2.DetachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error) {
	m.Recorder.record("DetachInternetGateway")
	if m.DetachInternetGatewayFunc != nil {
		return m.DetachInternetGatewayFunc(ctx, params)
	}
	return &ec2.DetachInternetGatewayOutput{}, nil
}

func (m *MockEC2) DeleteInternetGateway(ctx context.Context, params *ec2.DeleteInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error) {
	m.Recorder.record("DeleteInternetGateway")
	if m.DeleteInternetGatewayFunc != nil {
		return m.DeleteInternetGatewayFunc(ctx, params)
	}
	return &ec2.DeleteInternetGatewayOutput{}, nil
}

func (m *MockEC2) DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	m.Recorder.record("DescribeNatGateways")
	if m.DescribeNatGatewaysFunc != nil {
		return m.DescribeNatGatewaysFunc(ctx, params)
	}
	return &ec2.DescribeNatGatewaysOutput{}, nil
}

func (m *MockEC2) CreateNatGateway(ctx context.Context, params *ec2.CreateNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateNatGatewayOutput, error) {
	m.Recorder.record("CreateNatGateway")
	if m.CreateNatGatewayFunc != nil {
		return m.CreateNatGatewayFunc(ctx, params)
	}
	return &ec2.CreateNatGatewayOutput{}, nil
}

func (m *MockEC2) DeleteNatGateway(ctx context.Context, params *ec2.DeleteNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error) {
	m.Recorder.record("DeleteNatGateway")
	if m.DeleteNatGatewayFunc != nil {
		return m.DeleteNatGatewayFunc(ctx, params)
	}
	return &ec2.DeleteNatGatewayOutput{}, nil
}

func (m *MockEC2) DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	m.Recorder.record("DescribeAddresses")
	if m.DescribeAddressesFunc != nil {
		return m.DescribeAddressesFunc(ctx, params)
	}
	return &ec2.DescribeAddressesOutput{}, nil
}

func (m *MockEC2) AllocateAddress(ctx context.Context, params *ec2.AllocateAddressInput, _ ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	m.Recorder.record("AllocateAddress")
	if m.AllocateAddressFunc != nil {
		return m.AllocateAddressFunc(ctx, params)
	}
	return &ec2.AllocateAddressOutput{}, nil
}

func (m *MockEC2) ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput, _ ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	m.Recorder.record("ReleaseAddress")
	if m.ReleaseAddressFunc != nil {
		return m.ReleaseAddressFunc(ctx, params)
	}
	return &ec2.ReleaseAddressOutput{}, nil
}

func (m *MockEC2) DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, _ ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	m.Recorder.record("DescribeRouteTables")
	if m.DescribeRouteTablesFunc != nil {
		return m.DescribeRouteTablesFunc(ctx, params)
	}
	return &ec2.DescribeRouteTablesOutput{}, nil
}

func (m *MockEC2) CreateRouteTable(ctx context.Context, params *ec2.CreateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	m.Recorder.record("CreateRouteTable")
	if m.CreateRouteTableFunc != nil {
		return m.CreateRouteTableFunc(ctx, params)
	}
	return &ec2.CreateRouteTableOutput{}, nil
}

func (m *MockEC2) CreateRoute(ctx context.Context, params *ec2.CreateRouteInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	m.Recorder.record("CreateRoute")
	if m.CreateRouteFunc != nil {
		return m.CreateRouteFunc(ctx, params)
	}
	return &ec2.CreateRouteOutput{}, nil
}

func (m *MockEC2) ReplaceRoute(ctx context.Context, params *ec2.ReplaceRouteInput, _ ...func(*ec2.Options)) (*ec2.ReplaceRouteOutput, error) {
	m.Recorder.record("ReplaceRoute")
	if m.ReplaceRouteFunc != nil {
		return m.ReplaceRouteFunc(ctx, params)
	}
	return &ec2.ReplaceRouteOutput{}, nil
}

func (m *MockEC2) AssociateRouteTable(ctx context.Context, params *ec2.AssociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	m.Recorder.record("AssociateRouteTable")
	if m.AssociateRouteTableFunc != nil {
		return m.AssociateRouteTableFunc(ctx, params)
	}
	return &ec2.AssociateRouteTableOutput{}, nil
}

func (m *MockEC2) DeleteRouteTable(ctx context.Context, params *ec2.DeleteRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error) {
	m.Recorder.record("DeleteRouteTable")
	if m.DeleteRouteTableFunc != nil {
		return m.DeleteRouteTableFunc(ctx, params)
	}
	return &ec2.DeleteRouteTableOutput{}, nil
}

func (m *MockEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	m.Recorder.record("DescribeSecurityGroups")
	if m.DescribeSecurityGroupsFunc != nil {
		return m.DescribeSecurityGroupsFunc(ctx, params)
	}
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func (m *MockEC2) CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	m.Recorder.record("CreateSecurityGroup")
	if m.CreateSecurityGroupFunc != nil {
		return m.CreateSecurityGroupFunc(ctx, params)
	}
	return &ec2.CreateSecurityGroupOutput{}, nil
}

func (m *MockEC2) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	m.Recorder.record("AuthorizeSecurityGroupIngress")
	if m.AuthorizeSecurityGroupIngressFunc != nil {
		return m.AuthorizeSecurityGroupIngressFunc(ctx, params)
	}
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (m *MockEC2) AuthorizeSecurityGroupEgress(ctx context.Context, params *ec2.AuthorizeSecurityGroupEgressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupEgressOutput, error) {
	m.Recorder.record("AuthorizeSecurityGroupEgress")
	if m.AuthorizeSecurityGroupEgressFunc != nil {
		return m.AuthorizeSecurityGroupEgressFunc(ctx, params)
	}
	return &ec2.AuthorizeSecurityGroupEgressOutput{}, nil
}

func (m *MockEC2) DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	m.Recorder.record("DeleteSecurityGroup")
	if m.DeleteSecurityGroupFunc != nil {
		return m.DeleteSecurityGroupFunc(ctx, params)
	}
	return &ec2.DeleteSecurityGroupOutput{}, nil
}

// MockNeptune implements NeptuneAPI. Describe calls default to NotFound so
// an unconfigured mock behaves like an empty environment.
type MockNeptune struct {
	Recorder *Recorder

	DescribeDBClustersFunc func(ctx context.Context, params *neptune.DescribeDBClustersInput) (*neptune.DescribeDBClustersOutput, error)
	CreateDBClusterFunc    func(ctx context.Context, params *neptune.CreateDBClusterInput) (*neptune.CreateDBClusterOutput, error)
	ModifyDBClusterFunc    func(ctx context.Context, params *neptune.ModifyDBClusterInput) (*neptune.ModifyDBClusterOutput, error)
	DeleteDBClusterFunc    func(ctx context.Context, params *neptune.DeleteDBClusterInput) (*neptune.DeleteDBClusterOutput, error)

	DescribeDBInstancesFunc func(ctx context.Context, params *neptune.DescribeDBInstancesInput) (*neptune.DescribeDBInstancesOutput, error)
	CreateDBInstanceFunc    func(ctx context.Context, params *neptune.CreateDBInstanceInput) (*neptune.CreateDBInstanceOutput, error)
	DeleteDBInstanceFunc    func(ctx context.Context, params *neptune.DeleteDBInstanceInput) (*neptune.DeleteDBInstanceOutput, error)

	CreateDBClusterParameterGroupFunc func(ctx context.Context, params *neptune.CreateDBClusterParameterGroupInput) (*neptune.CreateDBClusterParameterGroupOutput, error)
	DeleteDBClusterParameterGroupFunc func(ctx context.Context, params *neptune.DeleteDBClusterParameterGroupInput) (*neptune.DeleteDBClusterParameterGroupOutput, error)

	DescribeDBSubnetGroupsFunc func(ctx context.Context, params *neptune.DescribeDBSubnetGroupsInput) (*neptune.DescribeDBSubnetGroupsOutput, error)
	CreateDBSubnetGroupFunc    func(ctx context.Context, params *neptune.CreateDBSubnetGroupInput) (*neptune.CreateDBSubnetGroupOutput, error)
	DeleteDBSubnetGroupFunc    func(ctx context.Context, params *neptune.DeleteDBSubnetGroupInput) (*neptune.DeleteDBSubnetGroupOutput, error)
}

func (m *MockNeptune) DescribeDBClusters(ctx context.Context, params *neptune.DescribeDBClustersInput, _ ...func(*neptune.Options)) (*neptune.DescribeDBClustersOutput, error) {
	m.Recorder.record("DescribeDBClusters")
	if m.DescribeDBClustersFunc != nil {
		return m.DescribeDBClustersFunc(ctx, params)
	}
	return nil, APIError("DBClusterNotFoundFault", "cluster not found")
}

func (m *MockNeptune) CreateDBCluster(ctx context.Context, params *neptune.CreateDBClusterInput, _ ...func(*neptune.Options)) (*neptune.CreateDBClusterOutput, error) {
	m.Recorder.record("CreateDBCluster")
	if m.CreateDBClusterFunc != nil {
		return m.CreateDBClusterFunc(ctx, params)
	}
	return &neptune.CreateDBClusterOutput{}, nil
}

func (m *MockNeptune) ModifyDBCluster(ctx context.Context, params *neptune.ModifyDBClusterInput, _ ...func(*neptune.Options)) (*neptune.ModifyDBClusterOutput, error) {
	m.Recorder.record("ModifyDBCluster")
	if m.ModifyDBClusterFunc != nil {
		return m.ModifyDBClusterFunc(ctx, params)
	}
	return &neptune.ModifyDBClusterOutput{}, nil
}

func (m *MockNeptune) DeleteDBCluster(ctx context.Context, params *neptune.DeleteDBClusterInput, _ ...func(*neptune.Options)) (*neptune.DeleteDBClusterOutput, error) {
	m.Recorder.record("DeleteDBCluster")
	if m.DeleteDBClusterFunc != nil {
		return m.DeleteDBClusterFunc(ctx, params)
	}
	return &neptune.DeleteDBClusterOutput{}, nil
}

func (m *MockNeptune) DescribeDBInstances(ctx context.Context, params *neptune.DescribeDBInstancesInput, _ ...func(*neptune.Options)) (*neptune.DescribeDBInstancesOutput, error) {
	m.Recorder.record("DescribeDBInstances")
	if m.DescribeDBInstancesFunc != nil {
		return m.DescribeDBInstancesFunc(ctx, params)
	}
	if params != nil && params.DBInstanceIdentifier != nil {
		return nil, APIError("DBInstanceNotFound", "instance not found")
	}
	return &neptune.DescribeDBInstancesOutput{}, nil
}

func (m *MockNeptune) CreateDBInstance(ctx context.Context, params *neptune.CreateDBInstanceInput, _ ...func(*neptune.Options)) (*neptune.CreateDBInstanceOutput, error) {
	m.Recorder.record("CreateDBInstance")
	if m.CreateDBInstanceFunc != nil {
		return m.CreateDBInstanceFunc(ctx, params)
	}
	return &neptune.CreateDBInstanceOutput{}, nil
}

func (m *MockNeptune) DeleteDBInstance(ctx context.Context, params *neptune.DeleteDBInstanceInput, _ ...func(*neptune.Options)) (*neptune.DeleteDBInstanceOutput, error) {
	m.Recorder.record("DeleteDBInstance")
	if m.DeleteDBInstanceFunc != nil {
		return m.DeleteDBInstanceFunc(ctx, params)
	}
	return &neptune.DeleteDBInstanceOutput{}, nil
}

func (m *MockNeptune) CreateDBClusterParameterGroup(ctx context.Context, params *neptune.CreateDBClusterParameterGroupInput, _ ...func(*neptune.Options)) (*neptune.CreateDBClusterParameterGroupOutput, error) {
	m.Recorder.record("CreateDBClusterParameterGroup")
	if m.CreateDBClusterParameterGroupFunc != nil {
		return m.CreateDBClusterParameterGroupFunc(ctx, params)
	}
	return &neptune.CreateDBClusterParameterGroupOutput{}, nil
}

func (m *MockNeptune) DeleteDBClusterParameterGroup(ctx context.Context, params *neptune.DeleteDBClusterParameterGroupInput, _ ...func(*neptune.Options)) (*neptune.DeleteDBClusterParameterGroupOutput, error) {
	m.Recorder.record("DeleteDBClusterParameterGroup")
	if m.DeleteDBClusterParameterGroupFunc != nil {
		return m.DeleteDBClusterParameterGroupFunc(ctx, params)
	}
	return &neptune.DeleteDBClusterParameterGroupOutput{}, nil
}

func (m *MockNeptune) DescribeDBSubnetGroups(ctx context.Context, params *neptune.DescribeDBSubnetGroupsInput, _ ...func(*neptune.Options)) (*neptune.DescribeDBSubnetGroupsOutput, error) {
	m.Recorder.record("DescribeDBSubnetGroups")
	if m.DescribeDBSubnetGroupsFunc != nil {
		return m.DescribeDBSubnetGroupsFunc(ctx, params)
	}
	return nil, APIError("DBSubnetGroupNotFoundFault", "subnet group not found")
}

func (m *MockNeptune) CreateDBSubnetGroup(ctx context.Context, params *neptune.CreateDBSubnetGroupInput, _ ...func(*neptune.Options)) (*neptune.CreateDBSubnetGroupOutput, error) {
	m.Recorder.record("CreateDBSubnetGroup")
	if m.CreateDBSubnetGroupFunc != nil {
		return m.CreateDBSubnetGroupFunc(ctx, params)
	}
	return &neptune.CreateDBSubnetGroupOutput{}, nil
}

func (m *MockNeptune) DeleteDBSubnetGroup(ctx context.Context, params *neptune.DeleteDBSubnetGroupInput, _ ...func(*neptune.Options)) (*neptune.DeleteDBSubnetGroupOutput, error) {
	m.Recorder.record("DeleteDBSubnetGroup")
	if m.DeleteDBSubnetGroupFunc != nil {
		return m.DeleteDBSubnetGroupFunc(ctx, params)
	}
	return &neptune.DeleteDBSubnetGroupOutput{}, nil
}

// MockOpenSearch implements OpenSearchAPI. DescribeDomain defaults to
// NotFound.
type MockOpenSearch struct {
	Recorder *Recorder

	DescribeDomainFunc func(ctx context.Context, params *opensearch.DescribeDomainInput) (*opensearch.DescribeDomainOutput, error)
	CreateDomainFunc   func(ctx context.Context, params *opensearch.CreateDomainInput) (*opensearch.CreateDomainOutput, error)
	DeleteDomainFunc   func(ctx context.Context, params *opensearch.DeleteDomainInput) (*opensearch.DeleteDomainOutput, error)
}

func (m *MockOpenSearch) DescribeDomain(ctx context.Context, params *opensearch.DescribeDomainInput, _ ...func(*opensearch.Options)) (*opensearch.DescribeDomainOutput, error) {
	m.Recorder.record("DescribeDomain")
	if m.DescribeDomainFunc != nil {
		return m.DescribeDomainFunc(ctx, params)
	}
	return nil, APIError("ResourceNotFoundException", "domain not found")
}

func (m *MockOpenSearch) CreateDomain(ctx context.Context, params *opensearch.CreateDomainInput, _ ...func(*opensearch.Options)) (*opensearch.CreateDomainOutput, error) {
	m.Recorder.record("CreateDomain")
	if m.CreateDomainFunc != nil {
		return m.CreateDomainFunc(ctx, params)
	}
	return &opensearch.CreateDomainOutput{}, nil
}

func (m *MockOpenSearch) DeleteDomain(ctx context.Context, params *opensearch.DeleteDomainInput, _ ...func(*opensearch.Options)) (*opensearch.DeleteDomainOutput, error) {
	m.Recorder.record("DeleteDomain")
	if m.DeleteDomainFunc != nil {
		return m.DeleteDomainFunc(ctx, params)
	}
	return &opensearch.DeleteDomainOutput{}, nil
}
