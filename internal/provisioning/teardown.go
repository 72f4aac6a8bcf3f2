package provisioning

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	neptunetypes "github.com/aws/aws-sdk-go-v2/service/neptune/types"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/util/waiter"
)

// TeardownController deletes every resource the provisioners own, in
// reverse dependency order: database instances, the cluster and its
// groups, the search domain, then the network from the NAT gateway down to
// the VPC. Deletes are tolerant: a resource that is already gone counts as
// deleted, so teardown can be rerun after a partial failure.
//
// Nothing is deleted unless cleanup is enabled in the configuration AND
// the caller passes authorized=true.
type TeardownController struct {
	ec2      awscloud.EC2API
	neptune  awscloud.NeptuneAPI
	search   awscloud.OpenSearchAPI
	cfg      *config.Config
	timeouts *config.Timeouts
	obs      Observer

	handles []io.Closer
}

// NewTeardownController creates a teardown controller.
func NewTeardownController(network awscloud.EC2API, db awscloud.NeptuneAPI, search awscloud.OpenSearchAPI, cfg *config.Config, timeouts *config.Timeouts, obs Observer) *TeardownController {
	return &TeardownController{ec2: network, neptune: db, search: search, cfg: cfg, timeouts: timeouts, obs: obs}
}

// RegisterHandle records an open connection to close before deletion
// starts. Deleting a cluster out from under a live connection produces
// confusing mid-request failures.
func (t *TeardownController) RegisterHandle(h io.Closer) {
	t.handles = append(t.handles, h)
}

// Teardown deletes the environment. When cleanup is disabled or the caller
// has not confirmed, it logs and returns nil without touching anything.
func (t *TeardownController) Teardown(ctx context.Context, authorized bool) error {
	if !t.cfg.Cleanup.Enabled || !authorized {
		t.obs.Printf("cleanup not authorized; leaving all resources in place")
		return nil
	}

	t.closeHandles()

	if err := t.deleteDatabase(ctx, t.cfg.ClusterName); err != nil {
		return err
	}
	if err := t.deleteDomain(ctx, t.cfg.DomainName); err != nil {
		return err
	}
	return t.deleteNetwork(ctx, t.cfg.ClusterName)
}

func (t *TeardownController) closeHandles() {
	for _, h := range t.handles {
		if err := h.Close(); err != nil {
			t.obs.Printf("closing connection: %v", err)
		}
	}
	t.handles = nil
}

func (t *TeardownController) call(ctx context.Context, fn func() error) error {
	return cloudCall(ctx, t.cfg.Retry, fn)
}

// tolerantDelete runs a delete call and treats not-found as success.
func (t *TeardownController) tolerantDelete(ctx context.Context, what string, fn func() error) error {
	err := t.call(ctx, fn)
	if err == nil || awscloud.IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("deleting %s: %w", what, err)
}

func (t *TeardownController) waitGone(ctx context.Context, resource string, probe waiter.Query) error {
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "deletion of " + resource,
		Interval: t.timeouts.PollInterval,
		Timeout:  t.timeouts.Delete,
	}, probe)
	return err
}

func (t *TeardownController) deleteDatabase(ctx context.Context, name string) error {
	instances, err := t.clusterInstances(ctx, name)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		id := aws.ToString(inst.DBInstanceIdentifier)
		if aws.ToString(inst.DBInstanceStatus) != "deleting" {
			t.obs.Printf("deleting instance %s", id)
			err := t.tolerantDelete(ctx, "instance "+id, func() error {
				_, err := t.neptune.DeleteDBInstance(ctx, &neptune.DeleteDBInstanceInput{
					DBInstanceIdentifier: aws.String(id),
					SkipFinalSnapshot:    aws.Bool(true),
				})
				return err
			})
			if err != nil {
				return err
			}
		}
		if err := t.waitInstanceGone(ctx, id); err != nil {
			return err
		}
	}

	gone, err := t.deleteCluster(ctx, name)
	if err != nil {
		return err
	}
	if !gone {
		if err := t.waitClusterGone(ctx, name); err != nil {
			return err
		}
	}

	err = t.tolerantDelete(ctx, "parameter group "+name+"-params", func() error {
		_, err := t.neptune.DeleteDBClusterParameterGroup(ctx, &neptune.DeleteDBClusterParameterGroupInput{
			DBClusterParameterGroupName: aws.String(name + "-params"),
		})
		return err
	})
	if err != nil {
		return err
	}
	return t.tolerantDelete(ctx, "subnet group "+name+"-subnet-group", func() error {
		_, err := t.neptune.DeleteDBSubnetGroup(ctx, &neptune.DeleteDBSubnetGroupInput{
			DBSubnetGroupName: aws.String(name + "-subnet-group"),
		})
		return err
	})
}

func (t *TeardownController) clusterInstances(ctx context.Context, clusterID string) ([]neptunetypes.DBInstance, error) {
	var out *neptune.DescribeDBInstancesOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.neptune.DescribeDBInstances(ctx, &neptune.DescribeDBInstancesInput{
			Filters: []neptunetypes.Filter{
				{Name: aws.String("db-cluster-id"), Values: []string{clusterID}},
			},
		})
		return err
	})
	if awscloud.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing instances of cluster %s: %w", clusterID, err)
	}
	return out.DBInstances, nil
}

// deleteCluster issues the cluster delete. It reports gone=true when the
// cluster already does not exist.
func (t *TeardownController) deleteCluster(ctx context.Context, name string) (gone bool, err error) {
	var out *neptune.DescribeDBClustersOutput
	err = t.call(ctx, func() error {
		var err error
		out, err = t.neptune.DescribeDBClusters(ctx, &neptune.DescribeDBClustersInput{
			DBClusterIdentifier: aws.String(name),
		})
		return err
	})
	if awscloud.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("describing cluster %s: %w", name, err)
	}
	if len(out.DBClusters) == 0 {
		return true, nil
	}

	if aws.ToString(out.DBClusters[0].Status) != "deleting" {
		t.obs.Printf("deleting cluster %s", name)
		err := t.tolerantDelete(ctx, "cluster "+name, func() error {
			_, err := t.neptune.DeleteDBCluster(ctx, &neptune.DeleteDBClusterInput{
				DBClusterIdentifier: aws.String(name),
				SkipFinalSnapshot:   aws.Bool(true),
			})
			return err
		})
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func (t *TeardownController) waitInstanceGone(ctx context.Context, instanceID string) error {
	return t.waitGone(ctx, "instance "+instanceID, func(ctx context.Context) (string, bool, error) {
		var out *neptune.DescribeDBInstancesOutput
		err := t.call(ctx, func() error {
			var err error
			out, err = t.neptune.DescribeDBInstances(ctx, &neptune.DescribeDBInstancesInput{
				DBInstanceIdentifier: aws.String(instanceID),
			})
			return err
		})
		if awscloud.IsNotFound(err) {
			return "deleted", true, nil
		}
		if err != nil {
			return "", false, err
		}
		if len(out.DBInstances) == 0 {
			return "deleted", true, nil
		}
		return aws.ToString(out.DBInstances[0].DBInstanceStatus), false, nil
	})
}

func (t *TeardownController) waitClusterGone(ctx context.Context, name string) error {
	return t.waitGone(ctx, "cluster "+name, func(ctx context.Context) (string, bool, error) {
		var out *neptune.DescribeDBClustersOutput
		err := t.call(ctx, func() error {
			var err error
			out, err = t.neptune.DescribeDBClusters(ctx, &neptune.DescribeDBClustersInput{
				DBClusterIdentifier: aws.String(name),
			})
			return err
		})
		if awscloud.IsNotFound(err) {
			return "deleted", true, nil
		}
		if err != nil {
			return "", false, err
		}
		if len(out.DBClusters) == 0 {
			return "deleted", true, nil
		}
		return aws.ToString(out.DBClusters[0].Status), false, nil
	})
}

func (t *TeardownController) deleteDomain(ctx context.Context, name string) error {
	var out *opensearch.DescribeDomainOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.search.DescribeDomain(ctx, &opensearch.DescribeDomainInput{
			DomainName: aws.String(name),
		})
		return err
	})
	if awscloud.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("describing domain %s: %w", name, err)
	}

	if out.DomainStatus != nil && !aws.ToBool(out.DomainStatus.Deleted) {
		t.obs.Printf("deleting domain %s", name)
		err := t.tolerantDelete(ctx, "domain "+name, func() error {
			_, err := t.search.DeleteDomain(ctx, &opensearch.DeleteDomainInput{
				DomainName: aws.String(name),
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	return t.waitGone(ctx, "domain "+name, func(ctx context.Context) (string, bool, error) {
		err := t.call(ctx, func() error {
			_, err := t.search.DescribeDomain(ctx, &opensearch.DescribeDomainInput{
				DomainName: aws.String(name),
			})
			return err
		})
		if awscloud.IsNotFound(err) {
			return "deleted", true, nil
		}
		if err != nil {
			return "", false, err
		}
		return string(StatusDeleting), false, nil
	})
}

// deleteNetwork unwinds the VPC topology. The elastic IP is released by
// tag, so it is reclaimed even when the NAT gateway that used it is
// already gone.
func (t *TeardownController) deleteNetwork(ctx context.Context, name string) error {
	vpcID, err := t.findVPC(ctx, name)
	if err != nil {
		return err
	}

	if vpcID != "" {
		if err := t.deleteNATGateways(ctx, vpcID); err != nil {
			return err
		}
	}
	if err := t.releaseAddresses(ctx, name); err != nil {
		return err
	}
	if vpcID == "" {
		return nil
	}

	if err := t.deleteInternetGateways(ctx, vpcID); err != nil {
		return err
	}
	if err := t.deleteSubnets(ctx, vpcID); err != nil {
		return err
	}
	if err := t.deleteRouteTables(ctx, vpcID); err != nil {
		return err
	}
	if err := t.deleteSecurityGroups(ctx, vpcID); err != nil {
		return err
	}

	t.obs.Printf("deleting VPC %s", vpcID)
	return t.tolerantDelete(ctx, "VPC "+vpcID, func() error {
		_, err := t.ec2.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(vpcID)})
		return err
	})
}

func (t *TeardownController) findVPC(ctx context.Context, name string) (string, error) {
	var out *ec2.DescribeVpcsOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("tag:Name"), Values: []string{name + "-vpc"}},
			},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("describing VPCs: %w", err)
	}
	if len(out.Vpcs) == 0 {
		return "", nil
	}
	return aws.ToString(out.Vpcs[0].VpcId), nil
}

func (t *TeardownController) deleteNATGateways(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeNatGatewaysOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
			Filter: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing NAT gateways: %w", err)
	}

	for _, gw := range out.NatGateways {
		if gw.State == ec2types.NatGatewayStateDeleted {
			continue
		}
		natID := aws.ToString(gw.NatGatewayId)
		if gw.State != ec2types.NatGatewayStateDeleting {
			t.obs.Printf("deleting NAT gateway %s", natID)
			err := t.tolerantDelete(ctx, "NAT gateway "+natID, func() error {
				_, err := t.ec2.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
					NatGatewayId: aws.String(natID),
				})
				return err
			})
			if err != nil {
				return err
			}
		}
		err := t.waitGone(ctx, "NAT gateway "+natID, func(ctx context.Context) (string, bool, error) {
			var out *ec2.DescribeNatGatewaysOutput
			err := t.call(ctx, func() error {
				var err error
				out, err = t.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
					NatGatewayIds: []string{natID},
				})
				return err
			})
			if awscloud.IsNotFound(err) {
				return "deleted", true, nil
			}
			if err != nil {
				return "", false, err
			}
			if len(out.NatGateways) == 0 {
				return "deleted", true, nil
			}
			state := string(out.NatGateways[0].State)
			return state, state == string(ec2types.NatGatewayStateDeleted), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TeardownController) releaseAddresses(ctx context.Context, name string) error {
	var out *ec2.DescribeAddressesOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("tag:Name"), Values: []string{name + "-nat-eip"}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing elastic IPs: %w", err)
	}

	for _, addr := range out.Addresses {
		allocID := aws.ToString(addr.AllocationId)
		t.obs.Printf("releasing elastic IP %s", allocID)
		err := t.tolerantDelete(ctx, "elastic IP "+allocID, func() error {
			_, err := t.ec2.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
				AllocationId: aws.String(allocID),
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TeardownController) deleteInternetGateways(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeInternetGatewaysOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("attachment.vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing internet gateways: %w", err)
	}

	for _, gw := range out.InternetGateways {
		igwID := aws.ToString(gw.InternetGatewayId)
		t.obs.Printf("deleting internet gateway %s", igwID)
		err := t.tolerantDelete(ctx, "internet gateway attachment "+igwID, func() error {
			_, err := t.ec2.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
				InternetGatewayId: aws.String(igwID),
				VpcId:             aws.String(vpcID),
			})
			return err
		})
		if err != nil {
			return err
		}
		err = t.tolerantDelete(ctx, "internet gateway "+igwID, func() error {
			_, err := t.ec2.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
				InternetGatewayId: aws.String(igwID),
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TeardownController) deleteSubnets(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeSubnetsOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing subnets: %w", err)
	}

	for _, sn := range out.Subnets {
		subnetID := aws.ToString(sn.SubnetId)
		t.obs.Printf("deleting subnet %s", subnetID)
		err := t.tolerantDelete(ctx, "subnet "+subnetID, func() error {
			_, err := t.ec2.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{
				SubnetId: aws.String(subnetID),
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TeardownController) deleteRouteTables(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeRouteTablesOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing route tables: %w", err)
	}

	for _, rt := range out.RouteTables {
		if isMainRouteTable(rt) {
			// The main route table is deleted with the VPC.
			continue
		}
		rtID := aws.ToString(rt.RouteTableId)
		t.obs.Printf("deleting route table %s", rtID)
		err := t.tolerantDelete(ctx, "route table "+rtID, func() error {
			_, err := t.ec2.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
				RouteTableId: aws.String(rtID),
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func isMainRouteTable(rt ec2types.RouteTable) bool {
	for _, a := range rt.Associations {
		if aws.ToBool(a.Main) {
			return true
		}
	}
	return false
}

func (t *TeardownController) deleteSecurityGroups(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeSecurityGroupsOutput
	err := t.call(ctx, func() error {
		var err error
		out, err = t.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing security groups: %w", err)
	}

	for _, sg := range out.SecurityGroups {
		if aws.ToString(sg.GroupName) == "default" {
			// The default group cannot be deleted; it goes with the VPC.
			continue
		}
		sgID := aws.ToString(sg.GroupId)
		t.obs.Printf("deleting security group %s", sgID)
		err := t.tolerantDelete(ctx, "security group "+sgID, func() error {
			_, err := t.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
				GroupId: aws.String(sgID),
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
