package provisioning

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	neptunetypes "github.com/aws/aws-sdk-go-v2/service/neptune/types"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/util/waiter"
)

// ClusterProvisioner converges the Neptune graph cluster: the cluster
// itself with IAM authentication and serverless scaling, its parameter and
// subnet groups, and one serverless instance. A pre-existing cluster is
// repaired toward the desired shape instead of being recreated.
type ClusterProvisioner struct {
	neptune  awscloud.NeptuneAPI
	ec2      awscloud.EC2API
	resolver awscloud.Resolver
	cfg      *config.Config
	timeouts *config.Timeouts
	obs      Observer
}

// NewClusterProvisioner creates a cluster provisioner.
func NewClusterProvisioner(db awscloud.NeptuneAPI, network awscloud.EC2API, resolver awscloud.Resolver, cfg *config.Config, timeouts *config.Timeouts, obs Observer) *ClusterProvisioner {
	return &ClusterProvisioner{neptune: db, ec2: network, resolver: resolver, cfg: cfg, timeouts: timeouts, obs: obs}
}

// Name implements Phase.
func (p *ClusterProvisioner) Name() string { return "database" }

// Provision implements Phase.
func (p *ClusterProvisioner) Provision(ctx *Context) error {
	if ctx.State.Topology == nil {
		return &DependencyError{Step: "database", Err: fmt.Errorf("network topology has not been provisioned")}
	}
	res, err := p.EnsureCluster(ctx, ctx.State.Topology)
	if err != nil {
		return err
	}
	ctx.State.Cluster = res
	return nil
}

// EnsureCluster finds or creates the graph cluster and returns it once it
// is available with a resolvable endpoint. An existing cluster is reused:
// missing pieces (IAM auth, parameter group, instance) are added in place.
// The DNS propagation wait is skipped when the cluster was already
// converged, so a no-op rerun returns quickly.
func (p *ClusterProvisioner) EnsureCluster(ctx context.Context, topo *NetworkTopology) (*ClusterResource, error) {
	name := p.cfg.ClusterName
	cluster, err := p.findCluster(ctx, name)
	if err != nil {
		return nil, err
	}
	if cluster != nil {
		return p.repairCluster(ctx, name, cluster)
	}
	return p.createCluster(ctx, name, topo)
}

func (p *ClusterProvisioner) call(ctx context.Context, fn func() error) error {
	return cloudCall(ctx, p.cfg.Retry, fn)
}

func (p *ClusterProvisioner) findCluster(ctx context.Context, name string) (*neptunetypes.DBCluster, error) {
	var out *neptune.DescribeDBClustersOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.neptune.DescribeDBClusters(ctx, &neptune.DescribeDBClustersInput{
			DBClusterIdentifier: aws.String(name),
		})
		return err
	})
	if awscloud.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("describing cluster %s: %w", name, err)
	}
	if len(out.DBClusters) == 0 {
		return nil, nil
	}
	return &out.DBClusters[0], nil
}

// repairCluster takes an existing cluster to the desired shape. Each check
// is independent, so a cluster missing only its instance gets only an
// instance.
func (p *ClusterProvisioner) repairCluster(ctx context.Context, name string, cluster *neptunetypes.DBCluster) (*ClusterResource, error) {
	switch ClusterStatus(aws.ToString(cluster.Status)) {
	case StatusDeleting:
		return nil, fmt.Errorf("cluster %s is being deleted; wait for the deletion to finish before provisioning", name)
	case StatusFailed:
		return nil, fmt.Errorf("cluster %s is in terminal status %q and must be deleted before provisioning", name, aws.ToString(cluster.Status))
	}
	p.obs.Printf("reusing cluster %s (status %s)", name, aws.ToString(cluster.Status))

	changed := false
	if ClusterStatus(aws.ToString(cluster.Status)) != StatusAvailable {
		if err := p.waitClusterAvailable(ctx, name); err != nil {
			return nil, err
		}
		refreshed, err := p.findCluster(ctx, name)
		if err != nil {
			return nil, err
		}
		if refreshed == nil {
			return nil, fmt.Errorf("cluster %s disappeared while waiting for it to become available", name)
		}
		cluster = refreshed
		changed = true
	}

	if !aws.ToBool(cluster.IAMDatabaseAuthenticationEnabled) {
		p.obs.Printf("enabling IAM authentication on cluster %s", name)
		err := p.call(ctx, func() error {
			_, err := p.neptune.ModifyDBCluster(ctx, &neptune.ModifyDBClusterInput{
				DBClusterIdentifier:             aws.String(name),
				EnableIAMDatabaseAuthentication: aws.Bool(true),
				ApplyImmediately:                aws.Bool(true),
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("enabling IAM authentication: %w", err)
		}
		if err := p.waitClusterAvailable(ctx, name); err != nil {
			return nil, err
		}
		changed = true
	}

	paramGroup := name + "-params"
	if aws.ToString(cluster.DBClusterParameterGroup) != paramGroup {
		p.obs.Printf("attaching parameter group %s to cluster %s", paramGroup, name)
		if err := p.ensureParameterGroup(ctx, paramGroup); err != nil {
			return nil, err
		}
		err := p.call(ctx, func() error {
			_, err := p.neptune.ModifyDBCluster(ctx, &neptune.ModifyDBClusterInput{
				DBClusterIdentifier:         aws.String(name),
				DBClusterParameterGroupName: aws.String(paramGroup),
				ApplyImmediately:            aws.Bool(true),
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("attaching parameter group: %w", err)
		}
		if err := p.waitClusterAvailable(ctx, name); err != nil {
			return nil, err
		}
		changed = true
	}

	instanceID := name + "-instance"
	instanceChanged, err := p.ensureInstance(ctx, name, instanceID)
	if err != nil {
		return nil, err
	}
	changed = changed || instanceChanged

	endpoint := aws.ToString(cluster.Endpoint)
	if changed {
		if err := waitDNS(ctx, p.resolver, endpoint, p.timeouts.DNSInterval, p.timeouts.DNSPropagation); err != nil {
			return nil, err
		}
	}

	return &ClusterResource{
		ClusterID:      name,
		InstanceID:     instanceID,
		Endpoint:       endpoint,
		Port:           p.cfg.Database.Port,
		IAMAuthEnabled: true,
		ParameterGroup: paramGroup,
		SubnetGroup:    aws.ToString(cluster.DBSubnetGroup),
		Status:         StatusAvailable,
		Reused:         true,
	}, nil
}

func (p *ClusterProvisioner) createCluster(ctx context.Context, name string, topo *NetworkTopology) (*ClusterResource, error) {
	// Cross-VPC wiring is caught before anything is created; it would
	// otherwise surface minutes later as an opaque create failure.
	if err := p.validateTopology(ctx, topo); err != nil {
		return nil, err
	}

	paramGroup := name + "-params"
	if err := p.ensureParameterGroup(ctx, paramGroup); err != nil {
		return nil, err
	}

	subnetGroup := name + "-subnet-group"
	if err := p.ensureSubnetGroup(ctx, subnetGroup, topo.PrivateSubnetIDs); err != nil {
		return nil, err
	}

	p.obs.Printf("creating cluster %s", name)
	err := p.call(ctx, func() error {
		_, err := p.neptune.CreateDBCluster(ctx, &neptune.CreateDBClusterInput{
			DBClusterIdentifier:             aws.String(name),
			Engine:                          aws.String("neptune"),
			EngineVersion:                   aws.String(p.cfg.Database.EngineVersion),
			Port:                            aws.Int32(p.cfg.Database.Port),
			DBClusterParameterGroupName:     aws.String(paramGroup),
			DBSubnetGroupName:               aws.String(subnetGroup),
			VpcSecurityGroupIds:             []string{topo.SecurityGroupID},
			EnableIAMDatabaseAuthentication: aws.Bool(true),
			DeletionProtection:              aws.Bool(false),
			ServerlessV2ScalingConfiguration: &neptunetypes.ServerlessV2ScalingConfiguration{
				MinCapacity: aws.Float64(p.cfg.Database.MinCapacity),
				MaxCapacity: aws.Float64(p.cfg.Database.MaxCapacity),
			},
		})
		return err
	})
	if err != nil && !awscloud.IsAlreadyExists(err) {
		return nil, fmt.Errorf("creating cluster %s: %w", name, err)
	}

	if err := p.waitClusterAvailable(ctx, name); err != nil {
		return nil, err
	}
	cluster, err := p.findCluster(ctx, name)
	if err != nil {
		return nil, err
	}
	if cluster == nil {
		return nil, fmt.Errorf("cluster %s disappeared after creation", name)
	}
	endpoint := aws.ToString(cluster.Endpoint)

	instanceID := name + "-instance"
	if _, err := p.ensureInstance(ctx, name, instanceID); err != nil {
		return nil, err
	}

	if err := waitDNS(ctx, p.resolver, endpoint, p.timeouts.DNSInterval, p.timeouts.DNSPropagation); err != nil {
		return nil, err
	}

	return &ClusterResource{
		ClusterID:      name,
		InstanceID:     instanceID,
		Endpoint:       endpoint,
		Port:           p.cfg.Database.Port,
		IAMAuthEnabled: true,
		ParameterGroup: paramGroup,
		SubnetGroup:    subnetGroup,
		Status:         StatusAvailable,
	}, nil
}

// validateTopology verifies the security group and the private subnets all
// live in the topology's VPC.
func (p *ClusterProvisioner) validateTopology(ctx context.Context, topo *NetworkTopology) error {
	if topo.SecurityGroupID == "" || len(topo.PrivateSubnetIDs) == 0 {
		return fmt.Errorf("network topology is incomplete: security group and private subnets are required")
	}

	var sgOut *ec2.DescribeSecurityGroupsOutput
	err := p.call(ctx, func() error {
		var err error
		sgOut, err = p.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			GroupIds: []string{topo.SecurityGroupID},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing security group %s: %w", topo.SecurityGroupID, err)
	}
	for _, sg := range sgOut.SecurityGroups {
		if vpc := aws.ToString(sg.VpcId); vpc != topo.VPCID {
			return &MismatchError{
				Resource: "security group " + topo.SecurityGroupID,
				Detail:   fmt.Sprintf("in VPC %s, expected %s", vpc, topo.VPCID),
			}
		}
	}

	var snOut *ec2.DescribeSubnetsOutput
	err = p.call(ctx, func() error {
		var err error
		snOut, err = p.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			SubnetIds: topo.PrivateSubnetIDs,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing private subnets: %w", err)
	}
	for _, sn := range snOut.Subnets {
		if vpc := aws.ToString(sn.VpcId); vpc != topo.VPCID {
			return &MismatchError{
				Resource: "subnet " + aws.ToString(sn.SubnetId),
				Detail:   fmt.Sprintf("in VPC %s, expected %s", vpc, topo.VPCID),
			}
		}
	}
	return nil
}

func (p *ClusterProvisioner) ensureParameterGroup(ctx context.Context, name string) error {
	err := p.call(ctx, func() error {
		_, err := p.neptune.CreateDBClusterParameterGroup(ctx, &neptune.CreateDBClusterParameterGroupInput{
			DBClusterParameterGroupName: aws.String(name),
			DBParameterGroupFamily:      aws.String(p.cfg.Database.ParameterGroupFamily),
			Description:                 aws.String("cluster parameters for " + p.cfg.ClusterName),
		})
		return err
	})
	if err != nil && !awscloud.IsAlreadyExists(err) {
		return fmt.Errorf("creating parameter group %s: %w", name, err)
	}
	return nil
}

func (p *ClusterProvisioner) ensureSubnetGroup(ctx context.Context, name string, subnetIDs []string) error {
	err := p.call(ctx, func() error {
		_, err := p.neptune.CreateDBSubnetGroup(ctx, &neptune.CreateDBSubnetGroupInput{
			DBSubnetGroupName:        aws.String(name),
			DBSubnetGroupDescription: aws.String("private subnets for " + p.cfg.ClusterName),
			SubnetIds:                subnetIDs,
		})
		return err
	})
	if err != nil && !awscloud.IsAlreadyExists(err) {
		return fmt.Errorf("creating subnet group %s: %w", name, err)
	}
	return nil
}

// ensureInstance makes sure the cluster has its serverless instance and
// that it is available. It reports whether it had to create or wait, so
// the caller knows the cluster was not already converged.
func (p *ClusterProvisioner) ensureInstance(ctx context.Context, clusterID, instanceID string) (changed bool, err error) {
	var out *neptune.DescribeDBInstancesOutput
	err = p.call(ctx, func() error {
		var err error
		out, err = p.neptune.DescribeDBInstances(ctx, &neptune.DescribeDBInstancesInput{
			DBInstanceIdentifier: aws.String(instanceID),
		})
		return err
	})
	if err != nil && !awscloud.IsNotFound(err) {
		return false, fmt.Errorf("describing instance %s: %w", instanceID, err)
	}

	if awscloud.IsNotFound(err) || len(out.DBInstances) == 0 {
		p.obs.Printf("creating instance %s", instanceID)
		err := p.call(ctx, func() error {
			_, err := p.neptune.CreateDBInstance(ctx, &neptune.CreateDBInstanceInput{
				DBInstanceIdentifier: aws.String(instanceID),
				DBClusterIdentifier:  aws.String(clusterID),
				Engine:               aws.String("neptune"),
				DBInstanceClass:      aws.String(p.cfg.Database.InstanceClass),
			})
			return err
		})
		if err != nil && !awscloud.IsAlreadyExists(err) {
			return false, fmt.Errorf("creating instance %s: %w", instanceID, err)
		}
		return true, p.waitInstanceAvailable(ctx, instanceID)
	}

	if aws.ToString(out.DBInstances[0].DBInstanceStatus) != "available" {
		return true, p.waitInstanceAvailable(ctx, instanceID)
	}
	return false, nil
}

func (p *ClusterProvisioner) waitClusterAvailable(ctx context.Context, name string) error {
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "cluster " + name,
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.ClusterAvailable,
		Fatal:    []string{"failed", "deleting", "inaccessible-encryption-credentials", "migration-failed"},
	}, func(ctx context.Context) (string, bool, error) {
		cluster, err := p.findCluster(ctx, name)
		if err != nil {
			return "", false, err
		}
		if cluster == nil {
			return "absent", false, nil
		}
		status := aws.ToString(cluster.Status)
		return status, status == "available", nil
	})
	return err
}

func (p *ClusterProvisioner) waitInstanceAvailable(ctx context.Context, instanceID string) error {
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "instance " + instanceID,
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.InstanceAvailable,
		Fatal:    []string{"failed", "deleting"},
	}, func(ctx context.Context) (string, bool, error) {
		var out *neptune.DescribeDBInstancesOutput
		err := p.call(ctx, func() error {
			var err error
			out, err = p.neptune.DescribeDBInstances(ctx, &neptune.DescribeDBInstancesInput{
				DBInstanceIdentifier: aws.String(instanceID),
			})
			return err
		})
		if awscloud.IsNotFound(err) {
			// The create call can lag before the instance is describable.
			return "absent", false, nil
		}
		if err != nil {
			return "", false, err
		}
		if len(out.DBInstances) == 0 {
			return "absent", false, nil
		}
		status := aws.ToString(out.DBInstances[0].DBInstanceStatus)
		return status, status == "available", nil
	})
	return err
}
