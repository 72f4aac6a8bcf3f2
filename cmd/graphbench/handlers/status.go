package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/neptune"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
)

// ResourceStatus is the observed state of one environment component.
type ResourceStatus struct {
	Name   string
	State  string
	Detail string
	Ready  bool
}

// EnvironmentStatus is the read-only snapshot the status command renders.
type EnvironmentStatus struct {
	ClusterName string
	Region      string
	Resources   []ResourceStatus
}

// Status describes the environment and prints its current state. It issues
// only describe calls.
func Status(ctx context.Context, configPath string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("resolving AWS configuration: %w", err)
	}
	clients := newClients(awsCfg)

	report, err := collectStatus(ctx, clients, cfg)
	if err != nil {
		return err
	}

	fmt.Print(renderStatus(report, stdoutIsTerminal()))
	return nil
}

func collectStatus(ctx context.Context, clients *awscloud.Clients, cfg *config.Config) (*EnvironmentStatus, error) {
	report := &EnvironmentStatus{ClusterName: cfg.ClusterName, Region: cfg.Region}

	network, err := networkStatus(ctx, clients.EC2, cfg.ClusterName)
	if err != nil {
		return nil, err
	}
	report.Resources = append(report.Resources, network)

	cluster, instance, err := databaseStatus(ctx, clients.Neptune, cfg.ClusterName)
	if err != nil {
		return nil, err
	}
	report.Resources = append(report.Resources, cluster, instance)

	domain, err := domainStatus(ctx, clients.OpenSearch, cfg.DomainName)
	if err != nil {
		return nil, err
	}
	report.Resources = append(report.Resources, domain)

	return report, nil
}

func networkStatus(ctx context.Context, client awscloud.EC2API, name string) (ResourceStatus, error) {
	out, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:Name"), Values: []string{name + "-vpc"}},
			{Name: aws.String("state"), Values: []string{"pending", "available"}},
		},
	})
	if err != nil {
		return ResourceStatus{}, fmt.Errorf("describing VPC: %w", err)
	}

	status := ResourceStatus{Name: "Network"}
	if len(out.Vpcs) == 0 {
		status.State = "absent"
		return status, nil
	}
	vpc := out.Vpcs[0]
	status.State = string(vpc.State)
	status.Detail = aws.ToString(vpc.VpcId)
	status.Ready = vpc.State == ec2types.VpcStateAvailable
	return status, nil
}

func databaseStatus(ctx context.Context, client awscloud.NeptuneAPI, name string) (ResourceStatus, ResourceStatus, error) {
	cluster := ResourceStatus{Name: "Database cluster", State: "absent"}
	instance := ResourceStatus{Name: "Database instance", State: "absent"}

	out, err := client.DescribeDBClusters(ctx, &neptune.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(name),
	})
	switch {
	case awscloud.IsNotFound(err):
		return cluster, instance, nil
	case err != nil:
		return cluster, instance, fmt.Errorf("describing cluster: %w", err)
	}
	if len(out.DBClusters) > 0 {
		c := out.DBClusters[0]
		cluster.State = aws.ToString(c.Status)
		cluster.Detail = aws.ToString(c.Endpoint)
		cluster.Ready = cluster.State == "available"
	}

	instOut, err := client.DescribeDBInstances(ctx, &neptune.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(name + "-instance"),
	})
	switch {
	case awscloud.IsNotFound(err):
		return cluster, instance, nil
	case err != nil:
		return cluster, instance, fmt.Errorf("describing instance: %w", err)
	}
	if len(instOut.DBInstances) > 0 {
		i := instOut.DBInstances[0]
		instance.State = aws.ToString(i.DBInstanceStatus)
		instance.Detail = aws.ToString(i.DBInstanceIdentifier)
		instance.Ready = instance.State == "available"
	}
	return cluster, instance, nil
}

func domainStatus(ctx context.Context, client awscloud.OpenSearchAPI, name string) (ResourceStatus, error) {
	status := ResourceStatus{Name: "Search domain", State: "absent"}

	out, err := client.DescribeDomain(ctx, &opensearch.DescribeDomainInput{
		DomainName: aws.String(name),
	})
	switch {
	case awscloud.IsNotFound(err):
		return status, nil
	case err != nil:
		return status, fmt.Errorf("describing domain: %w", err)
	}

	d := out.DomainStatus
	switch {
	case aws.ToBool(d.Deleted):
		status.State = "deleting"
	case aws.ToBool(d.Processing):
		status.State = "processing"
	default:
		status.State = "active"
		status.Ready = true
	}
	if ep := aws.ToString(d.Endpoint); ep != "" {
		status.Detail = ep
	} else if ep, ok := d.Endpoints["vpc"]; ok {
		status.Detail = ep
	}
	return status, nil
}
