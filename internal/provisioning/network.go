package provisioning

import (
	"context"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/util/waiter"
)

// NetworkProvisioner converges the VPC topology the database cluster runs
// in: the VPC itself, two public and two private subnets spread over the
// first two availability zones, an internet gateway, a NAT gateway with its
// elastic IP, route tables, and the database security group.
type NetworkProvisioner struct {
	ec2      awscloud.EC2API
	cfg      *config.Config
	timeouts *config.Timeouts
	obs      Observer
}

// NewNetworkProvisioner creates a network provisioner.
func NewNetworkProvisioner(client awscloud.EC2API, cfg *config.Config, timeouts *config.Timeouts, obs Observer) *NetworkProvisioner {
	return &NetworkProvisioner{ec2: client, cfg: cfg, timeouts: timeouts, obs: obs}
}

// Name implements Phase.
func (p *NetworkProvisioner) Name() string { return "network" }

// Provision implements Phase.
func (p *NetworkProvisioner) Provision(ctx *Context) error {
	topo, err := p.EnsureNetwork(ctx)
	if err != nil {
		return err
	}
	ctx.State.Topology = topo
	return nil
}

// EnsureNetwork finds or creates the full network topology. Every step is
// independently idempotent: a partially built topology (for example one
// missing only its NAT gateway) is completed in place, and pre-existing
// resources are left untouched. Failures name the step that broke so a
// rerun can pick up where this one stopped.
func (p *NetworkProvisioner) EnsureNetwork(ctx context.Context) (*NetworkTopology, error) {
	name := p.cfg.ClusterName
	topo := &NetworkTopology{}

	vpcID, err := p.findVPC(ctx, name)
	if err != nil {
		return nil, &DependencyError{Step: "vpc", Err: err}
	}
	if vpcID == "" {
		vpcID, err = p.createVPC(ctx, name)
		if err != nil {
			return nil, &DependencyError{Step: "vpc", Err: err}
		}
		p.obs.Printf("created VPC %s", vpcID)
	} else {
		p.obs.Printf("reusing VPC %s", vpcID)
	}
	topo.VPCID = vpcID

	if err := p.ensureDNSHostnames(ctx, vpcID); err != nil {
		return nil, &DependencyError{Step: "dns-hostnames", Err: err}
	}

	topo.InternetGatewayID, err = p.ensureInternetGateway(ctx, name, vpcID)
	if err != nil {
		return nil, &DependencyError{Step: "internet-gateway", Err: err}
	}

	topo.PublicSubnetIDs, topo.PrivateSubnetIDs, err = p.ensureSubnets(ctx, name, vpcID)
	if err != nil {
		return nil, &DependencyError{Step: "subnets", Err: err}
	}

	topo.NATGatewayID, topo.AllocationID, err = p.ensureNATGateway(ctx, name, vpcID, topo.PublicSubnetIDs[0])
	if err != nil {
		return nil, &DependencyError{Step: "nat-gateway", Err: err}
	}

	if err := p.ensureRouteTables(ctx, name, topo); err != nil {
		return nil, &DependencyError{Step: "route-tables", Err: err}
	}

	topo.SecurityGroupID, err = p.ensureSecurityGroup(ctx, name, vpcID)
	if err != nil {
		return nil, &DependencyError{Step: "security-group", Err: err}
	}

	return topo, nil
}

func (p *NetworkProvisioner) call(ctx context.Context, fn func() error) error {
	return cloudCall(ctx, p.cfg.Retry, fn)
}

func (p *NetworkProvisioner) findVPC(ctx context.Context, name string) (string, error) {
	var out *ec2.DescribeVpcsOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("tag:Name"), Values: []string{name + "-vpc"}},
				{Name: aws.String("state"), Values: []string{"pending", "available"}},
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

func (p *NetworkProvisioner) createVPC(ctx context.Context, name string) (string, error) {
	var out *ec2.CreateVpcOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
			CidrBlock:         aws.String(p.cfg.Network.VPCCIDR),
			TagSpecifications: tagSpec(ec2types.ResourceTypeVpc, name+"-vpc"),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating VPC: %w", err)
	}
	return aws.ToString(out.Vpc.VpcId), nil
}

// ensureDNSHostnames enables DNS hostnames on the VPC. Neptune endpoints
// are DNS names, so instances in the VPC cannot reach the cluster without
// this attribute.
func (p *NetworkProvisioner) ensureDNSHostnames(ctx context.Context, vpcID string) error {
	var out *ec2.DescribeVpcAttributeOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeVpcAttribute(ctx, &ec2.DescribeVpcAttributeInput{
			VpcId:     aws.String(vpcID),
			Attribute: ec2types.VpcAttributeNameEnableDnsHostnames,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing VPC attribute: %w", err)
	}
	if out.EnableDnsHostnames != nil && aws.ToBool(out.EnableDnsHostnames.Value) {
		return nil
	}
	p.obs.Debugf("enabling DNS hostnames on %s", vpcID)
	return p.call(ctx, func() error {
		_, err := p.ec2.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
			VpcId:              aws.String(vpcID),
			EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		})
		return err
	})
}

func (p *NetworkProvisioner) ensureInternetGateway(ctx context.Context, name, vpcID string) (string, error) {
	var out *ec2.DescribeInternetGatewaysOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("attachment.vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("describing internet gateways: %w", err)
	}
	if len(out.InternetGateways) > 0 {
		return aws.ToString(out.InternetGateways[0].InternetGatewayId), nil
	}

	var created *ec2.CreateInternetGatewayOutput
	err = p.call(ctx, func() error {
		var err error
		created, err = p.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
			TagSpecifications: tagSpec(ec2types.ResourceTypeInternetGateway, name+"-igw"),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating internet gateway: %w", err)
	}
	igwID := aws.ToString(created.InternetGateway.InternetGatewayId)

	err = p.call(ctx, func() error {
		_, err := p.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
			InternetGatewayId: aws.String(igwID),
			VpcId:             aws.String(vpcID),
		})
		return err
	})
	if err != nil && !awscloud.IsAlreadyExists(err) {
		return "", fmt.Errorf("attaching internet gateway: %w", err)
	}
	p.obs.Printf("created internet gateway %s", igwID)
	return igwID, nil
}

// ensureSubnets lays out one public and one private /24 per availability
// zone across the first two zones of the region. Subnet CIDRs are carved
// from the VPC CIDR: public subnets take even third octets, private odd.
func (p *NetworkProvisioner) ensureSubnets(ctx context.Context, name, vpcID string) (public, private []string, err error) {
	zones, err := p.availabilityZones(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(zones) < 2 {
		return nil, nil, fmt.Errorf("region %s has %d availability zones, need at least 2", p.cfg.Region, len(zones))
	}

	for i, zone := range zones[:2] {
		pubID, err := p.ensureSubnet(ctx, vpcID, zone, fmt.Sprintf("%s-public-%d", name, i+1), 2*i, true)
		if err != nil {
			return nil, nil, err
		}
		public = append(public, pubID)

		privID, err := p.ensureSubnet(ctx, vpcID, zone, fmt.Sprintf("%s-private-%d", name, i+1), 2*i+1, false)
		if err != nil {
			return nil, nil, err
		}
		private = append(private, privID)
	}
	return public, private, nil
}

func (p *NetworkProvisioner) availabilityZones(ctx context.Context) ([]string, error) {
	var out *ec2.DescribeAvailabilityZonesOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("state"), Values: []string{"available"}},
			},
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("describing availability zones: %w", err)
	}
	zones := make([]string, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		zones = append(zones, aws.ToString(az.ZoneName))
	}
	return zones, nil
}

func (p *NetworkProvisioner) ensureSubnet(ctx context.Context, vpcID, zone, tag string, index int, public bool) (string, error) {
	var out *ec2.DescribeSubnetsOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
				{Name: aws.String("tag:Name"), Values: []string{tag}},
			},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("describing subnet %s: %w", tag, err)
	}
	if len(out.Subnets) > 0 {
		return aws.ToString(out.Subnets[0].SubnetId), nil
	}

	cidr, err := subnetCIDR(p.cfg.Network.VPCCIDR, index)
	if err != nil {
		return "", err
	}
	var created *ec2.CreateSubnetOutput
	err = p.call(ctx, func() error {
		var err error
		created, err = p.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
			VpcId:             aws.String(vpcID),
			AvailabilityZone:  aws.String(zone),
			CidrBlock:         aws.String(cidr),
			TagSpecifications: tagSpec(ec2types.ResourceTypeSubnet, tag),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating subnet %s: %w", tag, err)
	}
	subnetID := aws.ToString(created.Subnet.SubnetId)

	if public {
		err = p.call(ctx, func() error {
			_, err := p.ec2.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
				SubnetId:            aws.String(subnetID),
				MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
			})
			return err
		})
		if err != nil {
			return "", fmt.Errorf("enabling public IPs on subnet %s: %w", tag, err)
		}
	}
	p.obs.Printf("created subnet %s (%s in %s)", subnetID, cidr, zone)
	return subnetID, nil
}

// subnetCIDR carves the index-th /24 out of the VPC CIDR.
func subnetCIDR(vpcCIDR string, index int) (string, error) {
	_, ipnet, err := net.ParseCIDR(vpcCIDR)
	if err != nil {
		return "", fmt.Errorf("parsing VPC CIDR: %w", err)
	}
	ip := ipnet.IP.To4()
	if ip == nil {
		return "", fmt.Errorf("VPC CIDR %q is not IPv4", vpcCIDR)
	}
	return fmt.Sprintf("%d.%d.%d.0/24", ip[0], ip[1], int(ip[2])+index), nil
}

func (p *NetworkProvisioner) ensureNATGateway(ctx context.Context, name, vpcID, publicSubnetID string) (natID, allocID string, err error) {
	var out *ec2.DescribeNatGatewaysOutput
	err = p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
			Filter: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
				{Name: aws.String("state"), Values: []string{"pending", "available"}},
			},
		})
		return err
	})
	if err != nil {
		return "", "", fmt.Errorf("describing NAT gateways: %w", err)
	}
	if len(out.NatGateways) > 0 {
		gw := out.NatGateways[0]
		natID = aws.ToString(gw.NatGatewayId)
		if len(gw.NatGatewayAddresses) > 0 {
			allocID = aws.ToString(gw.NatGatewayAddresses[0].AllocationId)
		}
		if gw.State != ec2types.NatGatewayStateAvailable {
			if err := p.waitNATAvailable(ctx, natID); err != nil {
				return "", "", err
			}
		}
		return natID, allocID, nil
	}

	// The elastic IP is tagged so a later teardown can find it even if the
	// NAT gateway it backed is already gone.
	var alloc *ec2.AllocateAddressOutput
	err = p.call(ctx, func() error {
		var err error
		alloc, err = p.ec2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
			Domain:            ec2types.DomainTypeVpc,
			TagSpecifications: tagSpec(ec2types.ResourceTypeElasticIp, name+"-nat-eip"),
		})
		return err
	})
	if err != nil {
		return "", "", fmt.Errorf("allocating elastic IP: %w", err)
	}
	allocID = aws.ToString(alloc.AllocationId)

	var created *ec2.CreateNatGatewayOutput
	err = p.call(ctx, func() error {
		var err error
		created, err = p.ec2.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
			SubnetId:          aws.String(publicSubnetID),
			AllocationId:      aws.String(allocID),
			TagSpecifications: tagSpec(ec2types.ResourceTypeNatgateway, name+"-nat"),
		})
		return err
	})
	if err != nil {
		return "", "", fmt.Errorf("creating NAT gateway: %w", err)
	}
	natID = aws.ToString(created.NatGateway.NatGatewayId)
	p.obs.Printf("created NAT gateway %s, waiting for it to become available", natID)

	if err := p.waitNATAvailable(ctx, natID); err != nil {
		return "", "", err
	}
	return natID, allocID, nil
}

func (p *NetworkProvisioner) waitNATAvailable(ctx context.Context, natID string) error {
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "NAT gateway " + natID,
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.NATAvailable,
		Fatal:    []string{"failed", "deleting", "deleted"},
	}, func(ctx context.Context) (string, bool, error) {
		var out *ec2.DescribeNatGatewaysOutput
		err := p.call(ctx, func() error {
			var err error
			out, err = p.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
				NatGatewayIds: []string{natID},
			})
			return err
		})
		if err != nil {
			return "", false, err
		}
		if len(out.NatGateways) == 0 {
			return "absent", false, nil
		}
		state := string(out.NatGateways[0].State)
		return state, state == string(ec2types.NatGatewayStateAvailable), nil
	})
	return err
}

func (p *NetworkProvisioner) ensureRouteTables(ctx context.Context, name string, topo *NetworkTopology) error {
	if err := p.ensureRouteTable(ctx, topo.VPCID, name+"-public-rt", topo.InternetGatewayID, false, topo.PublicSubnetIDs); err != nil {
		return err
	}
	return p.ensureRouteTable(ctx, topo.VPCID, name+"-private-rt", topo.NATGatewayID, true, topo.PrivateSubnetIDs)
}

// ensureRouteTable converges one route table: it exists, has a default
// route to the given target, and is associated with the given subnets.
func (p *NetworkProvisioner) ensureRouteTable(ctx context.Context, vpcID, tag, targetID string, nat bool, subnets []string) error {
	var out *ec2.DescribeRouteTablesOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
				{Name: aws.String("tag:Name"), Values: []string{tag}},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("describing route table %s: %w", tag, err)
	}

	var rt ec2types.RouteTable
	if len(out.RouteTables) > 0 {
		rt = out.RouteTables[0]
	} else {
		var created *ec2.CreateRouteTableOutput
		err := p.call(ctx, func() error {
			var err error
			created, err = p.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
				VpcId:             aws.String(vpcID),
				TagSpecifications: tagSpec(ec2types.ResourceTypeRouteTable, tag),
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("creating route table %s: %w", tag, err)
		}
		rt = *created.RouteTable
		p.obs.Printf("created route table %s", aws.ToString(rt.RouteTableId))
	}

	// A default route only counts if it still points at the expected target
	// and was not blackholed by an out-of-band delete of that target.
	hasDefault := false
	stale := false
	for _, r := range rt.Routes {
		if aws.ToString(r.DestinationCidrBlock) != "0.0.0.0/0" {
			continue
		}
		current := aws.ToString(r.GatewayId)
		if nat {
			current = aws.ToString(r.NatGatewayId)
		}
		if current == targetID && r.State != ec2types.RouteStateBlackhole {
			hasDefault = true
		} else {
			stale = true
		}
		break
	}
	switch {
	case hasDefault:
	case stale:
		in := &ec2.ReplaceRouteInput{
			RouteTableId:         rt.RouteTableId,
			DestinationCidrBlock: aws.String("0.0.0.0/0"),
		}
		if nat {
			in.NatGatewayId = aws.String(targetID)
		} else {
			in.GatewayId = aws.String(targetID)
		}
		err := p.call(ctx, func() error {
			_, err := p.ec2.ReplaceRoute(ctx, in)
			return err
		})
		if err != nil {
			return fmt.Errorf("replacing stale default route in %s: %w", tag, err)
		}
		p.obs.Printf("replaced stale default route in %s", tag)
	default:
		in := &ec2.CreateRouteInput{
			RouteTableId:         rt.RouteTableId,
			DestinationCidrBlock: aws.String("0.0.0.0/0"),
		}
		if nat {
			in.NatGatewayId = aws.String(targetID)
		} else {
			in.GatewayId = aws.String(targetID)
		}
		err := p.call(ctx, func() error {
			_, err := p.ec2.CreateRoute(ctx, in)
			return err
		})
		if err != nil && !awscloud.IsAlreadyExists(err) {
			return fmt.Errorf("adding default route to %s: %w", tag, err)
		}
	}

	associated := make(map[string]bool, len(rt.Associations))
	for _, a := range rt.Associations {
		associated[aws.ToString(a.SubnetId)] = true
	}
	for _, subnetID := range subnets {
		if associated[subnetID] {
			continue
		}
		err := p.call(ctx, func() error {
			_, err := p.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
				RouteTableId: rt.RouteTableId,
				SubnetId:     aws.String(subnetID),
			})
			return err
		})
		if err != nil && !awscloud.IsAlreadyExists(err) {
			return fmt.Errorf("associating subnet %s with %s: %w", subnetID, tag, err)
		}
	}
	return nil
}

// ensureSecurityGroup converges the database security group: ingress on the
// database port from either the allowed CIDR or the peer security group,
// plus unrestricted egress. An existing group has its rules verified and
// repaired rather than recreated.
func (p *NetworkProvisioner) ensureSecurityGroup(ctx context.Context, name, vpcID string) (string, error) {
	groupName := name + "-sg"
	var out *ec2.DescribeSecurityGroupsOutput
	err := p.call(ctx, func() error {
		var err error
		out, err = p.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("group-name"), Values: []string{groupName}},
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("describing security group: %w", err)
	}

	var sgID string
	var ingress, egress []ec2types.IpPermission
	if len(out.SecurityGroups) > 0 {
		sg := out.SecurityGroups[0]
		sgID = aws.ToString(sg.GroupId)
		ingress = sg.IpPermissions
		egress = sg.IpPermissionsEgress
	} else {
		var created *ec2.CreateSecurityGroupOutput
		err := p.call(ctx, func() error {
			var err error
			created, err = p.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
				GroupName:         aws.String(groupName),
				Description:       aws.String("graph database access for " + name),
				VpcId:             aws.String(vpcID),
				TagSpecifications: tagSpec(ec2types.ResourceTypeSecurityGroup, groupName),
			})
			return err
		})
		if err != nil {
			return "", fmt.Errorf("creating security group: %w", err)
		}
		sgID = aws.ToString(created.GroupId)
		// A fresh group already carries the default allow-all egress rule.
		egress = []ec2types.IpPermission{{IpProtocol: aws.String("-1")}}
		p.obs.Printf("created security group %s", sgID)
	}

	if !hasPortRule(ingress, p.cfg.Database.Port) {
		perm := ec2types.IpPermission{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(p.cfg.Database.Port),
			ToPort:     aws.Int32(p.cfg.Database.Port),
		}
		if p.cfg.Network.Access == config.AccessPeer {
			perm.UserIdGroupPairs = []ec2types.UserIdGroupPair{
				{GroupId: aws.String(p.cfg.Network.PeerSecurityGroup)},
			}
		} else {
			perm.IpRanges = []ec2types.IpRange{
				{CidrIp: aws.String(p.cfg.Network.AllowedCIDR), Description: aws.String("graph database port")},
			}
		}
		err := p.call(ctx, func() error {
			_, err := p.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
				GroupId:       aws.String(sgID),
				IpPermissions: []ec2types.IpPermission{perm},
			})
			return err
		})
		if err != nil && !awscloud.IsAlreadyExists(err) {
			return "", fmt.Errorf("authorizing ingress: %w", err)
		}
	}

	if !hasAllowAllEgress(egress) {
		err := p.call(ctx, func() error {
			_, err := p.ec2.AuthorizeSecurityGroupEgress(ctx, &ec2.AuthorizeSecurityGroupEgressInput{
				GroupId: aws.String(sgID),
				IpPermissions: []ec2types.IpPermission{{
					IpProtocol: aws.String("-1"),
					IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
				}},
			})
			return err
		})
		if err != nil && !awscloud.IsAlreadyExists(err) {
			return "", fmt.Errorf("authorizing egress: %w", err)
		}
	}

	return sgID, nil
}

func hasPortRule(perms []ec2types.IpPermission, port int32) bool {
	for _, perm := range perms {
		if aws.ToString(perm.IpProtocol) == "tcp" &&
			aws.ToInt32(perm.FromPort) == port &&
			aws.ToInt32(perm.ToPort) == port {
			return true
		}
	}
	return false
}

func hasAllowAllEgress(perms []ec2types.IpPermission) bool {
	for _, perm := range perms {
		if aws.ToString(perm.IpProtocol) == "-1" {
			return true
		}
	}
	return false
}

func tagSpec(rt ec2types.ResourceType, name string) []ec2types.TagSpecification {
	return []ec2types.TagSpecification{{
		ResourceType: rt,
		Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}},
	}}
}
