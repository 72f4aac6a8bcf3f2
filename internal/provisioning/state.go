package provisioning

// Status is the coarse lifecycle state of a provisioned resource.
type Status string

const (
	StatusAbsent     Status = "absent"
	StatusCreating   Status = "creating"
	StatusAvailable  Status = "available"
	StatusFixing     Status = "fixing"
	StatusFailed     Status = "failed"
	StatusDeleting   Status = "deleting"
	StatusProcessing Status = "processing"
	StatusActive     Status = "active"
)

// ClusterStatus maps a raw Neptune cluster status string onto the
// lifecycle states the provisioner branches on. Transitional statuses the
// control plane resolves on its own (backing-up, modifying, upgrading, ...)
// all count as creating.
func ClusterStatus(apiStatus string) Status {
	switch apiStatus {
	case "":
		return StatusAbsent
	case "available":
		return StatusAvailable
	case "deleting":
		return StatusDeleting
	case "failed", "inaccessible-encryption-credentials", "migration-failed":
		return StatusFailed
	default:
		return StatusCreating
	}
}

// NetworkTopology identifies every network resource the benchmark
// environment runs on. All IDs refer to live resources in one VPC.
type NetworkTopology struct {
	VPCID             string
	PublicSubnetIDs   []string
	PrivateSubnetIDs  []string
	InternetGatewayID string
	NATGatewayID      string
	AllocationID      string // elastic IP backing the NAT gateway
	SecurityGroupID   string
}

// ClusterResource describes a converged graph database cluster.
type ClusterResource struct {
	ClusterID      string
	InstanceID     string
	Endpoint       string
	Port           int32
	IAMAuthEnabled bool
	ParameterGroup string
	SubnetGroup    string
	Status         Status

	// Reused is true when the cluster pre-existed this run.
	Reused bool
}

// Usable reports whether clients can connect to the cluster.
func (c *ClusterResource) Usable() bool {
	return c != nil && c.Status == StatusAvailable && c.Endpoint != ""
}

// DomainResource describes a converged search domain.
type DomainResource struct {
	Name          string
	EngineVersion string
	Endpoint      string
	Status        Status

	// Reused is true when the domain pre-existed this run.
	Reused bool
}

// Active reports whether the domain accepts requests.
func (d *DomainResource) Active() bool {
	return d != nil && d.Status == StatusActive && d.Endpoint != ""
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	Topology *NetworkTopology
	Cluster  *ClusterResource
	Domain   *DomainResource
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}
