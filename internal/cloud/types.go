package cloud

// InstanceState is the normalized lifecycle state of an instance.
type InstanceState string

// Instance states. Provider-specific transient states are mapped onto these.
const (
	StatePending      InstanceState = "pending"
	StateRunning      InstanceState = "running"
	StateStopping     InstanceState = "stopping"
	StateStopped      InstanceState = "stopped"
	StateShuttingDown InstanceState = "shutting-down"
	StateTerminated   InstanceState = "terminated"
)

// Active reports whether the state counts toward cluster membership.
func (s InstanceState) Active() bool {
	switch s {
	case StatePending, StateRunning, StateStopping, StateStopped:
		return true
	default:
		return false
	}
}

// Protocol values for ingress rules.
const (
	ProtocolAll  = "-1"
	ProtocolTCP  = "tcp"
	ProtocolUDP  = "udp"
	ProtocolICMP = "icmp"
)

// Rule is one ingress permission. Exactly one of SourceGroupID and CIDR is set.
type Rule struct {
	Protocol      string
	FromPort      int
	ToPort        int
	SourceGroupID string
	CIDR          string
}

// SecurityGroup is a named container of ingress rules.
type SecurityGroup struct {
	ID          string
	Name        string
	Description string
	Rules       []Rule
}

// Instance is a single compute instance as reported by the provider.
type Instance struct {
	ID           string
	State        InstanceState
	PublicDNS    string
	PublicIP     string
	PrivateIP    string
	Zone         string
	InstanceType string
	ImageID      string
	// Groups holds the names of the isolation groups the instance is in.
	Groups []string
}

// Reservation is the set of instances created by one launch request.
type Reservation struct {
	ID string
	// Groups holds the names of the isolation groups of the request.
	Groups    []string
	Instances []Instance
}

// Image is a resolved machine image.
type Image struct {
	ID   string
	Name string
}

// BlockDevice maps a device name onto an attached volume or an
// instance-store disk.
type BlockDevice struct {
	DeviceName string
	// VirtualName names an instance-store disk, e.g. "ephemeral0".
	VirtualName string
	// VolumeSizeGB requests a network volume when VirtualName is empty.
	VolumeSizeGB        int
	DeleteOnTermination bool
}

// RunRequest describes one batch launch.
type RunRequest struct {
	ImageID      string
	InstanceType string
	// Count is the exact number of instances to create.
	Count    int
	Zone     string
	KeyName  string
	GroupIDs []string
	// GroupNames mirrors GroupIDs for backends that record membership by name.
	GroupNames []string
	// SpotPrice, when greater than zero, requests spot capacity at that
	// maximum hourly price.
	SpotPrice    float64
	BlockDevices []BlockDevice
	Tags         map[string]string
}
