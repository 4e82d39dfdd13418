package cluster

import (
	"errors"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/util/naming"
)

// Role is the part a node plays in the cluster.
type Role string

// Roles.
const (
	RoleMaster Role = "master"
	RoleWorker Role = "workers"
)

// Node is an instance with its cluster role. Name is the role name
// assigned during configuration.
type Node struct {
	cloud.Instance
	Role Role
	Name string
}

// IsActive reports whether the node counts toward cluster membership.
func (n Node) IsActive() bool {
	return n.State.Active()
}

// Address returns the address used to reach the node over SSH.
func (n Node) Address() string {
	switch {
	case n.PublicDNS != "":
		return n.PublicDNS
	case n.PublicIP != "":
		return n.PublicIP
	default:
		return n.PrivateIP
	}
}

// HostsAddress returns the IP written to the shared hosts file.
func (n Node) HostsAddress() string {
	if n.PublicIP != "" {
		return n.PublicIP
	}
	return n.PrivateIP
}

// Cluster is the set of nodes found or launched under one name.
type Cluster struct {
	Name    string
	Masters []Node
	Workers []Node
}

// ErrNoMaster is returned by Master when the cluster has no master node.
var ErrNoMaster = errors.New("cluster has no master")

// Master returns the first master.
func (c *Cluster) Master() (Node, error) {
	if len(c.Masters) == 0 {
		return Node{}, ErrNoMaster
	}
	return c.Masters[0], nil
}

// Nodes returns masters followed by workers.
func (c *Cluster) Nodes() []Node {
	out := make([]Node, 0, len(c.Masters)+len(c.Workers))
	out = append(out, c.Masters...)
	return append(out, c.Workers...)
}

// IDs returns the instance IDs of all nodes.
func (c *Cluster) IDs() []string {
	nodes := c.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// Empty reports whether no node was found.
func (c *Cluster) Empty() bool {
	return len(c.Masters) == 0 && len(c.Workers) == 0
}

// AssignNames gives the master its fixed role name and numbers workers
// from 1 in enumeration order.
func (c *Cluster) AssignNames() {
	for i := range c.Masters {
		c.Masters[i].Name = naming.MasterHost()
	}
	for i := range c.Workers {
		c.Workers[i].Name = naming.WorkerHost(i + 1)
	}
}

// Refresh swaps the nodes for their refreshed copies, keeping role and name.
// Nodes missing from refreshed are left as they are.
func (c *Cluster) Refresh(refreshed []Node) {
	byID := make(map[string]Node, len(refreshed))
	for _, n := range refreshed {
		byID[n.ID] = n
	}
	update := func(nodes []Node) {
		for i, n := range nodes {
			if r, ok := byID[n.ID]; ok {
				r.Role, r.Name = n.Role, n.Name
				nodes[i] = r
			}
		}
	}
	update(c.Masters)
	update(c.Workers)
}

func nodesFrom(instances []cloud.Instance, role Role) []Node {
	out := make([]Node, len(instances))
	for i, inst := range instances {
		out[i] = Node{Instance: inst, Role: role}
	}
	return out
}
