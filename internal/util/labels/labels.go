package labels

import (
	"slices"
	"strings"
)

// Standard label keys.
const (
	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "hdpctl.io/cluster"

	// KeyRole identifies the role of a node (master, workers)
	KeyRole = "hdpctl.io/role"

	// KeyReservation groups nodes created by one launch request
	KeyReservation = "hdpctl.io/reservation"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "hdpctl.io/managed-by"

	// KeyGroupPrefix marks membership in a named isolation group. The group
	// name follows the prefix, e.g. "hdpctl.io/group.demo-master".
	KeyGroupPrefix = "hdpctl.io/group."
)

// Role values
const (
	RoleMaster  = "master"
	RoleWorkers = "workers"
)

// ManagedByHdpctl is the value of KeyManagedBy on every created resource.
const ManagedByHdpctl = "hdpctl"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster name pre-set.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedByHdpctl,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithReservation adds the reservation ID label.
func (lb *LabelBuilder) WithReservation(id string) *LabelBuilder {
	lb.labels[KeyReservation] = id
	return lb
}

// WithGroups marks membership in each named group.
func (lb *LabelBuilder) WithGroups(groups ...string) *LabelBuilder {
	for _, g := range groups {
		lb.labels[KeyGroupPrefix+g] = "true"
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Groups extracts the group names recorded with WithGroups, sorted.
func Groups(labels map[string]string) []string {
	var groups []string
	for k := range labels {
		if name, ok := strings.CutPrefix(k, KeyGroupPrefix); ok {
			groups = append(groups, name)
		}
	}
	slices.Sort(groups)
	return groups
}

// SelectorForCluster returns a label selector string for all resources in a cluster.
func SelectorForCluster(clusterName string) string {
	return KeyCluster + "=" + clusterName
}

// SelectorManaged selects every resource created by this tool.
func SelectorManaged() string {
	return KeyManagedBy + "=" + ManagedByHdpctl
}
