package cloud

import "context"

// GroupManager manages isolation groups and their ingress rules.
type GroupManager interface {
	ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error)
	CreateSecurityGroup(ctx context.Context, name, description string) (SecurityGroup, error)
	AuthorizeIngress(ctx context.Context, groupID string, rules []Rule) error
	RevokeIngress(ctx context.Context, groupID string, rules []Rule) error
	DeleteSecurityGroup(ctx context.Context, groupID string) error
}

// InstanceManager launches and controls instances.
type InstanceManager interface {
	// ListReservations returns every reservation visible to the account.
	ListReservations(ctx context.Context) ([]Reservation, error)
	// DescribeInstances returns the current view of the given instances.
	// An error satisfying IsNotFound means at least one ID is not yet
	// visible to the provider.
	DescribeInstances(ctx context.Context, ids []string) ([]Instance, error)
	RunInstances(ctx context.Context, req RunRequest) (Reservation, error)
	TerminateInstances(ctx context.Context, ids []string) error
	StopInstances(ctx context.Context, ids []string) error
	StartInstances(ctx context.Context, ids []string) error
}

// Catalog answers lookups that do not mutate anything.
type Catalog interface {
	ResolveImage(ctx context.Context, imageID string) (Image, error)
	ListZones(ctx context.Context) ([]string, error)
}

// Provider combines all provider interfaces.
type Provider interface {
	GroupManager
	InstanceManager
	Catalog
	// Name returns the backend name, e.g. "aws".
	Name() string
}
