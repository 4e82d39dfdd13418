package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/provisioning"
	"github.com/imamik/hdpctl/internal/util/naming"
	"github.com/imamik/hdpctl/internal/util/retry"
)

const (
	phaseDestroy = "destroy"

	// DefaultGroupDeleteAttempts bounds attempts to delete one group.
	DefaultGroupDeleteAttempts = 3
	defaultGroupDeleteDelay    = 30 * time.Second
)

// Lifecycle stops, starts and destroys existing clusters.
type Lifecycle struct {
	provider            cloud.Provider
	poller              *Poller
	observer            provisioning.Observer
	groupDeleteAttempts int
	groupDeleteDelay    time.Duration
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithGroupDeleteRetry sets how often and how far apart group deletion
// is attempted.
func WithGroupDeleteRetry(attempts int, delay time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		l.groupDeleteAttempts = attempts
		l.groupDeleteDelay = delay
	}
}

// NewLifecycle creates a Lifecycle.
func NewLifecycle(provider cloud.Provider, poller *Poller, log logr.Logger, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		provider:            provider,
		poller:              poller,
		observer:            provisioning.NewLogObserver(log),
		groupDeleteAttempts: DefaultGroupDeleteAttempts,
		groupDeleteDelay:    defaultGroupDeleteDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Destroy terminates every node of c. With deleteGroups it then waits
// for termination, strips both groups of their rules (each references
// the other) and deletes them.
func (l *Lifecycle) Destroy(ctx context.Context, c *Cluster, deleteGroups bool) error {
	ids := c.IDs()
	if len(ids) > 0 {
		for _, n := range c.Nodes() {
			provisioning.LogResourceDeleting(l.observer, phaseDestroy, "instance", n.ID)
		}
		if err := l.provider.TerminateInstances(ctx, ids); err != nil {
			return fmt.Errorf("failed to terminate instances: %w", err)
		}
	}
	if !deleteGroups {
		return nil
	}

	if err := l.poller.AwaitTerminated(ctx, ids); err != nil {
		return err
	}

	groups, err := l.clusterGroups(ctx, c.Name)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if len(g.Rules) == 0 {
			continue
		}
		if err := l.provider.RevokeIngress(ctx, g.ID, g.Rules); err != nil {
			return fmt.Errorf("failed to revoke rules of %s: %w", g.Name, err)
		}
	}
	for _, g := range groups {
		provisioning.LogResourceDeleting(l.observer, phaseDestroy, "security group", g.Name)
		err := retry.WithFixedDelay(ctx, func() error {
			err := l.provider.DeleteSecurityGroup(ctx, g.ID)
			if cloud.IsNotFound(err) {
				return nil
			}
			return err
		}, max(l.groupDeleteAttempts-1, 0), l.groupDeleteDelay)
		if err != nil {
			return fmt.Errorf("failed to delete security group %s: %w", g.Name, err)
		}
		provisioning.LogResourceDeleted(l.observer, phaseDestroy, "security group", g.Name)
	}
	return nil
}

// Stop stops every active node of c.
func (l *Lifecycle) Stop(ctx context.Context, c *Cluster) error {
	ids := activeIDs(c.Nodes())
	if len(ids) == 0 {
		return nil
	}
	l.observer.Printf("Stopping %d instances", len(ids))
	if err := l.provider.StopInstances(ctx, ids); err != nil {
		return fmt.Errorf("failed to stop instances: %w", err)
	}
	return nil
}

// Start starts every node of c and waits until none is pending, then
// sleeps for settle. The returned cluster carries the fresh addresses.
func (l *Lifecycle) Start(ctx context.Context, c *Cluster, settle time.Duration) (*Cluster, error) {
	ids := activeIDs(c.Nodes())
	if len(ids) > 0 {
		l.observer.Printf("Starting %d instances", len(ids))
		if err := l.provider.StartInstances(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to start instances: %w", err)
		}
	}

	refreshed, err := l.poller.AwaitActive(ctx, c.Nodes(), settle)
	if err != nil {
		return nil, err
	}
	out := &Cluster{Name: c.Name, Masters: append([]Node(nil), c.Masters...), Workers: append([]Node(nil), c.Workers...)}
	out.Refresh(refreshed)
	return out, nil
}

func (l *Lifecycle) clusterGroups(ctx context.Context, clusterName string) ([]cloud.SecurityGroup, error) {
	all, err := l.provider.ListSecurityGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list security groups: %w", err)
	}
	var out []cloud.SecurityGroup
	for _, name := range []string{naming.MasterGroup(clusterName), naming.WorkerGroup(clusterName)} {
		for _, g := range all {
			if g.Name == name {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func activeIDs(nodes []Node) []string {
	var ids []string
	for _, n := range nodes {
		if n.IsActive() {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
