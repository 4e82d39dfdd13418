package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/cloud"
)

// Poller defaults.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 15 * time.Minute
	// DefaultConfigureSettle is the settle window of the converge step.
	DefaultConfigureSettle = 90 * time.Second
)

// Poller waits for instances to leave the pending state.
type Poller struct {
	instances cloud.InstanceManager
	interval  time.Duration
	timeout   time.Duration
	log       logr.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithTimeout sets the ceiling on the pending wait. Zero waits forever.
func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) { p.timeout = d }
}

// WithSleep replaces the context-aware sleep, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) { p.sleep = sleep }
}

// NewPoller creates a Poller.
func NewPoller(instances cloud.InstanceManager, log logr.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		instances: instances,
		interval:  DefaultPollInterval,
		timeout:   DefaultPollTimeout,
		log:       log,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AwaitActive re-describes nodes until none is pending, then sleeps for
// settle. Converged state only means the provider left pending; services
// on the node may still be starting, which settle absorbs. Instances the
// provider does not know yet count as pending. The returned nodes keep
// their role and name.
func (p *Poller) AwaitActive(ctx context.Context, nodes []Node, settle time.Duration) ([]Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	ids := make([]string, len(nodes))
	byID := make(map[string]Node, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
		byID[n.ID] = n
	}

	p.log.Info("waiting for instances to start", "count", len(ids))
	var deadline time.Time
	if p.timeout > 0 {
		deadline = time.Now().Add(p.timeout)
	}

	for {
		pending, refreshed, err := p.poll(ctx, ids, byID)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			if settle > 0 {
				p.log.Info(fmt.Sprintf("waiting %v more for services to start", settle))
				if err := p.sleep(ctx, settle); err != nil {
					return nil, err
				}
			}
			return refreshed, nil
		}

		if !deadline.IsZero() && time.Now().Add(p.interval).After(deadline) {
			return nil, &ProvisioningTimeoutError{Timeout: p.timeout, Pending: pending}
		}
		p.log.V(1).Info("instances still pending", "pending", len(pending))
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}

// poll returns the IDs still pending, or the refreshed nodes once none is.
func (p *Poller) poll(ctx context.Context, ids []string, byID map[string]Node) ([]string, []Node, error) {
	instances, err := p.instances.DescribeInstances(ctx, ids)
	if cloud.IsNotFound(err) {
		return ids, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to describe instances: %w", err)
	}

	current := make(map[string]cloud.Instance, len(instances))
	for _, inst := range instances {
		current[inst.ID] = inst
	}

	var pending []string
	refreshed := make([]Node, 0, len(ids))
	for _, id := range ids {
		inst, ok := current[id]
		if !ok || inst.State == cloud.StatePending {
			pending = append(pending, id)
			continue
		}
		n := byID[id]
		n.Instance = inst
		refreshed = append(refreshed, n)
	}
	if len(pending) > 0 {
		return pending, nil, nil
	}
	return nil, refreshed, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AwaitTerminated polls until every instance is terminated or no longer
// known to the provider.
func (p *Poller) AwaitTerminated(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var deadline time.Time
	if p.timeout > 0 {
		deadline = time.Now().Add(p.timeout)
	}

	for {
		instances, err := p.instances.DescribeInstances(ctx, ids)
		if err != nil && !cloud.IsNotFound(err) {
			return fmt.Errorf("failed to describe instances: %w", err)
		}

		var remaining []string
		if err == nil {
			for _, inst := range instances {
				if inst.State != cloud.StateTerminated {
					remaining = append(remaining, inst.ID)
				}
			}
		}
		if len(remaining) == 0 {
			return nil
		}

		if !deadline.IsZero() && time.Now().Add(p.interval).After(deadline) {
			return &ProvisioningTimeoutError{Timeout: p.timeout, Pending: remaining}
		}
		p.log.V(1).Info("waiting for instances to terminate", "remaining", len(remaining))
		if err := p.sleep(ctx, p.interval); err != nil {
			return err
		}
	}
}
