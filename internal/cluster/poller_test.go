package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/cloud/fake"
)

func TestPoller_AwaitActive(t *testing.T) {
	t.Parallel()
	p := fake.New()
	p.PendingPolls = 2
	c := launchRunning(t, p, "demo", 2)
	c.AssignNames()
	for _, n := range c.Nodes() {
		require.Equal(t, cloud.StatePending, n.State)
	}

	poller, rec := newTestPoller(p, WithInterval(time.Second))
	nodes, err := poller.AwaitActive(context.Background(), c.Nodes(), 90*time.Second)
	require.NoError(t, err)

	require.Len(t, nodes, 3)
	assert.Equal(t, "hdpmaster1", nodes[0].Name)
	assert.Equal(t, RoleMaster, nodes[0].Role)
	for _, n := range nodes {
		assert.Equal(t, cloud.StateRunning, n.State)
		assert.NotEmpty(t, n.PublicIP)
	}
	assert.Equal(t, 2, p.Calls("DescribeInstances"))
	assert.Equal(t, []time.Duration{time.Second, 90 * time.Second}, rec.all())
}

func TestPoller_AwaitActiveTreatsNotFoundAsPending(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 1)
	p.NotFoundPolls = 2

	poller, _ := newTestPoller(p)
	nodes, err := poller.AwaitActive(context.Background(), c.Nodes(), 0)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, 3, p.Calls("DescribeInstances"))
}

func TestPoller_AwaitActiveTimeout(t *testing.T) {
	t.Parallel()
	p := fake.New()
	p.PendingPolls = 100
	c := launchRunning(t, p, "demo", 1)

	poller, _ := newTestPoller(p, WithTimeout(time.Nanosecond))
	_, err := poller.AwaitActive(context.Background(), c.Nodes(), 0)

	var timeout *ProvisioningTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.ElementsMatch(t, c.IDs(), timeout.Pending)
}

func TestPoller_AwaitActiveCancelled(t *testing.T) {
	t.Parallel()
	p := fake.New()
	p.PendingPolls = 100
	c := launchRunning(t, p, "demo", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	poller, _ := newTestPoller(p, WithTimeout(0))
	_, err := poller.AwaitActive(ctx, c.Nodes(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoller_AwaitActiveDescribeError(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 0)
	p.Errors["DescribeInstances"] = errors.New("throttled")

	poller, _ := newTestPoller(p)
	_, err := poller.AwaitActive(context.Background(), c.Nodes(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestPoller_AwaitActiveNoNodes(t *testing.T) {
	t.Parallel()
	p := fake.New()
	poller, rec := newTestPoller(p)

	nodes, err := poller.AwaitActive(context.Background(), nil, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, rec.all())
	assert.Zero(t, p.Calls("DescribeInstances"))
}

func TestPoller_AwaitTerminated(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 2)
	require.NoError(t, p.TerminateInstances(context.Background(), c.IDs()))

	poller, _ := newTestPoller(p)
	require.NoError(t, poller.AwaitTerminated(context.Background(), c.IDs()))

	for _, id := range c.IDs() {
		inst, ok := p.Instance(id)
		require.True(t, ok)
		assert.Equal(t, cloud.StateTerminated, inst.State)
	}
}
