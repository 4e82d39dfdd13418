package cluster

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/cloud/fake"
	"github.com/imamik/hdpctl/internal/platform/ssh"
	"github.com/imamik/hdpctl/internal/util/naming"
)

// recordedSleep collects requested sleeps without waiting.
type recordedSleep struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordedSleep) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

func newTestPoller(p cloud.InstanceManager, opts ...PollerOption) (*Poller, *recordedSleep) {
	rec := &recordedSleep{}
	opts = append([]PollerOption{WithSleep(rec.sleep)}, opts...)
	return NewPoller(p, logr.Discard(), opts...), rec
}

// remoteOp is one call made against fakeRemote.
type remoteOp struct {
	Kind    string // "run" or "copy"
	Host    string
	User    string
	Command string
	Remote  string
	Content string
}

// fakeRemote records operations and fails commands containing a key of failOn.
type fakeRemote struct {
	mu     sync.Mutex
	ops    []remoteOp
	failOn map[string]error
}

func (f *fakeRemote) Run(_ context.Context, host string, id ssh.Identity, command string) (ssh.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, remoteOp{Kind: "run", Host: host, User: id.User, Command: command})
	for needle, err := range f.failOn {
		if strings.Contains(command, needle) {
			return ssh.Result{}, &ssh.RemoteExecutionError{Host: host, Command: command, Attempts: 3, Err: err}
		}
	}
	return ssh.Result{Host: host, Attempts: 1}, nil
}

func (f *fakeRemote) CopyTo(_ context.Context, host string, id ssh.Identity, localPath, remotePath string) (ssh.Result, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return ssh.Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, remoteOp{Kind: "copy", Host: host, User: id.User, Remote: remotePath, Content: string(data)})
	return ssh.Result{Host: host, Attempts: 1}, nil
}

func (f *fakeRemote) recorded() []remoteOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteOp(nil), f.ops...)
}

func (f *fakeRemote) commands(filter func(remoteOp) bool) []remoteOp {
	var out []remoteOp
	for _, op := range f.recorded() {
		if filter(op) {
			out = append(out, op)
		}
	}
	return out
}

var errRefused = errors.New("connection refused")

// launchRunning creates a running cluster with n workers directly on the fake.
func launchRunning(t *testing.T, p *fake.Provider, name string, workers int) *Cluster {
	t.Helper()
	ctx := context.Background()
	c := &Cluster{Name: name}
	if workers > 0 {
		res, err := p.RunInstances(ctx, cloud.RunRequest{Count: workers, InstanceType: "m1.large", GroupNames: []string{naming.WorkerGroup(name)}})
		require.NoError(t, err)
		c.Workers = nodesFrom(res.Instances, RoleWorker)
	}
	res, err := p.RunInstances(ctx, cloud.RunRequest{Count: 1, InstanceType: "m1.large", GroupNames: []string{naming.MasterGroup(name)}})
	require.NoError(t, err)
	c.Masters = nodesFrom(res.Instances, RoleMaster)
	return c
}
