package cluster

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cloud/fake"
	"github.com/imamik/hdpctl/internal/payload"
	"github.com/imamik/hdpctl/internal/platform/ssh"
)

func newTestConfigurator(t *testing.T, p *fake.Provider, remote Remote) (*Configurator, string) {
	t.Helper()
	poller, _ := newTestPoller(p)
	cf := NewConfigurator(remote, poller, logr.Discard())
	cf.tempDir = t.TempDir()
	return cf, cf.tempDir
}

func testConfigureOptions() ConfigureOptions {
	opts := payload.Defaults()
	opts.DatabasePassword = "secret"
	return ConfigureOptions{
		Bootstrap:   ssh.Identity{User: "ec2-user", PrivateKey: []byte("PRIVATE KEY")},
		Admin:       ssh.Identity{User: "root", PrivateKey: []byte("PRIVATE KEY")},
		DeployKey:   true,
		Parallelism: 2,
		Payload:     opts,
	}
}

func TestConfigure_RunsStepsInOrder(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 2)
	remote := &fakeRemote{}
	cf, tmp := newTestConfigurator(t, p, remote)

	require.NoError(t, cf.Configure(context.Background(), c, testConfigureOptions()))

	master, _ := c.Master()
	ops := remote.recorded()

	// key distribution goes to the master as the bootstrap user
	require.GreaterOrEqual(t, len(ops), 3)
	assert.Equal(t, remoteOp{Kind: "run", Host: master.Address(), User: "ec2-user", Command: payload.PrepareKeyDir()}, ops[0])
	assert.Equal(t, "copy", ops[1].Kind)
	assert.Equal(t, payload.KeyPath, ops[1].Remote)
	assert.Equal(t, "PRIVATE KEY", ops[1].Content)
	assert.Equal(t, payload.RestrictKey(), ops[2].Command)

	// elevation runs sequentially over every node
	nodes := c.Nodes()
	for i, n := range nodes {
		op := ops[3+i]
		assert.Equal(t, n.Address(), op.Host)
		assert.Equal(t, "ec2-user", op.User)
		assert.Equal(t, payload.ElevateRoot("ec2-user"), op.Command)
	}

	bootstrap := remote.commands(func(op remoteOp) bool { return op.Command == payload.NodeBootstrap(testConfigureOptions().Payload) })
	require.Len(t, bootstrap, 3)
	for _, op := range bootstrap {
		assert.Equal(t, "root", op.User)
	}

	setup := remote.commands(func(op remoteOp) bool { return strings.Contains(op.Command, "ambari-server setup") })
	require.Len(t, setup, 1)
	assert.Equal(t, master.Address(), setup[0].Host)
	assert.Contains(t, setup[0].Command, "WITH PASSWORD 'secret'")

	hosts := remote.commands(func(op remoteOp) bool { return op.Remote == payload.HostsPath })
	require.Len(t, hosts, 3)
	for _, op := range hosts {
		assert.Contains(t, op.Content, master.HostsAddress()+" hdpmaster1.hdp.hadoop hdpmaster1\n")
		assert.Contains(t, op.Content, " hdpworker1.hdp.hadoop hdpworker1\n")
		assert.Contains(t, op.Content, " hdpworker2.hdp.hadoop hdpworker2\n")
	}
	hostnames := remote.commands(func(op remoteOp) bool { return strings.HasPrefix(op.Command, "hostname ") })
	assert.Equal(t, payload.SetHostname("hdpmaster1"), hostnames[0].Command)
	assert.Len(t, remote.commands(func(op remoteOp) bool { return op.Command == payload.RestartTimeSync() }), 3)

	assert.Equal(t, "hdpmaster1", c.Masters[0].Name)
	assert.Equal(t, "hdpworker2", c.Workers[1].Name)

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "temporary files are removed")
}

func TestConfigure_WithoutKeyDistribution(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 1)
	remote := &fakeRemote{}
	cf, _ := newTestConfigurator(t, p, remote)

	opts := testConfigureOptions()
	opts.DeployKey = false
	require.NoError(t, cf.Configure(context.Background(), c, opts))

	assert.Empty(t, remote.commands(func(op remoteOp) bool { return op.Remote == payload.KeyPath }))
	assert.Equal(t, payload.ElevateRoot("ec2-user"), remote.recorded()[0].Command)
}

func TestConfigure_UsesKeyFileWhenSet(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 0)
	remote := &fakeRemote{}
	cf, _ := newTestConfigurator(t, p, remote)

	keyFile := t.TempDir() + "/id_rsa"
	require.NoError(t, os.WriteFile(keyFile, []byte("FROM FILE"), 0o600))
	opts := testConfigureOptions()
	opts.Bootstrap.KeyFile = keyFile
	require.NoError(t, cf.Configure(context.Background(), c, opts))

	copies := remote.commands(func(op remoteOp) bool { return op.Remote == payload.KeyPath })
	require.Len(t, copies, 1)
	assert.Equal(t, "FROM FILE", copies[0].Content)
}

func TestConfigure_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 2)
	remote := &fakeRemote{failOn: map[string]error{"hadoop-libhdfs": errRefused}}
	cf, _ := newTestConfigurator(t, p, remote)

	err := cf.Configure(context.Background(), c, testConfigureOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap phase failed")
	assert.ErrorIs(t, err, errRefused)

	var remoteErr *ssh.RemoteExecutionError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 3, remoteErr.Attempts)

	assert.Empty(t, remote.commands(func(op remoteOp) bool { return strings.Contains(op.Command, "ambari-server") }))
	assert.Empty(t, remote.commands(func(op remoteOp) bool { return op.Remote == payload.HostsPath }))
	assert.Zero(t, p.Calls("DescribeInstances"))
}

func TestConfigure_ElevationFailureSkipsRemainingNodes(t *testing.T) {
	t.Parallel()
	p := fake.New()
	c := launchRunning(t, p, "demo", 2)
	remote := &fakeRemote{failOn: map[string]error{"PermitRootLogin": errRefused}}
	cf, _ := newTestConfigurator(t, p, remote)

	opts := testConfigureOptions()
	opts.DeployKey = false
	err := cf.Configure(context.Background(), c, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevate phase failed")
	assert.Len(t, remote.recorded(), 1)
}

func TestConfigure_RequiresMaster(t *testing.T) {
	t.Parallel()
	p := fake.New()
	cf, _ := newTestConfigurator(t, p, &fakeRemote{})

	err := cf.Configure(context.Background(), &Cluster{Name: "demo"}, testConfigureOptions())
	assert.ErrorIs(t, err, ErrNoMaster)
}
