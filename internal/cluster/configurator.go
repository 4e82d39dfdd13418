package cluster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/payload"
	"github.com/imamik/hdpctl/internal/platform/ssh"
	"github.com/imamik/hdpctl/internal/provisioning"
	"github.com/imamik/hdpctl/internal/util/async"
)

// Configuration step names.
const (
	StepDistributeKey = "distribute-key"
	StepElevate       = "elevate"
	StepBootstrap     = "bootstrap"
	StepConverge      = "converge"
	StepMasterSetup   = "master-setup"
	StepHosts         = "hosts"
)

// Remote runs commands and copies files on nodes.
type Remote interface {
	Run(ctx context.Context, host string, id ssh.Identity, command string) (ssh.Result, error)
	CopyTo(ctx context.Context, host string, id ssh.Identity, localPath, remotePath string) (ssh.Result, error)
}

// ConfigureOptions controls one configuration pass.
type ConfigureOptions struct {
	// Bootstrap is the image's provisioning account, used until root
	// login is enabled.
	Bootstrap ssh.Identity
	// Admin is the account every step after elevation runs as.
	Admin ssh.Identity
	// DeployKey copies the private key to the master.
	DeployKey bool
	// Parallelism bounds concurrent node bootstraps. Values below 2 run
	// nodes one after another.
	Parallelism int
	// Settle is slept after the converge step's poll.
	Settle  time.Duration
	Payload payload.Options
}

// Configurator pushes configuration to an active cluster.
type Configurator struct {
	remote   Remote
	poller   *Poller
	observer provisioning.Observer
	tempDir  string
}

// NewConfigurator creates a Configurator.
func NewConfigurator(remote Remote, poller *Poller, log logr.Logger) *Configurator {
	return &Configurator{
		remote:   remote,
		poller:   poller,
		observer: provisioning.NewLogObserver(log),
	}
}

// Configure runs the configuration steps in order and stops at the first
// failure. Nodes receive their role names in c.
func (cf *Configurator) Configure(ctx context.Context, c *Cluster, opts ConfigureOptions) error {
	master, err := c.Master()
	if err != nil {
		return err
	}
	cf.observer.Printf("Master: %s", master.Address())

	var phases []provisioning.Phase
	if opts.DeployKey {
		phases = append(phases, provisioning.PhaseFunc{PhaseName: StepDistributeKey, Fn: func(ctx context.Context) error {
			return cf.distributeKey(ctx, master, opts.Bootstrap)
		}})
	}
	phases = append(phases,
		provisioning.PhaseFunc{PhaseName: StepElevate, Fn: func(ctx context.Context) error {
			return cf.elevate(ctx, c, opts.Bootstrap)
		}},
		provisioning.PhaseFunc{PhaseName: StepBootstrap, Fn: func(ctx context.Context) error {
			return cf.bootstrap(ctx, c, opts)
		}},
		provisioning.PhaseFunc{PhaseName: StepConverge, Fn: func(ctx context.Context) error {
			refreshed, err := cf.poller.AwaitActive(ctx, c.Nodes(), opts.Settle)
			if err != nil {
				return err
			}
			c.Refresh(refreshed)
			return nil
		}},
		provisioning.PhaseFunc{PhaseName: StepMasterSetup, Fn: func(ctx context.Context) error {
			m, err := c.Master()
			if err != nil {
				return err
			}
			_, err = cf.remote.Run(ctx, m.Address(), opts.Admin, payload.MasterSetup(opts.Payload))
			return err
		}},
		provisioning.PhaseFunc{PhaseName: StepHosts, Fn: func(ctx context.Context) error {
			return cf.distributeHosts(ctx, c, opts.Admin)
		}},
	)

	return provisioning.RunPhases(ctx, cf.observer.WithFields(map[string]string{"cluster": c.Name}), phases)
}

func (cf *Configurator) distributeKey(ctx context.Context, master Node, id ssh.Identity) error {
	keyFile := id.KeyFile
	if keyFile == "" {
		path, cleanup, err := cf.writeTemp("identity-*", id.PrivateKey)
		if err != nil {
			return err
		}
		defer cleanup()
		keyFile = path
	}

	host := master.Address()
	if _, err := cf.remote.Run(ctx, host, id, payload.PrepareKeyDir()); err != nil {
		return err
	}
	if _, err := cf.remote.CopyTo(ctx, host, id, keyFile, payload.KeyPath); err != nil {
		return err
	}
	_, err := cf.remote.Run(ctx, host, id, payload.RestrictKey())
	return err
}

func (cf *Configurator) elevate(ctx context.Context, c *Cluster, id ssh.Identity) error {
	cmd := payload.ElevateRoot(id.User)
	for _, n := range c.Nodes() {
		if _, err := cf.remote.Run(ctx, n.Address(), id, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (cf *Configurator) bootstrap(ctx context.Context, c *Cluster, opts ConfigureOptions) error {
	c.AssignNames()
	cmd := payload.NodeBootstrap(opts.Payload)

	nodes := c.Nodes()
	var done atomic.Int32
	tasks := make([]async.Task, len(nodes))
	for i, n := range nodes {
		tasks[i] = async.Task{Name: n.Name, Func: func(ctx context.Context) error {
			_, err := cf.remote.Run(ctx, n.Address(), opts.Admin, cmd)
			if err == nil {
				cf.observer.Event(provisioning.Event{
					Type:     provisioning.EventResourceCreated,
					Phase:    StepBootstrap,
					Resource: n.Name,
					Message:  "node bootstrapped",
					Fields:   map[string]string{"id": n.ID},
				})
				cf.observer.Progress(StepBootstrap, int(done.Add(1)), len(nodes))
			}
			return err
		}}
	}

	return async.RunParallel(ctx, tasks, max(opts.Parallelism, 1))
}

func (cf *Configurator) distributeHosts(ctx context.Context, c *Cluster, id ssh.Identity) error {
	nodes := c.Nodes()
	entries := make([]payload.HostEntry, 0, len(nodes))
	for _, n := range nodes {
		if n.Name == "" {
			return errors.New("node " + n.ID + " has no role name")
		}
		entries = append(entries, payload.HostEntry{Address: n.HostsAddress(), Name: n.Name})
	}

	path, cleanup, err := cf.writeTemp("hosts-*", []byte(payload.HostsFile(entries)))
	if err != nil {
		return err
	}
	defer cleanup()

	for _, n := range nodes {
		host := n.Address()
		if _, err := cf.remote.CopyTo(ctx, host, id, path, payload.HostsPath); err != nil {
			return err
		}
		if _, err := cf.remote.Run(ctx, host, id, payload.SetHostname(n.Name)); err != nil {
			return err
		}
		if _, err := cf.remote.Run(ctx, host, id, payload.RestartTimeSync()); err != nil {
			return err
		}
	}
	return nil
}

func (cf *Configurator) writeTemp(pattern string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp(cf.tempDir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
