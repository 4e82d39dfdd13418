package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/cluster"
	"github.com/imamik/hdpctl/internal/config"
	"github.com/imamik/hdpctl/internal/metrics"
	"github.com/imamik/hdpctl/internal/platform/ec2"
	"github.com/imamik/hdpctl/internal/platform/hcloud"
	"github.com/imamik/hdpctl/internal/platform/ssh"
	"github.com/imamik/hdpctl/internal/ui/output"
)

// Remote runs commands on nodes and opens interactive shells.
type Remote interface {
	cluster.Remote
	Shell(ctx context.Context, host string, id ssh.Identity, in io.Reader, out, errOut io.Writer) error
}

// Factory function variables - can be replaced in tests.
var (
	// newProvider creates the cloud backend selected by opts.
	newProvider = func(ctx context.Context, opts *config.Options, creds config.Credentials) (cloud.Provider, error) {
		if opts.Provider == config.ProviderHetzner {
			return hcloud.NewClient(creds.HCloudToken, opts.Region), nil
		}
		var clientOpts []ec2.Option
		if creds.Static() {
			clientOpts = append(clientOpts, ec2.WithStaticCredentials(creds.AWSAccessKeyID, creds.AWSSecretAccessKey, creds.AWSSessionToken))
		} else {
			clientOpts = append(clientOpts, ec2.WithSharedCredentials(creds.AWSSharedFile, creds.AWSProfile))
		}
		p, err := ec2.NewClient(ctx, opts.Region, clientOpts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	// newRemote creates the SSH executor used for every node operation.
	newRemote = func(t *config.Timeouts, rec *metrics.Recorder, log logr.Logger) Remote {
		return ssh.NewExecutor(
			ssh.WithDialer(ssh.NewGophDialer(t.SSHDialTimeout)),
			ssh.WithRetries(t.SSHRetries),
			ssh.WithRetryDelay(t.SSHRetryDelay),
			ssh.WithRecorder(rec),
			ssh.WithLogger(log),
		)
	}

	// newLogger builds the process logger.
	newLogger = config.NewLogger

	// prompter asks for destroy confirmation.
	prompter output.Prompter = output.FormPrompter{}

	// newPassword generates the Ambari database password of a launch.
	newPassword = uuid.NewString

	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// env is everything one action needs.
type env struct {
	opts     *config.Options
	log      logr.Logger
	timeouts *config.Timeouts
	recorder *metrics.Recorder
	provider cloud.Provider
	poller   *cluster.Poller
}

// setup validates opts for action and wires the provider, logger and
// metrics. The returned function flushes the logger.
func setup(ctx context.Context, opts *config.Options, action string) (*env, func(), error) {
	if err := opts.Validate(action); err != nil {
		return nil, nil, err
	}

	log, zl, err := newLogger(opts.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cleanup := func() { _ = zl.Sync() }

	creds, err := config.LoadCredentials(opts.Provider)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	recorder := metrics.New()
	if opts.MetricsAddr != "" {
		recorder.Serve(ctx, opts.MetricsAddr, log)
	}

	provider, err := newProvider(ctx, opts, creds)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create %s client: %w", opts.Provider, err)
	}
	provider = cloud.Instrument(provider, recorder)

	timeouts := config.LoadTimeouts()
	e := &env{
		opts:     opts,
		log:      log.WithValues("provider", provider.Name(), "region", opts.Region),
		timeouts: timeouts,
		recorder: recorder,
		provider: provider,
	}
	e.poller = cluster.NewPoller(provider, e.log,
		cluster.WithInterval(timeouts.PollInterval),
		cluster.WithTimeout(timeouts.PollTimeout),
	)
	return e, cleanup, nil
}

func (e *env) find(ctx context.Context, name string, requireBoth bool) (*cluster.Cluster, error) {
	return cluster.NewInventory(e.provider, e.log).Find(ctx, name, requireBoth)
}

func (e *env) launcher() *cluster.Launcher {
	return cluster.NewLauncher(e.provider, e.log, cluster.WithLauncherRecorder(e.recorder))
}

func (e *env) remote() Remote {
	return newRemote(e.timeouts, e.recorder, e.log)
}

func (e *env) lifecycle() *cluster.Lifecycle {
	return cluster.NewLifecycle(e.provider, e.poller, e.log,
		cluster.WithGroupDeleteRetry(e.timeouts.GroupDeleteAttempts, e.timeouts.GroupDeleteDelay))
}

// identities loads the provisioning identity and derives the admin one.
func (e *env) identities() (ssh.Identity, ssh.Identity, error) {
	bootstrap, err := ssh.LoadIdentity(e.opts.BootstrapUser, e.opts.IdentityFile)
	if err != nil {
		return ssh.Identity{}, ssh.Identity{}, &cluster.ConfigurationError{Field: "identity-file", Reason: err.Error()}
	}
	return bootstrap, bootstrap.As(e.opts.User), nil
}

// configure pushes the node configuration to c.
func (e *env) configure(ctx context.Context, c *cluster.Cluster, deployKey bool) error {
	bootstrap, admin, err := e.identities()
	if err != nil {
		return err
	}
	return cluster.NewConfigurator(e.remote(), e.poller, e.log).Configure(ctx, c, cluster.ConfigureOptions{
		Bootstrap:   bootstrap,
		Admin:       admin,
		DeployKey:   deployKey,
		Parallelism: e.opts.Parallelism,
		Settle:      e.timeouts.Settle,
		Payload:     e.opts.Payload(newPassword()),
	})
}
