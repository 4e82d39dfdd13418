package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hdpctl/internal/cluster"
	"github.com/imamik/hdpctl/internal/config"
	"github.com/imamik/hdpctl/internal/ui/output"
)

// Launch handles the launch command.
//
// It creates the cluster (or with --resume picks up an existing one),
// waits for every node to run, configures the nodes and prints the
// dashboard URLs. Nothing is rolled back on failure; a later --resume or
// destroy works from whatever the provider holds.
func Launch(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionLaunch)
	if err != nil {
		return err
	}
	defer cleanup()

	// Fail on a bad identity before anything is created.
	if _, _, err := e.identities(); err != nil {
		return err
	}

	c, err := e.launcher().Launch(ctx, name, opts.LaunchSpec())
	if err != nil {
		return err
	}
	// Workers are optional, a master is not.
	if len(c.Masters) == 0 {
		return &cluster.ClusterNotFoundError{Cluster: name, Workers: len(c.Workers)}
	}

	e.log.Info("waiting for instances to start", "nodes", len(c.Nodes()), "settle", opts.Wait)
	refreshed, err := e.poller.AwaitActive(ctx, c.Nodes(), opts.Wait)
	if err != nil {
		return err
	}
	c.Refresh(refreshed)

	if err := e.configure(ctx, c, true); err != nil {
		return fmt.Errorf("failed to configure cluster %s: %w", name, err)
	}

	master, err := c.Master()
	if err != nil {
		return err
	}
	return output.PrintDashboards(stdout, name, output.Dashboards(master.Address(), opts.Ganglia))
}
