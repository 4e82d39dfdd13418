package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hdpctl/internal/config"
	"github.com/imamik/hdpctl/internal/ui/output"
)

// Stop handles the stop command.
func Stop(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionStop)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := e.find(ctx, name, false)
	if err != nil {
		return err
	}
	if c.Empty() {
		e.log.Info("no nodes found", "cluster", name)
		return nil
	}
	return e.lifecycle().Stop(ctx, c)
}

// Start handles the start command. The nodes are started, waited for and
// configured again; the key already on the master is left in place.
func Start(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionStart)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := e.find(ctx, name, true)
	if err != nil {
		return err
	}
	c, err = e.lifecycle().Start(ctx, c, opts.Wait)
	if err != nil {
		return err
	}
	if err := e.configure(ctx, c, false); err != nil {
		return fmt.Errorf("failed to configure cluster %s: %w", name, err)
	}

	master, err := c.Master()
	if err != nil {
		return err
	}
	return output.PrintDashboards(stdout, name, output.Dashboards(master.Address(), opts.Ganglia))
}

// GetMaster handles the get-master command.
func GetMaster(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionGetMaster)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := e.find(ctx, name, true)
	if err != nil {
		return err
	}
	return output.Master(stdout, c, opts.Output)
}
