package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hdpctl/internal/config"
	"github.com/imamik/hdpctl/internal/ui/output"
)

// Destroy handles the destroy command.
//
// Every node found under the cluster name is terminated after
// confirmation. With --delete-groups the security groups go too.
func Destroy(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionDestroy)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := e.find(ctx, name, false)
	if err != nil {
		return err
	}
	if c.Empty() && !opts.DeleteGroups {
		e.log.Info("no nodes found", "cluster", name)
		return nil
	}

	if !opts.Yes {
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Destroy cluster %s?", name), output.DestroyWarning(c, opts.DeleteGroups))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(stdout, "Destroy cancelled")
			return nil
		}
	}

	if err := e.lifecycle().Destroy(ctx, c, opts.DeleteGroups); err != nil {
		return err
	}
	e.log.Info("cluster destroyed", "cluster", name, "nodes", len(c.Nodes()))
	return nil
}
