package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hdpctl/internal/config"
)

// Login handles the login command by opening an interactive shell on the
// master as the admin user.
func Login(ctx context.Context, opts *config.Options, name string) error {
	e, cleanup, err := setup(ctx, opts, config.ActionLogin)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := e.find(ctx, name, true)
	if err != nil {
		return err
	}
	master, err := c.Master()
	if err != nil {
		return err
	}
	_, admin, err := e.identities()
	if err != nil {
		return err
	}

	e.log.Info("logging in to master", "host", master.Address())
	if err := e.remote().Shell(ctx, master.Address(), admin, stdin, stdout, stderr); err != nil {
		return fmt.Errorf("login to %s failed: %w", master.Address(), err)
	}
	return nil
}
