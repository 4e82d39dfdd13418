package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cluster"
)

func launchOptions() Options {
	o := Defaults()
	o.KeyPair = "ops"
	o.IdentityFile = "/home/ops/.ssh/ops.pem"
	return o
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
		mutate func(*Options)
		field  string
	}{
		{name: "valid launch", action: ActionLaunch, mutate: func(*Options) {}},
		{name: "unknown action", action: "scale", mutate: func(*Options) {}, field: "action"},
		{name: "unknown provider", action: ActionLaunch, mutate: func(o *Options) { o.Provider = "gcp" }, field: "provider"},
		{name: "empty region", action: ActionDestroy, mutate: func(o *Options) { o.Region = "" }, field: "region"},
		{name: "bad output", action: ActionGetMaster, mutate: func(o *Options) { o.Output = "json" }, field: "output"},
		{name: "negative wait", action: ActionStart, mutate: func(o *Options) { o.Wait = -1 }, field: "wait"},
		{name: "launch needs identity", action: ActionLaunch, mutate: func(o *Options) { o.IdentityFile = "" }, field: "identity-file"},
		{name: "login needs identity", action: ActionLogin, mutate: func(o *Options) { o.IdentityFile = "" }, field: "identity-file"},
		{name: "start needs identity", action: ActionStart, mutate: func(o *Options) { o.IdentityFile = "" }, field: "identity-file"},
		{name: "destroy without identity", action: ActionDestroy, mutate: func(o *Options) { o.IdentityFile = "" }},
		{name: "get-master without key pair", action: ActionGetMaster, mutate: func(o *Options) { o.KeyPair = "" }},
		{name: "launch needs key pair", action: ActionLaunch, mutate: func(o *Options) { o.KeyPair = "" }, field: "key-pair"},
		{name: "negative slaves", action: ActionLaunch, mutate: func(o *Options) { o.Slaves = -2 }, field: "slaves"},
		{name: "zero slaves", action: ActionLaunch, mutate: func(o *Options) { o.Slaves = 0 }},
		{name: "negative ebs", action: ActionLaunch, mutate: func(o *Options) { o.EBSVolSize = -1 }, field: "ebs-vol-size"},
		{name: "negative swap", action: ActionLaunch, mutate: func(o *Options) { o.Swap = -1 }, field: "swap"},
		{name: "negative spot price", action: ActionLaunch, mutate: func(o *Options) { o.SpotPrice = -0.1 }, field: "spot-price"},
		{
			name:   "spot on hetzner",
			action: ActionLaunch,
			mutate: func(o *Options) { o.Provider = ProviderHetzner; o.SpotPrice = 0.1 },
			field:  "spot-price",
		},
		{
			name:   "ebs on hetzner",
			action: ActionLaunch,
			mutate: func(o *Options) { o.Provider = ProviderHetzner; o.EBSVolSize = 100 },
			field:  "ebs-vol-size",
		},
		{
			name:   "hetzner without key pair",
			action: ActionLaunch,
			mutate: func(o *Options) { o.Provider = ProviderHetzner; o.KeyPair = "" },
		},
		{name: "missing image", action: ActionLaunch, mutate: func(o *Options) { o.AMI = "" }, field: "ami"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := launchOptions()
			tt.mutate(&o)

			err := o.Validate(tt.action)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *cluster.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
