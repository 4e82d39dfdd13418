package config

import (
	"fmt"
	"slices"

	"github.com/imamik/hdpctl/internal/cluster"
)

// Actions lists every supported action.
var Actions = []string{ActionLaunch, ActionDestroy, ActionLogin, ActionStop, ActionStart, ActionGetMaster}

// Validate checks the options for action and returns a
// *cluster.ConfigurationError on the first problem.
func (o *Options) Validate(action string) error {
	if !slices.Contains(Actions, action) {
		return invalid("action", fmt.Sprintf("unknown action %q", action))
	}

	switch o.Provider {
	case ProviderAWS, ProviderHetzner:
	default:
		return invalid("provider", fmt.Sprintf("must be %s or %s, got %q", ProviderAWS, ProviderHetzner, o.Provider))
	}
	if o.Region == "" {
		return invalid("region", "cannot be empty")
	}

	switch o.Output {
	case OutputTable, OutputYAML:
	default:
		return invalid("output", fmt.Sprintf("must be %s or %s, got %q", OutputTable, OutputYAML, o.Output))
	}

	if o.Wait < 0 {
		return invalid("wait", "cannot be negative")
	}
	if o.Parallelism < 0 {
		return invalid("parallelism", "cannot be negative")
	}
	if o.User == "" {
		return invalid("user", "cannot be empty")
	}

	switch action {
	case ActionLaunch, ActionLogin, ActionStart:
		if o.IdentityFile == "" {
			return invalid("identity-file", fmt.Sprintf("must be specified for %s", action))
		}
	}

	if action == ActionLaunch {
		return o.validateLaunch()
	}
	return nil
}

func (o *Options) validateLaunch() error {
	if o.Slaves < 0 {
		return invalid("slaves", "cannot be negative")
	}
	if o.KeyPair == "" && o.Provider == ProviderAWS {
		return invalid("key-pair", "must be specified for launch")
	}
	if o.AMI == "" {
		return invalid("ami", "must be specified for launch")
	}
	if o.InstanceType == "" {
		return invalid("instance-type", "cannot be empty")
	}
	if o.BootstrapUser == "" {
		return invalid("bootstrap-user", "cannot be empty")
	}
	if o.EBSVolSize < 0 {
		return invalid("ebs-vol-size", "cannot be negative")
	}
	if o.Swap < 0 {
		return invalid("swap", "cannot be negative")
	}
	if o.SpotPrice < 0 {
		return invalid("spot-price", "cannot be negative")
	}
	if o.SpotPrice > 0 && o.Provider == ProviderHetzner {
		return invalid("spot-price", "spot instances are not available on hetzner")
	}
	if o.EBSVolSize > 0 && o.Provider == ProviderHetzner {
		return invalid("ebs-vol-size", "network volumes are not available on hetzner")
	}
	return nil
}

func invalid(field, reason string) error {
	return &cluster.ConfigurationError{Field: field, Reason: reason}
}
