package config

import (
	"time"

	"github.com/imamik/hdpctl/internal/cluster"
	"github.com/imamik/hdpctl/internal/payload"
)

// Providers.
const (
	ProviderAWS     = "aws"
	ProviderHetzner = "hetzner"
)

// Output formats.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
)

// Actions.
const (
	ActionLaunch    = "launch"
	ActionDestroy   = "destroy"
	ActionLogin     = "login"
	ActionStop      = "stop"
	ActionStart     = "start"
	ActionGetMaster = "get-master"
)

// Defaults.
const (
	DefaultSlaves        = 1
	DefaultWait          = 120 * time.Second
	DefaultInstanceType  = "m1.large"
	DefaultRegion        = "us-east-1"
	DefaultAMI           = "ami-a25415cb"
	DefaultUser          = "root"
	DefaultBootstrapUser = "ec2-user"
	DefaultParallelism   = 1

	// Hetzner replacements for the EC2-specific defaults.
	DefaultHetznerRegion        = "eu-central"
	DefaultHetznerInstanceType  = "cpx31"
	DefaultHetznerBootstrapUser = "root"
)

// Options carries every command-line option. The mapstructure tags match
// the flag names so viper can fill the struct from flags, environment
// and the defaults file alike.
type Options struct {
	Provider           string        `mapstructure:"provider" yaml:"provider"`
	Slaves             int           `mapstructure:"slaves" yaml:"slaves"`
	Wait               time.Duration `mapstructure:"wait" yaml:"wait"`
	KeyPair            string        `mapstructure:"key-pair" yaml:"key-pair"`
	IdentityFile       string        `mapstructure:"identity-file" yaml:"identity-file"`
	InstanceType       string        `mapstructure:"instance-type" yaml:"instance-type"`
	MasterInstanceType string        `mapstructure:"master-instance-type" yaml:"master-instance-type"`
	Region             string        `mapstructure:"region" yaml:"region"`
	Zone               string        `mapstructure:"zone" yaml:"zone"`
	AMI                string        `mapstructure:"ami" yaml:"ami"`
	HDPVersion         string        `mapstructure:"hdp-version" yaml:"hdp-version"`
	AmbariVersion      string        `mapstructure:"ambari-version" yaml:"ambari-version"`
	HDPRepo            string        `mapstructure:"hdp-repo" yaml:"hdp-repo"`
	EBSVolSize         int           `mapstructure:"ebs-vol-size" yaml:"ebs-vol-size"`
	Swap               int           `mapstructure:"swap" yaml:"swap"`
	SpotPrice          float64       `mapstructure:"spot-price" yaml:"spot-price"`
	Ganglia            bool          `mapstructure:"ganglia" yaml:"ganglia"`
	User               string        `mapstructure:"user" yaml:"user"`
	BootstrapUser      string        `mapstructure:"bootstrap-user" yaml:"bootstrap-user"`
	Resume             bool          `mapstructure:"resume" yaml:"resume"`
	DeleteGroups       bool          `mapstructure:"delete-groups" yaml:"delete-groups"`
	Parallelism        int           `mapstructure:"parallelism" yaml:"parallelism"`
	Yes                bool          `mapstructure:"yes" yaml:"yes"`
	Output             string        `mapstructure:"output" yaml:"output"`
	MetricsAddr        string        `mapstructure:"metrics-addr" yaml:"metrics-addr"`
	LogLevel           string        `mapstructure:"log-level" yaml:"log-level"`
}

// Defaults returns the options used when nothing is set.
func Defaults() Options {
	return Options{
		Provider:      ProviderAWS,
		Slaves:        DefaultSlaves,
		Wait:          DefaultWait,
		InstanceType:  DefaultInstanceType,
		Region:        DefaultRegion,
		AMI:           DefaultAMI,
		HDPVersion:    payload.DefaultHDPVersion,
		AmbariVersion: payload.DefaultAmbariVersion,
		HDPRepo:       payload.DefaultRepoURL,
		Swap:          payload.DefaultSwapMB,
		Ganglia:       true,
		User:          DefaultUser,
		BootstrapUser: DefaultBootstrapUser,
		Parallelism:   DefaultParallelism,
		Output:        OutputTable,
		LogLevel:      "info",
	}
}

// ApplyProviderDefaults swaps EC2-specific defaults for the selected
// provider's. changed reports whether the user set an option explicitly.
func (o *Options) ApplyProviderDefaults(changed func(name string) bool) {
	if o.Provider != ProviderHetzner {
		return
	}
	if !changed("region") {
		o.Region = DefaultHetznerRegion
	}
	if !changed("instance-type") {
		o.InstanceType = DefaultHetznerInstanceType
	}
	if !changed("bootstrap-user") {
		o.BootstrapUser = DefaultHetznerBootstrapUser
	}
	if !changed("ami") {
		o.AMI = ""
	}
}

// LaunchSpec converts the options into a launch request.
func (o Options) LaunchSpec() cluster.LaunchSpec {
	return cluster.LaunchSpec{
		Workers:            o.Slaves,
		ImageID:            o.AMI,
		InstanceType:       o.InstanceType,
		MasterInstanceType: o.MasterInstanceType,
		Zone:               o.Zone,
		KeyName:            o.KeyPair,
		SpotPrice:          o.SpotPrice,
		EBSVolumeSize:      o.EBSVolSize,
		Resume:             o.Resume,
	}
}

// Payload converts the options into node payload settings. The database
// password is generated per launch and never taken from options.
func (o Options) Payload(dbPassword string) payload.Options {
	p := payload.Defaults()
	p.HDPVersion = o.HDPVersion
	p.AmbariVersion = o.AmbariVersion
	p.RepoURL = o.HDPRepo
	p.SwapMB = o.Swap
	p.Ganglia = o.Ganglia
	p.DatabasePassword = dbPassword
	return p
}
