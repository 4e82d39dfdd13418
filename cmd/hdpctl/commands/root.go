// Package commands defines the CLI command structure and flag bindings.
//
// Every action takes the cluster name as its only argument and shares the
// persistent flags of the root command. Flag values are layered by viper:
// explicit flags win over HDPCTL_* environment variables, which win over
// the --config file, which wins over the built-in defaults. Command
// execution is delegated to handler functions in the handlers package.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/imamik/hdpctl/internal/cluster"
	"github.com/imamik/hdpctl/internal/config"
)

const envPrefix = "HDPCTL"

// Root returns the root command for the hdpctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hdpctl [flags] <action> <cluster-name>",
		Short:         "Launch and manage HDP clusters on AWS or Hetzner Cloud",
		SilenceErrors: true,
	}
	addFlags(cmd.PersistentFlags())

	cmd.AddCommand(Launch())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Login())
	cmd.AddCommand(Stop())
	cmd.AddCommand(Start())
	cmd.AddCommand(GetMaster())
	cmd.AddCommand(Version())

	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	d := config.Defaults()

	fs.StringP("config", "c", "", "Path to a YAML file with default option values")
	fs.String("provider", d.Provider, "Cloud provider: aws or hetzner")
	fs.IntP("slaves", "s", d.Slaves, "Number of worker nodes to launch")
	fs.DurationP("wait", "w", d.Wait, "Time to wait for nodes to start before configuring them")
	fs.StringP("key-pair", "k", "", "Key pair to use on instances")
	fs.StringP("identity-file", "i", "", "SSH private key file to use for logging into instances")
	fs.StringP("instance-type", "t", d.InstanceType, "Type of instance to launch")
	fs.StringP("master-instance-type", "m", "", "Master instance type (leave empty for same as instance-type)")
	fs.StringP("region", "r", d.Region, "Region to launch instances in")
	fs.StringP("zone", "z", "", `Availability zone to launch instances in, or "all" to spread workers across zones`)
	fs.StringP("ami", "a", d.AMI, "Machine image to launch instances from")
	fs.String("hdp-version", d.HDPVersion, "Version of HDP to use")
	fs.String("ambari-version", d.AmbariVersion, "Version of Ambari to use")
	fs.String("hdp-repo", d.HDPRepo, "Base URL of the HDP package repository")
	fs.Int("ebs-vol-size", 0, "Attach a new EBS volume of this size (in GB) to each node as /vol")
	fs.Int("swap", d.Swap, "Swap space to set up per node, in MB")
	fs.Float64("spot-price", 0, "If greater than 0, launch workers as spot instances with this maximum price (in dollars)")
	fs.Bool("ganglia", d.Ganglia, "Set up Ganglia monitoring on the cluster")
	fs.Bool("no-ganglia", false, "Disable Ganglia monitoring for the cluster")
	fs.StringP("user", "u", d.User, "The SSH user you want to connect as")
	fs.String("bootstrap-user", d.BootstrapUser, "The SSH user the machine image accepts before root login is enabled")
	fs.Bool("resume", false, "Resume installation on a previously launched cluster")
	fs.Bool("delete-groups", false, "When destroying a cluster, delete the security groups that were created")
	fs.Int("parallelism", d.Parallelism, "Number of nodes to bootstrap concurrently")
	fs.Bool("yes", false, "Skip the destroy confirmation")
	fs.StringP("output", "o", d.Output, "Output format for get-master: table or yaml")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
}

// loadOptions resolves the options of cmd from its flags, the environment
// and the optional config file.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &cluster.ConfigurationError{Field: "config", Reason: err.Error()}
		}
	}

	opts := config.Defaults()
	if err := v.Unmarshal(&opts); err != nil {
		return nil, &cluster.ConfigurationError{Field: "config", Reason: err.Error()}
	}
	if v.GetBool("no-ganglia") {
		opts.Ganglia = false
	}
	opts.ApplyProviderDefaults(v.IsSet)
	return &opts, nil
}

// clusterCommand builds an action taking exactly one cluster name.
func clusterCommand(use, short, long string, run func(cmd *cobra.Command, opts *config.Options, name string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <cluster-name>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			return run(cmd, opts, args[0])
		},
	}
}
