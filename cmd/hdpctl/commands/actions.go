package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/hdpctl/cmd/hdpctl/handlers"
	"github.com/imamik/hdpctl/internal/config"
)

// Launch returns the launch command.
func Launch() *cobra.Command {
	return clusterCommand("launch", "Launch a new HDP cluster",
		`Launch creates the security groups, the master and the workers of a
new cluster, waits for them to start, and installs Ambari and HDP.

Launching refuses to touch a cluster that already has running nodes.
Use --resume to configure the nodes of an earlier, interrupted launch.

Example:
  hdpctl launch -k ops -i ~/.ssh/ops.pem -s 3 analytics`,
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.Launch(cmd.Context(), opts, name)
		})
}

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	return clusterCommand("destroy", "Terminate every node of a cluster",
		`Destroy terminates the master and all workers of the cluster.

With --delete-groups the cluster's security groups are removed as well,
once every node has terminated.

WARNING: This operation is irreversible. All data on the nodes is lost.`,
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.Destroy(cmd.Context(), opts, name)
		})
}

// Login returns the login command.
func Login() *cobra.Command {
	return clusterCommand("login", "Open a shell on the cluster master", "",
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.Login(cmd.Context(), opts, name)
		})
}

// Stop returns the stop command.
func Stop() *cobra.Command {
	return clusterCommand("stop", "Stop every node of a cluster",
		`Stop shuts the nodes of the cluster down without terminating them.
Data on instance-store disks is lost; EBS volumes are kept.`,
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.Stop(cmd.Context(), opts, name)
		})
}

// Start returns the start command.
func Start() *cobra.Command {
	return clusterCommand("start", "Start a stopped cluster and configure it again", "",
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.Start(cmd.Context(), opts, name)
		})
}

// GetMaster returns the get-master command.
func GetMaster() *cobra.Command {
	return clusterCommand("get-master", "Print the address of the cluster master", "",
		func(cmd *cobra.Command, opts *config.Options, name string) error {
			return handlers.GetMaster(cmd.Context(), opts, name)
		})
}
