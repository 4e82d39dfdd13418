// Package main is the entry point for the hdpctl CLI.
//
// hdpctl launches and manages Hortonworks Data Platform clusters on AWS
// EC2 or Hetzner Cloud. A cluster is identified only by its name: the
// isolation groups <name>-master and <name>-workers hold its nodes, and
// every command rebuilds the cluster from provider state.
//
// Commands: launch, destroy, login, stop, start, get-master.
//
// For detailed usage information, run:
//
//	hdpctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/hdpctl/cmd/hdpctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
