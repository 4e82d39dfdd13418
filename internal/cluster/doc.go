// Package cluster orchestrates the lifecycle of a master/worker cluster.
//
// A cluster is identified only by its name. Its two isolation groups,
// <name>-master and <name>-workers, double as the membership record, so
// every run rebuilds the cluster from provider state:
//
//   - [GroupProvisioner] makes sure both groups exist and are authorized.
//   - [Inventory] classifies reservations into masters and workers.
//   - [Launcher] spreads workers across zones with [Partition] and starts
//     the master.
//   - [Poller] waits for instances to leave the pending state.
//   - [Configurator] pushes the node payloads over SSH in a fixed order.
//   - [Lifecycle] stops, starts and destroys an existing cluster.
package cluster
