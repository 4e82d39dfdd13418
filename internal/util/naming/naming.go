package naming

import "fmt"

// Domain is the DNS suffix every configured node is addressed under.
const Domain = "hdp.hadoop"

// MasterGroup returns the isolation group name for the master role.
func MasterGroup(cluster string) string {
	return fmt.Sprintf("%s-master", cluster)
}

// WorkerGroup returns the isolation group name for the worker role.
func WorkerGroup(cluster string) string {
	return fmt.Sprintf("%s-workers", cluster)
}

// MasterHost is the role name of the single master.
func MasterHost() string {
	return "hdpmaster1"
}

// WorkerHost returns the role name of the i-th worker, 1-based.
func WorkerHost(index int) string {
	return fmt.Sprintf("hdpworker%d", index)
}

// FQDN qualifies a role name with the cluster domain.
func FQDN(host string) string {
	return host + "." + Domain
}

// Server returns the provider-side server name for backends that require
// one (Hetzner), e.g. "demo-workers-3".
func Server(cluster, role string, index int) string {
	return fmt.Sprintf("%s-%s-%d", cluster, role, index)
}
