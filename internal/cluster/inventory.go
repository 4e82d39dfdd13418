package cluster

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/util/naming"
)

// Inventory rebuilds a cluster from the provider's reservations.
type Inventory struct {
	instances cloud.InstanceManager
	log       logr.Logger
}

// NewInventory creates an Inventory.
func NewInventory(instances cloud.InstanceManager, log logr.Logger) *Inventory {
	return &Inventory{instances: instances, log: log}
}

// Find returns the active masters and workers of clusterName. A
// reservation counts only when its group set is exactly the master group
// or exactly the workers group. With requireBoth, a cluster missing
// either role fails with *ClusterNotFoundError.
func (i *Inventory) Find(ctx context.Context, clusterName string, requireBoth bool) (*Cluster, error) {
	i.log.Info("searching for existing cluster", "cluster", clusterName)

	reservations, err := i.instances.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	masterGroup, workerGroup := naming.MasterGroup(clusterName), naming.WorkerGroup(clusterName)
	c := &Cluster{Name: clusterName}

	for _, res := range reservations {
		active := make([]cloud.Instance, 0, len(res.Instances))
		for _, inst := range res.Instances {
			if inst.State.Active() {
				active = append(active, inst)
			}
		}
		if len(active) == 0 {
			continue
		}

		switch {
		case onlyGroup(reservationGroups(res), masterGroup):
			c.Masters = append(c.Masters, nodesFrom(active, RoleMaster)...)
		case onlyGroup(reservationGroups(res), workerGroup):
			c.Workers = append(c.Workers, nodesFrom(active, RoleWorker)...)
		}
	}

	if !c.Empty() {
		i.log.Info(fmt.Sprintf("found %d master(s), %d workers", len(c.Masters), len(c.Workers)), "cluster", clusterName)
	}
	if requireBoth && (len(c.Masters) == 0 || len(c.Workers) == 0) {
		return nil, &ClusterNotFoundError{Cluster: clusterName, Masters: len(c.Masters), Workers: len(c.Workers)}
	}
	return c, nil
}

// reservationGroups returns the groups of the launch request, falling
// back to the union of member groups when the provider reports none.
func reservationGroups(res cloud.Reservation) []string {
	if len(res.Groups) > 0 {
		return res.Groups
	}
	seen := map[string]struct{}{}
	var out []string
	for _, inst := range res.Instances {
		for _, g := range inst.Groups {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				out = append(out, g)
			}
		}
	}
	return out
}

func onlyGroup(groups []string, name string) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if g != name {
			return false
		}
	}
	return true
}
