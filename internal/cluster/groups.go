package cluster

import (
	"context"
	"fmt"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/provisioning"
	"github.com/imamik/hdpctl/internal/util/naming"
)

const (
	groupDescription = "hdpctl cluster group"
	phaseGroups      = "groups"
)

// GroupProvisioner makes sure a cluster's two isolation groups exist and
// carry their ingress rules.
type GroupProvisioner struct {
	groups   cloud.GroupManager
	observer provisioning.Observer
}

// NewGroupProvisioner creates a GroupProvisioner.
func NewGroupProvisioner(groups cloud.GroupManager, observer provisioning.Observer) *GroupProvisioner {
	return &GroupProvisioner{groups: groups, observer: observer}
}

// EnsureGroups returns the master and workers groups, creating any that
// are missing. A group is authorized only while it has no rules, so an
// existing group is never re-authorized.
func (g *GroupProvisioner) EnsureGroups(ctx context.Context, clusterName string) (cloud.SecurityGroup, cloud.SecurityGroup, error) {
	existing, err := g.groups.ListSecurityGroups(ctx)
	if err != nil {
		return cloud.SecurityGroup{}, cloud.SecurityGroup{}, fmt.Errorf("failed to list security groups: %w", err)
	}

	// both groups must exist before either is authorized, since each
	// references the other
	master, err := g.getOrCreate(ctx, existing, naming.MasterGroup(clusterName))
	if err != nil {
		return cloud.SecurityGroup{}, cloud.SecurityGroup{}, err
	}
	workers, err := g.getOrCreate(ctx, existing, naming.WorkerGroup(clusterName))
	if err != nil {
		return cloud.SecurityGroup{}, cloud.SecurityGroup{}, err
	}

	rules := IngressRules(master.ID, workers.ID)
	for _, group := range []*cloud.SecurityGroup{&master, &workers} {
		if len(group.Rules) > 0 {
			continue
		}
		if err := g.groups.AuthorizeIngress(ctx, group.ID, rules); err != nil {
			return cloud.SecurityGroup{}, cloud.SecurityGroup{}, fmt.Errorf("failed to authorize group %s: %w", group.Name, err)
		}
		group.Rules = rules
		g.observer.Event(provisioning.Event{
			Type:     provisioning.EventResourceCreated,
			Phase:    phaseGroups,
			Resource: group.Name,
			Message:  "ingress rules authorized",
			Fields:   map[string]string{"id": group.ID, "rules": fmt.Sprint(len(rules))},
		})
	}

	return master, workers, nil
}

// IngressRules is the rule set every cluster group receives: all traffic
// from both cluster groups and TCP from anywhere.
func IngressRules(masterID, workersID string) []cloud.Rule {
	return []cloud.Rule{
		{Protocol: cloud.ProtocolAll, FromPort: -1, ToPort: -1, SourceGroupID: masterID},
		{Protocol: cloud.ProtocolAll, FromPort: -1, ToPort: -1, SourceGroupID: workersID},
		{Protocol: cloud.ProtocolTCP, FromPort: 0, ToPort: 65535, CIDR: "0.0.0.0/0"},
	}
}

func (g *GroupProvisioner) getOrCreate(ctx context.Context, existing []cloud.SecurityGroup, name string) (cloud.SecurityGroup, error) {
	for _, sg := range existing {
		if sg.Name == name {
			provisioning.LogResourceExists(g.observer, phaseGroups, "security group", name, sg.ID)
			return sg, nil
		}
	}

	provisioning.LogResourceCreating(g.observer, phaseGroups, "security group", name)
	sg, err := g.groups.CreateSecurityGroup(ctx, name, groupDescription)
	if err != nil {
		return cloud.SecurityGroup{}, fmt.Errorf("failed to create security group %s: %w", name, err)
	}
	provisioning.LogResourceCreated(g.observer, phaseGroups, "security group", name, sg.ID)
	return sg, nil
}
