// Package fake provides an in-memory cloud.Provider for tests.
//
// New instances start pending and turn running after a configurable
// number of DescribeInstances polls. Terminated instances pass through
// shutting-down on the next poll. Every call is counted so tests can
// assert which operations ran and how often.
package fake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/imamik/hdpctl/internal/cloud"
)

type instance struct {
	cloud.Instance
	pendingLeft int
	seq         int
}

type reservation struct {
	id        string
	groups    []string
	instances []*instance
}

// Provider is an in-memory cloud.Provider. The zero value is not usable;
// call New.
type Provider struct {
	mu sync.Mutex

	zones  []string
	images map[string]cloud.Image

	groups       []*cloud.SecurityGroup
	reservations []*reservation
	nextID       int

	calls      map[string]int
	authorized map[string]int
	requests   []cloud.RunRequest

	// PendingPolls is the number of DescribeInstances calls a fresh or
	// restarted instance stays pending for.
	PendingPolls int
	// NotFoundPolls is the number of initial DescribeInstances calls that
	// fail with a not-found error, like a provider with eventual consistency.
	NotFoundPolls int
	// Errors injects a failure for the named operation, e.g. "RunInstances".
	Errors map[string]error
}

// New creates a provider serving the given zones.
func New(zones ...string) *Provider {
	if len(zones) == 0 {
		zones = []string{"us-east-1a"}
	}
	return &Provider{
		zones:      zones,
		images:     map[string]cloud.Image{},
		calls:      map[string]int{},
		authorized: map[string]int{},
		Errors:     map[string]error{},
	}
}

var _ cloud.Provider = (*Provider)(nil)

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "fake" }

// AddImage registers a resolvable image.
func (p *Provider) AddImage(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.images[id] = cloud.Image{ID: id, Name: name}
}

// AddGroup seeds an existing isolation group and returns its ID.
func (p *Provider) AddGroup(name string, rules ...cloud.Rule) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := &cloud.SecurityGroup{ID: p.newID("sg"), Name: name, Rules: slices.Clone(rules)}
	p.groups = append(p.groups, g)
	return g.ID
}

// AddReservation seeds an existing reservation in the given groups with one
// running-or-given-state instance per state. Returns the instance IDs.
func (p *Provider) AddReservation(groups []string, states ...cloud.InstanceState) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := &reservation{id: p.newID("r"), groups: slices.Clone(groups)}
	ids := make([]string, 0, len(states))
	for _, st := range states {
		inst := p.newInstance(cloud.RunRequest{GroupNames: groups, InstanceType: "m1.large"}, p.zones[0])
		inst.State = st
		inst.pendingLeft = 0
		if st != cloud.StatePending {
			p.assignAddresses(inst)
		}
		r.instances = append(r.instances, inst)
		ids = append(ids, inst.ID)
	}
	p.reservations = append(p.reservations, r)
	return ids
}

// Calls returns how often op was invoked.
func (p *Provider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// Authorizations returns how often AuthorizeIngress ran for groupID.
func (p *Provider) Authorizations(groupID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authorized[groupID]
}

// Requests returns every RunRequest received, in order.
func (p *Provider) Requests() []cloud.RunRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.requests)
}

// Group returns the group with the given name.
func (p *Provider) Group(name string) (cloud.SecurityGroup, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, g := range p.groups {
		if g.Name == name {
			return cloneGroup(g), true
		}
	}
	return cloud.SecurityGroup{}, false
}

// Instance returns the current state of one instance.
func (p *Provider) Instance(id string) (cloud.Instance, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst := p.find(id); inst != nil {
		return inst.snapshot(), true
	}
	return cloud.Instance{}, false
}

// SetState forces the state of an instance.
func (p *Provider) SetState(id string, state cloud.InstanceState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst := p.find(id); inst != nil {
		inst.State = state
	}
}

// ListSecurityGroups implements cloud.GroupManager.
func (p *Provider) ListSecurityGroups(_ context.Context) ([]cloud.SecurityGroup, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("ListSecurityGroups"); err != nil {
		return nil, err
	}
	out := make([]cloud.SecurityGroup, 0, len(p.groups))
	for _, g := range p.groups {
		out = append(out, cloneGroup(g))
	}
	return out, nil
}

// CreateSecurityGroup implements cloud.GroupManager.
func (p *Provider) CreateSecurityGroup(_ context.Context, name, description string) (cloud.SecurityGroup, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("CreateSecurityGroup"); err != nil {
		return cloud.SecurityGroup{}, err
	}
	for _, g := range p.groups {
		if g.Name == name {
			return cloud.SecurityGroup{}, cloud.NewError("CreateSecurityGroup", cloud.KindDuplicate,
				fmt.Errorf("group %q already exists", name))
		}
	}
	g := &cloud.SecurityGroup{ID: p.newID("sg"), Name: name, Description: description}
	p.groups = append(p.groups, g)
	return cloneGroup(g), nil
}

// AuthorizeIngress implements cloud.GroupManager.
func (p *Provider) AuthorizeIngress(_ context.Context, groupID string, rules []cloud.Rule) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("AuthorizeIngress"); err != nil {
		return err
	}
	g := p.group(groupID)
	if g == nil {
		return notFound("AuthorizeIngress", groupID)
	}
	for _, r := range rules {
		if slices.Contains(g.Rules, r) {
			return cloud.NewError("AuthorizeIngress", cloud.KindDuplicate, fmt.Errorf("rule already present on %s", groupID))
		}
	}
	g.Rules = append(g.Rules, rules...)
	p.authorized[groupID]++
	return nil
}

// RevokeIngress implements cloud.GroupManager.
func (p *Provider) RevokeIngress(_ context.Context, groupID string, rules []cloud.Rule) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("RevokeIngress"); err != nil {
		return err
	}
	g := p.group(groupID)
	if g == nil {
		return notFound("RevokeIngress", groupID)
	}
	g.Rules = slices.DeleteFunc(g.Rules, func(r cloud.Rule) bool { return slices.Contains(rules, r) })
	return nil
}

// DeleteSecurityGroup implements cloud.GroupManager. Deletion fails while
// an active instance is in the group or another group references it.
func (p *Provider) DeleteSecurityGroup(_ context.Context, groupID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("DeleteSecurityGroup"); err != nil {
		return err
	}
	g := p.group(groupID)
	if g == nil {
		return notFound("DeleteSecurityGroup", groupID)
	}
	for _, r := range p.reservations {
		for _, inst := range r.instances {
			if inst.State != cloud.StateTerminated && slices.Contains(inst.Groups, g.Name) {
				return cloud.NewError("DeleteSecurityGroup", cloud.KindDependency,
					fmt.Errorf("group %s in use by %s", groupID, inst.ID))
			}
		}
	}
	for _, other := range p.groups {
		if other.ID == groupID {
			continue
		}
		for _, rule := range other.Rules {
			if rule.SourceGroupID == groupID {
				return cloud.NewError("DeleteSecurityGroup", cloud.KindDependency,
					fmt.Errorf("group %s referenced by %s", groupID, other.ID))
			}
		}
	}
	p.groups = slices.DeleteFunc(p.groups, func(x *cloud.SecurityGroup) bool { return x.ID == groupID })
	return nil
}

// ListReservations implements cloud.InstanceManager.
func (p *Provider) ListReservations(_ context.Context) ([]cloud.Reservation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("ListReservations"); err != nil {
		return nil, err
	}
	out := make([]cloud.Reservation, 0, len(p.reservations))
	for _, r := range p.reservations {
		res := cloud.Reservation{ID: r.id, Groups: slices.Clone(r.groups)}
		for _, inst := range r.instances {
			res.Instances = append(res.Instances, inst.snapshot())
		}
		out = append(out, res)
	}
	return out, nil
}

// DescribeInstances implements cloud.InstanceManager. Each call advances
// pending and shutting-down instances by one poll.
func (p *Provider) DescribeInstances(_ context.Context, ids []string) ([]cloud.Instance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("DescribeInstances"); err != nil {
		return nil, err
	}
	if p.NotFoundPolls > 0 {
		p.NotFoundPolls--
		return nil, notFound("DescribeInstances", ids...)
	}

	out := make([]cloud.Instance, 0, len(ids))
	for _, id := range ids {
		inst := p.find(id)
		if inst == nil {
			return nil, notFound("DescribeInstances", id)
		}
		switch inst.State {
		case cloud.StatePending:
			if inst.pendingLeft > 0 {
				inst.pendingLeft--
			}
			if inst.pendingLeft == 0 {
				inst.State = cloud.StateRunning
				p.assignAddresses(inst)
			}
		case cloud.StateShuttingDown:
			inst.State = cloud.StateTerminated
		case cloud.StateStopping:
			inst.State = cloud.StateStopped
		}
		out = append(out, inst.snapshot())
	}
	return out, nil
}

// RunInstances implements cloud.InstanceManager.
func (p *Provider) RunInstances(_ context.Context, req cloud.RunRequest) (cloud.Reservation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("RunInstances"); err != nil {
		return cloud.Reservation{}, err
	}
	if req.Count <= 0 {
		return cloud.Reservation{}, cloud.NewError("RunInstances", cloud.KindOther, errors.New("count must be positive"))
	}
	zone := req.Zone
	if zone == "" {
		zone = p.zones[0]
	}
	if !slices.Contains(p.zones, zone) {
		return cloud.Reservation{}, cloud.NewError("RunInstances", cloud.KindOther, fmt.Errorf("unknown zone %q", zone))
	}

	p.requests = append(p.requests, cloneRequest(req))
	r := &reservation{id: p.newID("r"), groups: slices.Clone(req.GroupNames)}
	for range req.Count {
		r.instances = append(r.instances, p.newInstance(req, zone))
	}
	p.reservations = append(p.reservations, r)

	res := cloud.Reservation{ID: r.id, Groups: slices.Clone(r.groups)}
	for _, inst := range r.instances {
		res.Instances = append(res.Instances, inst.snapshot())
	}
	return res, nil
}

// TerminateInstances implements cloud.InstanceManager.
func (p *Provider) TerminateInstances(_ context.Context, ids []string) error {
	return p.transition("TerminateInstances", ids, func(inst *instance) {
		if inst.State != cloud.StateTerminated {
			inst.State = cloud.StateShuttingDown
		}
	})
}

// StopInstances implements cloud.InstanceManager.
func (p *Provider) StopInstances(_ context.Context, ids []string) error {
	return p.transition("StopInstances", ids, func(inst *instance) {
		if inst.State == cloud.StateRunning || inst.State == cloud.StatePending {
			inst.State = cloud.StateStopping
		}
	})
}

// StartInstances implements cloud.InstanceManager.
func (p *Provider) StartInstances(_ context.Context, ids []string) error {
	return p.transition("StartInstances", ids, func(inst *instance) {
		if inst.State == cloud.StateStopped || inst.State == cloud.StateStopping {
			inst.State = cloud.StatePending
			inst.pendingLeft = p.PendingPolls
			if inst.pendingLeft == 0 {
				inst.State = cloud.StateRunning
			}
		}
	})
}

// ResolveImage implements cloud.Catalog.
func (p *Provider) ResolveImage(_ context.Context, imageID string) (cloud.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("ResolveImage"); err != nil {
		return cloud.Image{}, err
	}
	img, ok := p.images[imageID]
	if !ok {
		return cloud.Image{}, notFound("ResolveImage", imageID)
	}
	return img, nil
}

// ListZones implements cloud.Catalog.
func (p *Provider) ListZones(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("ListZones"); err != nil {
		return nil, err
	}
	return slices.Clone(p.zones), nil
}

func (p *Provider) transition(op string, ids []string, fn func(*instance)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(op); err != nil {
		return err
	}
	for _, id := range ids {
		inst := p.find(id)
		if inst == nil {
			return notFound(op, id)
		}
		fn(inst)
	}
	return nil
}

// call counts op and returns any injected error. Callers hold p.mu.
func (p *Provider) call(op string) error {
	p.calls[op]++
	if err, ok := p.Errors[op]; ok && err != nil {
		return cloud.NewError(op, cloud.KindOther, err)
	}
	return nil
}

func (p *Provider) newID(prefix string) string {
	p.nextID++
	return fmt.Sprintf("%s-%04d", prefix, p.nextID)
}

func (p *Provider) newInstance(req cloud.RunRequest, zone string) *instance {
	id := p.newID("i")
	inst := &instance{
		Instance: cloud.Instance{
			ID:           id,
			State:        cloud.StatePending,
			Zone:         zone,
			InstanceType: req.InstanceType,
			ImageID:      req.ImageID,
			Groups:       slices.Clone(req.GroupNames),
		},
		pendingLeft: p.PendingPolls,
		seq:         p.nextID,
	}
	if inst.pendingLeft == 0 {
		inst.State = cloud.StateRunning
		p.assignAddresses(inst)
	}
	return inst
}

func (p *Provider) assignAddresses(inst *instance) {
	if inst.PublicIP != "" {
		return
	}
	n := inst.seq % 250
	inst.PublicIP = fmt.Sprintf("203.0.113.%d", n+1)
	inst.PrivateIP = fmt.Sprintf("10.0.0.%d", n+1)
	inst.PublicDNS = fmt.Sprintf("ec2-203-0-113-%d.compute-1.amazonaws.com", n+1)
}

func (p *Provider) find(id string) *instance {
	for _, r := range p.reservations {
		for _, inst := range r.instances {
			if inst.ID == id {
				return inst
			}
		}
	}
	return nil
}

func (p *Provider) group(id string) *cloud.SecurityGroup {
	for _, g := range p.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (i *instance) snapshot() cloud.Instance {
	out := i.Instance
	out.Groups = slices.Clone(i.Groups)
	return out
}

func cloneGroup(g *cloud.SecurityGroup) cloud.SecurityGroup {
	out := *g
	out.Rules = slices.Clone(g.Rules)
	return out
}

func cloneRequest(req cloud.RunRequest) cloud.RunRequest {
	out := req
	out.GroupIDs = slices.Clone(req.GroupIDs)
	out.GroupNames = slices.Clone(req.GroupNames)
	out.BlockDevices = slices.Clone(req.BlockDevices)
	return out
}

func notFound(op string, ids ...string) error {
	return cloud.NewError(op, cloud.KindNotFound, fmt.Errorf("%v not found", ids))
}
