package hcloud

import (
	"context"
	"fmt"
	"slices"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/util/async"
	"github.com/imamik/hdpctl/internal/util/labels"
	"github.com/imamik/hdpctl/internal/util/naming"
)

// concurrency bounds parallel per-server API calls.
const concurrency = 5

var serverStates = map[hcloud.ServerStatus]cloud.InstanceState{
	hcloud.ServerStatusInitializing: cloud.StatePending,
	hcloud.ServerStatusStarting:     cloud.StatePending,
	hcloud.ServerStatusRunning:      cloud.StateRunning,
	hcloud.ServerStatusStopping:     cloud.StateStopping,
	hcloud.ServerStatusOff:          cloud.StateStopped,
	hcloud.ServerStatusDeleting:     cloud.StateShuttingDown,
	hcloud.ServerStatusMigrating:    cloud.StatePending,
	hcloud.ServerStatusRebuilding:   cloud.StatePending,
}

// ListReservations implements cloud.InstanceManager. Servers are grouped
// by their reservation label; servers without one are skipped.
func (p *Provider) ListReservations(ctx context.Context) ([]cloud.Reservation, error) {
	servers, err := p.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.SelectorManaged()},
	})
	if err != nil {
		return nil, wrap("ListServers", err)
	}

	var order []string
	byID := map[string]*cloud.Reservation{}
	for _, s := range servers {
		id := s.Labels[labels.KeyReservation]
		if id == "" {
			continue
		}
		res, ok := byID[id]
		if !ok {
			res = &cloud.Reservation{ID: id, Groups: labels.Groups(s.Labels)}
			byID[id] = res
			order = append(order, id)
		}
		res.Instances = append(res.Instances, toInstance(s))
	}

	out := make([]cloud.Reservation, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// DescribeInstances implements cloud.InstanceManager. Servers are visible
// as soon as they are created, so a missing server has been deleted and
// is reported as terminated.
func (p *Provider) DescribeInstances(ctx context.Context, ids []string) ([]cloud.Instance, error) {
	out := make([]cloud.Instance, 0, len(ids))
	for _, id := range ids {
		n, err := parseID("DescribeServers", id)
		if err != nil {
			return nil, err
		}
		s, _, err := p.client.Server.GetByID(ctx, n)
		if err != nil {
			return nil, wrap("DescribeServers", err)
		}
		if s == nil {
			out = append(out, cloud.Instance{ID: id, State: cloud.StateTerminated})
			continue
		}
		out = append(out, toInstance(s))
	}
	return out, nil
}

// RunInstances implements cloud.InstanceManager. Servers are created one
// at a time; a failure leaves the already created servers in place, where
// they are found again through their labels.
func (p *Provider) RunInstances(ctx context.Context, req cloud.RunRequest) (cloud.Reservation, error) {
	if req.SpotPrice > 0 {
		return cloud.Reservation{}, unsupported("RunInstances", "spot instances")
	}
	if slices.ContainsFunc(req.BlockDevices, func(bd cloud.BlockDevice) bool { return bd.VirtualName == "" }) {
		return cloud.Reservation{}, unsupported("RunInstances", "network volumes")
	}

	opts, err := p.createOpts(ctx, req)
	if err != nil {
		return cloud.Reservation{}, err
	}

	resID := p.newID()
	cluster := req.Tags[labels.KeyCluster]
	role := req.Tags[labels.KeyRole]
	opts.Labels = labels.NewLabelBuilder(cluster).
		Merge(req.Tags).
		WithReservation(resID).
		WithGroups(req.GroupNames...).
		Build()

	res := cloud.Reservation{ID: resID, Groups: labels.Groups(opts.Labels)}
	for i := range req.Count {
		opts.Name = fmt.Sprintf("%s-%s", naming.Server(cluster, role, i+1), shortID(resID))
		created, _, err := p.client.Server.Create(ctx, opts)
		if err != nil {
			return res, wrap("CreateServer", err)
		}
		res.Instances = append(res.Instances, toInstance(created.Server))
	}
	return res, nil
}

func (p *Provider) createOpts(ctx context.Context, req cloud.RunRequest) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := p.client.ServerType.Get(ctx, req.InstanceType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, wrap("GetServerType", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, notFound("GetServerType", "server type "+req.InstanceType)
	}

	image, _, err := p.client.Image.GetForArchitecture(ctx, req.ImageID, hcloud.ArchitectureX86)
	if err != nil {
		return hcloud.ServerCreateOpts{}, wrap("GetImage", err)
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, notFound("GetImage", "image "+req.ImageID)
	}

	opts := hcloud.ServerCreateOpts{
		ServerType:       serverType,
		Image:            image,
		StartAfterCreate: hcloud.Ptr(true),
	}

	if req.Zone != "" {
		location, _, err := p.client.Location.Get(ctx, req.Zone)
		if err != nil {
			return hcloud.ServerCreateOpts{}, wrap("GetLocation", err)
		}
		if location == nil {
			return hcloud.ServerCreateOpts{}, notFound("GetLocation", "location "+req.Zone)
		}
		opts.Location = location
	}

	if req.KeyName != "" {
		key, _, err := p.client.SSHKey.Get(ctx, req.KeyName)
		if err != nil {
			return hcloud.ServerCreateOpts{}, wrap("GetSSHKey", err)
		}
		if key == nil {
			return hcloud.ServerCreateOpts{}, notFound("GetSSHKey", "ssh key "+req.KeyName)
		}
		opts.SSHKeys = []*hcloud.SSHKey{key}
	}

	for _, gid := range req.GroupIDs {
		id, err := parseID("CreateServer", gid)
		if err != nil {
			return hcloud.ServerCreateOpts{}, err
		}
		opts.Firewalls = append(opts.Firewalls, &hcloud.ServerCreateFirewall{Firewall: hcloud.Firewall{ID: id}})
	}
	return opts, nil
}

// TerminateInstances implements cloud.InstanceManager. Servers already
// gone are ignored.
func (p *Provider) TerminateInstances(ctx context.Context, ids []string) error {
	return p.eachServer(ctx, "DeleteServer", ids, func(ctx context.Context, s *hcloud.Server) error {
		_, _, err := p.client.Server.DeleteWithResult(ctx, s)
		if isHCloudErrorCode(err, hcloud.ErrorCodeNotFound) {
			return nil
		}
		return err
	})
}

// StopInstances implements cloud.InstanceManager with an ACPI shutdown.
func (p *Provider) StopInstances(ctx context.Context, ids []string) error {
	return p.eachServer(ctx, "ShutdownServer", ids, func(ctx context.Context, s *hcloud.Server) error {
		_, _, err := p.client.Server.Shutdown(ctx, s)
		return err
	})
}

// StartInstances implements cloud.InstanceManager.
func (p *Provider) StartInstances(ctx context.Context, ids []string) error {
	return p.eachServer(ctx, "PoweronServer", ids, func(ctx context.Context, s *hcloud.Server) error {
		_, _, err := p.client.Server.Poweron(ctx, s)
		return err
	})
}

func (p *Provider) eachServer(ctx context.Context, op string, ids []string, fn func(context.Context, *hcloud.Server) error) error {
	tasks := make([]async.Task, 0, len(ids))
	for _, id := range ids {
		n, err := parseID(op, id)
		if err != nil {
			return err
		}
		tasks = append(tasks, async.Task{
			Name: "server " + id,
			Func: func(ctx context.Context) error {
				return fn(ctx, &hcloud.Server{ID: n})
			},
		})
	}
	return wrap(op, async.RunParallel(ctx, tasks, concurrency))
}

func toInstance(s *hcloud.Server) cloud.Instance {
	inst := cloud.Instance{
		ID:     formatID(s.ID),
		State:  cloud.StatePending,
		Groups: labels.Groups(s.Labels),
	}
	if state, ok := serverStates[s.Status]; ok {
		inst.State = state
	}
	if ip := s.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		inst.PublicIP = ip.String()
		inst.PublicDNS = inst.PublicIP
	}
	if s.PublicNet.IPv4.DNSPtr != "" {
		inst.PublicDNS = s.PublicNet.IPv4.DNSPtr
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		inst.PrivateIP = s.PrivateNet[0].IP.String()
	}
	if s.ServerType != nil {
		inst.InstanceType = s.ServerType.Name
	}
	if s.Image != nil {
		inst.ImageID = formatID(s.Image.ID)
	}
	if s.Datacenter != nil && s.Datacenter.Location != nil {
		inst.Zone = s.Datacenter.Location.Name
	}
	return inst
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
