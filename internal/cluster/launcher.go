package cluster

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/metrics"
	"github.com/imamik/hdpctl/internal/provisioning"
	"github.com/imamik/hdpctl/internal/util/labels"
)

// ZoneAll spreads workers over every zone of the region.
const ZoneAll = "all"

const phaseLaunch = "launch"

// LaunchSpec describes the cluster to create.
type LaunchSpec struct {
	Workers            int
	ImageID            string
	InstanceType       string
	MasterInstanceType string
	// Zone is a zone name, ZoneAll, or empty for one random zone.
	Zone          string
	KeyName       string
	SpotPrice     float64
	EBSVolumeSize int
	Resume        bool
}

// Launcher creates the instances of a cluster.
type Launcher struct {
	provider  cloud.Provider
	groups    *GroupProvisioner
	inventory *Inventory
	observer  provisioning.Observer
	log       logr.Logger
	recorder  *metrics.Recorder
	intn      func(n int) int
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithRandom replaces the zone picker. intn must return a value in [0, n).
func WithRandom(intn func(n int) int) LauncherOption {
	return func(l *Launcher) { l.intn = intn }
}

// WithLauncherRecorder counts launched instances.
func WithLauncherRecorder(r *metrics.Recorder) LauncherOption {
	return func(l *Launcher) { l.recorder = r }
}

// NewLauncher creates a Launcher.
func NewLauncher(provider cloud.Provider, log logr.Logger, opts ...LauncherOption) *Launcher {
	observer := provisioning.NewLogObserver(log)
	l := &Launcher{
		provider:  provider,
		groups:    NewGroupProvisioner(provider, observer),
		inventory: NewInventory(provider, log),
		observer:  observer,
		log:       log,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch creates a cluster, or with spec.Resume returns the existing one.
// It only ever creates resources.
func (l *Launcher) Launch(ctx context.Context, clusterName string, spec LaunchSpec) (*Cluster, error) {
	master, workers, err := l.groups.EnsureGroups(ctx, clusterName)
	if err != nil {
		return nil, err
	}

	if spec.Resume {
		return l.inventory.Find(ctx, clusterName, false)
	}

	existing, err := l.inventory.Find(ctx, clusterName, false)
	if err != nil {
		return nil, err
	}
	if !existing.Empty() {
		return nil, &ClusterAlreadyExistsError{Cluster: clusterName, Masters: len(existing.Masters), Workers: len(existing.Workers)}
	}

	image, err := l.provider.ResolveImage(ctx, spec.ImageID)
	if err != nil {
		if cloud.IsNotFound(err) {
			return nil, &ImageNotFoundError{ImageID: spec.ImageID, Err: err}
		}
		return nil, fmt.Errorf("failed to resolve image %s: %w", spec.ImageID, err)
	}

	zones, err := l.resolveZones(ctx, spec.Zone)
	if err != nil {
		return nil, err
	}
	plan, err := Partition(spec.Workers, zones)
	if err != nil {
		return nil, err
	}

	c := &Cluster{Name: clusterName}
	l.observer.Printf("Launching instances...")

	for _, share := range plan {
		if share.Count == 0 {
			continue
		}
		res, err := l.provider.RunInstances(ctx, cloud.RunRequest{
			ImageID:      image.ID,
			InstanceType: spec.InstanceType,
			Count:        share.Count,
			Zone:         share.Zone,
			KeyName:      spec.KeyName,
			GroupIDs:     []string{workers.ID},
			GroupNames:   []string{workers.Name},
			SpotPrice:    spec.SpotPrice,
			BlockDevices: BlockDevices(spec.InstanceType, spec.EBSVolumeSize, l.log),
			Tags:         labels.NewLabelBuilder(clusterName).WithRole(labels.RoleWorkers).Build(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch %d workers in %s: %w", share.Count, share.Zone, err)
		}
		c.Workers = append(c.Workers, nodesFrom(res.Instances, RoleWorker)...)
		l.recorder.AddNodesLaunched(string(RoleWorker), len(res.Instances))
		l.observer.Event(provisioning.Event{
			Type:     provisioning.EventResourceCreated,
			Phase:    phaseLaunch,
			Resource: res.ID,
			Message:  fmt.Sprintf("launched %d workers in %s", share.Count, share.Zone),
			Fields:   map[string]string{"zone": share.Zone},
		})
	}

	masterZone := l.masterZone(spec.Zone, zones)
	masterType := spec.MasterInstanceType
	if masterType == "" {
		masterType = spec.InstanceType
	}

	res, err := l.provider.RunInstances(ctx, cloud.RunRequest{
		ImageID:      image.ID,
		InstanceType: masterType,
		Count:        1,
		Zone:         masterZone,
		KeyName:      spec.KeyName,
		GroupIDs:     []string{master.ID},
		GroupNames:   []string{master.Name},
		BlockDevices: BlockDevices(masterType, spec.EBSVolumeSize, l.log),
		Tags:         labels.NewLabelBuilder(clusterName).WithRole(labels.RoleMaster).Build(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch master in %s: %w", masterZone, err)
	}
	c.Masters = nodesFrom(res.Instances, RoleMaster)
	l.recorder.AddNodesLaunched(string(RoleMaster), len(res.Instances))
	l.observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceCreated,
		Phase:    phaseLaunch,
		Resource: res.ID,
		Message:  fmt.Sprintf("launched master in %s", masterZone),
		Fields:   map[string]string{"zone": masterZone},
	})

	return c, nil
}

// resolveZones expands the zone option into the zones workers go to.
func (l *Launcher) resolveZones(ctx context.Context, zone string) ([]string, error) {
	switch zone {
	case ZoneAll:
		return l.listZones(ctx)
	case "":
		zones, err := l.listZones(ctx)
		if err != nil {
			return nil, err
		}
		return []string{zones[l.intn(len(zones))]}, nil
	default:
		return []string{zone}, nil
	}
}

// masterZone picks the master's zone. With ZoneAll it is drawn once,
// uniformly, independent of where the workers went.
func (l *Launcher) masterZone(zone string, resolved []string) string {
	if zone == ZoneAll {
		return resolved[l.intn(len(resolved))]
	}
	return resolved[0]
}

func (l *Launcher) listZones(ctx context.Context) ([]string, error) {
	zones, err := l.provider.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	if len(zones) == 0 {
		return nil, &ConfigurationError{Field: "region", Reason: "region has no available zones"}
	}
	return zones, nil
}
