package hcloud

import (
	"context"
	"slices"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hdpctl/internal/cloud"
)

// ResolveImage implements cloud.Catalog. imageID is an image ID or name.
func (p *Provider) ResolveImage(ctx context.Context, imageID string) (cloud.Image, error) {
	img, _, err := p.client.Image.GetForArchitecture(ctx, imageID, hcloud.ArchitectureX86)
	if err != nil {
		return cloud.Image{}, wrap("GetImage", err)
	}
	if img == nil {
		return cloud.Image{}, notFound("GetImage", "image "+imageID)
	}
	name := img.Name
	if name == "" {
		name = img.Description
	}
	return cloud.Image{ID: formatID(img.ID), Name: name}, nil
}

// ListZones implements cloud.Catalog. Zones are the locations of the
// provider's network zone.
func (p *Provider) ListZones(ctx context.Context) ([]string, error) {
	locations, err := p.client.Location.All(ctx)
	if err != nil {
		return nil, wrap("ListLocations", err)
	}
	var zones []string
	for _, l := range locations {
		if string(l.NetworkZone) == p.region {
			zones = append(zones, l.Name)
		}
	}
	slices.Sort(zones)
	return zones, nil
}
