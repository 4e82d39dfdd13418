package hcloud

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hdpctl/internal/cloud"
)

// Provider implements cloud.Provider using the Hetzner Cloud API. The
// region is a network zone such as eu-central; its locations are the
// zones workers are spread over.
type Provider struct {
	client *hcloud.Client
	region string
	newID  func() string
}

var _ cloud.Provider = (*Provider)(nil)

// ClientOption configures a Provider.
type ClientOption func(*Provider)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(p *Provider) {
		p.client = hc
	}
}

// WithIDGenerator replaces the reservation ID generator.
func WithIDGenerator(fn func() string) ClientOption {
	return func(p *Provider) {
		p.newID = fn
	}
}

// NewClient creates a Provider for the given network zone.
func NewClient(token, region string, opts ...ClientOption) *Provider {
	p := &Provider{
		client: hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("hdpctl", "")),
		region: region,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "hetzner" }

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(op, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, notFound(op, "resource "+id)
	}
	return n, nil
}
