package hcloud

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/util/labels"
)

// peerPrefix marks firewall rules standing in for a group-source rule.
const peerPrefix = "peer:"

var anywhere = []string{"0.0.0.0/0", "::/0"}

// ListSecurityGroups implements cloud.GroupManager.
func (p *Provider) ListSecurityGroups(ctx context.Context) ([]cloud.SecurityGroup, error) {
	firewalls, err := p.client.Firewall.AllWithOpts(ctx, hcloud.FirewallListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.SelectorManaged()},
	})
	if err != nil {
		return nil, wrap("ListFirewalls", err)
	}
	out := make([]cloud.SecurityGroup, 0, len(firewalls))
	for _, fw := range firewalls {
		out = append(out, toGroup(fw))
	}
	return out, nil
}

// CreateSecurityGroup implements cloud.GroupManager. Firewalls carry no
// description, so it is dropped.
func (p *Provider) CreateSecurityGroup(ctx context.Context, name, _ string) (cloud.SecurityGroup, error) {
	res, _, err := p.client.Firewall.Create(ctx, hcloud.FirewallCreateOpts{
		Name:   name,
		Labels: map[string]string{labels.KeyManagedBy: labels.ManagedByHdpctl},
	})
	if err != nil {
		return cloud.SecurityGroup{}, wrap("CreateFirewall", err)
	}
	return toGroup(res.Firewall), nil
}

// AuthorizeIngress implements cloud.GroupManager.
func (p *Provider) AuthorizeIngress(ctx context.Context, groupID string, rules []cloud.Rule) error {
	fw, err := p.firewall(ctx, "AuthorizeIngress", groupID)
	if err != nil {
		return err
	}
	add, err := toFirewallRules(rules)
	if err != nil {
		return cloud.NewError("AuthorizeIngress", cloud.KindOther, err)
	}

	existing := make(map[string]struct{}, len(fw.Rules))
	for _, r := range fw.Rules {
		existing[ruleKey(r)] = struct{}{}
	}
	for _, r := range add {
		if _, ok := existing[ruleKey(r)]; ok {
			return cloud.NewError("AuthorizeIngress", cloud.KindDuplicate,
				fmt.Errorf("rule %s already present on firewall %s", ruleKey(r), fw.Name))
		}
	}
	return p.setRules(ctx, fw, append(slices.Clone(fw.Rules), add...))
}

// RevokeIngress implements cloud.GroupManager.
func (p *Provider) RevokeIngress(ctx context.Context, groupID string, rules []cloud.Rule) error {
	fw, err := p.firewall(ctx, "RevokeIngress", groupID)
	if err != nil {
		return err
	}
	remove, err := toFirewallRules(rules)
	if err != nil {
		return cloud.NewError("RevokeIngress", cloud.KindOther, err)
	}

	drop := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		drop[ruleKey(r)] = struct{}{}
	}
	keep := slices.DeleteFunc(slices.Clone(fw.Rules), func(r hcloud.FirewallRule) bool {
		_, ok := drop[ruleKey(r)]
		return ok
	})
	return p.setRules(ctx, fw, keep)
}

// DeleteSecurityGroup implements cloud.GroupManager. Deleting a firewall
// still applied to a server fails with a dependency error.
func (p *Provider) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	id, err := parseID("DeleteFirewall", groupID)
	if err != nil {
		return err
	}
	_, err = p.client.Firewall.Delete(ctx, &hcloud.Firewall{ID: id})
	return wrap("DeleteFirewall", err)
}

func (p *Provider) firewall(ctx context.Context, op, groupID string) (*hcloud.Firewall, error) {
	id, err := parseID(op, groupID)
	if err != nil {
		return nil, err
	}
	fw, _, err := p.client.Firewall.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(op, err)
	}
	if fw == nil {
		return nil, notFound(op, "firewall "+groupID)
	}
	return fw, nil
}

func (p *Provider) setRules(ctx context.Context, fw *hcloud.Firewall, rules []hcloud.FirewallRule) error {
	_, _, err := p.client.Firewall.SetRules(ctx, fw, hcloud.FirewallSetRulesOpts{Rules: rules})
	return wrap("SetFirewallRules", err)
}

func toGroup(fw *hcloud.Firewall) cloud.SecurityGroup {
	return cloud.SecurityGroup{ID: formatID(fw.ID), Name: fw.Name, Rules: fromFirewallRules(fw.Rules)}
}

// toFirewallRules expands rules into inbound firewall rules. The "all"
// protocol becomes one rule each for TCP, UDP and ICMP.
func toFirewallRules(rules []cloud.Rule) ([]hcloud.FirewallRule, error) {
	var out []hcloud.FirewallRule
	for _, r := range rules {
		sources := []string{r.CIDR}
		var description *string
		if r.SourceGroupID != "" {
			sources = anywhere
			description = hcloud.Ptr(peerPrefix + r.SourceGroupID)
		}
		ips, err := parseNets(sources)
		if err != nil {
			return nil, err
		}

		protocols := []string{r.Protocol}
		from, to := r.FromPort, r.ToPort
		if r.Protocol == cloud.ProtocolAll {
			protocols = []string{cloud.ProtocolTCP, cloud.ProtocolUDP, cloud.ProtocolICMP}
			from, to = 1, 65535
		}
		for _, proto := range protocols {
			rule := hcloud.FirewallRule{
				Direction:   hcloud.FirewallRuleDirectionIn,
				Protocol:    hcloud.FirewallRuleProtocol(proto),
				SourceIPs:   ips,
				Description: description,
			}
			if proto == cloud.ProtocolTCP || proto == cloud.ProtocolUDP {
				rule.Port = hcloud.Ptr(formatPorts(from, to))
			}
			out = append(out, rule)
		}
	}
	return out, nil
}

// fromFirewallRules is the inverse of toFirewallRules. Expanded peer
// rules collapse back into a single group rule.
func fromFirewallRules(rules []hcloud.FirewallRule) []cloud.Rule {
	var out []cloud.Rule
	seenPeers := map[string]struct{}{}
	for _, r := range rules {
		if r.Direction != hcloud.FirewallRuleDirectionIn {
			continue
		}
		if r.Description != nil && strings.HasPrefix(*r.Description, peerPrefix) {
			peer := strings.TrimPrefix(*r.Description, peerPrefix)
			if _, ok := seenPeers[peer]; !ok {
				seenPeers[peer] = struct{}{}
				out = append(out, cloud.Rule{Protocol: cloud.ProtocolAll, FromPort: -1, ToPort: -1, SourceGroupID: peer})
			}
			continue
		}

		from, to := -1, -1
		if r.Port != nil {
			from, to = parsePorts(*r.Port)
		}
		for _, ip := range r.SourceIPs {
			out = append(out, cloud.Rule{Protocol: string(r.Protocol), FromPort: from, ToPort: to, CIDR: ip.String()})
		}
	}
	return out
}

func ruleKey(r hcloud.FirewallRule) string {
	ips := make([]string, len(r.SourceIPs))
	for i, ip := range r.SourceIPs {
		ips[i] = ip.String()
	}
	var port, desc string
	if r.Port != nil {
		port = *r.Port
	}
	if r.Description != nil {
		desc = *r.Description
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", r.Direction, r.Protocol, port, strings.Join(ips, ","), desc)
}

func parseNets(cidrs []string) ([]net.IPNet, error) {
	out := make([]net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("invalid source %q: %w", c, err)
		}
		out = append(out, *n)
	}
	return out, nil
}

// formatPorts renders a port range. Hetzner ports start at 1.
func formatPorts(from, to int) string {
	from = max(from, 1)
	if from == to {
		return strconv.Itoa(from)
	}
	return fmt.Sprintf("%d-%d", from, to)
}

func parsePorts(port string) (int, int) {
	lo, hi, found := strings.Cut(port, "-")
	from, err := strconv.Atoi(lo)
	if err != nil {
		return -1, -1
	}
	if !found {
		return from, from
	}
	to, err := strconv.Atoi(hi)
	if err != nil {
		return from, from
	}
	return from, to
}
