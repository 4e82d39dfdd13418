package cloud

import (
	"context"
	"time"

	"github.com/imamik/hdpctl/internal/metrics"
)

// Instrumented wraps a Provider and records every call on a metrics.Recorder.
type Instrumented struct {
	next     Provider
	recorder *metrics.Recorder
}

// Instrument wraps p. A nil recorder returns p unchanged.
func Instrument(p Provider, recorder *metrics.Recorder) Provider {
	if recorder == nil {
		return p
	}
	return &Instrumented{next: p, recorder: recorder}
}

// Name implements Provider.
func (i *Instrumented) Name() string { return i.next.Name() }

// ListSecurityGroups implements GroupManager.
func (i *Instrumented) ListSecurityGroups(ctx context.Context) (groups []SecurityGroup, err error) {
	defer i.observe("ListSecurityGroups", time.Now(), &err)
	return i.next.ListSecurityGroups(ctx)
}

// CreateSecurityGroup implements GroupManager.
func (i *Instrumented) CreateSecurityGroup(ctx context.Context, name, description string) (group SecurityGroup, err error) {
	defer i.observe("CreateSecurityGroup", time.Now(), &err)
	return i.next.CreateSecurityGroup(ctx, name, description)
}

// AuthorizeIngress implements GroupManager.
func (i *Instrumented) AuthorizeIngress(ctx context.Context, groupID string, rules []Rule) (err error) {
	defer i.observe("AuthorizeIngress", time.Now(), &err)
	return i.next.AuthorizeIngress(ctx, groupID, rules)
}

// RevokeIngress implements GroupManager.
func (i *Instrumented) RevokeIngress(ctx context.Context, groupID string, rules []Rule) (err error) {
	defer i.observe("RevokeIngress", time.Now(), &err)
	return i.next.RevokeIngress(ctx, groupID, rules)
}

// DeleteSecurityGroup implements GroupManager.
func (i *Instrumented) DeleteSecurityGroup(ctx context.Context, groupID string) (err error) {
	defer i.observe("DeleteSecurityGroup", time.Now(), &err)
	return i.next.DeleteSecurityGroup(ctx, groupID)
}

// ListReservations implements InstanceManager.
func (i *Instrumented) ListReservations(ctx context.Context) (res []Reservation, err error) {
	defer i.observe("ListReservations", time.Now(), &err)
	return i.next.ListReservations(ctx)
}

// DescribeInstances implements InstanceManager.
func (i *Instrumented) DescribeInstances(ctx context.Context, ids []string) (instances []Instance, err error) {
	defer i.observe("DescribeInstances", time.Now(), &err)
	return i.next.DescribeInstances(ctx, ids)
}

// RunInstances implements InstanceManager.
func (i *Instrumented) RunInstances(ctx context.Context, req RunRequest) (res Reservation, err error) {
	defer i.observe("RunInstances", time.Now(), &err)
	return i.next.RunInstances(ctx, req)
}

// TerminateInstances implements InstanceManager.
func (i *Instrumented) TerminateInstances(ctx context.Context, ids []string) (err error) {
	defer i.observe("TerminateInstances", time.Now(), &err)
	return i.next.TerminateInstances(ctx, ids)
}

// StopInstances implements InstanceManager.
func (i *Instrumented) StopInstances(ctx context.Context, ids []string) (err error) {
	defer i.observe("StopInstances", time.Now(), &err)
	return i.next.StopInstances(ctx, ids)
}

// StartInstances implements InstanceManager.
func (i *Instrumented) StartInstances(ctx context.Context, ids []string) (err error) {
	defer i.observe("StartInstances", time.Now(), &err)
	return i.next.StartInstances(ctx, ids)
}

// ResolveImage implements Catalog.
func (i *Instrumented) ResolveImage(ctx context.Context, imageID string) (img Image, err error) {
	defer i.observe("ResolveImage", time.Now(), &err)
	return i.next.ResolveImage(ctx, imageID)
}

// ListZones implements Catalog.
func (i *Instrumented) ListZones(ctx context.Context) (zones []string, err error) {
	defer i.observe("ListZones", time.Now(), &err)
	return i.next.ListZones(ctx)
}

func (i *Instrumented) observe(op string, start time.Time, err *error) {
	i.recorder.ObserveAPICall(op, start, *err)
}
