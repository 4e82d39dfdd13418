package ec2

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/hdpctl/internal/cloud"
)

// Provider implements cloud.Provider on EC2.
type Provider struct {
	api    API
	region string
}

var _ cloud.Provider = (*Provider)(nil)

// New creates a Provider on top of an EC2 API client.
func New(api API, region string) *Provider {
	return &Provider{api: api, region: region}
}

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "aws" }

// ListSecurityGroups implements cloud.GroupManager.
func (p *Provider) ListSecurityGroups(ctx context.Context) ([]cloud.SecurityGroup, error) {
	var out []cloud.SecurityGroup
	pages := ec2.NewDescribeSecurityGroupsPaginator(p.api, &ec2.DescribeSecurityGroupsInput{})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, wrap("DescribeSecurityGroups", err)
		}
		for _, sg := range page.SecurityGroups {
			out = append(out, cloud.SecurityGroup{
				ID:          aws.ToString(sg.GroupId),
				Name:        aws.ToString(sg.GroupName),
				Description: aws.ToString(sg.Description),
				Rules:       fromPermissions(sg.IpPermissions),
			})
		}
	}
	return out, nil
}

// CreateSecurityGroup implements cloud.GroupManager.
func (p *Provider) CreateSecurityGroup(ctx context.Context, name, description string) (cloud.SecurityGroup, error) {
	out, err := p.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err != nil {
		return cloud.SecurityGroup{}, wrap("CreateSecurityGroup", err)
	}
	return cloud.SecurityGroup{ID: aws.ToString(out.GroupId), Name: name, Description: description}, nil
}

// AuthorizeIngress implements cloud.GroupManager.
func (p *Provider) AuthorizeIngress(ctx context.Context, groupID string, rules []cloud.Rule) error {
	_, err := p.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: toPermissions(rules),
	})
	return wrap("AuthorizeSecurityGroupIngress", err)
}

// RevokeIngress implements cloud.GroupManager.
func (p *Provider) RevokeIngress(ctx context.Context, groupID string, rules []cloud.Rule) error {
	_, err := p.api.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: toPermissions(rules),
	})
	return wrap("RevokeSecurityGroupIngress", err)
}

// DeleteSecurityGroup implements cloud.GroupManager.
func (p *Provider) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	_, err := p.api.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(groupID)})
	return wrap("DeleteSecurityGroup", err)
}

// ListReservations implements cloud.InstanceManager.
func (p *Provider) ListReservations(ctx context.Context) ([]cloud.Reservation, error) {
	var out []cloud.Reservation
	err := p.describe(ctx, &ec2.DescribeInstancesInput{}, func(r types.Reservation) {
		out = append(out, toReservation(aws.ToString(r.ReservationId), r.Groups, r.Instances))
	})
	return out, err
}

// DescribeInstances implements cloud.InstanceManager.
func (p *Provider) DescribeInstances(ctx context.Context, ids []string) ([]cloud.Instance, error) {
	var out []cloud.Instance
	err := p.describe(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids}, func(r types.Reservation) {
		for _, inst := range r.Instances {
			out = append(out, toInstance(inst))
		}
	})
	return out, err
}

func (p *Provider) describe(ctx context.Context, in *ec2.DescribeInstancesInput, fn func(types.Reservation)) error {
	pages := ec2.NewDescribeInstancesPaginator(p.api, in)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return wrap("DescribeInstances", err)
		}
		for _, r := range page.Reservations {
			fn(r)
		}
	}
	return nil
}

// RunInstances implements cloud.InstanceManager. A positive SpotPrice
// launches one-time spot instances with that maximum price.
func (p *Provider) RunInstances(ctx context.Context, req cloud.RunRequest) (cloud.Reservation, error) {
	out, err := p.api.RunInstances(ctx, runInput(req))
	if err != nil {
		return cloud.Reservation{}, wrap("RunInstances", err)
	}
	return toReservation(aws.ToString(out.ReservationId), out.Groups, out.Instances), nil
}

// TerminateInstances implements cloud.InstanceManager.
func (p *Provider) TerminateInstances(ctx context.Context, ids []string) error {
	_, err := p.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: ids})
	return wrap("TerminateInstances", err)
}

// StopInstances implements cloud.InstanceManager.
func (p *Provider) StopInstances(ctx context.Context, ids []string) error {
	_, err := p.api.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: ids})
	return wrap("StopInstances", err)
}

// StartInstances implements cloud.InstanceManager.
func (p *Provider) StartInstances(ctx context.Context, ids []string) error {
	_, err := p.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: ids})
	return wrap("StartInstances", err)
}

// ResolveImage implements cloud.Catalog.
func (p *Provider) ResolveImage(ctx context.Context, imageID string) (cloud.Image, error) {
	out, err := p.api.DescribeImages(ctx, &ec2.DescribeImagesInput{ImageIds: []string{imageID}})
	if err != nil {
		return cloud.Image{}, wrap("DescribeImages", err)
	}
	if len(out.Images) == 0 {
		return cloud.Image{}, cloud.NewError("DescribeImages", cloud.KindNotFound, fmt.Errorf("image %s not found in %s", imageID, p.region))
	}
	img := out.Images[0]
	return cloud.Image{ID: aws.ToString(img.ImageId), Name: aws.ToString(img.Name)}, nil
}

// ListZones implements cloud.Catalog. Only available zones are returned.
func (p *Provider) ListZones(ctx context.Context) ([]string, error) {
	out, err := p.api.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []types.Filter{{Name: aws.String("state"), Values: []string{"available"}}},
	})
	if err != nil {
		return nil, wrap("DescribeAvailabilityZones", err)
	}
	zones := make([]string, 0, len(out.AvailabilityZones))
	for _, z := range out.AvailabilityZones {
		if z.State != "" && z.State != types.AvailabilityZoneStateAvailable {
			continue
		}
		zones = append(zones, aws.ToString(z.ZoneName))
	}
	slices.Sort(zones)
	return zones, nil
}

func runInput(req cloud.RunRequest) *ec2.RunInstancesInput {
	in := &ec2.RunInstancesInput{
		ImageId:          aws.String(req.ImageID),
		InstanceType:     types.InstanceType(req.InstanceType),
		MinCount:         aws.Int32(int32(req.Count)), //nolint:gosec // counts are small
		MaxCount:         aws.Int32(int32(req.Count)), //nolint:gosec // counts are small
		SecurityGroupIds: req.GroupIDs,
	}
	if req.KeyName != "" {
		in.KeyName = aws.String(req.KeyName)
	}
	if req.Zone != "" {
		in.Placement = &types.Placement{AvailabilityZone: aws.String(req.Zone)}
	}

	for _, bd := range req.BlockDevices {
		m := types.BlockDeviceMapping{DeviceName: aws.String(bd.DeviceName)}
		if bd.VirtualName != "" {
			m.VirtualName = aws.String(bd.VirtualName)
		} else {
			m.Ebs = &types.EbsBlockDevice{
				VolumeSize:          aws.Int32(int32(bd.VolumeSizeGB)), //nolint:gosec // sizes are validated
				DeleteOnTermination: aws.Bool(bd.DeleteOnTermination),
			}
		}
		in.BlockDeviceMappings = append(in.BlockDeviceMappings, m)
	}

	if req.SpotPrice > 0 {
		in.InstanceMarketOptions = &types.InstanceMarketOptionsRequest{
			MarketType: types.MarketTypeSpot,
			SpotOptions: &types.SpotMarketOptions{
				MaxPrice: aws.String(strconv.FormatFloat(req.SpotPrice, 'f', -1, 64)),
			},
		}
	}

	if len(req.Tags) > 0 {
		keys := make([]string, 0, len(req.Tags))
		for k := range req.Tags {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		tags := make([]types.Tag, 0, len(keys))
		for _, k := range keys {
			tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(req.Tags[k])})
		}
		in.TagSpecifications = []types.TagSpecification{{ResourceType: types.ResourceTypeInstance, Tags: tags}}
	}
	return in
}

func toReservation(id string, groups []types.GroupIdentifier, instances []types.Instance) cloud.Reservation {
	res := cloud.Reservation{ID: id}
	for _, g := range groups {
		res.Groups = append(res.Groups, aws.ToString(g.GroupName))
	}
	for _, inst := range instances {
		res.Instances = append(res.Instances, toInstance(inst))
	}
	return res
}

func toInstance(in types.Instance) cloud.Instance {
	inst := cloud.Instance{
		ID:           aws.ToString(in.InstanceId),
		PublicDNS:    aws.ToString(in.PublicDnsName),
		PublicIP:     aws.ToString(in.PublicIpAddress),
		PrivateIP:    aws.ToString(in.PrivateIpAddress),
		InstanceType: string(in.InstanceType),
		ImageID:      aws.ToString(in.ImageId),
		State:        cloud.StatePending,
	}
	if in.State != nil {
		inst.State = cloud.InstanceState(in.State.Name)
	}
	if in.Placement != nil {
		inst.Zone = aws.ToString(in.Placement.AvailabilityZone)
	}
	for _, g := range in.SecurityGroups {
		inst.Groups = append(inst.Groups, aws.ToString(g.GroupName))
	}
	return inst
}

func toPermissions(rules []cloud.Rule) []types.IpPermission {
	perms := make([]types.IpPermission, 0, len(rules))
	for _, r := range rules {
		perm := types.IpPermission{
			IpProtocol: aws.String(r.Protocol),
			FromPort:   aws.Int32(int32(r.FromPort)), //nolint:gosec // ports fit int32
			ToPort:     aws.Int32(int32(r.ToPort)),   //nolint:gosec // ports fit int32
		}
		if r.SourceGroupID != "" {
			perm.UserIdGroupPairs = []types.UserIdGroupPair{{GroupId: aws.String(r.SourceGroupID)}}
		}
		if r.CIDR != "" {
			perm.IpRanges = []types.IpRange{{CidrIp: aws.String(r.CIDR)}}
		}
		perms = append(perms, perm)
	}
	return perms
}

// fromPermissions flattens permissions into one rule per source.
func fromPermissions(perms []types.IpPermission) []cloud.Rule {
	var rules []cloud.Rule
	for _, perm := range perms {
		base := cloud.Rule{Protocol: aws.ToString(perm.IpProtocol), FromPort: -1, ToPort: -1}
		if perm.FromPort != nil {
			base.FromPort = int(*perm.FromPort)
		}
		if perm.ToPort != nil {
			base.ToPort = int(*perm.ToPort)
		}
		for _, pair := range perm.UserIdGroupPairs {
			r := base
			r.SourceGroupID = aws.ToString(pair.GroupId)
			rules = append(rules, r)
		}
		for _, ipr := range perm.IpRanges {
			r := base
			r.CIDR = aws.ToString(ipr.CidrIp)
			rules = append(rules, r)
		}
	}
	return rules
}
