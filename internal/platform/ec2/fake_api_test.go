package ec2

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// fakeAPI serves canned EC2 responses and records every input.
type fakeAPI struct {
	instancePages [][]types.Reservation
	groupPages    [][]types.SecurityGroup
	images        []types.Image
	zones         []types.AvailabilityZone
	runOutput     *ec2.RunInstancesOutput
	errs          map[string]error

	describeInputs []*ec2.DescribeInstancesInput
	runInputs      []*ec2.RunInstancesInput
	authorized     []*ec2.AuthorizeSecurityGroupIngressInput
	revoked        []*ec2.RevokeSecurityGroupIngressInput
	deleted        []string
	terminated     []string
	stopped        []string
	started        []string
	zoneFilters    []types.Filter
}

var _ API = (*fakeAPI)(nil)

func pageIndex(token *string) int {
	if token == nil {
		return 0
	}
	n, _ := strconv.Atoi(aws.ToString(token))
	return n
}

func nextToken(i, total int) *string {
	if i+1 >= total {
		return nil
	}
	return aws.String(fmt.Sprint(i + 1))
}

func (f *fakeAPI) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.describeInputs = append(f.describeInputs, in)
	if err := f.errs["DescribeInstances"]; err != nil {
		return nil, err
	}
	i := pageIndex(in.NextToken)
	if i >= len(f.instancePages) {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	return &ec2.DescribeInstancesOutput{Reservations: f.instancePages[i], NextToken: nextToken(i, len(f.instancePages))}, nil
}

func (f *fakeAPI) DescribeSecurityGroups(_ context.Context, in *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if err := f.errs["DescribeSecurityGroups"]; err != nil {
		return nil, err
	}
	i := pageIndex(in.NextToken)
	if i >= len(f.groupPages) {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: f.groupPages[i], NextToken: nextToken(i, len(f.groupPages))}, nil
}

func (f *fakeAPI) CreateSecurityGroup(_ context.Context, in *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if err := f.errs["CreateSecurityGroup"]; err != nil {
		return nil, err
	}
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String("sg-" + aws.ToString(in.GroupName))}, nil
}

func (f *fakeAPI) AuthorizeSecurityGroupIngress(_ context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.authorized = append(f.authorized, in)
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, f.errs["AuthorizeSecurityGroupIngress"]
}

func (f *fakeAPI) RevokeSecurityGroupIngress(_ context.Context, in *ec2.RevokeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	f.revoked = append(f.revoked, in)
	return &ec2.RevokeSecurityGroupIngressOutput{}, f.errs["RevokeSecurityGroupIngress"]
}

func (f *fakeAPI) DeleteSecurityGroup(_ context.Context, in *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.GroupId))
	return &ec2.DeleteSecurityGroupOutput{}, f.errs["DeleteSecurityGroup"]
}

func (f *fakeAPI) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.runInputs = append(f.runInputs, in)
	if err := f.errs["RunInstances"]; err != nil {
		return nil, err
	}
	return f.runOutput, nil
}

func (f *fakeAPI) TerminateInstances(_ context.Context, in *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	f.terminated = append(f.terminated, in.InstanceIds...)
	return &ec2.TerminateInstancesOutput{}, f.errs["TerminateInstances"]
}

func (f *fakeAPI) StopInstances(_ context.Context, in *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.stopped = append(f.stopped, in.InstanceIds...)
	return &ec2.StopInstancesOutput{}, f.errs["StopInstances"]
}

func (f *fakeAPI) StartInstances(_ context.Context, in *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	f.started = append(f.started, in.InstanceIds...)
	return &ec2.StartInstancesOutput{}, f.errs["StartInstances"]
}

func (f *fakeAPI) DescribeImages(_ context.Context, _ *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if err := f.errs["DescribeImages"]; err != nil {
		return nil, err
	}
	return &ec2.DescribeImagesOutput{Images: f.images}, nil
}

func (f *fakeAPI) DescribeAvailabilityZones(_ context.Context, in *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	f.zoneFilters = in.Filters
	return &ec2.DescribeAvailabilityZonesOutput{AvailabilityZones: f.zones}, nil
}
