package ec2

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// API is the subset of the EC2 client the provider calls.
type API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeSecurityGroupsAPIClient

	CreateSecurityGroup(ctx context.Context, in *ec2.CreateSecurityGroupInput, opts ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, opts ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, in *ec2.RevokeSecurityGroupIngressInput, opts ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
	DeleteSecurityGroup(ctx context.Context, in *ec2.DeleteSecurityGroupInput, opts ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)

	RunInstances(ctx context.Context, in *ec2.RunInstancesInput, opts ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	TerminateInstances(ctx context.Context, in *ec2.TerminateInstancesInput, opts ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, opts ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	StartInstances(ctx context.Context, in *ec2.StartInstancesInput, opts ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)

	DescribeImages(ctx context.Context, in *ec2.DescribeImagesInput, opts ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeAvailabilityZones(ctx context.Context, in *ec2.DescribeAvailabilityZonesInput, opts ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
}

var _ API = (*ec2.Client)(nil)

type clientOptions struct {
	staticKey, staticSecret, sessionToken string
	sharedFile, profile                   string
}

// Option configures how NewClient loads credentials.
type Option func(*clientOptions)

// WithStaticCredentials uses an access key pair.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) Option {
	return func(o *clientOptions) {
		o.staticKey, o.staticSecret, o.sessionToken = accessKeyID, secretAccessKey, sessionToken
	}
}

// WithSharedCredentials reads a shared credentials file, optionally for
// a named profile.
func WithSharedCredentials(file, profile string) Option {
	return func(o *clientOptions) {
		o.sharedFile, o.profile = file, profile
	}
}

// NewClient creates a Provider for region backed by the real EC2 API.
func NewClient(ctx context.Context, region string, opts ...Option) (*Provider, error) {
	var co clientOptions
	for _, opt := range opts {
		opt(&co)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	switch {
	case co.staticKey != "":
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(co.staticKey, co.staticSecret, co.sessionToken)))
	case co.sharedFile != "":
		loadOpts = append(loadOpts, awsconfig.WithSharedCredentialsFiles([]string{co.sharedFile}))
		if co.profile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(co.profile))
		}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return New(ec2.NewFromConfig(cfg), region), nil
}
