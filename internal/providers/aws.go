package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/pratik-mahalle/ec2pull/internal/pkg/errors"
)

const (
	providerName  = "aws"
	serviceName   = "ec2"
	defaultRegion = "us-east-1"
	// sharedDefaultProfile is left to the SDK's own profile resolution
	sharedDefaultProfile = "default"

	filterInstanceState = "instance-state-name"
	filterInstanceID    = "instance-id"
	stateRunning        = "running"
)

// AWSOptions selects region and credentials for the EC2 client
type AWSOptions struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AWSClient lists and fetches EC2 instances
type AWSClient struct {
	api ec2.DescribeInstancesAPIClient
}

// NewAWSClient loads AWS configuration and returns a client bound to one
// region. Static credentials win over the default chain when both keys are set
func NewAWSClient(ctx context.Context, opts AWSOptions) (*AWSClient, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewAWSClientFromAPI(ec2.NewFromConfig(cfg)), nil
}

func loadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(nonEmpty(opts.Region, defaultRegion)),
	}
	if opts.Profile != "" && opts.Profile != sharedDefaultProfile {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		var profileErr awsconfig.SharedConfigProfileNotExistError
		if errors.As(err, &profileErr) {
			return aws.Config{}, apperrors.Wrap(err, apperrors.ErrCodeProviderAuth,
				fmt.Sprintf("Failed to select profile: %s", opts.Profile), apperrors.ExitFatal)
		}
		return aws.Config{}, apperrors.ProviderAuthError(providerName, err)
	}
	return cfg, nil
}

// NewAWSClientFromAPI wraps an existing DescribeInstances implementation
func NewAWSClientFromAPI(api ec2.DescribeInstancesAPIClient) *AWSClient {
	return &AWSClient{api: api}
}

// ListRunningInstances returns every running instance, or only the running
// instances among instanceIDs when any are given
func (c *AWSClient) ListRunningInstances(ctx context.Context, instanceIDs ...string) ([]types.Instance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String(filterInstanceState), Values: []string{stateRunning}},
		},
	}
	if len(instanceIDs) > 0 {
		input.Filters = append(input.Filters, types.Filter{
			Name:   aws.String(filterInstanceID),
			Values: instanceIDs,
		})
	}

	out := []types.Instance{}
	p := ec2.NewDescribeInstancesPaginator(c.api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, apiError(err)
		}
		for _, res := range page.Reservations {
			out = append(out, res.Instances...)
		}
	}
	return out, nil
}

// GetInstance describes one instance by id
func (c *AWSClient) GetInstance(ctx context.Context, instanceID string) (*types.Instance, error) {
	resp, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && isInstanceNotFound(ae.ErrorCode()) {
			return nil, apperrors.NotFound("instance " + instanceID)
		}
		return nil, apiError(err)
	}

	for _, res := range resp.Reservations {
		for i := range res.Instances {
			if aws.ToString(res.Instances[i].InstanceId) == instanceID {
				return &res.Instances[i], nil
			}
		}
	}
	return nil, apperrors.NotFound("instance " + instanceID)
}

func isInstanceNotFound(code string) bool {
	return code == "InvalidInstanceID.NotFound" || code == "InvalidInstanceID.Malformed"
}

// apiError wraps an EC2 failure and keeps the service error code when present
func apiError(err error) error {
	wrapped := apperrors.ProviderAPIError(serviceName, err)
	var ae smithy.APIError
	if errors.As(err, &ae) {
		wrapped.WithDetails(map[string]string{"aws_error_code": ae.ErrorCode()})
	}
	return wrapped
}

func nonEmpty(v string, def string) string {
	if v == "" {
		return def
	}
	return v
}
