package testutil

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// MockEC2API is an in-memory implementation of ec2.DescribeInstancesAPIClient.
// It honours the instance-state-name and instance-id filters, InstanceIds,
// and pages results when PageSize is set
type MockEC2API struct {
	Instances []types.Instance
	PageSize  int
	Err       error
	// FailOnCall makes the n-th call (1-based) return Err; zero fails every call
	FailOnCall int
	Calls      []*ec2.DescribeInstancesInput
}

// NewMockEC2API creates a mock holding instances
func NewMockEC2API(instances ...types.Instance) *MockEC2API {
	return &MockEC2API{Instances: instances}
}

func (m *MockEC2API) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	m.Calls = append(m.Calls, in)
	if m.Err != nil && (m.FailOnCall == 0 || m.FailOnCall == len(m.Calls)) {
		return nil, m.Err
	}

	matched := []types.Instance{}
	for _, inst := range m.Instances {
		if matches(inst, in) {
			matched = append(matched, inst)
		}
	}

	if len(in.InstanceIds) > 0 && len(matched) == 0 {
		return nil, &smithy.GenericAPIError{
			Code:    "InvalidInstanceID.NotFound",
			Message: "The instance IDs '" + strings.Join(in.InstanceIds, ", ") + "' do not exist",
		}
	}

	start := 0
	if in.NextToken != nil {
		start, _ = strconv.Atoi(*in.NextToken)
	}
	end := len(matched)
	var next *string
	if m.PageSize > 0 && start+m.PageSize < end {
		end = start + m.PageSize
		next = aws.String(strconv.Itoa(end))
	}

	out := &ec2.DescribeInstancesOutput{NextToken: next}
	for _, inst := range matched[start:end] {
		out.Reservations = append(out.Reservations, types.Reservation{
			Instances: []types.Instance{inst},
		})
	}
	return out, nil
}

func matches(inst types.Instance, in *ec2.DescribeInstancesInput) bool {
	if len(in.InstanceIds) > 0 && !contains(in.InstanceIds, aws.ToString(inst.InstanceId)) {
		return false
	}
	for _, f := range in.Filters {
		switch aws.ToString(f.Name) {
		case "instance-state-name":
			state := ""
			if inst.State != nil {
				state = string(inst.State.Name)
			}
			if !contains(f.Values, state) {
				return false
			}
		case "instance-id":
			if !contains(f.Values, aws.ToString(inst.InstanceId)) {
				return false
			}
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// MockMetadataAPI is a canned instance metadata service
type MockMetadataAPI struct {
	InstanceID string
	Err        error
	Paths      []string
}

func (m *MockMetadataAPI) GetMetadata(ctx context.Context, in *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error) {
	m.Paths = append(m.Paths, in.Path)
	if m.Err != nil {
		return nil, m.Err
	}
	return &imds.GetMetadataOutput{
		Content: io.NopCloser(strings.NewReader(m.InstanceID + "\n")),
	}, nil
}
