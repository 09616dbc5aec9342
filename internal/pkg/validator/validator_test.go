package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Target struct {
		Region     string `mapstructure:"region" validate:"required"`
		Format     string `mapstructure:"format" validate:"oneof=json console"`
		InstanceID string `mapstructure:"instance_id" validate:"omitempty,instanceid"`
	} `mapstructure:"target"`
}

func TestValidate_ReportsConfigKeys(t *testing.T) {
	var s sample
	s.Target.Format = "yaml"
	s.Target.InstanceID = "web-1"

	errs := New().Validate(s)
	require.Len(t, errs, 3)

	assert.Equal(t, "target.region", errs[0].Field)
	assert.Equal(t, "target.region is required", errs[0].Message)
	assert.Equal(t, "target.format must be one of [json console]", errs[1].Message)
	assert.Equal(t, "instanceid", errs[2].Tag)
	assert.Equal(t, "web-1", errs[2].Value)

	assert.Equal(t,
		"target.region is required; target.format must be one of [json console]; target.instance_id must be an EC2 instance id (i-xxxxxxxx)",
		Summary(errs))
}

func TestValidate_Valid(t *testing.T) {
	var s sample
	s.Target.Region = "us-east-1"
	s.Target.Format = "json"

	assert.Empty(t, New().Validate(s))
}

func TestInstanceID(t *testing.T) {
	v := New()
	for _, id := range []string{"i-0123abcd", "i-0123456789abcdef0"} {
		assert.NoError(t, v.ValidateVar(id, "instanceid"), id)
	}
	for _, id := range []string{"", "i-123", "i-0123ABCD", "ami-0123abcd", "i-0123456789abcdef01"} {
		assert.Error(t, v.ValidateVar(id, "instanceid"), id)
	}
}
