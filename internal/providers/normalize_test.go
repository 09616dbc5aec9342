package providers

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/ec2pull/internal/domain/inventory"
	"github.com/pratik-mahalle/ec2pull/internal/testutil"
)

func prefixed(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, inventory.Key(f))
	}
	return out
}

func TestNormalize_FieldSetIsFixed(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{LegacyEBSOptimized: true})

	inputs := map[string]types.Instance{
		"populated": testutil.NewInstance("i-00000001", "ip-10-0-0-1.ec2.internal", "Name", "web-1"),
		"empty":     {},
		"spot windows": func() types.Instance {
			inst := testutil.NewInstance("i-00000002", "ip-10-0-0-2.ec2.internal")
			inst.Platform = types.PlatformValuesWindows
			inst.InstanceLifecycle = types.InstanceLifecycleTypeSpot
			inst.SpotInstanceRequestId = aws.String("sir-123")
			return inst
		}(),
	}

	for name, inst := range inputs {
		t.Run(name, func(t *testing.T) {
			md, _ := n.Normalize(inst)
			assert.Equal(t, prefixed(inventory.HostFields), md.Keys())
		})
	}
}

func TestNormalize_OptionalFieldsDefaultToEmpty(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{})
	md, defaulted := n.Normalize(testutil.NewInstance("i-00000001", "ip-10-0-0-1.ec2.internal"))

	optional := []string{
		inventory.FieldInstanceLifecycle,
		inventory.FieldKernelID,
		inventory.FieldPlatform,
		inventory.FieldRamdiskID,
		inventory.FieldSpotInstanceRequestID,
		inventory.FieldSriovNetSupport,
		inventory.FieldPublicIPAddress,
	}
	for _, f := range optional {
		v, ok := md.Get(f)
		require.True(t, ok, f)
		assert.Equal(t, "", v, f)
	}
	assert.ElementsMatch(t, prefixed(optional), defaulted)
}

func TestNormalize_EmptyRecord(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{})
	md, defaulted := n.Normalize(types.Instance{})

	for _, key := range md.Keys() {
		assert.Equal(t, "", md.Map()[key], key)
	}
	assert.Len(t, defaulted, len(inventory.HostFields))
}

func TestNormalize_Values(t *testing.T) {
	inst := testutil.NewInstance("i-00000001", "ip-10-0-0-1.ec2.internal")
	inst.AmiLaunchIndex = aws.Int32(2)
	inst.KernelId = aws.String("aki-1")
	inst.EbsOptimized = aws.Bool(true)

	md, _ := NewNormalizer(NormalizerOptions{}).Normalize(inst)
	m := md.Map()

	assert.Equal(t, int32(2), m["ec2_ami_launch_index"])
	assert.Equal(t, "x86_64", m["ec2_architecture"])
	assert.Equal(t, "i-00000001", m["ec2_instance_id"])
	assert.Equal(t, "t3.micro", m["ec2_instance_type"])
	assert.Equal(t, "aki-1", m["ec2_kernel_id"])
	assert.Equal(t, "ebs", m["ec2_root_device_type"])
	assert.Equal(t, true, m["ec2_source_dest_check"])
	assert.Equal(t, "hvm", m["ec2_virtualization_type"])
	assert.Equal(t, true, m["ec2_ebs_optimized"])
}

func TestNormalize_LegacyEBSOptimized(t *testing.T) {
	inst := testutil.NewInstance("i-00000001", "ip-10-0-0-1.ec2.internal")
	inst.EbsOptimized = aws.Bool(true)

	legacy, _ := NewNormalizer(NormalizerOptions{LegacyEBSOptimized: true}).Normalize(inst)
	v, _ := legacy.Get(inventory.FieldEBSOptimized)
	assert.Equal(t, "ip-10-0-0-1.ec2.internal", v)

	fixed, _ := NewNormalizer(NormalizerOptions{LegacyEBSOptimized: false}).Normalize(inst)
	v, _ = fixed.Get(inventory.FieldEBSOptimized)
	assert.Equal(t, true, v)
}

func TestNormalize_JSONScalars(t *testing.T) {
	md, _ := NewNormalizer(NormalizerOptions{}).Normalize(testutil.NewInstance("i-00000001", "ip-10-0-0-1.ec2.internal"))

	out, err := json.Marshal(md)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, len(inventory.HostFields))
	for key, v := range decoded {
		switch v.(type) {
		case string, float64, bool:
		default:
			t.Errorf("%s is not a scalar: %T", key, v)
		}
	}
}

func TestTags(t *testing.T) {
	tags := []types.Tag{
		{Key: aws.String("Name"), Value: aws.String("web-1")},
		{Key: nil, Value: aws.String("orphan")},
		{Key: aws.String("Empty"), Value: nil},
	}

	assert.Equal(t, []inventory.Tag{
		{Key: "Name", Value: "web-1"},
		{Key: "Empty", Value: ""},
	}, Tags(tags))
}
