package providers

import (
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pratik-mahalle/ec2pull/internal/domain/inventory"
)

// NormalizerOptions tunes how instance records become host variables
type NormalizerOptions struct {
	// LegacyEBSOptimized fills ec2_ebs_optimized with the private DNS name,
	// matching the historical output that existing playbooks may rely on.
	// When false the real EbsOptimized flag is emitted
	LegacyEBSOptimized bool
}

// Normalizer maps EC2 instance records to flat host variables
type Normalizer struct {
	opts NormalizerOptions
}

// NewNormalizer creates a normalizer
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize returns the host variables of inst and the fields that were
// absent on the record and set to "". Every field in inventory.HostFields
// is always present
func (n *Normalizer) Normalize(inst types.Instance) (*inventory.HostMetadata, []string) {
	f := &fieldSet{md: inventory.NewHostMetadata()}

	f.int32(inventory.FieldAMILaunchIndex, inst.AmiLaunchIndex)
	f.enum(inventory.FieldArchitecture, string(inst.Architecture))
	f.str(inventory.FieldClientToken, inst.ClientToken)
	f.str(inventory.FieldPrivateDNSName, inst.PrivateDnsName)
	if n.opts.LegacyEBSOptimized {
		f.str(inventory.FieldEBSOptimized, inst.PrivateDnsName)
	} else {
		f.boolean(inventory.FieldEBSOptimized, inst.EbsOptimized)
	}
	f.enum(inventory.FieldHypervisor, string(inst.Hypervisor))
	f.str(inventory.FieldImageID, inst.ImageId)
	f.str(inventory.FieldInstanceID, inst.InstanceId)
	f.enum(inventory.FieldInstanceLifecycle, string(inst.InstanceLifecycle))
	f.enum(inventory.FieldInstanceType, string(inst.InstanceType))
	f.str(inventory.FieldKernelID, inst.KernelId)
	f.str(inventory.FieldKeyName, inst.KeyName)
	f.enum(inventory.FieldPlatform, string(inst.Platform))
	f.str(inventory.FieldPrivateIPAddress, inst.PrivateIpAddress)
	f.str(inventory.FieldPublicDNSName, inst.PublicDnsName)
	f.str(inventory.FieldPublicIPAddress, inst.PublicIpAddress)
	f.str(inventory.FieldRamdiskID, inst.RamdiskId)
	f.str(inventory.FieldRootDeviceName, inst.RootDeviceName)
	f.enum(inventory.FieldRootDeviceType, string(inst.RootDeviceType))
	f.boolean(inventory.FieldSourceDestCheck, inst.SourceDestCheck)
	f.str(inventory.FieldSpotInstanceRequestID, inst.SpotInstanceRequestId)
	f.str(inventory.FieldSriovNetSupport, inst.SriovNetSupport)
	f.str(inventory.FieldStateTransitionReason, inst.StateTransitionReason)
	f.str(inventory.FieldSubnetID, inst.SubnetId)
	f.enum(inventory.FieldVirtualizationType, string(inst.VirtualizationType))
	f.str(inventory.FieldVPCID, inst.VpcId)

	return f.md, f.defaulted
}

// Tags converts EC2 tags to inventory tags, dropping entries without a key
func Tags(tags []types.Tag) []inventory.Tag {
	out := make([]inventory.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Key == nil {
			continue
		}
		value := ""
		if t.Value != nil {
			value = *t.Value
		}
		out = append(out, inventory.Tag{Key: *t.Key, Value: value})
	}
	return out
}

// fieldSet fills one HostMetadata and remembers which fields were missing
type fieldSet struct {
	md        *inventory.HostMetadata
	defaulted []string
}

func (f *fieldSet) missing(field string) {
	f.md.Set(field, "")
	f.defaulted = append(f.defaulted, inventory.Key(field))
}

func (f *fieldSet) str(field string, v *string) {
	if v == nil {
		f.missing(field)
		return
	}
	f.md.Set(field, *v)
}

func (f *fieldSet) enum(field string, v string) {
	if v == "" {
		f.missing(field)
		return
	}
	f.md.Set(field, v)
}

func (f *fieldSet) boolean(field string, v *bool) {
	if v == nil {
		f.missing(field)
		return
	}
	f.md.Set(field, *v)
}

func (f *fieldSet) int32(field string, v *int32) {
	if v == nil {
		f.missing(field)
		return
	}
	f.md.Set(field, *v)
}
