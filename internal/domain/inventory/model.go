package inventory

import (
	"bytes"
	"encoding/json"
)

// FieldPrefix is prepended to every host variable name
const FieldPrefix = "ec2_"

// Host variable names, without FieldPrefix, in emission order
const (
	FieldAMILaunchIndex        = "ami_launch_index"
	FieldArchitecture          = "architecture"
	FieldClientToken           = "client_token"
	FieldPrivateDNSName        = "private_dns_name"
	FieldEBSOptimized          = "ebs_optimized"
	FieldHypervisor            = "hypervisor"
	FieldImageID               = "image_id"
	FieldInstanceID            = "instance_id"
	FieldInstanceLifecycle     = "instance_lifecycle"
	FieldInstanceType          = "instance_type"
	FieldKernelID              = "kernel_id"
	FieldKeyName               = "key_name"
	FieldPlatform              = "platform"
	FieldPrivateIPAddress      = "private_ip_address"
	FieldPublicDNSName         = "public_dns_name"
	FieldPublicIPAddress       = "public_ip_address"
	FieldRamdiskID             = "ramdisk_id"
	FieldRootDeviceName        = "root_device_name"
	FieldRootDeviceType        = "root_device_type"
	FieldSourceDestCheck       = "source_dest_check"
	FieldSpotInstanceRequestID = "spot_instance_request_id"
	FieldSriovNetSupport       = "sriov_net_support"
	FieldStateTransitionReason = "state_transition_reason"
	FieldSubnetID              = "subnet_id"
	FieldVirtualizationType    = "virtualization_type"
	FieldVPCID                 = "vpc_id"
)

// HostFields lists every host variable a normalized host carries
var HostFields = []string{
	FieldAMILaunchIndex,
	FieldArchitecture,
	FieldClientToken,
	FieldPrivateDNSName,
	FieldEBSOptimized,
	FieldHypervisor,
	FieldImageID,
	FieldInstanceID,
	FieldInstanceLifecycle,
	FieldInstanceType,
	FieldKernelID,
	FieldKeyName,
	FieldPlatform,
	FieldPrivateIPAddress,
	FieldPublicDNSName,
	FieldPublicIPAddress,
	FieldRamdiskID,
	FieldRootDeviceName,
	FieldRootDeviceType,
	FieldSourceDestCheck,
	FieldSpotInstanceRequestID,
	FieldSriovNetSupport,
	FieldStateTransitionReason,
	FieldSubnetID,
	FieldVirtualizationType,
	FieldVPCID,
}

// Key returns the prefixed host variable name for field
func Key(field string) string {
	return FieldPrefix + field
}

// HostMetadata is the flat variable mapping of one host. It remembers
// insertion order so host mode can print fields as they were gathered
type HostMetadata struct {
	keys   []string
	values map[string]interface{}
}

// NewHostMetadata creates an empty host metadata record
func NewHostMetadata() *HostMetadata {
	return &HostMetadata{
		values: make(map[string]interface{}, len(HostFields)),
	}
}

// Set stores value under the prefixed name of field. Setting a field twice
// keeps its first position
func (m *HostMetadata) Set(field string, value interface{}) {
	key := Key(field)
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored for field
func (m *HostMetadata) Get(field string) (interface{}, bool) {
	v, ok := m.values[Key(field)]
	return v, ok
}

// Keys returns the prefixed names in insertion order
func (m *HostMetadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of fields
func (m *HostMetadata) Len() int {
	return len(m.keys)
}

// Map returns a copy of the fields as a plain map
func (m *HostMetadata) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the fields in insertion order
func (m *HostMetadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
