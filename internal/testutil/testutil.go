package testutil

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// NewInstance builds a running instance with every commonly populated field
// set. Optional fields (kernel, ramdisk, platform, lifecycle, spot request,
// sriov) are left nil. tags is a flat list of key/value pairs
func NewInstance(id, privateDNS string, tags ...string) types.Instance {
	return types.Instance{
		AmiLaunchIndex:        aws.Int32(0),
		Architecture:          types.ArchitectureValuesX8664,
		ClientToken:           aws.String(""),
		EbsOptimized:          aws.Bool(false),
		Hypervisor:            types.HypervisorTypeXen,
		ImageId:               aws.String("ami-0abcdef1234567890"),
		InstanceId:            aws.String(id),
		InstanceType:          types.InstanceTypeT3Micro,
		KeyName:               aws.String("deploy"),
		PrivateDnsName:        aws.String(privateDNS),
		PrivateIpAddress:      aws.String("10.0.0.10"),
		PublicDnsName:         aws.String(""),
		RootDeviceName:        aws.String("/dev/xvda"),
		RootDeviceType:        types.DeviceTypeEbs,
		SourceDestCheck:       aws.Bool(true),
		State:                 &types.InstanceState{Name: types.InstanceStateNameRunning, Code: aws.Int32(16)},
		StateTransitionReason: aws.String(""),
		SubnetId:              aws.String("subnet-0123"),
		VirtualizationType:    types.VirtualizationTypeHvm,
		VpcId:                 aws.String("vpc-0123"),
		Tags:                  Tags(tags...),
	}
}

// Stopped returns inst in the stopped state
func Stopped(inst types.Instance) types.Instance {
	inst.State = &types.InstanceState{Name: types.InstanceStateNameStopped, Code: aws.Int32(80)}
	return inst
}

// Tags turns key/value pairs into EC2 tags; a trailing odd key gets ""
func Tags(kv ...string) []types.Tag {
	var tags []types.Tag
	for i := 0; i < len(kv); i += 2 {
		value := ""
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		tags = append(tags, types.Tag{Key: aws.String(kv[i]), Value: aws.String(value)})
	}
	return tags
}
