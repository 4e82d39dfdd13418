package cluster

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/cloud"
)

// ebsDevice is where the optional network volume is attached.
const ebsDevice = "/dev/sdv"

// instanceStoreDisks lists the local disks per EC2 instance type.
var instanceStoreDisks = map[string]int{
	"m1.small":    1,
	"m1.medium":   1,
	"m1.large":    2,
	"m1.xlarge":   4,
	"t1.micro":    1,
	"c1.medium":   1,
	"c1.xlarge":   4,
	"m2.xlarge":   1,
	"m2.2xlarge":  1,
	"m2.4xlarge":  2,
	"cc1.4xlarge": 2,
	"cc2.8xlarge": 4,
	"cg1.4xlarge": 2,
	"hs1.8xlarge": 24,
	"cr1.8xlarge": 2,
	"hi1.4xlarge": 2,
	"m3.xlarge":   0,
	"m3.2xlarge":  0,
}

// DiskCount returns the number of instance-store disks of instanceType.
// Unknown types are assumed to have one disk.
func DiskCount(instanceType string) (int, bool) {
	n, ok := instanceStoreDisks[instanceType]
	if !ok {
		return 1, false
	}
	return n, true
}

// BlockDevices builds the device mapping for instanceType: the optional
// network volume on /dev/sdv, then one entry per local disk starting at
// /dev/sdb.
func BlockDevices(instanceType string, ebsVolumeSize int, log logr.Logger) []cloud.BlockDevice {
	var devices []cloud.BlockDevice
	if ebsVolumeSize > 0 {
		devices = append(devices, cloud.BlockDevice{
			DeviceName:          ebsDevice,
			VolumeSizeGB:        ebsVolumeSize,
			DeleteOnTermination: true,
		})
	}

	disks, known := DiskCount(instanceType)
	if !known {
		log.Info("unknown number of disks for instance type, assuming 1", "instanceType", instanceType)
	}
	for i := range disks {
		devices = append(devices, cloud.BlockDevice{
			DeviceName:  fmt.Sprintf("/dev/sd%c", 'b'+rune(i)),
			VirtualName: fmt.Sprintf("ephemeral%d", i),
		})
	}
	return devices
}
