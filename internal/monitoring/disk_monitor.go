package monitoring

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
)

// DefaultDiskPath is "/" on Unix and the system drive on Windows.
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

type diskMonitor struct {
	name string
	path string
}

// NewDiskMonitor reports usage of the filesystem mounted at path; an empty
// path selects DefaultDiskPath.
func NewDiskMonitor(path string) DiskMonitor {
	if path == "" {
		path = DefaultDiskPath()
	}
	return &diskMonitor{
		name: "disk_monitor",
		path: path,
	}
}

func (d *diskMonitor) Initialize() error {
	return nil
}

func (d *diskMonitor) Cleanup() error {
	return nil
}

func (d *diskMonitor) GetName() string {
	return d.name
}

func (d *diskMonitor) GetDiskUsage(ctx context.Context) (*UsageInfo, error) {
	usage, err := disk.UsageWithContext(ctx, d.path)
	if err != nil {
		return nil, err
	}

	return &UsageInfo{
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}
