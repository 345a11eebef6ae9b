package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUSampleInterval is the fixed blocking window of every usage sample.
const CPUSampleInterval = time.Second

// cpuMonitor implements the CPUMonitor interface
type cpuMonitor struct {
	name     string
	interval time.Duration
}

// NewCPUMonitor creates a new CPU monitor
func NewCPUMonitor() CPUMonitor {
	return &cpuMonitor{
		name:     "cpu_monitor",
		interval: CPUSampleInterval,
	}
}

// Initialize initializes the CPU monitor
func (c *cpuMonitor) Initialize() error {
	return nil
}

// Cleanup performs cleanup operations
func (c *cpuMonitor) Cleanup() error {
	return nil
}

// GetName returns the monitor name
func (c *cpuMonitor) GetName() string {
	return c.name
}

// GetCPUUsage returns overall CPU usage percentage
func (c *cpuMonitor) GetCPUUsage(ctx context.Context) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, c.interval, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("cpu percent returned no samples")
	}
	return percentages[0], nil
}

// GetCPUCount returns the number of logical CPUs
func (c *cpuMonitor) GetCPUCount(ctx context.Context) (int, error) {
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, err
	}
	if count <= 0 {
		return 0, fmt.Errorf("invalid cpu count %d", count)
	}
	return count, nil
}

// GetCPUFrequency reports current, min and max frequency in MHz. On Linux the
// values come from the cpufreq sysfs tree; elsewhere gopsutil only exposes a
// rated value, so current and max are equal and min is unknown (0).
func (c *cpuMonitor) GetCPUFrequency(ctx context.Context) (*CPUFrequency, error) {
	if freq, ok, err := readSysfsFrequency(ctx); ok || err != nil {
		return freq, err
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 || infos[0].Mhz <= 0 {
		return nil, fmt.Errorf("cpu frequency not reported")
	}

	return &CPUFrequency{
		Current: infos[0].Mhz,
		Min:     0,
		Max:     infos[0].Mhz,
	}, nil
}
