package monitoring

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"hwstats-agent/internal/logging"
)

// memoryMonitor implements the MemoryMonitor interface
type memoryMonitor struct {
	name string
}

// NewMemoryMonitor creates a new memory monitor
func NewMemoryMonitor() MemoryMonitor {
	return &memoryMonitor{
		name: "memory_monitor",
	}
}

// Initialize initializes the memory monitor
func (m *memoryMonitor) Initialize() error {
	return nil
}

// Cleanup performs cleanup operations
func (m *memoryMonitor) Cleanup() error {
	return nil
}

// GetName returns the monitor name
func (m *memoryMonitor) GetName() string {
	return m.name
}

// GetVirtualMemory returns physical memory usage. Free carries the available
// byte count and the percentage is computed from it, so reclaimable cache
// does not count as used.
func (m *memoryMonitor) GetVirtualMemory(ctx context.Context) (*UsageInfo, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		logging.LogDebug("Error getting virtual memory", "error", err)
		return nil, err
	}

	return &UsageInfo{
		Total:       v.Total,
		Used:        v.Used,
		Free:        v.Available,
		UsedPercent: percentOf(v.Total-v.Available, v.Total),
	}, nil
}

// GetSwapMemory returns swap usage
func (m *memoryMonitor) GetSwapMemory(ctx context.Context) (*UsageInfo, error) {
	s, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		logging.LogDebug("Error getting swap memory", "error", err)
		return nil, err
	}

	return &UsageInfo{
		Total:       s.Total,
		Used:        s.Used,
		Free:        s.Free,
		UsedPercent: s.UsedPercent,
	}, nil
}

func percentOf(part, total uint64) float64 {
	if total == 0 || part > total {
		return 0
	}
	return float64(part) / float64(total) * 100
}
