package monitoring

import (
	"context"
	"time"
)

// SystemMonitor defines the interface for system monitoring components
type SystemMonitor interface {
	// Initialize runs once at startup, before the first request
	Initialize() error

	// Cleanup performs cleanup operations
	Cleanup() error

	// GetName returns the monitor name
	GetName() string
}

// CPUMonitor defines the interface for CPU monitoring
type CPUMonitor interface {
	SystemMonitor

	// GetCPUUsage blocks for CPUSampleInterval and returns total usage percent
	GetCPUUsage(ctx context.Context) (float64, error)

	// GetCPUCount returns the number of logical CPUs
	GetCPUCount(ctx context.Context) (int, error)

	// GetCPUFrequency returns current, min and max frequency in MHz
	GetCPUFrequency(ctx context.Context) (*CPUFrequency, error)
}

// MemoryMonitor defines the interface for memory and swap monitoring
type MemoryMonitor interface {
	SystemMonitor

	// GetVirtualMemory returns physical memory usage; Free is the available byte count
	GetVirtualMemory(ctx context.Context) (*UsageInfo, error)

	// GetSwapMemory returns swap usage
	GetSwapMemory(ctx context.Context) (*UsageInfo, error)
}

// DiskMonitor defines the interface for filesystem usage
type DiskMonitor interface {
	SystemMonitor

	// GetDiskUsage returns usage of the configured root path
	GetDiskUsage(ctx context.Context) (*UsageInfo, error)
}

// TemperatureMonitor reads platform sensors and normalizes them to canonical labels
type TemperatureMonitor interface {
	SystemMonitor

	GetTemperatures(ctx context.Context) (TemperatureReading, error)
}

// GPUProvider enumerates GPU devices and their current stats
type GPUProvider interface {
	QueryGPUs(ctx context.Context) ([]GPUSample, error)
}

// GPUMonitor defines the interface for GPU monitoring
type GPUMonitor interface {
	SystemMonitor

	// GetGPUSamples never returns nil; the slice is empty when the source is unavailable
	GetGPUSamples(ctx context.Context) ([]GPUSample, error)

	// Available reports the state of the availability latch
	Available() bool
}

// SystemInfoProvider defines the interface for system information
type SystemInfoProvider interface {
	SystemMonitor

	// GetBootTime returns system boot time
	GetBootTime(ctx context.Context) (time.Time, error)

	// GetSystemUptime returns system uptime in seconds
	GetSystemUptime(ctx context.Context) (uint64, error)

	// GetCurrentPlatform returns the current platform
	GetCurrentPlatform() string
}

// MonitorManager manages all system monitors
type MonitorManager interface {
	// RegisterMonitor registers a system monitor
	RegisterMonitor(monitor SystemMonitor) error

	// GetMonitor returns a monitor by name
	GetMonitor(name string) SystemMonitor

	// InitializeAll initializes all registered monitors in registration order
	InitializeAll() error

	// CleanupAll cleans up all registered monitors
	CleanupAll() error

	GetCPUMonitor() CPUMonitor
	GetMemoryMonitor() MemoryMonitor
	GetDiskMonitor() DiskMonitor
	GetTemperatureMonitor() TemperatureMonitor
	GetGPUMonitor() GPUMonitor
	GetSystemInfoProvider() SystemInfoProvider
}
