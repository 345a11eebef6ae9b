package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// systemInfoProvider implements the SystemInfoProvider interface
type systemInfoProvider struct {
	name string
}

// NewSystemInfoProvider creates a new system info provider
func NewSystemInfoProvider() SystemInfoProvider {
	return &systemInfoProvider{
		name: "system_info_provider",
	}
}

// Initialize initializes the system info provider
func (s *systemInfoProvider) Initialize() error {
	return nil
}

// Cleanup performs cleanup operations
func (s *systemInfoProvider) Cleanup() error {
	return nil
}

// GetName returns the provider name
func (s *systemInfoProvider) GetName() string {
	return s.name
}

// GetBootTime returns system boot time
func (s *systemInfoProvider) GetBootTime(ctx context.Context) (time.Time, error) {
	bootTime, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(bootTime), 0), nil
}

// GetSystemUptime returns system uptime in seconds
func (s *systemInfoProvider) GetSystemUptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

// GetCurrentPlatform returns the current platform
func (s *systemInfoProvider) GetCurrentPlatform() string {
	return runtime.GOOS
}
