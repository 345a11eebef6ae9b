package monitoring

import (
	"errors"
	"fmt"
	"sync"

	"hwstats-agent/internal/logging"
)

// monitorManager implements the MonitorManager interface
type monitorManager struct {
	mu                 sync.RWMutex
	monitors           map[string]SystemMonitor
	order              []string
	cpuMonitor         CPUMonitor
	memoryMonitor      MemoryMonitor
	diskMonitor        DiskMonitor
	temperatureMonitor TemperatureMonitor
	gpuMonitor         GPUMonitor
	systemInfoProvider SystemInfoProvider
}

// NewMonitorManager creates an empty monitor manager
func NewMonitorManager() MonitorManager {
	return &monitorManager{
		monitors: make(map[string]SystemMonitor),
	}
}

// RegisterMonitor registers a system monitor. Registering a second monitor
// under the same name replaces the first.
func (m *monitorManager) RegisterMonitor(monitor SystemMonitor) error {
	if monitor == nil {
		return fmt.Errorf("monitor cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := monitor.GetName()
	if _, exists := m.monitors[name]; !exists {
		m.order = append(m.order, name)
	}
	m.monitors[name] = monitor

	// Cache specific monitor types for quick access
	switch v := monitor.(type) {
	case CPUMonitor:
		m.cpuMonitor = v
	case MemoryMonitor:
		m.memoryMonitor = v
	case DiskMonitor:
		m.diskMonitor = v
	case TemperatureMonitor:
		m.temperatureMonitor = v
	case GPUMonitor:
		m.gpuMonitor = v
	case SystemInfoProvider:
		m.systemInfoProvider = v
	default:
		logging.LogWarn("Registered monitor has no known role", "monitor", name)
	}

	return nil
}

// GetMonitor returns a monitor by name
func (m *monitorManager) GetMonitor(name string) SystemMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.monitors[name]
}

// InitializeAll initializes all registered monitors
func (m *monitorManager) InitializeAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		if err := m.monitors[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize monitor %s: %w", name, err)
		}
		logging.LogDebug("Monitor initialized", "monitor", name)
	}

	return nil
}

// CleanupAll cleans up all registered monitors
func (m *monitorManager) CleanupAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, name := range m.order {
		if err := m.monitors[name].Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("failed to cleanup monitor %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func (m *monitorManager) GetCPUMonitor() CPUMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cpuMonitor
}

func (m *monitorManager) GetMemoryMonitor() MemoryMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.memoryMonitor
}

func (m *monitorManager) GetDiskMonitor() DiskMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.diskMonitor
}

func (m *monitorManager) GetTemperatureMonitor() TemperatureMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.temperatureMonitor
}

func (m *monitorManager) GetGPUMonitor() GPUMonitor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gpuMonitor
}

func (m *monitorManager) GetSystemInfoProvider() SystemInfoProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.systemInfoProvider
}
