package monitoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorManager_AssignsRoles(t *testing.T) {
	s := newTestSources()
	m := s.manager()

	assert.Same(t, s.cpu, m.GetCPUMonitor())
	assert.Same(t, s.memory, m.GetMemoryMonitor())
	assert.Same(t, s.disk, m.GetDiskMonitor())
	assert.Same(t, s.temperature, m.GetTemperatureMonitor())
	assert.Same(t, s.system, m.GetSystemInfoProvider())
	assert.NotNil(t, m.GetGPUMonitor())
	assert.Equal(t, "gpu_monitor", m.GetGPUMonitor().GetName())
	assert.Same(t, s.disk, m.GetMonitor("disk_monitor"))
}

func TestMonitorManager_RejectsNil(t *testing.T) {
	assert.Error(t, NewMonitorManager().RegisterMonitor(nil))
}

func TestMonitorManager_InitializeAllStopsAtFirstError(t *testing.T) {
	var cpuInits, memInits int
	m := NewMonitorManager()
	require.NoError(t, m.RegisterMonitor(&fakeCPU{fakeBase: fakeBase{name: "cpu_monitor", inits: &cpuInits, initErr: errors.New("boom")}}))
	require.NoError(t, m.RegisterMonitor(&fakeMemory{fakeBase: fakeBase{name: "memory_monitor", inits: &memInits}}))

	err := m.InitializeAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cpu_monitor")
	assert.Equal(t, 1, cpuInits)
	assert.Equal(t, 0, memInits)
}

func TestMonitorManager_InitializeAndCleanupAll(t *testing.T) {
	var inits int
	s := newTestSources()
	s.cpu.inits = &inits
	s.memory.inits = &inits
	m := s.manager()

	require.NoError(t, m.InitializeAll())
	assert.Equal(t, 2, inits)
	assert.NoError(t, m.CleanupAll())
}
