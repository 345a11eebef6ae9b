package api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hwstats-agent/internal/monitoring"
)

type stubBase struct{ name string }

func (s stubBase) Initialize() error { return nil }
func (s stubBase) Cleanup() error    { return nil }
func (s stubBase) GetName() string   { return s.name }

type stubCPU struct {
	stubBase
	panics bool
}

func (s *stubCPU) GetCPUUsage(ctx context.Context) (float64, error) {
	if s.panics {
		panic("cpu adapter exploded")
	}
	return 23.46, nil
}
func (s *stubCPU) GetCPUCount(ctx context.Context) (int, error) { return 8, nil }
func (s *stubCPU) GetCPUFrequency(ctx context.Context) (*monitoring.CPUFrequency, error) {
	return &monitoring.CPUFrequency{Current: 3800, Max: 3800}, nil
}

type stubMemory struct{ stubBase }

func (s *stubMemory) GetVirtualMemory(ctx context.Context) (*monitoring.UsageInfo, error) {
	return &monitoring.UsageInfo{Total: 16 << 30, Used: 10 << 30, Free: 6 << 30, UsedPercent: 62.3}, nil
}
func (s *stubMemory) GetSwapMemory(ctx context.Context) (*monitoring.UsageInfo, error) {
	return &monitoring.UsageInfo{Total: 4 << 30, Used: 1 << 30, Free: 3 << 30, UsedPercent: 25}, nil
}

type stubDisk struct{ stubBase }

func (s *stubDisk) GetDiskUsage(ctx context.Context) (*monitoring.UsageInfo, error) {
	return &monitoring.UsageInfo{Total: 2147483648, Used: 536870912, Free: 1610612736, UsedPercent: 25}, nil
}

type stubTemperature struct{ stubBase }

func (s *stubTemperature) GetTemperatures(ctx context.Context) (monitoring.TemperatureReading, error) {
	return monitoring.NormalizeDriverGroups(
		[]monitoring.SensorGroup{{Source: "k10temp", Entries: []monitoring.SensorEntry{{Label: "Tctl", Value: 45.0}}}},
		monitoring.DefaultTemperatureRules().LinuxDrivers,
	), nil
}

type stubSystem struct{ stubBase }

func (s *stubSystem) GetBootTime(ctx context.Context) (time.Time, error) {
	return time.Now().Add(-time.Hour), nil
}

func (s *stubSystem) GetSystemUptime(ctx context.Context) (uint64, error) {
	return 3600, nil
}

func (s *stubSystem) GetCurrentPlatform() string {
	return "linux"
}

type stubGPUProvider struct {
	fail  bool
	calls atomic.Int32
}

func (s *stubGPUProvider) QueryGPUs(ctx context.Context) ([]monitoring.GPUSample, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errors.New("nvidia-smi: exit status 9")
	}
	temp, util, used, total := 48, 3, 512, 8192
	return []monitoring.GPUSample{{
		Name:        "NVIDIA GeForce RTX 3070",
		Index:       0,
		Temperature: &temp,
		Utilization: &util,
		MemoryUsed:  &used,
		MemoryTotal: &total,
	}}, nil
}

type testEnv struct {
	cpu       *stubCPU
	gpu       *stubGPUProvider
	assembler *monitoring.Assembler
}

func newTestEnv(t *testing.T, gpuFails bool) *testEnv {
	t.Helper()
	env := &testEnv{
		cpu: &stubCPU{stubBase: stubBase{name: "cpu_monitor"}},
		gpu: &stubGPUProvider{fail: gpuFails},
	}

	m := monitoring.NewMonitorManager()
	require.NoError(t, m.RegisterMonitor(env.cpu))
	require.NoError(t, m.RegisterMonitor(&stubMemory{stubBase{name: "memory_monitor"}}))
	require.NoError(t, m.RegisterMonitor(&stubDisk{stubBase{name: "disk_monitor"}}))
	require.NoError(t, m.RegisterMonitor(&stubTemperature{stubBase{name: "temperature_monitor"}}))
	require.NoError(t, m.RegisterMonitor(monitoring.NewGPUMonitor(env.gpu, monitoring.NewSourceAvailability(monitoring.SourceGPU, true))))
	require.NoError(t, m.RegisterMonitor(&stubSystem{stubBase{name: "system_info_provider"}}))

	a, err := monitoring.NewAssembler(m)
	require.NoError(t, err)
	env.assembler = a
	return env
}
