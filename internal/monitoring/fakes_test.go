package monitoring

import (
	"context"
	"sync/atomic"
	"time"
)

type fakeBase struct {
	name    string
	initErr error
	inits   *int
}

func (f fakeBase) Initialize() error {
	if f.inits != nil {
		*f.inits++
	}
	return f.initErr
}
func (f fakeBase) Cleanup() error  { return nil }
func (f fakeBase) GetName() string { return f.name }

type fakeCPU struct {
	fakeBase
	usage    float64
	count    int
	freq     *CPUFrequency
	usageErr error
	countErr error
	panicMsg string
}

func (f *fakeCPU) GetCPUUsage(ctx context.Context) (float64, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.usage, f.usageErr
}

func (f *fakeCPU) GetCPUCount(ctx context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeCPU) GetCPUFrequency(ctx context.Context) (*CPUFrequency, error) {
	return f.freq, nil
}

type fakeMemory struct {
	fakeBase
	virtual *UsageInfo
	swap    *UsageInfo
	err     error
}

func (f *fakeMemory) GetVirtualMemory(ctx context.Context) (*UsageInfo, error) {
	return f.virtual, f.err
}

func (f *fakeMemory) GetSwapMemory(ctx context.Context) (*UsageInfo, error) {
	return f.swap, f.err
}

type fakeDisk struct {
	fakeBase
	usage *UsageInfo
	err   error
}

func (f *fakeDisk) GetDiskUsage(ctx context.Context) (*UsageInfo, error) {
	return f.usage, f.err
}

type fakeTemperature struct {
	fakeBase
	reading TemperatureReading
	err     error
}

func (f *fakeTemperature) GetTemperatures(ctx context.Context) (TemperatureReading, error) {
	return f.reading, f.err
}

type fakeSystem struct {
	fakeBase
	uptime   uint64
	boot     time.Time
	platform string
	err      error
}

func (f *fakeSystem) GetBootTime(ctx context.Context) (time.Time, error) {
	return f.boot, f.err
}

func (f *fakeSystem) GetSystemUptime(ctx context.Context) (uint64, error) {
	return f.uptime, f.err
}

func (f *fakeSystem) GetCurrentPlatform() string {
	if f.platform == "" {
		return "linux"
	}
	return f.platform
}

// fakeGPUProvider counts calls and fails from the failFrom-th call on (1-based, 0 = never).
type fakeGPUProvider struct {
	samples  []GPUSample
	err      error
	failFrom int32
	calls    atomic.Int32
}

func (f *fakeGPUProvider) QueryGPUs(ctx context.Context) ([]GPUSample, error) {
	n := f.calls.Add(1)
	if f.failFrom > 0 && n >= f.failFrom {
		return nil, f.err
	}
	return f.samples, nil
}

func intPtr(v int) *int { return &v }

const gib = 1024 * 1024 * 1024

type testSources struct {
	cpu         *fakeCPU
	memory      *fakeMemory
	disk        *fakeDisk
	temperature *fakeTemperature
	system      *fakeSystem
	gpuProvider *fakeGPUProvider
	gpuLatch    *SourceAvailability
}

func newTestSources() *testSources {
	return &testSources{
		cpu: &fakeCPU{
			fakeBase: fakeBase{name: "cpu_monitor"},
			usage:    12.34,
			count:    16,
			freq:     &CPUFrequency{Current: 4200, Min: 0, Max: 4200},
		},
		memory: &fakeMemory{
			fakeBase: fakeBase{name: "memory_monitor"},
			virtual:  &UsageInfo{Total: 32 * gib, Used: 18 * gib, Free: 12 * gib, UsedPercent: 62.3},
			swap:     &UsageInfo{Total: 2 * gib, Used: gib / 2, Free: 3 * gib / 2, UsedPercent: 25},
		},
		disk: &fakeDisk{
			fakeBase: fakeBase{name: "disk_monitor"},
			usage:    &UsageInfo{Total: 2147483648, Used: 1073741824, Free: 1073741824, UsedPercent: 50},
		},
		temperature: &fakeTemperature{
			fakeBase: fakeBase{name: "temperature_monitor"},
			reading:  TemperatureReading{LabelCPU: 45.0, LabelNVMe: 38.9},
		},
		system: &fakeSystem{
			fakeBase: fakeBase{name: "system_info_provider"},
			uptime:   90061,
			boot:     time.Date(2026, 10, 18, 7, 0, 0, 0, time.Local),
		},
		gpuProvider: &fakeGPUProvider{
			samples: []GPUSample{{
				Name:        "NVIDIA GeForce RTX 4090",
				Index:       0,
				Temperature: intPtr(51),
				Utilization: intPtr(7),
				MemoryUsed:  intPtr(1024),
				MemoryTotal: intPtr(24564),
			}},
		},
		gpuLatch: NewSourceAvailability(SourceGPU, true),
	}
}

func (s *testSources) manager() MonitorManager {
	m := NewMonitorManager()
	_ = m.RegisterMonitor(s.cpu)
	_ = m.RegisterMonitor(s.memory)
	_ = m.RegisterMonitor(s.disk)
	_ = m.RegisterMonitor(s.temperature)
	_ = m.RegisterMonitor(NewGPUMonitor(s.gpuProvider, s.gpuLatch))
	_ = m.RegisterMonitor(s.system)
	return m
}
