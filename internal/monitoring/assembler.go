package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hwstats-agent/internal/logging"
)

// SnapshotObserver receives every assembled snapshot together with the context
// of the request that produced it. It runs on the requesting goroutine.
type SnapshotObserver func(ctx context.Context, mode Mode, snapshot *MetricSnapshot)

// Assembler composes adapter readings into one of the fixed response shapes.
type Assembler struct {
	cpu         CPUMonitor
	memory      MemoryMonitor
	disk        DiskMonitor
	temperature TemperatureMonitor
	gpu         GPUMonitor
	system      SystemInfoProvider

	mu        sync.RWMutex
	observers []SnapshotObserver
}

// NewAssembler takes its sources from a manager with every role registered.
func NewAssembler(m MonitorManager) (*Assembler, error) {
	a := &Assembler{
		cpu:         m.GetCPUMonitor(),
		memory:      m.GetMemoryMonitor(),
		disk:        m.GetDiskMonitor(),
		temperature: m.GetTemperatureMonitor(),
		gpu:         m.GetGPUMonitor(),
		system:      m.GetSystemInfoProvider(),
	}

	var missing []error
	if a.cpu == nil {
		missing = append(missing, errors.New("cpu monitor"))
	}
	if a.memory == nil {
		missing = append(missing, errors.New("memory monitor"))
	}
	if a.disk == nil {
		missing = append(missing, errors.New("disk monitor"))
	}
	if a.temperature == nil {
		missing = append(missing, errors.New("temperature monitor"))
	}
	if a.gpu == nil {
		missing = append(missing, errors.New("gpu monitor"))
	}
	if a.system == nil {
		missing = append(missing, errors.New("system info provider"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("assembler is missing sources: %w", errors.Join(missing...))
	}
	return a, nil
}

// Subscribe registers an observer for every subsequent snapshot.
func (a *Assembler) Subscribe(obs SnapshotObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, obs)
}

// GPUAvailable reports the GPU latch state.
func (a *Assembler) GPUAvailable() bool {
	return a.gpu.Available()
}

// Platform names the host operating system.
func (a *Assembler) Platform() string {
	return a.system.GetCurrentPlatform()
}

// Snapshot samples every source the mode needs and shapes the result. Absent
// sources degrade the snapshot; they never fail it.
func (a *Assembler) Snapshot(ctx context.Context, mode Mode) *MetricSnapshot {
	detailed := mode == ModeFull || mode == ModeLegacy
	snap := &MetricSnapshot{}

	snap.CPU = a.cpuStats(ctx, detailed)

	temps := safeRead(SourceTemperature, func() (TemperatureReading, error) {
		return a.temperature.GetTemperatures(ctx)
	})
	if v, ok := temps.Get(); ok && v != nil {
		snap.Temperature = v
	} else {
		a.logAbsent(SourceTemperature, temps.Err())
		snap.Temperature = TemperatureReading{}
	}

	memory := safeRead(SourceMemory, func() (*UsageInfo, error) {
		return a.memory.GetVirtualMemory(ctx)
	})
	snap.Memory = a.usageStats(SourceMemory, memory, detailed)

	if mode != ModeLegacy {
		swap := safeRead(SourceSwap, func() (*UsageInfo, error) {
			return a.memory.GetSwapMemory(ctx)
		})
		snap.Swap = a.usageStats(SourceSwap, swap, detailed)
	}

	if detailed {
		disk := safeRead(SourceDisk, func() (*UsageInfo, error) {
			return a.disk.GetDiskUsage(ctx)
		})
		snap.Disk = a.usageStats(SourceDisk, disk, true)
	}

	gpus := safeRead(SourceGPU, func() ([]GPUSample, error) {
		return a.gpu.GetGPUSamples(ctx)
	})
	if v, ok := gpus.Get(); ok {
		snap.GPU = v
	} else {
		if !errors.Is(gpus.Err(), ErrSourceDisabled) {
			a.logAbsent(SourceGPU, gpus.Err())
		}
		snap.GPU = []GPUSample{}
	}

	if mode == ModeFull {
		a.fillUptime(ctx, snap)
	}

	a.notify(ctx, mode, snap)
	return snap
}

func (a *Assembler) cpuStats(ctx context.Context, detailed bool) *CPUStats {
	usage := safeRead(SourceCPU, func() (float64, error) {
		return a.cpu.GetCPUUsage(ctx)
	})
	v, ok := usage.Get()
	if !ok {
		a.logAbsent(SourceCPU, usage.Err())
		return nil
	}

	stats := &CPUStats{UsagePercent: roundTo(v, 1)}
	if !detailed {
		return stats
	}

	count := safeRead(SourceCPU, func() (int, error) {
		return a.cpu.GetCPUCount(ctx)
	})
	if n, ok := count.Get(); ok {
		stats.CPUCount = &n
	} else {
		a.logAbsent(SourceCPU, count.Err())
	}

	freq := safeRead(SourceCPU, func() (*CPUFrequency, error) {
		return a.cpu.GetCPUFrequency(ctx)
	})
	if f, ok := freq.Get(); ok && f != nil {
		stats.CPUFreq = f
	} else {
		a.logAbsent(SourceCPU, freq.Err())
	}
	return stats
}

func (a *Assembler) usageStats(source string, r Reading[*UsageInfo], detailed bool) *UsageStats {
	info, ok := r.Get()
	if !ok || info == nil {
		a.logAbsent(source, r.Err())
		return nil
	}

	stats := &UsageStats{UsagePercent: roundTo(info.UsedPercent, 1)}
	if detailed {
		total, used, free := BytesToGB(info.Total), BytesToGB(info.Used), BytesToGB(info.Free)
		stats.TotalGB = &total
		stats.UsedGB = &used
		stats.FreeGB = &free
	}
	return stats
}

func (a *Assembler) fillUptime(ctx context.Context, snap *MetricSnapshot) {
	uptime := safeRead(SourceUptime, func() (uint64, error) {
		return a.system.GetSystemUptime(ctx)
	})
	if v, ok := uptime.Get(); ok {
		snap.Uptime = FormatUptime(v)
	} else {
		a.logAbsent(SourceUptime, uptime.Err())
	}

	boot := safeRead(SourceUptime, func() (time.Time, error) {
		return a.system.GetBootTime(ctx)
	})
	if v, ok := boot.Get(); ok {
		snap.BootTime = FormatBootTime(v)
	} else {
		a.logAbsent(SourceUptime, boot.Err())
	}
}

func (a *Assembler) logAbsent(source string, err error) {
	if err == nil {
		return
	}
	logging.LogWarn("Source omitted from snapshot", "source", source, "error", err)
}

func (a *Assembler) notify(ctx context.Context, mode Mode, snap *MetricSnapshot) {
	a.mu.RLock()
	observers := append([]SnapshotObserver(nil), a.observers...)
	a.mu.RUnlock()

	for _, obs := range observers {
		obs(ctx, mode, snap)
	}
}
