package monitoring

import (
	"encoding/json"
	"strings"
)

// Mode selects one of the fixed response shapes.
type Mode string

const (
	ModeMinimal Mode = "minstats"
	ModeFull    Mode = "fullstats"
	// ModeLegacy is the single shape served on /stats before the full/minimal split.
	ModeLegacy Mode = "stats"
)

// ParseMode accepts the route names and the short forms "min" and "full".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minstats", "min", "minimal":
		return ModeMinimal, true
	case "fullstats", "full":
		return ModeFull, true
	case "stats", "legacy":
		return ModeLegacy, true
	}
	return "", false
}

// Canonical temperature labels.
const (
	LabelCPU     = "cpu"
	LabelChipset = "chipset"
	LabelVRM     = "vrm"
	LabelNVMe    = "nvme"
	LabelPCIeX16 = "pciex16"
	LabelSystem  = "system"
	LabelVSoCMOS = "vsocmos"
)

var canonicalLabels = map[string]bool{
	LabelCPU:     true,
	LabelChipset: true,
	LabelVRM:     true,
	LabelNVMe:    true,
	LabelPCIeX16: true,
	LabelSystem:  true,
	LabelVSoCMOS: true,
}

// IsCanonicalLabel reports whether label belongs to the fixed output label set.
func IsCanonicalLabel(label string) bool {
	return canonicalLabels[label]
}

// TemperatureReading maps canonical labels to degrees Celsius.
type TemperatureReading map[string]float64

// UsageInfo is a raw byte-level usage sample for memory, swap or a filesystem.
type UsageInfo struct {
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// CPUFrequency is in MHz. It serializes as [current, min, max].
type CPUFrequency struct {
	Current float64
	Min     float64
	Max     float64
}

func (f CPUFrequency) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{f.Current, f.Min, f.Max})
}

func (f *CPUFrequency) UnmarshalJSON(data []byte) error {
	var v [3]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Current, f.Min, f.Max = v[0], v[1], v[2]
	return nil
}

// GPUSample is one device as reported by the GPU provider. Nil values were
// reported as not available by the device.
type GPUSample struct {
	Name        string `json:"name"`
	Index       int    `json:"index"`
	Temperature *int   `json:"temperature_C"`
	Utilization *int   `json:"utilization_percent"`
	MemoryUsed  *int   `json:"memory_used_MB"`
	MemoryTotal *int   `json:"memory_total_MB"`
}

type CPUStats struct {
	UsagePercent float64       `json:"usage_percent"`
	CPUCount     *int          `json:"cpu_count,omitempty"`
	CPUFreq      *CPUFrequency `json:"cpu_freq,omitempty"`
}

// UsageStats is the serialized form of a UsageInfo. The _gb fields are only
// set in the full shapes.
type UsageStats struct {
	TotalGB      *float64 `json:"total_gb,omitempty"`
	UsedGB       *float64 `json:"used_gb,omitempty"`
	FreeGB       *float64 `json:"free_gb,omitempty"`
	UsagePercent float64  `json:"usage_percent"`
}

// MetricSnapshot is the response body of every stats route.
type MetricSnapshot struct {
	CPU         *CPUStats          `json:"cpu,omitempty"`
	Temperature TemperatureReading `json:"temperature"`
	Memory      *UsageStats        `json:"memory,omitempty"`
	Swap        *UsageStats        `json:"swap,omitempty"`
	Disk        *UsageStats        `json:"disk,omitempty"`
	GPU         []GPUSample        `json:"gpu"`
	Uptime      string             `json:"uptime,omitempty"`
	BootTime    string             `json:"boot_time,omitempty"`
}
