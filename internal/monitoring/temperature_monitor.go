package monitoring

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"

	"hwstats-agent/internal/logging"
)

// NewTemperatureMonitor returns the monitor for the current platform:
// LibreHardwareMonitor on Windows, hwmon sensors everywhere else.
func NewTemperatureMonitor(rules TemperatureRules) TemperatureMonitor {
	return newPlatformTemperatureMonitor(rules)
}

type sensorReader func(ctx context.Context) ([]host.TemperatureStat, error)

// sensorsTemperatureMonitor normalizes gopsutil hwmon readings with driver rules.
type sensorsTemperatureMonitor struct {
	name  string
	read  sensorReader
	rules []DriverRule
}

// NewSensorsTemperatureMonitor builds a driver-rule monitor on top of read.
func NewSensorsTemperatureMonitor(read sensorReader, rules []DriverRule) TemperatureMonitor {
	if read == nil {
		read = host.SensorsTemperaturesWithContext
	}
	return &sensorsTemperatureMonitor{
		name:  "temperature_monitor",
		read:  read,
		rules: rules,
	}
}

func (s *sensorsTemperatureMonitor) Initialize() error { return nil }
func (s *sensorsTemperatureMonitor) Cleanup() error    { return nil }
func (s *sensorsTemperatureMonitor) GetName() string   { return s.name }

func (s *sensorsTemperatureMonitor) GetTemperatures(ctx context.Context) (TemperatureReading, error) {
	stats, err := s.read(ctx)
	if err != nil {
		// gopsutil returns partial results together with per-file warnings
		if len(stats) == 0 {
			return nil, err
		}
		logging.LogDebug("Partial sensor read", "error", err, "sensors", len(stats))
	}

	groups := groupSensorStats(stats, driverNames(s.rules))
	return NormalizeDriverGroups(groups, s.rules), nil
}

// groupSensorStats regroups flat sensor keys by driver, keeping first-seen
// driver order and per-driver enumeration order.
func groupSensorStats(stats []host.TemperatureStat, drivers []string) []SensorGroup {
	index := make(map[string]int)
	var groups []SensorGroup
	for _, st := range stats {
		driver, label := splitSensorKey(st.SensorKey, drivers)
		i, ok := index[driver]
		if !ok {
			i = len(groups)
			index[driver] = i
			groups = append(groups, SensorGroup{Source: driver})
		}
		groups[i].Entries = append(groups[i].Entries, SensorEntry{Label: label, Value: st.Temperature})
	}
	return groups
}

type treeReader func(ctx context.Context) ([]HardwareNode, error)

// hardwareTreeTemperatureMonitor normalizes a hardware-monitor tree with hardware rules.
type hardwareTreeTemperatureMonitor struct {
	name  string
	read  treeReader
	rules []HardwareRule
}

// NewHardwareTreeTemperatureMonitor builds a hardware-rule monitor on top of read.
func NewHardwareTreeTemperatureMonitor(read treeReader, rules []HardwareRule) TemperatureMonitor {
	return &hardwareTreeTemperatureMonitor{
		name:  "temperature_monitor",
		read:  read,
		rules: rules,
	}
}

func (h *hardwareTreeTemperatureMonitor) Initialize() error { return nil }
func (h *hardwareTreeTemperatureMonitor) Cleanup() error    { return nil }
func (h *hardwareTreeTemperatureMonitor) GetName() string   { return h.name }

func (h *hardwareTreeTemperatureMonitor) GetTemperatures(ctx context.Context) (TemperatureReading, error) {
	nodes, err := h.read(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeHardwareTree(nodes, h.rules), nil
}
