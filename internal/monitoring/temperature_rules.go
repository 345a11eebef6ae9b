package monitoring

import (
	"fmt"
	"sort"
	"strings"
)

// SensorEntry is one raw (label, value) pair from a platform driver.
type SensorEntry struct {
	Label string
	Value float64
}

// SensorGroup holds the entries of one kernel driver in enumeration order.
type SensorGroup struct {
	Source  string
	Entries []SensorEntry
}

// PositionRule maps the entry at Index of a driver group to Label.
type PositionRule struct {
	Index int    `json:"index" yaml:"index"`
	Label string `json:"label" yaml:"label"`
}

// DriverRule matches a Linux hwmon driver by exact name.
type DriverRule struct {
	Driver    string         `json:"driver" yaml:"driver"`
	Positions []PositionRule `json:"positions" yaml:"positions"`
}

// SensorScope selects which sensors of a matched hardware node are examined.
type SensorScope string

const (
	ScopeSelf        SensorScope = "self"
	ScopeSubHardware SensorScope = "subhardware"
)

// SensorLabelRule maps a sensor name to a canonical label.
type SensorLabelRule struct {
	Sensor string `json:"sensor" yaml:"sensor"`
	Label  string `json:"label" yaml:"label"`
}

// HardwareRule matches hardware-monitor nodes whose name contains NameContains.
type HardwareRule struct {
	NameContains string            `json:"name_contains" yaml:"name_contains"`
	Scope        SensorScope       `json:"scope" yaml:"scope"`
	Sensors      []SensorLabelRule `json:"sensors" yaml:"sensors"`
}

// TemperatureRules is the full, swappable mapping table for both platforms.
type TemperatureRules struct {
	LinuxDrivers []DriverRule   `json:"linux_drivers" yaml:"linux_drivers"`
	Hardware     []HardwareRule `json:"hardware" yaml:"hardware"`
}

// DefaultTemperatureRules returns the mapping for the reference machines:
// AMD k10temp / Raspberry Pi cpu_thermal, a Gigabyte B650 board and a
// Samsung 990 NVMe drive.
//
// gigabyte_wmi exposes unlabeled temp1..temp6; positions 1 and 4 follow the
// driver's enumeration order, which the kernel does not guarantee.
func DefaultTemperatureRules() TemperatureRules {
	return TemperatureRules{
		LinuxDrivers: []DriverRule{
			{Driver: "k10temp", Positions: []PositionRule{{Index: 0, Label: LabelCPU}}},
			{Driver: "cpu_thermal", Positions: []PositionRule{{Index: 0, Label: LabelCPU}}},
			{Driver: "gigabyte_wmi", Positions: []PositionRule{
				{Index: 1, Label: LabelChipset},
				{Index: 4, Label: LabelVRM},
			}},
			{Driver: "nvme", Positions: []PositionRule{{Index: 0, Label: LabelNVMe}}},
		},
		Hardware: []HardwareRule{
			{
				NameContains: "Gigabyte B650",
				Scope:        ScopeSubHardware,
				Sensors: []SensorLabelRule{
					{Sensor: "Temperature #1", Label: LabelSystem},
					{Sensor: "Temperature #2", Label: LabelChipset},
					{Sensor: "Temperature #3", Label: LabelCPU},
					{Sensor: "Temperature #4", Label: LabelPCIeX16},
					{Sensor: "Temperature #5", Label: LabelVRM},
					{Sensor: "Temperature #6", Label: LabelVSoCMOS},
				},
			},
			{
				NameContains: "Samsung SSD 990",
				Scope:        ScopeSelf,
				Sensors: []SensorLabelRule{
					{Sensor: "Temperature", Label: LabelNVMe},
				},
			},
		},
	}
}

// Validate rejects rules that could emit a label outside the canonical set.
func (r TemperatureRules) Validate() error {
	for _, d := range r.LinuxDrivers {
		if d.Driver == "" {
			return fmt.Errorf("linux driver rule without driver name")
		}
		for _, p := range d.Positions {
			if p.Index < 0 {
				return fmt.Errorf("driver %s: negative index %d", d.Driver, p.Index)
			}
			if !IsCanonicalLabel(p.Label) {
				return fmt.Errorf("driver %s: unknown label %q", d.Driver, p.Label)
			}
		}
	}
	for _, h := range r.Hardware {
		if h.NameContains == "" {
			return fmt.Errorf("hardware rule without name_contains")
		}
		if h.Scope != ScopeSelf && h.Scope != ScopeSubHardware {
			return fmt.Errorf("hardware %s: unknown scope %q", h.NameContains, h.Scope)
		}
		for _, s := range h.Sensors {
			if !IsCanonicalLabel(s.Label) {
				return fmt.Errorf("hardware %s: unknown label %q", h.NameContains, s.Label)
			}
		}
	}
	return nil
}

// NormalizeDriverGroups applies driver rules to Linux sensor groups. Groups
// and positions without a rule are dropped. The first value written for a
// label wins.
func NormalizeDriverGroups(groups []SensorGroup, rules []DriverRule) TemperatureReading {
	byDriver := make(map[string]DriverRule, len(rules))
	for _, r := range rules {
		if _, dup := byDriver[r.Driver]; !dup {
			byDriver[r.Driver] = r
		}
	}

	out := TemperatureReading{}
	for _, g := range groups {
		rule, ok := byDriver[g.Source]
		if !ok {
			continue
		}
		for _, p := range rule.Positions {
			if p.Index >= len(g.Entries) {
				continue
			}
			setOnce(out, p.Label, g.Entries[p.Index].Value)
		}
	}
	return out
}

// NormalizeHardwareTree applies hardware rules to a hardware-monitor tree,
// visiting top-level nodes in order. The first value written for a label wins.
func NormalizeHardwareTree(nodes []HardwareNode, rules []HardwareRule) TemperatureReading {
	out := TemperatureReading{}
	for _, node := range nodes {
		for _, rule := range rules {
			if !strings.Contains(node.Name, rule.NameContains) {
				continue
			}
			labels := make(map[string]string, len(rule.Sensors))
			for _, s := range rule.Sensors {
				labels[s.Sensor] = s.Label
			}
			for _, sensor := range scopedSensors(node, rule.Scope) {
				if sensor.Type != "" && sensor.Type != SensorTypeTemperature {
					continue
				}
				if label, ok := labels[sensor.Name]; ok {
					setOnce(out, label, sensor.Value)
				}
			}
		}
	}
	return out
}

func scopedSensors(node HardwareNode, scope SensorScope) []HardwareSensor {
	if scope == ScopeSelf {
		return node.Sensors
	}
	var sensors []HardwareSensor
	for _, sub := range node.SubHardware {
		sensors = append(sensors, sub.Sensors...)
	}
	return sensors
}

func setOnce(r TemperatureReading, label string, value float64) {
	if _, exists := r[label]; !exists {
		r[label] = value
	}
}

// driverNames returns rule driver names, longest first, for prefix matching.
func driverNames(rules []DriverRule) []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Driver)
	}
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return names
}

// splitSensorKey splits a gopsutil sensor key ("k10temp_tctl",
// "gigabyte_wmi") into driver and label. Known drivers may contain
// underscores, so they are matched as prefixes first.
func splitSensorKey(key string, drivers []string) (string, string) {
	for _, d := range drivers {
		if key == d {
			return d, ""
		}
		if strings.HasPrefix(key, d+"_") {
			return d, key[len(d)+1:]
		}
	}
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}
