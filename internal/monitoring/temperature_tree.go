package monitoring

import "sort"

// SensorTypeTemperature is the hardware-monitor sensor type of temperature sensors.
const SensorTypeTemperature = "Temperature"

type HardwareSensor struct {
	Name  string
	Type  string
	Value float64
}

// HardwareNode is one device of a hardware-monitor tree, e.g. a motherboard
// whose SuperIO chip is a sub-node carrying the board temperature sensors.
type HardwareNode struct {
	Identifier  string
	Name        string
	Sensors     []HardwareSensor
	SubHardware []HardwareNode
}

// HardwareRecord and SensorRecord are the flat rows a hardware monitor
// publishes; Parent is the identifier of the owning hardware.
type HardwareRecord struct {
	Identifier string
	Name       string
	Parent     string
}

type SensorRecord struct {
	Name   string
	Type   string
	Value  float64
	Parent string
}

// buildHardwareTree links flat rows into a tree. Nodes whose parent is empty
// or unknown become roots; siblings are ordered by identifier.
func buildHardwareTree(hardware []HardwareRecord, sensors []SensorRecord) []HardwareNode {
	known := make(map[string]bool, len(hardware))
	for _, h := range hardware {
		known[h.Identifier] = true
	}

	children := make(map[string][]HardwareRecord)
	var roots []HardwareRecord
	for _, h := range hardware {
		if h.Parent == "" || !known[h.Parent] || h.Parent == h.Identifier {
			roots = append(roots, h)
			continue
		}
		children[h.Parent] = append(children[h.Parent], h)
	}

	sensorsByParent := make(map[string][]HardwareSensor)
	for _, s := range sensors {
		sensorsByParent[s.Parent] = append(sensorsByParent[s.Parent], HardwareSensor{
			Name:  s.Name,
			Type:  s.Type,
			Value: s.Value,
		})
	}

	var build func(rec HardwareRecord, depth int) HardwareNode
	build = func(rec HardwareRecord, depth int) HardwareNode {
		node := HardwareNode{
			Identifier: rec.Identifier,
			Name:       rec.Name,
			Sensors:    sensorsByParent[rec.Identifier],
		}
		// hardware monitors nest at most a few levels; the bound guards cycles
		if depth >= 8 {
			return node
		}
		kids := sortedRecords(children[rec.Identifier])
		for _, k := range kids {
			node.SubHardware = append(node.SubHardware, build(k, depth+1))
		}
		return node
	}

	nodes := make([]HardwareNode, 0, len(roots))
	for _, r := range sortedRecords(roots) {
		nodes = append(nodes, build(r, 0))
	}
	return nodes
}

func sortedRecords(recs []HardwareRecord) []HardwareRecord {
	out := append([]HardwareRecord(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}
