//go:build windows

package monitoring

import (
	"context"
	"fmt"

	"github.com/yusufpapurcu/wmi"
)

// LibreHardwareMonitor publishes its tree over WMI while it is running.
const lhmNamespace = `root\LibreHardwareMonitor`

type lhmHardware struct {
	Identifier string
	Name       string
	Parent     string
}

type lhmSensor struct {
	Name       string
	SensorType string
	Value      float32
	Parent     string
}

func newPlatformTemperatureMonitor(rules TemperatureRules) TemperatureMonitor {
	return NewHardwareTreeTemperatureMonitor(queryLibreHardwareMonitor, rules.Hardware)
}

func queryLibreHardwareMonitor(ctx context.Context) ([]HardwareNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hardware []lhmHardware
	if err := wmi.QueryNamespace("SELECT Identifier, Name, Parent FROM Hardware", &hardware, lhmNamespace); err != nil {
		return nil, fmt.Errorf("query %s hardware: %w", lhmNamespace, err)
	}

	var sensors []lhmSensor
	query := fmt.Sprintf("SELECT Name, SensorType, Value, Parent FROM Sensor WHERE SensorType = '%s'", SensorTypeTemperature)
	if err := wmi.QueryNamespace(query, &sensors, lhmNamespace); err != nil {
		return nil, fmt.Errorf("query %s sensors: %w", lhmNamespace, err)
	}

	hwRecords := make([]HardwareRecord, 0, len(hardware))
	for _, h := range hardware {
		hwRecords = append(hwRecords, HardwareRecord{Identifier: h.Identifier, Name: h.Name, Parent: h.Parent})
	}
	sensorRecords := make([]SensorRecord, 0, len(sensors))
	for _, s := range sensors {
		sensorRecords = append(sensorRecords, SensorRecord{
			Name:   s.Name,
			Type:   s.SensorType,
			Value:  float64(s.Value),
			Parent: s.Parent,
		})
	}

	return buildHardwareTree(hwRecords, sensorRecords), nil
}
