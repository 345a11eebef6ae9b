//go:build !windows

package monitoring

func newPlatformTemperatureMonitor(rules TemperatureRules) TemperatureMonitor {
	return NewSensorsTemperatureMonitor(nil, rules.LinuxDrivers)
}
