package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hwstats-agent/internal/monitoring"
)

const metricsNamespace = "hwstats"

// scrapeTimeout bounds one collection; the CPU window alone takes a second.
const scrapeTimeout = 10 * time.Second

// SnapshotCollector samples a full snapshot on every scrape and exposes it
// as gauges. Absent sources produce no samples.
type SnapshotCollector struct {
	source SnapshotSource

	cpuUsage     *prometheus.Desc
	cpuCount     *prometheus.Desc
	cpuFrequency *prometheus.Desc
	usagePercent *prometheus.Desc
	usageGB      *prometheus.Desc
	temperature  *prometheus.Desc
	gpuTemp      *prometheus.Desc
	gpuUtil      *prometheus.Desc
	gpuMemUsed   *prometheus.Desc
	gpuMemTotal  *prometheus.Desc
	gpuAvailable *prometheus.Desc
}

func NewSnapshotCollector(source SnapshotSource) *SnapshotCollector {
	gpuLabels := []string{"index", "name"}
	return &SnapshotCollector{
		source: source,
		cpuUsage: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cpu", "usage_percent"),
			"Total CPU usage over a one-second window.", nil, nil),
		cpuCount: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cpu", "count"),
			"Number of logical CPUs.", nil, nil),
		cpuFrequency: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "cpu", "frequency_mhz"),
			"CPU frequency in MHz.", []string{"bound"}, nil),
		usagePercent: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "usage_percent"),
			"Used share of memory, swap or the monitored filesystem.", []string{"resource"}, nil),
		usageGB: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "usage_gigabytes"),
			"Total, used and free GiB of memory, swap or the monitored filesystem.", []string{"resource", "kind"}, nil),
		temperature: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "temperature_celsius"),
			"Normalized hardware temperature.", []string{"sensor"}, nil),
		gpuTemp: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "gpu", "temperature_celsius"),
			"GPU core temperature.", gpuLabels, nil),
		gpuUtil: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "gpu", "utilization_percent"),
			"GPU utilization.", gpuLabels, nil),
		gpuMemUsed: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "gpu", "memory_used_megabytes"),
			"GPU memory in use.", gpuLabels, nil),
		gpuMemTotal: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "gpu", "memory_total_megabytes"),
			"GPU memory installed.", gpuLabels, nil),
		gpuAvailable: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "gpu", "available"),
			"1 while the GPU source is available, 0 once it has been disabled.", nil, nil),
	}
}

func (c *SnapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuUsage
	ch <- c.cpuCount
	ch <- c.cpuFrequency
	ch <- c.usagePercent
	ch <- c.usageGB
	ch <- c.temperature
	ch <- c.gpuTemp
	ch <- c.gpuUtil
	ch <- c.gpuMemUsed
	ch <- c.gpuMemTotal
	ch <- c.gpuAvailable
}

func (c *SnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	snap := c.source.Snapshot(ctx, monitoring.ModeFull)

	if cpu := snap.CPU; cpu != nil {
		ch <- gauge(c.cpuUsage, cpu.UsagePercent)
		if cpu.CPUCount != nil {
			ch <- gauge(c.cpuCount, float64(*cpu.CPUCount))
		}
		if f := cpu.CPUFreq; f != nil {
			ch <- gauge(c.cpuFrequency, f.Current, "current")
			ch <- gauge(c.cpuFrequency, f.Min, "min")
			ch <- gauge(c.cpuFrequency, f.Max, "max")
		}
	}

	c.collectUsage(ch, monitoring.SourceMemory, snap.Memory)
	c.collectUsage(ch, monitoring.SourceSwap, snap.Swap)
	c.collectUsage(ch, monitoring.SourceDisk, snap.Disk)

	for label, value := range snap.Temperature {
		ch <- gauge(c.temperature, value, label)
	}

	for _, g := range snap.GPU {
		index := strconv.Itoa(g.Index)
		collectOptional(ch, c.gpuTemp, g.Temperature, index, g.Name)
		collectOptional(ch, c.gpuUtil, g.Utilization, index, g.Name)
		collectOptional(ch, c.gpuMemUsed, g.MemoryUsed, index, g.Name)
		collectOptional(ch, c.gpuMemTotal, g.MemoryTotal, index, g.Name)
	}

	available := 0.0
	if c.source.GPUAvailable() {
		available = 1
	}
	ch <- gauge(c.gpuAvailable, available)
}

func (c *SnapshotCollector) collectUsage(ch chan<- prometheus.Metric, resource string, stats *monitoring.UsageStats) {
	if stats == nil {
		return
	}
	ch <- gauge(c.usagePercent, stats.UsagePercent, resource)
	for kind, v := range map[string]*float64{"total": stats.TotalGB, "used": stats.UsedGB, "free": stats.FreeGB} {
		if v != nil {
			ch <- gauge(c.usageGB, *v, resource, kind)
		}
	}
}

func collectOptional(ch chan<- prometheus.Metric, desc *prometheus.Desc, v *int, labels ...string) {
	if v != nil {
		ch <- gauge(desc, float64(*v), labels...)
	}
}

func gauge(desc *prometheus.Desc, value float64, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
}

// NewMetricsHandler serves the collector from a dedicated registry, so the
// exposition carries no process or Go runtime metrics.
func NewMetricsHandler(source SnapshotSource) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewSnapshotCollector(source))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// RegisterMetricsRoute mounts the Prometheus endpoint on /metrics.
func RegisterMetricsRoute(r *mux.Router, source SnapshotSource) {
	r.Handle("/metrics", NewMetricsHandler(source)).Methods("GET")
}
