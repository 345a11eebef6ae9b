package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCollector(t *testing.T) {
	c := NewSnapshotCollector(newTestEnv(t, false).assembler)

	expected := `
# HELP hwstats_cpu_usage_percent Total CPU usage over a one-second window.
# TYPE hwstats_cpu_usage_percent gauge
hwstats_cpu_usage_percent 23.5
# HELP hwstats_gpu_available 1 while the GPU source is available, 0 once it has been disabled.
# TYPE hwstats_gpu_available gauge
hwstats_gpu_available 1
# HELP hwstats_temperature_celsius Normalized hardware temperature.
# TYPE hwstats_temperature_celsius gauge
hwstats_temperature_celsius{sensor="cpu"} 45
# HELP hwstats_usage_gigabytes Total, used and free GiB of memory, swap or the monitored filesystem.
# TYPE hwstats_usage_gigabytes gauge
hwstats_usage_gigabytes{kind="free",resource="disk"} 1.5
hwstats_usage_gigabytes{kind="free",resource="memory"} 6
hwstats_usage_gigabytes{kind="free",resource="swap"} 3
hwstats_usage_gigabytes{kind="total",resource="disk"} 2
hwstats_usage_gigabytes{kind="total",resource="memory"} 16
hwstats_usage_gigabytes{kind="total",resource="swap"} 4
hwstats_usage_gigabytes{kind="used",resource="disk"} 0.5
hwstats_usage_gigabytes{kind="used",resource="memory"} 10
hwstats_usage_gigabytes{kind="used",resource="swap"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"hwstats_cpu_usage_percent",
		"hwstats_gpu_available",
		"hwstats_temperature_celsius",
		"hwstats_usage_gigabytes",
	)
	assert.NoError(t, err)
}

func TestSnapshotCollector_GPUDisabled(t *testing.T) {
	c := NewSnapshotCollector(newTestEnv(t, true).assembler)

	expected := `
# HELP hwstats_gpu_available 1 while the GPU source is available, 0 once it has been disabled.
# TYPE hwstats_gpu_available gauge
hwstats_gpu_available 0
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "hwstats_gpu_available"))
	assert.Equal(t, 0, testutil.CollectAndCount(c, "hwstats_gpu_temperature_celsius"))
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(newTestEnv(t, false))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hwstats_gpu_temperature_celsius{index="0",name="NVIDIA GeForce RTX 3070"} 48`)
	assert.Contains(t, string(body), `hwstats_cpu_frequency_mhz{bound="current"} 3800`)
	assert.NotContains(t, string(body), "go_goroutines")
}
