package monitoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCPUFreq lays out a cpufreq directory under root/devices/system/cpu/<sub>.
func writeCPUFreq(t *testing.T, root, sub string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "devices", "system", "cpu", sub)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, value := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644))
	}
}

func TestGetCPUFrequency_ReadsSysfs(t *testing.T) {
	root := t.TempDir()
	writeCPUFreq(t, root, "cpufreq/policy0", map[string]string{
		"scaling_cur_freq": "1800000",
		"cpuinfo_min_freq": "400000",
		"cpuinfo_max_freq": "5000000",
	})
	t.Setenv("HOST_SYS", root)

	freq, err := NewCPUMonitor().GetCPUFrequency(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &CPUFrequency{Current: 1800, Min: 400, Max: 5000}, freq)
}

func TestGetCPUFrequency_AveragesCurrentAcrossPolicies(t *testing.T) {
	root := t.TempDir()
	writeCPUFreq(t, root, "cpufreq/policy0", map[string]string{
		"scaling_cur_freq": "1000000",
		"cpuinfo_min_freq": "800000",
		"cpuinfo_max_freq": "3000000",
	})
	writeCPUFreq(t, root, "cpufreq/policy4", map[string]string{
		"scaling_cur_freq": "3000000",
		"cpuinfo_min_freq": "400000",
		"cpuinfo_max_freq": "4500000",
	})
	t.Setenv("HOST_SYS", root)

	freq, err := NewCPUMonitor().GetCPUFrequency(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &CPUFrequency{Current: 2000, Min: 400, Max: 4500}, freq)
}

func TestReadSysfsFrequency_PerCPULayout(t *testing.T) {
	root := t.TempDir()
	writeCPUFreq(t, root, "cpu0/cpufreq", map[string]string{
		"scaling_cur_freq": "2400000",
		"scaling_min_freq": "1200000",
		"scaling_max_freq": "3600000",
	})
	ctx := context.WithValue(context.Background(), common.EnvKey, common.EnvMap{common.HostSysEnvKey: root})

	freq, ok, err := readSysfsFrequency(ctx)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, &CPUFrequency{Current: 2400, Min: 1200, Max: 3600}, freq)
}

func TestReadSysfsFrequency_MissingTreeFallsBack(t *testing.T) {
	t.Setenv("HOST_SYS", t.TempDir())

	freq, ok, err := readSysfsFrequency(context.Background())

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, freq)
}

func TestReadSysfsFrequency_NoCurrentValue(t *testing.T) {
	root := t.TempDir()
	writeCPUFreq(t, root, "cpufreq/policy0", map[string]string{"cpuinfo_max_freq": "5000000"})
	t.Setenv("HOST_SYS", root)

	_, ok, err := readSysfsFrequency(context.Background())

	assert.True(t, ok)
	assert.Error(t, err)
}
