package monitoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/common"
)

// hostSys resolves a path under the sys mount the same way gopsutil does:
// a context EnvMap wins over the HOST_SYS variable, which wins over /sys.
func hostSys(ctx context.Context, parts ...string) string {
	root := os.Getenv(string(common.HostSysEnvKey))
	if env, ok := ctx.Value(common.EnvKey).(common.EnvMap); ok && env[common.HostSysEnvKey] != "" {
		root = env[common.HostSysEnvKey]
	}
	if root == "" {
		root = "/sys"
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

// cpufreqDirs lists one directory per cpufreq policy, falling back to the
// per-CPU layout used by older kernels.
func cpufreqDirs(ctx context.Context) []string {
	dirs, _ := filepath.Glob(hostSys(ctx, "devices", "system", "cpu", "cpufreq", "policy[0-9]*"))
	if len(dirs) == 0 {
		dirs, _ = filepath.Glob(hostSys(ctx, "devices", "system", "cpu", "cpu[0-9]*", "cpufreq"))
	}
	return dirs
}

// readKHz returns the first readable value among names, in MHz.
func readKHz(dir string, names ...string) (float64, bool) {
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil || khz <= 0 {
			continue
		}
		return khz / 1000, true
	}
	return 0, false
}

// readSysfsFrequency averages the current frequency over all policies and
// reports the lowest min and highest max. ok is false when no cpufreq
// directory exists, which is the caller's cue to fall back to cpu.Info.
func readSysfsFrequency(ctx context.Context) (freq *CPUFrequency, ok bool, err error) {
	dirs := cpufreqDirs(ctx)
	if len(dirs) == 0 {
		return nil, false, nil
	}

	var sum float64
	var counted int
	result := &CPUFrequency{}
	for _, dir := range dirs {
		if cur, found := readKHz(dir, "scaling_cur_freq", "cpuinfo_cur_freq"); found {
			sum += cur
			counted++
		}
		if lo, found := readKHz(dir, "cpuinfo_min_freq", "scaling_min_freq"); found && (result.Min == 0 || lo < result.Min) {
			result.Min = lo
		}
		if hi, found := readKHz(dir, "cpuinfo_max_freq", "scaling_max_freq"); found && hi > result.Max {
			result.Max = hi
		}
	}
	if counted == 0 {
		return nil, true, fmt.Errorf("cpufreq: no current frequency under %s", filepath.Dir(dirs[0]))
	}
	result.Current = sum / float64(counted)
	return result, true, nil
}
