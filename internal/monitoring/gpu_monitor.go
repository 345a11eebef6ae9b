package monitoring

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"hwstats-agent/internal/logging"
)

// DefaultNvidiaSMI is looked up on PATH.
const DefaultNvidiaSMI = "nvidia-smi"

// gpuStartupTimeout bounds the startup query, which has no request context.
const gpuStartupTimeout = 10 * time.Second

var nvidiaSMIQuery = []string{
	"--query-gpu=index,name,temperature.gpu,utilization.gpu,memory.used,memory.total",
	"--format=csv,noheader,nounits",
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// nvidiaSMIProvider queries every NVIDIA device in one nvidia-smi call.
type nvidiaSMIProvider struct {
	command string
	run     commandRunner
}

// NewNvidiaSMIProvider returns a GPUProvider backed by the nvidia-smi binary
// at command (DefaultNvidiaSMI when empty).
func NewNvidiaSMIProvider(command string) GPUProvider {
	if command == "" {
		command = DefaultNvidiaSMI
	}
	return &nvidiaSMIProvider{command: command, run: runCommand}
}

func (p *nvidiaSMIProvider) QueryGPUs(ctx context.Context) ([]GPUSample, error) {
	out, err := p.run(ctx, p.command, nvidiaSMIQuery...)
	if err != nil {
		return nil, err
	}
	return parseNvidiaSMIOutput(out)
}

// parseNvidiaSMIOutput parses csv,noheader,nounits rows in the column order
// of nvidiaSMIQuery. "[N/A]" values become nil.
func parseNvidiaSMIOutput(out []byte) ([]GPUSample, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	samples := []GPUSample{}
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse nvidia-smi output: %w", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < 6 {
			return nil, fmt.Errorf("unexpected nvidia-smi output format: %q", strings.Join(fields, ","))
		}

		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid GPU index %q", fields[0])
		}

		samples = append(samples, GPUSample{
			Name:        strings.TrimSpace(fields[1]),
			Index:       index,
			Temperature: parseOptionalInt(fields[2]),
			Utilization: parseOptionalInt(fields[3]),
			MemoryUsed:  parseOptionalInt(fields[4]),
			MemoryTotal: parseOptionalInt(fields[5]),
		})
	}
	return samples, nil
}

func parseOptionalInt(field string) *int {
	s := strings.TrimSpace(field)
	if s == "" || strings.Contains(s, "N/A") || strings.EqualFold(s, "[Not Supported]") {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int(math.Round(f))
		return &v
	}
	return nil
}

// gpuMonitor implements the GPUMonitor interface on top of a GPUProvider and
// an availability latch owned by the caller.
type gpuMonitor struct {
	name         string
	provider     GPUProvider
	availability *SourceAvailability
}

// NewGPUMonitor creates a new GPU monitor
func NewGPUMonitor(provider GPUProvider, availability *SourceAvailability) GPUMonitor {
	return &gpuMonitor{
		name:         "gpu_monitor",
		provider:     provider,
		availability: availability,
	}
}

// Initialize runs the startup query; a failed query leaves the source
// unavailable for the process lifetime.
func (g *gpuMonitor) Initialize() error {
	if !g.availability.Available() {
		logging.LogInfo("GPU monitoring disabled, skipping startup query")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gpuStartupTimeout)
	defer cancel()

	samples, err := g.query(ctx)
	if err != nil {
		g.availability.MarkUnavailable(err)
		return nil
	}
	logging.LogInfo("GPU source available", "devices", len(samples))
	return nil
}

// Cleanup performs cleanup operations
func (g *gpuMonitor) Cleanup() error {
	return nil
}

// GetName returns the monitor name
func (g *gpuMonitor) GetName() string {
	return g.name
}

func (g *gpuMonitor) Available() bool {
	return g.availability.Available()
}

// GetGPUSamples queries the provider unless the latch is off. Any provider
// failure latches it off, except a cancelled request context.
func (g *gpuMonitor) GetGPUSamples(ctx context.Context) ([]GPUSample, error) {
	if !g.availability.Available() {
		return []GPUSample{}, createSourceError(KindSourceUnavailable, SourceGPU, ErrSourceDisabled)
	}

	samples, err := g.query(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return []GPUSample{}, createSourceError(KindSourceUnavailable, SourceGPU, err)
		}
		g.availability.MarkUnavailable(err)
		return []GPUSample{}, createSourceError(KindTransientQuery, SourceGPU, err)
	}
	return samples, nil
}

func (g *gpuMonitor) query(ctx context.Context) (samples []GPUSample, err error) {
	defer func() {
		if p := recover(); p != nil {
			samples, err = nil, fmt.Errorf("gpu provider panic: %v", p)
		}
	}()

	samples, err = g.provider.QueryGPUs(ctx)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []GPUSample{}
	}
	return samples, nil
}
