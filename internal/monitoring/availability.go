package monitoring

import (
	"sync/atomic"

	"hwstats-agent/internal/logging"
)

// SourceAvailability is a process-lifetime latch for one optional source.
// It only moves from available to unavailable; a restart is the only reset.
type SourceAvailability struct {
	source    string
	available atomic.Bool
}

func NewSourceAvailability(source string, available bool) *SourceAvailability {
	a := &SourceAvailability{source: source}
	a.available.Store(available)
	return a
}

func (a *SourceAvailability) Available() bool {
	return a.available.Load()
}

// MarkUnavailable latches the source off. Only the first caller logs;
// concurrent callers race benignly to the same state.
func (a *SourceAvailability) MarkUnavailable(cause error) {
	if a.available.CompareAndSwap(true, false) {
		logging.LogWarn("Source marked unavailable until restart", "source", a.source, "error", cause)
	}
}

func (a *SourceAvailability) Source() string {
	return a.source
}
