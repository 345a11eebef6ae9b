package monitoring

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a source produced no reading.
type ErrorKind string

const (
	// KindSourceUnavailable: the domain could not be read; the field degrades.
	KindSourceUnavailable ErrorKind = "source_unavailable"
	// KindTransientQuery: an optional source failed and is now latched off.
	KindTransientQuery ErrorKind = "transient_query_failure"
	// KindUnhandledFault: the adapter panicked.
	KindUnhandledFault ErrorKind = "unhandled_fault"
)

// Source names, also used as log fields and metric labels.
const (
	SourceCPU         = "cpu"
	SourceMemory      = "memory"
	SourceSwap        = "swap"
	SourceDisk        = "disk"
	SourceTemperature = "temperature"
	SourceGPU         = "gpu"
	SourceUptime      = "uptime"
)

// ErrSourceDisabled is returned for sources latched off by an earlier failure.
var ErrSourceDisabled = errors.New("source disabled after an earlier failure")

type SourceError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func createSourceError(kind ErrorKind, source string, err error) *SourceError {
	return &SourceError{
		Source: source,
		Kind:   kind,
		Err:    err,
	}
}

// IsKind reports whether err carries a SourceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Kind == kind
}
