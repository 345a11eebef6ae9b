package monitoring

import (
	"errors"
	"fmt"

	"hwstats-agent/internal/logging"
)

// Reading is the tagged result of one adapter call: Present(value) or Absent(err).
type Reading[T any] struct {
	value   T
	err     error
	present bool
}

func Present[T any](v T) Reading[T] {
	return Reading[T]{value: v, present: true}
}

func Absent[T any](err error) Reading[T] {
	return Reading[T]{err: err}
}

// Get returns the value and true when the reading is present.
func (r Reading[T]) Get() (T, bool) {
	return r.value, r.present
}

// Err is nil for present readings.
func (r Reading[T]) Err() error {
	return r.err
}

// safeRead runs one adapter call. Errors become Absent tagged with the source,
// and a panic becomes an Absent UnhandledFault instead of failing the request.
func safeRead[T any](source string, fn func() (T, error)) (r Reading[T]) {
	defer func() {
		if p := recover(); p != nil {
			logging.LogError("Sensor adapter panicked", "source", source, "panic", p)
			r = Absent[T](createSourceError(KindUnhandledFault, source, fmt.Errorf("panic: %v", p)))
		}
	}()

	v, err := fn()
	if err != nil {
		var se *SourceError
		if !errors.As(err, &se) {
			err = createSourceError(KindSourceUnavailable, source, err)
		}
		return Absent[T](err)
	}
	return Present(v)
}
