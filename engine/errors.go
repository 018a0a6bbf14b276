package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEngineBuildFailed reports that BuildLanes could not construct every
	// lane. The pool is left empty.
	ErrEngineBuildFailed = errors.New("engine: build lanes failed")

	// ErrInvalidLaneIndex reports a lane index outside [0, Len()).
	ErrInvalidLaneIndex = errors.New("engine: invalid lane index")

	// ErrNoLanes reports a bulk operation on an empty pool.
	ErrNoLanes = errors.New("engine: no lanes")

	// ErrClosed reports use of a closed pool.
	ErrClosed = errors.New("engine: pool closed")
)

// BulkError aggregates the per-lane failures of a best-effort bulk
// operation. Lanes not listed succeeded.
type BulkError struct {
	Op     string
	Failed []int
	Errs   []error
}

func (e *BulkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine: %s failed for lanes %v", e.Op, e.Failed)

	for _, err := range e.Errs {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}

	return b.String()
}

// Unwrap exposes the individual lane errors to errors.Is and errors.As.
func (e *BulkError) Unwrap() []error { return e.Errs }

// Contains reports whether lane index failed.
func (e *BulkError) Contains(index int) bool {
	return slices.Contains(e.Failed, index)
}
