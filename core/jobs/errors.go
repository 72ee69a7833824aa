// File: core/jobs/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sentinel errors and failure wrappers for the job graph.

package jobs

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPoolClosed is returned when scheduling on a pool after Close.
	ErrPoolClosed = errors.New("jobs: pool closed")
	// ErrCrossPool is returned when jobs from different pools are combined
	// or chained.
	ErrCrossPool = errors.New("jobs: jobs belong to different pools")
	// ErrUncaught marks a parallel job in which at least one unit failed.
	ErrUncaught = errors.New("jobs: uncaught failure in parallel job")
	// ErrFatal is recorded for a unit that panicked with a non-error value
	// when the fatal hook chose not to abort.
	ErrFatal = errors.New("jobs: fatal panic in job")
	// ErrInvalidCount is returned for jobs with no units.
	ErrInvalidCount = errors.New("jobs: job must have at least one unit")
	// ErrNilFunc is returned when a job function is nil.
	ErrNilFunc = errors.New("jobs: nil job function")
)

// PanicError wraps a recovered panic value together with the goroutine
// stack captured at the point of the panic.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any
	// Stack is the worker's stack at the point of panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}

// SlotError attributes a failure to one function of a multi-function job.
type SlotError struct {
	Slot int
	Err  error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("jobs: function %d failed: %v", e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }

// UnitError is the first recorded failure of a parallel job. It matches
// ErrUncaught under errors.Is and also unwraps to the unit's own error.
type UnitError struct {
	Unit int
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%v: unit %d: %v", ErrUncaught, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() []error { return []error{ErrUncaught, e.Err} }

// SlotErrors collects every *SlotError in err's chain, including those
// joined with errors.Join. Returns nil if none are found.
func SlotErrors(err error) []*SlotError {
	if err == nil {
		return nil
	}
	var out []*SlotError
	collectSlotErrors(err, &out)
	return out
}

func collectSlotErrors(err error, out *[]*SlotError) {
	switch e := err.(type) {
	case *SlotError:
		*out = append(*out, e)
	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectSlotErrors(sub, out)
		}
	case interface{ Unwrap() error }:
		collectSlotErrors(e.Unwrap(), out)
	}
}
