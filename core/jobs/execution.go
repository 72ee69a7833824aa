// File: core/jobs/execution.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// An execution is the work carried by a job: one of four kinds sharing a
// single struct and switched on kind. Units record their outcome before the
// latch count-down, so anything read after the latch opens is stable.

package jobs

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-jobs/core/concurrency"
)

type kind uint8

const (
	kindSingle kind = iota
	kindMulti
	kindParallel
	kindCollection
)

func (k kind) String() string {
	switch k {
	case kindSingle:
		return "single"
	case kindMulti:
		return "multi"
	case kindParallel:
		return "parallel"
	case kindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

type execution struct {
	kind kind
	done concurrency.Latch

	// single, multi: one function and one error slot per unit.
	fns   []func() error
	slots []error

	// parallel: one function run units times.
	fn     func(thread, index int) error
	units  int
	failed atomic.Bool
	first  atomic.Pointer[UnitError]

	// collection
	members []*jobHeader
}

func (x *execution) initFuncs(fns []func() error) {
	x.kind = kindSingle
	if len(fns) > 1 {
		x.kind = kindMulti
	}
	x.fns = fns
	x.slots = make([]error, len(fns))
	x.done.Reset(len(fns))
}

func (x *execution) initParallel(count int, fn func(thread, index int) error) {
	x.kind = kindParallel
	x.fn = fn
	x.units = count
	x.done.Reset(count)
}

func (x *execution) initCollection(members []*jobHeader) {
	x.kind = kindCollection
	x.members = members
}

// count is the number of units to dispatch. Collections dispatch nothing.
func (x *execution) count() int {
	switch x.kind {
	case kindSingle, kindMulti:
		return len(x.slots)
	case kindParallel:
		return x.units
	default:
		return 0
	}
}

func (x *execution) call(thread, index int) error {
	if x.kind == kindParallel {
		return x.fn(thread, index)
	}
	return x.fns[index]()
}

// record stores the outcome of one unit. Every unit writes a distinct slot.
func (x *execution) record(index int, err error) {
	if err == nil {
		return
	}
	switch x.kind {
	case kindSingle, kindMulti:
		x.slots[index] = err
	case kindParallel:
		x.failed.Store(true)
		x.first.CompareAndSwap(nil, &UnitError{Unit: index, Err: err})
	}
}

// release drops the closures once no handle can observe the job again.
func (x *execution) release() {
	x.fns = nil
	x.fn = nil
}

func (x *execution) tryWait() bool {
	if x.kind != kindCollection {
		return x.done.TryWait()
	}
	for _, m := range x.members {
		if !m.exec.tryWait() {
			return false
		}
	}
	return true
}

func (x *execution) wait() {
	if x.kind != kindCollection {
		x.done.Wait()
		return
	}
	for _, m := range x.members {
		m.exec.wait()
	}
}

// waitFor spends one deadline across every member of a collection.
func (x *execution) waitFor(timeout time.Duration) bool {
	if timeout < 0 {
		x.wait()
		return true
	}
	if x.kind != kindCollection {
		return x.done.WaitFor(timeout)
	}
	deadline := time.Now().Add(timeout)
	for _, m := range x.members {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		if !m.exec.waitFor(remaining) {
			return false
		}
	}
	return true
}

// result is the failure of a completed execution, or nil.
func (x *execution) result() error {
	switch x.kind {
	case kindSingle:
		return x.slots[0]
	case kindMulti:
		var errs []error
		for i, err := range x.slots {
			if err != nil {
				errs = append(errs, &SlotError{Slot: i, Err: err})
			}
		}
		return errors.Join(errs...)
	case kindParallel:
		if !x.failed.Load() {
			return nil
		}
		if first := x.first.Load(); first != nil {
			return first
		}
		return ErrUncaught
	case kindCollection:
		var errs []error
		for _, m := range x.members {
			if err := m.exec.result(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	default:
		return nil
	}
}
