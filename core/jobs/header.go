// File: core/jobs/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// jobHeader is the shared state behind every Job handle. Dependents hang off
// their predecessors in a lock-free continuation stack that is sealed when
// the predecessor completes; the worker that seals it dispatches whatever it
// finds. A dependent points back at its predecessors only weakly, so a
// finished predecessor is never kept alive by the jobs that followed it.

package jobs

import (
	"sync/atomic"
	"weak"
)

type continuation struct {
	job  *jobHeader
	next *continuation
}

// sealed marks a continuation stack whose owner has completed.
var sealed = new(continuation)

type jobHeader struct {
	id   uint64
	pool *Pool
	exec execution

	// blockers counts predecessors still running plus one guard held while
	// the job registers itself; the decrement that reaches zero dispatches.
	blockers   atomic.Int32
	deps       []weak.Pointer[jobHeader]
	dependents atomic.Pointer[continuation]

	refs     atomic.Int32 // live handles
	reported atomic.Bool
	dropped  atomic.Bool
	detached bool // no handle will ever observe the result
}

// Run executes one unit on worker thread `thread`.
func (h *jobHeader) Run(thread, index int) {
	defer h.unitDone()
	h.exec.record(index, h.pool.invoke(h, thread, index))
}

func (h *jobHeader) unitDone() {
	if h.exec.done.CountDown(1) {
		h.complete()
	}
}

// complete runs exactly once, on the worker that finished the last unit.
func (h *jobHeader) complete() {
	var ready []*jobHeader
	for c := h.dependents.Swap(sealed); c != nil; c = c.next {
		ready = append(ready, c.job)
	}
	// The stack is LIFO; dispatch in registration order.
	for i := len(ready) - 1; i >= 0; i-- {
		if ready[i].blockers.Add(-1) == 0 {
			h.pool.dispatch(ready[i])
		}
	}
	if h.detached {
		if err := h.exec.result(); err != nil {
			h.pool.log.Warn("detached job failed", "job", h.id, "kind", h.exec.kind, "err", err)
		}
	}
	if h.refs.Load() == 0 {
		h.drop()
	}
	h.pool.jobDone()
}

// addDependent registers d to be unblocked when h completes. It reports
// false if h has already completed.
func (h *jobHeader) addDependent(d *jobHeader) bool {
	c := &continuation{job: d}
	for {
		head := h.dependents.Load()
		if head == sealed {
			return false
		}
		c.next = head
		if h.dependents.CompareAndSwap(head, c) {
			return true
		}
	}
}

// leaves appends the executable jobs behind h: h itself, or the flattened
// members of a collection.
func (h *jobHeader) leaves(out []*jobHeader) []*jobHeader {
	if h.exec.kind != kindCollection {
		return append(out, h)
	}
	for _, m := range h.exec.members {
		out = m.leaves(out)
	}
	return out
}

// predecessorsDone reports whether every still-reachable predecessor has
// completed.
func (h *jobHeader) predecessorsDone() bool {
	for _, d := range h.deps {
		if pred := d.Value(); pred != nil && !pred.exec.done.TryWait() {
			return false
		}
	}
	return true
}

// deliver returns the job's failure to the first caller that observes
// completion and nil to everyone after it.
func (h *jobHeader) deliver() error {
	err := h.exec.result()
	if err == nil || !h.reported.CompareAndSwap(false, true) {
		return nil
	}
	return err
}

func (h *jobHeader) retain() { h.refs.Add(1) }

// release drops one handle reference. Closures go once the job has both
// completed and lost its last handle, whichever happens second.
func (h *jobHeader) release() {
	if h.refs.Add(-1) == 0 && h.exec.tryWait() {
		h.drop()
	}
}

func (h *jobHeader) drop() {
	if h.dropped.CompareAndSwap(false, true) {
		h.exec.release()
	}
}
