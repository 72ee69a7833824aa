// File: core/concurrency/latch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-use countdown barrier. The counter only moves towards zero and
// zero is absorbing; the transition to zero wakes every waiter exactly once.

package concurrency

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-jobs/internal/futex"
)

// Latch is a countdown barrier. The zero value is already open.
type Latch struct {
	remaining uint32
}

// NewLatch returns a latch that opens after n count-downs.
// Panics if n is negative or does not fit in 32 bits.
func NewLatch(n int) *Latch {
	l := &Latch{}
	l.Reset(n)
	return l
}

// Reset arms a latch that nobody is using yet. It exists for embedding a
// Latch by value; calling it on a latch with waiters is a bug.
func (l *Latch) Reset(n int) {
	if n < 0 || n > math.MaxInt32 {
		panic("concurrency: latch count out of range")
	}
	atomic.StoreUint32(&l.remaining, uint32(n))
}

// CountDown subtracts n and reports whether this call opened the latch;
// exactly one call ever returns true. Counting past zero leaves the latch
// open. Panics if n is negative.
func (l *Latch) CountDown(n int) bool {
	if n < 0 {
		panic("concurrency: negative latch count-down")
	}
	if n == 0 {
		return false
	}
	for {
		cur := atomic.LoadUint32(&l.remaining)
		if cur == 0 {
			return false
		}
		next := uint32(0)
		if uint64(cur) > uint64(n) {
			next = cur - uint32(n)
		}
		if atomic.CompareAndSwapUint32(&l.remaining, cur, next) {
			if next == 0 {
				futex.WakeAll(&l.remaining)
				return true
			}
			return false
		}
	}
}

// TryWait reports whether the latch is open. Never blocks.
func (l *Latch) TryWait() bool { return atomic.LoadUint32(&l.remaining) == 0 }

// Remaining returns the outstanding count.
func (l *Latch) Remaining() int { return int(atomic.LoadUint32(&l.remaining)) }

// Wait blocks until the latch opens.
func (l *Latch) Wait() {
	for {
		v := atomic.LoadUint32(&l.remaining)
		if v == 0 {
			return
		}
		// Interrupted and spurious returns simply loop.
		if res := futex.Wait(&l.remaining, v, futex.Infinite); res.Status == futex.Failed {
			fail("latch wait", res, v)
		}
	}
}

// WaitFor blocks until the latch opens or timeout elapses, reporting
// whether it opened. A negative timeout waits forever.
func (l *Latch) WaitFor(timeout time.Duration) bool {
	if timeout < 0 {
		l.Wait()
		return true
	}
	deadline := time.Now().Add(timeout)
	for {
		v := atomic.LoadUint32(&l.remaining)
		if v == 0 {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if res := futex.Wait(&l.remaining, v, waitSlice(remaining)); res.Status == futex.Failed {
			fail("latch wait", res, v)
		}
	}
}
