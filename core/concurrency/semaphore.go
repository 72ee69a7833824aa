// File: core/concurrency/semaphore.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Counting semaphore: CAS acquire loop plus futex blocking on the token
// word itself. Wakes are "something changed" hints; a woken thread retries
// the CAS and may lose the token to a faster thread (no fairness).

package concurrency

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-jobs/internal/futex"
)

// Semaphore counts tokens. The zero value holds no tokens.
type Semaphore struct {
	current uint32
	_       cpu.CacheLinePad
	waiters int32 // threads inside the blocking path; lets Signal skip the syscall
}

// NewSemaphore returns a semaphore holding n tokens.
func NewSemaphore(n uint32) *Semaphore {
	return &Semaphore{current: n}
}

// Signal adds one token and wakes one blocked thread.
func (s *Semaphore) Signal() {
	atomic.AddUint32(&s.current, 1)
	if atomic.LoadInt32(&s.waiters) > 0 {
		futex.WakeOne(&s.current)
	}
}

// Value returns the current token count.
func (s *Semaphore) Value() uint32 { return atomic.LoadUint32(&s.current) }

// TryDecrease takes one token if *observed > 0, retrying the CAS while the
// count stays positive. *observed tracks the live value; it is 0 when the
// call returns false.
func (s *Semaphore) TryDecrease(observed *uint32) bool {
	for *observed > 0 {
		if atomic.CompareAndSwapUint32(&s.current, *observed, *observed-1) {
			return true
		}
		*observed = atomic.LoadUint32(&s.current)
	}
	return false
}

// TryWait takes a token without blocking.
func (s *Semaphore) TryWait() bool {
	v := atomic.LoadUint32(&s.current)
	return s.TryDecrease(&v)
}

// Wait blocks until a token is taken.
func (s *Semaphore) Wait() {
	if s.TryWait() {
		return
	}
	atomic.AddInt32(&s.waiters, 1)
	defer atomic.AddInt32(&s.waiters, -1)
	for {
		v := atomic.LoadUint32(&s.current)
		if s.TryDecrease(&v) {
			return
		}
		if res := futex.Wait(&s.current, v, futex.Infinite); res.Status == futex.Failed {
			fail("semaphore wait", res, v)
		}
	}
}

// WaitFor blocks until a token is taken or timeout elapses. A negative
// timeout waits forever.
func (s *Semaphore) WaitFor(timeout time.Duration) bool {
	if s.TryWait() {
		return true
	}
	if timeout < 0 {
		s.Wait()
		return true
	}
	deadline := time.Now().Add(timeout)
	atomic.AddInt32(&s.waiters, 1)
	defer atomic.AddInt32(&s.waiters, -1)
	for {
		v := atomic.LoadUint32(&s.current)
		if s.TryDecrease(&v) {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if res := futex.Wait(&s.current, v, waitSlice(remaining)); res.Status == futex.Failed {
			fail("semaphore wait", res, v)
		}
	}
}
