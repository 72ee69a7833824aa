// File: core/concurrency/waitable.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Waitable is an atomic word with wait/notify. Waiter bookkeeping lives in
// two side counters so the value itself stays a plain machine word: waiters
// counts registered threads, notify holds pending single wakes in its low
// bits and a sticky notify-all flag in the high bit. Blocking happens on the
// notify counter, never on the value.

package concurrency

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-jobs/internal/futex"
)

// Word lists the integer types Waitable can hold.
type Word interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~uintptr
}

const (
	notifyAllBit  uint32 = 1 << 31
	notifyOneMask        = notifyAllBit - 1
)

// Waitable holds one word of type T. The zero value holds T(0) and is ready to use.
type Waitable[T Word] struct {
	value   atomic.Uint64 // canonical form: uint64(T(x))
	_       cpu.CacheLinePad
	waiters int32
	_       cpu.CacheLinePad
	notify  uint32
	_       cpu.CacheLinePad
}

// NewWaitable returns a Waitable holding v.
func NewWaitable[T Word](v T) *Waitable[T] {
	w := &Waitable[T]{}
	w.value.Store(uint64(v))
	return w
}

func (w *Waitable[T]) Load() T { return T(w.value.Load()) }

func (w *Waitable[T]) Store(v T) { w.value.Store(uint64(v)) }

func (w *Waitable[T]) Swap(v T) (old T) { return T(w.value.Swap(uint64(v))) }

func (w *Waitable[T]) CompareAndSwap(old, new T) bool {
	return w.value.CompareAndSwap(uint64(old), uint64(new))
}

// FetchAdd adds delta and returns the previous value. Narrow types wrap
// at their own width.
func (w *Waitable[T]) FetchAdd(delta T) T {
	return w.update(func(v T) T { return v + delta })
}

// Add adds delta and returns the new value.
func (w *Waitable[T]) Add(delta T) T { return w.FetchAdd(delta) + delta }

func (w *Waitable[T]) FetchAnd(mask T) T {
	return w.update(func(v T) T { return v & mask })
}

func (w *Waitable[T]) FetchOr(mask T) T {
	return w.update(func(v T) T { return v | mask })
}

func (w *Waitable[T]) FetchXor(mask T) T {
	return w.update(func(v T) T { return v ^ mask })
}

// update applies f in a CAS loop so the stored bits stay canonical for T.
func (w *Waitable[T]) update(f func(T) T) T {
	for {
		raw := w.value.Load()
		if w.value.CompareAndSwap(raw, uint64(f(T(raw)))) {
			return T(raw)
		}
	}
}

// Wait blocks while the value equals old. It may return spuriously after a
// notification even if the value is unchanged; callers re-check.
func (w *Waitable[T]) Wait(old T) { w.wait(old, futex.Infinite) }

// WaitFor is Wait with a timeout. It reports false only when the deadline
// passed without a value change or notification. A negative timeout waits
// forever.
func (w *Waitable[T]) WaitFor(old T, timeout time.Duration) bool {
	return w.wait(old, timeout)
}

func (w *Waitable[T]) wait(old T, timeout time.Duration) bool {
	if w.Load() != old {
		return true
	}
	if timeout == 0 {
		return false
	}

	// Registration must precede every check below: a notifier that misses
	// the registration necessarily stored its new value before our loads.
	atomic.AddInt32(&w.waiters, 1)
	defer w.deregister()

	start := nanotime()
	for nanotime()-start < int64(spinBudget) {
		if w.Load() != old {
			return true
		}
	}

	var deadline int64
	if timeout > 0 {
		deadline = start + int64(timeout)
	}
	for {
		if w.Load() != old {
			return true
		}
		flag := atomic.LoadUint32(&w.notify)
		if flag&notifyAllBit != 0 {
			return true
		}
		if flag != 0 {
			if atomic.CompareAndSwapUint32(&w.notify, flag, flag-1) {
				return true
			}
			continue
		}

		slice := sleepSlice
		if timeout > 0 {
			remaining := time.Duration(deadline - nanotime())
			if remaining <= 0 {
				return false
			}
			if remaining < slice {
				slice = remaining
			}
		}
		if res := futex.Wait(&w.notify, 0, slice); res.Status == futex.Failed {
			fail("waitable wait", res, 0)
		}
	}
}

// deregister drops the registration; the last waiter clears leftover
// notifications. The clear commits only if no waiter registered and no
// notifier posted since the flag was read: every post changes the word, so
// the CAS fails instead of erasing a notification meant for a newcomer.
func (w *Waitable[T]) deregister() {
	if atomic.AddInt32(&w.waiters, -1) != 0 {
		return
	}
	for {
		flag := atomic.LoadUint32(&w.notify)
		if flag == 0 || atomic.LoadInt32(&w.waiters) != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(&w.notify, flag, 0) {
			return
		}
	}
}

// post records a notification. The word always changes: the pending count
// advances modulo its width and a saturated count upgrades to notify-all.
// It reports whether the notify-all bit is set afterwards.
func (w *Waitable[T]) post(all bool) bool {
	for {
		flag := atomic.LoadUint32(&w.notify)
		next := flag&notifyAllBit | (flag+1)&notifyOneMask
		if all || flag&notifyOneMask == notifyOneMask {
			next |= notifyAllBit
		}
		if atomic.CompareAndSwapUint32(&w.notify, flag, next) {
			return next&notifyAllBit != 0
		}
	}
}

// NotifyOne releases one waiter, if any is registered.
func (w *Waitable[T]) NotifyOne() {
	if atomic.LoadInt32(&w.waiters) == 0 {
		return
	}
	if w.post(false) {
		futex.WakeAll(&w.notify)
		return
	}
	futex.WakeOne(&w.notify)
}

// NotifyAll releases every registered waiter.
func (w *Waitable[T]) NotifyAll() {
	if atomic.LoadInt32(&w.waiters) == 0 {
		return
	}
	w.post(true)
	futex.WakeAll(&w.notify)
}

// Waiters reports how many threads are currently registered.
func (w *Waitable[T]) Waiters() int { return int(atomic.LoadInt32(&w.waiters)) }
