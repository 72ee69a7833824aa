// File: internal/futex/emulated.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Emulated backend for platforms without a usable kernel wait-on-address.
// Addresses hash into a fixed table of buckets; each bucket keeps a FIFO of
// parked waiters per address, and a timed-out waiter prunes its FIFO on the
// way out. The bucket lock stands in for the kernel's hash-bucket lock: the
// value check and the enqueue happen under it, so a waker that changes the
// word and then wakes cannot slip between them.

package futex

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/eapache/queue"
)

const parkBuckets = 256

const (
	parked uint32 = iota
	woken
	cancelled
)

type parkedWaiter struct {
	state atomic.Uint32
	ready chan struct{}
}

type parkBucket struct {
	mu     sync.Mutex
	queues map[uintptr]*queue.Queue
}

type parkingLot struct {
	buckets [parkBuckets]parkBucket
}

var emulated = newParkingLot()

// Emulated returns the portable parking-lot backend. It is the platform
// backend where no kernel primitive is wired, and is usable everywhere.
func Emulated() Backend { return emulated }

func newParkingLot() *parkingLot {
	pl := &parkingLot{}
	for i := range pl.buckets {
		pl.buckets[i].queues = make(map[uintptr]*queue.Queue)
	}
	return pl
}

func (pl *parkingLot) Name() string { return "emulated" }

func (pl *parkingLot) bucket(key uintptr) *parkBucket {
	// Fibonacci hashing; low address bits are mostly alignment.
	h := uint64(key) * 0x9E3779B97F4A7C15
	return &pl.buckets[h>>(64-8)]
}

func (pl *parkingLot) Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	if timeout == 0 {
		return Result{Status: TimedOut}
	}
	key := uintptr(unsafe.Pointer(addr))
	b := pl.bucket(key)

	b.mu.Lock()
	if atomic.LoadUint32(addr) != expected {
		b.mu.Unlock()
		return Result{Status: Success}
	}
	w := &parkedWaiter{ready: make(chan struct{})}
	q := b.queues[key]
	if q == nil {
		q = queue.New()
		b.queues[key] = q
	}
	q.Add(w)
	b.mu.Unlock()

	if timeout < 0 {
		<-w.ready
		return Result{Status: Success}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.ready:
		return Result{Status: Success}
	case <-timer.C:
		if w.state.CompareAndSwap(parked, cancelled) {
			b.prune(key)
			return Result{Status: TimedOut}
		}
		// A waker claimed us concurrently; the wake counts.
		<-w.ready
		return Result{Status: Success}
	}
}

func (pl *parkingLot) WakeOne(addr *uint32) { pl.wake(addr, 1) }

func (pl *parkingLot) WakeAll(addr *uint32) { pl.wake(addr, -1) }

// wake releases up to n live waiters on addr; n < 0 releases all of them.
func (pl *parkingLot) wake(addr *uint32, n int) {
	key := uintptr(unsafe.Pointer(addr))
	b := pl.bucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queues[key]
	if q == nil {
		return
	}
	for n != 0 && q.Length() > 0 {
		w := q.Remove().(*parkedWaiter)
		if w.state.CompareAndSwap(parked, woken) {
			close(w.ready)
			n--
		}
	}
	if q.Length() == 0 {
		delete(b.queues, key)
	}
}

// prune drops records that can no longer be woken from key's FIFO, keeping
// live waiters in arrival order, and forgets the FIFO once it is empty.
func (b *parkBucket) prune(key uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queues[key]
	if q == nil {
		return
	}
	for i, n := 0, q.Length(); i < n; i++ {
		w := q.Remove().(*parkedWaiter)
		if w.state.Load() == parked {
			q.Add(w)
		}
	}
	if q.Length() == 0 {
		delete(b.queues, key)
	}
}
