// File: internal/concurrency/lock_free_queue.go
// Package concurrency provides a lock-free queue for executors.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded multi-producer/multi-consumer FIFO (Michael–Scott). The garbage
// collector keeps unlinked nodes alive while any thread still holds them, so
// the classic ABA hazard of pointer reuse does not arise.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type qnode[T any] struct {
	value T
	next  atomic.Pointer[qnode[T]]
}

// lockFreeQueue is safe for any number of producers and consumers.
type lockFreeQueue[T any] struct {
	head   atomic.Pointer[qnode[T]]
	_      cpu.CacheLinePad
	tail   atomic.Pointer[qnode[T]]
	_      cpu.CacheLinePad
	length atomic.Int64
}

// NewLockFreeQueue creates an empty queue.
func NewLockFreeQueue[T any]() *lockFreeQueue[T] {
	q := &lockFreeQueue[T]{}
	dummy := &qnode[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Enqueue appends val. Never fails.
func (q *lockFreeQueue[T]) Enqueue(val T) {
	n := &qnode[T]{value: val}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail lags behind; help the other producer.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			q.length.Add(1)
			return
		}
	}
}

// Dequeue removes and returns the oldest item; ok false if empty.
func (q *lockFreeQueue[T]) Dequeue() (item T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return item, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		item = next.value
		if q.head.CompareAndSwap(head, next) {
			q.length.Add(-1)
			return item, true
		}
	}
}

// Len is approximate under concurrent use.
func (q *lockFreeQueue[T]) Len() int {
	// A dequeue may be counted before the matching enqueue.
	return int(max(q.length.Load(), 0))
}
