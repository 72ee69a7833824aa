// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Blocking primitives built on the internal futex layer: a waitable atomic
// word with spin-then-block waits, a single-use countdown Latch, and a
// counting Semaphore. All state changes go through atomics; none of the
// types take a mutex. A futex failure other than timeout or interruption
// panics with an *api.Error carrying api.ErrCodeSystem.
package concurrency
