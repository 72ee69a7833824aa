// File: core/concurrency/spin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Spin-phase timing for Waitable.

package concurrency

import (
	"time"
	_ "unsafe" // for go:linkname

	"github.com/momentics/hioload-jobs/internal/futex"
)

const (
	// spinBudget bounds the busy-poll phase; roughly a thousand cycles.
	spinBudget = 500 * time.Nanosecond
	// sleepSlice caps every kernel sleep in Waitable so a notification that
	// races the flag check is observed within this bound.
	sleepSlice = 64 * time.Microsecond
)

// waitSlice bounds a single kernel wait to what every futex backend accepts.
func waitSlice(remaining time.Duration) time.Duration {
	return min(remaining, futex.MaxTimeout)
}

// nanotime is the runtime's monotonic clock; cheaper than time.Now and
// accurate enough to bound a sub-microsecond spin.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64
