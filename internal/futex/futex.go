// File: internal/futex/futex.go
// Package futex wraps the per-OS "wait on address" primitives behind one contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The backend is chosen at build time by the futex_<os>.go files. Every backend
// reports through the same Result so callers never see platform errno soup.

package futex

import (
	"fmt"
	"math"
	"time"
)

// Infinite blocks until woken. Any negative timeout is treated the same way.
const Infinite time.Duration = -1

// MaxTimeout is the longest finite timeout every backend accepts; ulock
// counts microseconds in 32 bits. Longer waits are split by the caller.
const MaxTimeout = time.Duration(math.MaxUint32) * time.Microsecond

// Status is the outcome class of a Wait call.
type Status uint8

const (
	// Success means the word differed from expected, or a wake arrived.
	// Spurious returns are possible; callers re-check their condition.
	Success Status = iota
	// TimedOut means the timeout elapsed while the word still held expected.
	TimedOut
	// Interrupted means a signal cut the wait short (EINTR). Not retried here.
	Interrupted
	// Failed carries an unexpected OS error in Result.Err.
	Failed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case TimedOut:
		return "timed out"
	case Interrupted:
		return "interrupted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Result is returned by value from Wait.
type Result struct {
	Status Status
	Err    error // set only when Status == Failed
}

// AsError returns nil unless the wait failed.
func (r Result) AsError() error {
	if r.Status != Failed {
		return nil
	}
	if r.Err == nil {
		return fmt.Errorf("futex: wait failed")
	}
	return fmt.Errorf("futex: wait failed: %w", r.Err)
}

func (r Result) String() string {
	if r.Status == Failed && r.Err != nil {
		return fmt.Sprintf("failed(%v)", r.Err)
	}
	return r.Status.String()
}

// Backend is the capability set every platform implementation provides.
// Wait must return Success without blocking when *addr != expected.
// Wakes are best effort and never block.
type Backend interface {
	Name() string
	Wait(addr *uint32, expected uint32, timeout time.Duration) Result
	WakeOne(addr *uint32)
	WakeAll(addr *uint32)
}

var platform = newPlatformBackend()

// Platform returns the backend selected for this build.
func Platform() Backend { return platform }

// Wait blocks while *addr == expected, until woken or timeout elapses.
// A zero timeout returns TimedOut without touching the kernel.
func Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	if timeout == 0 {
		return Result{Status: TimedOut}
	}
	return platform.Wait(addr, expected, timeout)
}

// WakeOne wakes at most one thread blocked on addr.
func WakeOne(addr *uint32) { platform.WakeOne(addr) }

// WakeAll wakes every thread blocked on addr.
func WakeAll(addr *uint32) { platform.WakeAll(addr) }
