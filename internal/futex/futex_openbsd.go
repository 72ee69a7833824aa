//go:build openbsd

// File: internal/futex/futex_openbsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OpenBSD backend: futex(2) with a relative timespec. Operation numbers differ
// from Linux (FUTEX_WAIT=1, FUTEX_WAKE=2).

package futex

import (
	"math"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	bsdFutexWait    = 1
	bsdFutexWake    = 2
	bsdFutexPrivate = 128
)

type bsdBackend struct{}

func newPlatformBackend() Backend { return bsdBackend{} }

func (bsdBackend) Name() string { return "openbsd-futex" }

func (bsdBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	var ts *unix.Timespec
	if timeout > 0 {
		rel := unix.NsecToTimespec(int64(timeout))
		ts = &rel
	}
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		bsdFutexWait|bsdFutexPrivate,
		uintptr(expected),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
	if errno == unix.ECANCELED {
		// Restart-after-signal is reported as ECANCELED on OpenBSD.
		return Result{Status: Interrupted}
	}
	return classify(errno)
}

func (bsdBackend) WakeOne(addr *uint32) { bsdWake(addr, 1) }

func (bsdBackend) WakeAll(addr *uint32) { bsdWake(addr, math.MaxInt32) }

func bsdWake(addr *uint32, n uintptr) {
	unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		bsdFutexWake|bsdFutexPrivate,
		n,
		0, 0, 0)
}
