//go:build linux

// File: internal/futex/futex_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux backend: raw futex(2) on process-private mappings.

package futex

import (
	"math"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWaitPrivate = 128 // FUTEX_WAIT | FUTEX_PRIVATE_FLAG
	futexWakePrivate = 129 // FUTEX_WAKE | FUTEX_PRIVATE_FLAG
)

type linuxBackend struct{}

func newPlatformBackend() Backend { return linuxBackend{} }

func (linuxBackend) Name() string { return "linux-futex" }

func (linuxBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	// A nil timespec blocks indefinitely. FUTEX_WAIT takes a relative timeout.
	var ts *unix.Timespec
	if timeout > 0 {
		rel := unix.NsecToTimespec(int64(timeout))
		ts = &rel
	}
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitPrivate,
		uintptr(expected),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
	return classify(errno)
}

func (linuxBackend) WakeOne(addr *uint32) { wake(addr, 1) }

func (linuxBackend) WakeAll(addr *uint32) { wake(addr, math.MaxInt32) }

func wake(addr *uint32, n uintptr) {
	// The woken count and errors are ignored; wakes are best effort.
	unix.RawSyscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakePrivate,
		n,
		0, 0, 0)
}
