//go:build darwin && cgo

// File: internal/futex/futex_darwin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Apple has no futex. The private ulock API in libSystem provides the same
// compare-and-wait semantics with microsecond timeouts.

package futex

/*
#include <stdint.h>
#include <errno.h>

#define UL_COMPARE_AND_WAIT 1
#define ULF_WAKE_ALL        0x00000100

extern int __ulock_wait(uint32_t operation, void *addr, uint64_t value, uint32_t timeout_us);
extern int __ulock_wake(uint32_t operation, void *addr, uint64_t wake_value);

static int hl_ulock_wait(void *addr, uint32_t value, uint32_t timeout_us) {
	int rc = __ulock_wait(UL_COMPARE_AND_WAIT, addr, (uint64_t)value, timeout_us);
	return rc < 0 ? errno : 0;
}

static void hl_ulock_wake(void *addr, int all) {
	uint32_t op = UL_COMPARE_AND_WAIT;
	if (all) {
		op |= ULF_WAKE_ALL;
	}
	__ulock_wake(op, addr, 0);
}
*/
import "C"

import (
	"syscall"
	"time"
	"unsafe"
)

type ulockBackend struct{}

func newPlatformBackend() Backend { return ulockBackend{} }

func (ulockBackend) Name() string { return "darwin-ulock" }

func (ulockBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	var us uint32 // 0 = no timeout
	if timeout > 0 {
		var err error
		if us, err = durationToMicros(timeout); err != nil {
			return Result{Status: Failed, Err: err}
		}
	}
	rc := C.hl_ulock_wait(unsafe.Pointer(addr), C.uint32_t(expected), C.uint32_t(us))
	return classify(syscall.Errno(rc))
}

func (ulockBackend) WakeOne(addr *uint32) { C.hl_ulock_wake(unsafe.Pointer(addr), 0) }

func (ulockBackend) WakeAll(addr *uint32) { C.hl_ulock_wake(unsafe.Pointer(addr), 1) }
