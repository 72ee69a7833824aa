//go:build windows

// File: internal/futex/futex_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows backend: WaitOnAddress/WakeByAddress* (Windows 8+). When the synch
// API set cannot be resolved the emulated parking lot takes over, so waits
// always block instead of spinning.

package futex

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const infiniteMillis = 0xFFFFFFFF

var (
	synchAPI                = windows.NewLazySystemDLL("api-ms-win-core-synch-l1-2-0.dll")
	procWaitOnAddress       = synchAPI.NewProc("WaitOnAddress")
	procWakeByAddressSingle = synchAPI.NewProc("WakeByAddressSingle")
	procWakeByAddressAll    = synchAPI.NewProc("WakeByAddressAll")
)

type addressBackend struct{}

func newPlatformBackend() Backend {
	for _, p := range []*windows.LazyProc{procWaitOnAddress, procWakeByAddressSingle, procWakeByAddressAll} {
		if p.Find() != nil {
			return Emulated()
		}
	}
	return addressBackend{}
}

func (addressBackend) Name() string { return "windows-waitonaddress" }

func (addressBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) Result {
	ms := uint32(infiniteMillis)
	if timeout > 0 {
		ms = durationToMillis(timeout)
	}
	cmp := expected
	r, _, err := procWaitOnAddress.Call(
		uintptr(unsafe.Pointer(addr)),
		uintptr(unsafe.Pointer(&cmp)),
		unsafe.Sizeof(cmp),
		uintptr(ms))
	if r != 0 {
		return Result{Status: Success}
	}
	if err == windows.ERROR_TIMEOUT {
		return Result{Status: TimedOut}
	}
	return Result{Status: Failed, Err: err}
}

func (addressBackend) WakeOne(addr *uint32) {
	procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(addr)))
}

func (addressBackend) WakeAll(addr *uint32) {
	procWakeByAddressAll.Call(uintptr(unsafe.Pointer(addr)))
}
