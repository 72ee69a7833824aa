// hioload-jobs/internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
//
// Worker thread pinning. Platform specifics live in the affinity package.

package concurrency

import (
	"runtime"

	"github.com/momentics/hioload-jobs/affinity"
)

// PinCurrentThread binds the calling OS thread to cpuID, taken modulo the
// CPU count. The caller must already hold runtime.LockOSThread.
func PinCurrentThread(cpuID int) error {
	if cpuID < 0 {
		cpuID = 0
	}
	return affinity.SetAffinity(cpuID % runtime.NumCPU())
}
