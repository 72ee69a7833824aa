// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_windows.go, etc.) guarded by build tags.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-jobs/api"
)

// SetAffinity pins the current OS thread to a given logical CPU on supported
// platforms. The caller must have locked its goroutine to the thread
// (runtime.LockOSThread) or the binding applies to whatever thread the
// goroutine happens to run on.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: %w: cpu %d", api.ErrInvalidArgument, cpuID)
	}
	return setAffinityPlatform(cpuID)
}
