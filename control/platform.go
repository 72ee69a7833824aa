// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Probes shared by every platform.

package control

import (
	"runtime"

	"github.com/momentics/hioload-jobs/internal/futex"
)

// RegisterPlatformProbes adds the common probes and any platform extras.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("futex.backend", func() any { return futex.Platform().Name() })
	registerOSProbes(dp)
}
