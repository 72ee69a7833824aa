//go:build windows
// +build windows

// control/platform_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific debug probes.

package control

import (
	"golang.org/x/sys/windows"
)

func registerOSProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.windows_version", func() any {
		maj, min, build := windows.RtlGetNtVersionNumbers()
		return [3]uint32{maj, min, build}
	})
}
