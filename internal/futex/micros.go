// File: internal/futex/micros.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package futex

import (
	"math"
	"syscall"
	"time"
)

// durationToMicros converts a positive timeout into the uint32 microsecond
// count ulock expects. Zero means "forever" to ulock, so positive
// sub-microsecond timeouts round up to 1. The intermediate value saturates at
// MaxUint64; anything that does not fit in a uint32 is rejected with EINVAL.
func durationToMicros(d time.Duration) (uint32, error) {
	if d <= 0 {
		return 0, syscall.EINVAL
	}
	us := uint64(d / time.Microsecond)
	if d%time.Microsecond != 0 {
		if us == math.MaxUint64 {
			return 0, syscall.EINVAL
		}
		us++
	}
	if us > math.MaxUint32 {
		return 0, syscall.EINVAL
	}
	return uint32(us), nil
}

// durationToMillis is the Windows counterpart: rounds up, and clamps just
// below INFINITE so a finite timeout never turns into an endless wait.
func durationToMillis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms >= math.MaxUint32 {
		return math.MaxUint32 - 1
	}
	return uint32(ms)
}
