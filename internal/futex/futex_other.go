//go:build !linux && !openbsd && !windows && !(darwin && cgo)

// File: internal/futex/futex_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package futex

func newPlatformBackend() Backend { return Emulated() }
