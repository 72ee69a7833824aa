//go:build unix

// File: internal/futex/errno_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package futex

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// classify folds a raw futex/ulock errno into a Result.
// EAGAIN means the word no longer held the expected value.
func classify(errno syscall.Errno) Result {
	switch errno {
	case 0, unix.EAGAIN:
		return Result{Status: Success}
	case unix.ETIMEDOUT:
		return Result{Status: TimedOut}
	case unix.EINTR:
		return Result{Status: Interrupted}
	default:
		return Result{Status: Failed, Err: errno}
	}
}
