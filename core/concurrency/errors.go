// File: core/concurrency/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Failure reporting for the blocking primitives.

package concurrency

import (
	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/internal/futex"
)

// fail raises an unrecoverable system error for a futex wait that returned
// something other than success, timeout or interruption. Such a result means
// a broken platform assumption; there is nothing a caller could retry.
func fail(op string, res futex.Result, word uint32) {
	panic(api.SystemError("concurrency: "+op, res.Err).
		WithContext("status", res.Status.String()).
		WithContext("word", word))
}
