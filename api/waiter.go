// File: api/waiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// Waiter is anything whose completion can be awaited, such as a job handle.
// A failure is reported once, to the first call that observes completion.
type Waiter interface {
	Wait() error
	// WaitFor reports whether completion happened within timeout.
	WaitFor(timeout time.Duration) (bool, error)
	// TryWait never blocks.
	TryWait() (bool, error)
}
