// File: adapters/waiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"time"

	"github.com/momentics/hioload-jobs/api"
)

// Await waits for w and maps the outcome onto api error codes:
// ErrCodeTimeout when timeout elapses first, ErrCodeJobFailed when the
// awaited work failed. A negative timeout waits forever.
func Await(w api.Waiter, timeout time.Duration) error {
	if timeout < 0 {
		return jobFailed(w.Wait())
	}
	done, err := w.WaitFor(timeout)
	if err != nil {
		return jobFailed(err)
	}
	if !done {
		return api.NewError(api.ErrCodeTimeout, "wait timed out").
			WithContext("timeout", timeout.String())
	}
	return nil
}

func jobFailed(err error) error {
	if err == nil {
		return nil
	}
	e := api.NewError(api.ErrCodeJobFailed, "job failed")
	e.Cause = err
	return e
}
