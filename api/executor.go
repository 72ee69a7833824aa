// Package api
// Author: momentics
//
// Executor contract for fire-and-forget task dispatch.

package api

// Executor runs tasks on a fixed set of workers.
type Executor interface {
	// Submit schedules task for execution. It returns ErrClosed once the
	// executor no longer accepts work.
	Submit(task func()) error

	// NumWorkers returns the fixed worker count.
	NumWorkers() int
}
