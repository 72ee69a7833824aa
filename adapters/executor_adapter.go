// File: adapters/executor_adapter.go
// Package adapters provides glue between the job runtime and the api contracts.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecutorAdapter exposes a jobs.Pool as an api.Executor. Every Submit
// becomes a detached single-function job, so tasks share the pool's workers,
// statistics and failure logging with regular jobs.

package adapters

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/core/jobs"
)

var _ api.Executor = (*ExecutorAdapter)(nil)

// ExecutorAdapter wraps a pool to satisfy the api.Executor contract.
type ExecutorAdapter struct {
	pool *jobs.Pool
}

// NewExecutorAdapter returns an api.Executor backed by pool. The caller
// keeps ownership of pool.
func NewExecutorAdapter(pool *jobs.Pool) *ExecutorAdapter {
	return &ExecutorAdapter{pool: pool}
}

// Submit runs task asynchronously. A task that panics with an error value
// is logged by the pool; any other panic follows the pool's fatal hook.
func (ea *ExecutorAdapter) Submit(task func()) error {
	if task == nil {
		e := api.NewError(api.ErrCodeInvalidArgument, "executor: nil task")
		e.Cause = api.ErrInvalidArgument
		return e
	}
	err := ea.pool.Go(func() error {
		task()
		return nil
	})
	if errors.Is(err, jobs.ErrPoolClosed) {
		e := api.NewError(api.ErrCodeClosed, "executor: submit after close").
			WithContext("pool", ea.pool.Name())
		e.Cause = fmt.Errorf("%w: %w", api.ErrClosed, err)
		return e
	}
	return err
}

// NumWorkers returns the pool's worker count.
func (ea *ExecutorAdapter) NumWorkers() int {
	return ea.pool.NumWorkers()
}

// Pool returns the wrapped pool.
func (ea *ExecutorAdapter) Pool() *jobs.Pool { return ea.pool }
