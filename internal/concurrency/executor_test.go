package concurrency

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs    atomic.Int64
	indices [64]atomic.Int32
	badTID  atomic.Bool
	workers int
}

func (r *countingRunner) Run(thread, index int) {
	if thread < 0 || thread >= r.workers {
		r.badTID.Store(true)
	}
	r.indices[index%len(r.indices)].Add(1)
	r.runs.Add(1)
}

func TestExecutorRunsEveryTaskOnce(t *testing.T) {
	e := NewExecutor(Config{Workers: 3, Name: "test"})
	r := &countingRunner{workers: 3}

	const n = 64 * 50
	for i := 0; i < n; i++ {
		require.NoError(t, e.Submit(Task{Runner: r, Index: i}))
	}
	e.Close()

	assert.True(t, e.Done())
	assert.Equal(t, int64(n), r.runs.Load())
	for i := range r.indices {
		assert.Equal(t, int32(50), r.indices[i].Load(), "index %d", i)
	}
	assert.False(t, r.badTID.Load(), "thread index out of range")

	st := e.Stats()
	assert.Equal(t, 3, st.Workers)
	assert.Equal(t, int64(n), st.Submitted)
	assert.Equal(t, int64(n), st.Completed)
	assert.Equal(t, 0, st.Queued)
}

func TestExecutorRejectsAfterShutdown(t *testing.T) {
	e := NewExecutor(Config{Workers: 1})
	e.Close()
	e.Close() // idempotent
	err := e.Submit(Task{Runner: &countingRunner{workers: 1}})
	assert.ErrorIs(t, err, ErrExecutorClosed)
}

func TestExecutorDefaultsWorkerCount(t *testing.T) {
	e := NewExecutor(Config{})
	defer e.Close()
	assert.Greater(t, e.NumWorkers(), 0)
}

func TestExecutorPinnedWorkersStillRun(t *testing.T) {
	// Pinning may be refused by the platform; tasks must run regardless.
	e := NewExecutor(Config{Workers: 2, Pin: true})
	r := &countingRunner{workers: 2}
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Submit(Task{Runner: r, Index: i}))
	}
	e.Close()
	assert.Equal(t, int64(10), r.runs.Load())
}
