package adapters_test

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-jobs/adapters"
	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/core/jobs"
)

func newPool(t *testing.T, workers int) *jobs.Pool {
	t.Helper()
	p, err := jobs.NewPool(workers, jobs.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestExecutorAdapterSubmit(t *testing.T) {
	pool := newPool(t, 3)
	var ex api.Executor = adapters.NewExecutorAdapter(pool)
	assert.Equal(t, 3, ex.NumWorkers())

	var wg sync.WaitGroup
	var n atomic.Int32
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, ex.Submit(func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(100), n.Load())

	err := ex.Submit(nil)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
}

func TestExecutorAdapterAfterClose(t *testing.T) {
	pool := newPool(t, 1)
	ex := adapters.NewExecutorAdapter(pool)
	require.NoError(t, pool.Close())

	err := ex.Submit(func() {})
	assert.ErrorIs(t, err, api.ErrClosed)
	assert.ErrorIs(t, err, jobs.ErrPoolClosed)
	assert.Equal(t, api.ErrCodeClosed, api.CodeOf(err))
}
