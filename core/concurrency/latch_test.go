package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-jobs/internal/futex"
)

func TestLatchReleasesWaiterAfterAllCountDowns(t *testing.T) {
	l := NewLatch(3)
	require.False(t, l.TryWait())

	waiting := make(chan struct{})
	released := make(chan struct{})
	go func() {
		close(waiting)
		l.Wait()
		close(released)
	}()
	<-waiting

	for i := 0; i < 2; i++ {
		l.CountDown(1)
	}
	select {
	case <-released:
		t.Fatal("waiter released before the last count-down")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, l.TryWait())

	var g errgroup.Group
	g.Go(func() error { l.CountDown(1); return nil })
	require.NoError(t, g.Wait())

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not released")
	}
	assert.True(t, l.TryWait())
}

func TestLatchConcurrentCountDowns(t *testing.T) {
	const n = 64
	l := NewLatch(n)

	var waiters sync.WaitGroup
	for i := 0; i < 8; i++ {
		waiters.Add(1)
		go func() {
			defer waiters.Done()
			l.Wait()
		}()
	}

	var openers atomic.Int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if l.CountDown(1) {
				openers.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	waiters.Wait()
	assert.Equal(t, 0, l.Remaining())
	assert.Equal(t, int32(1), openers.Load())
}

func TestLatchNeverReopens(t *testing.T) {
	l := NewLatch(2)
	assert.True(t, l.CountDown(5), "the opening call reports it")
	assert.True(t, l.TryWait())
	assert.False(t, l.CountDown(1))
	assert.False(t, l.CountDown(100))
	assert.True(t, l.TryWait())
	assert.Equal(t, 0, l.Remaining())
	assert.True(t, l.WaitFor(0))
}

func TestLatchWaitFor(t *testing.T) {
	l := NewLatch(1)
	start := time.Now()
	assert.False(t, l.WaitFor(30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.CountDown(1)
	}()
	assert.True(t, l.WaitFor(5*time.Second))
}

func TestLatchZeroValueIsOpen(t *testing.T) {
	var l Latch
	assert.True(t, l.TryWait())
	l.Wait()
	l.CountDown(0)
}

func TestLatchRejectsInvalidCounts(t *testing.T) {
	assert.Panics(t, func() { NewLatch(-1) })
	assert.Panics(t, func() { NewLatch(1).CountDown(-1) })
}

func TestLatchWaitForAcceptsLongTimeouts(t *testing.T) {
	l := NewLatch(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.CountDown(1)
	}()
	assert.True(t, l.WaitFor(2*time.Hour))
}

func TestWaitSliceFitsEveryBackend(t *testing.T) {
	assert.Equal(t, time.Second, waitSlice(time.Second))
	assert.Equal(t, futex.MaxTimeout, waitSlice(2*time.Hour))
	assert.Equal(t, futex.MaxTimeout, waitSlice(futex.MaxTimeout))
}
