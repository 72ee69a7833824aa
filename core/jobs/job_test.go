package jobs

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHandles(t *testing.T) {
	for name, j := range map[string]*Job{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, j.Empty())
			assert.Zero(t, j.ID())
			assert.NoError(t, j.Wait())

			done, err := j.TryWait()
			assert.True(t, done)
			assert.NoError(t, err)

			done, err = j.WaitFor(0)
			assert.True(t, done)
			assert.NoError(t, err)

			c := j.Clone()
			require.NotNil(t, c)
			assert.True(t, c.Empty())
			assert.NoError(t, j.Close())
		})
	}
}

func TestSingleFailureIsDeliveredOnce(t *testing.T) {
	p := newTestPool(t, 2)
	boom := errors.New("boom")

	j, err := p.Schedule(func() error { return boom })
	require.NoError(t, err)

	assert.Equal(t, boom, j.Wait())
	assert.NoError(t, j.Wait(), "failure already delivered")
	assert.NoError(t, j.Close())
}

func TestFailureIsNotObservedBeforeCompletion(t *testing.T) {
	p := newTestPool(t, 1)
	gate := make(chan struct{})
	boom := errors.New("late")

	j, err := p.Schedule(func() error { <-gate; return boom })
	require.NoError(t, err)
	defer j.Close()

	done, err := j.TryWait()
	assert.False(t, done)
	assert.NoError(t, err)

	done, err = j.WaitFor(10 * time.Millisecond)
	assert.False(t, done)
	assert.NoError(t, err)

	close(gate)
	assert.Eventually(t, func() bool {
		done, err := j.TryWait()
		if done {
			assert.Equal(t, boom, err)
		}
		return done
	}, time.Second, time.Millisecond)
}

func TestMultiFailuresKeepTheirSlots(t *testing.T) {
	p := newTestPool(t, 3)
	first, third := errors.New("first"), errors.New("third")

	err := p.Execute(
		func() error { return first },
		func() error { return nil },
		func() error { return third },
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, third)

	slots := SlotErrors(err)
	require.Len(t, slots, 2)
	assert.Equal(t, 0, slots[0].Slot)
	assert.Equal(t, first, slots[0].Err)
	assert.Equal(t, 2, slots[1].Slot)
	assert.Equal(t, third, slots[1].Err)
}

func TestParallelFailureReportsFirstUnit(t *testing.T) {
	p := newTestPool(t, 4)
	bad := errors.New("bad unit")

	err := p.ExecuteParallel(64, func(_, index int) error {
		if index == 7 {
			return bad
		}
		return nil
	})
	require.ErrorIs(t, err, ErrUncaught)
	assert.ErrorIs(t, err, bad)

	var unit *UnitError
	require.ErrorAs(t, err, &unit)
	assert.Equal(t, 7, unit.Unit)
}

func TestErrorPanicIsCaptured(t *testing.T) {
	p := newTestPool(t, 1)
	cause := errors.New("exploded")

	err := p.Execute(func() error { panic(cause) })
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cause, pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.ErrorIs(t, err, cause)

	// Runtime faults are errors too.
	err = p.Execute(func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(2), p.Stats().Failures)
}

func TestNonErrorPanicGoesToFatalHook(t *testing.T) {
	var hooked atomic.Pointer[PanicError]
	p := newTestPool(t, 2, WithOnFatal(func(pe *PanicError) { hooked.Store(pe) }))

	var after atomic.Bool
	j, err := p.Schedule(func() error { panic("not an error") })
	require.NoError(t, err)
	next, err := p.ScheduleAfter(j, func() error { after.Store(true); return nil })
	require.NoError(t, err)

	assert.ErrorIs(t, j.Close(), ErrFatal)
	require.NoError(t, next.Close())
	assert.True(t, after.Load(), "dependents still run after a fatal unit")

	pe := hooked.Load()
	require.NotNil(t, pe)
	assert.Equal(t, "not an error", pe.Value)
	assert.Equal(t, int64(1), p.Stats().Fatals)
}

func TestCloneSharesOneDelivery(t *testing.T) {
	p := newTestPool(t, 1)
	boom := errors.New("shared")

	j, err := p.Schedule(func() error { return boom })
	require.NoError(t, err)
	c := j.Clone()
	assert.Equal(t, j.ID(), c.ID())

	assert.Equal(t, boom, j.Close())
	assert.NoError(t, j.Close(), "second Close is a no-op")
	assert.NoError(t, c.Wait(), "the failure went to the first observer")
	assert.NoError(t, c.Close())
}

func TestCloseWaitsForCompletion(t *testing.T) {
	p := newTestPool(t, 1)
	var finished atomic.Bool

	j, err := p.Schedule(func() error {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.True(t, finished.Load())
}

func TestDependentStartsAfterPredecessor(t *testing.T) {
	p := newTestPool(t, 4)

	var predDone atomic.Bool
	var orderOK atomic.Bool
	pred, err := p.ScheduleParallel(8, func(_, _ int) error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	marker, err := p.ScheduleAfter(pred, func() error { predDone.Store(true); return nil })
	require.NoError(t, err)
	dep, err := p.ScheduleAfter(marker, func() error {
		orderOK.Store(predDone.Load())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, dep.Close())
	assert.True(t, orderOK.Load())
	ok, err := pred.TryWait()
	assert.True(t, ok)
	assert.NoError(t, err)
	require.NoError(t, marker.Close())
	require.NoError(t, pred.Close())
}

func TestDependencyChainRunsInOrder(t *testing.T) {
	p := newTestPool(t, 4)
	const n = 50

	var step atomic.Int32
	var outOfOrder atomic.Bool
	var prev *Job
	handles := make([]*Job, 0, n)
	for i := 0; i < n; i++ {
		want := int32(i)
		j, err := p.ScheduleAfter(prev, func() error {
			if !step.CompareAndSwap(want, want+1) {
				outOfOrder.Store(true)
			}
			return nil
		})
		require.NoError(t, err)
		handles = append(handles, j)
		prev = j
	}
	require.NoError(t, prev.Wait())
	for _, j := range handles {
		require.NoError(t, j.Close())
	}
	assert.False(t, outOfOrder.Load())
	assert.Equal(t, int32(n), step.Load())
}

func TestScheduleAfterCompletedJobDispatchesImmediately(t *testing.T) {
	p := newTestPool(t, 2)

	pred, err := p.Schedule(func() error { return nil })
	require.NoError(t, err)
	require.NoError(t, pred.Wait())

	var ran atomic.Bool
	j, err := p.ScheduleAfter(pred, func() error { ran.Store(true); return nil })
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.True(t, ran.Load())
	require.NoError(t, pred.Close())
}

func TestDependentsDispatchInRegistrationOrder(t *testing.T) {
	p := newTestPool(t, 1)
	gate := make(chan struct{})

	pred, err := p.Schedule(func() error { <-gate; return nil })
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	var deps []*Job
	for i := 0; i < 5; i++ {
		j, err := p.ScheduleAfter(pred, func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		deps = append(deps, j)
	}
	close(gate)
	for _, j := range deps {
		require.NoError(t, j.Close())
	}
	require.NoError(t, pred.Close())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestManyDependentsOnOnePredecessor(t *testing.T) {
	p := newTestPool(t, 4)
	gate := make(chan struct{})
	pred, err := p.Schedule(func() error { <-gate; return nil })
	require.NoError(t, err)

	var released atomic.Bool
	var early atomic.Int32
	var deps []*Job
	for i := 0; i < 100; i++ {
		j, err := p.ScheduleParallelAfter(pred, 3, func(_, _ int) error {
			if !released.Load() {
				early.Add(1)
			}
			return nil
		})
		require.NoError(t, err)
		deps = append(deps, j)
	}
	released.Store(true)
	close(gate)

	all, err := Combine(deps...)
	require.NoError(t, err)
	require.NoError(t, all.Close())
	for _, j := range deps {
		require.NoError(t, j.Close())
	}
	require.NoError(t, pred.Close())
	assert.Zero(t, early.Load())
	assert.Equal(t, int64(1+300), p.Stats().UnitsRun)
}

func TestCombineWaitsForEveryMember(t *testing.T) {
	p := newTestPool(t, 2)
	gate := make(chan struct{})

	a, err := p.Schedule(func() error { return nil })
	require.NoError(t, err)
	b, err := p.Schedule(func() error { <-gate; return nil })
	require.NoError(t, err)

	all, err := Combine(a, nil, &Job{}, b)
	require.NoError(t, err)
	require.False(t, all.Empty())

	start := time.Now()
	done, err := all.WaitFor(30 * time.Millisecond)
	assert.False(t, done)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	close(gate)
	done, err = all.WaitFor(time.Second)
	assert.True(t, done)
	assert.NoError(t, err)

	require.NoError(t, all.Close())
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}

func TestCombineReportsMemberFailures(t *testing.T) {
	p := newTestPool(t, 2)
	e1, e2 := errors.New("one"), errors.New("two")

	a, err := p.Schedule(func() error { return e1 })
	require.NoError(t, err)
	b, err := p.Schedule(func() error { return e2 })
	require.NoError(t, err)

	all, err := Combine(a, b)
	require.NoError(t, err)
	err = all.Close()
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	// Members still deliver their own failures.
	assert.Equal(t, e1, a.Close())
	assert.Equal(t, e2, b.Close())
}

func TestScheduleAfterCollection(t *testing.T) {
	p := newTestPool(t, 3)
	var ran atomic.Int32

	a, err := p.ScheduleParallel(10, func(_, _ int) error {
		time.Sleep(time.Millisecond)
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	b, err := p.Schedule(func() error { ran.Add(1); return nil })
	require.NoError(t, err)
	both, err := Combine(a, b)
	require.NoError(t, err)

	var seen atomic.Int32
	after, err := p.ScheduleAfter(both, func() error { seen.Store(ran.Load()); return nil })
	require.NoError(t, err)
	require.NoError(t, after.Close())
	assert.Equal(t, int32(11), seen.Load())

	for _, j := range []*Job{both, a, b} {
		require.NoError(t, j.Close())
	}
}

func TestCombineEmpty(t *testing.T) {
	j, err := Combine()
	require.NoError(t, err)
	assert.True(t, j.Empty())

	j, err = Combine(nil, &Job{})
	require.NoError(t, err)
	assert.True(t, j.Empty())
}

func TestCrossPoolIsRejected(t *testing.T) {
	p1 := newTestPool(t, 1)
	p2 := newTestPool(t, 1)

	a, err := p1.Schedule(func() error { return nil })
	require.NoError(t, err)
	defer a.Close()
	b, err := p2.Schedule(func() error { return nil })
	require.NoError(t, err)
	defer b.Close()

	_, err = Combine(a, b)
	assert.ErrorIs(t, err, ErrCrossPool)

	_, err = p2.ScheduleAfter(a, func() error { return nil })
	assert.ErrorIs(t, err, ErrCrossPool)
}

func TestPredecessorsDoneTracksWeakBackReferences(t *testing.T) {
	p := newTestPool(t, 1)
	gate := make(chan struct{})

	pred, err := p.Schedule(func() error { <-gate; return nil })
	require.NoError(t, err)
	dep, err := p.ScheduleAfter(pred, func() error { return nil })
	require.NoError(t, err)

	require.Len(t, dep.h.deps, 1)
	assert.Same(t, pred.h, dep.h.deps[0].Value())
	assert.False(t, dep.h.predecessorsDone())

	close(gate)
	require.NoError(t, dep.Close())
	assert.True(t, dep.h.predecessorsDone())
	require.NoError(t, pred.Close())
}

func TestReleaseDropsClosures(t *testing.T) {
	p := newTestPool(t, 1)

	j, err := p.Schedule(func() error { return nil })
	require.NoError(t, err)
	h := j.h
	c := j.Clone()

	require.NoError(t, j.Close())
	assert.NotNil(t, h.exec.fns, "a live clone keeps the job")
	require.NoError(t, c.Close())
	assert.Nil(t, h.exec.fns)
}
