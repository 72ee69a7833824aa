// File: core/jobs/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool owns a fixed set of worker threads and schedules jobs onto them.
// The pool is reference counted: the owner holds one reference and every
// job that has not completed yet holds another. Dropping the last reference
// shuts the workers down, so a Pool closed with work in flight finishes that
// work first.

package jobs

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
	"weak"

	"github.com/momentics/hioload-jobs/api"
	iconc "github.com/momentics/hioload-jobs/internal/concurrency"
)

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	Name      string
	Workers   int
	Scheduled int64 // jobs accepted
	Pending   int64 // jobs not yet completed
	UnitsRun  int64
	Failures  int64 // units that returned or panicked with an error
	Fatals    int64 // units that panicked with a non-error value
	Queued    int   // units waiting for a worker
}

// Pool schedules jobs on worker threads.
type Pool struct {
	exec    *iconc.Executor
	log     *slog.Logger
	name    string
	onFatal func(*PanicError)

	refs   atomic.Int32
	closed atomic.Bool
	nextID atomic.Uint64

	// statistics
	scheduled atomic.Int64
	pending   atomic.Int64
	unitsRun  atomic.Int64
	failures  atomic.Int64
	fatals    atomic.Int64
}

// NewPool starts a pool with the given number of workers; workers <= 0
// means one per CPU.
func NewPool(workers int, opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pin && cfg.firstCPU < 0 {
		return nil, fmt.Errorf("%w: first CPU %d", api.ErrInvalidArgument, cfg.firstCPU)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.logger
	if cfg.name != "" {
		logger = logger.With("pool", cfg.name)
	}

	p := &Pool{
		log:     logger,
		name:    cfg.name,
		onFatal: cfg.onFatal,
	}
	p.refs.Store(1)
	p.exec = iconc.NewExecutor(iconc.Config{
		Workers:  workers,
		Pin:      cfg.pin,
		FirstCPU: cfg.firstCPU,
		Logger:   logger,
	})
	logger.Debug("pool started", "workers", workers, "pinned", cfg.pin)
	return p, nil
}

// Schedule submits a job running fns. One function makes a single job;
// several make a multi job whose functions may run concurrently.
func (p *Pool) Schedule(fns ...func() error) (*Job, error) {
	return p.ScheduleAfter(nil, fns...)
}

// ScheduleAfter is Schedule, except that no function starts before dep has
// completed. A nil or empty dep imposes no ordering.
func (p *Pool) ScheduleAfter(dep *Job, fns ...func() error) (*Job, error) {
	if len(fns) == 0 {
		return nil, ErrInvalidCount
	}
	for i, fn := range fns {
		if fn == nil {
			return nil, fmt.Errorf("%w: function %d", ErrNilFunc, i)
		}
	}
	fns = slices.Clone(fns)
	return p.submit(dep, false, func(x *execution) { x.initFuncs(fns) })
}

// ScheduleParallel submits a job running fn(thread, index) for every index
// in [0, count).
func (p *Pool) ScheduleParallel(count int, fn func(thread, index int) error) (*Job, error) {
	return p.ScheduleParallelAfter(nil, count, fn)
}

// ScheduleParallelAfter is ScheduleParallel ordered after dep.
func (p *Pool) ScheduleParallelAfter(dep *Job, count int, fn func(thread, index int) error) (*Job, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidCount, count)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}
	return p.submit(dep, false, func(x *execution) { x.initParallel(count, fn) })
}

// Go schedules fns without returning a handle. Nobody can wait for the
// job; its failure, if any, is logged at Warn level.
func (p *Pool) Go(fns ...func() error) error {
	if len(fns) == 0 {
		return ErrInvalidCount
	}
	for i, fn := range fns {
		if fn == nil {
			return fmt.Errorf("%w: function %d", ErrNilFunc, i)
		}
	}
	fns = slices.Clone(fns)
	_, err := p.submit(nil, true, func(x *execution) { x.initFuncs(fns) })
	return err
}

// Execute schedules fns and waits for them.
func (p *Pool) Execute(fns ...func() error) error {
	j, err := p.Schedule(fns...)
	if err != nil {
		return err
	}
	return j.Close()
}

// ExecuteParallel schedules a parallel job and waits for it.
func (p *Pool) ExecuteParallel(count int, fn func(thread, index int) error) error {
	j, err := p.ScheduleParallel(count, fn)
	if err != nil {
		return err
	}
	return j.Close()
}

// NumWorkers returns the fixed worker count.
func (p *Pool) NumWorkers() int { return p.exec.NumWorkers() }

// Name returns the label set with WithName.
func (p *Pool) Name() string { return p.name }

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	es := p.exec.Stats()
	return Stats{
		Name:      p.name,
		Workers:   es.Workers,
		Scheduled: p.scheduled.Load(),
		Pending:   p.pending.Load(),
		UnitsRun:  p.unitsRun.Load(),
		Failures:  p.failures.Load(),
		Fatals:    p.fatals.Load(),
		Queued:    es.Queued,
	}
}

// Close stops accepting jobs, lets scheduled jobs finish and waits for the
// workers to exit. It must not be called from inside a job.
func (p *Pool) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		p.log.Info("pool closing", "pending", p.pending.Load())
		p.unref()
	}
	p.exec.Join()
	return nil
}

func (p *Pool) submit(dep *Job, detached bool, init func(*execution)) (*Job, error) {
	var preds []*jobHeader
	if d := dep.header(); d != nil {
		if d.pool != p {
			return nil, ErrCrossPool
		}
		preds = d.leaves(nil)
	}
	if !p.ref() {
		return nil, ErrPoolClosed
	}

	h := &jobHeader{id: p.nextID.Add(1), pool: p, detached: detached}
	init(&h.exec)
	if !detached {
		h.refs.Store(1)
	}
	for _, pred := range preds {
		h.deps = append(h.deps, weak.Make(pred))
	}
	p.scheduled.Add(1)
	p.pending.Add(1)

	h.blockers.Store(1)
	for _, pred := range preds {
		h.blockers.Add(1)
		if !pred.addDependent(h) {
			h.blockers.Add(-1)
		}
	}
	if h.blockers.Add(-1) == 0 {
		p.dispatch(h)
	}
	if detached {
		return nil, nil
	}
	return &Job{h: h}, nil
}

// dispatch hands every unit of h to the workers.
func (p *Pool) dispatch(h *jobHeader) {
	if !h.predecessorsDone() {
		panic(api.NewError(api.ErrCodeInternal, "job dispatched before its predecessor completed").
			WithContext("job", h.id))
	}
	for i, n := 0, h.exec.count(); i < n; i++ {
		if err := p.exec.Submit(iconc.Task{Runner: h, Index: i}); err != nil {
			// The job's own pool reference keeps the executor running.
			panic(api.NewError(api.ErrCodeInternal, "job dispatched to a stopped pool").
				WithContext("job", h.id))
		}
	}
}

// invoke runs one unit and classifies how it ended.
func (p *Pool) invoke(h *jobHeader, thread, index int) (err error) {
	p.unitsRun.Add(1)
	defer func() {
		r := recover()
		if r == nil {
			if err != nil {
				p.failures.Add(1)
			}
			return
		}
		pe := newPanicError(r)
		if _, ok := r.(error); ok {
			p.failures.Add(1)
			err = pe
			return
		}
		p.fatals.Add(1)
		p.log.Error("job panicked with a non-error value",
			"job", h.id, "kind", h.exec.kind, "unit", index, "thread", thread, "panic", r)
		p.onFatal(pe)
		err = ErrFatal
	}()
	return h.exec.call(thread, index)
}

func (p *Pool) jobDone() {
	p.pending.Add(-1)
	p.unref()
}

// ref takes a pool reference unless the pool is closed or already drained.
func (p *Pool) ref() bool {
	if p.closed.Load() {
		return false
	}
	for {
		r := p.refs.Load()
		if r == 0 {
			return false
		}
		if p.refs.CompareAndSwap(r, r+1) {
			return true
		}
	}
}

func (p *Pool) unref() {
	if p.refs.Add(-1) == 0 {
		p.log.Debug("pool drained, stopping workers")
		p.exec.Shutdown()
	}
}
