// File: internal/concurrency/executor.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor runs pre-partitioned tasks on a fixed set of worker goroutines.
// Each worker is locked to its own OS thread for its whole life. Workers are
// created once in NewExecutor and joined once on Close; there is no resizing.
//

package concurrency

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	primitives "github.com/momentics/hioload-jobs/core/concurrency"
)

// Runner executes one unit of a task on worker thread `thread`.
type Runner interface {
	Run(thread, index int)
}

// Task is one dispatchable unit: Runner.Run(thread, Index).
type Task struct {
	Runner Runner
	Index  int
}

// Config controls executor construction.
type Config struct {
	Workers  int          // <= 0 means runtime.NumCPU()
	Pin      bool         // bind worker i to CPU FirstCPU+i
	FirstCPU int          // first CPU used when Pin is set
	Name     string       // label for logs
	Logger   *slog.Logger // nil means slog.Default()
}

// Stats is a point-in-time snapshot of executor counters.
type Stats struct {
	Workers   int
	Submitted int64
	Completed int64
	Queued    int
}

// Executor manages a pool of worker threads.
type Executor struct {
	queue   *lockFreeQueue[Task]
	pending primitives.Semaphore // one token per queued task, plus one per worker on shutdown
	stopped *primitives.Latch
	workers int
	log     *slog.Logger

	closed     atomic.Bool
	submitters atomic.Int32

	// statistics
	submitted atomic.Int64
	completed atomic.Int64
}

// NewExecutor starts cfg.Workers worker threads.
func NewExecutor(cfg Config) *Executor {
	n := cfg.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name != "" {
		logger = logger.With("executor", cfg.Name)
	}
	e := &Executor{
		queue:   NewLockFreeQueue[Task](),
		stopped: primitives.NewLatch(n),
		workers: n,
		log:     logger,
	}
	for i := 0; i < n; i++ {
		cpuID := -1
		if cfg.Pin {
			cpuID = cfg.FirstCPU + i
		}
		go e.run(i, cpuID)
	}
	return e
}

// Submit enqueues a task. Returns ErrExecutorClosed once shutdown started.
func (e *Executor) Submit(t Task) error {
	e.submitters.Add(1)
	defer e.submitters.Add(-1)
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	e.submitted.Add(1)
	e.queue.Enqueue(t)
	e.pending.Signal()
	return nil
}

// NumWorkers returns the fixed worker count.
func (e *Executor) NumWorkers() int { return e.workers }

// Shutdown stops accepting tasks and tells workers to exit once the queue is
// drained. It does not wait, so it is safe to call from a worker.
func (e *Executor) Shutdown() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	// Let in-flight Submit calls finish enqueueing before the exit tokens go
	// out, so no task lands behind a departed worker.
	for e.submitters.Load() != 0 {
		runtime.Gosched()
	}
	for i := 0; i < e.workers; i++ {
		e.pending.Signal()
	}
}

// Close shuts down and waits for every worker to exit. Must not be called
// from a worker thread.
func (e *Executor) Close() {
	e.Shutdown()
	e.Join()
}

// Join waits for every worker to exit without initiating shutdown itself.
func (e *Executor) Join() { e.stopped.Wait() }

// Done reports whether every worker has exited.
func (e *Executor) Done() bool { return e.stopped.TryWait() }

// Stats returns basic executor metrics.
func (e *Executor) Stats() Stats {
	return Stats{
		Workers:   e.workers,
		Submitted: e.submitted.Load(),
		Completed: e.completed.Load(),
		Queued:    e.queue.Len(),
	}
}

func (e *Executor) run(id, cpuID int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer e.stopped.CountDown(1)

	if cpuID >= 0 {
		if err := PinCurrentThread(cpuID); err != nil {
			e.log.Warn("worker pinning failed", "worker", id, "cpu", cpuID, "err", err)
		}
	}
	e.log.Debug("worker started", "worker", id)
	defer e.log.Debug("worker stopped", "worker", id)

	for {
		e.pending.Wait()
		t, ok := e.queue.Dequeue()
		if !ok {
			// Tokens outnumber tasks only after Shutdown.
			if e.closed.Load() {
				return
			}
			continue
		}
		t.Runner.Run(id, t.Index)
		e.completed.Add(1)
	}
}
