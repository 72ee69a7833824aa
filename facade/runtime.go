// File: facade/runtime.go
// Unified facade layer for hioload-jobs.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime aggregates the job pool, its control surface and a level-adjustable
// logger behind one constructor driven by control.Config. Log level changes
// made through Control take effect immediately; worker count and pinning are
// fixed for the life of the runtime.

package facade

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/momentics/hioload-jobs/adapters"
	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/control"
	"github.com/momentics/hioload-jobs/core/jobs"
)

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*Runtime)(nil)

type options struct {
	output  io.Writer
	json    bool
	onFatal func(*jobs.PanicError)
}

// Option customises a Runtime.
type Option func(*options)

// WithOutput sends logs to w instead of stderr.
func WithOutput(w io.Writer) Option { return func(o *options) { o.output = w } }

// WithJSONLogs switches the log format from text to JSON.
func WithJSONLogs() Option { return func(o *options) { o.json = true } }

// WithOnFatal forwards to jobs.WithOnFatal.
func WithOnFatal(fn func(*jobs.PanicError)) Option { return func(o *options) { o.onFatal = fn } }

// Runtime is the main facade type.
type Runtime struct {
	level    *slog.LevelVar
	logger   *slog.Logger
	pool     *jobs.Pool
	control  *adapters.ControlAdapter
	executor *adapters.ExecutorAdapter

	mu      sync.Mutex
	stopped bool
}

// New validates cfg and starts a runtime.
func New(cfg control.Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel)
	hopts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(o.output, hopts)
	} else {
		handler = slog.NewTextHandler(o.output, hopts)
	}
	logger := slog.New(handler)

	poolOpts := []jobs.Option{jobs.WithLogger(logger), jobs.WithName(cfg.Name)}
	if cfg.PinWorkers {
		poolOpts = append(poolOpts, jobs.WithPinning(cfg.FirstCPU))
	}
	if o.onFatal != nil {
		poolOpts = append(poolOpts, jobs.WithOnFatal(o.onFatal))
	}
	pool, err := jobs.NewPool(cfg.Workers, poolOpts...)
	if err != nil {
		return nil, err
	}

	store := control.NewConfigStore(cfg)
	r := &Runtime{
		level:    level,
		logger:   logger,
		pool:     pool,
		control:  adapters.NewControlAdapter(store),
		executor: adapters.NewExecutorAdapter(pool),
	}
	r.control.TrackPool("jobs", pool)
	store.OnReload(func(next control.Config) { r.reload(cfg, next) })
	return r, nil
}

// NewFromEnv is New with control.LoadEnv(prefix).
func NewFromEnv(prefix string, opts ...Option) (*Runtime, error) {
	cfg, err := control.LoadEnv(prefix)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func (r *Runtime) reload(initial, next control.Config) {
	if r.level.Level() != next.LogLevel {
		r.level.Set(next.LogLevel)
		r.logger.Info("log level changed", "level", next.LogLevel)
	}
	if next.Workers != initial.Workers || next.PinWorkers != initial.PinWorkers || next.FirstCPU != initial.FirstCPU {
		r.logger.Warn("worker settings apply on restart only",
			"workers", next.Workers, "pin", next.PinWorkers, "first_cpu", next.FirstCPU)
	}
}

// Pool returns the job pool.
func (r *Runtime) Pool() *jobs.Pool { return r.pool }

// Control returns the dynamic config and metrics interface.
func (r *Runtime) Control() api.Control { return r.control }

// Executor returns the pool as a fire-and-forget api.Executor.
func (r *Runtime) Executor() api.Executor { return r.executor }

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// LogLevel returns the current minimum log level.
func (r *Runtime) LogLevel() slog.Level { return r.level.Level() }

// Submit dispatches a task for asynchronous execution.
func (r *Runtime) Submit(task func()) error { return r.executor.Submit(task) }

// Shutdown closes the pool after pending jobs finish. Calling it again is
// a no-op.
func (r *Runtime) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil
	}
	r.stopped = true
	return r.pool.Close()
}
