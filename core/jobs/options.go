// File: core/jobs/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package jobs

import (
	"log/slog"
)

type config struct {
	logger   *slog.Logger
	name     string
	pin      bool
	firstCPU int
	onFatal  func(*PanicError)
}

// Option configures a Pool.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger:  slog.Default(),
		onFatal: abortOnFatal,
	}
}

// WithLogger sets the structured logger used by the pool and its workers.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName labels the pool in log records and stats.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithPinning binds worker i to CPU firstCPU+i (modulo the CPU count).
// NewPool fails with api.ErrInvalidArgument if firstCPU is negative.
func WithPinning(firstCPU int) Option {
	return func(c *config) {
		c.pin = true
		c.firstCPU = firstCPU
	}
}

// WithOnFatal replaces the hook invoked when a job unit panics with a value
// that is not an error. The default hook re-panics on the worker, which
// terminates the process. If the hook returns, the unit's failure is
// recorded as ErrFatal and the job still completes.
func WithOnFatal(fn func(*PanicError)) Option {
	return func(c *config) {
		if fn != nil {
			c.onFatal = fn
		}
	}
}

func abortOnFatal(p *PanicError) { panic(p.Value) }
