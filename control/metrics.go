// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics registry. Static values are set directly; collectors are
// polled on every snapshot so live counters such as pool stats stay fresh.

package control

import (
	"sync"
	"time"
)

// MetricsRegistry holds set values and registered collectors.
type MetricsRegistry struct {
	mu         sync.RWMutex
	metrics    map[string]any
	collectors map[string]func() map[string]any
	updated    time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics:    make(map[string]any),
		collectors: make(map[string]func() map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Collect registers fn under prefix. Each snapshot reports fn's keys as
// "<prefix>.<key>". Registering the same prefix again replaces fn.
func (mr *MetricsRegistry) Collect(prefix string, fn func() map[string]any) {
	mr.mu.Lock()
	mr.collectors[prefix] = fn
	mr.mu.Unlock()
}

// GetSnapshot returns set values merged with fresh collector output.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	collectors := make(map[string]func() map[string]any, len(mr.collectors))
	for k, fn := range mr.collectors {
		collectors[k] = fn
	}
	mr.mu.RUnlock()

	for prefix, fn := range collectors {
		for k, v := range fn() {
			out[prefix+"."+k] = v
		}
	}
	return out
}

// Updated returns the time of the last Set.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
