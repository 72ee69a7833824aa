// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control over the control package.

package adapters

import (
	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/control"
	"github.com/momentics/hioload-jobs/core/jobs"
)

var _ api.Control = (*ControlAdapter)(nil)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter builds a control surface over store. A nil store
// starts from control.DefaultConfig.
func NewControlAdapter(store *control.ConfigStore) *ControlAdapter {
	if store == nil {
		store = control.NewConfigStore(control.DefaultConfig())
	}
	adapter := &ControlAdapter{
		config:  store,
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	return c.config.SetConfig(cfg)
}

// Stats merges metrics with debug probe output under "debug.".
func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any, len(stats)+len(debugStats))
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(func(control.Config) { fn() })
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// TrackPool publishes the pool's counters as "<prefix>.<counter>" metrics,
// read fresh on every Stats call.
func (c *ControlAdapter) TrackPool(prefix string, p *jobs.Pool) {
	c.metrics.Collect(prefix, func() map[string]any {
		st := p.Stats()
		return map[string]any{
			"workers":   st.Workers,
			"scheduled": st.Scheduled,
			"pending":   st.Pending,
			"units_run": st.UnitsRun,
			"failures":  st.Failures,
			"fatals":    st.Fatals,
			"queued":    st.Queued,
		}
	})
}

// Store returns the underlying configuration store.
func (c *ControlAdapter) Store() *control.ConfigStore { return c.config }
