// File: control/hotreload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reload hook registry used by ConfigStore.

package control

import "sync"

type hookSet struct {
	mu  sync.RWMutex
	fns []func(Config)
}

func (h *hookSet) add(fn func(Config)) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// run invokes hooks in registration order on the caller's goroutine.
func (h *hookSet) run(cfg Config) {
	h.mu.RLock()
	fns := h.fns
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(cfg)
	}
}
