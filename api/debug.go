// Package api
// Author: momentics
//
// Live debug and introspection support for production workloads.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe dynamically registers a new debug probe.
	RegisterProbe(name string, fn func() any)
}
