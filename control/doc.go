// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot reload, runtime metrics and debug introspection for
// hioload-jobs runtimes.
//
// Provides:
//   - Config with environment loading and validation
//   - ConfigStore: lock-free snapshot reads, validated updates, reload hooks
//   - MetricsRegistry: static values plus polled collectors
//   - DebugProbes and per-platform probes (CPU count, futex backend)
package control
