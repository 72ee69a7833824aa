// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration: a typed Config, environment loading, and a store
// that publishes immutable snapshots and fans changes out to reload hooks.

package control

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/momentics/hioload-jobs/api"
)

// Config keys as they appear in map form and, upper-cased with a prefix,
// in the environment.
const (
	KeyWorkers  = "workers"
	KeyPin      = "pin"
	KeyFirstCPU = "first_cpu"
	KeyLogLevel = "log_level"
	KeyName     = "name"
)

// Config describes a job runtime.
type Config struct {
	Workers    int        // <= 0 means one per CPU
	PinWorkers bool       // bind worker i to CPU FirstCPU+i
	FirstCPU   int        // first CPU when PinWorkers is set
	LogLevel   slog.Level // minimum level for runtime logs
	Name       string     // pool label in logs and metrics
}

// DefaultConfig returns a configuration suitable for most hosts.
func DefaultConfig() Config {
	return Config{
		Workers:  0,
		LogLevel: slog.LevelInfo,
		Name:     "jobs",
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.FirstCPU < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be >= 0, got %d", api.ErrInvalidArgument, KeyFirstCPU, c.FirstCPU))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be >= 0, got %d", api.ErrInvalidArgument, KeyWorkers, c.Workers))
	}
	return errors.Join(errs...)
}

// Map returns the configuration keyed by the Key* constants.
func (c Config) Map() map[string]any {
	return map[string]any{
		KeyWorkers:  c.Workers,
		KeyPin:      c.PinWorkers,
		KeyFirstCPU: c.FirstCPU,
		KeyLogLevel: c.LogLevel.String(),
		KeyName:     c.Name,
	}
}

// Apply returns c with the known keys of m merged in. Values may be typed
// or strings; unknown keys are rejected.
func (c Config) Apply(m map[string]any) (Config, error) {
	for k, v := range m {
		var err error
		switch k {
		case KeyWorkers:
			c.Workers, err = asInt(v)
		case KeyFirstCPU:
			c.FirstCPU, err = asInt(v)
		case KeyPin:
			c.PinWorkers, err = asBool(v)
		case KeyLogLevel:
			c.LogLevel, err = asLevel(v)
		case KeyName:
			c.Name = fmt.Sprint(v)
		default:
			err = fmt.Errorf("%w: unknown config key", api.ErrInvalidArgument)
		}
		if err != nil {
			return c, fmt.Errorf("control: %s: %w", k, err)
		}
	}
	return c, nil
}

// LoadEnv overlays <PREFIX>_WORKERS, _PIN, _FIRST_CPU, _LOG_LEVEL and _NAME
// on top of DefaultConfig. Unset variables keep their defaults.
func LoadEnv(prefix string) (Config, error) {
	m := make(map[string]any)
	for _, key := range []string{KeyWorkers, KeyPin, KeyFirstCPU, KeyLogLevel, KeyName} {
		name := strings.ToUpper(key)
		if prefix != "" {
			name = strings.ToUpper(prefix) + "_" + name
		}
		if v, ok := os.LookupEnv(name); ok {
			m[key] = v
		}
	}
	cfg, err := DefaultConfig().Apply(m)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func asInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	}
	return 0, fmt.Errorf("%w: %T is not an integer", api.ErrInvalidArgument, v)
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	return false, fmt.Errorf("%w: %T is not a boolean", api.ErrInvalidArgument, v)
}

func asLevel(v any) (slog.Level, error) {
	switch x := v.(type) {
	case slog.Level:
		return x, nil
	case string:
		var l slog.Level
		err := l.UnmarshalText([]byte(strings.TrimSpace(x)))
		return l, err
	}
	return 0, fmt.Errorf("%w: %T is not a log level", api.ErrInvalidArgument, v)
}

// ConfigStore holds the current Config. Reads are lock-free snapshots;
// updates are validated, published, then handed to every reload hook.
type ConfigStore struct {
	current atomic.Pointer[Config]
	hooks   hookSet
}

// NewConfigStore initializes a store holding cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	cs := &ConfigStore{}
	cs.current.Store(&cfg)
	return cs
}

// Load returns the current configuration.
func (cs *ConfigStore) Load() Config { return *cs.current.Load() }

// GetSnapshot returns the current configuration in map form.
func (cs *ConfigStore) GetSnapshot() map[string]any { return cs.Load().Map() }

// Update validates cfg, publishes it and runs the reload hooks.
func (cs *ConfigStore) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.current.Store(&cfg)
	cs.hooks.run(cfg)
	return nil
}

// SetConfig merges m into the current configuration.
func (cs *ConfigStore) SetConfig(m map[string]any) error {
	cfg, err := cs.Load().Apply(m)
	if err != nil {
		return err
	}
	return cs.Update(cfg)
}

// OnReload registers a hook called synchronously after every update.
func (cs *ConfigStore) OnReload(fn func(Config)) { cs.hooks.add(fn) }
