// Package naming holds the runtime naming configuration: optional transforms
// applied to record field names and enum value names before any per-field
// override.
package naming

import (
	"context"
	"sync/atomic"
)

// Transform maps a name. isSerialize is false when the engine needs the
// inverse direction.
type Transform func(isSerialize bool, name string) string

// Config is the pair of transforms consulted during traversal. A nil
// transform leaves names unchanged.
type Config struct {
	FieldRename Transform
	EnumRename  Transform
}

// ApplyField returns name unchanged (no allocation) when no transform is set.
func (c Config) ApplyField(isSerialize bool, name string) string {
	if c.FieldRename == nil {
		return name
	}
	return c.FieldRename(isSerialize, name)
}

func (c Config) ApplyEnum(isSerialize bool, name string) string {
	if c.EnumRename == nil {
		return name
	}
	return c.EnumRename(isSerialize, name)
}

func (c Config) HasEnumRename() bool { return c.EnumRename != nil }

// FromPolicies builds a Config out of built-in policies. An explicit
// Identity enum policy keeps declared enum names; an empty one leaves the
// enum transform unset.
func FromPolicies(field, enum Policy) Config {
	cfg := Config{FieldRename: field.Transform(), EnumRename: enum.Transform()}
	if enum == Identity {
		cfg.EnumRename = keep
	}
	return cfg
}

func keep(_ bool, name string) string { return name }

var current atomic.Pointer[Config]

func init() {
	current.Store(&Config{})
}

// Current returns the process-wide configuration.
func Current() Config {
	return *current.Load()
}

// Set replaces the process-wide configuration.
func Set(cfg Config) {
	current.Store(&cfg)
}

// Reset restores the empty process-wide configuration.
func Reset() {
	Set(Config{})
}

// Scoped installs cfg process-wide and returns the func restoring the value it
// replaced. Scopes nest in LIFO order:
//
//	defer naming.Scoped(cfg)()
func Scoped(cfg Config) (restore func()) {
	prev := current.Swap(&cfg)
	var done atomic.Bool
	return func() {
		if done.CompareAndSwap(false, true) {
			current.Store(prev)
		}
	}
}

// WithScope runs fn with cfg installed, restoring the previous configuration
// on every exit path, including panics.
func WithScope(cfg Config, fn func() error) error {
	defer Scoped(cfg)()
	return fn()
}

type contextKey struct{}

// WithContext returns a context carrying cfg. It takes precedence over the
// process-wide configuration for operations started with that context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the configuration carried by ctx, falling back to the
// process-wide one.
func FromContext(ctx context.Context) Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(contextKey{}).(Config); ok {
			return cfg
		}
	}
	return Current()
}
