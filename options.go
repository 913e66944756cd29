package serdex

import (
	"context"
	"fmt"

	"github.com/hengadev/serdex/internal/engine"
	"github.com/hengadev/serdex/internal/naming"
)

type options struct {
	ctx      context.Context
	naming   *naming.Config
	field    *naming.Transform
	enum     *naming.Transform
	hook     ObservabilityHook
	maxDepth int
}

// Option configures a single Serialize or Deserialize call.
type Option func(o *options) error

// WithNaming uses cfg instead of the process-wide naming configuration.
func WithNaming(cfg NamingConfig) Option {
	return func(o *options) error {
		o.naming = &cfg
		return nil
	}
}

// WithFieldRename overrides only the field policy.
func WithFieldRename(p NamingPolicy) Option {
	return func(o *options) error {
		if p != "" && !p.IsValid() {
			return fmt.Errorf("%w: unknown field naming policy '%s'", ErrInvalidConfiguration, p)
		}
		t := p.Transform()
		o.field = &t
		return nil
	}
}

// WithEnumRename overrides only the enum policy.
func WithEnumRename(p NamingPolicy) Option {
	return func(o *options) error {
		if p != "" && !p.IsValid() {
			return fmt.Errorf("%w: unknown enum naming policy '%s'", ErrInvalidConfiguration, p)
		}
		t := p.Transform()
		o.enum = &t
		return nil
	}
}

// WithContext passes ctx to the observability hook. A naming configuration
// attached with ContextWithNaming is honored.
func WithContext(ctx context.Context) Option {
	return func(o *options) error {
		if ctx == nil {
			return fmt.Errorf("%w: nil context", ErrInvalidConfiguration)
		}
		o.ctx = ctx
		return nil
	}
}

// WithObservability reports this call to hook instead of the default hook.
func WithObservability(hook ObservabilityHook) Option {
	return func(o *options) error {
		o.hook = hook
		return nil
	}
}

// WithMaxDepth bounds recursion for this call.
func WithMaxDepth(depth int) Option {
	return func(o *options) error {
		if depth <= 0 || depth > MaxAllowedDepth {
			return fmt.Errorf("%w: max depth must be between 1 and %d, got %d", ErrInvalidConfiguration, MaxAllowedDepth, depth)
		}
		o.maxDepth = depth
		return nil
	}
}

func newEngine(opts []Option) (*engine.Engine, error) {
	o := &options{ctx: context.Background()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	cfg := naming.FromContext(o.ctx)
	if o.naming != nil {
		cfg = *o.naming
	}
	if o.field != nil {
		cfg.FieldRename = *o.field
	}
	if o.enum != nil {
		cfg.EnumRename = *o.enum
	}

	hook := o.hook
	if hook == nil {
		hook = DefaultObservabilityHook()
	}
	depth := o.maxDepth
	if depth == 0 {
		depth = int(defaultMaxDepth.Load())
	}

	return engine.New(engine.Options{
		Naming:   cfg,
		Hook:     hook,
		MaxDepth: depth,
		Context:  o.ctx,
	}), nil
}
