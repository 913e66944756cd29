// Package engine walks Go values by shape and drives a backend Serializer or
// Deserializer, running each record field through its attribute chain.
package engine

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/monitoring"
	"github.com/hengadev/serdex/internal/naming"
	"github.com/hengadev/serdex/internal/serdeerr"
)

// DefaultMaxDepth bounds recursion so cyclic pointer graphs fail instead of
// overflowing the stack.
const DefaultMaxDepth = 512

// Options configures one engine.
type Options struct {
	Naming   naming.Config
	Hook     monitoring.ObservabilityHook
	MaxDepth int
	// Context is handed to the observability hook. It never cancels a traversal.
	Context context.Context
}

// Engine performs a single traversal at a time and must not be shared
// between goroutines.
type Engine struct {
	naming   naming.Config
	hook     monitoring.ObservabilityHook
	maxDepth int
	ctx      context.Context
	depth    int

	// requireClaim makes the next record decoded fail when it claims none of
	// its input keys. It is set while trying a sum alternative.
	requireClaim bool
}

var _ attr.Engine = (*Engine)(nil)

func New(opts Options) *Engine {
	e := &Engine{
		naming:   opts.Naming,
		hook:     opts.Hook,
		maxDepth: opts.MaxDepth,
		ctx:      opts.Context,
	}
	if e.hook == nil {
		e.hook = monitoring.NopHook{}
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	return e
}

func (e *Engine) Naming() naming.Config { return e.naming }

// Serialize writes v to s.
func (e *Engine) Serialize(s backend.Serializer, v any) error {
	metadata := map[string]any{"type": typeName(v), "format": s.Format()}
	start := time.Now()
	e.hook.OnProcessStart(e.ctx, serdeerr.Serialize.String(), metadata)

	err := e.SerializeValue(s, reflect.ValueOf(v))

	e.complete(serdeerr.Serialize, start, err, metadata)
	return err
}

// Deserialize reads one value from d into the pointer v.
func (e *Engine) Deserialize(d backend.Deserializer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return serdeerr.NewInvalidTargetError(typeName(v))
	}

	metadata := map[string]any{"type": rv.Type().Elem().String(), "format": d.Format()}
	start := time.Now()
	e.hook.OnProcessStart(e.ctx, serdeerr.Deserialize.String(), metadata)

	err := e.DeserializeValue(d, rv.Elem())

	e.complete(serdeerr.Deserialize, start, err, metadata)
	return err
}

func (e *Engine) complete(action serdeerr.Action, start time.Time, err error, metadata map[string]any) {
	if err != nil {
		e.hook.OnError(e.ctx, action.String(), err, metadata)
	}
	e.hook.OnProcessComplete(e.ctx, action.String(), time.Since(start), err, metadata)
}

func (e *Engine) enter(action serdeerr.Action) error {
	if e.depth >= e.maxDepth {
		return serdeerr.NewDepthExceededError(e.maxDepth, action)
	}
	e.depth++
	return nil
}

func (e *Engine) leave() { e.depth-- }

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
