package attr

// Attribute is a field or value modifier. Behavior comes from the hook
// interfaces it implements.
type Attribute interface {
	AttributeName() string
}

// Chain is an ordered attribute list. Hooks run in declaration order, each
// wrapping the rest of the chain and, last, the terminal action.
type Chain []Attribute

func (c Chain) Has(name string) bool {
	for _, a := range c {
		if a.AttributeName() == name {
			return true
		}
	}
	return false
}

func (c Chain) SerializeField(ctx SerializeFieldContext, terminal func(SerializeFieldContext) error) error {
	var step func(i int, ctx SerializeFieldContext) error
	step = func(i int, ctx SerializeFieldContext) error {
		for ; i < len(c); i++ {
			if h, ok := c[i].(FieldSerializer); ok {
				next := i + 1
				return h.SerializeField(ctx, func(ctx SerializeFieldContext) error { return step(next, ctx) })
			}
		}
		return terminal(ctx)
	}
	return step(0, ctx)
}

func (c Chain) SerializeValue(ctx SerializeValueContext, terminal func(SerializeValueContext) error) error {
	var step func(i int, ctx SerializeValueContext) error
	step = func(i int, ctx SerializeValueContext) error {
		for ; i < len(c); i++ {
			if h, ok := c[i].(ValueSerializer); ok {
				next := i + 1
				return h.SerializeValue(ctx, func(ctx SerializeValueContext) error { return step(next, ctx) })
			}
		}
		return terminal(ctx)
	}
	return step(0, ctx)
}

func (c Chain) ProbeField(ctx ProbeContext, terminal func(ProbeContext) (Decision, error)) (Decision, error) {
	var step func(i int, ctx ProbeContext) (Decision, error)
	step = func(i int, ctx ProbeContext) (Decision, error) {
		for ; i < len(c); i++ {
			if h, ok := c[i].(FieldProber); ok {
				next := i + 1
				return h.ProbeField(ctx, func(ctx ProbeContext) (Decision, error) { return step(next, ctx) })
			}
		}
		return terminal(ctx)
	}
	return step(0, ctx)
}

func (c Chain) ConsumeField(ctx ConsumeContext, terminal func(ConsumeContext) error) error {
	var step func(i int, ctx ConsumeContext) error
	step = func(i int, ctx ConsumeContext) error {
		for ; i < len(c); i++ {
			if h, ok := c[i].(FieldConsumer); ok {
				next := i + 1
				return h.ConsumeField(ctx, func(ctx ConsumeContext) error { return step(next, ctx) })
			}
		}
		return terminal(ctx)
	}
	return step(0, ctx)
}

func (c Chain) DeserializeValue(ctx DeserializeValueContext, terminal func(DeserializeValueContext) error) error {
	var step func(i int, ctx DeserializeValueContext) error
	step = func(i int, ctx DeserializeValueContext) error {
		for ; i < len(c); i++ {
			if h, ok := c[i].(ValueDeserializer); ok {
				next := i + 1
				return h.DeserializeValue(ctx, func(ctx DeserializeValueContext) error { return step(next, ctx) })
			}
		}
		return terminal(ctx)
	}
	return step(0, ctx)
}

// DefaultProbe is the terminal probe: the key matches the field's mapped
// name or an alias seen earlier in the chain.
func DefaultProbe(ctx ProbeContext) (Decision, error) {
	if ctx.AliasMatched || ctx.Key == ctx.Name {
		return MatchDeferred, nil
	}
	return NoMatch, nil
}
