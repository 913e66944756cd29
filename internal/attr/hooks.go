// Package attr implements field attributes and the ordered hook chain they
// form around the engine's default actions.
package attr

import (
	"reflect"

	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/naming"
)

// Engine is the part of the structural engine hooks may call back into.
type Engine interface {
	SerializeValue(s backend.Serializer, v reflect.Value) error
	DeserializeValue(d backend.Deserializer, v reflect.Value) error
	// SerializeFlattened writes the fields of the record v into w.
	SerializeFlattened(w backend.StructWriter, v reflect.Value) error
	// ProbeFlattened offers ctx.Key to the fields of the record ctx.Value.
	ProbeFlattened(ctx ProbeContext) (Decision, error)
	Naming() naming.Config
}

// Decision is the outcome of a probe.
type Decision uint8

const (
	// NoMatch leaves the key for the next field.
	NoMatch Decision = iota
	// MatchDeferred claims the key; the consume chain reads the value.
	MatchDeferred
	// MatchConsumed claims the key and the value has already been read.
	MatchConsumed
)

func (d Decision) String() string {
	switch d {
	case MatchDeferred:
		return "match_deferred"
	case MatchConsumed:
		return "match_consumed"
	default:
		return "no_match"
	}
}

// SerializeFieldContext is passed down the chain when a record field is written.
type SerializeFieldContext struct {
	Writer backend.StructWriter
	// Name is the key the field will be written under.
	Name string
	// Field is the declared field name, used in errors.
	Field  string
	Value  reflect.Value
	Engine Engine
}

// SerializeValueContext is used for annotated whole values.
type SerializeValueContext struct {
	Serializer backend.Serializer
	Value      reflect.Value
	Engine     Engine
}

// ProbeContext asks whether a field claims Key.
type ProbeContext struct {
	Reader backend.MapReader
	Key    string
	// Name is the field's mapped name compared against Key.
	Name         string
	Field        string
	AliasMatched bool
	Value        reflect.Value
	Engine       Engine
	// State is owned by the engine. Flatten hands it back through
	// ProbeFlattened so nested match tracking survives across keys.
	State any
}

// ConsumeContext reads the value of a claimed key.
type ConsumeContext struct {
	Deserializer backend.Deserializer
	Key          string
	Field        string
	Value        reflect.Value
	Engine       Engine
}

// DeserializeValueContext is used for annotated whole values.
type DeserializeValueContext struct {
	Deserializer backend.Deserializer
	Value        reflect.Value
	Engine       Engine
}

// Hook interfaces. An attribute implements the ones it cares about and is
// transparent for the others.
type (
	FieldSerializer interface {
		SerializeField(ctx SerializeFieldContext, next func(SerializeFieldContext) error) error
	}
	ValueSerializer interface {
		SerializeValue(ctx SerializeValueContext, next func(SerializeValueContext) error) error
	}
	FieldProber interface {
		ProbeField(ctx ProbeContext, next func(ProbeContext) (Decision, error)) (Decision, error)
	}
	FieldConsumer interface {
		ConsumeField(ctx ConsumeContext, next func(ConsumeContext) error) error
	}
	ValueDeserializer interface {
		DeserializeValue(ctx DeserializeValueContext, next func(DeserializeValueContext) error) error
	}
)
