package serdex

import (
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/dynamic"
	"github.com/hengadev/serdex/internal/shape"
)

// Backend contract. Formats implement Serializer and Deserializer.
type (
	Serializer       = backend.Serializer
	Deserializer     = backend.Deserializer
	SeqWriter        = backend.SeqWriter
	MapWriter        = backend.MapWriter
	StructWriter     = backend.StructWriter
	SeqReader        = backend.SeqReader
	MapReader        = backend.MapReader
	VariantCandidate = backend.VariantCandidate
	Kind             = backend.Kind
	RawValue         = backend.RawValue
	Number           = backend.Number
	Format           = backend.Format
)

const (
	KindInvalid = backend.KindInvalid
	KindNull    = backend.KindNull
	KindBool    = backend.KindBool
	KindNumber  = backend.KindNumber
	KindString  = backend.KindString
	KindBytes   = backend.KindBytes
	KindArray   = backend.KindArray
	KindObject  = backend.KindObject
)

// Char is serialized as a single character rather than as an int32.
type Char = shape.CharType

// DynamicValue holds a captured, undecoded subtree. Copies share the
// underlying snapshot; mutation rebinds only the mutated handle.
type DynamicValue = dynamic.Value

// DynamicFromJSON captures a JSON document as a dynamic value.
func DynamicFromJSON(data []byte) (DynamicValue, error) {
	return dynamic.FromJSON(data)
}

// DynamicFromRaw captures raw bytes of a registered format.
func DynamicFromRaw(raw RawValue) DynamicValue {
	return dynamic.FromRaw(raw)
}

// Marshaler and Unmarshaler let a type take over its own encoding.
type (
	Marshaler   = shape.Marshaler
	Unmarshaler = shape.Unmarshaler
)

// Pair is a fixed two element tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

func (Pair[A, B]) SerdeTuple() {}

// Triple is a fixed three element tuple.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

func (Triple[A, B, C]) SerdeTuple() {}
