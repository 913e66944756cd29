// Package shape classifies Go types into the structural shapes the engine
// knows how to walk. Classification is decided once per type and cached.
package shape

import (
	"encoding"
	"reflect"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/dynamic"
)

// Shape is the canonical structural category of a type.
type Shape uint8

const (
	Invalid Shape = iota
	Scalar
	Text
	Bytes
	Optional
	Sum
	Sequence
	Set
	Mapping
	Tuple
	Record
	Dynamic
	// Annotated and Custom are extension entry points checked first.
	Annotated
	Custom
)

func (s Shape) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Text:
		return "text"
	case Bytes:
		return "bytes"
	case Optional:
		return "optional"
	case Sum:
		return "sum"
	case Sequence:
		return "sequence"
	case Set:
		return "set"
	case Mapping:
		return "mapping"
	case Tuple:
		return "tuple"
	case Record:
		return "record"
	case Dynamic:
		return "dynamic"
	case Annotated:
		return "annotated"
	case Custom:
		return "custom"
	default:
		return "invalid"
	}
}

// ScalarKind refines the Scalar shape.
type ScalarKind uint8

const (
	NotScalar ScalarKind = iota
	Bool
	Int
	Uint
	Float
	Char
)

// CharType is the rune type classified as a character rather than an int32.
type CharType rune

// Annotation is implemented by wrapper types that attach attributes to the
// value they hold. The method set must live on the pointer type.
type Annotation interface {
	AnnotatedValue() reflect.Value
	AnnotatedAttributes() attr.Chain
}

// Marshaler lets a type take over its own serialization.
type Marshaler interface {
	MarshalSerde(s backend.Serializer) error
}

// Unmarshaler lets a type take over its own deserialization.
type Unmarshaler interface {
	UnmarshalSerde(d backend.Deserializer) error
}

// TupleMarker marks structs whose fields are positional elements.
type TupleMarker interface {
	SerdeTuple()
}

var (
	annotationType    = reflect.TypeFor[Annotation]()
	marshalerType     = reflect.TypeFor[Marshaler]()
	unmarshalerType   = reflect.TypeFor[Unmarshaler]()
	tupleType         = reflect.TypeFor[TupleMarker]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalType = reflect.TypeFor[encoding.TextUnmarshaler]()
	dynamicType       = reflect.TypeFor[dynamic.Value]()
	charType          = reflect.TypeFor[CharType]()
)

// Info is the cached classification of a type.
type Info struct {
	Shape  Shape
	Type   reflect.Type
	Scalar ScalarKind
	// TextMarshaler is set for Text types using encoding.TextMarshaler.
	TextMarshaler bool
	// Generic is set for the empty interface.
	Generic bool
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}
