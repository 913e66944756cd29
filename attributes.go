package serdex

import (
	"github.com/hengadev/serdex/internal/attr"
)

// Attribute is a field or value modifier. Custom attributes implement one or
// more of the hook interfaces below.
type Attribute = attr.Attribute

// Hook interfaces and the contexts they receive.
type (
	FieldSerializer   = attr.FieldSerializer
	ValueSerializer   = attr.ValueSerializer
	FieldProber       = attr.FieldProber
	FieldConsumer     = attr.FieldConsumer
	ValueDeserializer = attr.ValueDeserializer

	SerializeFieldContext   = attr.SerializeFieldContext
	SerializeValueContext   = attr.SerializeValueContext
	ProbeContext            = attr.ProbeContext
	ConsumeContext          = attr.ConsumeContext
	DeserializeValueContext = attr.DeserializeValueContext

	Decision = attr.Decision
)

const (
	NoMatch       = attr.NoMatch
	MatchDeferred = attr.MatchDeferred
	MatchConsumed = attr.MatchConsumed
)

// Predicate decides whether SkipIf omits a value.
type Predicate = attr.Predicate

// Codec takes over encoding of a single field or value.
type Codec = attr.Codec

var (
	IsNone    Predicate = attr.IsNone
	IsEmpty   Predicate = attr.IsEmpty
	IsDefault Predicate = attr.IsDefault
)

func Skip() Attribute { return attr.Skip{} }

// SkipIf omits the field on output when p reports true.
func SkipIf(p Predicate) Attribute { return attr.SkipIf{Name: "func", Predicate: p} }

func SkipIfNone() Attribute    { return attr.SkipIf{Name: "none", Predicate: attr.IsNone} }
func SkipIfEmpty() Attribute   { return attr.SkipIf{Name: "empty", Predicate: attr.IsEmpty} }
func SkipIfDefault() Attribute { return attr.SkipIf{Name: "default", Predicate: attr.IsDefault} }

func Rename(name string) Attribute { return attr.Rename{Name: name} }

// Alias accepts additional input keys.
func Alias(names ...string) Attribute { return attr.Alias{Names: names} }

func Flatten() Attribute { return attr.Flatten{} }

// Literal always writes text and requires it on input.
func Literal(text string) Attribute { return attr.Literal{Text: text} }

// EnumString writes a registered enum as its name, mapped by the global enum
// policy or lower camel case.
func EnumString() Attribute { return attr.EnumString{} }

// EnumStringWith maps enum names with policy instead of the global setting.
func EnumStringWith(policy NamingPolicy) Attribute { return attr.EnumString{Policy: policy} }

// EnumInteger keeps the numeric encoding.
func EnumInteger() Attribute { return attr.EnumString{Integer: true} }

// With encodes the value through c. name is only used in diagnostics.
func With(name string, c Codec) Attribute { return attr.With{Name: name, Codec: c} }

// ParseAttributes builds attributes from tag syntax, e.g. "rename=uid,skip_if=empty".
func ParseAttributes(tag string) ([]Attribute, error) {
	parsed, err := attr.ParseTag("," + tag)
	if err != nil {
		return nil, err
	}
	return parsed.Attributes, nil
}
