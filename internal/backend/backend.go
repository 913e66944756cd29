// Package backend defines the structured output/input contract the engine
// drives. Concrete formats implement Serializer and Deserializer and register
// themselves in the format registry.
package backend

// Serializer is a structured output sink. Container methods return a writer
// whose Element, Entry or Field methods hand out the serializer that the next
// nested value is written to.
type Serializer interface {
	Format() string

	SerializeNone() error
	SerializeSome() (Serializer, error)
	SerializeBool(v bool) error
	SerializeInt(v int64) error
	SerializeUint(v uint64) error
	SerializeFloat(v float64) error
	SerializeChar(v rune) error
	SerializeStr(v string) error
	SerializeBytes(v []byte) error

	SerializeSeq(sizeHint int) (SeqWriter, error)
	SerializeTuple(arity int) (SeqWriter, error)
	SerializeMap(sizeHint int) (MapWriter, error)
	SerializeStruct(name string, fieldCount int) (StructWriter, error)

	// SerializeRaw appends a captured subtree verbatim. Implementations
	// return ErrRawFormat when raw.Format is not natively writable.
	SerializeRaw(raw RawValue) error
}

type SeqWriter interface {
	Element() (Serializer, error)
	Finish() error
}

type MapWriter interface {
	Entry(key string) (Serializer, error)
	Finish() error
}

type StructWriter interface {
	Field(name string) (Serializer, error)
	Finish() error
}

// Deserializer is a structured input source positioned at one value.
type Deserializer interface {
	Format() string

	PeekKind() (Kind, error)

	// DeserializeNone consumes a null and reports true, or leaves a
	// non-null value in place and reports false.
	DeserializeNone() (bool, error)
	DeserializeBool() (bool, error)
	DeserializeInt() (int64, error)
	DeserializeUint() (uint64, error)
	DeserializeFloat() (float64, error)
	DeserializeChar() (rune, error)
	DeserializeStr() (string, error)
	DeserializeBytes() ([]byte, error)
	DeserializeNumber() (Number, error)

	DeserializeSeq() (SeqReader, error)
	DeserializeTuple(arity int) (SeqReader, error)
	DeserializeMap() (MapReader, error)
	DeserializeStruct(name string, fieldCount int) (MapReader, error)

	// DeserializeVariant tries the candidates whose kinds accept the
	// upcoming value, in order, and stops at the first that succeeds.
	DeserializeVariant(candidates []VariantCandidate) error
	DeserializeRaw() (RawValue, error)
	SkipValue() error
}

type SeqReader interface {
	HasNext() (bool, error)
	Element() Deserializer
	SkipElement() error
	Finish() error
}

// MapReader yields keys in input order. Value and SkipValue refer to the
// value of the key last returned by NextKey.
type MapReader interface {
	NextKey() (key string, ok bool, err error)
	Value() Deserializer
	SkipValue() error
	Finish() error
}

// VariantCandidate is one alternative of a sum type.
type VariantCandidate struct {
	Name   string
	Kinds  []Kind
	Decode func(d Deserializer) error
}

// Accepts reports whether the candidate can decode a value of kind k.
func (c VariantCandidate) Accepts(k Kind) bool {
	for _, kind := range c.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}
