package serdex

import (
	"reflect"

	"github.com/hengadev/serdex/internal/attr"
)

// Annotated attaches attributes to a whole value, for example to write a
// top-level enum as its name.
type Annotated[T any] struct {
	Value      T
	Attributes []Attribute
}

// Annotate wraps v with attrs. Serialize the result, or deserialize into a
// pointer to it and read Value back.
func Annotate[T any](v T, attrs ...Attribute) Annotated[T] {
	return Annotated[T]{Value: v, Attributes: attrs}
}

func (a *Annotated[T]) AnnotatedValue() reflect.Value {
	return reflect.ValueOf(&a.Value).Elem()
}

func (a *Annotated[T]) AnnotatedAttributes() attr.Chain {
	return attr.Chain(a.Attributes)
}
