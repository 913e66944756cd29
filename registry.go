package serdex

import (
	"fmt"
	"reflect"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/engine"
	"github.com/hengadev/serdex/internal/shape"
)

// Integer is the set of types an enum can be declared on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// RegisterEnum declares the names of the values of E for EnumString.
//
//	serdex.RegisterEnum(map[Level]string{Guest: "Guest", Admin: "Admin"})
func RegisterEnum[E Integer](names map[E]string) error {
	table := make(map[int64]string, len(names))
	for v, name := range names {
		if name == "" {
			return fmt.Errorf("%w: enum %s value %d has an empty name", ErrInvalidConfiguration, reflect.TypeFor[E](), v)
		}
		table[int64(v)] = name
	}
	return attr.RegisterEnum(reflect.TypeFor[E](), table)
}

// RegisterSum declares the alternatives of the interface I, given as sample
// values, in the order they are tried on input.
//
//	serdex.RegisterSum[Shape](Circle{}, Square{})
func RegisterSum[I any](alternatives ...any) error {
	types := make([]reflect.Type, 0, len(alternatives))
	for _, alt := range alternatives {
		if alt == nil {
			return fmt.Errorf("%w: nil alternative for %s", ErrInvalidConfiguration, reflect.TypeFor[I]())
		}
		types = append(types, reflect.TypeOf(alt))
	}
	if err := shape.RegisterSum(reflect.TypeFor[I](), types...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// RegisterAttributes attaches attributes to a field of the record T. They
// run after the attributes declared in the field's tag.
func RegisterAttributes[T any](field string, attrs ...Attribute) error {
	t := reflect.TypeFor[T]()
	if err := attr.RegisterFieldAttributes(t, field, attrs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	engine.Forget(t)
	return nil
}

// RegisterCodec makes c available to the `with=name` tag.
func RegisterCodec(name string, c Codec) error {
	return attr.RegisterCodec(name, c)
}

// RegisterPredicate makes p available to the `skip_if=name` tag.
func RegisterPredicate(name string, p Predicate) error {
	return attr.RegisterPredicate(name, p)
}

// RegisterFormat makes a backend available to Transcode and DynamicValue
// conversion. Format packages call it from init.
func RegisterFormat(f Format) {
	backend.RegisterFormat(f)
}

// Formats lists the registered format names.
func Formats() []string {
	return backend.Formats()
}

// CodecFunc adapts a pair of typed functions to a Codec.
type CodecFunc[T any] struct {
	EncodeFunc func(s Serializer, v T) error
	DecodeFunc func(d Deserializer) (T, error)
}

func (c CodecFunc[T]) Encode(s backend.Serializer, v reflect.Value) error {
	x, ok := v.Interface().(T)
	if !ok {
		return fmt.Errorf("%w: codec for %s got %s", ErrInvalidAttribute, reflect.TypeFor[T](), v.Type())
	}
	return c.EncodeFunc(s, x)
}

func (c CodecFunc[T]) Decode(d backend.Deserializer, v reflect.Value) error {
	x, err := c.DecodeFunc(d)
	if err != nil {
		return err
	}
	xv := reflect.ValueOf(&x).Elem()
	if !xv.Type().AssignableTo(v.Type()) {
		return fmt.Errorf("%w: codec for %s cannot set %s", ErrInvalidAttribute, xv.Type(), v.Type())
	}
	v.Set(xv)
	return nil
}
