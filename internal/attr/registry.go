package attr

import (
	"fmt"
	"reflect"
	"sync"
)

// Predicate decides whether SkipIf omits a value.
type Predicate func(v reflect.Value) bool

// IsNone reports nil pointers, interfaces, maps, slices, funcs and channels.
func IsNone(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}

// IsEmpty reports zero-length strings, slices, maps and arrays, and nil
// pointers or interfaces.
func IsEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}

// IsDefault reports the zero value of any type.
func IsDefault(v reflect.Value) bool {
	return !v.IsValid() || v.IsZero()
}

var (
	registryMu sync.RWMutex
	predicates = map[string]Predicate{
		"none":    IsNone,
		"nil":     IsNone,
		"empty":   IsEmpty,
		"default": IsDefault,
		"zero":    IsDefault,
	}
	codecs = map[string]Codec{
		"unix":       timeCodec{unit: unitSeconds},
		"unix_milli": timeCodec{unit: unitMillis},
		"hex":        bytesCodec{encoding: hexEncoding},
		"base64url":  bytesCodec{encoding: base64URLEncoding},
	}
	fieldAttrs = make(map[reflect.Type]map[string]Chain)
)

// RegisterPredicate makes p available to the skip_if tag.
func RegisterPredicate(name string, p Predicate) error {
	if name == "" || p == nil {
		return fmt.Errorf("predicate name and func are required")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	predicates[name] = p
	return nil
}

func LookupPredicate(name string) (Predicate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := predicates[name]
	return p, ok
}

// RegisterCodec makes c available to the with tag.
func RegisterCodec(name string, c Codec) error {
	if name == "" || c == nil {
		return fmt.Errorf("codec name and implementation are required")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	codecs[name] = c
	return nil
}

func LookupCodec(name string) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := codecs[name]
	return c, ok
}

// RegisterFieldAttributes attaches attributes to a field of the struct type
// t. They run after the attributes declared in the field's tag.
func RegisterFieldAttributes(t reflect.Type, field string, attrs ...Attribute) error {
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("attributes can only be registered on struct types, got %s", t)
	}
	if _, ok := t.FieldByName(field); !ok {
		return fmt.Errorf("type %s has no field '%s'", t, field)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if fieldAttrs[t] == nil {
		fieldAttrs[t] = make(map[string]Chain)
	}
	fieldAttrs[t][field] = append(fieldAttrs[t][field], attrs...)
	return nil
}

// FieldAttributes returns the attributes registered for t.field.
func FieldAttributes(t reflect.Type, field string) Chain {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return fieldAttrs[t][field]
}
