package engine

import (
	"cmp"
	"encoding"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/hengadev/serdex/internal/serdeerr"
	"github.com/hengadev/serdex/internal/shape"
)

type mapEntry struct {
	key  reflect.Value
	text string
}

// sortedEntries returns the keys of the map v with their string forms,
// integers in numeric order and everything else by text.
func sortedEntries(v reflect.Value) ([]mapEntry, error) {
	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		text, err := keyString(iter.Key())
		if err != nil {
			return nil, err
		}
		entries = append(entries, mapEntry{key: iter.Key(), text: text})
	}

	kt := v.Type().Key()
	numeric := !shape.IsTextKey(kt)
	slices.SortFunc(entries, func(a, b mapEntry) int {
		if numeric {
			switch kt.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return cmp.Compare(a.key.Int(), b.key.Int())
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
				return cmp.Compare(a.key.Uint(), b.key.Uint())
			}
		}
		return strings.Compare(a.text, b.text)
	})
	return entries, nil
}

func keyString(k reflect.Value) (string, error) {
	if shape.IsTextKey(k.Type()) {
		m, _ := asInterface[encoding.TextMarshaler](k)
		text, err := m.MarshalText()
		if err != nil {
			return "", serdeerr.NewNotRepresentableError("<key>", k.Type().String(), serdeerr.Serialize, err.Error())
		}
		return string(text), nil
	}

	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", serdeerr.NewNotRepresentableError("<key>", k.Type().String(), serdeerr.Serialize, "key has no string form")
}

// parseKey converts an input key back to a value of type t.
func parseKey(s string, t reflect.Type) (reflect.Value, error) {
	k := reflect.New(t).Elem()
	fail := func(err error) (reflect.Value, error) {
		return reflect.Value{}, serdeerr.NewNotRepresentableError("<key>", t.String(), serdeerr.Deserialize,
			"cannot parse key "+strconv.Quote(s)+": "+err.Error())
	}

	if shape.IsTextKey(t) {
		if err := k.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return fail(err)
		}
		return k, nil
	}

	switch t.Kind() {
	case reflect.String:
		k.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fail(err)
		}
		k.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return fail(err)
		}
		k.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return fail(err)
		}
		k.SetUint(u)
	default:
		return reflect.Value{}, serdeerr.NewUnsupportedTypeError(t.String(), "unsupported map key")
	}
	return k, nil
}
