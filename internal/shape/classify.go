package shape

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hengadev/serdex/internal/serdeerr"
)

type result struct {
	info Info
	err  error
}

var cache = xsync.NewMapOf[reflect.Type, result]()

// Of classifies t. The first rule that applies wins; see classify.
func Of(t reflect.Type) (Info, error) {
	if r, ok := cache.Load(t); ok {
		return r.info, r.err
	}
	r, _ := cache.LoadOrCompute(t, func() result {
		info, err := classify(t)
		return result{info: info, err: err}
	})
	return r.info, r.err
}

// forget drops a cached classification after a registry change.
func forget(t reflect.Type) {
	cache.Delete(t)
}

func classify(t reflect.Type) (Info, error) {
	info := Info{Type: t}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		if err := checkAmbiguity(t); err != nil {
			return info, err
		}
		switch {
		case reflect.PointerTo(t).Implements(annotationType):
			info.Shape = Annotated
			return info, nil
		case t == dynamicType:
			info.Shape = Dynamic
			return info, nil
		case implements(t, marshalerType) || implements(t, unmarshalerType):
			info.Shape = Custom
			return info, nil
		}
	}

	switch t.Kind() {
	case reflect.Pointer:
		info.Shape = Optional
		return info, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			info.Shape = Sum
			info.Generic = true
			return info, nil
		}
		if _, ok := Alternatives(t); ok {
			info.Shape = Sum
			return info, nil
		}
		return info, serdeerr.NewUnsupportedTypeError(t.String(), "interface has no registered alternatives")
	}

	if implements(t, textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalType) {
		info.Shape = Text
		info.TextMarshaler = true
		return info, nil
	}

	if t.Kind() == reflect.Array || (t.Kind() == reflect.Struct && implements(t, tupleType)) {
		info.Shape = Tuple
		return info, nil
	}

	switch t.Kind() {
	case reflect.Map:
		if err := checkMapKey(t.Key()); err != nil {
			return info, err
		}
		if isUnit(t.Elem()) {
			info.Shape = Set
		} else {
			info.Shape = Mapping
		}
		return info, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !implements(t.Elem(), textMarshalerType) {
			info.Shape = Bytes
		} else {
			info.Shape = Sequence
		}
		return info, nil
	case reflect.Struct:
		info.Shape = Record
		return info, nil
	}

	info.Shape = Scalar
	switch t.Kind() {
	case reflect.Bool:
		info.Scalar = Bool
	case reflect.Int32:
		if t == charType {
			info.Scalar = Char
		} else {
			info.Scalar = Int
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		info.Scalar = Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		info.Scalar = Uint
	case reflect.Float32, reflect.Float64:
		info.Scalar = Float
	case reflect.String:
		info.Shape = Text
	default:
		info.Shape = Invalid
		return info, serdeerr.NewUnsupportedTypeError(t.String(), "kind "+t.Kind().String()+" has no shape")
	}
	return info, nil
}

// checkAmbiguity rejects types claiming more than one serdex extension point.
func checkAmbiguity(t reflect.Type) error {
	var matched []string
	if reflect.PointerTo(t).Implements(annotationType) {
		matched = append(matched, "Annotation")
	}
	if implements(t, marshalerType) || implements(t, unmarshalerType) {
		matched = append(matched, "Marshaler")
	}
	if implements(t, tupleType) {
		matched = append(matched, "TupleMarker")
	}
	if len(matched) > 1 {
		return serdeerr.NewAmbiguousShapeError(t.String(), matched)
	}
	return nil
}

func isUnit(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

// checkMapKey accepts keys that have a canonical string form.
func checkMapKey(k reflect.Type) error {
	if implements(k, textMarshalerType) && reflect.PointerTo(k).Implements(textUnmarshalType) {
		return nil
	}
	switch k.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	return serdeerr.NewUnsupportedTypeError(k.String(), "map keys must be strings, integers, booleans or text marshalers")
}

// IsTextKey reports whether a map key type goes through encoding.TextMarshaler.
func IsTextKey(k reflect.Type) bool {
	return k.Kind() != reflect.String && implements(k, textMarshalerType) && reflect.PointerTo(k).Implements(textUnmarshalType)
}
