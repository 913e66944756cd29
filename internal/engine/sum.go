package engine

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/serdeerr"
	"github.com/hengadev/serdex/internal/shape"
)

var allKinds = []backend.Kind{
	backend.KindNull, backend.KindBool, backend.KindNumber, backend.KindString,
	backend.KindBytes, backend.KindArray, backend.KindObject,
}

func (e *Engine) deserializeSum(d backend.Deserializer, v reflect.Value, info shape.Info) error {
	if info.Generic {
		x, err := e.decodeAny(d)
		if err != nil {
			return err
		}
		if x == nil {
			v.SetZero()
		} else {
			v.Set(reflect.ValueOf(x))
		}
		return nil
	}

	null, err := d.DeserializeNone()
	if err != nil {
		return err
	}
	if null {
		v.SetZero()
		return nil
	}

	alts, _ := shape.Alternatives(v.Type())

	// A record alternative followed by another object alternative must claim
	// at least one key, otherwise every object would decode as the first record.
	lastObject := -1
	for i, alt := range alts {
		if slices.Contains(kindsOf(alt), backend.KindObject) {
			lastObject = i
		}
	}

	candidates := make([]backend.VariantCandidate, 0, len(alts))
	for i, alt := range alts {
		strict := i < lastObject && isRecord(alt)
		candidates = append(candidates, backend.VariantCandidate{
			Name:  alt.String(),
			Kinds: kindsOf(alt),
			Decode: func(cd backend.Deserializer) error {
				// Decode into a scratch value so a failed alternative leaves v untouched.
				tmp := reflect.New(alt).Elem()
				e.requireClaim = strict
				err := e.DeserializeValue(cd, tmp)
				e.requireClaim = false
				if err != nil {
					return err
				}
				v.Set(tmp)
				return nil
			},
		})
	}
	return d.DeserializeVariant(candidates)
}

// isRecord reports whether t, behind any pointers, decodes as a record.
func isRecord(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	info, err := shape.Of(t)
	return err == nil && info.Shape == shape.Record
}

// kindsOf lists the input kinds a value of type t can be decoded from.
func kindsOf(t reflect.Type) []backend.Kind {
	info, err := shape.Of(t)
	if err != nil {
		return nil
	}
	switch info.Shape {
	case shape.Optional:
		return append([]backend.Kind{backend.KindNull}, kindsOf(t.Elem())...)
	case shape.Scalar:
		switch info.Scalar {
		case shape.Bool:
			return []backend.Kind{backend.KindBool}
		case shape.Char:
			return []backend.Kind{backend.KindString}
		default:
			return []backend.Kind{backend.KindNumber}
		}
	case shape.Text:
		return []backend.Kind{backend.KindString}
	case shape.Bytes:
		return []backend.Kind{backend.KindBytes, backend.KindString}
	case shape.Sequence, shape.Set, shape.Tuple:
		return []backend.Kind{backend.KindArray}
	case shape.Mapping, shape.Record:
		return []backend.Kind{backend.KindObject}
	}
	return allKinds
}

// decodeAny builds the generic tree stored in an empty interface.
func (e *Engine) decodeAny(d backend.Deserializer) (any, error) {
	if err := e.enter(serdeerr.Deserialize); err != nil {
		return nil, err
	}
	defer e.leave()

	kind, err := d.PeekKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case backend.KindNull:
		_, err := d.DeserializeNone()
		return nil, err
	case backend.KindBool:
		return d.DeserializeBool()
	case backend.KindNumber:
		n, err := d.DeserializeNumber()
		if err != nil {
			return nil, err
		}
		if n.IsInteger() {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			if u, err := n.Uint64(); err == nil {
				return u, nil
			}
		}
		return n.Float64()
	case backend.KindString:
		return d.DeserializeStr()
	case backend.KindBytes:
		return d.DeserializeBytes()
	case backend.KindArray:
		r, err := d.DeserializeSeq()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for i := 0; ; i++ {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			x, err := e.decodeAny(r.Element())
			if err != nil {
				return nil, serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Deserialize)
			}
			out = append(out, x)
		}
		return out, r.Finish()
	case backend.KindObject:
		r, err := d.DeserializeMap()
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		for {
			key, ok, err := r.NextKey()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			x, err := e.decodeAny(r.Value())
			if err != nil {
				return nil, serdeerr.WithPath(err, key, serdeerr.Deserialize)
			}
			out[key] = x
		}
		return out, r.Finish()
	}
	return nil, serdeerr.NewUnexpectedKindError("a value", kind)
}
