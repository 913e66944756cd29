package engine

import (
	"encoding"
	"errors"
	"reflect"
	"strconv"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/dynamic"
	"github.com/hengadev/serdex/internal/serdeerr"
	"github.com/hengadev/serdex/internal/shape"
)

// SerializeValue writes v according to its shape. An invalid value is none.
func (e *Engine) SerializeValue(s backend.Serializer, v reflect.Value) error {
	if !v.IsValid() {
		return s.SerializeNone()
	}
	if err := e.enter(serdeerr.Serialize); err != nil {
		return err
	}
	defer e.leave()

	info, err := shape.Of(v.Type())
	if err != nil {
		return err
	}

	switch info.Shape {
	case shape.Annotated:
		a := addressable(v).Addr().Interface().(shape.Annotation)
		ctx := attr.SerializeValueContext{Serializer: s, Value: a.AnnotatedValue(), Engine: e}
		return a.AnnotatedAttributes().SerializeValue(ctx, func(ctx attr.SerializeValueContext) error {
			return e.SerializeValue(ctx.Serializer, ctx.Value)
		})
	case shape.Dynamic:
		return e.serializeDynamic(s, v.Interface().(dynamic.Value))
	case shape.Custom:
		m, ok := asInterface[shape.Marshaler](v)
		if !ok {
			return serdeerr.NewUnsupportedTypeError(v.Type().String(), "implements UnmarshalSerde without MarshalSerde")
		}
		return m.MarshalSerde(s)
	case shape.Optional:
		if v.IsNil() {
			return s.SerializeNone()
		}
		inner, err := s.SerializeSome()
		if err != nil {
			return err
		}
		return e.SerializeValue(inner, v.Elem())
	case shape.Sum:
		if v.IsNil() {
			return s.SerializeNone()
		}
		return e.SerializeValue(s, v.Elem())
	case shape.Scalar:
		return serializeScalar(s, v, info.Scalar)
	case shape.Text:
		if info.TextMarshaler {
			m, _ := asInterface[encoding.TextMarshaler](v)
			text, err := m.MarshalText()
			if err != nil {
				return err
			}
			return s.SerializeStr(string(text))
		}
		return s.SerializeStr(v.String())
	case shape.Bytes:
		return s.SerializeBytes(v.Bytes())
	case shape.Sequence:
		return e.serializeSeq(s, v)
	case shape.Set:
		return e.serializeSet(s, v)
	case shape.Mapping:
		return e.serializeMap(s, v)
	case shape.Tuple:
		return e.serializeTuple(s, v)
	case shape.Record:
		return e.serializeRecord(s, v)
	}
	return serdeerr.NewUnsupportedTypeError(v.Type().String(), "no serializer for shape "+info.Shape.String())
}

func serializeScalar(s backend.Serializer, v reflect.Value, kind shape.ScalarKind) error {
	switch kind {
	case shape.Bool:
		return s.SerializeBool(v.Bool())
	case shape.Int:
		return s.SerializeInt(v.Int())
	case shape.Uint:
		return s.SerializeUint(v.Uint())
	case shape.Float:
		return s.SerializeFloat(v.Float())
	case shape.Char:
		return s.SerializeChar(rune(v.Int()))
	}
	return serdeerr.NewUnsupportedTypeError(v.Type().String(), "unknown scalar")
}

func (e *Engine) serializeDynamic(s backend.Serializer, dv dynamic.Value) error {
	raw := dv.Raw()
	err := s.SerializeRaw(raw)
	if !errors.Is(err, backend.ErrRawFormat) {
		return err
	}
	d, err := backend.Decoder(raw)
	if err != nil {
		return serdeerr.NewNotRepresentableError("<dynamic>", raw.Format, serdeerr.Serialize, err.Error())
	}
	return backend.Transcode(d, s)
}

func (e *Engine) serializeSeq(s backend.Serializer, v reflect.Value) error {
	w, err := s.SerializeSeq(v.Len())
	if err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		es, err := w.Element()
		if err != nil {
			return err
		}
		if err := e.SerializeValue(es, v.Index(i)); err != nil {
			return serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Serialize)
		}
	}
	return w.Finish()
}

func (e *Engine) serializeSet(s backend.Serializer, v reflect.Value) error {
	entries, err := sortedEntries(v)
	if err != nil {
		return err
	}
	w, err := s.SerializeSeq(len(entries))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		es, err := w.Element()
		if err != nil {
			return err
		}
		if err := e.SerializeValue(es, entry.key); err != nil {
			return serdeerr.WithPath(err, entry.text, serdeerr.Serialize)
		}
	}
	return w.Finish()
}

func (e *Engine) serializeMap(s backend.Serializer, v reflect.Value) error {
	entries, err := sortedEntries(v)
	if err != nil {
		return err
	}
	w, err := s.SerializeMap(len(entries))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		es, err := w.Entry(entry.text)
		if err != nil {
			return err
		}
		if err := e.SerializeValue(es, v.MapIndex(entry.key)); err != nil {
			return serdeerr.WithPath(err, entry.text, serdeerr.Serialize)
		}
	}
	return w.Finish()
}

func (e *Engine) serializeTuple(s backend.Serializer, v reflect.Value) error {
	var elems []reflect.Value
	if v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			elems = append(elems, v.Index(i))
		}
	} else {
		for _, i := range tupleFields(v.Type()) {
			elems = append(elems, v.Field(i))
		}
	}

	w, err := s.SerializeTuple(len(elems))
	if err != nil {
		return err
	}
	for i, elem := range elems {
		es, err := w.Element()
		if err != nil {
			return err
		}
		if err := e.SerializeValue(es, elem); err != nil {
			return serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Serialize)
		}
	}
	return w.Finish()
}

func (e *Engine) serializeRecord(s backend.Serializer, v reflect.Value) error {
	rec, err := describe(v.Type())
	if err != nil {
		return err
	}
	w, err := s.SerializeStruct(rec.name, len(rec.fields))
	if err != nil {
		return err
	}
	if err := e.writeFields(w, rec, v); err != nil {
		return err
	}
	return w.Finish()
}

func (e *Engine) writeFields(w backend.StructWriter, rec *record, v reflect.Value) error {
	for i := range rec.fields {
		f := &rec.fields[i]
		ctx := attr.SerializeFieldContext{
			Writer: w,
			Name:   e.naming.ApplyField(true, f.name),
			Field:  f.name,
			Value:  v.Field(f.index),
			Engine: e,
		}
		if err := f.attrs.SerializeField(ctx, e.writeField); err != nil {
			return serdeerr.WithPath(err, f.name, serdeerr.Serialize)
		}
	}
	return nil
}

// writeField is the terminal serialize action: the value under its key.
func (e *Engine) writeField(ctx attr.SerializeFieldContext) error {
	fs, err := ctx.Writer.Field(ctx.Name)
	if err != nil {
		return err
	}
	return e.SerializeValue(fs, ctx.Value)
}

// SerializeFlattened writes the fields of the record v into the parent's
// writer. A nil pointer contributes nothing.
func (e *Engine) SerializeFlattened(w backend.StructWriter, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	rec, err := describe(v.Type())
	if err != nil {
		return err
	}
	return e.writeFields(w, rec, v)
}

// addressable returns v itself when it can be addressed, otherwise a copy.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// asInterface finds I on v or, failing that, on a pointer to v.
func asInterface[I any](v reflect.Value) (I, bool) {
	iface := reflect.TypeFor[I]()
	if v.Type().Implements(iface) {
		return v.Interface().(I), true
	}
	if reflect.PointerTo(v.Type()).Implements(iface) {
		return addressable(v).Addr().Interface().(I), true
	}
	var zero I
	return zero, false
}
