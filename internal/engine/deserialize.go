package engine

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/dynamic"
	"github.com/hengadev/serdex/internal/serdeerr"
	"github.com/hengadev/serdex/internal/shape"
)

// DeserializeValue reads the next value of d into the settable v.
func (e *Engine) DeserializeValue(d backend.Deserializer, v reflect.Value) error {
	if err := e.enter(serdeerr.Deserialize); err != nil {
		return err
	}
	defer e.leave()

	info, err := shape.Of(v.Type())
	if err != nil {
		return err
	}

	switch info.Shape {
	case shape.Annotated:
		a := v.Addr().Interface().(shape.Annotation)
		ctx := attr.DeserializeValueContext{Deserializer: d, Value: a.AnnotatedValue(), Engine: e}
		return a.AnnotatedAttributes().DeserializeValue(ctx, func(ctx attr.DeserializeValueContext) error {
			return e.DeserializeValue(ctx.Deserializer, ctx.Value)
		})
	case shape.Dynamic:
		raw, err := d.DeserializeRaw()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(dynamic.FromRaw(raw)))
		return nil
	case shape.Custom:
		u, ok := asInterface[shape.Unmarshaler](v)
		if !ok {
			return serdeerr.NewUnsupportedTypeError(v.Type().String(), "implements MarshalSerde without UnmarshalSerde")
		}
		return u.UnmarshalSerde(d)
	case shape.Optional:
		null, err := d.DeserializeNone()
		if err != nil {
			return err
		}
		if null {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return e.DeserializeValue(d, v.Elem())
	case shape.Sum:
		return e.deserializeSum(d, v, info)
	case shape.Scalar:
		return deserializeScalar(d, v, info.Scalar)
	case shape.Text:
		text, err := d.DeserializeStr()
		if err != nil {
			return err
		}
		if info.TextMarshaler {
			return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
		}
		v.SetString(text)
		return nil
	case shape.Bytes:
		b, err := d.DeserializeBytes()
		if err != nil {
			return err
		}
		v.SetBytes(b)
		return nil
	case shape.Sequence:
		return e.deserializeSeq(d, v)
	case shape.Set:
		return e.deserializeSet(d, v)
	case shape.Mapping:
		return e.deserializeMap(d, v)
	case shape.Tuple:
		return e.deserializeTuple(d, v)
	case shape.Record:
		return e.deserializeRecord(d, v)
	}
	return serdeerr.NewUnsupportedTypeError(v.Type().String(), "no deserializer for shape "+info.Shape.String())
}

func deserializeScalar(d backend.Deserializer, v reflect.Value, kind shape.ScalarKind) error {
	switch kind {
	case shape.Bool:
		b, err := d.DeserializeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case shape.Int:
		i, err := d.DeserializeInt()
		if err != nil {
			return err
		}
		if v.OverflowInt(i) {
			return overflow(v, strconv.FormatInt(i, 10))
		}
		v.SetInt(i)
	case shape.Uint:
		u, err := d.DeserializeUint()
		if err != nil {
			return err
		}
		if v.OverflowUint(u) {
			return overflow(v, strconv.FormatUint(u, 10))
		}
		v.SetUint(u)
	case shape.Float:
		f, err := d.DeserializeFloat()
		if err != nil {
			return err
		}
		if v.OverflowFloat(f) {
			return overflow(v, strconv.FormatFloat(f, 'g', -1, 64))
		}
		v.SetFloat(f)
	case shape.Char:
		r, err := d.DeserializeChar()
		if err != nil {
			return err
		}
		v.SetInt(int64(r))
	default:
		return serdeerr.NewUnsupportedTypeError(v.Type().String(), "unknown scalar")
	}
	return nil
}

func overflow(v reflect.Value, got string) error {
	return serdeerr.NewNotRepresentableError("<value>", v.Type().String(), serdeerr.Deserialize,
		got+" overflows "+v.Type().String())
}

func (e *Engine) deserializeSeq(d backend.Deserializer, v reflect.Value) error {
	r, err := d.DeserializeSeq()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(v.Type(), 0, 0)
	for i := 0; ; i++ {
		more, err := r.HasNext()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := e.DeserializeValue(r.Element(), elem); err != nil {
			return serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Deserialize)
		}
		out = reflect.Append(out, elem)
	}
	if err := r.Finish(); err != nil {
		return err
	}
	v.Set(out)
	return nil
}

func (e *Engine) deserializeSet(d backend.Deserializer, v reflect.Value) error {
	r, err := d.DeserializeSeq()
	if err != nil {
		return err
	}
	out := reflect.MakeMap(v.Type())
	unit := reflect.Zero(v.Type().Elem())
	for i := 0; ; i++ {
		more, err := r.HasNext()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		key := reflect.New(v.Type().Key()).Elem()
		if err := e.DeserializeValue(r.Element(), key); err != nil {
			return serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Deserialize)
		}
		out.SetMapIndex(key, unit)
	}
	if err := r.Finish(); err != nil {
		return err
	}
	v.Set(out)
	return nil
}

func (e *Engine) deserializeMap(d backend.Deserializer, v reflect.Value) error {
	r, err := d.DeserializeMap()
	if err != nil {
		return err
	}
	out := reflect.MakeMap(v.Type())
	for {
		text, ok, err := r.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key, err := parseKey(text, v.Type().Key())
		if err != nil {
			return err
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := e.DeserializeValue(r.Value(), elem); err != nil {
			return serdeerr.WithPath(err, text, serdeerr.Deserialize)
		}
		out.SetMapIndex(key, elem)
	}
	if err := r.Finish(); err != nil {
		return err
	}
	v.Set(out)
	return nil
}

func (e *Engine) deserializeTuple(d backend.Deserializer, v reflect.Value) error {
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

	r, err := d.DeserializeTuple(len(elems))
	if err != nil {
		return err
	}
	for i, elem := range elems {
		more, err := r.HasNext()
		if err != nil {
			return err
		}
		if !more {
			return serdeerr.NewNotRepresentableError("<tuple>", v.Type().String(), serdeerr.Deserialize,
				"expected "+strconv.Itoa(len(elems))+" elements, got "+strconv.Itoa(i))
		}
		if err := e.DeserializeValue(r.Element(), elem); err != nil {
			return serdeerr.WithPath(err, strconv.Itoa(i), serdeerr.Deserialize)
		}
	}
	more, err := r.HasNext()
	if err != nil {
		return err
	}
	if more {
		return serdeerr.NewNotRepresentableError("<tuple>", v.Type().String(), serdeerr.Deserialize,
			"more than "+strconv.Itoa(len(elems))+" elements")
	}
	return r.Finish()
}

// recordState tracks which fields of one record, flattened ones included,
// have claimed a key.
type recordState struct {
	rec     *record
	value   reflect.Value
	matched []bool
	nested  map[int]*recordState
	// pending holds a fresh pointer target for a nil flattened field. It is
	// assigned to the field on the first key it claims.
	pending reflect.Value
	owner   reflect.Value
}

func newRecordState(rec *record, v reflect.Value) *recordState {
	return &recordState{rec: rec, value: v, matched: make([]bool, len(rec.fields))}
}

// flattenSlot identifies the flattened field a probe recursed through.
type flattenSlot struct {
	parent *recordState
	index  int
}

func (e *Engine) deserializeRecord(d backend.Deserializer, v reflect.Value) error {
	rec, err := describe(v.Type())
	if err != nil {
		return err
	}
	r, err := d.DeserializeStruct(rec.name, len(rec.fields))
	if err != nil {
		return err
	}

	strict := e.requireClaim
	e.requireClaim = false

	st := newRecordState(rec, v)
	var (
		unknown    []string
		claimedAny bool
	)
	for {
		key, ok, err := r.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		claimed, err := e.offerKey(r, st, key)
		if err != nil {
			return err
		}
		if claimed {
			claimedAny = true
			continue
		}
		unknown = append(unknown, key)
		if err := r.SkipValue(); err != nil {
			return err
		}
	}
	if err := r.Finish(); err != nil {
		return err
	}
	if strict && !claimedAny && len(unknown) > 0 {
		return fmt.Errorf("%w: record %s claims none of the keys %s",
			serdeerr.ErrNoVariantMatched, rec.name, strings.Join(unknown, ", "))
	}
	for _, key := range unknown {
		e.hook.OnUnknownKey(e.ctx, rec.name, key)
	}
	return nil
}

// offerKey runs the probe chain of every unmatched field in declared order
// and stops at the first that claims key.
func (e *Engine) offerKey(r backend.MapReader, st *recordState, key string) (bool, error) {
	for i := range st.rec.fields {
		if st.matched[i] {
			continue
		}
		f := &st.rec.fields[i]
		ctx := attr.ProbeContext{
			Reader: r,
			Key:    key,
			Name:   e.naming.ApplyField(true, f.name),
			Field:  f.name,
			Value:  st.value.Field(f.index),
			Engine: e,
		}
		if f.attrs.Has(attr.NameFlatten) {
			ctx.State = &flattenSlot{parent: st, index: i}
		}

		decision, err := f.attrs.ProbeField(ctx, attr.DefaultProbe)
		if err != nil {
			return false, serdeerr.WithPath(err, f.name, serdeerr.Probe)
		}
		switch decision {
		case attr.MatchDeferred:
			st.matched[i] = true
			cctx := attr.ConsumeContext{
				Deserializer: r.Value(),
				Key:          key,
				Field:        f.name,
				Value:        ctx.Value,
				Engine:       e,
			}
			if err := f.attrs.ConsumeField(cctx, e.consumeField); err != nil {
				return true, serdeerr.WithPath(err, f.name, serdeerr.Consume)
			}
			return true, nil
		case attr.MatchConsumed:
			return true, nil
		}
	}
	return false, nil
}

// consumeField is the terminal consume action.
func (e *Engine) consumeField(ctx attr.ConsumeContext) error {
	return e.DeserializeValue(ctx.Deserializer, ctx.Value)
}

// ProbeFlattened offers the key to the fields of the flattened record held
// in ctx.Value. Match state persists across keys of the parent record.
func (e *Engine) ProbeFlattened(ctx attr.ProbeContext) (attr.Decision, error) {
	slot, ok := ctx.State.(*flattenSlot)
	if !ok {
		return attr.NoMatch, serdeerr.NewInvalidAttributeError(ctx.Field, attr.NameFlatten, "only valid on record fields")
	}

	child, err := slot.parent.child(slot.index, ctx.Value)
	if err != nil {
		return attr.NoMatch, err
	}
	claimed, err := e.offerKey(ctx.Reader, child, ctx.Key)
	if claimed {
		child.commit()
	}
	if err != nil {
		return attr.NoMatch, err
	}
	if claimed {
		return attr.MatchConsumed, nil
	}
	return attr.NoMatch, nil
}

func (st *recordState) child(index int, fv reflect.Value) (*recordState, error) {
	if c, ok := st.nested[index]; ok {
		return c, nil
	}

	target := fv
	var pending reflect.Value
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			pending = reflect.New(fv.Type().Elem())
			target = pending.Elem()
		} else {
			target = fv.Elem()
		}
	}
	rec, err := describe(target.Type())
	if err != nil {
		return nil, err
	}

	c := newRecordState(rec, target)
	c.pending = pending
	c.owner = fv
	if st.nested == nil {
		st.nested = make(map[int]*recordState)
	}
	st.nested[index] = c
	return c, nil
}

func (st *recordState) commit() {
	if st.pending.IsValid() {
		st.owner.Set(st.pending)
		st.pending = reflect.Value{}
	}
}
