package engine

import (
	"fmt"
	"reflect"

	"github.com/hengadev/errsx"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hengadev/serdex/internal/attr"
	"github.com/hengadev/serdex/internal/serdeerr"
	"github.com/hengadev/serdex/internal/shape"
)

type field struct {
	// name is the declared name before any naming policy.
	name  string
	index int
	typ   reflect.Type
	attrs attr.Chain
}

type record struct {
	name   string
	fields []field
}

type describeResult struct {
	rec *record
	err error
}

var records = xsync.NewMapOf[reflect.Type, describeResult]()

// describe returns the ordered field list of the struct type t.
func describe(t reflect.Type) (*record, error) {
	if r, ok := records.Load(t); ok {
		return r.rec, r.err
	}
	r, _ := records.LoadOrCompute(t, func() describeResult {
		rec, err := buildRecord(t)
		return describeResult{rec: rec, err: err}
	})
	return r.rec, r.err
}

// Forget drops the cached descriptor of t, for example after attributes are
// registered for one of its fields.
func Forget(t reflect.Type) {
	records.Delete(t)
}

func buildRecord(t reflect.Type) (*record, error) {
	rec := &record{name: t.Name()}
	errs := make(errsx.Map)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !(sf.Anonymous && sf.Type.Kind() == reflect.Struct) {
			continue
		}

		var tag attr.Tag
		if raw, ok := sf.Tag.Lookup(attr.TagName); ok {
			parsed, err := attr.ParseTag(raw)
			if err != nil {
				errs.Set(sf.Name, err)
				continue
			}
			tag = parsed
		}

		f := field{
			name:  tag.Name,
			index: i,
			typ:   sf.Type,
			attrs: append(append(attr.Chain(nil), tag.Attributes...), attr.FieldAttributes(t, sf.Name)...),
		}
		if f.name == "" {
			f.name = sf.Name
			if sf.Anonymous && isRecord(sf.Type) && !f.attrs.Has(attr.NameFlatten) && !f.attrs.Has(attr.NameSkip) {
				f.attrs = append(f.attrs, attr.Flatten{})
			}
		}

		if err := validateField(f); err != nil {
			errs.Set(sf.Name, err)
			continue
		}
		rec.fields = append(rec.fields, f)
	}

	if !errs.IsEmpty() {
		return nil, fmt.Errorf("%w: record %s: %w", serdeerr.ErrInvalidAttribute, t, errs.AsError())
	}
	return rec, nil
}

func validateField(f field) error {
	if f.attrs.Has(attr.NameFlatten) && !isRecord(f.typ) {
		return serdeerr.NewInvalidAttributeError(f.name, attr.NameFlatten,
			fmt.Sprintf("type %s is not a record", f.typ))
	}
	for _, a := range f.attrs {
		if es, ok := a.(attr.EnumString); ok && !es.Integer && !isInteger(f.typ) {
			return serdeerr.NewInvalidAttributeError(f.name, attr.NameEnumString,
				fmt.Sprintf("type %s is not integer-backed", f.typ))
		}
	}
	return nil
}

// isRecord reports struct and pointer-to-struct types classified as records.
func isRecord(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	info, err := shape.Of(t)
	return err == nil && info.Shape == shape.Record
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// tupleFields lists the exported field indexes of a tuple struct.
func tupleFields(t reflect.Type) []int {
	var idx []int
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			idx = append(idx, i)
		}
	}
	return idx
}
