// Package dynamic implements an opaque captured subtree. A Value is a handle
// to an immutable snapshot; copying a Value shares the snapshot and mutating
// one rebinds only that handle to a fresh snapshot.
package dynamic

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/hengadev/serdex/internal/backend"
)

const jsonFormat = "json"

type snapshot struct {
	raw backend.RawValue
}

// Value is a captured subtree in its backend-native encoding.
type Value struct {
	snap *snapshot
}

// FromRaw captures raw. The bytes are copied.
func FromRaw(raw backend.RawValue) Value {
	return Value{snap: &snapshot{raw: backend.RawValue{
		Format: raw.Format,
		Data:   bytes.Clone(raw.Data),
	}}}
}

// FromJSON captures a JSON document.
func FromJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("dynamic value: invalid JSON")
	}
	return FromRaw(backend.RawValue{Format: jsonFormat, Data: data}), nil
}

// IsZero reports a handle that never captured anything.
func (v Value) IsZero() bool { return v.snap == nil }

// Raw returns the snapshot. The returned bytes must not be modified.
func (v Value) Raw() backend.RawValue {
	if v.snap == nil {
		return backend.RawValue{Format: jsonFormat, Data: []byte("null")}
	}
	return v.snap.raw
}

func (v Value) Format() string { return v.Raw().Format }

// Bytes returns a copy of the encoded snapshot.
func (v Value) Bytes() []byte { return bytes.Clone(v.Raw().Data) }

// Shares reports whether both handles observe the same snapshot.
func (v Value) Shares(other Value) bool { return v.snap == other.snap }

// JSON returns the snapshot encoded as JSON, converting if needed.
func (v Value) JSON() ([]byte, error) {
	raw, err := backend.Convert(v.Raw(), jsonFormat)
	if err != nil {
		return nil, err
	}
	return raw.Data, nil
}

func (v Value) String() string {
	data, err := v.JSON()
	if err != nil {
		return fmt.Sprintf("<%s dynamic value>", v.Format())
	}
	return string(data)
}

// Get reads the element at a gjson path.
func (v Value) Get(path string) (gjson.Result, error) {
	data, err := v.JSON()
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.GetBytes(data, path), nil
}

// Set writes x at an sjson path and rebinds the handle to the result.
func (v *Value) Set(path string, x any) error {
	return v.mutate(func(data []byte) ([]byte, error) {
		return sjson.SetBytes(data, path, x)
	})
}

// SetRaw writes a JSON fragment at an sjson path.
func (v *Value) SetRaw(path string, fragment []byte) error {
	if !gjson.ValidBytes(fragment) {
		return fmt.Errorf("dynamic value: invalid JSON fragment for '%s'", path)
	}
	return v.mutate(func(data []byte) ([]byte, error) {
		return sjson.SetRawBytes(data, path, fragment)
	})
}

// Delete removes the element at an sjson path.
func (v *Value) Delete(path string) error {
	return v.mutate(func(data []byte) ([]byte, error) {
		return sjson.DeleteBytes(data, path)
	})
}

// mutate works on a private copy so other handles keep the old snapshot.
func (v *Value) mutate(fn func(data []byte) ([]byte, error)) error {
	var data []byte
	if v.snap == nil {
		data = []byte("{}")
	} else {
		current, err := v.JSON()
		if err != nil {
			return fmt.Errorf("dynamic value: normalize to json: %w", err)
		}
		data = bytes.Clone(current)
	}

	updated, err := fn(data)
	if err != nil {
		return fmt.Errorf("dynamic value: %w", err)
	}
	v.snap = &snapshot{raw: backend.RawValue{Format: jsonFormat, Data: updated}}
	return nil
}
