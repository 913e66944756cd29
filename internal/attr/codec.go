package attr

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"reflect"
	"time"

	"github.com/hengadev/serdex/internal/backend"
)

// Codec replaces the default (de)serialization of a value.
type Codec interface {
	Encode(s backend.Serializer, v reflect.Value) error
	Decode(d backend.Deserializer, v reflect.Value) error
}

var timeType = reflect.TypeFor[time.Time]()

func isByteSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

type timeUnit uint8

const (
	unitSeconds timeUnit = iota
	unitMillis
)

// timeCodec stores time.Time as an integer Unix timestamp.
type timeCodec struct {
	unit timeUnit
}

func (c timeCodec) Encode(s backend.Serializer, v reflect.Value) error {
	if v.Type() != timeType {
		return fmt.Errorf("unix codec requires time.Time, got %s", v.Type())
	}
	t := v.Interface().(time.Time)
	if c.unit == unitMillis {
		return s.SerializeInt(t.UnixMilli())
	}
	return s.SerializeInt(t.Unix())
}

func (c timeCodec) Decode(d backend.Deserializer, v reflect.Value) error {
	if v.Type() != timeType {
		return fmt.Errorf("unix codec requires time.Time, got %s", v.Type())
	}
	n, err := d.DeserializeInt()
	if err != nil {
		return err
	}
	t := time.Unix(n, 0)
	if c.unit == unitMillis {
		t = time.UnixMilli(n)
	}
	v.Set(reflect.ValueOf(t.UTC()))
	return nil
}

type bytesEncoding uint8

const (
	hexEncoding bytesEncoding = iota
	base64URLEncoding
)

// bytesCodec stores a byte slice as text.
type bytesCodec struct {
	encoding bytesEncoding
}

func (c bytesCodec) Encode(s backend.Serializer, v reflect.Value) error {
	if !isByteSlice(v.Type()) {
		return fmt.Errorf("%s codec requires a byte slice, got %s", c.name(), v.Type())
	}
	b := v.Bytes()
	if c.encoding == hexEncoding {
		return s.SerializeStr(hex.EncodeToString(b))
	}
	return s.SerializeStr(base64.RawURLEncoding.EncodeToString(b))
}

func (c bytesCodec) Decode(d backend.Deserializer, v reflect.Value) error {
	if !isByteSlice(v.Type()) {
		return fmt.Errorf("%s codec requires a byte slice, got %s", c.name(), v.Type())
	}
	text, err := d.DeserializeStr()
	if err != nil {
		return err
	}
	var b []byte
	if c.encoding == hexEncoding {
		b, err = hex.DecodeString(text)
	} else {
		b, err = base64.RawURLEncoding.DecodeString(text)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.name(), err)
	}
	v.SetBytes(b)
	return nil
}

func (c bytesCodec) name() string {
	if c.encoding == hexEncoding {
		return "hex"
	}
	return "base64url"
}
