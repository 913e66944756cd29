package json

import (
	"bytes"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/hengadev/serdex"
)

func init() {
	serdex.RegisterFormat(serdex.Format{
		Name: FormatName,
		NewDeserializer: func(data []byte) (serdex.Deserializer, error) {
			return NewDeserializer(bytes.NewReader(data)), nil
		},
		Encode: func(fn func(s serdex.Serializer) error) ([]byte, error) {
			return encode(fn)
		},
	})
}

func encode(fn func(s serdex.Serializer) error, opts ...jsontext.Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(NewSerializer(&buf, opts...)); err != nil {
		return nil, err
	}
	// The encoder terminates every top-level value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Marshal returns the compact JSON encoding of v.
func Marshal(v any, opts ...serdex.Option) ([]byte, error) {
	return encode(func(s serdex.Serializer) error {
		return serdex.Serialize(s, v, opts...)
	})
}

// MarshalIndent is like Marshal but puts each element on its own line.
func MarshalIndent(v any, indent string, opts ...serdex.Option) ([]byte, error) {
	return encode(func(s serdex.Serializer) error {
		return serdex.Serialize(s, v, opts...)
	}, jsontext.WithIndent(indent))
}

// Unmarshal decodes a single JSON value into the pointer v. Trailing
// content after the value is an error.
func Unmarshal(data []byte, v any, opts ...serdex.Option) error {
	d := NewDeserializer(bytes.NewReader(data))
	if err := serdex.Deserialize(d, v, opts...); err != nil {
		return err
	}
	return d.End()
}
