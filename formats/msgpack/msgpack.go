package msgpack

import (
	"bytes"

	"github.com/hengadev/serdex"
)

func init() {
	serdex.RegisterFormat(serdex.Format{
		Name:    FormatName,
		Aliases: []string{"mp", "messagepack"},
		NewDeserializer: func(data []byte) (serdex.Deserializer, error) {
			return NewDeserializer(bytes.NewReader(data)), nil
		},
		Encode: encode,
	})
}

func encode(fn func(s serdex.Serializer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(NewSerializer(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal returns the MessagePack encoding of v.
func Marshal(v any, opts ...serdex.Option) ([]byte, error) {
	return encode(func(s serdex.Serializer) error {
		return serdex.Serialize(s, v, opts...)
	})
}

// Unmarshal decodes a single value into the pointer v. Trailing bytes are
// an error.
func Unmarshal(data []byte, v any, opts ...serdex.Option) error {
	d := NewDeserializer(bytes.NewReader(data))
	if err := serdex.Deserialize(d, v, opts...); err != nil {
		return err
	}
	return d.End()
}
