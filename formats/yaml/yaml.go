package yaml

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/serdex"
)

// Indent is the number of spaces per nesting level in emitted documents.
const Indent = 2

func init() {
	serdex.RegisterFormat(serdex.Format{
		Name:    FormatName,
		Aliases: []string{"yml"},
		NewDeserializer: func(data []byte) (serdex.Deserializer, error) {
			return NewDeserializer(data)
		},
		Encode: encode,
	})
}

func encodeNode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(fn func(s serdex.Serializer) error) ([]byte, error) {
	s := NewSerializer()
	if err := fn(s); err != nil {
		return nil, err
	}
	return encodeNode(s.Node())
}

// Marshal returns the YAML document for v.
func Marshal(v any, opts ...serdex.Option) ([]byte, error) {
	return encode(func(s serdex.Serializer) error {
		return serdex.Serialize(s, v, opts...)
	})
}

// Unmarshal decodes the first document in data into the pointer v.
func Unmarshal(data []byte, v any, opts ...serdex.Option) error {
	d, err := NewDeserializer(data)
	if err != nil {
		return err
	}
	return serdex.Deserialize(d, v, opts...)
}
