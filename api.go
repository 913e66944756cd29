package serdex

import (
	"fmt"

	"github.com/hengadev/serdex/internal/backend"
)

// Serialize writes v to s, driving the backend through v's shape and the
// attributes of every record field.
//
// Example:
//
//	var buf bytes.Buffer
//	err := serdex.Serialize(json.NewSerializer(&buf), user, serdex.WithFieldRename(serdex.LowerCamel))
func Serialize(s Serializer, v any, opts ...Option) error {
	e, err := newEngine(opts)
	if err != nil {
		return err
	}
	return e.Serialize(s, v)
}

// Deserialize reads one value from d into the non-nil pointer v. Unknown
// record keys are skipped and fields absent from the input keep their values.
func Deserialize(d Deserializer, v any, opts ...Option) error {
	e, err := newEngine(opts)
	if err != nil {
		return err
	}
	return e.Deserialize(d, v)
}

// Transcode copies one value from d to s without decoding it into Go types.
func Transcode(d Deserializer, s Serializer) error {
	return backend.Transcode(d, s)
}

// TranscodeWithNaming is Transcode with every object key passed through the
// field policy p.
func TranscodeWithNaming(d Deserializer, s Serializer, p NamingPolicy) error {
	if p != "" && !p.IsValid() {
		return fmt.Errorf("%w: unknown naming policy '%s'", ErrInvalidConfiguration, p)
	}
	t := p.Transform()
	if t == nil {
		return backend.Transcode(d, s)
	}
	return backend.TranscodeKeys(d, s, func(key string) string { return t(true, key) })
}

// Convert re-encodes data from one registered format to another.
func Convert(data []byte, from, to string) ([]byte, error) {
	src, err := backend.ParseFormat(from)
	if err != nil {
		return nil, err
	}
	dst, err := backend.ParseFormat(to)
	if err != nil {
		return nil, err
	}
	out, err := backend.Convert(RawValue{Format: src, Data: data}, dst)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Encode serializes v with the registered format name.
func Encode(format string, v any, opts ...Option) ([]byte, error) {
	f, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	return f.Encode(func(s Serializer) error {
		return Serialize(s, v, opts...)
	})
}

// Decode deserializes data of the registered format name into v.
func Decode(format string, data []byte, v any, opts ...Option) error {
	f, err := lookupFormat(format)
	if err != nil {
		return err
	}
	d, err := f.NewDeserializer(data)
	if err != nil {
		return err
	}
	if err := Deserialize(d, v, opts...); err != nil {
		return err
	}
	if end, ok := d.(interface{ End() error }); ok {
		return end.End()
	}
	return nil
}

func lookupFormat(format string) (Format, error) {
	name, err := backend.ParseFormat(format)
	if err != nil {
		return Format{}, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}
	return backend.LookupFormat(name)
}

