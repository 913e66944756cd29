// Package json is the JSON backend, built on the jsontext token streamer.
// Importing it registers the "json" format.
package json

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/hengadev/serdex"
)

// FormatName is the name RawValues captured by this backend carry.
const FormatName = "json"

// Serializer writes one JSON value to a stream.
type Serializer struct {
	enc *jsontext.Encoder
}

// NewSerializer writes to w. Options are passed to the jsontext encoder,
// e.g. jsontext.WithIndent("  ").
func NewSerializer(w io.Writer, opts ...jsontext.Options) *Serializer {
	return &Serializer{enc: jsontext.NewEncoder(w, opts...)}
}

func (s *Serializer) Format() string { return FormatName }

func (s *Serializer) SerializeNone() error { return s.enc.WriteToken(jsontext.Null) }

// SerializeSome returns s: JSON has no wrapper for present optionals.
func (s *Serializer) SerializeSome() (serdex.Serializer, error) { return s, nil }

func (s *Serializer) SerializeBool(v bool) error   { return s.enc.WriteToken(jsontext.Bool(v)) }
func (s *Serializer) SerializeInt(v int64) error   { return s.enc.WriteToken(jsontext.Int(v)) }
func (s *Serializer) SerializeUint(v uint64) error { return s.enc.WriteToken(jsontext.Uint(v)) }
func (s *Serializer) SerializeChar(v rune) error   { return s.enc.WriteToken(jsontext.String(string(v))) }
func (s *Serializer) SerializeStr(v string) error  { return s.enc.WriteToken(jsontext.String(v)) }

func (s *Serializer) SerializeBytes(v []byte) error {
	return s.enc.WriteToken(jsontext.String(base64.StdEncoding.EncodeToString(v)))
}

func (s *Serializer) SerializeFloat(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v has no JSON representation", serdex.ErrNotRepresentable, v)
	}
	return s.enc.WriteToken(jsontext.Float(v))
}

func (s *Serializer) SerializeSeq(int) (serdex.SeqWriter, error) {
	if err := s.enc.WriteToken(jsontext.BeginArray); err != nil {
		return nil, err
	}
	return arrayWriter{s}, nil
}

func (s *Serializer) SerializeTuple(arity int) (serdex.SeqWriter, error) {
	return s.SerializeSeq(arity)
}

func (s *Serializer) SerializeMap(int) (serdex.MapWriter, error) {
	if err := s.enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	return objectWriter{s}, nil
}

func (s *Serializer) SerializeStruct(string, int) (serdex.StructWriter, error) {
	if err := s.enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	return objectWriter{s}, nil
}

// SerializeRaw copies JSON verbatim; other formats are left to the engine.
func (s *Serializer) SerializeRaw(raw serdex.RawValue) error {
	if raw.Format != FormatName {
		return serdex.ErrRawFormat
	}
	return s.enc.WriteValue(jsontext.Value(raw.Data))
}

type arrayWriter struct{ s *Serializer }

func (w arrayWriter) Element() (serdex.Serializer, error) { return w.s, nil }
func (w arrayWriter) Finish() error                       { return w.s.enc.WriteToken(jsontext.EndArray) }

type objectWriter struct{ s *Serializer }

func (w objectWriter) Entry(key string) (serdex.Serializer, error) {
	if err := w.s.enc.WriteToken(jsontext.String(key)); err != nil {
		return nil, err
	}
	return w.s, nil
}

func (w objectWriter) Field(name string) (serdex.Serializer, error) { return w.Entry(name) }
func (w objectWriter) Finish() error                                { return w.s.enc.WriteToken(jsontext.EndObject) }
