// Package msgpack is the MessagePack backend. Records are written as maps
// keyed by field name. Importing it registers the "msgpack" format.
package msgpack

import (
	"bytes"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hengadev/serdex"
)

// FormatName is the name RawValues captured by this backend carry.
const FormatName = "msgpack"

// Serializer writes one MessagePack value.
type Serializer struct {
	enc *msgpack.Encoder
}

func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{enc: msgpack.NewEncoder(w)}
}

func (s *Serializer) Format() string { return FormatName }

func (s *Serializer) SerializeNone() error                      { return s.enc.EncodeNil() }
func (s *Serializer) SerializeSome() (serdex.Serializer, error) { return s, nil }
func (s *Serializer) SerializeBool(v bool) error                { return s.enc.EncodeBool(v) }
func (s *Serializer) SerializeInt(v int64) error                { return s.enc.EncodeInt(v) }
func (s *Serializer) SerializeUint(v uint64) error              { return s.enc.EncodeUint(v) }
func (s *Serializer) SerializeFloat(v float64) error            { return s.enc.EncodeFloat64(v) }
func (s *Serializer) SerializeChar(v rune) error                { return s.enc.EncodeString(string(v)) }
func (s *Serializer) SerializeStr(v string) error               { return s.enc.EncodeString(v) }
func (s *Serializer) SerializeBytes(v []byte) error             { return s.enc.EncodeBytes(v) }

func (s *Serializer) SerializeSeq(int) (serdex.SeqWriter, error) {
	return newContainer(s.enc, false), nil
}

func (s *Serializer) SerializeTuple(arity int) (serdex.SeqWriter, error) {
	return s.SerializeSeq(arity)
}

func (s *Serializer) SerializeMap(int) (serdex.MapWriter, error) {
	return newContainer(s.enc, true), nil
}

func (s *Serializer) SerializeStruct(string, int) (serdex.StructWriter, error) {
	return newContainer(s.enc, true), nil
}

// SerializeRaw copies MessagePack verbatim; other formats are left to the engine.
func (s *Serializer) SerializeRaw(raw serdex.RawValue) error {
	if raw.Format != FormatName {
		return serdex.ErrRawFormat
	}
	return s.enc.Encode(msgpack.RawMessage(raw.Data))
}

// container buffers its elements: the header carries the element count,
// which is only known once skipped fields have been decided.
type container struct {
	parent *msgpack.Encoder
	body   bytes.Buffer
	enc    *msgpack.Encoder
	count  int
	isMap  bool
}

func newContainer(parent *msgpack.Encoder, isMap bool) *container {
	c := &container{parent: parent, isMap: isMap}
	c.enc = msgpack.NewEncoder(&c.body)
	return c
}

func (c *container) Element() (serdex.Serializer, error) {
	c.count++
	return &Serializer{enc: c.enc}, nil
}

func (c *container) Entry(key string) (serdex.Serializer, error) {
	if err := c.enc.EncodeString(key); err != nil {
		return nil, err
	}
	c.count++
	return &Serializer{enc: c.enc}, nil
}

func (c *container) Field(name string) (serdex.Serializer, error) { return c.Entry(name) }

func (c *container) Finish() error {
	var err error
	if c.isMap {
		err = c.parent.EncodeMapLen(c.count)
	} else {
		err = c.parent.EncodeArrayLen(c.count)
	}
	if err != nil || c.body.Len() == 0 {
		return err
	}
	return c.parent.Encode(msgpack.RawMessage(c.body.Bytes()))
}
