// Package yaml is the YAML backend. Values are built as a yaml.v3 node tree
// and emitted in block style. Importing it registers the "yaml" format,
// also reachable as "yml".
package yaml

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/serdex"
)

// FormatName is the name RawValues captured by this backend carry.
const FormatName = "yaml"

const (
	nullTag   = "!!null"
	boolTag   = "!!bool"
	intTag    = "!!int"
	floatTag  = "!!float"
	strTag    = "!!str"
	binaryTag = "!!binary"
)

// Serializer fills in a single yaml.Node.
type Serializer struct {
	node *yaml.Node
}

// NewSerializer returns a serializer writing into a fresh node.
func NewSerializer() *Serializer {
	return &Serializer{node: &yaml.Node{}}
}

// Node returns the node built so far.
func (s *Serializer) Node() *yaml.Node { return s.node }

func (s *Serializer) Format() string { return FormatName }

func (s *Serializer) scalar(tag, value string) error {
	*s.node = yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	return nil
}

func (s *Serializer) SerializeNone() error                      { return s.scalar(nullTag, "null") }
func (s *Serializer) SerializeSome() (serdex.Serializer, error) { return s, nil }
func (s *Serializer) SerializeBool(v bool) error                { return s.scalar(boolTag, strconv.FormatBool(v)) }
func (s *Serializer) SerializeInt(v int64) error                { return s.scalar(intTag, strconv.FormatInt(v, 10)) }
func (s *Serializer) SerializeUint(v uint64) error              { return s.scalar(intTag, strconv.FormatUint(v, 10)) }
func (s *Serializer) SerializeChar(v rune) error                { return s.SerializeStr(string(v)) }

func (s *Serializer) SerializeFloat(v float64) error {
	return s.scalar(floatTag, formatFloat(v))
}

func (s *Serializer) SerializeStr(v string) error {
	*s.node = yaml.Node{}
	s.node.SetString(v)
	return nil
}

func (s *Serializer) SerializeBytes(v []byte) error {
	return s.scalar(binaryTag, base64.StdEncoding.EncodeToString(v))
}

func (s *Serializer) SerializeSeq(sizeHint int) (serdex.SeqWriter, error) {
	*s.node = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, max(sizeHint, 0))}
	return sequenceWriter{s.node}, nil
}

func (s *Serializer) SerializeTuple(arity int) (serdex.SeqWriter, error) {
	return s.SerializeSeq(arity)
}

func (s *Serializer) SerializeMap(sizeHint int) (serdex.MapWriter, error) {
	return s.mapping(sizeHint), nil
}

func (s *Serializer) SerializeStruct(_ string, fieldCount int) (serdex.StructWriter, error) {
	return s.mapping(fieldCount), nil
}

func (s *Serializer) mapping(sizeHint int) mappingWriter {
	*s.node = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*max(sizeHint, 0))}
	return mappingWriter{s.node}
}

// SerializeRaw grafts a captured YAML document. Other formats are
// transcoded by the engine.
func (s *Serializer) SerializeRaw(raw serdex.RawValue) error {
	if raw.Format != FormatName {
		return serdex.ErrRawFormat
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw.Data, &doc); err != nil {
		return err
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		*s.node = *doc.Content[0]
		return nil
	}
	return s.SerializeNone()
}

type sequenceWriter struct{ node *yaml.Node }

func (w sequenceWriter) Element() (serdex.Serializer, error) {
	child := &yaml.Node{}
	w.node.Content = append(w.node.Content, child)
	return &Serializer{node: child}, nil
}

func (w sequenceWriter) Finish() error { return nil }

type mappingWriter struct{ node *yaml.Node }

func (w mappingWriter) Entry(key string) (serdex.Serializer, error) {
	k := &yaml.Node{}
	k.SetString(key)
	v := &yaml.Node{}
	w.node.Content = append(w.node.Content, k, v)
	return &Serializer{node: v}, nil
}

func (w mappingWriter) Field(name string) (serdex.Serializer, error) { return w.Entry(name) }
func (w mappingWriter) Finish() error                                { return nil }

// formatFloat keeps a fraction on integral values so they read back as floats.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
