package yaml

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/serdex"
)

// Deserializer reads one node of a parsed document. Aliases are followed.
type Deserializer struct {
	node *yaml.Node
}

// NewDeserializer parses the first document in data. An empty input reads
// as null.
func NewDeserializer(data []byte) (*Deserializer, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return NewNodeDeserializer(&doc), nil
}

// NewNodeDeserializer reads an already parsed node.
func NewNodeDeserializer(node *yaml.Node) *Deserializer {
	return &Deserializer{node: resolve(node)}
}

// resolve follows documents and aliases down to a value node.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func (d *Deserializer) Format() string { return FormatName }

func (d *Deserializer) tag() string {
	if d.node == nil || d.node.Kind == 0 {
		return nullTag
	}
	return d.node.ShortTag()
}

func (d *Deserializer) PeekKind() (serdex.Kind, error) {
	if d.node == nil || d.node.Kind == 0 {
		return serdex.KindNull, nil
	}
	switch d.node.Kind {
	case yaml.SequenceNode:
		return serdex.KindArray, nil
	case yaml.MappingNode:
		return serdex.KindObject, nil
	}
	switch d.tag() {
	case nullTag:
		return serdex.KindNull, nil
	case boolTag:
		return serdex.KindBool, nil
	case intTag, floatTag:
		return serdex.KindNumber, nil
	case binaryTag:
		return serdex.KindBytes, nil
	}
	return serdex.KindString, nil
}

func (d *Deserializer) expect(tags ...string) error {
	tag := d.tag()
	for _, t := range tags {
		if tag == t {
			return nil
		}
	}
	return fmt.Errorf("%w: expected %s, got %s at line %d", serdex.ErrUnexpectedKind,
		strings.Join(tags, "|"), tag, d.line())
}

func (d *Deserializer) line() int {
	if d.node == nil {
		return 0
	}
	return d.node.Line
}

func (d *Deserializer) DeserializeNone() (bool, error) {
	return d.tag() == nullTag, nil
}

func (d *Deserializer) DeserializeBool() (bool, error) {
	if err := d.expect(boolTag); err != nil {
		return false, err
	}
	var b bool
	err := d.node.Decode(&b)
	return b, err
}

func (d *Deserializer) DeserializeInt() (int64, error) {
	if err := d.expect(intTag, floatTag); err != nil {
		return 0, err
	}
	if d.tag() == intTag {
		var i int64
		if err := d.node.Decode(&i); err != nil {
			return 0, fmt.Errorf("%w: %s is not a 64-bit integer", serdex.ErrNotRepresentable, d.node.Value)
		}
		return i, nil
	}
	f, err := d.DeserializeFloat()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s is not a 64-bit integer", serdex.ErrNotRepresentable, d.node.Value)
	}
	return int64(f), nil
}

func (d *Deserializer) DeserializeUint() (uint64, error) {
	if err := d.expect(intTag, floatTag); err != nil {
		return 0, err
	}
	if d.tag() == intTag {
		var u uint64
		if err := d.node.Decode(&u); err != nil {
			return 0, fmt.Errorf("%w: %s is not an unsigned 64-bit integer", serdex.ErrNotRepresentable, d.node.Value)
		}
		return u, nil
	}
	f, err := d.DeserializeFloat()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %s is not an unsigned 64-bit integer", serdex.ErrNotRepresentable, d.node.Value)
	}
	return uint64(f), nil
}

func (d *Deserializer) DeserializeFloat() (float64, error) {
	if err := d.expect(intTag, floatTag); err != nil {
		return 0, err
	}
	var f float64
	err := d.node.Decode(&f)
	return f, err
}

// DeserializeNumber normalizes YAML spellings such as 0x1F or 1_000.
func (d *Deserializer) DeserializeNumber() (serdex.Number, error) {
	if err := d.expect(intTag, floatTag); err != nil {
		return "", err
	}
	if d.tag() == intTag {
		var i int64
		if err := d.node.Decode(&i); err == nil {
			return serdex.Number(strconv.FormatInt(i, 10)), nil
		}
		var u uint64
		if err := d.node.Decode(&u); err == nil {
			return serdex.Number(strconv.FormatUint(u, 10)), nil
		}
	}
	f, err := d.DeserializeFloat()
	if err != nil {
		return "", err
	}
	return serdex.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (d *Deserializer) DeserializeChar() (rune, error) {
	s, err := d.DeserializeStr()
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q is not a single character", serdex.ErrNotRepresentable, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// DeserializeStr accepts plain strings and timestamps, which YAML resolves
// to their own tag.
func (d *Deserializer) DeserializeStr() (string, error) {
	if err := d.expect(strTag, "!!timestamp"); err != nil {
		return "", err
	}
	return d.node.Value, nil
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	if err := d.expect(binaryTag, strTag); err != nil {
		return nil, err
	}
	text := strings.Join(strings.Fields(d.node.Value), "")
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 at line %d: %w", serdex.ErrNotRepresentable, d.line(), err)
	}
	return b, nil
}

func (d *Deserializer) DeserializeSeq() (serdex.SeqReader, error) {
	if d.node == nil || d.node.Kind != yaml.SequenceNode {
		return nil, d.expect("!!seq")
	}
	return &sequenceReader{nodes: d.node.Content}, nil
}

func (d *Deserializer) DeserializeTuple(int) (serdex.SeqReader, error) {
	return d.DeserializeSeq()
}

func (d *Deserializer) DeserializeMap() (serdex.MapReader, error) {
	if d.node == nil || d.node.Kind != yaml.MappingNode {
		return nil, d.expect("!!map")
	}
	return &mappingReader{nodes: d.node.Content}, nil
}

func (d *Deserializer) DeserializeStruct(string, int) (serdex.MapReader, error) {
	return d.DeserializeMap()
}

// DeserializeVariant reuses the node: reading never mutates it, so every
// candidate starts from the same position.
func (d *Deserializer) DeserializeVariant(candidates []serdex.VariantCandidate) error {
	kind, err := d.PeekKind()
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range candidates {
		if !c.Accepts(kind) {
			continue
		}
		err := c.Decode(&Deserializer{node: d.node})
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	return fmt.Errorf("%w: %s value at line %d: %w", serdex.ErrNoVariantMatched, kind, d.line(), errors.Join(errs...))
}

func (d *Deserializer) DeserializeRaw() (serdex.RawValue, error) {
	node := d.node
	if node == nil {
		node = &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	}
	data, err := encodeNode(node)
	if err != nil {
		return serdex.RawValue{}, err
	}
	return serdex.RawValue{Format: FormatName, Data: bytes.TrimSuffix(data, []byte("\n"))}, nil
}

func (d *Deserializer) SkipValue() error { return nil }

type sequenceReader struct {
	nodes []*yaml.Node
	next  int
}

func (r *sequenceReader) HasNext() (bool, error) { return r.next < len(r.nodes), nil }

func (r *sequenceReader) Element() serdex.Deserializer {
	d := NewNodeDeserializer(r.nodes[r.next])
	r.next++
	return d
}

func (r *sequenceReader) SkipElement() error {
	r.next++
	return nil
}

func (r *sequenceReader) Finish() error {
	if r.next < len(r.nodes) {
		return fmt.Errorf("%w: %d unread sequence elements", serdex.ErrNotRepresentable, len(r.nodes)-r.next)
	}
	return nil
}

type mappingReader struct {
	nodes []*yaml.Node
	next  int
	value *yaml.Node
}

func (r *mappingReader) NextKey() (string, bool, error) {
	if r.next+1 >= len(r.nodes) {
		return "", false, nil
	}
	key := resolve(r.nodes[r.next])
	r.value = r.nodes[r.next+1]
	r.next += 2
	if key == nil || key.Kind != yaml.ScalarNode {
		return "", false, fmt.Errorf("%w: mapping keys must be scalars", serdex.ErrUnexpectedKind)
	}
	return key.Value, true, nil
}

func (r *mappingReader) Value() serdex.Deserializer { return NewNodeDeserializer(r.value) }
func (r *mappingReader) SkipValue() error           { return nil }
func (r *mappingReader) Finish() error              { return nil }
