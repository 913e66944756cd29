package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/hengadev/serdex"
)

// Deserializer reads one MessagePack value from a stream.
type Deserializer struct {
	dec *msgpack.Decoder
}

func NewDeserializer(r io.Reader) *Deserializer {
	return &Deserializer{dec: msgpack.NewDecoder(r)}
}

func (d *Deserializer) Format() string { return FormatName }

func (d *Deserializer) peek() (byte, error) {
	c, err := d.dec.PeekCode()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return c, err
}

func kindOf(c byte) serdex.Kind {
	switch {
	case c == msgpcode.Nil:
		return serdex.KindNull
	case c == msgpcode.False || c == msgpcode.True:
		return serdex.KindBool
	case isNumber(c):
		return serdex.KindNumber
	case msgpcode.IsString(c):
		return serdex.KindString
	case msgpcode.IsBin(c):
		return serdex.KindBytes
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return serdex.KindArray
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return serdex.KindObject
	}
	return serdex.KindInvalid
}

func isNumber(c byte) bool {
	return msgpcode.IsFixedNum(c) || isFloat(c) || (c >= msgpcode.Uint8 && c <= msgpcode.Int64)
}

func isFloat(c byte) bool { return c == msgpcode.Float || c == msgpcode.Double }

// isSigned reports codes that can carry a negative value.
func isSigned(c byte) bool {
	return c >= msgpcode.NegFixedNumLow || (c >= msgpcode.Int8 && c <= msgpcode.Int64)
}

func (d *Deserializer) PeekKind() (serdex.Kind, error) {
	c, err := d.peek()
	if err != nil {
		return serdex.KindInvalid, err
	}
	k := kindOf(c)
	if k == serdex.KindInvalid {
		return k, fmt.Errorf("%w: unsupported msgpack code 0x%x", serdex.ErrUnexpectedKind, c)
	}
	return k, nil
}

func (d *Deserializer) expect(kinds ...serdex.Kind) (byte, error) {
	c, err := d.peek()
	if err != nil {
		return 0, err
	}
	got := kindOf(c)
	for _, k := range kinds {
		if got == k {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: expected %v, got %s", serdex.ErrUnexpectedKind, kinds, got)
}

func (d *Deserializer) DeserializeNone() (bool, error) {
	c, err := d.peek()
	if err != nil || c != msgpcode.Nil {
		return false, err
	}
	return true, d.dec.DecodeNil()
}

func (d *Deserializer) DeserializeBool() (bool, error) {
	if _, err := d.expect(serdex.KindBool); err != nil {
		return false, err
	}
	return d.dec.DecodeBool()
}

func (d *Deserializer) DeserializeInt() (int64, error) {
	c, err := d.expect(serdex.KindNumber)
	if err != nil {
		return 0, err
	}
	switch {
	case c == msgpcode.Uint64:
		u, err := d.dec.DecodeUint64()
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d is not a 64-bit integer", serdex.ErrNotRepresentable, u)
		}
		return int64(u), nil
	case isFloat(c):
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v is not a 64-bit integer", serdex.ErrNotRepresentable, f)
		}
		return int64(f), nil
	}
	return d.dec.DecodeInt64()
}

func (d *Deserializer) DeserializeUint() (uint64, error) {
	c, err := d.expect(serdex.KindNumber)
	if err != nil {
		return 0, err
	}
	switch {
	case isSigned(c):
		i, err := d.dec.DecodeInt64()
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, fmt.Errorf("%w: %d is negative", serdex.ErrNotRepresentable, i)
		}
		return uint64(i), nil
	case isFloat(c):
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v is not an unsigned 64-bit integer", serdex.ErrNotRepresentable, f)
		}
		return uint64(f), nil
	}
	return d.dec.DecodeUint64()
}

func (d *Deserializer) DeserializeFloat() (float64, error) {
	c, err := d.expect(serdex.KindNumber)
	if err != nil {
		return 0, err
	}
	if c == msgpcode.Uint64 {
		u, err := d.dec.DecodeUint64()
		return float64(u), err
	}
	return d.dec.DecodeFloat64()
}

func (d *Deserializer) DeserializeNumber() (serdex.Number, error) {
	c, err := d.expect(serdex.KindNumber)
	if err != nil {
		return "", err
	}
	switch {
	case c == msgpcode.Float:
		f, err := d.dec.DecodeFloat32()
		return serdex.Number(strconv.FormatFloat(float64(f), 'g', -1, 32)), err
	case c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		return serdex.Number(strconv.FormatFloat(f, 'g', -1, 64)), err
	case isSigned(c):
		i, err := d.dec.DecodeInt64()
		return serdex.Number(strconv.FormatInt(i, 10)), err
	}
	u, err := d.dec.DecodeUint64()
	return serdex.Number(strconv.FormatUint(u, 10)), err
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

func (d *Deserializer) DeserializeStr() (string, error) {
	if _, err := d.expect(serdex.KindString); err != nil {
		return "", err
	}
	return d.dec.DecodeString()
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	if _, err := d.expect(serdex.KindBytes, serdex.KindString); err != nil {
		return nil, err
	}
	return d.dec.DecodeBytes()
}

func (d *Deserializer) DeserializeSeq() (serdex.SeqReader, error) {
	if _, err := d.expect(serdex.KindArray); err != nil {
		return nil, err
	}
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	return &arrayReader{d: d, remaining: n}, nil
}

func (d *Deserializer) DeserializeTuple(int) (serdex.SeqReader, error) {
	return d.DeserializeSeq()
}

func (d *Deserializer) DeserializeMap() (serdex.MapReader, error) {
	if _, err := d.expect(serdex.KindObject); err != nil {
		return nil, err
	}
	n, err := d.dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	return &mapReader{d: d, remaining: n}, nil
}

func (d *Deserializer) DeserializeStruct(string, int) (serdex.MapReader, error) {
	return d.DeserializeMap()
}

// DeserializeVariant buffers the value so each candidate gets a fresh reader.
func (d *Deserializer) DeserializeVariant(candidates []serdex.VariantCandidate) error {
	kind, err := d.PeekKind()
	if err != nil {
		return err
	}
	raw, err := d.dec.DecodeRaw()
	if err != nil {
		return err
	}

	var errs []error
	for _, c := range candidates {
		if !c.Accepts(kind) {
			continue
		}
		err := c.Decode(NewDeserializer(bytes.NewReader(raw)))
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	return fmt.Errorf("%w: %s value: %w", serdex.ErrNoVariantMatched, kind, errors.Join(errs...))
}

func (d *Deserializer) DeserializeRaw() (serdex.RawValue, error) {
	raw, err := d.dec.DecodeRaw()
	if err != nil {
		return serdex.RawValue{}, err
	}
	return serdex.RawValue{Format: FormatName, Data: bytes.Clone(raw)}, nil
}

func (d *Deserializer) SkipValue() error { return d.dec.Skip() }

// End reports an error if any byte follows the value.
func (d *Deserializer) End() error {
	if _, err := d.dec.PeekCode(); err != io.EOF {
		if err != nil {
			return err
		}
		return errors.New("msgpack: unexpected trailing data after top-level value")
	}
	return nil
}

type arrayReader struct {
	d         *Deserializer
	remaining int
}

func (r *arrayReader) HasNext() (bool, error) { return r.remaining > 0, nil }

func (r *arrayReader) Element() serdex.Deserializer {
	r.remaining--
	return r.d
}

func (r *arrayReader) SkipElement() error {
	r.remaining--
	return r.d.dec.Skip()
}

func (r *arrayReader) Finish() error {
	if r.remaining > 0 {
		return fmt.Errorf("%w: %d unread array elements", serdex.ErrNotRepresentable, r.remaining)
	}
	return nil
}

type mapReader struct {
	d         *Deserializer
	remaining int
}

// NextKey accepts string and integer keys.
func (r *mapReader) NextKey() (string, bool, error) {
	if r.remaining <= 0 {
		return "", false, nil
	}
	r.remaining--
	kind, err := r.d.PeekKind()
	if err != nil {
		return "", false, err
	}
	switch kind {
	case serdex.KindString:
		key, err := r.d.dec.DecodeString()
		return key, err == nil, err
	case serdex.KindNumber:
		n, err := r.d.DeserializeNumber()
		return string(n), err == nil, err
	}
	return "", false, fmt.Errorf("%w: map keys must be strings, got %s", serdex.ErrUnexpectedKind, kind)
}

func (r *mapReader) Value() serdex.Deserializer { return r.d }
func (r *mapReader) SkipValue() error           { return r.d.dec.Skip() }
func (r *mapReader) Finish() error              { return nil }
