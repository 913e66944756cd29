package json

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/hengadev/serdex"
)

// Deserializer reads one JSON value from a stream. Duplicate object names
// are passed through; the record algorithm decides which one wins.
type Deserializer struct {
	dec *jsontext.Decoder
}

func NewDeserializer(r io.Reader) *Deserializer {
	return &Deserializer{dec: jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true))}
}

func (d *Deserializer) Format() string { return FormatName }

func (d *Deserializer) PeekKind() (serdex.Kind, error) {
	k := d.dec.PeekKind()
	switch k {
	case 'n':
		return serdex.KindNull, nil
	case 't', 'f':
		return serdex.KindBool, nil
	case '0':
		return serdex.KindNumber, nil
	case '"':
		return serdex.KindString, nil
	case '[':
		return serdex.KindArray, nil
	case '{':
		return serdex.KindObject, nil
	case ']', '}':
		return 0, fmt.Errorf("%w: expected a value, got %s", serdex.ErrUnexpectedKind, k)
	}
	// PeekKind reports 0 on error; reading surfaces it.
	_, err := d.dec.ReadToken()
	if err == nil || err == io.EOF {
		err = fmt.Errorf("%w: expected a value, got end of input", serdex.ErrUnexpectedKind)
	}
	return 0, err
}

func (d *Deserializer) read(kinds ...jsontext.Kind) (jsontext.Token, error) {
	tok, err := d.dec.ReadToken()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return jsontext.Token{}, err
	}
	for _, k := range kinds {
		if tok.Kind() == k {
			return tok, nil
		}
	}
	return jsontext.Token{}, fmt.Errorf("%w: expected %s, got %s", serdex.ErrUnexpectedKind, kindNames(kinds), tok.Kind())
}

func (d *Deserializer) DeserializeNone() (bool, error) {
	if d.dec.PeekKind() != 'n' {
		return false, nil
	}
	_, err := d.dec.ReadToken()
	return err == nil, err
}

func (d *Deserializer) DeserializeBool() (bool, error) {
	tok, err := d.read('t', 'f')
	if err != nil {
		return false, err
	}
	return tok.Bool(), nil
}

func (d *Deserializer) DeserializeInt() (int64, error) {
	tok, err := d.read('0')
	if err != nil {
		return 0, err
	}
	text := tok.String()
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s is not a 64-bit integer", serdex.ErrNotRepresentable, text)
	}
	return int64(f), nil
}

func (d *Deserializer) DeserializeUint() (uint64, error) {
	tok, err := d.read('0')
	if err != nil {
		return 0, err
	}
	text := tok.String()
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %s is not an unsigned 64-bit integer", serdex.ErrNotRepresentable, text)
	}
	return uint64(f), nil
}

func (d *Deserializer) DeserializeFloat() (float64, error) {
	tok, err := d.read('0')
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok.String(), 64)
}

func (d *Deserializer) DeserializeNumber() (serdex.Number, error) {
	tok, err := d.read('0')
	if err != nil {
		return "", err
	}
	return serdex.Number(tok.String()), nil
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
	tok, err := d.read('"')
	if err != nil {
		return "", err
	}
	return tok.String(), nil
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	s, err := d.DeserializeStr()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %w", serdex.ErrNotRepresentable, err)
	}
	return b, nil
}

func (d *Deserializer) DeserializeSeq() (serdex.SeqReader, error) {
	if _, err := d.read('['); err != nil {
		return nil, err
	}
	return &arrayReader{d: d}, nil
}

func (d *Deserializer) DeserializeTuple(int) (serdex.SeqReader, error) {
	return d.DeserializeSeq()
}

func (d *Deserializer) DeserializeMap() (serdex.MapReader, error) {
	if _, err := d.read('{'); err != nil {
		return nil, err
	}
	return &objectReader{d: d}, nil
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
	value, err := d.dec.ReadValue()
	if err != nil {
		return err
	}
	value = bytes.Clone(value)

	var errs []error
	for _, c := range candidates {
		if !c.Accepts(kind) {
			continue
		}
		err := c.Decode(NewDeserializer(bytes.NewReader(value)))
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	return fmt.Errorf("%w: %s value: %w", serdex.ErrNoVariantMatched, kind, errors.Join(errs...))
}

func (d *Deserializer) DeserializeRaw() (serdex.RawValue, error) {
	value, err := d.dec.ReadValue()
	if err != nil {
		return serdex.RawValue{}, err
	}
	return serdex.RawValue{Format: FormatName, Data: bytes.Clone(value)}, nil
}

func (d *Deserializer) SkipValue() error { return d.dec.SkipValue() }

// End reports an error if anything but whitespace follows the value.
func (d *Deserializer) End() error {
	tok, err := d.dec.ReadToken()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("json: unexpected trailing %s after top-level value", tok.Kind())
}

type arrayReader struct{ d *Deserializer }

func (r *arrayReader) HasNext() (bool, error) {
	if r.d.dec.PeekKind() == ']' {
		return false, nil
	}
	if _, err := r.d.PeekKind(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *arrayReader) Element() serdex.Deserializer { return r.d }
func (r *arrayReader) SkipElement() error           { return r.d.dec.SkipValue() }

func (r *arrayReader) Finish() error {
	_, err := r.d.read(']')
	return err
}

type objectReader struct{ d *Deserializer }

func (r *objectReader) NextKey() (string, bool, error) {
	if r.d.dec.PeekKind() == '}' {
		return "", false, nil
	}
	tok, err := r.d.read('"')
	if err != nil {
		return "", false, err
	}
	return tok.String(), true, nil
}

func (r *objectReader) Value() serdex.Deserializer { return r.d }
func (r *objectReader) SkipValue() error           { return r.d.dec.SkipValue() }

func (r *objectReader) Finish() error {
	_, err := r.d.read('}')
	return err
}

func kindNames(kinds []jsontext.Kind) string {
	var b []byte
	for i, k := range kinds {
		if i > 0 {
			b = append(b, '|')
		}
		b = append(b, k.String()...)
	}
	return string(b)
}
