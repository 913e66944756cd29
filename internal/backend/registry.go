package backend

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hengadev/serdex/internal/serdeerr"
)

// Format describes a registered backend.
type Format struct {
	// Name is the identifier stored in RawValue.Format.
	Name string
	// Aliases are extra names accepted by ParseFormat, e.g. "yml".
	Aliases []string
	// NewDeserializer positions a deserializer at the single value in data.
	NewDeserializer func(data []byte) (Deserializer, error)
	// Encode runs fn against a fresh serializer and returns the encoded bytes.
	Encode func(fn func(s Serializer) error) ([]byte, error)
}

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]Format)
	aliases   = make(map[string]string)
)

// RegisterFormat makes a backend available by name. It panics on an
// incomplete descriptor or a duplicate name, like database/sql.Register.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if f.Name == "" || f.NewDeserializer == nil || f.Encode == nil {
		panic("backend: RegisterFormat called with incomplete format")
	}
	if _, dup := formats[f.Name]; dup {
		panic("backend: RegisterFormat called twice for format " + f.Name)
	}
	formats[f.Name] = f
	for _, alias := range f.Aliases {
		aliases[alias] = f.Name
	}
}

// LookupFormat returns the backend registered under name or one of its aliases.
func LookupFormat(name string) (Format, error) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: '%s' (is the backend package imported?)", serdeerr.ErrUnknownFormat, name)
	}
	return f, nil
}

// ParseFormat normalizes user input and validates it against the registry.
func ParseFormat(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	f, err := LookupFormat(name)
	if err != nil {
		return "", fmt.Errorf("invalid format '%s': must be one of [%s]", s, strings.Join(Formats(), ", "))
	}
	return f.Name, nil
}

// Formats lists registered format names in sorted order.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decoder returns a deserializer over a raw value using its registered format.
func Decoder(raw RawValue) (Deserializer, error) {
	f, err := LookupFormat(raw.Format)
	if err != nil {
		return nil, err
	}
	return f.NewDeserializer(raw.Data)
}

// Convert re-encodes a raw value into another registered format.
func Convert(raw RawValue, to string) (RawValue, error) {
	if raw.Format == to {
		return raw, nil
	}
	target, err := LookupFormat(to)
	if err != nil {
		return RawValue{}, err
	}
	d, err := Decoder(raw)
	if err != nil {
		return RawValue{}, err
	}
	data, err := target.Encode(func(s Serializer) error {
		return Transcode(d, s)
	})
	if err != nil {
		return RawValue{}, fmt.Errorf("convert %s to %s: %w", raw.Format, target.Name, err)
	}
	return RawValue{Format: target.Name, Data: data}, nil
}
