package backend

import (
	"errors"
	"strconv"
	"strings"
)

// ErrRawFormat is returned by SerializeRaw when the captured format cannot be
// appended verbatim.
var ErrRawFormat = errors.New("raw value format not supported by backend")

// RawValue is a captured subtree in its backend-native encoding.
type RawValue struct {
	Format string
	Data   []byte
}

func (r RawValue) IsZero() bool { return r.Format == "" && len(r.Data) == 0 }

// Number is the textual form of a number as read from the input.
type Number string

// IsInteger reports whether the number has no fraction or exponent.
func (n Number) IsInteger() bool {
	return n != "" && !strings.ContainsAny(string(n), ".eE") && n != "NaN" && !strings.Contains(string(n), "Inf")
}

func (n Number) IsNegative() bool { return strings.HasPrefix(string(n), "-") }

func (n Number) Int64() (int64, error)     { return strconv.ParseInt(string(n), 10, 64) }
func (n Number) Uint64() (uint64, error)   { return strconv.ParseUint(string(n), 10, 64) }
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }
func (n Number) String() string            { return string(n) }
