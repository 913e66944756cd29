package serdex

import (
	"errors"

	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/serdeerr"
)

var (
	// Logical conditions raised by the engine
	ErrLiteralMismatch  = serdeerr.ErrLiteralMismatch
	ErrNotRepresentable = serdeerr.ErrNotRepresentable

	// Type errors, reported the first time a type is used
	ErrUnsupportedType  = serdeerr.ErrUnsupportedType
	ErrAmbiguousShape   = serdeerr.ErrAmbiguousShape
	ErrInvalidAttribute = serdeerr.ErrInvalidAttribute
	ErrInvalidTarget    = serdeerr.ErrInvalidTarget

	// Traversal errors
	ErrDepthExceeded    = serdeerr.ErrDepthExceeded
	ErrNoVariantMatched = serdeerr.ErrNoVariantMatched
	ErrUnexpectedKind   = serdeerr.ErrUnexpectedKind

	// Backend errors
	ErrUnknownFormat = serdeerr.ErrUnknownFormat
	ErrRawFormat     = backend.ErrRawFormat

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// PathError carries the field path and action an error surfaced at.
type PathError = serdeerr.PathError

// Action names the traversal phase an error happened in.
type Action = serdeerr.Action

const (
	ActionSerialize   = serdeerr.Serialize
	ActionDeserialize = serdeerr.Deserialize
	ActionProbe       = serdeerr.Probe
	ActionConsume     = serdeerr.Consume
)

// ErrorPath returns the dotted field path recorded on err, if any.
func ErrorPath(err error) []string {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Path
	}
	return nil
}

// IsValidationError returns true if the input did not fit the target type.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrLiteralMismatch) ||
		errors.Is(err, ErrNotRepresentable) ||
		errors.Is(err, ErrNoVariantMatched) ||
		errors.Is(err, ErrUnexpectedKind) ||
		errors.Is(err, ErrDepthExceeded)
}

// IsConfigurationError returns true if the error comes from a type
// declaration, a registration or the library configuration rather than the data.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrAmbiguousShape) ||
		errors.Is(err, ErrInvalidAttribute) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrUnknownFormat)
}
