package serdeerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Logical conditions raised by the engine itself
	ErrLiteralMismatch  = errors.New("literal mismatch")
	ErrNotRepresentable = errors.New("value not representable")

	// Type errors
	ErrUnsupportedType  = errors.New("unsupported type")
	ErrAmbiguousShape   = errors.New("ambiguous shape")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrInvalidTarget    = errors.New("invalid deserialization target")

	// Traversal errors
	ErrDepthExceeded    = errors.New("maximum nesting depth exceeded")
	ErrNoVariantMatched = errors.New("no variant alternative matched")
	ErrUnexpectedKind   = errors.New("unexpected value kind")
	ErrUnknownFormat    = errors.New("unknown format")
)

func NewLiteralMismatchError(fieldName, expected, actual string) error {
	return fmt.Errorf("%w: field '%s' expects %q, got %q", ErrLiteralMismatch, fieldName, expected, actual)
}

func NewNotRepresentableError(fieldName, typeName string, action Action, details string) error {
	if details != "" {
		return fmt.Errorf("%w: field '%s' of type %s cannot be handled for %s operation: %s",
			ErrNotRepresentable, fieldName, typeName, action, details)
	}
	return fmt.Errorf("%w: field '%s' of type %s cannot be handled for %s operation",
		ErrNotRepresentable, fieldName, typeName, action)
}

func NewUnsupportedTypeError(typeName string, details string) error {
	if details != "" {
		return fmt.Errorf("%w: %s: %s", ErrUnsupportedType, typeName, details)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, typeName)
}

func NewAmbiguousShapeError(typeName string, candidates []string) error {
	return fmt.Errorf("%w: %s matches %s", ErrAmbiguousShape, typeName, strings.Join(candidates, " and "))
}

func NewInvalidAttributeError(fieldName, attribute string, details string) error {
	return fmt.Errorf("%w: '%s' on field '%s': %s", ErrInvalidAttribute, attribute, fieldName, details)
}

func NewInvalidTargetError(typeName string) error {
	return fmt.Errorf("%w: expected a non-nil pointer, got %s", ErrInvalidTarget, typeName)
}

func NewDepthExceededError(limit int, action Action) error {
	return fmt.Errorf("%w: limit %d reached during %s", ErrDepthExceeded, limit, action)
}

func NewUnexpectedKindError(expected string, actual fmt.Stringer) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedKind, expected, actual)
}

// PathError attaches the field path an error surfaced at.
type PathError struct {
	Path   []string
	Action Action
	Err    error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, strings.Join(e.Path, "."), e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// WithPath prefixes the error's path with segment, creating a PathError if needed.
func WithPath(err error, segment string, action Action) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok {
		pe.Path = append([]string{segment}, pe.Path...)
		return pe
	}
	return &PathError{Path: []string{segment}, Action: action, Err: err}
}
