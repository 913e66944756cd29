// Package serdex is an attribute-driven structural serialization engine.
//
// Go values are classified into a small set of shapes (scalar, text, bytes,
// optional, sum, sequence, set, mapping, tuple, record and dynamic) and walked
// against a format-agnostic backend contract. Formats live in their own
// packages (formats/json, formats/yaml, formats/msgpack) and register
// themselves on import, so the engine itself never depends on a wire format.
//
// # Key Features
//
//   - One engine for every format: a backend implements Serializer and Deserializer
//   - Field attributes composed as an ordered hook chain
//   - Global naming policies with scoped, panic-safe overrides
//   - Tolerant input: unknown keys are skipped, absent fields keep their values
//   - Dynamic values captured verbatim and re-emitted without decoding
//   - Format-to-format transcoding without an intermediate tree
//
// # Quick Start
//
//	type User struct {
//	    ID     int    `serde:"id"`
//	    Name   string `serde:"name"`
//	    Scores []int  `serde:"scores"`
//	}
//
//	data, err := json.Marshal(User{ID: 7, Name: "alice", Scores: []int{10, 20, 30}})
//	// {"id":7,"name":"alice","scores":[10,20,30]}
//
//	var u User
//	err = json.Unmarshal(data, &u)
//
// # Struct Tags
//
// The serde tag holds the declared name followed by attributes:
//   - serde:"-" or serde:",skip" - field is never written or read
//   - serde:",skip_if=empty" - omitted on output when empty (also none, default, zero)
//   - serde:",rename=uid" - written and read under uid, ignoring naming policies
//   - serde:",alias=name|login" - additional accepted input keys
//   - serde:",flatten" - nested record fields are merged into the parent
//   - serde:",literal=v1" - always writes v1 and requires it on input
//   - serde:",enum" - registered integer enum written as its name
//   - serde:",with=unix" - value handed to a registered codec
//
// Attributes run left to right and an earlier attribute may suppress later
// ones. Embedded structs without a tag name are flattened.
//
// # Naming
//
// A process-wide field policy applies to every declared name before
// per-field overrides:
//
//	defer serdex.ScopedNaming(serdex.Policies(serdex.LowerCamel, ""))()
//
// Per call, WithFieldRename or WithNaming take precedence, and a
// configuration attached with ContextWithNaming is used for calls given
// WithContext.
//
// # Error Handling
//
// Errors wrap sentinels (ErrLiteralMismatch, ErrNotRepresentable,
// ErrUnsupportedType, ...) and carry the field path; use errors.Is,
// ErrorPath, IsValidationError and IsConfigurationError.
package serdex
