package serdex

// Environment variable names
const (
	// EnvFieldRename selects the naming policy applied to record field names.
	// Example: "lower_camel"
	EnvFieldRename = "SERDEX_FIELD_RENAME"

	// EnvEnumRename selects the naming policy applied to enum value names.
	EnvEnumRename = "SERDEX_ENUM_RENAME"

	// EnvMaxDepth overrides the recursion limit of a traversal.
	// Default: 512
	EnvMaxDepth = "SERDEX_MAX_DEPTH"
)

// Default values
const (
	// DefaultMaxDepth is the default recursion limit.
	DefaultMaxDepth = 512

	// MaxAllowedDepth caps configured limits so a traversal cannot exhaust the stack.
	MaxAllowedDepth = 1 << 16
)
