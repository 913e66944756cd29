package serdex

import (
	"context"

	"github.com/hengadev/serdex/internal/naming"
)

// NamingPolicy is a built-in naming scheme.
type NamingPolicy = naming.Policy

const (
	Identity       = naming.Identity
	LowerCamel     = naming.LowerCamel
	UpperCamel     = naming.UpperCamel
	Snake          = naming.Snake
	ScreamingSnake = naming.ScreamingSnake
	Kebab          = naming.Kebab
)

// NamingConfig holds the field and enum name transforms.
type NamingConfig = naming.Config

// NameTransform maps a name; isSerialize is false for the inverse direction.
type NameTransform = naming.Transform

// ParseNamingPolicy accepts policy names such as "camel", "snake" or "kebab".
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	return naming.ParsePolicy(s)
}

// Policies builds a NamingConfig from built-in policies.
func Policies(field, enum NamingPolicy) NamingConfig {
	return naming.FromPolicies(field, enum)
}

// CurrentNaming returns the process-wide naming configuration.
func CurrentNaming() NamingConfig { return naming.Current() }

// SetNaming replaces the process-wide naming configuration.
func SetNaming(cfg NamingConfig) { naming.Set(cfg) }

// ResetNaming clears both process-wide transforms.
func ResetNaming() { naming.Reset() }

// SetFieldRename changes only the process-wide field policy.
func SetFieldRename(p NamingPolicy) {
	cfg := naming.Current()
	cfg.FieldRename = p.Transform()
	naming.Set(cfg)
}

// SetEnumRename changes only the process-wide enum policy.
func SetEnumRename(p NamingPolicy) {
	cfg := naming.Current()
	cfg.EnumRename = p.Transform()
	naming.Set(cfg)
}

// ScopedNaming installs cfg process-wide until restore is called. Use it
// with defer:
//
//	defer serdex.ScopedNaming(serdex.Policies(serdex.LowerCamel, ""))()
func ScopedNaming(cfg NamingConfig) (restore func()) {
	return naming.Scoped(cfg)
}

// WithNamingScope runs fn with cfg installed and restores the previous
// configuration on every exit path, panics included.
func WithNamingScope(cfg NamingConfig, fn func() error) error {
	return naming.WithScope(cfg, fn)
}

// ContextWithNaming attaches cfg to ctx. Operations given the context
// through WithContext use it instead of the process-wide value.
func ContextWithNaming(ctx context.Context, cfg NamingConfig) context.Context {
	return naming.WithContext(ctx, cfg)
}
