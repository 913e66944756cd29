package serdex

import (
	"fmt"
	"sync/atomic"

	"github.com/hengadev/serdex/internal/naming"
)

var defaultMaxDepth atomic.Int64

func init() {
	defaultMaxDepth.Store(DefaultMaxDepth)
}

// Config holds process-wide defaults.
//
// Configuration can be loaded from the environment (LoadConfigFromEnvironment),
// from a YAML file (LoadConfigFile) or built in code, then installed with Apply.
//
// Example usage:
//
//	cfg := serdex.Config{
//	    FieldRename: serdex.LowerCamel,
//	    MaxDepth:    128,
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Apply()
type Config struct {
	// FieldRename is applied to every record field name before per-field
	// overrides. Empty keeps declared names.
	FieldRename NamingPolicy `yaml:"field_rename,omitempty"`

	// EnumRename maps enum value names for EnumString. Empty means lower camel case.
	EnumRename NamingPolicy `yaml:"enum_rename,omitempty"`

	// MaxDepth bounds recursion. Default: 512
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// Validate checks the policies and applies defaults to optional fields.
func (c *Config) Validate() error {
	if c.FieldRename != "" && !c.FieldRename.IsValid() {
		return fmt.Errorf("%w: unknown field naming policy '%s'", ErrInvalidConfiguration, c.FieldRename)
	}
	if c.EnumRename != "" && !c.EnumRename.IsValid() {
		return fmt.Errorf("%w: unknown enum naming policy '%s'", ErrInvalidConfiguration, c.EnumRename)
	}
	if c.MaxDepth < 0 || c.MaxDepth > MaxAllowedDepth {
		return fmt.Errorf("%w: max depth must be between 1 and %d, got %d", ErrInvalidConfiguration, MaxAllowedDepth, c.MaxDepth)
	}

	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return nil
}

// Naming returns the naming configuration described by c.
func (c Config) Naming() NamingConfig {
	return naming.FromPolicies(c.FieldRename, c.EnumRename)
}

// Apply installs c as the process-wide default. It does not validate.
func (c Config) Apply() {
	naming.Set(c.Naming())
	depth := c.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	defaultMaxDepth.Store(int64(depth))
}
