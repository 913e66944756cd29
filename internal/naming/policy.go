package naming

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// Policy is a built-in naming scheme.
type Policy string

const (
	Identity       Policy = "identity"
	LowerCamel     Policy = "lower_camel"
	UpperCamel     Policy = "upper_camel"
	Snake          Policy = "snake"
	ScreamingSnake Policy = "screaming_snake"
	Kebab          Policy = "kebab"
)

// IsValid checks if the policy is one of the built-in schemes.
func (p Policy) IsValid() bool {
	switch p {
	case Identity, LowerCamel, UpperCamel, Snake, ScreamingSnake, Kebab:
		return true
	default:
		return false
	}
}

func (p Policy) String() string { return string(p) }

// Apply converts a declared name when isSerialize is true. With isSerialize
// false it maps a wire name back to snake case and so assumes the declared
// spellings are snake_case; Identity returns the name unchanged. The engine
// only calls the serialize direction: it matches incoming keys against
// transformed declared names.
func (p Policy) Apply(isSerialize bool, name string) string {
	if !isSerialize {
		if p == Identity {
			return name
		}
		return strcase.ToSnake(name)
	}
	switch p {
	case LowerCamel:
		return strcase.ToLowerCamel(name)
	case UpperCamel:
		return strcase.ToCamel(name)
	case Snake:
		return strcase.ToSnake(name)
	case ScreamingSnake:
		return strcase.ToScreamingSnake(name)
	case Kebab:
		return strcase.ToKebab(name)
	default:
		return name
	}
}

// Transform returns the policy as a Transform.
func (p Policy) Transform() Transform {
	if p == Identity || p == "" {
		return nil
	}
	return p.Apply
}

// ParsePolicy parses a policy name. Dashes and case are ignored so
// "lower-camel" and "LowerCamel" are both accepted.
func ParsePolicy(s string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "", "none":
		return Identity, nil
	case "lowercamel", "camel":
		return LowerCamel, nil
	case "uppercamel", "pascal":
		return UpperCamel, nil
	case "screamingsnake":
		return ScreamingSnake, nil
	}
	p := Policy(normalized)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid naming policy '%s': must be one of [%s]", s, strings.Join(policyNames(), ", "))
	}
	return p, nil
}

// AllPolicies returns the built-in policies.
func AllPolicies() []Policy {
	return []Policy{Identity, LowerCamel, UpperCamel, Snake, ScreamingSnake, Kebab}
}

func policyNames() []string {
	names := make([]string, 0, 6)
	for _, p := range AllPolicies() {
		names = append(names, string(p))
	}
	return names
}
