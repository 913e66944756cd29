package attr

import (
	"fmt"
	"strings"

	"github.com/hengadev/errsx"

	"github.com/hengadev/serdex/internal/naming"
)

// TagName is the struct tag key read by the engine.
const TagName = "serde"

// Tag is a parsed serde struct tag.
type Tag struct {
	// Name is the declared name; empty means the Go field name.
	Name       string
	Attributes Chain
}

// ParseTag parses `name,attr,attr=arg,...`. Every malformed segment is
// reported, keyed by the segment text.
func ParseTag(tag string) (Tag, error) {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return Tag{Attributes: Chain{Skip{}}}, nil
	}

	parts := strings.Split(tag, ",")
	parsed := Tag{Name: strings.TrimSpace(parts[0])}

	errs := make(errsx.Map)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, arg, hasArg := strings.Cut(part, "=")
		a, err := ParseAttribute(strings.TrimSpace(key), strings.TrimSpace(arg), hasArg)
		if err != nil {
			errs.Set(part, err)
			continue
		}
		parsed.Attributes = append(parsed.Attributes, a)
	}
	return parsed, errs.AsError()
}

// ParseAttribute builds one attribute from its tag form.
func ParseAttribute(key, arg string, hasArg bool) (Attribute, error) {
	requireArg := func() error {
		if !hasArg || arg == "" {
			return fmt.Errorf("'%s' requires a value, e.g. %s=<value>", key, key)
		}
		return nil
	}
	rejectArg := func() error {
		if hasArg {
			return fmt.Errorf("'%s' does not take a value", key)
		}
		return nil
	}

	switch key {
	case NameSkip:
		if err := rejectArg(); err != nil {
			return nil, err
		}
		return Skip{}, nil
	case NameSkipIf:
		if err := requireArg(); err != nil {
			return nil, err
		}
		p, ok := LookupPredicate(arg)
		if !ok {
			return nil, fmt.Errorf("unknown predicate '%s'", arg)
		}
		return SkipIf{Name: arg, Predicate: p}, nil
	case "omitempty":
		if err := rejectArg(); err != nil {
			return nil, err
		}
		return SkipIf{Name: "empty", Predicate: IsEmpty}, nil
	case NameRename:
		if err := requireArg(); err != nil {
			return nil, err
		}
		return Rename{Name: arg}, nil
	case NameAlias:
		if err := requireArg(); err != nil {
			return nil, err
		}
		var names []string
		for _, n := range strings.Split(arg, "|") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("'%s' requires at least one name", key)
		}
		return Alias{Names: names}, nil
	case NameFlatten:
		if err := rejectArg(); err != nil {
			return nil, err
		}
		return Flatten{}, nil
	case NameLiteral:
		if !hasArg {
			return nil, fmt.Errorf("'%s' requires a value, e.g. %s=v1", key, key)
		}
		return Literal{Text: arg}, nil
	case NameEnumString:
		if !hasArg || arg == "" {
			return EnumString{}, nil
		}
		if arg == "int" {
			return EnumString{Integer: true}, nil
		}
		p, err := naming.ParsePolicy(arg)
		if err != nil {
			return nil, err
		}
		return EnumString{Policy: p}, nil
	case NameWith:
		if err := requireArg(); err != nil {
			return nil, err
		}
		c, ok := LookupCodec(arg)
		if !ok {
			return nil, fmt.Errorf("unknown codec '%s'", arg)
		}
		return With{Name: arg, Codec: c}, nil
	default:
		return nil, fmt.Errorf("unknown attribute '%s'", key)
	}
}
