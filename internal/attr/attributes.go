package attr

import (
	"reflect"
	"slices"
	"strings"

	"github.com/hengadev/serdex/internal/serdeerr"
)

const (
	NameSkip       = "skip"
	NameSkipIf     = "skip_if"
	NameRename     = "rename"
	NameAlias      = "alias"
	NameFlatten    = "flatten"
	NameLiteral    = "literal"
	NameEnumString = "enum"
	NameWith       = "with"
)

// Skip removes the field from both directions.
type Skip struct{}

func (Skip) AttributeName() string { return NameSkip }

func (Skip) SerializeField(SerializeFieldContext, func(SerializeFieldContext) error) error {
	return nil
}

func (Skip) ProbeField(ProbeContext, func(ProbeContext) (Decision, error)) (Decision, error) {
	return NoMatch, nil
}

func (Skip) SerializeValue(SerializeValueContext, func(SerializeValueContext) error) error {
	return serdeerr.NewInvalidAttributeError("<value>", NameSkip, "only valid on record fields")
}

func (Skip) DeserializeValue(DeserializeValueContext, func(DeserializeValueContext) error) error {
	return serdeerr.NewInvalidAttributeError("<value>", NameSkip, "only valid on record fields")
}

// SkipIf omits the field on output when Predicate reports true. Input is
// unaffected.
type SkipIf struct {
	Name      string
	Predicate Predicate
}

func (SkipIf) AttributeName() string { return NameSkipIf }

func (a SkipIf) SerializeField(ctx SerializeFieldContext, next func(SerializeFieldContext) error) error {
	if a.Predicate(ctx.Value) {
		return nil
	}
	return next(ctx)
}

// Rename replaces the mapped field name outright.
type Rename struct {
	Name string
}

func (Rename) AttributeName() string { return NameRename }

func (a Rename) SerializeField(ctx SerializeFieldContext, next func(SerializeFieldContext) error) error {
	ctx.Name = a.Name
	return next(ctx)
}

func (a Rename) ProbeField(ctx ProbeContext, next func(ProbeContext) (Decision, error)) (Decision, error) {
	ctx.Name = a.Name
	return next(ctx)
}

// Alias accepts additional input keys for the field.
type Alias struct {
	Names []string
}

func (Alias) AttributeName() string { return NameAlias }

func (a Alias) ProbeField(ctx ProbeContext, next func(ProbeContext) (Decision, error)) (Decision, error) {
	if slices.Contains(a.Names, ctx.Key) {
		ctx.AliasMatched = true
	}
	return next(ctx)
}

// Flatten merges a nested record's fields into the parent.
type Flatten struct{}

func (Flatten) AttributeName() string { return NameFlatten }

func (Flatten) SerializeField(ctx SerializeFieldContext, _ func(SerializeFieldContext) error) error {
	return ctx.Engine.SerializeFlattened(ctx.Writer, ctx.Value)
}

func (Flatten) ProbeField(ctx ProbeContext, _ func(ProbeContext) (Decision, error)) (Decision, error) {
	return ctx.Engine.ProbeFlattened(ctx)
}

func (Flatten) SerializeValue(SerializeValueContext, func(SerializeValueContext) error) error {
	return serdeerr.NewInvalidAttributeError("<value>", NameFlatten, "only valid on record fields")
}

func (Flatten) DeserializeValue(DeserializeValueContext, func(DeserializeValueContext) error) error {
	return serdeerr.NewInvalidAttributeError("<value>", NameFlatten, "only valid on record fields")
}

// Literal always writes Text and requires it on input.
type Literal struct {
	Text string
}

func (Literal) AttributeName() string { return NameLiteral }

func (a Literal) SerializeField(ctx SerializeFieldContext, _ func(SerializeFieldContext) error) error {
	s, err := ctx.Writer.Field(ctx.Name)
	if err != nil {
		return err
	}
	return s.SerializeStr(a.Text)
}

func (a Literal) ConsumeField(ctx ConsumeContext, _ func(ConsumeContext) error) error {
	return a.read(ctx.Field, ctx.Deserializer.DeserializeStr, ctx.Value)
}

func (a Literal) SerializeValue(ctx SerializeValueContext, _ func(SerializeValueContext) error) error {
	return ctx.Serializer.SerializeStr(a.Text)
}

func (a Literal) DeserializeValue(ctx DeserializeValueContext, _ func(DeserializeValueContext) error) error {
	return a.read("<value>", ctx.Deserializer.DeserializeStr, ctx.Value)
}

func (a Literal) read(field string, readStr func() (string, error), v reflect.Value) error {
	got, err := readStr()
	if err != nil {
		return err
	}
	if got != a.Text {
		return serdeerr.NewLiteralMismatchError(field, a.Text, got)
	}
	if v.IsValid() && v.CanSet() && v.Kind() == reflect.String {
		v.SetString(got)
	}
	return nil
}

// With hands the value to a custom codec.
type With struct {
	Name  string
	Codec Codec
}

func (With) AttributeName() string { return NameWith }

func (a With) SerializeField(ctx SerializeFieldContext, _ func(SerializeFieldContext) error) error {
	s, err := ctx.Writer.Field(ctx.Name)
	if err != nil {
		return err
	}
	return a.Codec.Encode(s, ctx.Value)
}

func (a With) ConsumeField(ctx ConsumeContext, _ func(ConsumeContext) error) error {
	return a.Codec.Decode(ctx.Deserializer, ctx.Value)
}

func (a With) SerializeValue(ctx SerializeValueContext, _ func(SerializeValueContext) error) error {
	return a.Codec.Encode(ctx.Serializer, ctx.Value)
}

func (a With) DeserializeValue(ctx DeserializeValueContext, _ func(DeserializeValueContext) error) error {
	return a.Codec.Decode(ctx.Deserializer, ctx.Value)
}

// String renders the chain in tag syntax, mostly for diagnostics.
func (c Chain) String() string {
	parts := make([]string, 0, len(c))
	for _, a := range c {
		switch v := a.(type) {
		case SkipIf:
			parts = append(parts, NameSkipIf+"="+v.Name)
		case Rename:
			parts = append(parts, NameRename+"="+v.Name)
		case Alias:
			parts = append(parts, NameAlias+"="+strings.Join(v.Names, "|"))
		case Literal:
			parts = append(parts, NameLiteral+"="+v.Text)
		case EnumString:
			parts = append(parts, v.tagString())
		case With:
			parts = append(parts, NameWith+"="+v.Name)
		default:
			parts = append(parts, a.AttributeName())
		}
	}
	return strings.Join(parts, ",")
}
