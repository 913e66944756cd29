package attr

import (
	"reflect"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/serdex/internal/naming"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		wantName string
		wantTag  string
	}{
		{"name only", "user_name", "user_name", ""},
		{"dash skips", "-", "", "skip"},
		{"rename and alias", "display_name,rename=displayName,alias=name|handle", "display_name", "rename=displayName,alias=name|handle"},
		{"skip_if", ",skip_if=empty", "", "skip_if=empty"},
		{"omitempty shorthand", "note,omitempty", "note", "skip_if=empty"},
		{"flatten", ",flatten", "", "flatten"},
		{"literal", "kind,literal=v1", "kind", "literal=v1"},
		{"enum default", "level,enum", "level", "enum"},
		{"enum policy", "level,enum=screaming_snake", "level", "enum=screaming_snake"},
		{"enum int", "level,enum=int", "level", "enum=int"},
		{"codec", "created,with=unix", "created", "with=unix"},
		{"whitespace", " id , rename = uid ", "id", "rename=uid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := ParseTag(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, tag.Name)
			assert.Equal(t, tt.wantTag, tag.Attributes.String())
		})
	}
}

func TestParseTag_CollectsErrors(t *testing.T) {
	_, err := ParseTag("id,rename,bogus,skip_if=sometimes,with=nope,flatten=yes")
	require.Error(t, err)

	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 5)
	for _, key := range []string{"rename", "bogus", "skip_if=sometimes", "with=nope", "flatten=yes"} {
		_, found := errs[key]
		assert.True(t, found, "expected key '%s' in errsx.Map", key)
	}
}

func TestPredicates(t *testing.T) {
	var nilPtr *int
	one := 1

	tests := []struct {
		name    string
		value   any
		none    bool
		empty   bool
		isZero  bool
	}{
		{"empty string", "", false, true, true},
		{"string", "x", false, false, false},
		{"nil pointer", nilPtr, true, true, true},
		{"pointer", &one, false, false, false},
		{"nil slice", []int(nil), true, true, true},
		{"empty slice", []int{}, false, true, false},
		{"zero int", 0, false, false, true},
		{"int", 3, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := reflect.ValueOf(tt.value)
			assert.Equal(t, tt.none, IsNone(v), "none")
			assert.Equal(t, tt.empty, IsEmpty(v), "empty")
			assert.Equal(t, tt.isZero, IsDefault(v), "default")
		})
	}
}

type recordingAttr struct {
	name string
	log  *[]string
}

func (r recordingAttr) AttributeName() string { return r.name }

func (r recordingAttr) SerializeField(ctx SerializeFieldContext, next func(SerializeFieldContext) error) error {
	*r.log = append(*r.log, r.name+":"+ctx.Name)
	return next(ctx)
}

func TestChain_SerializeFieldOrder(t *testing.T) {
	var log []string
	chain := Chain{
		recordingAttr{name: "first", log: &log},
		Rename{Name: "uid"},
		recordingAttr{name: "second", log: &log},
	}

	var written string
	err := chain.SerializeField(SerializeFieldContext{Name: "id"}, func(ctx SerializeFieldContext) error {
		written = ctx.Name
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:id", "second:uid"}, log)
	assert.Equal(t, "uid", written)
}

func TestChain_EarlierAttributeSuppressesLater(t *testing.T) {
	var log []string
	chain := Chain{
		SkipIf{Name: "empty", Predicate: IsEmpty},
		recordingAttr{name: "after", log: &log},
	}

	called := false
	err := chain.SerializeField(SerializeFieldContext{Name: "note", Value: reflect.ValueOf("")},
		func(SerializeFieldContext) error {
			called = true
			return nil
		})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Empty(t, log)

	err = chain.SerializeField(SerializeFieldContext{Name: "note", Value: reflect.ValueOf("x")},
		func(SerializeFieldContext) error {
			called = true
			return nil
		})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{"after:note"}, log)
}

func TestChain_Probe(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		key   string
		want  Decision
	}{
		{"declared name", nil, "display_name", MatchDeferred},
		{"other key", nil, "nope", NoMatch},
		{"rename replaces declared", Chain{Rename{Name: "displayName"}}, "display_name", NoMatch},
		{"rename matches", Chain{Rename{Name: "displayName"}}, "displayName", MatchDeferred},
		{"alias", Chain{Rename{Name: "displayName"}, Alias{Names: []string{"name"}}}, "name", MatchDeferred},
		{"skip never matches", Chain{Skip{}}, "display_name", NoMatch},
		{"skip_if does not affect input", Chain{SkipIf{Name: "empty", Predicate: IsEmpty}}, "display_name", MatchDeferred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chain.ProbeField(ProbeContext{Key: tt.key, Name: "display_name"}, DefaultProbe)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type level int

func TestEnumString_MapName(t *testing.T) {
	require.NoError(t, RegisterEnum(reflect.TypeFor[level](), map[int64]string{0: "Guest", 1: "SuperUser"}))

	tests := []struct {
		name string
		attr EnumString
		cfg  naming.Config
		want string
	}{
		{"default lower camel", EnumString{}, naming.Config{}, "superUser"},
		{"global policy", EnumString{}, naming.FromPolicies(naming.Identity, naming.ScreamingSnake), "SUPER_USER"},
		{"attribute wins", EnumString{Policy: naming.Kebab}, naming.FromPolicies(naming.Identity, naming.ScreamingSnake), "super-user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.attr.encode("level", reflect.ValueOf(level(1)), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EnumString{}.encode("level", reflect.ValueOf(level(9)), naming.Config{})
	assert.Error(t, err)
}

func TestRegisterFieldAttributes(t *testing.T) {
	type payload struct {
		ID   int
		Note string
	}
	typ := reflect.TypeFor[payload]()

	require.NoError(t, RegisterFieldAttributes(typ, "Note", Rename{Name: "n"}))
	assert.Equal(t, "rename=n", FieldAttributes(typ, "Note").String())
	assert.Empty(t, FieldAttributes(typ, "ID"))

	assert.Error(t, RegisterFieldAttributes(typ, "Missing", Skip{}))
	assert.Error(t, RegisterFieldAttributes(reflect.TypeFor[int](), "X", Skip{}))
}
