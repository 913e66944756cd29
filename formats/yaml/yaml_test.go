package yaml_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goyaml "gopkg.in/yaml.v3"

	"github.com/hengadev/serdex"
	_ "github.com/hengadev/serdex/formats/json"
	"github.com/hengadev/serdex/formats/yaml"
)

type scoreCard struct {
	ID     int    `serde:"id"`
	Name   string `serde:"name"`
	Scores []int  `serde:"scores"`
}

func TestMarshal_FlatRecord(t *testing.T) {
	data, err := yaml.Marshal(struct {
		ID   int    `serde:"id"`
		Name string `serde:"name"`
	}{ID: 7, Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "id: 7\nname: alice\n", string(data))
}

func TestRoundTrip_Record(t *testing.T) {
	card := scoreCard{ID: 7, Name: "alice", Scores: []int{10, 20, 30}}

	data, err := yaml.Marshal(card)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, goyaml.Unmarshal(data, &generic))
	assert.Equal(t, map[string]any{"id": 7, "name": "alice", "scores": []any{10, 20, 30}}, generic)

	var got scoreCard
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, card, got)
}

type level int

const (
	guest level = iota
	admin
)

type profile struct {
	Level    level                        `serde:"level,enum"`
	Initial  serdex.Char                  `serde:"initial"`
	Avatar   []byte                       `serde:"avatar"`
	Nickname *string                      `serde:"nickname"`
	Teams    map[string]struct{}          `serde:"teams"`
	Scores   map[int]string               `serde:"scores"`
	Location serdex.Pair[float64, float64] `serde:"location"`
	Bio      string                       `serde:"bio"`
	Tricky   []string                     `serde:"tricky"`
	Weight   float64                      `serde:"weight"`
}

func TestRoundTrip_AllShapes(t *testing.T) {
	require.NoError(t, serdex.RegisterEnum(map[level]string{guest: "Guest", admin: "Admin"}))

	nick := "al"
	p := profile{
		Level:    admin,
		Initial:  'A',
		Avatar:   []byte{1, 2, 3},
		Nickname: &nick,
		Teams:    map[string]struct{}{"red": {}, "blue": {}},
		Scores:   map[int]string{10: "ten", 2: "two"},
		Location: serdex.Pair[float64, float64]{First: 48.85, Second: 2.35},
		Bio:      "line one\nline two",
		Tricky:   []string{"true", "123", "", "null", "- dash"},
		Weight:   70,
	}

	data, err := yaml.Marshal(p)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "level: admin")
	assert.Contains(t, text, "avatar: !!binary AQID")
	assert.Contains(t, text, "weight: 70.0")

	var got profile
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, p, got)
}

type person struct {
	First string `serde:"first"`
	Age   int    `serde:"age"`
}

func TestUnmarshal_YAMLFeatures(t *testing.T) {
	input := `
base: &b
  first: Ann
  age: 0x1F
copy: *b
extra:
  ignored: [1, 2, {deep: true}]
`
	var got struct {
		Base person `serde:"base"`
		Copy person `serde:"copy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(input), &got))
	assert.Equal(t, person{First: "Ann", Age: 31}, got.Base)
	assert.Equal(t, got.Base, got.Copy)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Run("wrong kind", func(t *testing.T) {
		var got scoreCard
		assert.ErrorIs(t, yaml.Unmarshal([]byte("id: seven\n"), &got), serdex.ErrUnexpectedKind)
	})

	t.Run("overflow", func(t *testing.T) {
		var got struct {
			Small int8 `serde:"small"`
		}
		assert.ErrorIs(t, yaml.Unmarshal([]byte("small: 300\n"), &got), serdex.ErrNotRepresentable)
	})

	t.Run("negative into unsigned", func(t *testing.T) {
		var got uint
		assert.ErrorIs(t, yaml.Unmarshal([]byte("-1"), &got), serdex.ErrNotRepresentable)
	})

	t.Run("syntax", func(t *testing.T) {
		var got scoreCard
		assert.Error(t, yaml.Unmarshal([]byte("id: [1"), &got))
	})
}

func TestFloats(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		text  string
	}{
		{"integral", 2, "2.0\n"},
		{"fraction", 1.25, "1.25\n"},
		{"positive infinity", math.Inf(1), ".inf\n"},
		{"negative infinity", math.Inf(-1), "-.inf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := yaml.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(data))

			var got float64
			require.NoError(t, yaml.Unmarshal(data, &got))
			assert.Equal(t, tt.value, got)
		})
	}
}

type envelope struct {
	Kind  string              `serde:"kind"`
	Extra serdex.DynamicValue `serde:"extra"`
}

func TestDynamicValue_CrossFormat(t *testing.T) {
	extra, err := serdex.DynamicFromJSON([]byte(`{"b":1,"a":[1.5,2]}`))
	require.NoError(t, err)

	data, err := yaml.Marshal(envelope{Kind: "k", Extra: extra})
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, goyaml.Unmarshal(data, &generic))
	assert.Equal(t, map[string]any{"b": 1, "a": []any{1.5, 2}}, generic["extra"])

	var got envelope
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, yaml.FormatName, got.Extra.Format())

	asJSON, err := got.Extra.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":1,"a":[1.5,2]}`, string(asJSON))
}

func TestRegistered(t *testing.T) {
	f, err := serdex.Encode("YML", scoreCard{ID: 1})
	require.NoError(t, err)

	var got scoreCard
	require.NoError(t, serdex.Decode("yaml", f, &got))
	assert.Equal(t, 1, got.ID)
}
