package msgpack_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vmsgpack "github.com/vmihailenco/msgpack/v5"

	"github.com/hengadev/serdex"
	_ "github.com/hengadev/serdex/formats/json"
	"github.com/hengadev/serdex/formats/msgpack"
)

type scoreCard struct {
	ID     int    `serde:"id"`
	Name   string `serde:"name"`
	Scores []int  `serde:"scores"`
}

func TestMarshal_Layout(t *testing.T) {
	data, err := msgpack.Marshal(scoreCard{ID: 7, Name: "alice", Scores: []int{10, 20, 30}})
	require.NoError(t, err)

	want := []byte{
		0x83,
		0xa2, 'i', 'd', 0x07,
		0xa4, 'n', 'a', 'm', 'e', 0xa5, 'a', 'l', 'i', 'c', 'e',
		0xa6, 's', 'c', 'o', 'r', 'e', 's', 0x93, 0x0a, 0x14, 0x1e,
	}
	assert.Equal(t, want, data)
}

func TestMarshal_EmptyContainers(t *testing.T) {
	data, err := msgpack.Marshal(scoreCard{})
	require.NoError(t, err)
	assert.Equal(t, byte(0x90), data[len(data)-1])

	var got scoreCard
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, scoreCard{Scores: []int{}}, got)

	data, err = msgpack.Marshal(struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, data)
}

func TestUnmarshal_ForeignEncoder(t *testing.T) {
	data, err := vmsgpack.Marshal(struct {
		Name   string  `msgpack:"name"`
		ID     uint16  `msgpack:"id"`
		Skip   float32 `msgpack:"skip"`
		Scores []int8  `msgpack:"scores"`
	}{Name: "bob", ID: 300, Skip: 1.5, Scores: []int8{-1, 2}})
	require.NoError(t, err)

	var got scoreCard
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, scoreCard{ID: 300, Name: "bob", Scores: []int{-1, 2}}, got)
}

type level int

const (
	guest level = iota
	admin
)

type figure interface{ isFigure() }

type circle struct {
	Kind   string  `serde:"kind,literal=circle"`
	Radius float64 `serde:"radius"`
}

type square struct {
	Kind string  `serde:"kind,literal=square"`
	Side float64 `serde:"side"`
}

func (circle) isFigure() {}
func (square) isFigure() {}

type record struct {
	Flag    bool                         `serde:"flag"`
	Neg     int64                        `serde:"neg"`
	Big     uint64                       `serde:"big"`
	Ratio   float64                      `serde:"ratio"`
	Initial serdex.Char                  `serde:"initial"`
	ID      uuid.UUID                    `serde:"id"`
	Blob    []byte                       `serde:"blob"`
	Maybe   *string                      `serde:"maybe"`
	Seen    map[string]struct{}          `serde:"seen"`
	Counts  map[int]string               `serde:"counts"`
	Point   serdex.Triple[int, int, int] `serde:"point"`
	Level   level                        `serde:"level,enum"`
	Shapes  []figure                     `serde:"shapes"`
	Any     any                          `serde:"any"`
}

func TestRoundTrip_AllShapes(t *testing.T) {
	require.NoError(t, serdex.RegisterEnum(map[level]string{guest: "Guest", admin: "Admin"}))
	require.NoError(t, serdex.RegisterSum[figure](circle{}, square{}))

	r := record{
		Flag:    true,
		Neg:     math.MinInt64,
		Big:     math.MaxUint64,
		Ratio:   -0.25,
		Initial: '€',
		ID:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Blob:    []byte{0, 255},
		Seen:    map[string]struct{}{"x": {}},
		Counts:  map[int]string{-3: "minus three", 40: "forty"},
		Point:   serdex.Triple[int, int, int]{First: 1, Second: 2, Third: 3},
		Level:   admin,
		Shapes:  []figure{square{Kind: "square", Side: 2}, circle{Kind: "circle", Radius: 1}},
		Any:     []any{int64(-5), "s", map[string]any{"nested": true}},
	}

	data, err := msgpack.Marshal(r)
	require.NoError(t, err)

	var got record
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, r, got)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Run("uint64 into int64", func(t *testing.T) {
		data, err := msgpack.Marshal(uint64(math.MaxUint64))
		require.NoError(t, err)

		var got int64
		assert.ErrorIs(t, msgpack.Unmarshal(data, &got), serdex.ErrNotRepresentable)
	})

	t.Run("negative into unsigned", func(t *testing.T) {
		data, err := msgpack.Marshal(-1)
		require.NoError(t, err)

		var got uint32
		assert.ErrorIs(t, msgpack.Unmarshal(data, &got), serdex.ErrNotRepresentable)
	})

	t.Run("wrong kind", func(t *testing.T) {
		data, err := msgpack.Marshal("seven")
		require.NoError(t, err)

		var got int
		assert.ErrorIs(t, msgpack.Unmarshal(data, &got), serdex.ErrUnexpectedKind)
	})

	t.Run("trailing data", func(t *testing.T) {
		var got int
		assert.Error(t, msgpack.Unmarshal([]byte{0x01, 0x02}, &got))
	})

	t.Run("truncated", func(t *testing.T) {
		var got scoreCard
		assert.Error(t, msgpack.Unmarshal([]byte{0x83, 0xa2, 'i'}, &got))
	})

	t.Run("extension type", func(t *testing.T) {
		// fixext1 has no counterpart in the value model.
		ext := []byte{0xd4, 0x01, 0x00}

		kind, err := msgpack.NewDeserializer(bytes.NewReader(ext)).PeekKind()
		assert.Equal(t, serdex.KindInvalid, kind)
		assert.ErrorIs(t, err, serdex.ErrUnexpectedKind)

		var got any
		assert.ErrorIs(t, msgpack.Unmarshal(ext, &got), serdex.ErrUnexpectedKind)
	})
}

type envelope struct {
	Kind  string              `serde:"kind"`
	Extra serdex.DynamicValue `serde:"extra"`
}

func TestDynamicValue(t *testing.T) {
	extra, err := serdex.DynamicFromJSON([]byte(`{"b":1,"a":[1.5,"x",null]}`))
	require.NoError(t, err)

	data, err := msgpack.Marshal(envelope{Kind: "k", Extra: extra})
	require.NoError(t, err)

	var got envelope
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, msgpack.FormatName, got.Extra.Format())

	again, err := msgpack.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	asJSON, err := got.Extra.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[1.5,"x",null]}`, string(asJSON))
}

func TestConvert(t *testing.T) {
	packed, err := serdex.Convert([]byte(`{"id":7,"name":"alice","scores":[10,20,30]}`), "json", "MessagePack")
	require.NoError(t, err)

	var card scoreCard
	require.NoError(t, msgpack.Unmarshal(packed, &card))
	assert.Equal(t, scoreCard{ID: 7, Name: "alice", Scores: []int{10, 20, 30}}, card)

	back, err := serdex.Convert(packed, "msgpack", "json")
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"name":"alice","scores":[10,20,30]}`, string(back))
}

func BenchmarkMarshal(b *testing.B) {
	card := scoreCard{ID: 7, Name: "alice", Scores: []int{10, 20, 30}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := msgpack.Marshal(card); err != nil {
			b.Fatal(err)
		}
	}
}
