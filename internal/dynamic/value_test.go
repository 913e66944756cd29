package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/serdex/internal/backend"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"a":1.50,"b":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, "json", v.Format())
	assert.Equal(t, `{"a":1.50,"b":[1,2]}`, string(v.Bytes()))

	_, err = FromJSON([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestFromRaw_CopiesInput(t *testing.T) {
	data := []byte(`[1,2,3]`)
	v := FromRaw(backend.RawValue{Format: "json", Data: data})
	data[1] = '9'
	assert.Equal(t, `[1,2,3]`, string(v.Raw().Data))
}

func TestValue_CopyOnWrite(t *testing.T) {
	original, err := FromJSON([]byte(`{"name":"alice","score":1.50}`))
	require.NoError(t, err)

	copied := original
	assert.True(t, copied.Shares(original))

	require.NoError(t, copied.Set("name", "bob"))
	assert.False(t, copied.Shares(original))

	assert.Equal(t, `{"name":"alice","score":1.50}`, string(original.Bytes()))
	assert.Equal(t, `{"name":"bob","score":1.50}`, string(copied.Bytes()))
}

func TestValue_GetSetDelete(t *testing.T) {
	v, err := FromJSON([]byte(`{"user":{"id":7,"tags":["a"]}}`))
	require.NoError(t, err)

	id, err := v.Get("user.id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Int())

	require.NoError(t, v.SetRaw("user.extra", []byte(`{"x":true}`)))
	require.NoError(t, v.Set("user.tags.-1", "b"))
	require.NoError(t, v.Delete("user.id"))

	assert.Equal(t, `{"user":{"tags":["a","b"],"extra":{"x":true}}}`, v.String())

	assert.Error(t, v.SetRaw("user.bad", []byte(`{`)))
}

func TestValue_Zero(t *testing.T) {
	var v Value
	assert.True(t, v.IsZero())
	assert.Equal(t, "null", v.String())

	require.NoError(t, v.Set("a", 1))
	assert.False(t, v.IsZero())
	assert.Equal(t, `{"a":1}`, v.String())
}
