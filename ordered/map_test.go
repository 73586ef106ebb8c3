package ordered

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := New[int]()
	m.Set("zeta", 1)
	m.Set("alpha", 2)
	m.Set("zeta", 3)

	assert.Equal(t, []string{"zeta", "alpha"}, m.Keys())
	assert.Equal(t, []int{3, 2}, m.Values())
	v, ok := m.Get("zeta")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMapNilIsEmpty(t *testing.T) {
	var m *Map[string]
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	_, ok := m.Get("x")
	assert.False(t, ok)
}

func TestGetOrInit(t *testing.T) {
	m := New[*Map[float64]]()
	inner := m.GetOrInit("NoAug", New[float64])
	inner.Set("female", 0.1)

	again := m.GetOrInit("NoAug", New[float64])
	assert.Same(t, inner, again)
	assert.Equal(t, 1, m.Len())
}

func TestRangeStops(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	m.Range(func(k string, _ int) bool {
		seen = append(seen, k)
		return k != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMarshalJSONOrder(t *testing.T) {
	outer := New[*Map[float64]]()
	outer.GetOrInit("Whisper", New[float64]).Set("young", 0.25)
	outer.GetOrInit("Whisper", New[float64]).Set("old", 0.5)
	outer.GetOrInit("NoAug", New[float64]).Set("young", 1)

	b, err := json.Marshal(outer)
	require.NoError(t, err)
	assert.Equal(t, `{"Whisper":{"young":0.25,"old":0.5},"NoAug":{"young":1}}`, string(b))
}

func TestMarshalYAMLOrder(t *testing.T) {
	m := New[[]float64]()
	m.Set("b", []float64{1})
	m.Set("a", []float64{2, 3})

	b, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "b:\n    - 1\na:\n    - 2\n    - 3\n", string(b))
}
