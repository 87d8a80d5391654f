package code

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/geometry"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Empty(), "Empty"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Int(-4), "-4"},
		{Float(2), "2.0"},
		{Float(0.25), "0.25"},
		{Text("door"), "door"},
		{Int2(1, 2), "(1, 2)"},
		{Position(geometry.V3(1, 0.5, 2)), "(1.0, 0.5, 2.0)"},
		{List(Int(1), Int(2)), "List (2)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.Describe())
	}
}

func TestArithmetic(t *testing.T) {
	r, ok := Int(2).Add(Int(3))
	require.True(t, ok)
	assert.Equal(t, Int(5), r)

	r, ok = Int(7).Div(Int(2))
	require.True(t, ok)
	assert.Equal(t, Int(3), r)

	r, ok = Int(1).Add(Float(0.5))
	require.True(t, ok)
	assert.Equal(t, Float(1.5), r)

	r, ok = Text("a").Add(Int(2))
	require.True(t, ok)
	assert.Equal(t, Text("a 2"), r)

	r, ok = Position(geometry.V3(1, 2, 3)).Mul(Int(2))
	require.True(t, ok)
	assert.Equal(t, Position(geometry.V3(2, 4, 6)), r)

	r, ok = Int2(4, 6).Div(Int(2))
	require.True(t, ok)
	assert.Equal(t, Int2(2, 3), r)

	r, ok = Int2(1, 1).Add(Float(0.5))
	require.True(t, ok)
	assert.Equal(t, Float2(1.5, 1.5), r)

	_, ok = Int(1).Div(Int(0))
	assert.False(t, ok)
	_, ok = Int(1).Mod(Int(0))
	assert.False(t, ok)
	_, ok = Bool(true).Add(Int(1))
	assert.False(t, ok)
	_, ok = Int2(1, 1).Add(Int3(1, 1, 1))
	assert.False(t, ok)
}

func TestCompareValues(t *testing.T) {
	assert.True(t, Int(2).IsEqual(Float(2)))
	assert.False(t, Int(2).IsEqual(Text("2")))
	assert.True(t, List(Int(1), Text("x")).IsEqual(List(Float(1), Text("x"))))

	assert.True(t, Int(3).Test(GreaterThan, Float(2.5)))
	assert.True(t, Text("apple").Test(LessThan, Text("banana")))
	assert.False(t, Text("3").Test(GreaterThan, Int(1)))
	assert.True(t, Bool(true).Test(Unequal, Bool(false)))
	assert.True(t, Int(4).Test(LessThanOrEqual, Int(4)))
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewObject("inner")
	inner.Set("hp", Int(10))
	orig := List(ObjectValue(inner), Int(1))

	c := orig.Clone()
	items, _ := c.AsList()
	obj, ok := items[0].AsObject()
	require.True(t, ok)
	obj.Set("hp", Int(0))

	v, _ := inner.Get("hp")
	assert.Equal(t, Int(10), v)
}

func TestValueJSON(t *testing.T) {
	obj := NewObject("stats")
	obj.Set("hp", Int(10))
	obj.Set("tags", TextList([]string{"a", "b"}))
	obj.Set("pos", Position(geometry.V3(1, 2, 3)))
	obj.Set("owner", ID(uuid.New()))

	orig := List(ObjectValue(obj), Float(0.5), Text("x"), Empty(), Int3(1, 2, 3))
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got Value
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, orig.IsEqual(got), string(data))

	var bad Value
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"matrix"}`), &bad))
}
