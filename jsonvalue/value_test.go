package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAndTo(t *testing.T) {
	type profile struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	v, err := From(profile{Name: "ash", Age: 3})
	require.NoError(t, err)
	assert.True(t, v.IsObject())
	assert.Equal(t, "ash", v.ObjectFields()["name"].String())
	assert.Equal(t, float64(3), v.ObjectFields()["age"].Number())

	var out profile
	require.NoError(t, v.To(&out))
	assert.Equal(t, profile{Name: "ash", Age: 3}, out)
}

func TestFromIdempotentOnValue(t *testing.T) {
	v := Object(map[string]Value{"x": Number(1)})
	v2, err := From(v)
	require.NoError(t, err)
	assert.True(t, Equal(v, v2))
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	v := Object(map[string]Value{
		"list": Array(Number(1), String("two"), Bool(true), Null),
	})
	buf, err := v.MarshalJSON()
	require.NoError(t, err)

	var round Value
	require.NoError(t, round.UnmarshalJSON(buf))
	assert.True(t, Equal(v, round))
}

func TestAbsentMarshalsNullButIsDistinctInProcess(t *testing.T) {
	assert.False(t, Equal(Absent, Null))
	assert.True(t, Equal(NormalizeAbsent(Absent), Null))

	buf, err := Absent.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(buf))
}

func TestArrayItemsDefensiveCopy(t *testing.T) {
	v := Array(Number(1), Number(2))
	items := v.ArrayItems()
	items[0] = Number(99)
	assert.Equal(t, float64(1), v.ArrayItems()[0].Number())
}

func TestCloneIsIndependent(t *testing.T) {
	v := Object(map[string]Value{"a": Array(Number(1))})
	clone := v.Clone()
	assert.True(t, Equal(v, clone))

	clone.m["a"].a[0] = Number(2)
	assert.Equal(t, float64(1), v.m["a"].a[0].Number())
}

func TestSortedKeys(t *testing.T) {
	v := Object(map[string]Value{"b": Null, "a": Null, "c": Null})
	assert.Equal(t, []string{"a", "b", "c"}, v.SortedKeys())
}
