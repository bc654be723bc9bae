package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Run("it should iterate in insertion order", func(t *testing.T) {
		// GIVEN
		m := NewMap[string, int]()

		// WHEN
		m.Put("c", 1)
		m.Put("a", 2)
		m.Put("b", 3)

		// THEN
		assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
		assert.Equal(t, []int{1, 2, 3}, m.Values())
		assert.Equal(t, 3, m.Len())
	})

	t.Run("it should keep the position of a replaced key", func(t *testing.T) {
		// GIVEN
		m := NewMap[string, int]()
		m.Put("a", 1)
		m.Put("b", 2)

		// WHEN
		m.Put("a", 3)

		// THEN
		assert.Equal(t, []string{"a", "b"}, m.Keys())
		value, found := m.Get("a")
		assert.True(t, found)
		assert.Equal(t, 3, value)
	})

	t.Run("it should report missing keys", func(t *testing.T) {
		// GIVEN
		m := NewMap[string, int]()

		// WHEN
		_, found := m.Get("missing")

		// THEN
		assert.False(t, found)
		assert.False(t, m.Contains("missing"))
		assert.Empty(t, m.Values())
	})
}

func TestSet(t *testing.T) {
	t.Run("it should ignore duplicates and keep the first position", func(t *testing.T) {
		// GIVEN
		s := NewSet("fn", "gfn")

		// WHEN
		s.Add("fn")
		s.Add("agfn")

		// THEN
		assert.Equal(t, []string{"fn", "gfn", "agfn"}, s.Values())
		assert.True(t, s.Contains("gfn"))
		assert.Equal(t, 3, s.Len())
	})
}
