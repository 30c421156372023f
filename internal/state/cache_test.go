package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string, int](3)

	c.put("a", 1)
	c.put("b", 2)

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, result)

	_, ok = c.get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, result)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, result)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.get("a")
	c.put("c", 3) // evicts "b", not "a"

	_, ok := c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRUCache_OverwriteKeepsSize(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("a", 10)

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, result)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_UpdateCanDecline(t *testing.T) {
	c := newLRUCache[string, int](2)
	c.put("a", 5)

	stored := c.update("a", func(current int, ok bool) (int, bool) {
		assert.True(t, ok)
		assert.Equal(t, 5, current)
		return 1, false
	})
	assert.False(t, stored)

	result, _ := c.get("a")
	assert.Equal(t, 5, result)
}
