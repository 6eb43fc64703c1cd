package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string](4)

	v, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.False(t, c.IsValid("nope"))
	assert.Equal(t, 0, c.Len())
}

func TestSetThenGet(t *testing.T) {
	c := New[int](4)

	c.Set("answer", 42, 0)
	v, ok := c.Get("answer")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, c.IsValid("answer"))
}

func TestOverwriteReplacesValue(t *testing.T) {
	c := New[int](4)

	c.Set("k", 1, 0)
	c.Set("k", 2, 0)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestNoTTLNeverExpires(t *testing.T) {
	c := New[int](4)

	c.Set("y", 5, 0)
	time.Sleep(60 * time.Millisecond)

	v, ok := c.Get("y")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestLazyExpirationOnGet(t *testing.T) {
	c := New[map[string]int](4)

	c.Set("x", map[string]int{"n": 1}, 20*time.Millisecond)

	v, ok := c.Get("x")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"n": 1}, v)

	time.Sleep(60 * time.Millisecond)

	_, ok = c.Get("x")
	assert.False(t, ok)
	assert.False(t, c.IsValid("x"))
	assert.Equal(t, 0, c.Len(), "expired read must remove the entry")
}

func TestLazyExpirationOnIsValid(t *testing.T) {
	c := New[int](4)

	c.Set("x", 1, 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.False(t, c.IsValid("x"))
	assert.Equal(t, 0, c.Len(), "IsValid must remove the expired entry")
}

func TestExpiredKeyFreesCapacity(t *testing.T) {
	c := New[int](2)

	c.Set("short", 1, 20*time.Millisecond)
	c.Set("keep", 2, 0)
	time.Sleep(60 * time.Millisecond)

	// Reading the expired key removes it, so the next insert must not evict.
	_, ok := c.Get("short")
	require.False(t, ok)
	require.Equal(t, 1, c.Len())

	c.Set("new", 3, 0)
	_, ok = c.Get("keep")
	assert.True(t, ok, "no eviction expected after the expired slot was freed")
	assert.Equal(t, 2, c.Len())
}

func TestFIFOEvictsOldestInsertion(t *testing.T) {
	c := New[int](2)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	_, ok := c.Get("a")
	assert.False(t, ok, "a was inserted earliest and must be evicted")

	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 2, c.Len())
}

func TestFIFOIgnoresReads(t *testing.T) {
	c := New[int](2)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	// Touching a does not save it: FIFO evicts by insertion, not recency.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3, 0)
	_, ok = c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestFIFOOverwriteCountsAsFreshInsertion(t *testing.T) {
	c := New[int](2)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("a", 10, 0) // restamps a, b is now the oldest
	c.Set("c", 3, 0)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestLRUEviction(t *testing.T) {
	c := New[string](2, WithPolicy(EvictLRU))

	c.Set("a", "A", 0)
	c.Set("b", "B", 0)

	// Touch a so b becomes least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", "C", 0)

	_, ok = c.Get("b")
	assert.False(t, ok, "expected b to be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok, "expected a to remain")
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestEvictionRemovesExactlyOne(t *testing.T) {
	c := New[int](3)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)
	c.Set("d", 4, 0)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	c := New[int](2)

	c.Set("a", 1, 0)
	c.Delete("missing")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestDeleteRemovesEntry(t *testing.T) {
	c := New[int](2)

	c.Set("a", 1, 0)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New[int](4)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())

	// The cache stays usable after Clear.
	c.Set("c", 3, 0)
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestKeysInEvictionOrder(t *testing.T) {
	c := New[int](4)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}

func TestUnboundedCapacity(t *testing.T) {
	c := New[int](0)

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	assert.Equal(t, 100, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	const capacity = 32
	c := New[int](capacity)

	var wg conc.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Go(func() {
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%64)
				switch i % 3 {
				case 0:
					c.Set(key, i, 10*time.Millisecond)
				case 1:
					c.Get(key)
				default:
					c.Delete(key)
				}
			}
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), capacity)
}
