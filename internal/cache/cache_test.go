package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheServesCachedValueWithinTTL(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithClock[int](5*time.Minute, func() time.Time { return now })

	fills := 0
	fill := func() (int, error) {
		fills++
		return fills, nil
	}

	first, err := c.Get(fill)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	now = now.Add(4 * time.Minute)

	second, err := c.Get(fill)
	require.NoError(t, err)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, fills)
}

func TestTTLCacheRefillsAfterExpiry(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithClock[int](5*time.Minute, func() time.Time { return now })

	fills := 0
	fill := func() (int, error) {
		fills++
		return fills, nil
	}

	_, err := c.Get(fill)
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)

	refreshed, err := c.Get(fill)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed)
}

func TestTTLCacheInvalidateDropsValue(t *testing.T) {
	c := NewTTLCache[string](time.Hour)

	fills := 0
	fill := func() (string, error) {
		fills++
		return "value", nil
	}

	_, err := c.Get(fill)
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.Get(fill)
	require.NoError(t, err)
	assert.Equal(t, 2, fills)
}

func TestTTLCachePropagatesFillError(t *testing.T) {
	c := NewTTLCache[int](time.Hour)

	fillErr := errors.New("source unavailable")
	_, err := c.Get(func() (int, error) { return 0, fillErr })
	assert.ErrorIs(t, err, fillErr)

	// A later successful fill still works.
	value, err := c.Get(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, value)
}
