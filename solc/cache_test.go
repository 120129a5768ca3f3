package solc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "artifacts.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheMissThenHit(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Get("deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put("deadbeef", []byte(`{"contracts":{}}`)))

	data, ok, err := cache.Get("deadbeef")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"contracts":{}}`), data)
}

func TestCachePutReplaces(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.Put("k", []byte("old")))
	require.NoError(t, cache.Put("k", []byte("new")))

	data, ok, err := cache.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), data)
}

func TestCacheKey(t *testing.T) {
	source := []byte("contract C {}")
	key := CacheKey(source, "0.8.24", []string{"--optimize"})

	// Stable for identical inputs
	assert.Equal(t, key, CacheKey(source, "0.8.24", []string{"--optimize"}))

	// Every input component changes the address
	assert.NotEqual(t, key, CacheKey([]byte("contract D {}"), "0.8.24", []string{"--optimize"}))
	assert.NotEqual(t, key, CacheKey(source, "0.8.25", []string{"--optimize"}))
	assert.NotEqual(t, key, CacheKey(source, "0.8.24", nil))
	assert.Len(t, key, 64)
}
