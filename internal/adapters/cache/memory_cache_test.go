package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	stats := &core.VerdictStats{Harmless: 5, Malicious: 2}
	c.Set("http://x.example/", stats, time.Minute)

	got, ok := c.Get("http://x.example/")
	require.True(t, ok)
	assert.Equal(t, stats, got)

	// The cached value is a copy
	stats.Malicious = 99
	again, _ := c.Get("http://x.example/")
	assert.Equal(t, 2, again.Malicious)

	_, ok = c.Get("http://unknown.example/")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	c.Set("http://x.example/", &core.VerdictStats{Harmless: 1}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("http://x.example/")
	assert.False(t, ok)

	// Cleanup drops the expired entry from the map as well
	require.NoError(t, c.Cleanup(context.Background()))
	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Empty(t, c.entries)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	c.Set("http://x.example/", &core.VerdictStats{Harmless: 1}, time.Minute)
	require.NoError(t, c.Delete(context.Background(), "http://x.example/"))

	_, ok := c.Get("http://x.example/")
	assert.False(t, ok)
}
