package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/common/config"
	"certverify/internal/common/database"
	"certverify/internal/common/logger"
)

type memKV struct {
	data map[string]string
	err  error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value.(string)
	return nil
}

func TestCacheRoundTrip(t *testing.T) {
	kv := newMemKV()
	cache := NewResultCache(kv, time.Hour, logger.NewNoOpLogger())
	ctx := context.Background()

	key := cache.Key([]byte("%PDF-1.7 some document"))
	assert.Contains(t, key, cacheKeyPrefix)
	assert.Nil(t, cache.Lookup(ctx, key))

	report := &Report{Unified: UnifiedOutput{Title: "Intro to Networks", Status: StatusVerified}}
	cache.Store(ctx, key, report)

	got := cache.Lookup(ctx, key)
	require.NotNil(t, got)
	assert.True(t, got.Cached)
	assert.Equal(t, "Intro to Networks", got.Unified.Title)
	assert.Equal(t, StatusVerified, got.Unified.Status)
}

func TestCacheWithRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	cache := NewResultCache(client, time.Hour, logger.NewNoOpLogger())
	ctx := context.Background()
	key := cache.Key([]byte("%PDF-1.4 cached"))

	assert.Nil(t, cache.Lookup(ctx, key))

	cache.Store(ctx, key, &Report{Unified: UnifiedOutput{Status: StatusRejected}})
	got := cache.Lookup(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, StatusRejected, got.Unified.Status)
	assert.True(t, got.Cached)

	// Expiry invalidates the entry.
	mr.FastForward(2 * time.Hour)
	assert.Nil(t, cache.Lookup(ctx, key))
}

func TestCacheKeyIsContentAddressed(t *testing.T) {
	cache := NewResultCache(newMemKV(), time.Hour, logger.NewNoOpLogger())
	assert.Equal(t, cache.Key([]byte("same")), cache.Key([]byte("same")))
	assert.NotEqual(t, cache.Key([]byte("one")), cache.Key([]byte("two")))
}

func TestCacheToleratesBackendErrors(t *testing.T) {
	kv := newMemKV()
	kv.err = assert.AnError
	cache := NewResultCache(kv, time.Hour, logger.NewNoOpLogger())
	ctx := context.Background()

	cache.Store(ctx, "k", &Report{})
	assert.Nil(t, cache.Lookup(ctx, "k"))
}

func TestCacheIgnoresCorruptPayload(t *testing.T) {
	kv := newMemKV()
	kv.data["k"] = "{not json"
	cache := NewResultCache(kv, time.Hour, logger.NewNoOpLogger())
	assert.Nil(t, cache.Lookup(context.Background(), "k"))
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *ResultCache
	assert.Nil(t, cache.Lookup(context.Background(), "k"))
	cache.Store(context.Background(), "k", &Report{})
}
