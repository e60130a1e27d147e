package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"certverify/internal/common/logger"
)

const cacheKeyPrefix = "certverify:result:"

// KVStore is the slice of the Redis client the cache needs.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// ResultCache memoizes completed reports by the binary hash of the
// document, so re-submitting the identical file skips the whole pipeline.
// Cache errors are logged and ignored; the cache is an optimization, never
// a dependency.
type ResultCache struct {
	store KVStore
	ttl   time.Duration
	log   logger.Logger
}

func NewResultCache(store KVStore, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{store: store, ttl: ttl, log: log}
}

// Key derives the cache key from the document bytes.
func (c *ResultCache) Key(raw []byte) string {
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Lookup returns a previously stored report, or nil on miss or error.
func (c *ResultCache) Lookup(ctx context.Context, key string) *Report {
	if c == nil || c.store == nil {
		return nil
	}
	payload, err := c.store.Get(ctx, key)
	if err != nil || payload == "" {
		return nil
	}
	var report Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		c.log.WithError(err).Warn("cached report is corrupt, ignoring")
		return nil
	}
	report.Cached = true
	return &report
}

// Store records a completed report.
func (c *ResultCache) Store(ctx context.Context, key string, report *Report) {
	if c == nil || c.store == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		c.log.WithError(err).Warn("report not cacheable")
		return
	}
	if err := c.store.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.log.WithError(err).Warn("cache write failed")
	}
}
