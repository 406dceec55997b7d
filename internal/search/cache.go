package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"JournalSearch/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// ResultCache is a read-through Redis cache for search results. A cache
// failure is never fatal: lookups fall back to a live search and writes are
// best-effort.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewResultCache creates a ResultCache with the given TTL.
func NewResultCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *ResultCache {
	return &ResultCache{client: client, ttl: ttl, log: log}
}

// Key derives the cache key for one search invocation. The reference date
// participates at date precision because relative phrases ("last week")
// resolve differently on different days.
func (c *ResultCache) Key(rawText string, ref time.Time, topK int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", rawText, ref.Format("2006-01-02"), topK)))
	return "search:" + hex.EncodeToString(sum[:])
}

// Get returns the cached results for key, or ok=false on miss or error.
func (c *ResultCache) Get(ctx context.Context, key string) ([]Result, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("Result cache lookup failed, falling back to live search.")
		}
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal(payload, &results); err != nil {
		c.log.WithError(err).Warn("Result cache entry is corrupt, ignoring.")
		return nil, false
	}
	return results, true
}

// Set stores results under key, best-effort.
func (c *ResultCache) Set(ctx context.Context, key string, results []Result) {
	payload, err := json.Marshal(results)
	if err != nil {
		c.log.WithError(err).Warn("Failed to serialize results for caching.")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Failed to store results in cache.")
	}
}
