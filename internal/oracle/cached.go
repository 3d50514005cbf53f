package oracle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ppiankov/originality/internal/cache"
)

// Cached remembers verdicts so a unit repeated within a document is queried once.
// Errors are never cached.
type Cached struct {
	inner Oracle
	cache cache.Cache
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner with the given cache
func NewCached(inner Oracle, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Check returns the cached verdict for text or asks the wrapped oracle
func (c *Cached) Check(ctx context.Context, text string) (bool, error) {
	key := cache.Key(text)

	if raw, found := c.cache.Get(key); found {
		if plagiarised, ok := cache.DecodeVerdict(raw); ok {
			c.hits.Add(1)
			return plagiarised, nil
		}
		_ = c.cache.Delete(key)
	}

	c.misses.Add(1)
	plagiarised, err := c.inner.Check(ctx, text)
	if err != nil {
		return false, err
	}

	_ = c.cache.Set(key, cache.EncodeVerdict(plagiarised), c.ttl)
	return plagiarised, nil
}

// Stats returns the number of cache hits and misses so far
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
