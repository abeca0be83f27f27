// Package cache provides caching decorators for price sources.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/usecase"
)

// CachingSource decorates a Source with a short-lived Redis cache of successful quotes.
// Failures are never cached, and Redis errors fall through to the inner source.
type CachingSource struct {
	inner     usecase.Source
	class     entity.AssetClass
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	resetHour int // >= 0: entries also expire at this hour (JST)
	now       func() time.Time
}

var (
	_ usecase.Source          = (*CachingSource)(nil)
	_ usecase.SymbolValidator = (*CachingSource)(nil)
	_ usecase.SymbolLister    = (*CachingSource)(nil)
)

// NewCachingSource decorates a Source with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "quotes".
func NewCachingSource(rdb *redis.Client, ttl time.Duration, class entity.AssetClass, inner usecase.Source, namespace string) *CachingSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "quotes"
	}
	return &CachingSource{
		inner:     inner,
		class:     class,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		resetHour: -1,
		now:       time.Now,
	}
}

// WithDailyReset makes entries expire no later than the next hour:00 JST.
// Used for prices published once a day, such as fund NAVs.
func (c *CachingSource) WithDailyReset(hour int) *CachingSource {
	c.resetHour = hour
	return c
}

// Fetch returns a cached quote when available, otherwise fetches and stores a successful result.
func (c *CachingSource) Fetch(ctx context.Context, symbol string) entity.FetchOutcome {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Fetch(ctx, symbol)
	}

	key := c.cacheKey(symbol)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var q entity.PriceQuote
		if err := json.Unmarshal(b, &q); err == nil && q.Price.IsPositive() {
			return entity.Success(q)
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the source
	out := c.inner.Fetch(ctx, symbol)
	if !out.OK() {
		return out
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out.Quote); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.expiry()).Err()
	}
	return out
}

// Validate delegates to the inner source when it validates symbols.
func (c *CachingSource) Validate(symbol string) error {
	if v, ok := c.inner.(usecase.SymbolValidator); ok {
		return v.Validate(symbol)
	}
	return nil
}

// Symbols delegates to the inner source when it has a fixed symbol list.
func (c *CachingSource) Symbols() []string {
	if l, ok := c.inner.(usecase.SymbolLister); ok {
		return l.Symbols()
	}
	return nil
}

func (c *CachingSource) expiry() time.Duration {
	if c.resetHour < 0 {
		return c.ttl
	}
	return min(c.ttl, TimeUntilNextJST(c.now(), c.resetHour))
}

// cacheKey generates a cache key for one symbol of this class.
func (c *CachingSource) cacheKey(symbol string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(string(c.class)), safe(symbol))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
