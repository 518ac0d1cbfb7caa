package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// TotalCounter reports the size of the whole catalog.
type TotalCounter interface {
	Total(ctx context.Context) (int64, error)
	// Invalidate drops any cached value; called after catalog writes.
	Invalidate(ctx context.Context) error
}

// Counter counts the catalog.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StoreTotal asks the store on every call. Each call is a full count.
type StoreTotal struct {
	counter Counter
}

func NewStoreTotal(counter Counter) *StoreTotal {
	return &StoreTotal{counter: counter}
}

func (s *StoreTotal) Total(ctx context.Context) (int64, error) {
	return s.counter.Count(ctx)
}

func (s *StoreTotal) Invalidate(context.Context) error { return nil }

const totalKey = "catalog:total"

// CachedTotal keeps the catalog count in Redis until it is invalidated or expires.
// Redis failures fall back to counting through the store.
type CachedTotal struct {
	counter Counter
	rdb     *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

func NewCachedTotal(counter Counter, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedTotal {
	return &CachedTotal{
		counter: counter,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger.With("component", "catalog_total"),
	}
}

func (c *CachedTotal) Total(ctx context.Context) (int64, error) {
	cached, err := c.rdb.Get(ctx, totalKey).Result()
	switch {
	case err == nil:
		if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			return n, nil
		}
		c.logger.WarnContext(ctx, "Discarding malformed cached catalog total", "value", cached)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "Catalog total cache unavailable", "error", err)
		return c.counter.Count(ctx)
	}

	n, err := c.counter.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, totalKey, n, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to cache catalog total", "error", err)
	}
	return n, nil
}

func (c *CachedTotal) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, totalKey).Err()
}
