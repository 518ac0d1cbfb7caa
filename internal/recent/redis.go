package recent

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "recent:"

// Redis stores each owner's history as a Redis list under recent:<owner>.
// A non-zero ttl expires the list after that long without an Add.
type Redis struct {
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

func NewRedis(rdb *redis.Client, capacity int, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, limit: capOrDefault(capacity), ttl: ttl}
}

func key(owner string) string {
	return keyPrefix + owner
}

func (r *Redis) Add(ctx context.Context, owner, term string) error {
	term = normalize(term)
	if term == "" {
		return nil
	}
	k := key(owner)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, k, 0, term)
		pipe.LPush(ctx, k, term)
		pipe.LTrim(ctx, k, 0, int64(r.limit-1))
		if r.ttl > 0 {
			pipe.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add recent search: %w", err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, owner, term string) error {
	if err := r.rdb.LRem(ctx, key(owner), 0, normalize(term)).Err(); err != nil {
		return fmt.Errorf("failed to remove recent search: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, owner string) error {
	if err := r.rdb.Del(ctx, key(owner)).Err(); err != nil {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, owner string) ([]string, error) {
	terms, err := r.rdb.LRange(ctx, key(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	return terms, nil
}
