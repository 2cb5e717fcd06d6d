package posts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"backend-numeneon/internal/river"

	"github.com/redis/go-redis/v9"
)

const generationKey = "numeneon:river:gen"

// RiverCache memoizes built rivers. Every post or friendship write bumps a
// global generation number, which retires all earlier entries at once. A nil
// cache or nil client disables caching.
type RiverCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRiverCache(rdb *redis.Client, ttl time.Duration) *RiverCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &RiverCache{rdb: rdb, ttl: ttl}
}

// Key resolves the cache key for scope under the current generation. It
// returns "" when caching is disabled or redis is unreachable. Callers read
// the key before loading so a write that lands mid-load retires the result.
func (c *RiverCache) Key(ctx context.Context, scope string) string {
	if c == nil {
		return ""
	}
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("river cache generation read failed", "scope", scope, "error", err)
		return ""
	}
	return "numeneon:river:" + strconv.FormatInt(gen, 10) + ":" + scope
}

func (c *RiverCache) Get(ctx context.Context, key string) ([]river.AuthorRiver, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("river cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var rivers []river.AuthorRiver
	if err := json.Unmarshal(raw, &rivers); err != nil {
		return nil, false
	}
	return rivers, true
}

func (c *RiverCache) Set(ctx context.Context, key string, rivers []river.AuthorRiver) {
	if c == nil || key == "" {
		return
	}
	raw, err := json.Marshal(rivers)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Warn("river cache write failed", "key", key, "error", err)
	}
}

// Invalidate retires every cached river.
func (c *RiverCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("river cache invalidation failed", "error", err)
	}
}
