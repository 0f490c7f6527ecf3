package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries as JSON strings, for clients that share a cache
// across processes.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCache keeps entries for retention (0 keeps them until overwritten).
// retention should exceed the freshness TTL, or stale fallback is lost.
func NewRedisCache(client *redis.Client, retention time.Duration) *RedisCache {
	return &RedisCache{client: client, retention: retention}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// A corrupt entry is a miss; the next success overwrites it.
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.retention).Err()
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	pattern := escapeGlob(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
