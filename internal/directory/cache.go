package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "splitledger:profile:"

// CachedDirectory keeps resolved profiles in Redis for ttl. Redis failures are
// logged and the lookup falls through to the wrapped directory.
type CachedDirectory struct {
	next   Directory
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next Directory, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Resolve serves cached profiles and resolves the rest through the wrapped directory.
func (c *CachedDirectory) Resolve(ctx context.Context, ids []string) (map[string]Profile, error) {
	ids = dedupe(ids)
	out := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}

	var misses []string
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Profile cache read failed", "error", err)
		misses = ids
	} else {
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var p Profile
			if err := json.Unmarshal([]byte(s), &p); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			out[ids[i]] = p
		}
	}

	if len(misses) == 0 {
		return out, nil
	}

	resolved, err := c.next.Resolve(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for id, p := range resolved {
		out[id] = p
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, keyPrefix+id, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Profile cache write failed", "error", err)
	}

	return out, nil
}

// Invalidate drops cached profiles, e.g. after a user registers under an ID
// that was previously cached as unknown.
func (c *CachedDirectory) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	return c.client.Del(ctx, keys...).Err()
}
