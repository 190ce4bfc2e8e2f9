package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ga2230/reefscout/internal/model"
)

// RedisCache keeps ratings snapshots in Redis under scout:epa:<year>.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps client; snapshots expire after ttl (0 keeps them forever).
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and returns a connected client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func cacheKey(year int) string {
	return fmt.Sprintf("scout:epa:%d", year)
}

// Load returns the cached snapshot, ok=false when none exists.
func (c *RedisCache) Load(ctx context.Context, year int) (model.Ratings, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(year)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var r model.Ratings
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached ratings: %w", err)
	}
	return r, true, nil
}

// Store writes a snapshot with the configured TTL.
func (c *RedisCache) Store(ctx context.Context, year int, r model.Ratings) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(year), raw, c.ttl).Err()
}
