// Package rediscache implements the weather cache on Redis so multiple
// service replicas share one expiry window per coordinate bucket.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marrowdrift/road-risk-service/internal/domain"
)

const keyPrefix = "weather:"

// Cache is a Redis-backed serving.WeatherCache.
type Cache struct {
	client *redis.Client
	expiry time.Duration
	logger *slog.Logger
}

// New parses a redis:// URL and returns a connected cache.
func New(redisURL string, expiry time.Duration, logger *slog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &Cache{
		client: redis.NewClient(opts),
		expiry: expiry,
		logger: logger,
	}, nil
}

// Ping verifies connectivity, used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns a cached snapshot. Redis errors read as misses; the
// decorated provider then refetches from upstream.
func (c *Cache) Get(ctx context.Context, key string) (domain.WeatherSnapshot, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", slog.String("key", key), slog.Any("error", err))
		}
		return domain.WeatherSnapshot{}, false
	}
	var snap domain.WeatherSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("corrupt weather cache entry", slog.String("key", key), slog.Any("error", err))
		return domain.WeatherSnapshot{}, false
	}
	return snap, true
}

// Set stores a snapshot under the configured expiry.
func (c *Cache) Set(ctx context.Context, key string, snap domain.WeatherSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling weather snapshot: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.expiry).Err(); err != nil {
		return fmt.Errorf("writing weather cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
