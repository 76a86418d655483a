package serving

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/observability"
)

// WeatherCache stores weather snapshots per coordinate bucket for the
// configured expiry window. Implementations must be safe for concurrent
// use.
type WeatherCache interface {
	Get(ctx context.Context, key string) (domain.WeatherSnapshot, bool)
	Set(ctx context.Context, key string, snap domain.WeatherSnapshot) error
}

// CacheKey buckets coordinates to two decimal places, roughly one
// kilometer, so nearby requests share a cache entry.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f_%.2f", lat, lon)
}

type memoryEntry struct {
	snap    domain.WeatherSnapshot
	expires time.Time
}

// MemoryWeatherCache is the in-process WeatherCache backend.
type MemoryWeatherCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	expiry  time.Duration
	clock   clockwork.Clock
}

func NewMemoryWeatherCache(expiry time.Duration, clock clockwork.Clock) *MemoryWeatherCache {
	return &MemoryWeatherCache{
		entries: make(map[string]memoryEntry),
		expiry:  expiry,
		clock:   clock,
	}
}

// Get returns a cached snapshot. An expired entry reads as a miss and is
// dropped.
func (c *MemoryWeatherCache) Get(_ context.Context, key string) (domain.WeatherSnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.WeatherSnapshot{}, false
	}
	if c.clock.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return domain.WeatherSnapshot{}, false
	}
	return entry.snap, true
}

func (c *MemoryWeatherCache) Set(_ context.Context, key string, snap domain.WeatherSnapshot) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{snap: snap, expires: c.clock.Now().Add(c.expiry)}
	c.mu.Unlock()
	return nil
}

// CachedWeatherProvider decorates a WeatherProvider with a WeatherCache.
// Cache write failures are logged and otherwise ignored; a broken cache
// backend must not take down scoring.
type CachedWeatherProvider struct {
	inner   domain.WeatherProvider
	cache   WeatherCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewCachedWeatherProvider(inner domain.WeatherProvider, cache WeatherCache, logger *slog.Logger, metrics *observability.Metrics) *CachedWeatherProvider {
	return &CachedWeatherProvider{inner: inner, cache: cache, logger: logger, metrics: metrics}
}

func (p *CachedWeatherProvider) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	key := CacheKey(lat, lon)
	if snap, ok := p.cache.Get(ctx, key); ok {
		p.metrics.WeatherCacheLookups.WithLabelValues("hit").Inc()
		return snap, nil
	}
	p.metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()

	snap, err := p.inner.CurrentWeather(ctx, lat, lon)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	if err := p.cache.Set(ctx, key, snap); err != nil {
		p.logger.Warn("weather cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return snap, nil
}
