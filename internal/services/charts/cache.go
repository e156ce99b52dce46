package charts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores rendered chart payloads in Redis for a short TTL. Chart
// endpoints re-render from full collection scans, so even a brief TTL
// absorbs most of the load. A nil *Cache is valid and disabled, which keeps
// callers free of configuration branches.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache connects to Redis at url. Only a malformed URL is an error;
// connectivity problems surface per-operation and the cache degrades to a
// pass-through.
func NewCache(url string, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Cache{client: redis.NewClient(opts), ttl: ttl, logger: logger}, nil
}

// Enabled reports whether a cache is configured
func (c *Cache) Enabled() bool {
	return c != nil
}

// Get returns the cached payload for key, or nil on miss or error
func (c *Cache) Get(ctx context.Context, key string) []byte {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("chart_cache_get_failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return data
}

// Set stores payload under key for the configured TTL. Failures are logged
// and dropped; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("chart_cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping verifies connectivity for health checks
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the client
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
