package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheStats counts lookups per layer
type CacheStats struct {
	L1Hits int64 `json:"l1Hits"`
	L2Hits int64 `json:"l2Hits"`
	Misses int64 `json:"misses"`
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MultiLayerCache keeps serialized values in memory (L1) and, when a redis
// client is configured, in redis (L2). Values are opaque bytes.
type MultiLayerCache struct {
	logger    *zap.Logger
	l2        redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	items map[string]entry

	statsMu sync.Mutex
	stats   CacheStats
}

// MultiLayerCacheConfig holds configuration for the cache
type MultiLayerCacheConfig struct {
	RedisClient redis.Cmdable // optional
	KeyPrefix   string
	TTL         time.Duration
}

// NewMultiLayerCache creates a new multi-layer cache instance
func NewMultiLayerCache(cfg MultiLayerCacheConfig, logger *zap.Logger) *MultiLayerCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &MultiLayerCache{
		logger:    logger.Named("cache.multilayer"),
		l2:        cfg.RedisClient,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		now:       time.Now,
		items:     make(map[string]entry),
	}
}

// Get returns the cached bytes for key, promoting L2 hits into L1
func (c *MultiLayerCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		c.count(func(s *CacheStats) { s.L1Hits++ })
		return e.data, true
	}

	if c.l2 != nil {
		data, err := c.l2.Get(ctx, c.keyPrefix+key).Bytes()
		switch {
		case err == nil:
			c.setL1(key, data)
			c.count(func(s *CacheStats) { s.L2Hits++ })
			return data, true
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("failed to read L2 cache", zap.String("key", key), zap.Error(err))
		}
	}

	c.count(func(s *CacheStats) { s.Misses++ })
	return nil, false
}

// Set stores data in both layers
func (c *MultiLayerCache) Set(ctx context.Context, key string, data []byte) error {
	c.setL1(key, data)
	if c.l2 == nil {
		return nil
	}
	return c.l2.Set(ctx, c.keyPrefix+key, data, c.ttl).Err()
}

// Delete removes key from both layers
func (c *MultiLayerCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	if c.l2 == nil {
		return nil
	}
	return c.l2.Del(ctx, c.keyPrefix+key).Err()
}

// GetStats returns a snapshot of the lookup counters
func (c *MultiLayerCache) GetStats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *MultiLayerCache) setL1(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = entry{data: data, expiresAt: now.Add(c.ttl)}
}

func (c *MultiLayerCache) count(fn func(*CacheStats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}
