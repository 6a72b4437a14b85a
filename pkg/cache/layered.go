package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts where reads were served from.
type Stats struct {
	MemoryHits uint64
	RedisHits  uint64
	Misses     uint64
}

// LayeredCache reads through a short-lived memory layer in front of Redis.
// Writes go to Redis first; locks are only ever taken in Redis.
type LayeredCache struct {
	mem    *MemoryCache
	redis  *RedisCache
	memTTL time.Duration

	memHits, redisHits, misses atomic.Uint64
}

func NewLayeredCache(rc *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{MemoryMaxSize: 1000, MemoryTTL: 10 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		mem:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis:  rc,
		memTTL: cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		lc.memHits.Add(1)
		return nil
	}

	var raw []byte
	if err := lc.redis.Get(ctx, key, &raw); err != nil {
		lc.misses.Add(1)
		return err
	}
	lc.redisHits.Add(1)
	_ = lc.mem.Set(ctx, key, raw, lc.memTTL)
	return decode(raw, dest)
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := lc.redis.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	l1 := ttl
	if l1 <= 0 || l1 > lc.memTTL {
		l1 = lc.memTTL
	}
	return lc.mem.Set(ctx, key, data, l1)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.redis.Delete(ctx, keys...)
}

func (lc *LayeredCache) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return lc.redis.Acquire(ctx, key, ttl)
}

func (lc *LayeredCache) Release(ctx context.Context, key, token string) error {
	return lc.redis.Release(ctx, key, token)
}

func (lc *LayeredCache) Stats() Stats {
	return Stats{
		MemoryHits: lc.memHits.Load(),
		RedisHits:  lc.redisHits.Load(),
		Misses:     lc.misses.Load(),
	}
}

// Close stops the memory layer and closes Redis.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.redis.Close()
}
