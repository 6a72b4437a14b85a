package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	data     []byte
	expireAt time.Time
	lastUsed time.Time
}

// MemoryCache is a bounded in-process Service with LRU eviction.
// It backs single-instance deployments and the L1 layer of LayeredCache.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: time.Minute,
		DefaultTTL:      time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries:    make(map[string]*entry, cfg.MaxSize),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
		ticker:     time.NewTicker(cfg.CleanupInterval),
		done:       make(chan struct{}),
	}
	go mc.sweepLoop()
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.lookup(key)
	if !ok {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	mc.store(key, data, ttl)
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e, ok := mc.entries[key]; ok && mc.now().Before(e.expireAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	mc.store(key, []byte(token), ttl)
	return token, true, nil
}

func (mc *MemoryCache) Release(_ context.Context, key, token string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok || !mc.now().Before(e.expireAt) {
		return nil
	}
	if string(e.data) != token {
		return ErrNotOwner
	}
	delete(mc.entries, key)
	return nil
}

// Len reports live and not yet swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.entries)
}

func (mc *MemoryCache) lookup(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok {
		return nil, false
	}
	now := mc.now()
	if !now.Before(e.expireAt) {
		delete(mc.entries, key)
		return nil, false
	}
	e.lastUsed = now
	return e.data, true
}

// store must be called with mu held.
func (mc *MemoryCache) store(key string, data []byte, ttl time.Duration) {
	if _, ok := mc.entries[key]; !ok && len(mc.entries) >= mc.maxSize {
		mc.evictOldest()
	}
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}
	now := mc.now()
	mc.entries[key] = &entry{data: data, expireAt: now.Add(ttl), lastUsed: now}
}

func (mc *MemoryCache) evictOldest() {
	var victim string
	var oldest time.Time
	for k, e := range mc.entries {
		if victim == "" || e.lastUsed.Before(oldest) {
			victim, oldest = k, e.lastUsed
		}
	}
	if victim != "" {
		delete(mc.entries, victim)
	}
}

func (mc *MemoryCache) sweepLoop() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for k, e := range mc.entries {
				if !now.Before(e.expireAt) {
					delete(mc.entries, k)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// Close stops the sweeper.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() {
		mc.ticker.Stop()
		close(mc.done)
	})
	return nil
}
