package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stats() map[string]any
	Health(ctx context.Context) error
	Close() error
}

type MultiLevelConfig struct {
	L1MaxEntries   int
	L1TTL          time.Duration
	CircuitBreaker *CircuitBreakerConfig
}

func DefaultMultiLevelConfig() MultiLevelConfig {
	return MultiLevelConfig{
		L1MaxEntries:   defaultMaxEntries,
		L1TTL:          time.Minute,
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// MultiLevelCache reads through an in-process L1 to an optional shared L2.
// L2 calls go through a circuit breaker so a dead redis costs one timeout
// per breaker window instead of one per request.
//
// A pattern delete that does not reach L2 stays pending and is replayed
// before any later L2 call; until it succeeds L2 is not read or written.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      Cache
	l1TTL   time.Duration
	breaker *CircuitBreaker
	metrics *CacheMetrics

	pendingMu  sync.Mutex
	pending    map[string]uint64
	pendingSeq uint64
}

func NewMultiLevelCache(l2 Cache, config MultiLevelConfig) *MultiLevelCache {
	if config.L1TTL <= 0 {
		config.L1TTL = time.Minute
	}
	return &MultiLevelCache{
		l1:      NewMemoryCache(config.L1MaxEntries),
		l2:      l2,
		l1TTL:   config.L1TTL,
		breaker: NewCircuitBreaker(config.CircuitBreaker),
		metrics: NewCacheMetrics(),
		pending: make(map[string]uint64),
	}
}

// Set writes L1 with the shorter of ttl and the L1 TTL, then L2 with ttl.
func (c *MultiLevelCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.localTTL(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	return c.remote(ctx, func() error { return c.l2.Set(ctx, key, value, ttl) })
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest any) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}
	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	miss := false
	err := c.remote(ctx, func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	switch {
	case err != nil:
		return err
	case miss:
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	_ = c.l1.Set(ctx, key, dest, c.l1TTL)
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = c.l1.Delete(ctx, key)
	c.metrics.RecordDelete()
	return c.remote(ctx, func() error { return c.l2.Delete(ctx, key) })
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) error {
	if err := c.l1.DeletePattern(ctx, pattern); err != nil {
		return err
	}
	c.metrics.RecordDelete()
	if c.l2 == nil {
		return nil
	}

	c.pendingMu.Lock()
	c.pendingSeq++
	c.pending[pattern] = c.pendingSeq
	c.pendingMu.Unlock()

	// The replay inside remote performs the delete.
	return c.remote(ctx, func() error { return nil })
}

// PendingInvalidations lists pattern deletes still owed to L2.
func (c *MultiLevelCache) PendingInvalidations() []string {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	patterns := make([]string, 0, len(c.pending))
	for p := range c.pending {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

func (c *MultiLevelCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := c.l1.Exists(ctx, key); ok {
		return true, nil
	}
	if c.l2 == nil {
		return false, nil
	}
	var found bool
	err := c.remote(ctx, func() error {
		var err error
		found, err = c.l2.Exists(ctx, key)
		return err
	})
	return found, err
}

func (c *MultiLevelCache) Stats() map[string]any {
	stats := map[string]any{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
		"breaker": c.breaker.GetStats(),
		"pending": c.PendingInvalidations(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

// Health reports the L2 backend; an L1-only cache is always healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}

func (c *MultiLevelCache) Metrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) remote(ctx context.Context, fn func() error) error {
	if c.l2 == nil {
		return nil
	}
	err := c.breaker.Execute(func() error {
		if err := c.replayPending(ctx); err != nil {
			return err
		}
		return fn()
	})
	if err != nil {
		c.metrics.RecordError()
		if errors.Is(err, ErrCircuitBreakerOpen) {
			return ErrCacheDown
		}
	}
	return err
}

// replayPending retries owed pattern deletes, stopping at the first
// failure. A pattern re-queued while its delete ran stays pending.
func (c *MultiLevelCache) replayPending(ctx context.Context) error {
	c.pendingMu.Lock()
	owed := make(map[string]uint64, len(c.pending))
	for p, seq := range c.pending {
		owed[p] = seq
	}
	c.pendingMu.Unlock()

	for pattern, seq := range owed {
		if err := c.l2.DeletePattern(ctx, pattern); err != nil {
			return err
		}
		c.pendingMu.Lock()
		if c.pending[pattern] == seq {
			delete(c.pending, pattern)
		}
		c.pendingMu.Unlock()
	}
	return nil
}

func (c *MultiLevelCache) localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}
