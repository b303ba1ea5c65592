package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a time-boxed in-memory memoization layer keyed by query shape.
// It is advisory: there is no invalidation hook, so staleness is bounded only
// by the TTL. Concurrent misses for the same key may each recompute.
type Cache struct {
	ttl     time.Duration
	entries map[string]entry
	mu      sync.RWMutex
	done    chan struct{}
	once    sync.Once
}

// New creates a cache with the given TTL and starts a background sweep that
// evicts expired entries.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get returns the cached value for key and whether it was present and fresh.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for one TTL window.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}
