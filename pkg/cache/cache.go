package cache

import (
	"sync"
	"time"
)

// Memory is a TTL keyed cache. The market maker uses it for CLOB market
// metadata (tick size, neg-risk flag, fee rate) that is stable for the life
// of a daily market but should not be trusted forever.
type Memory[K comparable, V any] struct {
	items      map[K]item[V]
	mu         sync.RWMutex
	defaultTTL time.Duration
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// New builds a cache with the given default TTL. A janitor goroutine evicts
// expired entries once a minute.
func New[K comparable, V any](defaultTTL time.Duration) *Memory[K, V] {
	c := &Memory[K, V]{
		items:      make(map[K]item[V]),
		defaultTTL: defaultTTL,
	}
	go c.janitor()
	return c
}

func (c *Memory[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores a value. A zero ttl uses the cache default.
func (c *Memory[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *Memory[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Memory[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Memory[K, V]) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, it := range c.items {
			if now.After(it.expiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
