package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates requests against a per-endpoint budget.
type Limiter interface {
	Allow() bool
	Wait(ctx context.Context) error
	Remaining() int
}

// TokenBucket refills at a fixed rate up to a capacity. Used for the order
// endpoints, which have burst allowances.
type TokenBucket struct {
	capacity   int
	refillRate int // tokens per second

	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     capacity,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	add := int(now.Sub(tb.lastRefill).Seconds()) * tb.refillRate
	if add > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+add)
		tb.lastRefill = now
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		wait := time.Second
		if tb.refillRate > 0 {
			wait = time.Second / time.Duration(tb.refillRate)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// SlidingWindow caps the number of requests inside a rolling window. Used for
// the data endpoints, which publish flat per-window limits.
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	requests []time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{limit: limit, window: window}
}

func (sw *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-sw.window)
	keep := sw.requests[:0]
	for _, t := range sw.requests {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	sw.requests = keep
}

func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	now := time.Now()
	sw.prune(now)
	if len(sw.requests) >= sw.limit {
		return false
	}
	sw.requests = append(sw.requests, now)
	return true
}

func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if sw.Allow() {
			return nil
		}
		sw.mu.Lock()
		wait := 100 * time.Millisecond
		if len(sw.requests) > 0 {
			if until := sw.window - time.Since(sw.requests[0]); until > wait {
				wait = until
			}
		}
		sw.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (sw *SlidingWindow) Remaining() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.prune(time.Now())
	return max(0, sw.limit-len(sw.requests))
}

// Manager holds one limiter per endpoint key. Unknown keys fall back to a
// permissive default so a new call site can't deadlock quoting.
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
	fallback Limiter
}

// NewManager builds a manager preloaded with the published Polymarket limits.
func NewManager() *Manager {
	return &Manager{
		limiters: map[string]Limiter{
			// CLOB trading endpoints, token bucket with burst.
			"clob:order:post":   NewTokenBucket(2400, 240),
			"clob:order:cancel": NewTokenBucket(800, 80),

			// CLOB data endpoints.
			"clob:data:get": NewSlidingWindow(200, 10*time.Second),

			// Gamma discovery endpoints.
			"gamma:events:get": NewSlidingWindow(100, 10*time.Second),
		},
		fallback: NewSlidingWindow(750, 10*time.Second),
	}
}

// Set installs or replaces the limiter for a key.
func (m *Manager) Set(key string, l Limiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[key] = l
}

func (m *Manager) limiter(key string) Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.limiters[key]; ok {
		return l
	}
	return m.fallback
}

// Wait blocks until the endpoint's budget admits one request or ctx ends.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.limiter(key).Wait(ctx)
}

// Allow reports whether one request fits the budget right now.
func (m *Manager) Allow(key string) bool {
	return m.limiter(key).Allow()
}

// Remaining returns the requests left in the endpoint's current budget.
func (m *Manager) Remaining(key string) int {
	return m.limiter(key).Remaining()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
