package logging

import (
	"sync"
	"time"
)

// RateLimiter is a per-key token bucket used to keep repeated log lines
// (a layout that fails on every frame, a flood of hover changes) from
// drowning the log. Time is supplied by the caller so the limiter follows
// the scene clock rather than the wall clock.
type RateLimiter struct {
	maxTokens int
	window    time.Duration
	buckets   map[string]*bucket
	mu        sync.Mutex
}

type bucket struct {
	tokens     int
	lastRefill time.Duration
}

// NewRateLimiter allows at most maxEvents per key within window
func NewRateLimiter(maxEvents int, window time.Duration) *RateLimiter {
	if maxEvents < 1 {
		maxEvents = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{
		maxTokens: maxEvents,
		window:    window,
		buckets:   make(map[string]*bucket),
	}
}

// Allow consumes a token for key at now and reports whether the event may pass
func (rl *RateLimiter) Allow(key string, now time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		rl.evictIdle(now)
		b = &bucket{tokens: rl.maxTokens, lastRefill: now}
		rl.buckets[key] = b
	}

	elapsed := now - b.lastRefill
	if elapsed > 0 && b.tokens < rl.maxTokens {
		add := int(float64(rl.maxTokens) * float64(elapsed) / float64(rl.window))
		if add > 0 {
			b.tokens += add
			if b.tokens > rl.maxTokens {
				b.tokens = rl.maxTokens
			}
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// evictIdle drops keys that have been quiet for two windows. Callers hold mu.
func (rl *RateLimiter) evictIdle(now time.Duration) {
	cutoff := now - 2*rl.window
	for key, b := range rl.buckets {
		if b.lastRefill < cutoff {
			delete(rl.buckets, key)
		}
	}
}
