package scene

import (
	"sync"
	"time"
)

// Clock is the single time source of a scene. Values are offsets from an
// arbitrary origin and never decrease.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the monotonic wall clock
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a clock at zero
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Used by tests and scripted runs.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// Now implements Clock
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time
func (c *ManualClock) Advance(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
	return c.now
}

// Set jumps to t; earlier times are ignored
func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}
