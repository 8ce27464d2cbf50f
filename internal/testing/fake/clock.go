package fake

import (
	"sync"
	"time"
)

// Clock is a controllable clock for the poller. After advances the clock by
// the requested duration and fires immediately, so waits take no real time.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
	slept   time.Duration
}

// NewClock creates a clock initialized to t. If t is zero, the clock starts
// at the current time.
func NewClock(t time.Time) *Clock {
	if t.IsZero() {
		t = time.Now()
	}
	return &Clock{current: t}
}

// Now returns the current time according to this clock.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// After advances the clock by d and returns a channel that is ready.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.slept += d
	now := c.current
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the clock forward without counting it as sleep.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Slept returns the total duration passed to After.
func (c *Clock) Slept() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slept
}
