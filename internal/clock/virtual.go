package clock

import (
	"sync"
	"time"
)

// VirtualClock is a controllable clock for deterministic playback tests.
// Time only moves on Advance or Set, unless the clock was built with
// NewSteppingClock, in which case every After call moves time forward by
// exactly the requested duration and fires at once.
//
// Thread-safe for concurrent use.
type VirtualClock struct {
	mu       sync.RWMutex
	current  time.Time
	waiters  []waiter
	stepping bool
	requests []time.Duration
}

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

// NewVirtualClock creates a VirtualClock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{
		current: start,
	}
}

// NewSteppingClock creates a VirtualClock that advances itself on every After call.
func NewSteppingClock(start time.Time) *VirtualClock {
	return &VirtualClock{
		current:  start,
		stepping: true,
	}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Since returns the virtual duration elapsed since t.
func (c *VirtualClock) Since(t time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Sub(t)
}

// After returns a channel that receives the virtual time once the clock
// has reached the current time plus d.
func (c *VirtualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, d)
	ch := make(chan time.Time, 1)

	if d <= 0 {
		ch <- c.current
		return ch
	}
	if c.stepping {
		c.current = c.current.Add(d)
		c.drainWaiters()
		ch <- c.current
		return ch
	}

	c.waiters = append(c.waiters, waiter{
		deadline: c.current.Add(d),
		ch:       ch,
	})
	return ch
}

// Requests returns every duration passed to After, in call order.
func (c *VirtualClock) Requests() []time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]time.Duration, len(c.requests))
	copy(out, c.requests)
	return out
}

// Pending returns the number of After channels that have not fired yet.
func (c *VirtualClock) Pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.waiters)
}

// Advance moves the virtual clock forward by the given duration.
// Panics if d is negative.
func (c *VirtualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: cannot advance by negative duration")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	c.drainWaiters()
}

// Set sets the virtual clock to an exact time.
// Panics if t is before the current time.
func (c *VirtualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Before(c.current) {
		panic("clock: cannot set time to the past")
	}

	c.current = t
	c.drainWaiters()
}

// drainWaiters fires all waiters whose deadline is at or before the current time.
// Must be called with c.mu held.
func (c *VirtualClock) drainWaiters() {
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.deadline.After(c.current) {
			w.ch <- c.current
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}
