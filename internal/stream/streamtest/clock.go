// Package streamtest provides a virtual scheduler for driving live generators
// in tests without real time passing.
package streamtest

import (
	"sync"
	"time"
)

// Clock is a manually advanced scheduler. Registered callbacks fire only from
// Advance, on the caller's goroutine, in due-time order.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*timer
}

type timer struct {
	id       int
	interval time.Duration
	due      time.Duration
	fn       func()
}

// NewClock returns a Clock at time zero.
func NewClock() *Clock {
	return &Clock{timers: make(map[int]*timer)}
}

// Every implements stream.Scheduler.
func (c *Clock) Every(interval time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.timers[id] = &timer{
		id:       id,
		interval: interval,
		due:      c.now + interval,
		fn:       fn,
	}
	return func() {
		c.mu.Lock()
		delete(c.timers, id)
		c.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
// Callbacks run without the clock's lock held, so they may register or cancel.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		t := c.earliest(target)
		if t == nil {
			break
		}
		c.now = t.due
		t.due += t.interval
		fn := t.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Now returns the elapsed virtual time.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of live registrations.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// earliest must be called with mu held. Ties go to the older registration.
func (c *Clock) earliest(limit time.Duration) *timer {
	var best *timer
	for _, t := range c.timers {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}
