// Package clock abstracts wall-clock access so scheduling logic can be
// tested deterministically. The engine core never reads the system clock
// directly; handlers obtain "now" from an injected Clock and pass it down.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the real wall clock. Times are returned in UTC.
type System struct{}

// NewSystem creates a Clock backed by time.Now.
func NewSystem() *System {
	return &System{}
}

// Now implements the Clock interface.
func (*System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock that returns a fixed, manually advanced time.
// It is safe for concurrent use.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a Fixed clock set to the given time.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

// Now implements the Clock interface.
func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to the given time.
func (c *Fixed) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
