// Package testutil provides deterministic test doubles shared across
// packages, primarily a wall clock with a fixed base and step so
// version timestamps and golden files stay byte-stable.
package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe wall clock for tests. Each call
// to Now advances by a fixed step from a fixed base, so two runs of
// the same test produce identical timestamps.
//
// Unlike the real clock it can be reset for test reuse.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int
}

// DefaultBase is the first timestamp a fresh DeterministicClock
// returns.
var DefaultBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// NewDeterministicClock creates a clock starting at DefaultBase and
// advancing one minute per call.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultBase, time.Minute)
}

// NewDeterministicClockAt creates a clock with an explicit base and
// step.
func NewDeterministicClockAt(base time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{base: base, step: step}
}

// Now returns the next timestamp and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return ts
}

// Current returns the timestamp the next Now call will produce,
// without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock to its base.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
