package fixedstep

import (
	"sync"
	"time"
)

// Clock is a monotonic time source. Now returns the time elapsed since an
// arbitrary, implementation defined epoch and never goes backwards.
type Clock interface {
	Now() time.Duration
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Duration

func (f ClockFunc) Now() time.Duration { return f() }

// MonotonicClock reads Go's monotonic clock relative to the instant it was
// created. Wall clock adjustments do not affect it.
type MonotonicClock struct {
	epoch time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.epoch)
}

// ManualClock is a Clock that only moves when told to. Used by tests and
// the headless runner to drive a Timer deterministically.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Duration
}

func NewManualClock(start time.Duration) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the clock forward. Negative durations are ignored.
func (m *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Set jumps to t, unless that would move the clock backwards.
func (m *ManualClock) Set(t time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}
