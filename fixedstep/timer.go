// Package fixedstep implements a fixed timestep pacing timer.
//
// A Timer accumulates elapsed monotonic time and releases update ticks at a
// fixed interval, independently of how often the caller renders. Between
// ticks it reports how far the accumulator has progressed towards the next
// one, so rendered state can be interpolated.
//
// The expected driving loop is:
//
//	timer := fixedstep.Start(60)
//	for running {
//		for timer.Update() {
//			world.Step(timer.Interval())
//		}
//		draw(world, timer.RenderDelta())
//	}
//
// A Timer is owned by a single loop and is not safe for concurrent use.
package fixedstep

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// DefaultLimit is the number of ticks a Timer fires per render window
// before it treats the remaining backlog as an overrun.
const DefaultLimit = 3

var (
	ErrInvalidFrequency = errors.New("frequency must be a positive, finite number of hertz")
	ErrInvalidLimit     = errors.New("update limit must be at least 1")
)

// Timer is the fixed timestep state machine.
type Timer struct {
	clock    Clock
	interval time.Duration

	last        time.Duration
	accumulator time.Duration

	counter   int
	limit     int
	policy    OverrunPolicy
	exhausted bool

	stats Stats
}

// Stats is a snapshot of what a Timer has done since construction or the
// last ResetStats.
type Stats struct {
	Ticks     uint64        // ticks returned by Update
	Renders   uint64        // RenderDelta calls
	Overruns  uint64        // windows that exceeded the update limit
	Discarded time.Duration // backlog dropped by OverrunDiscard
}

// Option customises a Timer at construction.
type Option func(*Timer)

// WithClock replaces the default monotonic clock.
func WithClock(c Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// WithLimit sets the per-window update limit. Values below 1 are rejected by New.
func WithLimit(n int) Option {
	return func(t *Timer) {
		t.limit = n
	}
}

// Unlimited disables starvation protection.
func Unlimited() Option {
	return func(t *Timer) {
		t.limit = math.MaxInt
	}
}

// WithOverrun selects what happens to backlog once the update limit is hit.
func WithOverrun(p OverrunPolicy) Option {
	return func(t *Timer) {
		t.policy = p
	}
}

// New creates a Timer ticking at hz updates per second.
func New(hz float64, opts ...Option) (*Timer, error) {
	interval, err := IntervalFor(hz)
	if err != nil {
		return nil, err
	}

	t := &Timer{
		interval: interval,
		limit:    DefaultLimit,
		policy:   OverrunDiscard,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, t.limit)
	}
	if !t.policy.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, t.policy)
	}
	if t.clock == nil {
		t.clock = NewMonotonicClock()
	}

	t.last = t.clock.Now()
	return t, nil
}

// MustNew is like New but panics if the configuration is invalid.
func MustNew(hz float64, opts ...Option) *Timer {
	t, err := New(hz, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Start returns a Timer at hz with the default limit and the real clock.
func Start(hz float64) *Timer {
	return MustNew(hz)
}

// IntervalFor converts a frequency to the tick interval. The period is split
// into whole seconds and a nanosecond remainder so that low frequencies keep
// full nanosecond precision.
func IntervalFor(hz float64) (time.Duration, error) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFrequency, hz)
	}

	period := 1 / hz
	if period >= float64(math.MaxInt64/int64(time.Second)) {
		return 0, fmt.Errorf("%w: %v Hz is too slow", ErrInvalidFrequency, hz)
	}

	secs := math.Floor(period)
	nanos := (period - secs) * float64(time.Second)
	interval := time.Duration(secs)*time.Second + time.Duration(nanos)
	if interval <= 0 {
		return 0, fmt.Errorf("%w: %v Hz is below clock resolution", ErrInvalidFrequency, hz)
	}
	return interval, nil
}

// Limit sets the maximum number of ticks per render window.
func (t *Timer) Limit(n int) *Timer {
	if n < 1 {
		panic(fmt.Errorf("%w: got %d", ErrInvalidLimit, n))
	}
	t.limit = n
	return t
}

// Unlimit removes the per-window tick limit. The simulation will then try to
// catch up on any backlog no matter how large, so it can fall arbitrarily far
// behind real time if updates are slower than the interval. Only use it when
// every tick matters more than rendering cadence.
func (t *Timer) Unlimit() *Timer {
	t.limit = math.MaxInt
	return t
}

// Overrun sets the overrun policy.
func (t *Timer) Overrun(p OverrunPolicy) *Timer {
	if !p.valid() {
		panic(fmt.Errorf("%w: %d", ErrUnknownPolicy, p))
	}
	t.policy = p
	return t
}

// Reset resynchronises the timer to the current instant and drops any
// pending backlog. Call it after the loop was blocked (a pause, a debugger
// stop, a long load) so that no burst of catch-up ticks follows.
func (t *Timer) Reset() {
	t.last = t.clock.Now()
	t.accumulator = 0
	t.counter = 0
	t.exhausted = false
}

// Update reports whether a tick is due. Call it in a loop until it returns
// false, running one simulation step per true result.
//
// The clock is read once per call and the elapsed time is added to the
// accumulator exactly once, so the sum of accumulated time always equals
// real elapsed time.
func (t *Timer) Update() bool {
	now := t.clock.Now()
	if elapsed := now - t.last; elapsed > 0 {
		t.accumulator += elapsed
	}
	t.last = now

	if t.accumulator < t.interval {
		return false
	}

	if t.counter >= t.limit {
		t.overrun()
		return false
	}

	t.counter++
	t.accumulator -= t.interval
	t.stats.Ticks++
	return true
}

func (t *Timer) overrun() {
	switch t.policy {
	case OverrunCarry:
		// backlog is kept and waits for the next window
		if !t.exhausted {
			t.exhausted = true
			t.stats.Overruns++
		}
	default:
		t.stats.Overruns++
		t.stats.Discarded += t.accumulator
		slog.Debug("Fixed step backlog discarded",
			"backlog", t.accumulator,
			"ticks", t.counter,
			"limit", t.limit)
		t.accumulator = 0
		t.counter = 0
	}
}

// RenderDelta returns how far, in [0, 1], the timer is between the last tick
// and the next, and opens a new render window. It is only meaningful after
// Update has been drained.
func (t *Timer) RenderDelta() float64 {
	t.counter = 0
	t.exhausted = false
	t.stats.Renders++

	delta := float64(t.accumulator) / float64(t.interval)
	if delta > 1 {
		return 1
	}
	return delta
}

// Interval is the fixed tick length.
func (t *Timer) Interval() time.Duration { return t.interval }

// Frequency is the tick rate in hertz.
func (t *Timer) Frequency() float64 { return float64(time.Second) / float64(t.interval) }

// Accumulator is the unconsumed time carried towards the next tick.
func (t *Timer) Accumulator() time.Duration { return t.accumulator }

// Pending is the number of ticks fired in the current render window.
func (t *Timer) Pending() int { return t.counter }

// UpdateLimit returns the per-window tick limit; math.MaxInt when unlimited.
func (t *Timer) UpdateLimit() int { return t.limit }

// IsUnlimited reports whether starvation protection is disabled.
func (t *Timer) IsUnlimited() bool { return t.limit == math.MaxInt }

func (t *Timer) Policy() OverrunPolicy { return t.policy }

func (t *Timer) Stats() Stats { return t.stats }

func (t *Timer) ResetStats() { t.stats = Stats{} }
