// Package timing paces the render side of a fixed step loop. The update side
// is paced by fixedstep.Timer; these limiters only keep the outer loop from
// spinning faster than the display can use.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Limiter controls how often the outer loop renders.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// FrameDuration returns the target duration of a single frame at fps.
// Non-positive rates fall back to DefaultFPS.
func FrameDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

const DefaultFPS = 60

// Kind names a limiter implementation.
type Kind string

const (
	KindNone     Kind = "none"
	KindTicker   Kind = "ticker"
	KindAdaptive Kind = "adaptive"
)

// New builds the limiter named by kind for the given frame rate.
func New(kind Kind, fps float64) (Limiter, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindNone:
		return NewNoOpLimiter(), nil
	case KindTicker:
		return NewTickerLimiter(fps), nil
	case KindAdaptive, "":
		return NewAdaptiveLimiter(fps), nil
	default:
		return nil, fmt.Errorf("unknown limiter %q (want none, ticker or adaptive)", kind)
	}
}
