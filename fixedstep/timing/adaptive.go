package timing

import (
	"log/slog"
	"time"
)

const (
	spinThreshold   = 2 * time.Millisecond
	resyncThreshold = 5 * time.Millisecond
	driftThreshold  = 10 * time.Millisecond
	driftCheckEvery = 60
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
	startTime       time.Time
}

func NewAdaptiveLimiter(fps float64) *AdaptiveLimiter {
	now := time.Now()
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(fps),
		nextFrameTime:   now,
		startTime:       now,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime >= spinThreshold {
			time.Sleep(sleepTime - time.Millisecond)
		}
		for time.Now().Before(a.nextFrameTime) {
			// spin out the last millisecond or so for accuracy
		}
	} else if sleepTime < -resyncThreshold {
		// too far behind to catch up, start counting from now
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%driftCheckEvery == 0 {
		a.correctDrift()
	}
}

func (a *AdaptiveLimiter) correctDrift() {
	actual := time.Now()
	drift := actual.Sub(a.nextFrameTime)
	if drift.Abs() <= driftThreshold {
		return
	}

	a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
	slog.Debug("Render timing drift correction",
		"drift_ms", drift.Milliseconds(),
		"fps", a.FPS())
}

// FPS is the average frame rate since construction or the last Reset.
func (a *AdaptiveLimiter) FPS() float64 {
	elapsed := time.Since(a.startTime)
	if elapsed <= 0 {
		return 0
	}
	return float64(a.frameCounter) / elapsed.Seconds()
}

func (a *AdaptiveLimiter) Reset() {
	now := time.Now()
	a.nextFrameTime = now
	a.startTime = now
	a.frameCounter = 0
}
