package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, 16666666*time.Nanosecond, FrameDuration(60))
	assert.Equal(t, 100*time.Millisecond, FrameDuration(10))
	assert.Equal(t, FrameDuration(DefaultFPS), FrameDuration(0))
	assert.Equal(t, FrameDuration(DefaultFPS), FrameDuration(-5))
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind Kind
		want interface{}
	}{
		{KindNone, &noOpLimiter{}},
		{KindTicker, &TickerLimiter{}},
		{KindAdaptive, &AdaptiveLimiter{}},
		{"", &AdaptiveLimiter{}},
		{"Ticker", &TickerLimiter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			l, err := New(tt.kind, 120)
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
			if tl, ok := l.(*TickerLimiter); ok {
				tl.Stop()
			}
		})
	}

	_, err := New("vsync", 60)
	assert.Error(t, err)
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptiveLimiter_Paces(t *testing.T) {
	start := time.Now()
	l := NewAdaptiveLimiter(200)

	for i := 0; i < 10; i++ {
		l.WaitForNextFrame()
	}
	// first frame is released immediately, the other nine wait 5ms each
	assert.GreaterOrEqual(t, time.Since(start), 9*FrameDuration(200))
	assert.Greater(t, l.FPS(), 0.0)

	l.Reset()
	assert.Equal(t, int64(0), l.frameCounter)
}

func TestAdaptiveLimiter_ResyncsWhenBehind(t *testing.T) {
	l := NewAdaptiveLimiter(100)
	l.nextFrameTime = time.Now().Add(-time.Second)

	start := time.Now()
	l.WaitForNextFrame()
	assert.Less(t, time.Since(start), 5*time.Millisecond, "a late limiter should not block")
	assert.True(t, l.nextFrameTime.After(start), "next frame is scheduled from now, not from the stale deadline")
}

func TestTickerLimiter(t *testing.T) {
	l := NewTickerLimiter(200)
	defer l.Stop()

	start := time.Now()
	l.WaitForNextFrame()
	l.WaitForNextFrame()
	assert.GreaterOrEqual(t, time.Since(start), FrameDuration(200))

	l.Reset()
}
