package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorld_Step(t *testing.T) {
	w := NewWorld(100, 60)
	start := w.Current()

	w.Step(100 * time.Millisecond)

	assert.Equal(t, start, w.Previous())
	assert.InDelta(t, start.X+start.VX*0.1, w.Current().X, 1e-9)
	assert.InDelta(t, start.Y+start.VY*0.1, w.Current().Y, 1e-9)
	assert.Equal(t, uint64(1), w.Steps())
}

func TestWorld_StaysInsideTheBox(t *testing.T) {
	w := NewWorld(40, 20)
	for i := 0; i < 10000; i++ {
		w.Step(16 * time.Millisecond)
		s := w.Current()
		assert.GreaterOrEqual(t, s.X, 0.0)
		assert.LessOrEqual(t, s.X, 40.0)
		assert.GreaterOrEqual(t, s.Y, 0.0)
		assert.LessOrEqual(t, s.Y, 20.0)
	}
}

func TestBounce(t *testing.T) {
	tests := []struct {
		name            string
		pos, vel, limit float64
		wantPos         float64
		wantVel         float64
	}{
		{"inside", 5, 1, 10, 5, 1},
		{"past far wall", 12, 3, 10, 8, -3},
		{"past near wall", -2, -3, 10, 2, 3},
		{"several widths", 25, 3, 10, 5, 3},
		{"empty box", 5, 1, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := bounce(tt.pos, tt.vel, tt.limit)
			assert.InDelta(t, tt.wantPos, pos, 1e-9)
			assert.Equal(t, tt.wantVel, vel)
		})
	}
}

func TestWorld_Interpolate(t *testing.T) {
	w := NewWorld(100, 100)
	w.Step(50 * time.Millisecond)
	prev, curr := w.Previous(), w.Current()

	assert.Equal(t, prev, w.Interpolate(0))
	assert.Equal(t, curr, w.Interpolate(1))
	assert.Equal(t, prev, w.Interpolate(-1))
	assert.Equal(t, curr, w.Interpolate(2))

	mid := w.Interpolate(0.5)
	assert.InDelta(t, (prev.X+curr.X)/2, mid.X, 1e-9)
	assert.InDelta(t, (prev.Y+curr.Y)/2, mid.Y, 1e-9)
}

func TestWorld_Resize(t *testing.T) {
	w := NewWorld(100, 100)
	w.Step(time.Second)

	w.Resize(10, 10)
	s := w.Current()
	assert.LessOrEqual(t, s.X, 10.0)
	assert.LessOrEqual(t, s.Y, 10.0)
	assert.Equal(t, s, w.Previous())
}
