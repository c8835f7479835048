// Package sim is a small deterministic world used to demonstrate fixed step
// updates with interpolated rendering: a ball bouncing inside a box.
package sim

import "time"

// State is the ball's position and velocity, in cells and cells per second.
type State struct {
	X, Y   float64
	VX, VY float64
}

// World keeps the previous and current state so that a renderer can blend
// between the last two steps.
type World struct {
	Width, Height float64

	prev  State
	curr  State
	steps uint64
}

func NewWorld(width, height float64) *World {
	start := State{X: width / 4, Y: height / 3, VX: width / 2, VY: height / 3}
	return &World{
		Width:  width,
		Height: height,
		prev:   start,
		curr:   start,
	}
}

// Step advances the world by dt.
func (w *World) Step(dt time.Duration) {
	w.prev = w.curr
	s := w.curr
	secs := dt.Seconds()

	s.X, s.VX = bounce(s.X+s.VX*secs, s.VX, w.Width)
	s.Y, s.VY = bounce(s.Y+s.VY*secs, s.VY, w.Height)

	w.curr = s
	w.steps++
}

// bounce reflects pos back into [0, limit] and flips the velocity if it hit
// a wall.
func bounce(pos, vel, limit float64) (float64, float64) {
	if limit <= 0 {
		return 0, vel
	}
	for pos < 0 || pos > limit {
		if pos < 0 {
			pos = -pos
		} else {
			pos = 2*limit - pos
		}
		vel = -vel
	}
	return pos, vel
}

// Interpolate blends the previous and current state, alpha being the render
// delta reported by the timer.
func (w *World) Interpolate(alpha float64) State {
	if alpha <= 0 {
		return w.prev
	}
	if alpha >= 1 {
		return w.curr
	}
	return State{
		X:  lerp(w.prev.X, w.curr.X, alpha),
		Y:  lerp(w.prev.Y, w.curr.Y, alpha),
		VX: w.curr.VX,
		VY: w.curr.VY,
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Resize changes the box and clamps the ball into it.
func (w *World) Resize(width, height float64) {
	w.Width, w.Height = width, height
	w.curr.X, _ = bounce(w.curr.X, 0, width)
	w.curr.Y, _ = bounce(w.curr.Y, 0, height)
	w.prev = w.curr
}

func (w *World) Current() State  { return w.curr }
func (w *World) Previous() State { return w.prev }
func (w *World) Steps() uint64   { return w.steps }
