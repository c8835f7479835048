// Package loop drives a fixedstep.Timer with callbacks, in the shape of the
// classic "update while behind, then render" game loop.
//
// The limit is fixed at LegacyLimit ticks per rendered frame. Step.Skip picks
// what happens to any backlog left after that burst: with Skip it is thrown
// away (frame skipping, fine for games, wrong for simulations that must not
// lose time), without it it is carried into the next frame.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-fixedstep/fixedstep"
	"github.com/valerio/go-fixedstep/fixedstep/timing"
)

// LegacyLimit is the number of updates run per frame before the loop renders.
const LegacyLimit = 3

var ErrMissingCallback = errors.New("loop needs both an Update and a Render callback")

// Step configures the update rate and the frame skip behaviour.
type Step struct {
	TicksPerSecond float64
	Skip           bool
}

// DefaultStep is 60 updates per second with frame skipping.
func DefaultStep() Step {
	return Step{TicksPerSecond: 60, Skip: true}
}

// Policy maps Skip onto the timer's overrun policy.
func (s Step) Policy() fixedstep.OverrunPolicy {
	if s.Skip {
		return fixedstep.OverrunDiscard
	}
	return fixedstep.OverrunCarry
}

// Loop holds the callbacks and optional collaborators of a fixed step loop.
type Loop struct {
	Step Step

	// Update advances the simulation by one interval. Returning true asks
	// the loop to stop after rendering the current frame.
	Update func() bool

	// Render draws the simulation, delta being the [0, 1] position between
	// the last update and the next.
	Render func(delta float64)

	// Clock defaults to the real monotonic clock.
	Clock fixedstep.Clock

	// Limiter paces frames. Nil means render as fast as possible.
	Limiter timing.Limiter
}

// New returns a Loop with DefaultStep.
func New(update func() bool, render func(delta float64)) *Loop {
	return &Loop{
		Step:   DefaultStep(),
		Update: update,
		Render: render,
	}
}

// Timer builds the fixedstep.Timer the loop runs on.
func (l *Loop) Timer() (*fixedstep.Timer, error) {
	hz := l.Step.TicksPerSecond
	if hz == 0 {
		hz = DefaultStep().TicksPerSecond
	}

	opts := []fixedstep.Option{
		fixedstep.WithLimit(LegacyLimit),
		fixedstep.WithOverrun(l.Step.Policy()),
	}
	if l.Clock != nil {
		opts = append(opts, fixedstep.WithClock(l.Clock))
	}
	return fixedstep.New(hz, opts...)
}

// Run executes frames until Update asks to stop or ctx is done. It returns
// nil on a requested stop and ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if l.Update == nil || l.Render == nil {
		return ErrMissingCallback
	}

	timer, err := l.Timer()
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}

	limiter := l.Limiter
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	slog.Debug("Starting fixed step loop",
		"hz", timer.Frequency(),
		"interval", timer.Interval(),
		"skip", l.Step.Skip)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		shouldClose := false
		for !shouldClose && timer.Update() {
			shouldClose = l.Update()
		}

		l.Render(timer.RenderDelta())

		if shouldClose {
			stats := timer.Stats()
			slog.Debug("Fixed step loop finished",
				"ticks", stats.Ticks,
				"frames", stats.Renders,
				"overruns", stats.Overruns)
			return nil
		}

		limiter.WaitForNextFrame()
	}
}

// Run is shorthand for New(update, render) with the given step.
func Run(ctx context.Context, step Step, update func() bool, render func(delta float64)) error {
	l := New(update, render)
	l.Step = step
	return l.Run(ctx)
}
