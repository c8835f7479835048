// Package headless runs the demo world against a manual clock, for
// reproducible measurements of how a pacing configuration behaves under a
// given frame cost and set of stalls.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/valerio/go-fixedstep/fixedstep"
	"github.com/valerio/go-fixedstep/fixedstep/config"
	"github.com/valerio/go-fixedstep/fixedstep/sim"
)

const defaultProgressEvery = 10

// Options describes the simulated workload.
type Options struct {
	Frames        int                   // frames to render
	FrameCost     time.Duration         // clock advance per frame
	Stalls        map[int]time.Duration // extra clock advance after the given frame
	ResetOnStall  bool                  // call Timer.Reset after each stall
	ProgressEvery int                   // log progress every N frames (0 = 10)
	Trace         io.Writer             // optional per-frame trace
	Width, Height float64               // world size (0 = 80x24)
}

// Result summarises a run.
type Result struct {
	Frames           int
	Ticks            uint64
	Overruns         uint64
	Discarded        time.Duration
	MaxTicksPerFrame int
	Elapsed          time.Duration // manual clock time covered by the run
	Simulated        time.Duration // Ticks * interval
}

// Runner owns a timer, its manual clock and the world it drives.
type Runner struct {
	opts  Options
	clock *fixedstep.ManualClock
	timer *fixedstep.Timer
	world *sim.World
}

func New(cfg *config.Config, opts Options) (*Runner, error) {
	if opts.Frames <= 0 {
		return nil, errors.New("headless mode requires a positive frame count")
	}
	if opts.FrameCost < 0 {
		return nil, fmt.Errorf("frame cost must not be negative, got %v", opts.FrameCost)
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	clock := fixedstep.NewManualClock(0)
	timer, err := cfg.NewTimer(clock)
	if err != nil {
		return nil, err
	}

	return &Runner{
		opts:  opts,
		clock: clock,
		timer: timer,
		world: sim.NewWorld(opts.Width, opts.Height),
	}, nil
}

// Run renders opts.Frames frames. It stops early with ctx.Err() if ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result

	slog.Info("Running headless mode",
		"frames", r.opts.Frames,
		"hz", r.timer.Frequency(),
		"limit", r.timer.UpdateLimit(),
		"overrun", r.timer.Policy(),
		"frame_cost", r.opts.FrameCost)

	if r.opts.Trace != nil {
		fmt.Fprintf(r.opts.Trace, "# frame clock_ms ticks delta x y\n")
	}

	for frame := 0; frame < r.opts.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return r.finish(res), err
		}

		ticks := 0
		for r.timer.Update() {
			r.world.Step(r.timer.Interval())
			ticks++
		}
		if ticks > res.MaxTicksPerFrame {
			res.MaxTicksPerFrame = ticks
		}

		delta := r.timer.RenderDelta()
		state := r.world.Interpolate(delta)
		res.Frames++

		if r.opts.Trace != nil {
			fmt.Fprintf(r.opts.Trace, "%d %.3f %d %.4f %.3f %.3f\n",
				frame, float64(r.clock.Now())/float64(time.Millisecond), ticks, delta, state.X, state.Y)
		}

		if res.Frames%r.opts.ProgressEvery == 0 {
			slog.Info("Frame progress", "completed", res.Frames, "total", r.opts.Frames)
		}

		r.clock.Advance(r.opts.FrameCost)
		if stall, ok := r.opts.Stalls[frame]; ok && stall > 0 {
			r.clock.Advance(stall)
			slog.Debug("Injected stall", "frame", frame, "stall", stall)
			if r.opts.ResetOnStall {
				r.timer.Reset()
			}
		}
	}

	res = r.finish(res)
	slog.Info("Headless execution completed",
		"frames", res.Frames,
		"ticks", res.Ticks,
		"overruns", res.Overruns,
		"discarded", res.Discarded)
	return res, nil
}

func (r *Runner) finish(res Result) Result {
	stats := r.timer.Stats()
	res.Ticks = stats.Ticks
	res.Overruns = stats.Overruns
	res.Discarded = stats.Discarded
	res.Elapsed = r.clock.Now()
	res.Simulated = time.Duration(stats.Ticks) * r.timer.Interval()
	return res
}

func (r *Runner) Timer() *fixedstep.Timer { return r.timer }
func (r *Runner) World() *sim.World       { return r.world }
