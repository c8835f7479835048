package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-fixedstep/fixedstep/config"
	"github.com/valerio/go-fixedstep/fixedstep/headless"
	"github.com/valerio/go-fixedstep/fixedstep/render"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running fixedstep", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fixedstep"
	app.Description = "Fixed timestep pacing demo"
	app.Usage = "fixedstep [options] [command]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML pacing config (flags override it)",
		},
		cli.Float64Flag{
			Name:  "hz",
			Usage: "Simulation updates per second",
			Value: 60,
		},
		cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum updates per rendered frame",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "unlimited",
			Usage: "Disable the update limit (simulation may fall behind real time)",
		},
		cli.StringFlag{
			Name:  "overrun",
			Usage: "What to do with backlog past the limit: discard or carry",
			Value: "discard",
		},
		cli.Float64Flag{
			Name:  "render-fps",
			Usage: "Maximum frames drawn per second",
			Value: 60,
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Render limiter: adaptive, ticker or none",
			Value: "adaptive",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Before = setupLogging
	app.Action = runTerminal
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Show the bouncing ball demo in the terminal",
			Action: runTerminal,
		},
		{
			Name:  "headless",
			Usage: "Run the demo against a simulated clock and report pacing statistics",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Usage: "Number of frames to run (required)",
				},
				cli.DurationFlag{
					Name:  "frame-cost",
					Usage: "Simulated time each frame takes",
					Value: 10 * time.Millisecond,
				},
				cli.IntFlag{
					Name:  "stall-at",
					Usage: "Frame after which to inject a stall (-1 = never)",
					Value: -1,
				},
				cli.DurationFlag{
					Name:  "stall",
					Usage: "Length of the injected stall",
					Value: 500 * time.Millisecond,
				},
				cli.BoolFlag{
					Name:  "reset-on-stall",
					Usage: "Reset the timer after the stall instead of catching up",
				},
				cli.StringFlag{
					Name:  "trace",
					Usage: "Write a per-frame trace to this file",
				},
			},
			Action: runHeadless,
		},
	}
	return app
}

func setupLogging(c *cli.Context) error {
	level := slog.LevelInfo
	if c.GlobalBool("debug") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the config file, if any, and applies explicitly set flags
// on top of it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOptional(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	if c.GlobalIsSet("hz") {
		cfg.Frequency = c.GlobalFloat64("hz")
	}
	if c.GlobalIsSet("limit") {
		cfg.Limit = c.GlobalInt("limit")
	}
	if c.GlobalIsSet("unlimited") {
		cfg.Unlimited = c.GlobalBool("unlimited")
	}
	if c.GlobalIsSet("overrun") {
		cfg.Overrun = c.GlobalString("overrun")
	}
	if c.GlobalIsSet("render-fps") {
		cfg.RenderFPS = c.GlobalFloat64("render-fps")
	}
	if c.GlobalIsSet("limiter") {
		cfg.Limiter = c.GlobalString("limiter")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTerminal(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	timer, err := cfg.NewTimer(nil)
	if err != nil {
		return err
	}
	limiter, err := cfg.NewLimiter()
	if err != nil {
		return err
	}

	renderer, err := render.NewTerminalRenderer(timer, limiter)
	if err != nil {
		return err
	}
	return renderer.Run(context.Background())
}

func runHeadless(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := headless.Options{
		Frames:       c.Int("frames"),
		FrameCost:    c.Duration("frame-cost"),
		ResetOnStall: c.Bool("reset-on-stall"),
	}
	if at := c.Int("stall-at"); at >= 0 {
		opts.Stalls = map[int]time.Duration{at: c.Duration("stall")}
	}

	if path := c.String("trace"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %v", err)
		}
		defer f.Close()
		opts.Trace = f
	}

	runner, err := headless.New(cfg, opts)
	if err != nil {
		return err
	}

	res, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "frames %d ticks %d max/frame %d overruns %d discarded %v simulated %v of %v\n",
		res.Frames, res.Ticks, res.MaxTicksPerFrame, res.Overruns, res.Discarded, res.Simulated, res.Elapsed)
	return nil
}
