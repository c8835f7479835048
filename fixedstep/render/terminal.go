// Package render shows the demo world in a terminal, stepping it with a
// fixedstep.Timer and drawing the interpolated state every frame.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-fixedstep/fixedstep"
	"github.com/valerio/go-fixedstep/fixedstep/sim"
	"github.com/valerio/go-fixedstep/fixedstep/timing"
)

// StallDuration is how long the 's' key blocks the loop.
const StallDuration = 250 * time.Millisecond

const (
	ballChar   = '●'
	trailChar  = '·'
	statusRows = 1
)

type command int

const (
	cmdQuit command = iota
	cmdReset
	cmdPause
	cmdStall
	cmdResize
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	ballStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	trailStyle  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type TerminalRenderer struct {
	screen  tcell.Screen
	timer   *fixedstep.Timer
	limiter timing.Limiter
	world   *sim.World

	commands chan command
	done     chan struct{}

	paused     bool
	stallNext  bool
	lastTicks  int
	lastDelta  float64
	frameCount uint64
}

// NewTerminalRenderer opens the terminal and prepares a renderer on it.
func NewTerminalRenderer(timer *fixedstep.Timer, limiter timing.Limiter) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	return NewWithScreen(screen, timer, limiter)
}

// NewWithScreen prepares a renderer on an existing, uninitialised screen.
func NewWithScreen(screen tcell.Screen, timer *fixedstep.Timer, limiter timing.Limiter) (*TerminalRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	t := &TerminalRenderer{
		screen:   screen,
		timer:    timer,
		limiter:  limiter,
		commands: make(chan command, 16),
		done:     make(chan struct{}),
	}
	w, h := t.arena()
	t.world = sim.NewWorld(w, h)
	return t, nil
}

// Run draws frames until the user quits, a signal arrives or ctx is done.
func (t *TerminalRenderer) Run(ctx context.Context) error {
	defer func() {
		slog.Info("Finishing terminal")
		close(t.done)
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	t.timer.Reset()
	t.limiter.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signals:
			slog.Info("Received signal to stop")
			return nil
		case cmd := <-t.commands:
			if t.apply(cmd) {
				return nil
			}
			continue
		default:
		}

		t.frame()
		t.limiter.WaitForNextFrame()
	}
}

// apply runs a command on the loop goroutine; it reports whether the loop
// should stop.
func (t *TerminalRenderer) apply(cmd command) bool {
	switch cmd {
	case cmdQuit:
		return true
	case cmdReset:
		t.timer.Reset()
		t.timer.ResetStats()
		slog.Debug("Timer reset")
	case cmdPause:
		t.paused = !t.paused
		if !t.paused {
			// the paused time must not turn into a burst of catch-up ticks
			t.timer.Reset()
			t.limiter.Reset()
		}
	case cmdStall:
		t.stallNext = true
	case cmdResize:
		w, h := t.arena()
		t.world.Resize(w, h)
	}
	return false
}

func (t *TerminalRenderer) frame() {
	if t.stallNext {
		t.stallNext = false
		slog.Debug("Stalling loop", "duration", StallDuration)
		time.Sleep(StallDuration)
	}

	if !t.paused {
		t.lastTicks = 0
		for t.timer.Update() {
			t.world.Step(t.timer.Interval())
			t.lastTicks++
		}
		t.lastDelta = t.timer.RenderDelta()
	}

	t.draw(t.lastDelta)
	t.screen.Show()
	t.frameCount++
}

// arena is the size of the box the ball moves in.
func (t *TerminalRenderer) arena() (float64, float64) {
	w, h := t.screen.Size()
	w -= 3
	h -= 3 + statusRows
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return float64(w), float64(h)
}

func (t *TerminalRenderer) draw(delta float64) {
	t.screen.Clear()

	aw, ah := t.arena()
	t.drawBorder(int(aw)+3, int(ah)+3)

	prev := t.world.Previous()
	t.screen.SetContent(1+int(prev.X+0.5), 1+int(prev.Y+0.5), trailChar, nil, trailStyle)

	s := t.world.Interpolate(delta)
	t.screen.SetContent(1+int(s.X+0.5), 1+int(s.Y+0.5), ballChar, nil, ballStyle)

	t.drawText(0, int(ah)+3, t.status(delta), statusStyle)
}

func (t *TerminalRenderer) drawBorder(w, h int) {
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, 0, tcell.RuneHLine, nil, borderStyle)
		t.screen.SetContent(x, h-1, tcell.RuneHLine, nil, borderStyle)
	}
	for y := 0; y < h; y++ {
		t.screen.SetContent(0, y, tcell.RuneVLine, nil, borderStyle)
		t.screen.SetContent(w-1, y, tcell.RuneVLine, nil, borderStyle)
	}
	t.screen.SetContent(0, 0, tcell.RuneULCorner, nil, borderStyle)
	t.screen.SetContent(w-1, 0, tcell.RuneURCorner, nil, borderStyle)
	t.screen.SetContent(0, h-1, tcell.RuneLLCorner, nil, borderStyle)
	t.screen.SetContent(w-1, h-1, tcell.RuneLRCorner, nil, borderStyle)
}

func (t *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (t *TerminalRenderer) status(delta float64) string {
	limit := "inf"
	if !t.timer.IsUnlimited() {
		limit = fmt.Sprint(t.timer.UpdateLimit())
	}
	stats := t.timer.Stats()

	state := ""
	if t.paused {
		state = " PAUSED"
	}
	return fmt.Sprintf("%.0fHz limit %s %s | ticks %d (+%d) overruns %d dropped %v | delta %.2f%s | q quit r reset p pause s stall",
		t.timer.Frequency(), limit, t.timer.Policy(),
		stats.Ticks, t.lastTicks, stats.Overruns, stats.Discarded.Round(time.Millisecond),
		delta, state)
}

func (t *TerminalRenderer) send(cmd command) bool {
	select {
	case t.commands <- cmd:
		return true
	case <-t.done:
		return false
	}
}

func (t *TerminalRenderer) handleInput() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		var cmd command
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				cmd = cmdQuit
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'q':
					cmd = cmdQuit
				case 'r':
					cmd = cmdReset
				case 'p', ' ':
					cmd = cmdPause
				case 's':
					cmd = cmdStall
				default:
					continue
				}
			default:
				continue
			}
		case *tcell.EventResize:
			t.screen.Sync()
			cmd = cmdResize
		default:
			continue
		}

		if !t.send(cmd) || cmd == cmdQuit {
			return
		}
	}
}
