package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-fixedstep/fixedstep"
)

func newTestRenderer(t *testing.T) (*TerminalRenderer, tcell.SimulationScreen, *fixedstep.ManualClock) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	clock := fixedstep.NewManualClock(0)
	timer, err := fixedstep.New(60, fixedstep.WithClock(clock))
	require.NoError(t, err)

	r, err := NewWithScreen(screen, timer, nil)
	require.NoError(t, err)
	screen.SetSize(40, 15)
	r.apply(cmdResize)
	return r, screen, clock
}

func rowText(screen tcell.SimulationScreen, y, width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestRenderer_Arena(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	defer r.screen.Fini()

	w, h := r.arena()
	assert.Equal(t, 37.0, w)
	assert.Equal(t, 11.0, h)
	assert.Equal(t, 37.0, r.world.Width)
}

func TestRenderer_Draw(t *testing.T) {
	r, screen, _ := newTestRenderer(t)
	defer screen.Fini()

	r.draw(0)

	s := r.world.Interpolate(0)
	ch, _, _, _ := screen.GetContent(1+int(s.X+0.5), 1+int(s.Y+0.5))
	assert.Equal(t, ballChar, ch)

	corner, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, tcell.RuneULCorner, corner)
	corner, _, _, _ = screen.GetContent(39, 13)
	assert.Equal(t, tcell.RuneLRCorner, corner)

	assert.True(t, strings.HasPrefix(rowText(screen, 14, 40), "60Hz limit 3 discard"))
}

func TestRenderer_FrameStepsWorld(t *testing.T) {
	r, screen, clock := newTestRenderer(t)
	defer screen.Fini()

	clock.Advance(40 * time.Millisecond)
	r.frame()

	assert.Equal(t, 2, r.lastTicks)
	assert.Equal(t, uint64(2), r.world.Steps())
	assert.InDelta(t, 0.4, r.lastDelta, 1e-3)
	assert.Equal(t, uint64(1), r.frameCount)
}

func TestRenderer_PauseResetsOnResume(t *testing.T) {
	r, screen, clock := newTestRenderer(t)
	defer screen.Fini()

	r.apply(cmdPause)
	require.True(t, r.paused)

	clock.Advance(time.Second)
	r.frame()
	assert.Equal(t, uint64(0), r.world.Steps(), "no steps while paused")

	r.apply(cmdPause)
	require.False(t, r.paused)
	r.frame()

	assert.Equal(t, uint64(0), r.world.Steps(), "the paused second is not caught up")
	assert.Equal(t, uint64(0), r.timer.Stats().Overruns)
}

func TestRenderer_ResetCommand(t *testing.T) {
	r, screen, clock := newTestRenderer(t)
	defer screen.Fini()

	clock.Advance(time.Second)
	r.apply(cmdReset)
	r.frame()

	assert.Equal(t, 0, r.lastTicks)
	assert.Equal(t, fixedstep.Stats{Renders: 1}, r.timer.Stats())
}

func TestRenderer_Stall(t *testing.T) {
	r, screen, _ := newTestRenderer(t)
	defer screen.Fini()

	r.apply(cmdStall)
	require.True(t, r.stallNext)

	start := time.Now()
	r.frame()
	assert.GreaterOrEqual(t, time.Since(start), StallDuration)
	assert.False(t, r.stallNext)
}

func TestRenderer_RunQuitsOnKey(t *testing.T) {
	r, screen, _ := newTestRenderer(t)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("renderer did not quit")
	}
}

func TestRenderer_RunStopsOnContext(t *testing.T) {
	r, _, _ := newTestRenderer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, r.frameCount, uint64(0))
}
