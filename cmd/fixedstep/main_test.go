package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(append([]string{"fixedstep"}, args...))
	return out.String(), err
}

func TestHeadlessCommand(t *testing.T) {
	out, err := runApp(t, "headless", "--frames", "100", "--frame-cost", "10ms")
	require.NoError(t, err)
	assert.Contains(t, out, "frames 100 ticks 59 max/frame 1 overruns 0")
}

func TestHeadlessCommand_GlobalFlags(t *testing.T) {
	out, err := runApp(t, "--hz", "10", "--overrun", "carry", "headless",
		"--frames", "20", "--frame-cost", "50ms", "--stall-at", "2", "--stall", "1s")
	require.NoError(t, err)
	// 20 frames cover 1.95s at 10Hz; carry keeps every interval
	assert.Contains(t, out, "frames 20 ticks 19 ")
	assert.Contains(t, out, "discarded 0s")
}

func TestHeadlessCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pacing.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("frequency: 10\nunlimited: true\n"), 0644))
	tracePath := filepath.Join(dir, "trace.txt")

	out, err := runApp(t, "--config", cfgPath, "headless", "--frames", "10", "--frame-cost", "100ms", "--trace", tracePath)
	require.NoError(t, err)
	assert.Contains(t, out, "frames 10 ticks 9 ")

	trace, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(trace)), "\n"), 11)
}

func TestHeadlessCommand_Errors(t *testing.T) {
	_, err := runApp(t, "headless")
	assert.Error(t, err, "frames is required")

	_, err = runApp(t, "--hz", "0", "headless", "--frames", "1")
	assert.Error(t, err)

	_, err = runApp(t, "--overrun", "bogus", "headless", "--frames", "1")
	assert.Error(t, err)
}
