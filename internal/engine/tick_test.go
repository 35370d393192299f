package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineHooks(t *testing.T) {
	sim, _ := newTestSim(t)
	eng := NewEngine(sim)

	var seconds, minutes int
	eng.OnSecond = func(uint64) { seconds++ }
	eng.OnMinute = func(uint64) { minutes++ }

	eng.Advance(FramesPerMinute + FramesPerSecond)

	frame, speed, running := eng.Status()
	assert.Equal(t, uint64(FramesPerMinute+FramesPerSecond), frame)
	assert.Equal(t, 1.0, speed)
	assert.False(t, running)
	assert.Equal(t, 61, seconds)
	assert.Equal(t, 1, minutes)

	// Without an OnFrame hook every frame updates the simulation: 61 s of
	// scene time moves the day cycle by 0.61.
	assert.InDelta(t, 0.91, sim.TimeOfDay(), 1e-6)
}

func TestEngineOnFrameReplacesUpdate(t *testing.T) {
	sim, _ := newTestSim(t)
	eng := NewEngine(sim)

	var stamps []time.Duration
	eng.OnFrame = func(_ uint64, ts time.Duration) { stamps = append(stamps, ts) }
	eng.Advance(3)

	assert.Equal(t, []time.Duration{eng.Interval, 2 * eng.Interval, 3 * eng.Interval}, stamps)
	assert.Equal(t, 0.3, sim.TimeOfDay())
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	sim, _ := newTestSim(t)
	eng := NewEngine(sim)
	eng.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		frame, _, _ := eng.Status()
		return frame > 5
	}, 2*time.Second, 5*time.Millisecond)

	var citizens int
	eng.Do(func(s *Simulation) { citizens = len(s.Citizens()) })
	assert.Zero(t, citizens)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	_, _, running := eng.Status()
	assert.False(t, running)
}

func TestEngineStop(t *testing.T) {
	sim, _ := newTestSim(t)
	eng := NewEngine(sim)
	eng.Interval = time.Millisecond

	done := make(chan struct{})
	go func() {
		eng.Run(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		_, _, running := eng.Status()
		return running
	}, 2*time.Second, 5*time.Millisecond)

	eng.SetSpeed(0)
	eng.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestSceneTime(t *testing.T) {
	assert.Equal(t, "0:00:00 (frame 0)", SceneTime(0))
	assert.Equal(t, "1:01:01 (frame 219660)", SceneTime(uint64(3661*FramesPerSecond)))
}
