// Package engine owns the city scene and the frame loop that drives it
// when no window is attached.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Frame schedule. The simulation is tuned for 60 frames per second.
const (
	FramesPerSecond = 60
	FramesPerMinute = 60 * FramesPerSecond
)

// Engine drives a Simulation forward one frame at a time.
type Engine struct {
	Frame    uint64        // Current frame counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base frame interval (default 1/60 s)
	Running  bool

	// Callbacks run inside the frame step, with the simulation lock held.
	OnFrame  func(frame uint64, ts time.Duration) // Every frame
	OnSecond func(frame uint64)                   // Every 60 frames
	OnMinute func(frame uint64)                   // Every 3600 frames

	sim *Simulation
	mu  sync.Mutex
	ts  time.Duration // scene clock, advanced by Interval per frame
}

// NewEngine creates a frame engine for sim. With no OnFrame callback set,
// each frame calls sim.Update.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second / FramesPerSecond,
		sim:      sim,
	}
}

// Run starts the frame loop. Blocks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.Running = true
	e.mu.Unlock()
	slog.Info("frame engine started", "frame", e.Frame, "speed", e.Speed)

	for e.running() {
		if ctx.Err() != nil {
			break
		}
		if e.speed() <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the frame interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.speed())
		if elapsed < target {
			select {
			case <-ctx.Done():
			case <-time.After(target - elapsed):
			}
		}
	}

	e.mu.Lock()
	e.Running = false
	e.mu.Unlock()
	slog.Info("frame engine stopped", "frame", e.Frame)
}

// Stop halts the frame loop after the current frame.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.Running = false
	e.mu.Unlock()
}

// SetSpeed changes the speed multiplier. Zero pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.Speed = speed
	e.mu.Unlock()
}

// Status returns the frame counter, speed and running flag.
func (e *Engine) Status() (frame uint64, speed float64, running bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Frame, e.Speed, e.Running
}

func (e *Engine) running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Running
}

func (e *Engine) speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Speed
}

// Do runs fn with exclusive access to the simulation. It is the only safe
// way to touch the scene from outside the loop.
func (e *Engine) Do(fn func(*Simulation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sim)
}

// Advance runs n frames immediately, without pacing.
func (e *Engine) Advance(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the simulation by one frame.
func (e *Engine) step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Frame++
	e.ts += e.Interval

	// Every frame: the scene update.
	if e.OnFrame != nil {
		e.OnFrame(e.Frame, e.ts)
	} else if e.sim != nil {
		e.sim.Update(e.ts)
	}

	// Every second: drain external feeds.
	if e.Frame%FramesPerSecond == 0 && e.OnSecond != nil {
		e.OnSecond(e.Frame)
	}

	// Every minute: status report.
	if e.Frame%FramesPerMinute == 0 && e.OnMinute != nil {
		e.OnMinute(e.Frame)
	}
}

// SceneTime returns a human-readable clock string for a frame number.
func SceneTime(frame uint64) string {
	totalSeconds := frame / FramesPerSecond
	seconds := totalSeconds % 60
	minutes := totalSeconds / 60 % 60
	hours := totalSeconds / 3600
	return fmt.Sprintf("%d:%02d:%02d (frame %d)", hours, minutes, seconds, frame)
}
