package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/weather"
)

func TestWheelZoom(t *testing.T) {
	assert.Equal(t, 1.1, WheelZoom(3))
	assert.InDelta(t, 1/1.1, WheelZoom(-0.5), 1e-12)
	assert.Equal(t, 1.0, WheelZoom(0))
}

func TestDragClickVersusPan(t *testing.T) {
	var d Drag
	d.Begin(100, 100)
	dx, dy := d.Move(102, 101)
	assert.Equal(t, 2.0, dx)
	assert.Equal(t, 1.0, dy)
	assert.True(t, d.End(), "a small wobble is still a click")
	assert.False(t, d.Active)

	d.Begin(100, 100)
	d.Move(140, 100)
	d.Move(101, 100) // back near the start
	assert.False(t, d.End(), "travel is measured at its furthest point")

	assert.False(t, d.End(), "ending twice never clicks")
}

func TestPinch(t *testing.T) {
	var p Pinch
	assert.Equal(t, 1.0, p.Update(0, 0, 100, 0), "first sample only primes")
	assert.InDelta(t, 1.5, p.Update(0, 0, 150, 0), 1e-12)
	assert.InDelta(t, 0.5, p.Update(0, 0, 75, 0), 1e-12)

	p.Reset()
	assert.Equal(t, 1.0, p.Update(0, 0, 10, 0))
}

func TestSearchBox(t *testing.T) {
	var b SearchBox
	b.Open = true
	b.Insert([]rune("/al"))
	assert.Equal(t, "al", b.Query(), "the opening slash is dropped")
	b.Insert([]rune("/x"))
	assert.Equal(t, "al/x", b.Query())
	b.Backspace()
	b.Backspace()
	assert.Equal(t, "al", b.Query())

	b.Insert([]rune(strings.Repeat("z", 100)))
	assert.Len(t, []rune(b.Query()), maxSearchRune)

	q := b.Close()
	assert.Len(t, q, maxSearchRune)
	assert.False(t, b.Open)
	assert.Empty(t, b.Query())
	b.Backspace()
}

func TestLines(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := State{
		Stats: engine.Stats{
			CitizenCount: 1234, TierIndex: 3, TierName: "City",
			Progress: 0.0585, NextTierThreshold: 5000, TodayJoined: 12,
		},
		Weather: weather.State{Kind: weather.Rain, Remaining: 42 * time.Second},
		Selected: &citizens.Citizen{
			Username: "maria", VIP: true, State: citizens.StateWaving,
			JoinedAt: now.Add(-48 * time.Hour),
		},
		Search: &engine.SearchResult{Found: false, Username: "zed"},
		Events: []engine.Event{
			{Message: "maria joined the city!", Timestamp: now.Add(-3 * time.Minute)},
		},
		Now: now,
	}

	lines := Lines(st)
	require.GreaterOrEqual(t, len(lines), 8)
	assert.Equal(t, "City  (tier 4)", lines[0])
	assert.Equal(t, "Citizens: 1,234   Today: +12", lines[1])
	assert.Equal(t, "Next tier: 5,000  (6%)", lines[ProgressLine])
	assert.Contains(t, lines, "Weather: rain (42s left)")
	assert.Contains(t, lines, `No citizen matching "zed"`)
	assert.Contains(t, lines, "@maria VIP")
	assert.Contains(t, lines, "  waving, joined 2 days ago")
	assert.Equal(t, "maria joined the city! (3 minutes ago)", lines[len(lines)-1])

	st.SearchOpen, st.Query = true, "ma"
	assert.Contains(t, Lines(st), "Search: ma_")
}

func TestLinesCapsEvents(t *testing.T) {
	now := time.Now()
	st := State{Now: now}
	for i := 0; i < 12; i++ {
		st.Events = append(st.Events, engine.Event{Message: "e", Timestamp: now})
	}
	// Three stats lines, a blank separator and the capped feed.
	assert.Len(t, Lines(st), 3+1+maxEvents)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefgh..", Truncate("abcdefghijklmnop", 10))
}
