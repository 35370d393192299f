// Package ui holds the window-independent parts of the interactive view:
// gesture tracking, the search line and HUD text.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/weather"
)

const (
	wheelStep = 1.1
	// ClickSlop is how far, in pixels, a press may travel and still count
	// as a click.
	ClickSlop     = 5.0
	maxSearchRune = 32
	maxEvents     = 5
)

// HelpLine is the controls summary shown at the bottom of the window.
const HelpLine = "drag: pan  wheel: zoom  /: search  R/N/T: weather  1-4: action"

// WheelZoom maps a wheel delta to a zoom factor.
func WheelZoom(dy float64) float64 {
	switch {
	case dy > 0:
		return wheelStep
	case dy < 0:
		return 1 / wheelStep
	}
	return 1
}

// Drag tracks one primary-button or single-touch gesture.
type Drag struct {
	Active    bool
	LastX     float64
	LastY     float64
	startX    float64
	startY    float64
	travelled float64
}

// Begin starts a gesture at (x, y).
func (d *Drag) Begin(x, y float64) {
	*d = Drag{Active: true, startX: x, startY: y, LastX: x, LastY: y}
}

// Move returns the delta since the last position.
func (d *Drag) Move(x, y float64) (dx, dy float64) {
	dx, dy = x-d.LastX, y-d.LastY
	d.LastX, d.LastY = x, y
	d.travelled = math.Max(d.travelled, math.Hypot(x-d.startX, y-d.startY))
	return dx, dy
}

// End finishes the gesture and reports whether it was a click.
func (d *Drag) End() bool {
	click := d.Active && d.travelled < ClickSlop
	d.Active = false
	return click
}

// Pinch tracks the distance between two touches.
type Pinch struct {
	dist float64
}

// Update returns the zoom factor since the previous sample, or 1 when the
// pinch just started.
func (p *Pinch) Update(x0, y0, x1, y1 float64) float64 {
	d := math.Hypot(x1-x0, y1-y0)
	prev := p.dist
	p.dist = d
	if prev <= 0 || d <= 0 {
		return 1
	}
	return d / prev
}

// Reset forgets the previous sample.
func (p *Pinch) Reset() { p.dist = 0 }

// SearchBox is the "/" query line.
type SearchBox struct {
	Open  bool
	query []rune
}

// Insert appends typed runes. The "/" that opened the box is skipped.
func (b *SearchBox) Insert(rs []rune) {
	for _, r := range rs {
		if r == '/' && len(b.query) == 0 {
			continue
		}
		if len(b.query) < maxSearchRune {
			b.query = append(b.query, r)
		}
	}
}

// Backspace drops the last rune.
func (b *SearchBox) Backspace() {
	if n := len(b.query); n > 0 {
		b.query = b.query[:n-1]
	}
}

// Query returns the current text.
func (b *SearchBox) Query() string { return string(b.query) }

// Close empties the box and returns what was typed.
func (b *SearchBox) Close() string {
	q := string(b.query)
	b.Open = false
	b.query = b.query[:0]
	return q
}

// State is everything the HUD shows for one frame.
type State struct {
	Stats      engine.Stats
	Events     []engine.Event
	Weather    weather.State
	Selected   *citizens.Citizen
	Featured   *citizens.Citizen
	Search     *engine.SearchResult
	SearchOpen bool
	Query      string
	Now        time.Time
}

// ProgressLine is the index of the line the tier progress bar sits under.
const ProgressLine = 2

// Lines formats the HUD panel, top to bottom.
func Lines(st State) []string {
	s := st.Stats
	lines := []string{
		fmt.Sprintf("%s  (tier %d)", s.TierName, s.TierIndex+1),
		fmt.Sprintf("Citizens: %s   Today: +%s", humanize.Comma(int64(s.CitizenCount)), humanize.Comma(int64(s.TodayJoined))),
		fmt.Sprintf("Next tier: %s  (%.0f%%)", humanize.Comma(int64(s.NextTierThreshold)), s.Progress*100),
	}

	if st.Weather.Kind != weather.Clear && st.Weather.Remaining > 0 {
		lines = append(lines, fmt.Sprintf("Weather: %s (%ds left)", st.Weather.Kind, int(st.Weather.Remaining.Seconds())))
	}
	if st.Featured != nil {
		lines = append(lines, "Citizen of the day: @"+st.Featured.Username)
	}

	switch {
	case st.SearchOpen:
		lines = append(lines, "Search: "+st.Query+"_")
	case st.Search != nil && st.Search.Found:
		lines = append(lines, "Found @"+st.Search.Username)
	case st.Search != nil:
		lines = append(lines, fmt.Sprintf("No citizen matching %q", st.Search.Username))
	}

	if c := st.Selected; c != nil {
		tags := ""
		if c.VIP {
			tags += " VIP"
		}
		if c.OldTimer {
			tags += " old-timer"
		}
		lines = append(lines,
			fmt.Sprintf("@%s%s", c.Username, tags),
			fmt.Sprintf("  %s, joined %s", c.State, humanize.RelTime(c.JoinedAt, st.Now, "ago", "from now")),
		)
	}

	if len(st.Events) > 0 {
		lines = append(lines, "")
		for i, e := range st.Events {
			if i == maxEvents {
				break
			}
			lines = append(lines, fmt.Sprintf("%s (%s)", e.Message, humanize.RelTime(e.Timestamp, st.Now, "ago", "from now")))
		}
	}
	return lines
}

// Truncate shortens s to n runes, marking the cut with "..".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-2])) + ".."
}
