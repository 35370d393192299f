package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToIso(t *testing.T) {
	for _, tc := range []struct {
		x, y   float64
		sx, sy float64
	}{
		{0, 0, 0, 0},
		{1, 0, 32, 16},
		{0, 1, -32, 16},
		{15, 15, 0, 480},
		{30, 0, 960, 480},
	} {
		p := ToIso(tc.x, tc.y)
		assert.InDelta(t, tc.sx, p.X, 1e-9, "x for (%v,%v)", tc.x, tc.y)
		assert.InDelta(t, tc.sy, p.Y, 1e-9, "y for (%v,%v)", tc.x, tc.y)
	}
}

func TestFromIsoInvertsToIso(t *testing.T) {
	for _, g := range []Point{{0, 0}, {3.5, 7.25}, {29, 1}, {-4, 12}} {
		p := ToIso(g.X, g.Y)
		back := FromIso(p.X, p.Y)
		assert.InDelta(t, g.X, back.X, 1e-9)
		assert.InDelta(t, g.Y, back.Y, 1e-9)
	}
}

func TestStepTowardNeverOvershoots(t *testing.T) {
	x, y, rem := StepToward(0, 0, 3, 4, 1)
	assert.InDelta(t, 0.6, x, 1e-9)
	assert.InDelta(t, 0.8, y, 1e-9)
	assert.InDelta(t, 4.0, rem, 1e-9)

	x, y, rem = StepToward(0, 0, 0.01, 0, 1)
	assert.Equal(t, 0.01, x)
	assert.Equal(t, 0.0, y)
	assert.Zero(t, rem)

	// Coincident points must not divide by zero.
	x, y, rem = StepToward(2, 2, 2, 2, 0.5)
	assert.Equal(t, 2.0, x)
	assert.Equal(t, 2.0, y)
	assert.Zero(t, rem)
}

func TestClampAndLerp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 2.0))
	assert.Equal(t, 2.0, Clamp(9.0, 0.5, 2.0))
	assert.Equal(t, 7, Clamp(7, 0, 10))
	assert.InDelta(t, 5.0, Lerp(0.0, 10.0, 0.5), 1e-9)
}
