// Package geom provides the isometric projection and small numeric helpers
// shared by the simulation and the renderer.
package geom

import "math"

// Tile dimensions in screen pixels. A grid cell projects to a 2:1 diamond.
const (
	TileWidth  = 64
	TileHeight = 32
)

// Epsilon guards distance divisors.
const Epsilon = 1e-6

// Point is a 2D position, either in grid units or screen pixels depending on context.
type Point struct {
	X, Y float64
}

// ToIso projects grid coordinates to isometric screen coordinates
// (before camera offset and zoom).
func ToIso(x, y float64) Point {
	return Point{
		X: (x - y) * (TileWidth / 2),
		Y: (x + y) * (TileHeight / 2),
	}
}

// FromIso inverts ToIso.
func FromIso(sx, sy float64) Point {
	a := sx / (TileWidth / 2)
	b := sy / (TileHeight / 2)
	return Point{
		X: (a + b) / 2,
		Y: (b - a) / 2,
	}
}

// Dist returns the Euclidean distance between two points.
func Dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

// StepToward moves (x, y) toward (tx, ty) by at most step units and returns
// the new position together with the remaining distance. It never overshoots
// and never divides by a distance below Epsilon.
func StepToward(x, y, tx, ty, step float64) (nx, ny, remaining float64) {
	dx, dy := tx-x, ty-y
	d := math.Hypot(dx, dy)
	if d < Epsilon {
		return tx, ty, 0
	}
	if step >= d {
		return tx, ty, 0
	}
	nx = x + dx/d*step
	ny = y + dy/d*step
	return nx, ny, d - step
}
