package raster

import (
	"math"

	"github.com/shainyguy/followercity/internal/geom"
)

// flatTolerance is the longest chord, in pixels, a flattened curve uses.
const flatTolerance = 3.0

// flattener turns a path into polylines for stroking. x/image/vector fills
// curves but has no stroker, so strokes need their curves as segments.
type flattener struct {
	lines [][]geom.Point
	pen   geom.Point
}

func (f *flattener) MoveTo(x, y float32) {
	f.pen = geom.Point{X: float64(x), Y: float64(y)}
	f.lines = append(f.lines, []geom.Point{f.pen})
}

func (f *flattener) to(p geom.Point) {
	if len(f.lines) == 0 {
		f.lines = append(f.lines, []geom.Point{f.pen})
	}
	last := len(f.lines) - 1
	f.lines[last] = append(f.lines[last], p)
	f.pen = p
}

func (f *flattener) LineTo(x, y float32) {
	f.to(geom.Point{X: float64(x), Y: float64(y)})
}

// steps picks a segment count from the control polygon length, which bounds
// the curve length.
func steps(pts ...geom.Point) int {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return geom.Clamp(int(math.Ceil(l/flatTolerance)), 1, 64)
}

func (f *flattener) QuadTo(x1, y1, x2, y2 float32) {
	p0 := f.pen
	p1 := geom.Point{X: float64(x1), Y: float64(y1)}
	p2 := geom.Point{X: float64(x2), Y: float64(y2)}
	n := steps(p0, p1, p2)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		f.to(geom.Point{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		})
	}
}

func (f *flattener) CubicTo(x1, y1, x2, y2, x3, y3 float32) {
	p0 := f.pen
	p1 := geom.Point{X: float64(x1), Y: float64(y1)}
	p2 := geom.Point{X: float64(x2), Y: float64(y2)}
	p3 := geom.Point{X: float64(x3), Y: float64(y3)}
	n := steps(p0, p1, p2, p3)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		f.to(geom.Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
}

// Close returns to the subpath's first point.
func (f *flattener) Close() {
	if len(f.lines) == 0 {
		return
	}
	line := f.lines[len(f.lines)-1]
	if len(line) > 1 {
		f.to(line[0])
	}
}
