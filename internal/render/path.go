package render

import (
	"math"

	"github.com/shainyguy/followercity/internal/geom"
)

// PathSink consumes an outline in device pixels. Ebiten's *vector.Path
// satisfies it as is; backends adapt their own rasterizers to it.
type PathSink interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	QuadTo(x1, y1, x2, y2 float32)
	CubicTo(x1, y1, x2, y2, x3, y3 float32)
	Close()
}

type verb uint8

const (
	verbMove verb = iota
	verbLine
	verbQuad
	verbCubic
	verbClose
)

// Path is an outline of lines and Bézier curves in device pixels. Curves are
// kept as control points; flattening is up to the backend.
type Path struct {
	verbs []verb
	pts   []geom.Point
}

// PolygonPath builds a path through pts, closed if closed is set.
func PolygonPath(pts []geom.Point, closed bool) *Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(float32(pt.X), float32(pt.Y))
			continue
		}
		p.LineTo(float32(pt.X), float32(pt.Y))
	}
	if closed {
		p.Close()
	}
	return &p
}

func (p *Path) add(v verb, pts ...geom.Point) {
	p.verbs = append(p.verbs, v)
	p.pts = append(p.pts, pts...)
}

func pt32(x, y float32) geom.Point {
	return geom.Point{X: float64(x), Y: float64(y)}
}

func (p *Path) MoveTo(x, y float32) { p.add(verbMove, pt32(x, y)) }

func (p *Path) LineTo(x, y float32) { p.add(verbLine, pt32(x, y)) }

func (p *Path) QuadTo(x1, y1, x2, y2 float32) {
	p.add(verbQuad, pt32(x1, y1), pt32(x2, y2))
}

func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float32) {
	p.add(verbCubic, pt32(x1, y1), pt32(x2, y2), pt32(x3, y3))
}

func (p *Path) Close() { p.add(verbClose) }

// Empty reports whether the path has no segments to draw.
func (p *Path) Empty() bool {
	return p == nil || len(p.pts) < 2
}

// Closed reports whether the path ends with Close.
func (p *Path) Closed() bool {
	return len(p.verbs) > 0 && p.verbs[len(p.verbs)-1] == verbClose
}

// Points returns every stored point in order, control points included.
func (p *Path) Points() []geom.Point {
	return p.pts
}

// Bounds returns the box around all points. The box holds the curves too,
// since a Bézier never leaves the hull of its control points.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.pts {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	return minX, minY, maxX, maxY
}

// Replay feeds the path to dst.
func (p *Path) Replay(dst PathSink) {
	i := 0
	f := func(k int) float32 { return float32(p.pts[i+k].X) }
	g := func(k int) float32 { return float32(p.pts[i+k].Y) }
	for _, v := range p.verbs {
		switch v {
		case verbMove:
			dst.MoveTo(f(0), g(0))
			i++
		case verbLine:
			dst.LineTo(f(0), g(0))
			i++
		case verbQuad:
			dst.QuadTo(f(0), g(0), f(1), g(1))
			i += 2
		case verbCubic:
			dst.CubicTo(f(0), g(0), f(1), g(1), f(2), g(2))
			i += 3
		case verbClose:
			dst.Close()
		}
	}
}
