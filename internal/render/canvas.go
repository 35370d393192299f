// Package render draws the city onto a Surface. Draw routines are
// deterministic: animation phases come from frame counters and the scene
// timestamp, never from a random source, so a snapshot of the same state
// always produces the same picture.
package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
)

// ErrNilSurface is returned when a canvas is created without a surface.
var ErrNilSurface = errors.New("render: nil surface")

// Surface is the minimal device a backend provides. All coordinates are in
// device pixels; the Canvas has already applied its transform.
type Surface interface {
	Size() (w, h float64)
	FillPath(p *Path, c color.NRGBA)
	// StrokePath strokes p; subpaths ending in Close are stroked closed.
	StrokePath(p *Path, width float64, c color.NRGBA)
	DrawImage(img image.Image, x, y, w, h, alpha float64)
	// DrawText draws s with its baseline at y.
	DrawText(s string, x, y float64, c color.NRGBA)
	TextWidth(s string) float64
}

// Align is horizontal text alignment.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// The transform is an f64.Aff3, row major: x' = m[0]x + m[1]y + m[2] and
// y' = m[3]x + m[4]y + m[5].
var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

func apply(m f64.Aff3, x, y float64) geom.Point {
	return geom.Point{X: m[0]*x + m[1]*y + m[2], Y: m[3]*x + m[4]*y + m[5]}
}

// then returns m followed by n in local space (m * n).
func then(m, n f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		m[0]*n[0] + m[1]*n[3], m[0]*n[1] + m[1]*n[4], m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3], m[3]*n[1] + m[4]*n[4], m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

func scaleFactor(m f64.Aff3) float64 {
	return math.Sqrt(math.Abs(m[0]*m[4] - m[1]*m[3]))
}

type canvasState struct {
	m     f64.Aff3
	alpha float64
}

// Canvas layers a 2D transform stack and a global alpha over a Surface and
// turns shapes into device-space paths.
type Canvas struct {
	s     Surface
	cur   canvasState
	stack []canvasState
}

// NewCanvas wraps s.
func NewCanvas(s Surface) (*Canvas, error) {
	if s == nil {
		return nil, ErrNilSurface
	}
	return &Canvas{s: s, cur: canvasState{m: identity, alpha: 1}}, nil
}

// Size returns the surface size in device pixels.
func (cv *Canvas) Size() (w, h float64) {
	return cv.s.Size()
}

// Save pushes the current transform and alpha.
func (cv *Canvas) Save() {
	cv.stack = append(cv.stack, cv.cur)
}

// Restore pops the last saved state. Unbalanced calls are ignored.
func (cv *Canvas) Restore() {
	if len(cv.stack) == 0 {
		return
	}
	cv.cur = cv.stack[len(cv.stack)-1]
	cv.stack = cv.stack[:len(cv.stack)-1]
}

func (cv *Canvas) Translate(x, y float64) {
	cv.cur.m = then(cv.cur.m, f64.Aff3{1, 0, x, 0, 1, y})
}

func (cv *Canvas) Scale(sx, sy float64) {
	cv.cur.m = then(cv.cur.m, f64.Aff3{sx, 0, 0, 0, sy, 0})
}

func (cv *Canvas) Rotate(theta float64) {
	sin, cos := math.Sincos(theta)
	cv.cur.m = then(cv.cur.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

// SetAlpha sets the global alpha applied to everything drawn until the
// next Restore.
func (cv *Canvas) SetAlpha(a float64) {
	cv.cur.alpha = geom.Clamp(a, 0, 1)
}

// Alpha returns the current global alpha.
func (cv *Canvas) Alpha() float64 {
	return cv.cur.alpha
}

// Apply maps a local point to device pixels.
func (cv *Canvas) Apply(x, y float64) geom.Point {
	return apply(cv.cur.m, x, y)
}

func (cv *Canvas) color(c color.NRGBA) color.NRGBA {
	return palette.WithAlpha(c, cv.cur.alpha)
}

func (cv *Canvas) visible(c color.NRGBA) bool {
	return c.A > 0 && cv.cur.alpha > 0
}

// builder appends local-space segments to a device-space path. Béziers
// survive affine maps, so only their control points are transformed.
type builder struct {
	m f64.Aff3
	p Path
}

func (cv *Canvas) path() *builder {
	return &builder{m: cv.cur.m}
}

func (b *builder) moveTo(x, y float64) {
	q := apply(b.m, x, y)
	b.p.MoveTo(float32(q.X), float32(q.Y))
}

func (b *builder) lineTo(x, y float64) {
	q := apply(b.m, x, y)
	b.p.LineTo(float32(q.X), float32(q.Y))
}

func (b *builder) quadTo(x1, y1, x2, y2 float64) {
	q1, q2 := apply(b.m, x1, y1), apply(b.m, x2, y2)
	b.p.QuadTo(float32(q1.X), float32(q1.Y), float32(q2.X), float32(q2.Y))
}

func (b *builder) cubicTo(x1, y1, x2, y2, x3, y3 float64) {
	q1, q2, q3 := apply(b.m, x1, y1), apply(b.m, x2, y2), apply(b.m, x3, y3)
	b.p.CubicTo(float32(q1.X), float32(q1.Y), float32(q2.X), float32(q2.Y), float32(q3.X), float32(q3.Y))
}

func (b *builder) close() {
	b.p.Close()
}

func (b *builder) polygon(pts []geom.Point, closed bool) *Path {
	for i, pt := range pts {
		if i == 0 {
			b.moveTo(pt.X, pt.Y)
			continue
		}
		b.lineTo(pt.X, pt.Y)
	}
	if closed {
		b.close()
	}
	return &b.p
}

// ellipse describes an ellipse centered at (cx, cy) with radii (rx, ry),
// rotated by rot.
type ellipse struct {
	cx, cy, rx, ry, rot float64
}

// at maps the unit-circle point (ux, uy) onto e.
func (e ellipse) at(ux, uy float64) (x, y float64) {
	sin, cos := math.Sincos(e.rot)
	ex, ey := ux*e.rx, uy*e.ry
	return e.cx + ex*cos - ey*sin, e.cy + ex*sin + ey*cos
}

// arc continues the path along e from angle a0 to a1 with one cubic per
// quarter turn or less. The pen must already be at angle a0.
func (b *builder) arc(e ellipse, a0, a1 float64) {
	n := int(math.Ceil(math.Abs(a1-a0) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := (a1 - a0) / float64(n)
	k := 4.0 / 3 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		s0, c0 := math.Sincos(a0 + float64(i)*step)
		s1, c1 := math.Sincos(a0 + float64(i+1)*step)
		x1, y1 := e.at(c0-k*s0, s0+k*c0)
		x2, y2 := e.at(c1+k*s1, s1-k*c1)
		x3, y3 := e.at(c1, s1)
		b.cubicTo(x1, y1, x2, y2, x3, y3)
	}
}

// ellipseArc starts a new subpath at angle a0 and follows e to a1.
func (b *builder) ellipseArc(e ellipse, a0, a1 float64) *Path {
	b.moveTo(e.at(math.Cos(a0), math.Sin(a0)))
	b.arc(e, a0, a1)
	return &b.p
}

func (cv *Canvas) fill(p *Path, c color.NRGBA) {
	cv.s.FillPath(p, cv.color(c))
}

func (cv *Canvas) stroke(p *Path, width float64, c color.NRGBA) {
	cv.s.StrokePath(p, width*scaleFactor(cv.cur.m), cv.color(c))
}

// Polygon fills the closed polygon through pts.
func (cv *Canvas) Polygon(fill color.NRGBA, pts ...geom.Point) {
	if len(pts) < 3 || !cv.visible(fill) {
		return
	}
	cv.fill(cv.path().polygon(pts, true), fill)
}

// StrokePolygon outlines the closed polygon through pts.
func (cv *Canvas) StrokePolygon(stroke color.NRGBA, width float64, pts ...geom.Point) {
	if len(pts) < 2 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.path().polygon(pts, true), width, stroke)
}

// Polyline strokes an open path.
func (cv *Canvas) Polyline(stroke color.NRGBA, width float64, pts ...geom.Point) {
	if len(pts) < 2 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.path().polygon(pts, false), width, stroke)
}

// Line strokes a single segment.
func (cv *Canvas) Line(x0, y0, x1, y1, width float64, stroke color.NRGBA) {
	cv.Polyline(stroke, width, geom.Point{X: x0, Y: y0}, geom.Point{X: x1, Y: y1})
}

func rectPoints(x, y, w, h float64) []geom.Point {
	return []geom.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

// Rect fills an axis-aligned (in local space) rectangle.
func (cv *Canvas) Rect(x, y, w, h float64, fill color.NRGBA) {
	cv.Polygon(fill, rectPoints(x, y, w, h)...)
}

// StrokeRect outlines a rectangle.
func (cv *Canvas) StrokeRect(x, y, w, h, width float64, stroke color.NRGBA) {
	cv.StrokePolygon(stroke, width, rectPoints(x, y, w, h)...)
}

func (cv *Canvas) roundRect(x, y, w, h, r float64) *Path {
	b := cv.path()
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return b.polygon(rectPoints(x, y, w, h), true)
	}
	corners := [4]geom.Point{
		{X: x + w - r, Y: y + r},
		{X: x + w - r, Y: y + h - r},
		{X: x + r, Y: y + h - r},
		{X: x + r, Y: y + r},
	}
	for i, c := range corners {
		e := ellipse{cx: c.X, cy: c.Y, rx: r, ry: r}
		a0 := -math.Pi/2 + float64(i)*math.Pi/2
		sx, sy := e.at(math.Cos(a0), math.Sin(a0))
		if i == 0 {
			b.moveTo(sx, sy)
		} else {
			b.lineTo(sx, sy)
		}
		b.arc(e, a0, a0+math.Pi/2)
	}
	b.close()
	return &b.p
}

// RoundRect fills a rectangle with rounded corners of radius r.
func (cv *Canvas) RoundRect(x, y, w, h, r float64, fill color.NRGBA) {
	if w <= 0 || h <= 0 || !cv.visible(fill) {
		return
	}
	cv.fill(cv.roundRect(x, y, w, h, r), fill)
}

// StrokeRoundRect outlines a rounded rectangle.
func (cv *Canvas) StrokeRoundRect(x, y, w, h, r, width float64, stroke color.NRGBA) {
	if w <= 0 || h <= 0 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.roundRect(x, y, w, h, r), width, stroke)
}

func (cv *Canvas) fullEllipse(e ellipse) *Path {
	b := cv.path()
	b.ellipseArc(e, 0, 2*math.Pi)
	b.close()
	return &b.p
}

// Ellipse fills a rotated ellipse.
func (cv *Canvas) Ellipse(cx, cy, rx, ry, rot float64, fill color.NRGBA) {
	if rx <= 0 || ry <= 0 || !cv.visible(fill) {
		return
	}
	cv.fill(cv.fullEllipse(ellipse{cx: cx, cy: cy, rx: rx, ry: ry, rot: rot}), fill)
}

// StrokeEllipse outlines an axis-aligned ellipse.
func (cv *Canvas) StrokeEllipse(cx, cy, rx, ry, width float64, stroke color.NRGBA) {
	if rx <= 0 || ry <= 0 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.fullEllipse(ellipse{cx: cx, cy: cy, rx: rx, ry: ry}), width, stroke)
}

// Circle fills a disk.
func (cv *Canvas) Circle(cx, cy, r float64, fill color.NRGBA) {
	cv.Ellipse(cx, cy, r, r, 0, fill)
}

// StrokeCircle outlines a disk.
func (cv *Canvas) StrokeCircle(cx, cy, r, width float64, stroke color.NRGBA) {
	cv.StrokeEllipse(cx, cy, r, r, width, stroke)
}

// Arc strokes the circular arc from start to end (radians, clockwise on
// screen since y grows downward).
func (cv *Canvas) Arc(cx, cy, r, start, end, width float64, stroke color.NRGBA) {
	if r <= 0 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.path().ellipseArc(ellipse{cx: cx, cy: cy, rx: r, ry: r}, start, end), width, stroke)
}

// EllipseSegment fills the region between the elliptical arc from start to
// end and its chord. Angles π to 2π give the upper half, a dome.
func (cv *Canvas) EllipseSegment(cx, cy, rx, ry, start, end float64, fill color.NRGBA) {
	if rx <= 0 || ry <= 0 || !cv.visible(fill) {
		return
	}
	b := cv.path()
	b.ellipseArc(ellipse{cx: cx, cy: cy, rx: rx, ry: ry}, start, end)
	b.close()
	cv.fill(&b.p, fill)
}

// StrokeEllipseArc strokes an elliptical arc.
func (cv *Canvas) StrokeEllipseArc(cx, cy, rx, ry, start, end, width float64, stroke color.NRGBA) {
	if rx <= 0 || ry <= 0 || !cv.visible(stroke) {
		return
	}
	cv.stroke(cv.path().ellipseArc(ellipse{cx: cx, cy: cy, rx: rx, ry: ry}, start, end), width, stroke)
}

// Quad strokes a quadratic curve.
func (cv *Canvas) Quad(x0, y0, cx, cy, x1, y1, width float64, stroke color.NRGBA) {
	if !cv.visible(stroke) {
		return
	}
	b := cv.path()
	b.moveTo(x0, y0)
	b.quadTo(cx, cy, x1, y1)
	cv.stroke(&b.p, width, stroke)
}

// QuadPolygon fills the closed shape that starts at start and follows one
// quadratic curve per (control, end) pair in rest.
func (cv *Canvas) QuadPolygon(fill color.NRGBA, start geom.Point, rest ...geom.Point) {
	if len(rest) < 2 || !cv.visible(fill) {
		return
	}
	b := cv.path()
	b.moveTo(start.X, start.Y)
	for i := 0; i+1 < len(rest); i += 2 {
		b.quadTo(rest[i].X, rest[i].Y, rest[i+1].X, rest[i+1].Y)
	}
	b.close()
	cv.fill(&b.p, fill)
}

// Text draws s with its baseline at y, aligned around x.
func (cv *Canvas) Text(s string, x, y float64, align Align, fill color.NRGBA) {
	if s == "" || !cv.visible(fill) {
		return
	}
	p := cv.Apply(x, y)
	switch align {
	case AlignCenter:
		p.X -= cv.s.TextWidth(s) / 2
	case AlignRight:
		p.X -= cv.s.TextWidth(s)
	}
	cv.s.DrawText(s, p.X, p.Y, cv.color(fill))
}

// TextWidth measures s in device pixels.
func (cv *Canvas) TextWidth(s string) float64 {
	return cv.s.TextWidth(s)
}

// Image draws img into the local rectangle (x, y, w, h). Rotation is not
// applied to images; the rectangle's transformed bounding box is used.
func (cv *Canvas) Image(img image.Image, x, y, w, h float64) {
	if img == nil || cv.cur.alpha <= 0 {
		return
	}
	p0 := cv.Apply(x, y)
	p1 := cv.Apply(x+w, y+h)
	minX, maxX := math.Min(p0.X, p1.X), math.Max(p0.X, p1.X)
	minY, maxY := math.Min(p0.Y, p1.Y), math.Max(p0.Y, p1.Y)
	cv.s.DrawImage(img, minX, minY, maxX-minX, maxY-minY, cv.cur.alpha)
}
