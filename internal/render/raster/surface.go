// Package raster is a headless render.Surface over an in-memory RGBA image,
// used for PNG snapshots and tests.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/render"
)

// Surface implements render.Surface. It is not safe for concurrent use.
type Surface struct {
	img  *image.RGBA
	face font.Face
	z    *vector.Rasterizer
}

// New creates a w x h transparent surface.
func New(w, h int, face font.Face) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", w, h)
	}
	if face == nil {
		return nil, fmt.Errorf("raster: nil font face")
	}
	return &Surface{
		img:  image.NewRGBA(image.Rect(0, 0, w, h)),
		face: face,
		z:    vector.NewRasterizer(w, h),
	}, nil
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Clear fills the surface with c.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// EncodePNG writes the current image as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (s *Surface) Size() (w, h float64) {
	b := s.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// clip returns the integer box around [minX, maxX] x [minY, maxY] clipped
// to the image.
func (s *Surface) clip(minX, minY, maxX, maxY float64) image.Rectangle {
	if math.IsInf(minX, 0) || math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return image.Rectangle{}
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	return r.Intersect(s.img.Bounds())
}

// pen feeds a path to the rasterizer, shifted into its clip box.
type pen struct {
	z      *vector.Rasterizer
	ox, oy float32
}

func (p pen) MoveTo(x, y float32) { p.z.MoveTo(x-p.ox, y-p.oy) }

func (p pen) LineTo(x, y float32) { p.z.LineTo(x-p.ox, y-p.oy) }

func (p pen) QuadTo(x1, y1, x2, y2 float32) {
	p.z.QuadTo(x1-p.ox, y1-p.oy, x2-p.ox, y2-p.oy)
}

func (p pen) CubicTo(x1, y1, x2, y2, x3, y3 float32) {
	p.z.CubeTo(x1-p.ox, y1-p.oy, x2-p.ox, y2-p.oy, x3-p.ox, y3-p.oy)
}

func (p pen) Close() { p.z.ClosePath() }

// fill rasterizes p with the nonzero rule. Curves go to the rasterizer as
// curves.
func (s *Surface) fill(p *render.Path, c color.NRGBA) {
	if c.A == 0 || p.Empty() {
		return
	}
	r := s.clip(p.Bounds())
	if r.Empty() {
		return
	}
	s.z.Reset(r.Dx(), r.Dy())
	s.z.DrawOp = draw.Over
	p.Replay(pen{z: s.z, ox: float32(r.Min.X), oy: float32(r.Min.Y)})
	s.z.Draw(s.img, r, image.NewUniform(c), image.Point{})
}

func (s *Surface) FillPath(p *render.Path, c color.NRGBA) {
	s.fill(p, c)
}

// StrokePath fills one quad per flattened segment. Quads are built with the
// same handedness relative to their segment so overlaps never cancel.
func (s *Surface) StrokePath(p *render.Path, width float64, c color.NRGBA) {
	if p.Empty() || width <= 0 || c.A == 0 {
		return
	}
	var fl flattener
	p.Replay(&fl)

	hw := width / 2
	quads := &render.Path{}
	for _, line := range fl.lines {
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			dx, dy := b.X-a.X, b.Y-a.Y
			l := math.Hypot(dx, dy)
			if l < geom.Epsilon {
				continue
			}
			nx, ny := -dy/l*hw, dx/l*hw
			quads.MoveTo(float32(a.X+nx), float32(a.Y+ny))
			quads.LineTo(float32(b.X+nx), float32(b.Y+ny))
			quads.LineTo(float32(b.X-nx), float32(b.Y-ny))
			quads.LineTo(float32(a.X-nx), float32(a.Y-ny))
			quads.Close()
		}
	}
	s.fill(quads, c)
}

func (s *Surface) DrawImage(img image.Image, x, y, w, h, alpha float64) {
	if img == nil || w <= 0 || h <= 0 || alpha <= 0 {
		return
	}
	dr := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	if dr.Empty() {
		return
	}
	var opts *draw.Options
	if alpha < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})}
	}
	draw.ApproxBiLinear.Scale(s.img, dr, img, img.Bounds(), draw.Over, opts)
}

func (s *Surface) DrawText(str string, x, y float64, c color.NRGBA) {
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(str)
}

func (s *Surface) TextWidth(str string) float64 {
	return float64(font.MeasureString(s.face, str)) / 64
}
