// Package display hosts the city in an Ebiten window: a render.Surface over
// the screen image, mouse/touch/keyboard input and the HUD.
package display

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/shainyguy/followercity/internal/render"
)

// Surface implements render.Surface on an *ebiten.Image. Paths, curves
// included, are tessellated by vector.Path and drawn as one DrawTriangles
// call each.
type Surface struct {
	dst   *ebiten.Image
	face  font.Face
	white *ebiten.Image

	vs []ebiten.Vertex
	is []uint16

	// Uploaded images, dropped once a frame passes without drawing them.
	images map[image.Image]*ebiten.Image
	used   map[image.Image]bool
}

// NewSurface creates a surface drawing labels with face.
func NewSurface(face font.Face) *Surface {
	white := ebiten.NewImage(4, 4)
	white.Fill(color.White)
	return &Surface{
		face:   face,
		white:  white,
		images: make(map[image.Image]*ebiten.Image),
		used:   make(map[image.Image]bool),
	}
}

// Begin targets dst for the coming frame.
func (s *Surface) Begin(dst *ebiten.Image) {
	s.dst = dst
	clear(s.used)
}

// End releases images that were not drawn this frame.
func (s *Surface) End() {
	for src, img := range s.images {
		if !s.used[src] {
			img.Deallocate()
			delete(s.images, src)
		}
	}
	s.dst = nil
}

// Size returns the target size in pixels.
func (s *Surface) Size() (w, h float64) {
	b := s.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// vectorPath replays p into an ebiten path, which flattens its curves.
func vectorPath(p *render.Path) *vector.Path {
	var vp vector.Path
	p.Replay(&vp)
	return &vp
}

// FillPath fills p with the nonzero rule.
func (s *Surface) FillPath(p *render.Path, c color.NRGBA) {
	if p.Empty() || c.A == 0 {
		return
	}
	s.vs, s.is = vectorPath(p).AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	op := &ebiten.DrawTrianglesOptions{}
	op.FillRule = ebiten.NonZero
	op.AntiAlias = true
	s.draw(c, op)
}

// StrokePath strokes p with round joins and caps.
func (s *Surface) StrokePath(p *render.Path, width float64, c color.NRGBA) {
	if p.Empty() || c.A == 0 || width <= 0 {
		return
	}
	sop := &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
		LineCap:  vector.LineCapRound,
	}
	s.vs, s.is = vectorPath(p).AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], sop)
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	s.draw(c, op)
}

func (s *Surface) draw(c color.NRGBA, op *ebiten.DrawTrianglesOptions) {
	r, g, b, a := float32(c.R)/0xff, float32(c.G)/0xff, float32(c.B)/0xff, float32(c.A)/0xff
	for i := range s.vs {
		s.vs[i].SrcX = 1
		s.vs[i].SrcY = 1
		s.vs[i].ColorR = r
		s.vs[i].ColorG = g
		s.vs[i].ColorB = b
		s.vs[i].ColorA = a
	}
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	s.dst.DrawTriangles(s.vs, s.is, s.white, op)
}

// DrawImage draws img scaled into the w x h box at (x, y).
func (s *Surface) DrawImage(img image.Image, x, y, w, h, alpha float64) {
	if img == nil || alpha <= 0 {
		return
	}
	eimg, ok := s.images[img]
	if !ok {
		eimg = ebiten.NewImageFromImage(img)
		s.images[img] = eimg
	}
	s.used[img] = true

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	s.dst.DrawImage(eimg, op)
}

// DrawText draws str with its baseline at y.
func (s *Surface) DrawText(str string, x, y float64, c color.NRGBA) {
	if str == "" || c.A == 0 {
		return
	}
	text.Draw(s.dst, str, s.face, int(x), int(y), c)
}

// TextWidth returns the advance of str in pixels.
func (s *Surface) TextWidth(str string) float64 {
	return float64(font.MeasureString(s.face, str).Round())
}
