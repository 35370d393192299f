package render

import (
	"image"
	"math"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
)

// Name tags appear once the camera is zoomed in past this factor.
const NameZoom = 1.2

const (
	nameMaxRunes  = 12
	nameKeepRunes = 10
	nameTagMaxW   = 90
	nameTagPad    = 6
)

var (
	skin         = hex("#fcd9bd")
	skinEdge     = hex("#d4a574")
	highlightTag = palette.WithAlpha(hex("#fbbf24"), 0.95)
	plainTag     = palette.WithAlpha(palette.Black, 0.8)
	ink          = hex("#1e293b")
)

// DisplayName shortens long usernames for the name tag.
func DisplayName(username string) string {
	r := []rune(username)
	if len(r) > nameMaxRunes {
		return string(r[:nameKeepRunes]) + ".."
	}
	return username
}

// DrawCitizen draws c with its avatar, or the default face when avatar is
// nil, plus the state animation and the name tag.
func DrawCitizen(cv *Canvas, c *citizens.Citizen, avatar image.Image, env Env) {
	p := geom.ToIso(c.X, c.Y)
	sy := p.Y - c.JumpOffset

	bounce := 0.0
	if c.State == citizens.StateWalking {
		bounce = math.Sin(float64(c.AnimFrame)/5) * 2
	}
	scale := c.Scale
	if c.Highlighted {
		scale *= 1.2
	}

	cv.Save()
	cv.Translate(p.X, sy)
	cv.Scale(scale, scale)

	if c.Highlighted {
		cv.Save()
		cv.SetAlpha(0.35)
		cv.Ellipse(0, -14+bounce, 16, 24, 0, hex("#fbbf24"))
		cv.Restore()
	}

	dropShadow(cv, 0, 5, 8, 4)

	cv.Ellipse(0, -8+bounce, 8, 12, 0, c.Color)
	cv.StrokeEllipse(0, -8+bounce, 8, 12, 1.5, palette.Shade(c.Color, -30))

	headY := -24 + bounce
	if avatar != nil {
		cv.Image(avatar, -8, headY-8, 16, 16)
		ring := skinEdge
		if c.Highlighted {
			ring = hex("#fbbf24")
		}
		cv.StrokeCircle(0, headY, 8, 2, ring)
	} else {
		drawFace(cv, headY, c.Direction)
	}

	switch c.State {
	case citizens.StateWaving:
		cv.Save()
		cv.Translate(10, -15)
		cv.Rotate(math.Sin(float64(c.AnimFrame)/3)*0.5 - 0.5)
		cv.Ellipse(0, -8, 3, 6, 0, skin)
		cv.Restore()
	case citizens.StateWorking:
		cv.Save()
		cv.Translate(12, -20)
		cv.Rotate(math.Sin(float64(c.AnimFrame)/4) * 0.8)
		cv.Rect(-2, 0, 4, 15, trunk)
		cv.Rect(-4, 12, 8, 6, hex("#64748b"))
		cv.Restore()
	}

	cv.Restore()

	if env.Zoom > NameZoom || c.Highlighted {
		drawNameTag(cv, DisplayName(c.Username), p.X, sy-50*scale, c.Highlighted)
	}
}

func drawFace(cv *Canvas, headY float64, direction int) {
	cv.Circle(0, headY, 8, skin)
	cv.StrokeCircle(0, headY, 8, 1, skinEdge)

	eye := -1.0
	if direction > 0 {
		eye = 1
	}
	cv.Circle(-3+eye, headY-1, 1.5, ink)
	cv.Circle(3+eye, headY-1, 1.5, ink)

	cv.Arc(0, headY+2, 4, 0.1*math.Pi, 0.9*math.Pi, 1, windowFrame)
}

// drawNameTag centers a rounded label on (x, y).
func drawNameTag(cv *Canvas, name string, x, y float64, highlighted bool) {
	bg, fg := plainTag, palette.White
	if highlighted {
		bg, fg = highlightTag, ink
	}
	w := math.Min(cv.TextWidth(name)+2*nameTagPad, nameTagMaxW)
	cv.RoundRect(x-w/2, y-10, w, 20, 6, bg)
	// baseline sits a third of the line height below the middle
	cv.Text(name, x, y+4, AlignCenter, fg)
}
