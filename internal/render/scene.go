package render

import (
	"image/color"
	"math"
	"time"

	"github.com/shainyguy/followercity/internal/effects"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/world"
)

// Env is the per-frame context shared by the draw routines.
type Env struct {
	Frame     int           // frame counter
	Time      time.Duration // scene clock
	TimeOfDay float64       // [0, 1)
	Zoom      float64

	// Billboard copy. Empty strings fall back to DefaultHeadline and
	// DefaultTagline.
	Headline string
	Tagline  string
}

// Billboard defaults.
const (
	DefaultHeadline = "@followercity"
	DefaultTagline  = "Digital Empire"
)

// ms returns the scene clock in milliseconds, the unit all wave phases use.
func (e Env) ms() float64 {
	return float64(e.Time) / float64(time.Millisecond)
}

// Night reports whether lit windows should glow.
func (e Env) Night() bool {
	return e.TimeOfDay > 0.7
}

var hex = palette.MustHex

type skyPhase struct {
	top0, top1       color.NRGBA
	bottom0, bottom1 color.NRGBA
}

// Four quarters of the day: dawn, morning, afternoon, dusk.
var skyPhases = [4]skyPhase{
	{hex("#0f172a"), hex("#f97316"), hex("#1e293b"), hex("#fef08a")},
	{hex("#f97316"), hex("#38bdf8"), hex("#fef08a"), hex("#e0f2fe")},
	{hex("#38bdf8"), hex("#f97316"), hex("#e0f2fe"), hex("#fbbf24")},
	{hex("#f97316"), hex("#0f172a"), hex("#fbbf24"), hex("#1e293b")},
}

const skyBands = 32

// SkyColors returns the top and bottom gradient stops for a time of day.
func SkyColors(timeOfDay float64) (top, bottom color.NRGBA) {
	tod := math.Mod(timeOfDay, 1)
	if tod < 0 {
		tod++
	}
	i := geom.Clamp(int(tod*4), 0, 3)
	t := math.Mod(tod, 0.25) * 4
	p := skyPhases[i]
	return palette.Lerp(p.top0, p.top1, t), palette.Lerp(p.bottom0, p.bottom1, t)
}

// DrawSky fills the whole surface with the vertical day-cycle gradient.
func DrawSky(cv *Canvas, timeOfDay float64) {
	w, h := cv.Size()
	top, bottom := SkyColors(timeOfDay)
	band := h / skyBands
	for i := 0; i < skyBands; i++ {
		c := palette.Lerp(top, bottom, (float64(i)+0.5)/skyBands)
		// overlap by a pixel to hide seams between bands
		cv.Rect(0, float64(i)*band, w, band+1, c)
	}
}

// DrawCloud draws one puffy cloud in screen space.
func DrawCloud(cv *Canvas, c effects.Cloud) {
	cv.Save()
	defer cv.Restore()
	cv.SetAlpha(c.Opacity)

	s := c.Scale
	cv.Circle(c.X, c.Y, 20*s, palette.White)
	cv.Circle(c.X+25*s, c.Y-5*s, 25*s, palette.White)
	cv.Circle(c.X+50*s, c.Y, 20*s, palette.White)
	cv.Circle(c.X+20*s, c.Y+10*s, 15*s, palette.White)
}

// tileHalves returns the upper and lower triangles of the diamond whose top
// vertex is at (sx, sy).
func tileHalves(sx, sy float64) (upper, lower []geom.Point) {
	const hw, hh = geom.TileWidth / 2, geom.TileHeight / 2
	upper = []geom.Point{{X: sx, Y: sy}, {X: sx + hw, Y: sy + hh}, {X: sx - hw, Y: sy + hh}}
	lower = []geom.Point{{X: sx + hw, Y: sy + hh}, {X: sx, Y: sy + 2*hh}, {X: sx - hw, Y: sy + hh}}
	return upper, lower
}

func tileOutline(sx, sy float64) []geom.Point {
	const hw, hh = geom.TileWidth / 2, geom.TileHeight / 2
	return []geom.Point{{X: sx, Y: sy}, {X: sx + hw, Y: sy + hh}, {X: sx, Y: sy + 2*hh}, {X: sx - hw, Y: sy + hh}}
}

// drawDiamond fills a tile with a two-stop vertical gradient and outlines it.
func drawDiamond(cv *Canvas, sx, sy float64, from, to, stroke color.NRGBA) {
	upper, lower := tileHalves(sx, sy)
	cv.Polygon(palette.Lerp(from, to, 0.25), upper...)
	cv.Polygon(palette.Lerp(from, to, 0.75), lower...)
	cv.StrokePolygon(stroke, 1, tileOutline(sx, sy)...)
}

var (
	pathTop    = hex("#d4a574")
	pathBottom = hex("#c4956a")
	pathStroke = hex("#b8956a")
)

// groundTintPct is the shade swing applied at a tint of ±1.
const groundTintPct = 6

// DrawGroundTile draws one grass or path tile. Grass takes the tier
// background shaded by tint in [-1, 1].
func DrawGroundTile(cv *Canvas, x, y int, background color.NRGBA, tint float64, path bool) {
	p := geom.ToIso(float64(x), float64(y))
	if path {
		drawDiamond(cv, p.X, p.Y, pathTop, pathBottom, pathStroke)
		return
	}
	base := palette.Shade(background, tint*groundTintPct)
	drawDiamond(cv, p.X, p.Y, base, palette.Shade(base, -15), palette.Shade(base, -25))
}

var (
	waterDeep    = hex("#0284c7")
	waterShallow = hex("#0ea5e9")
	waterLight   = hex("#38bdf8")
	waterEdge    = hex("#0369a1")
	waterFoam    = hex("#7dd3fc")
)

// DrawRiverTile draws a water tile with a ripple that runs along its flow.
func DrawRiverTile(cv *Canvas, t world.RiverTile, env Env) {
	p := geom.ToIso(float64(t.X), float64(t.Y))
	upper, lower := tileHalves(p.X, p.Y)
	cv.Polygon(palette.Lerp(waterShallow, waterLight, 0.5), upper...)
	cv.Polygon(palette.Lerp(waterLight, waterDeep, 0.5), lower...)
	cv.StrokePolygon(waterEdge, 1, tileOutline(p.X, p.Y)...)

	wave := math.Sin(env.ms()/500+float64(t.X+t.Y)) * 3
	mid := p.Y + geom.TileHeight/2 + wave
	cv.Save()
	defer cv.Restore()
	cv.SetAlpha(0.4)
	if t.Flow == world.Vertical {
		cv.Quad(p.X-12, mid-6, p.X, mid-3, p.X+12, mid+6, 1, waterFoam)
		return
	}
	cv.Quad(p.X-15, mid, p.X, mid-3, p.X+15, mid, 1, waterFoam)
}

var (
	bridgeDeck = hex("#92400e")
	bridgeRail = hex("#78350f")
)

// DrawBridge draws a plank bridge with railing posts.
func DrawBridge(cv *Canvas, b world.Bridge) {
	p := geom.ToIso(float64(b.X), float64(b.Y))
	cv.Save()
	defer cv.Restore()
	cv.Translate(p.X, p.Y)
	if b.Orientation == world.Vertical {
		cv.Scale(-1, 1)
	}

	deck := rectPoints(-25, -5, 50, 15)
	cv.Polygon(bridgeDeck, deck...)
	cv.StrokePolygon(bridgeRail, 2, deck...)
	cv.Line(-25, -12, 25, -12, 2, bridgeRail)
	for i := -2; i <= 2; i++ {
		cv.Rect(float64(i*10)-2, -12, 4, 8, bridgeRail)
	}
}
