package render

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/effects"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/traffic"
	"github.com/shainyguy/followercity/internal/weather"
	"github.com/shainyguy/followercity/internal/world"
)

type op struct {
	kind  string
	path  *Path
	pts   []geom.Point
	c     color.NRGBA
	text  string
	alpha float64
}

// recorder is a Surface that remembers every call.
type recorder struct {
	w, h float64
	ops  []op
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }

func (r *recorder) FillPath(p *Path, c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "fill", path: p, pts: p.Points(), c: c})
}

func (r *recorder) StrokePath(p *Path, _ float64, c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "stroke", path: p, pts: p.Points(), c: c})
}

func (r *recorder) DrawImage(_ image.Image, x, y, w, h, alpha float64) {
	r.ops = append(r.ops, op{kind: "image", pts: []geom.Point{{X: x, Y: y}, {X: x + w, Y: y + h}}, alpha: alpha})
}

func (r *recorder) DrawText(s string, x, y float64, c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "text", text: s, pts: []geom.Point{{X: x, Y: y}}, c: c})
}

func (r *recorder) TextWidth(s string) float64 { return float64(7 * len(s)) }

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func newCanvas(t *testing.T) (*Canvas, *recorder) {
	t.Helper()
	rec := &recorder{w: 800, h: 600}
	cv, err := NewCanvas(rec)
	require.NoError(t, err)
	return cv, rec
}

func TestNewCanvasNilSurface(t *testing.T) {
	_, err := NewCanvas(nil)
	assert.ErrorIs(t, err, ErrNilSurface)
}

func TestCanvasTransformStack(t *testing.T) {
	cv, rec := newCanvas(t)

	cv.Save()
	cv.Translate(10, 20)
	cv.Scale(2, 2)
	cv.Rect(0, 0, 1, 1, palette.Black)
	cv.Restore()
	cv.Rect(0, 0, 1, 1, palette.Black)

	require.Len(t, rec.ops, 2)
	assert.Equal(t, []geom.Point{{X: 10, Y: 20}, {X: 12, Y: 20}, {X: 12, Y: 22}, {X: 10, Y: 22}}, rec.ops[0].pts)
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, rec.ops[1].pts)
}

func TestCanvasRotate(t *testing.T) {
	cv, _ := newCanvas(t)
	cv.Rotate(3.141592653589793 / 2)
	p := cv.Apply(1, 0)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
}

func TestCanvasAlpha(t *testing.T) {
	cv, rec := newCanvas(t)

	cv.Save()
	cv.SetAlpha(0.5)
	cv.Rect(0, 0, 1, 1, palette.Black)
	cv.SetAlpha(0)
	cv.Rect(0, 0, 1, 1, palette.Black)
	cv.Restore()
	cv.Rect(0, 0, 1, 1, palette.Black)

	require.Len(t, rec.ops, 2, "fully transparent draws are skipped")
	assert.Equal(t, uint8(128), rec.ops[0].c.A)
	assert.Equal(t, uint8(255), rec.ops[1].c.A)
}

func TestCanvasRestoreUnbalanced(t *testing.T) {
	cv, _ := newCanvas(t)
	cv.Restore()
	cv.Translate(5, 0)
	assert.Equal(t, geom.Point{X: 5, Y: 0}, cv.Apply(0, 0))
}

// segments counts path verbs by kind.
type segments struct {
	moves, lines, quads, cubics, closes int
}

func (s *segments) MoveTo(float32, float32) { s.moves++ }
func (s *segments) LineTo(float32, float32) { s.lines++ }
func (s *segments) QuadTo(float32, float32, float32, float32) { s.quads++ }
func (s *segments) CubicTo(float32, float32, float32, float32, float32, float32) { s.cubics++ }
func (s *segments) Close() { s.closes++ }

func TestCircleIsSentAsCurves(t *testing.T) {
	cv, rec := newCanvas(t)
	cv.Circle(0, 0, 10, palette.White)
	require.Len(t, rec.ops, 1)

	var seg segments
	rec.ops[0].path.Replay(&seg)
	assert.Equal(t, segments{moves: 1, cubics: 4, closes: 1}, seg)
	assert.True(t, rec.ops[0].path.Closed())

	// every third point lies on the circle, at the quarter turns
	pts := rec.ops[0].pts
	require.Len(t, pts, 13)
	want := []geom.Point{{X: 10, Y: 0}, {X: 0, Y: 10}, {X: -10, Y: 0}, {X: 0, Y: -10}, {X: 10, Y: 0}}
	for i, w := range want {
		assert.InDelta(t, w.X, pts[3*i].X, 1e-4)
		assert.InDelta(t, w.Y, pts[3*i].Y, 1e-4)
	}
	// the first control point sits k = 4/3*tan(π/8) radii up the tangent
	assert.InDelta(t, 10, pts[1].X, 1e-4)
	assert.InDelta(t, 5.5228, pts[1].Y, 1e-3)
}

func TestCurvesFollowTheTransform(t *testing.T) {
	cv, rec := newCanvas(t)
	cv.Translate(100, 50)
	cv.Scale(2, 1)
	cv.Ellipse(0, 0, 10, 5, 0, palette.White)
	cv.Arc(0, 0, 10, 0, math.Pi/2, 1, palette.White)

	require.Len(t, rec.ops, 2)
	minX, minY, maxX, maxY := rec.ops[0].path.Bounds()
	assert.InDelta(t, 80, minX, 1e-4)
	assert.InDelta(t, 120, maxX, 1e-4)
	assert.InDelta(t, 45, minY, 1e-4)
	assert.InDelta(t, 55, maxY, 1e-4)

	arc := rec.ops[1]
	assert.False(t, arc.path.Closed())
	require.Len(t, arc.pts, 4, "a quarter turn is one cubic")
	assert.InDelta(t, 120, arc.pts[0].X, 1e-4)
	assert.InDelta(t, 100, arc.pts[3].X, 1e-4)
	assert.InDelta(t, 60, arc.pts[3].Y, 1e-4)
}

func TestQuadPolygon(t *testing.T) {
	cv, rec := newCanvas(t)
	cv.QuadPolygon(palette.White, geom.Point{X: 0, Y: 0},
		geom.Point{X: 5, Y: -10}, geom.Point{X: 10, Y: 0},
		geom.Point{X: 5, Y: 10}, geom.Point{X: 0, Y: 0})
	cv.QuadPolygon(palette.White, geom.Point{}, geom.Point{X: 1, Y: 1})
	require.Len(t, rec.ops, 1, "a lone control point draws nothing")

	var seg segments
	rec.ops[0].path.Replay(&seg)
	assert.Equal(t, segments{moves: 1, quads: 2, closes: 1}, seg)
}

func TestRoundRectCorners(t *testing.T) {
	cv, rec := newCanvas(t)
	cv.RoundRect(0, 0, 40, 20, 5, palette.White)
	cv.RoundRect(0, 0, 40, 20, 0, palette.White)
	require.Len(t, rec.ops, 2)

	var seg segments
	rec.ops[0].path.Replay(&seg)
	assert.Equal(t, segments{moves: 1, lines: 3, cubics: 4, closes: 1}, seg)
	minX, minY, maxX, maxY := rec.ops[0].path.Bounds()
	assert.InDelta(t, 0, minX, 1e-4)
	assert.InDelta(t, 0, minY, 1e-4)
	assert.InDelta(t, 40, maxX, 1e-4)
	assert.InDelta(t, 20, maxY, 1e-4)

	assert.Equal(t, rectPoints(0, 0, 40, 20), rec.ops[1].pts, "no radius, plain rectangle")
}

func TestTextAlignment(t *testing.T) {
	cv, rec := newCanvas(t)
	cv.Text("abcd", 100, 50, AlignCenter, palette.White)
	cv.Text("abcd", 100, 50, AlignRight, palette.White)
	require.Len(t, rec.ops, 2)
	assert.Equal(t, 86.0, rec.ops[0].pts[0].X)
	assert.Equal(t, 72.0, rec.ops[1].pts[0].X)
}

func TestSkyColors(t *testing.T) {
	top, bottom := SkyColors(0)
	assert.Equal(t, "#0f172a", palette.Hex(top))
	assert.Equal(t, "#1e293b", palette.Hex(bottom))

	top, bottom = SkyColors(0.25)
	assert.Equal(t, "#f97316", palette.Hex(top))
	assert.Equal(t, "#fef08a", palette.Hex(bottom))

	top, _ = SkyColors(0.5)
	assert.Equal(t, "#38bdf8", palette.Hex(top))

	top, _ = SkyColors(0.75)
	assert.Equal(t, "#f97316", palette.Hex(top))
}

func TestDrawSkyCoversSurface(t *testing.T) {
	cv, rec := newCanvas(t)
	DrawSky(cv, 0.3)
	require.Equal(t, skyBands, rec.count("fill"))
	first, last := rec.ops[0], rec.ops[len(rec.ops)-1]
	assert.Equal(t, 0.0, first.pts[0].Y)
	assert.GreaterOrEqual(t, last.pts[2].Y, 600.0)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "twelve_chars", DisplayName("twelve_chars"))
	assert.Equal(t, "thirteen_c..", DisplayName("thirteen_cha"+"r"))
	assert.Equal(t, "", DisplayName(""))
}

func TestEveryBuildingKindDraws(t *testing.T) {
	for _, k := range world.BuildingKinds() {
		cv, rec := newCanvas(t)
		DrawBuilding(cv, world.Building{Kind: k, GridX: 15, GridY: 15, Progress: 1}, Env{Zoom: 1})
		assert.NotEmpty(t, rec.ops, k.String())
	}
}

func TestBuildingUnderConstruction(t *testing.T) {
	cv, rec := newCanvas(t)
	DrawBuilding(cv, world.Building{Kind: world.BuildingHouse, Progress: 0}, Env{})
	assert.Empty(t, rec.ops)

	// smoke only once complete
	cv, partial := newCanvas(t)
	DrawBuilding(cv, world.Building{Kind: world.BuildingHouse, Progress: 0.5}, Env{})
	cv, done := newCanvas(t)
	DrawBuilding(cv, world.Building{Kind: world.BuildingHouse, Progress: 1}, Env{})
	assert.Equal(t, len(partial.ops)+3, len(done.ops))
}

func TestEveryDecorationKindDraws(t *testing.T) {
	for _, k := range world.DecorationKinds() {
		cv, rec := newCanvas(t)
		DrawDecoration(cv, world.Decoration{Kind: k, X: 3, Y: 4, Variant: 2}, Env{})
		assert.NotEmpty(t, rec.ops, k.String())
	}
}

func TestEveryVehicleKindDraws(t *testing.T) {
	for _, k := range []traffic.Kind{traffic.Car, traffic.Bus, traffic.Train, traffic.Drone, traffic.UFO} {
		cv, rec := newCanvas(t)
		DrawVehicle(cv, traffic.Vehicle{Kind: k, X: 15, Y: 5, Color: traffic.Colors[0], Direction: 1})
		assert.NotEmpty(t, rec.ops, k.String())
	}
}

func TestDrawingIsDeterministic(t *testing.T) {
	env := Env{Frame: 42, Time: 1234 * time.Millisecond, TimeOfDay: 0.8, Zoom: 1.5}
	draw := func() []op {
		cv, rec := newCanvas(t)
		for _, k := range world.BuildingKinds() {
			DrawBuilding(cv, world.Building{Kind: k, GridX: 3, GridY: 7, Progress: 1, LightOn: true}, env)
		}
		DrawWeather(cv, weather.State{Kind: weather.Snow, Particles: []weather.Particle{{X: 1, Y: 2, Size: 3, Opacity: 1}}}, env)
		return rec.ops
	}
	assert.Equal(t, draw(), draw())
}

func testCitizen() *citizens.Citizen {
	return &citizens.Citizen{
		ID: "1", Username: "alexey_dev", X: 10, Y: 10,
		Color: palette.MustHex("#3b82f6"), Scale: 1, Direction: 1,
		State: citizens.StateWorking,
	}
}

func TestCitizenNameTag(t *testing.T) {
	c := testCitizen()

	cv, rec := newCanvas(t)
	DrawCitizen(cv, c, nil, Env{Zoom: 1})
	assert.Zero(t, rec.count("text"))

	cv, rec = newCanvas(t)
	DrawCitizen(cv, c, nil, Env{Zoom: NameZoom + 0.1})
	require.Equal(t, 1, rec.count("text"))
	assert.Equal(t, "alexey_dev", rec.ops[len(rec.ops)-1].text)

	c.Highlighted = true
	cv, rec = newCanvas(t)
	DrawCitizen(cv, c, nil, Env{Zoom: 1})
	assert.Equal(t, 1, rec.count("text"), "highlighted citizens always show a name")
}

func TestCitizenAvatar(t *testing.T) {
	c := testCitizen()
	avatar := image.NewRGBA(image.Rect(0, 0, 4, 4))

	cv, rec := newCanvas(t)
	DrawCitizen(cv, c, avatar, Env{Zoom: 1})
	require.Equal(t, 1, rec.count("image"))

	var img op
	for _, o := range rec.ops {
		if o.kind == "image" {
			img = o
		}
	}
	p := geom.ToIso(c.X, c.Y)
	assert.InDelta(t, p.X-8, img.pts[0].X, 1e-9)
	assert.InDelta(t, 16, img.pts[1].X-img.pts[0].X, 1e-9)
}

func TestDrawWeather(t *testing.T) {
	cv, rec := newCanvas(t)
	DrawWeather(cv, weather.State{Kind: weather.Clear, LightningFlash: 1}, Env{})
	assert.Empty(t, rec.ops)

	cv, rec = newCanvas(t)
	DrawWeather(cv, weather.State{Kind: weather.Rainbow, RainbowOpacity: 1}, Env{})
	assert.Equal(t, len(rainbow), rec.count("stroke"))
	assert.Equal(t, uint8(102), rec.ops[0].c.A)

	cv, rec = newCanvas(t)
	DrawWeather(cv, weather.State{
		Kind:           weather.Storm,
		LightningFlash: 1,
		Particles:      []weather.Particle{{X: 10, Y: 10, VX: -4, VY: 15, Opacity: 0.5}},
	}, Env{})
	assert.Equal(t, 1, rec.count("stroke"))
	assert.Equal(t, 1+10, rec.count("fill"), "flash plus ten puddles")
}

func TestDrawParticleFades(t *testing.T) {
	cv, rec := newCanvas(t)
	DrawParticle(cv, effects.Particle{X: 5, Y: 5, Size: 8, Color: palette.White, Life: 30, MaxLife: 120})
	require.Len(t, rec.ops, 1)
	assert.Equal(t, uint8(64), rec.ops[0].c.A)
}
