package render

import (
	"image/color"
	"math"
	"time"

	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/world"
)

// buildingFunc draws a building at the local origin, the top vertex of its
// tile.
type buildingFunc func(cv *Canvas, b world.Building, env Env)

var buildingDrawers = map[world.BuildingKind]buildingFunc{
	world.BuildingTent:       drawTent,
	world.BuildingCampfire:   drawCampfire,
	world.BuildingHouse:      drawHouse,
	world.BuildingTower:      drawTower,
	world.BuildingSkyscraper: drawSkyscraper,
	world.BuildingFuturistic: drawFuturistic,
	world.BuildingPark:       drawPark,
	world.BuildingITCenter:   drawITCenter,
	world.BuildingPlaza:      drawPlaza,
	world.BuildingBillboard:  drawBillboard,
}

// DrawBuilding draws b at its grid position, squashed vertically while
// under construction. Houses and campfires smoke once complete.
func DrawBuilding(cv *Canvas, b world.Building, env Env) {
	if b.Progress <= 0 {
		return
	}
	draw, ok := buildingDrawers[b.Kind]
	if !ok {
		return
	}
	p := geom.ToIso(float64(b.GridX), float64(b.GridY))

	cv.Save()
	defer cv.Restore()
	cv.Translate(p.X, p.Y)
	cv.Scale(1, b.Progress)

	cv.Save()
	cv.SetAlpha(0.3 * b.Progress)
	cv.Ellipse(20, 20, 30, 15, 0, palette.Black)
	cv.Restore()

	draw(cv, b, env)

	if (b.Kind == world.BuildingHouse || b.Kind == world.BuildingCampfire) && b.Complete() {
		drawSmoke(cv, 0, -60, b.SmokeTimer)
	}
}

var smokeGray = hex("#9ca3af")

func drawSmoke(cv *Canvas, x, y float64, timer time.Duration) {
	cv.Save()
	defer cv.Restore()
	cv.SetAlpha(0.4)
	ms := float64(timer) / float64(time.Millisecond)
	for i := 0; i < 3; i++ {
		offset := math.Mod(ms/50+float64(i*20), 60)
		size := 5 + offset/4
		cv.Circle(x+math.Sin(offset/5+float64(i))*5, y-offset, size, smokeGray)
	}
}

func pt(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }

func drawTent(cv *Canvas, b world.Building, _ Env) {
	h := 50 * b.Progress
	body := []geom.Point{pt(0, -h), pt(-25, 10), pt(25, 10)}
	cv.Polygon(palette.Lerp(hex("#f59e0b"), hex("#d97706"), 0.5), body...)
	cv.StrokePolygon(hex("#b45309"), 2, body...)

	cv.Polygon(hex("#78350f"), pt(0, 10), pt(-8, -5), pt(8, -5))
	cv.Line(0, -h, 0, -h-10, 3, hex("#92400e"))
	cv.Polygon(hex("#ef4444"), pt(0, -h-10), pt(15, -h-5), pt(0, -h))
}

func drawCampfire(cv *Canvas, _ world.Building, env Env) {
	logs := hex("#78350f")
	cv.Rect(-20, -5, 40, 8, logs)
	cv.Rect(-15, -10, 30, 8, logs)

	flicker := math.Sin(env.ms()/100) * 3
	flame := func(c color.NRGBA, scale float64) {
		tip := pt(0, -5-(35+flicker)*scale)
		cv.QuadPolygon(c, pt(-15*scale, -5),
			pt((-10+flicker)*scale, -5-30*scale), tip,
			pt((10-flicker)*scale, -5-30*scale), pt(15*scale, -5))
	}
	flame(hex("#dc2626"), 1)
	flame(hex("#f97316"), 0.75)
	flame(hex("#fef08a"), 0.4)

	cv.Save()
	cv.SetAlpha(0.3)
	cv.Circle(0, -15, 35, hex("#fbbf24"))
	cv.Restore()
}

var (
	windowDay   = hex("#87ceeb")
	windowLit   = hex("#fef08a")
	windowFrame = hex("#92400e")
)

func drawHouse(cv *Canvas, b world.Building, env Env) {
	h := 60 * b.Progress
	trim := hex("#d97706")

	left := []geom.Point{pt(-30, 0), pt(-30, -h+20), pt(0, -h-10), pt(0, 15)}
	cv.Polygon(hex("#fbbf24"), left...)
	cv.StrokePolygon(trim, 2, left...)

	right := []geom.Point{pt(30, 0), pt(30, -h+20), pt(0, -h-10), pt(0, 15)}
	cv.Polygon(hex("#f59e0b"), right...)
	cv.StrokePolygon(trim, 2, right...)

	roof := []geom.Point{pt(0, -h-30), pt(-35, -h+15), pt(0, -h), pt(35, -h+15)}
	cv.Polygon(hex("#dc2626"), roof...)
	cv.StrokePolygon(hex("#b91c1c"), 2, roof...)

	window := windowDay
	if b.LightOn && env.Night() {
		window = windowLit
	}
	cv.Rect(8, -h+30, 15, 15, window)
	cv.StrokeRect(8, -h+30, 15, 15, 2, windowFrame)

	cv.Rect(-20, -20, 15, 25, hex("#78350f"))
	cv.StrokeRect(-20, -20, 15, 25, 1, hex("#451a03"))

	cv.Rect(15, -h-15, 10, 20, hex("#7c2d12"))
}

func drawTower(cv *Canvas, b world.Building, env Env) {
	h := 100 * b.Progress
	edge := hex("#4338ca")

	left := []geom.Point{pt(-25, 10), pt(-20, -h+30), pt(0, -h+20), pt(0, 15)}
	cv.Polygon(hex("#6366f1"), left...)
	cv.StrokePolygon(edge, 2, left...)

	right := []geom.Point{pt(25, 10), pt(20, -h+30), pt(0, -h+20), pt(0, 15)}
	cv.Polygon(hex("#818cf8"), right...)
	cv.StrokePolygon(edge, 2, right...)

	top := []geom.Point{pt(0, -h-15), pt(-25, -h+25), pt(0, -h+15), pt(25, -h+25)}
	cv.Polygon(hex("#4f46e5"), top...)
	cv.StrokePolygon(edge, 2, top...)

	window := hex("#c7d2fe")
	if b.LightOn && env.Night() {
		window = windowLit
	}
	for i := 0; i < 4; i++ {
		y := -25 - float64(i*20)
		cv.Rect(5, y, 12, 10, window)
		cv.StrokeRect(5, y, 12, 10, 2, edge)
	}

	cv.Line(0, -h-15, 0, -h-35, 3, hex("#374151"))
	if math.Sin(env.ms()/500) > 0 {
		cv.Circle(0, -h-35, 4, hex("#ef4444"))
	}
}

// windowFlicker reports whether a skyscraper window is lit in the current
// half-second slot. The pattern is a hash of position and slot so it is
// stable between identical frames.
func windowFlicker(b world.Building, row, col, frame int) bool {
	slot := uint32(frame / 30)
	h := uint32(b.GridX)*73856093 ^ uint32(b.GridY)*19349663 ^ uint32(row)*83492791 ^ uint32(col)*2654435761 ^ slot*40503
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h%10 >= 3
}

func drawSkyscraper(cv *Canvas, b world.Building, env Env) {
	h := 140 * b.Progress
	edge := hex("#0369a1")

	left := []geom.Point{pt(-35, 10), pt(-30, -h+20), pt(0, -h+10), pt(0, 15)}
	cv.Polygon(palette.Lerp(hex("#0ea5e9"), hex("#0284c7"), 0.5), left...)
	cv.StrokePolygon(edge, 2, left...)

	right := []geom.Point{pt(35, 10), pt(30, -h+20), pt(0, -h+10), pt(0, 15)}
	cv.Polygon(palette.Lerp(hex("#0284c7"), hex("#38bdf8"), 0.5), right...)
	cv.StrokePolygon(edge, 2, right...)

	roof := []geom.Point{pt(0, -h-10), pt(-35, -h+15), pt(0, -h+5), pt(35, -h+15)}
	cv.Polygon(hex("#0c4a6e"), roof...)
	cv.StrokePolygon(edge, 2, roof...)

	lit := hex("#e0f2fe")
	if b.LightOn {
		lit = windowLit
	}
	dark := hex("#1e3a5f")
	for row := 0; row < 6; row++ {
		for col := 0; col < 2; col++ {
			c := dark
			if windowFlicker(b, row, col, env.Frame) {
				c = lit
			}
			cv.Rect(5+float64(col*15), -30-float64(row*18), 10, 12, c)
		}
	}

	cv.Line(0, -h-10, 0, -h-40, 4, hex("#64748b"))
}

func drawFuturistic(cv *Canvas, b world.Building, env Env) {
	h := 120 * b.Progress
	pulse := math.Sin(env.ms()/300)*0.3 + 0.7
	glow := hex("#6366f1")

	cv.Ellipse(0, 0, 40, 20, 0, hex("#1e1b4b"))
	cv.StrokeEllipse(0, 0, 40, 20, 2, glow)

	cv.EllipseSegment(0, -h/2, 35, h/2, math.Pi, 2*math.Pi, palette.Lerp(hex("#312e81"), hex("#4338ca"), 0.5))
	cv.EllipseSegment(0, -h/2, 18, h/2, math.Pi, 2*math.Pi, hex("#4338ca"))
	cv.StrokeEllipseArc(0, -h/2, 35, h/2, math.Pi, 2*math.Pi, 2, glow)

	cv.Save()
	cv.SetAlpha(pulse)
	for i := 0; i < 3; i++ {
		fi := float64(i)
		cv.StrokeEllipse(0, -20-fi*25, 30-fi*5, 10-fi*2, 2, hex("#a5b4fc"))
	}
	cv.Restore()

	cv.Circle(0, -h-10, 12, hex("#a855f7"))
	cv.Circle(0, -h-10, 6, hex("#f0abfc"))

	if math.Sin(env.ms()/1000) > 0.8 {
		cv.Save()
		cv.SetAlpha(0.5)
		cv.Polygon(hex("#c4b5fd"), pt(0, -h-22), pt(-5, -h-100), pt(5, -h-100))
		cv.Restore()
	}
}

var blossoms = []string{"#f472b6", "#fbbf24", "#f87171"}

func drawPark(cv *Canvas, _ world.Building, _ Env) {
	cv.Ellipse(0, 5, 35, 18, 0, hex("#22c55e"))
	cv.StrokeEllipse(0, 5, 35, 18, 2, hex("#16a34a"))

	cv.Rect(-5, -40, 10, 45, hex("#78350f"))

	cv.Circle(0, -50, 30, hex("#16a34a"))
	cv.Circle(-6, -56, 18, hex("#4ade80"))
	cv.StrokeCircle(0, -50, 30, 2, hex("#15803d"))

	for i := 0; i < 5; i++ {
		fi := float64(i)
		cv.Circle(-25+math.Sin(fi*1.5)*25, -5+math.Cos(fi*1.2)*10, 4, hex(blossoms[i%3]))
	}

	bench := hex("#92400e")
	cv.Rect(15, -5, 20, 4, bench)
	cv.Rect(17, -5, 3, 10, bench)
	cv.Rect(30, -5, 3, 10, bench)
}

func drawITCenter(cv *Canvas, b world.Building, env Env) {
	h := 80 * b.Progress
	cyan := hex("#22d3ee")

	shell := []geom.Point{pt(-40, 10), pt(-35, -h), pt(35, -h), pt(40, 10)}
	cv.Polygon(palette.Lerp(hex("#0f172a"), hex("#1e293b"), 0.5), shell...)
	cv.StrokePolygon(hex("#38bdf8"), 2, shell...)

	for i := 0; i < 4; i++ {
		cv.StrokeRect(-30+float64(i*18), -h+10, 14, h-25, 1, cyan)
	}

	cv.Text("IT", 0, -h+50, AlignCenter, cyan)

	cv.Rect(-38, -h-5, 76, 8, hex("#334155"))
	cv.Arc(20, -h-15, 10, math.Pi, 2*math.Pi, 3, hex("#64748b"))

	cv.Save()
	cv.SetAlpha(0.3 + math.Sin(env.ms()/500)*0.1)
	cv.Rect(-28, -h+15, 56, h-30, cyan)
	cv.Restore()
}

func drawPlaza(cv *Canvas, _ world.Building, env Env) {
	cv.Ellipse(0, 5, 45, 22, 0, pathTop)
	cv.StrokeEllipse(0, 5, 45, 22, 2, pathStroke)
	cv.Ellipse(0, 5, 30, 15, 0, pathBottom)

	cv.Ellipse(0, -5, 20, 10, 0, hex("#64748b"))
	cv.StrokeEllipse(0, -5, 20, 10, 2, hex("#475569"))
	cv.Rect(-5, -35, 10, 30, hex("#94a3b8"))

	phase := env.ms() / 200
	jet := []geom.Point{pt(0, -35)}
	for i := -15; i <= 15; i += 5 {
		fi := float64(i)
		jet = append(jet, pt(fi, -55+math.Abs(fi)*0.8+math.Sin(phase+fi)*3))
	}
	cv.Polyline(hex("#38bdf8"), 2, jet...)

	cv.Save()
	cv.SetAlpha(0.6)
	for i := 0; i < 8; i++ {
		fi := float64(i)
		angle := fi/8*2*math.Pi + phase/5
		dist := 10 + math.Sin(phase+fi)*5
		cv.Circle(math.Cos(angle)*dist, -40+math.Sin(angle)*3, 2, waterFoam)
	}
	cv.Restore()
}

func drawBillboard(cv *Canvas, _ world.Building, env Env) {
	pole := hex("#64748b")
	cv.Rect(-30, -60, 6, 70, pole)
	cv.Rect(24, -60, 6, 70, pole)

	cv.Rect(-45, -100, 90, 50, hex("#1e293b"))
	cv.StrokeRect(-45, -100, 90, 50, 3, hex("#475569"))

	cv.Rect(-40, -95, 40, 40, hex("#7c3aed"))
	cv.Rect(0, -95, 40, 40, hex("#db2777"))

	headline, tagline := env.Headline, env.Tagline
	if headline == "" {
		headline = DefaultHeadline
	}
	if tagline == "" {
		tagline = DefaultTagline
	}
	cv.Text(headline, 0, -72, AlignCenter, palette.White)
	cv.Text(tagline, 0, -60, AlignCenter, palette.White)

	for i := 0; i < 3; i++ {
		c := hex("#fbbf24")
		if math.Sin(env.ms()/300+float64(i)) > 0 {
			c = windowLit
		}
		cv.Circle(-25+float64(i*25), -105, 4, c)
	}
}
