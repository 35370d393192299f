package render

import (
	"math"

	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/world"
)

type decorationFunc func(cv *Canvas, variant int, env Env)

var decorationDrawers = map[world.DecorationKind]decorationFunc{
	world.DecorationTree:     drawTree,
	world.DecorationBush:     drawBush,
	world.DecorationFlower:   drawFlower,
	world.DecorationRock:     drawRock,
	world.DecorationLamp:     drawLamp,
	world.DecorationBench:    drawBench,
	world.DecorationFountain: drawFountain,
}

// DrawDecoration draws a piece of scenery at its grid position.
func DrawDecoration(cv *Canvas, d world.Decoration, env Env) {
	draw, ok := decorationDrawers[d.Kind]
	if !ok {
		return
	}
	p := geom.ToIso(float64(d.X), float64(d.Y))
	cv.Save()
	defer cv.Restore()
	cv.Translate(p.X, p.Y)
	draw(cv, d.Variant, env)
}

func dropShadow(cv *Canvas, cx, cy, rx, ry float64) {
	cv.Save()
	cv.SetAlpha(0.3)
	cv.Ellipse(cx, cy, rx, ry, 0, palette.Black)
	cv.Restore()
}

var (
	foliage = []string{"#22c55e", "#16a34a", "#15803d"}
	shrubs  = []string{"#22c55e", "#16a34a", "#4ade80"}
	petals  = []string{"#f472b6", "#fbbf24", "#f87171", "#a855f7", "#3b82f6"}
	trunk   = hex("#78350f")
)

func drawTree(cv *Canvas, variant int, env Env) {
	sway := math.Sin(env.ms()/1000+float64(variant)) * 2
	dropShadow(cv, 10, 5, 20, 8)

	cv.Rect(-4, -35, 8, 40, trunk)

	base := hex(foliage[variant%len(foliage)])
	for i := 0; i < 3; i++ {
		fi := float64(i)
		x := sway * (fi + 1) * 0.3
		y := -45 - fi*18
		r := 25 - fi*5
		cv.Circle(x, y, r, base)
		cv.Circle(x-r*0.2, y-r*0.2, r*0.55, palette.Shade(base, 20))
		cv.StrokeCircle(x, y, r, 1, palette.Shade(base, -20))
	}
}

func drawBush(cv *Canvas, variant int, _ Env) {
	dropShadow(cv, 5, 3, 12, 5)

	c := hex(shrubs[variant%len(shrubs)])
	for i := 0; i < 3; i++ {
		cv.Circle(float64((i-1)*8), -8, 10+float64(i%2)*3, palette.Shade(c, float64((i-1)*10)))
	}
	if variant%2 != 0 {
		return
	}
	for i := 0; i < 4; i++ {
		cv.Circle(-8+float64(i*6), -12+float64(i%2)*5, 3, hex(blossoms[i%3]))
	}
}

func drawFlower(cv *Canvas, variant int, env Env) {
	sway := math.Sin(env.ms()/800+float64(variant)) * 3
	c := hex(petals[variant%len(petals)])

	cv.Quad(0, 0, sway/2, -10, sway, -18, 2, hex("#16a34a"))
	for i := 0; i < 5; i++ {
		angle := float64(i) / 5 * 2 * math.Pi
		cv.Ellipse(sway+math.Cos(angle)*4, -18+math.Sin(angle)*4, 3, 5, angle, c)
	}
	cv.Circle(sway, -18, 3, hex("#fbbf24"))
}

var rockSizes = [3][2]float64{{20, 12}, {15, 10}, {25, 15}}

func drawRock(cv *Canvas, variant int, _ Env) {
	size := rockSizes[variant%len(rockSizes)]
	rx, ry := size[0], size[1]
	dropShadow(cv, 5, 3, rx*0.8, ry*0.5)

	cv.Ellipse(0, -ry/2, rx, ry, 0, hex("#64748b"))
	cv.Ellipse(0, -ry/2, rx*0.5, ry*0.8, 0, hex("#94a3b8"))
	cv.StrokeEllipse(0, -ry/2, rx, ry, 1, hex("#475569"))
}

func drawLamp(cv *Canvas, _ int, env Env) {
	post := hex("#374151")
	cv.Rect(-3, -50, 6, 55, post)
	cv.Rect(-12, -55, 24, 5, post)
	cv.Polygon(hex("#1e293b"), pt(-8, -55), pt(8, -55), pt(6, -45), pt(-6, -45))

	glow := 0.3 + math.Sin(env.ms()/500)*0.1
	cv.Save()
	cv.SetAlpha(glow * 0.5)
	cv.Circle(0, -50, 20, windowLit)
	cv.SetAlpha(glow)
	cv.Circle(0, -50, 11, windowLit)
	cv.Restore()

	cv.Circle(0, -50, 4, windowLit)
}

func drawBench(cv *Canvas, _ int, _ Env) {
	dropShadow(cv, 0, 5, 18, 6)

	seat := hex("#92400e")
	cv.Rect(-18, -8, 36, 6, seat)
	cv.Rect(-18, -20, 36, 4, seat)

	cv.Rect(-15, -8, 4, 12, trunk)
	cv.Rect(11, -8, 4, 12, trunk)
	cv.Rect(-15, -20, 4, 16, trunk)
	cv.Rect(11, -20, 4, 16, trunk)
}

func drawFountain(cv *Canvas, _ int, env Env) {
	stone := hex("#64748b")
	cv.Ellipse(0, 0, 30, 15, 0, waterShallow)
	cv.StrokeEllipse(0, 0, 30, 15, 4, stone)

	cv.Rect(-5, -35, 10, 40, hex("#94a3b8"))
	cv.Ellipse(0, -15, 12, 5, 0, stone)

	phase := env.ms() / 150
	for i := -1; i <= 1; i++ {
		fi := float64(i)
		x := fi * 8
		height := 25 + math.Sin(phase+fi)*5
		cv.Quad(x, -35, x+math.Sin(phase+fi*2)*3, -35-height/2, x, -35-height, 2, waterFoam)
	}

	for i := 0; i < 8; i++ {
		fi := float64(i)
		angle := fi/8*2*math.Pi + phase/5
		dist := 15 + math.Sin(phase+fi)*5
		y := -55 + math.Abs(math.Sin(phase+fi*0.7))*15
		cv.Circle(math.Cos(angle)*dist/2, y, 2, waterFoam)
	}
}
