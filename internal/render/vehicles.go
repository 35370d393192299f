package render

import (
	"math"

	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/traffic"
)

type vehicleFunc func(cv *Canvas, v traffic.Vehicle)

var vehicleDrawers = map[traffic.Kind]vehicleFunc{
	traffic.Car:   drawCar,
	traffic.Bus:   drawBus,
	traffic.Train: drawTrain,
	traffic.Drone: drawDrone,
	traffic.UFO:   drawUFO,
}

// DrawVehicle draws v at its grid position.
func DrawVehicle(cv *Canvas, v traffic.Vehicle) {
	draw, ok := vehicleDrawers[v.Kind]
	if !ok {
		return
	}
	p := geom.ToIso(v.X, v.Y)
	cv.Save()
	defer cv.Restore()
	cv.Translate(p.X, p.Y)
	draw(cv, v)
}

var (
	tire  = hex("#1e293b")
	glass = hex("#38bdf8")
)

func shadowAt(cv *Canvas, alpha, cy, rx, ry float64) {
	cv.Save()
	cv.SetAlpha(alpha)
	cv.Ellipse(0, cy, rx, ry, 0, palette.Black)
	cv.Restore()
}

func drawCar(cv *Canvas, v traffic.Vehicle) {
	b := math.Sin(float64(v.AnimFrame)/3) * 0.5
	shadowAt(cv, 0.3, 8, 18, 6)

	cv.RoundRect(-15, -10+b, 30, 12, 3, v.Color)
	cv.StrokeRoundRect(-15, -10+b, 30, 12, 3, 1, palette.Shade(v.Color, -30))
	cv.RoundRect(-10, -18+b, 20, 10, 2, palette.Shade(v.Color, -15))

	cv.Rect(-8, -16+b, 7, 6, glass)
	cv.Rect(2, -16+b, 7, 6, glass)

	cv.Circle(-10, 3+b, 4, tire)
	cv.Circle(10, 3+b, 4, tire)

	lamp := -15.0
	if v.Direction > 0 {
		lamp = 12
	}
	cv.Rect(lamp, -6+b, 3, 3, windowLit)
}

func drawBus(cv *Canvas, v traffic.Vehicle) {
	b := math.Sin(float64(v.AnimFrame)/4) * 0.3
	shadowAt(cv, 0.3, 10, 25, 8)

	cv.RoundRect(-22, -20+b, 44, 22, 3, hex("#f59e0b"))
	cv.StrokeRoundRect(-22, -20+b, 44, 22, 3, 1.5, hex("#d97706"))

	for i := 0; i < 4; i++ {
		cv.Rect(-18+float64(i*10), -17+b, 7, 10, waterFoam)
	}

	cv.Circle(-14, 5+b, 5, tire)
	cv.Circle(14, 5+b, 5, tire)

	cv.Text("BUS", 0, -22+b, AlignCenter, tire)
}

func drawTrain(cv *Canvas, v traffic.Vehicle) {
	shadowAt(cv, 0.3, 12, 35, 10)

	for i := 0; i < 3; i++ {
		ox := -25 + float64(i*25)
		body := hex("#64748b")
		if i == 0 {
			body = hex("#ef4444")
		}
		cv.RoundRect(ox-10, -15, 22, 18, 2, body)
		cv.StrokeRoundRect(ox-10, -15, 22, 18, 2, 1, hex("#374151"))

		if i == 0 {
			cv.Rect(ox-6, -10, 14, 8, windowLit)
		} else {
			cv.Rect(ox-6, -12, 5, 5, windowLit)
			cv.Rect(ox+3, -12, 5, 5, windowLit)
		}

		cv.Circle(ox-5, 5, 4, tire)
		cv.Circle(ox+7, 5, 4, tire)
	}

	phase := float64(v.AnimFrame) / 10
	cv.Save()
	cv.SetAlpha(0.5)
	for i := 0; i < 3; i++ {
		rise := math.Mod(phase+float64(i*5), 20)
		cv.Circle(-30+math.Sin(phase+float64(i))*3, -25-rise, 5+rise/2, smokeGray)
	}
	cv.Restore()
}

func drawDrone(cv *Canvas, v traffic.Vehicle) {
	hover := math.Sin(float64(v.AnimFrame)/5) * 5
	spin := float64(v.AnimFrame) / 2
	shadowAt(cv, 0.2, 30, 15, 5)

	cv.RoundRect(-12, -20+hover, 24, 12, 4, tire)
	cv.Circle(0, -12+hover, 5, hex("#3b82f6"))

	arm := hex("#475569")
	cv.Line(-18, -18+hover, 18, -18+hover, 3, arm)
	cv.Line(-18, -10+hover, 18, -10+hover, 3, arm)

	cv.Save()
	cv.SetAlpha(0.6)
	for i := -1; i <= 1; i += 2 {
		for j := -1; j <= 1; j += 2 {
			cv.Save()
			cv.Translate(float64(i*18), -14+hover+float64(j*4))
			cv.Rotate(spin * float64(i*j))
			cv.Ellipse(0, 0, 8, 2, 0, hex("#94a3b8"))
			cv.Restore()
		}
	}
	cv.Restore()

	if math.Sin(float64(v.AnimFrame)/10) > 0 {
		cv.Circle(-10, -8+hover, 2, hex("#22c55e"))
		cv.Circle(10, -8+hover, 2, hex("#ef4444"))
	}
}

func drawUFO(cv *Canvas, v traffic.Vehicle) {
	hover := math.Sin(float64(v.AnimFrame)/8) * 8
	spin := float64(v.AnimFrame) / 20
	beam := hex("#a5f3fc")

	cv.Save()
	cv.SetAlpha(0.2)
	cv.Polygon(beam, pt(-8, -5+hover), pt(8, -5+hover), pt(20, 50), pt(-20, 50))
	cv.Ellipse(0, 40, 20, 8, 0, palette.Black)
	cv.Restore()

	cv.Ellipse(0, -8+hover, 25, 8, 0, hex("#64748b"))
	cv.EllipseSegment(0, -15+hover, 12, 10, math.Pi, 2*math.Pi, palette.Lerp(hex("#c4b5fd"), hex("#7c3aed"), 0.5))

	for i := 0; i < 6; i++ {
		angle := spin + float64(i)/6*2*math.Pi
		cv.Circle(math.Cos(angle)*20, math.Sin(angle)*6-8+hover, 3, windowLit)
	}

	cv.Save()
	cv.SetAlpha(0.5)
	cv.Circle(0, -15+hover, 6, beam)
	cv.Restore()
}
