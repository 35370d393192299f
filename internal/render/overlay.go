package render

import (
	"math"

	"github.com/shainyguy/followercity/internal/effects"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/weather"
)

var (
	rainStreak = hex("#7dd3fc")
	puddle     = hex("#38bdf8")
	rainbow    = []string{"#ef4444", "#f97316", "#fbbf24", "#22c55e", "#3b82f6", "#6366f1", "#a855f7"}
)

// DrawWeather draws the screen-space weather overlay.
func DrawWeather(cv *Canvas, s weather.State, env Env) {
	if s.Kind == weather.Clear {
		return
	}
	w, h := cv.Size()
	cv.Save()
	defer cv.Restore()

	if s.LightningFlash > 0.1 {
		cv.SetAlpha(s.LightningFlash * 0.3)
		cv.Rect(0, 0, w, h, palette.White)
	}

	switch s.Kind {
	case weather.Rain, weather.Storm:
		for _, p := range s.Particles {
			cv.SetAlpha(p.Opacity)
			cv.Line(p.X, p.Y, p.X+p.VX*2, p.Y+p.VY*2, 1.5, rainStreak)
		}
		cv.SetAlpha(0.2)
		for i := 0; i < 10; i++ {
			size := 30 + math.Sin(env.ms()/500+float64(i))*10
			cv.Ellipse(float64(i)/10*w, h-50, size, 5, 0, puddle)
		}

	case weather.Snow:
		for i, p := range s.Particles {
			cv.SetAlpha(p.Opacity)
			cv.Circle(p.X, p.Y, p.Size, palette.White)
			if sparkle(i, env.Frame) {
				cv.SetAlpha(0.8)
				cv.Line(p.X-p.Size, p.Y, p.X+p.Size, p.Y, 0.5, palette.White)
				cv.Line(p.X, p.Y-p.Size, p.X, p.Y+p.Size, 0.5, palette.White)
			}
		}
		cv.SetAlpha(0.3)
		drift := []geom.Point{{X: 0, Y: h}}
		for x := 0.0; x <= w; x += 20 {
			depth := 10 + math.Sin(x/30)*5 + math.Sin(x/50)*3
			drift = append(drift, geom.Point{X: x, Y: h - depth})
		}
		drift = append(drift, geom.Point{X: w, Y: h})
		cv.Polygon(palette.White, drift...)

	case weather.Rainbow:
		cv.SetAlpha(s.RainbowOpacity * 0.4)
		cx, cy, r := w*0.7, h*0.8, w*0.6
		for i, c := range rainbow {
			cv.Arc(cx, cy, r-float64(i*15), math.Pi, 2*math.Pi, 12, hex(c))
		}
	}
}

// sparkle picks roughly one snowflake in fifty per frame.
func sparkle(i, frame int) bool {
	h := uint32(i)*2654435761 ^ uint32(frame)*40503
	h ^= h >> 16
	return h%50 == 0
}

// DrawParticle draws one confetti square faded by its remaining life.
func DrawParticle(cv *Canvas, p effects.Particle) {
	cv.Save()
	defer cv.Restore()
	cv.SetAlpha(p.Alpha())
	cv.Rect(p.X, p.Y, p.Size, p.Size, p.Color)
}
