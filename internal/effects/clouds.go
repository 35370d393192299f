package effects

import "github.com/shainyguy/followercity/internal/entropy"

// Cloud drifts left to right across the sky.
type Cloud struct {
	X, Y    float64
	Speed   float64
	Scale   float64
	Opacity float64
}

const cloudWrap = 100.0

// NewClouds scatters n clouds across a sky of width w.
func NewClouds(n int, w float64, rng entropy.Source) []Cloud {
	out := make([]Cloud, n)
	for i := range out {
		out[i] = Cloud{
			X:       rng.Float64()*w*2 - w/2,
			Y:       rng.Float64()*100 + 30,
			Speed:   entropy.Float(rng, 0.2, 0.5),
			Scale:   entropy.Float(rng, 0.5, 1.0),
			Opacity: entropy.Float(rng, 0.4, 0.7),
		}
	}
	return out
}

// DriftClouds moves every cloud and wraps those past the right edge back to
// the left at a new height.
func DriftClouds(clouds []Cloud, w float64, rng entropy.Source) {
	for i := range clouds {
		c := &clouds[i]
		c.X += c.Speed
		if c.X > w+cloudWrap {
			c.X = -cloudWrap
			c.Y = rng.Float64()*100 + 30
		}
	}
}
