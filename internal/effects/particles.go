// Package effects holds the purely cosmetic animated elements: celebration
// particle bursts and drifting clouds.
package effects

import (
	"image/color"

	"github.com/shainyguy/followercity/internal/entropy"
)

// Gravity is added to every particle's vertical velocity each tick.
const Gravity = 0.3

// Particle is one piece of confetti, in screen pixels.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Color   color.NRGBA
	Life    int
	MaxLife int
	Size    float64
}

// Alpha returns the remaining-life fade factor in [0, 1].
func (p Particle) Alpha() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	a := float64(p.Life) / float64(p.MaxLife)
	if a < 0 {
		return 0
	}
	return a
}

// BurstSpec describes a confetti burst.
type BurstSpec struct {
	Count   int
	X, Y    float64 // burst center
	SpreadX float64 // horizontal spawn width
	SpeedX  float64 // horizontal speed range, centered on zero
	LiftMin float64 // upward speed range
	LiftMax float64
	Life    int
	SizeMin float64
	SizeMax float64
	Colors  []color.NRGBA
}

// LevelUpBurst is the tier-up confetti for a surface of size w x h.
func LevelUpBurst(w, h float64, colors []color.NRGBA) BurstSpec {
	return BurstSpec{
		Count: 100, X: w / 2, Y: h / 3, SpreadX: 200, SpeedX: 10,
		LiftMin: 5, LiftMax: 15, Life: 120, SizeMin: 6, SizeMax: 12,
		Colors: colors,
	}
}

// AchievementBurst is the smaller unlock confetti.
func AchievementBurst(w, h float64, colors []color.NRGBA) BurstSpec {
	return BurstSpec{
		Count: 50, X: w / 2, Y: h / 4, SpreadX: 100, SpeedX: 8,
		LiftMin: 3, LiftMax: 11, Life: 80, SizeMin: 5, SizeMax: 10,
		Colors: colors,
	}
}

// Burst creates the particles described by bs.
func Burst(rng entropy.Source, bs BurstSpec) []Particle {
	out := make([]Particle, 0, bs.Count)
	for i := 0; i < bs.Count; i++ {
		var c color.NRGBA
		if len(bs.Colors) > 0 {
			c = bs.Colors[rng.Intn(len(bs.Colors))]
		}
		out = append(out, Particle{
			X:       bs.X + (rng.Float64()-0.5)*bs.SpreadX,
			Y:       bs.Y,
			VX:      (rng.Float64() - 0.5) * bs.SpeedX,
			VY:      -entropy.Float(rng, bs.LiftMin, bs.LiftMax),
			Color:   c,
			Life:    bs.Life,
			MaxLife: bs.Life,
			Size:    entropy.Float(rng, bs.SizeMin, bs.SizeMax),
		})
	}
	return out
}

// Step applies one tick of motion and gravity and drops expired particles.
// The slice is filtered in place.
func Step(ps []Particle) []Particle {
	kept := ps[:0]
	for _, p := range ps {
		p.X += p.VX
		p.Y += p.VY
		p.VY += Gravity
		p.Life--
		if p.Life > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}
