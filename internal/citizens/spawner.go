package citizens

import (
	"image/color"

	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/roster"
)

// Palette is the pool of ordinary citizen colors.
var Palette = []color.NRGBA{
	palette.MustHex("#ef4444"), palette.MustHex("#f97316"), palette.MustHex("#f59e0b"),
	palette.MustHex("#84cc16"), palette.MustHex("#22c55e"), palette.MustHex("#14b8a6"),
	palette.MustHex("#06b6d4"), palette.MustHex("#3b82f6"), palette.MustHex("#6366f1"),
	palette.MustHex("#8b5cf6"), palette.MustHex("#a855f7"), palette.MustHex("#d946ef"),
	palette.MustHex("#ec4899"), palette.MustHex("#f43f5e"),
}

// Special citizen colors.
var (
	VIPColor      = palette.MustHex("#fbbf24")
	OldTimerColor = palette.MustHex("#a855f7")
)

const (
	vipChance      = 0.05
	oldTimerChance = 0.1
	spawnSpread    = 10.0 // citizens appear within ±5 cells of center
)

// Spawner creates citizens for newly seen followers.
type Spawner struct {
	rng    entropy.Source
	center float64
}

// NewSpawner creates a spawner placing citizens around (center, center).
func NewSpawner(rng entropy.Source, center float64) *Spawner {
	return &Spawner{rng: rng, center: center}
}

// Spawn creates the citizen for f.
func (s *Spawner) Spawn(f roster.Follower) *Citizen {
	x := s.center + (s.rng.Float64()-0.5)*spawnSpread
	y := s.center + (s.rng.Float64()-0.5)*spawnSpread

	c := &Citizen{
		ID:         f.ID,
		Username:   f.Username,
		JoinedAt:   f.JoinedAt,
		X:          x,
		Y:          y,
		TargetX:    x,
		TargetY:    y,
		State:      StateIdle,
		StateTimer: int(s.rng.Float64() * 200),
		Direction:  entropy.Sign(s.rng),
		Speed:      entropy.Float(s.rng, 0.02, 0.04),
		Scale:      entropy.Float(s.rng, 0.8, 1.2),
		Avatar:     f.Avatar,
	}

	switch {
	case entropy.Chance(s.rng, vipChance):
		c.VIP = true
		c.Color = VIPColor
	case entropy.Chance(s.rng, oldTimerChance):
		c.OldTimer = true
		c.Color = OldTimerColor
	default:
		c.Color = Palette[s.rng.Intn(len(Palette))]
	}
	return c
}
