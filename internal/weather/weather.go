// Package weather owns the weather state machine and its particle set.
// Advance is a pure transition: it returns a new State and never mutates
// the particles of the State it was given.
package weather

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shainyguy/followercity/internal/entropy"
)

// ErrInvalidKind is returned when a weather episode is requested for a kind
// that cannot be triggered.
var ErrInvalidKind = errors.New("weather: kind cannot be triggered")

// Kind is the current weather type.
type Kind uint8

const (
	Clear Kind = iota
	Rain
	Snow
	Storm
	Rainbow
)

var kindNames = [...]string{"clear", "rain", "snow", "storm", "rainbow"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("weather(%d)", uint8(k))
}

// ParseKind resolves a kind by name.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Clear, fmt.Errorf("weather: unknown kind %q", s)
}

// Storm-family kinds may be triggered explicitly or start naturally.
func (k Kind) episodic() bool {
	return k == Rain || k == Snow || k == Storm
}

// Tuning constants. Per-tick rates assume one Advance per display frame.
const (
	OnsetChance      = 0.0001 // per tick, while clear
	maxRainParticles = 200
	maxSnowParticles = 150
	rainSpawnRate    = 5 // particles per tick at intensity 1
	snowSpawnRate    = 3
	snowDriftStep    = 0.05
	snowDriftLimit   = 2.0
	flashDecay       = 0.9
	rainbowFadeStep  = 0.01
	rainbowDuration  = 10 * time.Second
	particleMargin   = 50.0
	particleFloor    = 20.0
)

// Particle is one raindrop or snowflake.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Size    float64
	Opacity float64
}

// State is the full weather state.
type State struct {
	Kind           Kind
	Intensity      float64
	Remaining      time.Duration
	Particles      []Particle
	LightningTimer time.Duration
	LightningFlash float64
	RainbowOpacity float64
}

// Trigger starts an episode of kind immediately, replacing any current one.
func Trigger(s State, kind Kind, rng entropy.Source) (State, error) {
	if !kind.episodic() {
		return s, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	return TriggerAt(s, kind, entropy.Float(rng, 0.7, 1.0), rng)
}

// TriggerAt is Trigger with a given intensity, clamped to [0.1, 1].
func TriggerAt(s State, kind Kind, intensity float64, rng entropy.Source) (State, error) {
	if !kind.episodic() {
		return s, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	if s.Kind != kind {
		s.Particles = nil
	}
	s.Kind = kind
	s.Intensity = math.Min(math.Max(intensity, 0.1), 1)
	s.Remaining = time.Duration(entropy.Float(rng, 20, 60) * float64(time.Second))
	return s, nil
}

// Advance moves the weather forward by one tick of length dt on a surface of
// the given size. A zero or negative dt only runs per-tick motion.
func Advance(s State, rng entropy.Source, width, height float64, dt time.Duration) State {
	if dt < 0 {
		dt = 0
	}

	if s.Kind != Clear && s.Remaining > 0 {
		s.Remaining -= dt
		if s.Remaining <= 0 {
			s = endEpisode(s, rng)
		}
	} else if s.Kind == Clear && s.Remaining <= 0 && entropy.Chance(rng, OnsetChance) {
		s = startEpisode(s, rng)
	}

	particles := make([]Particle, 0, len(s.Particles)+rainSpawnRate)
	particles = append(particles, s.Particles...)

	switch s.Kind {
	case Rain, Storm:
		n := int(math.Floor(s.Intensity * rainSpawnRate))
		for i := 0; i < n && len(particles) < maxRainParticles; i++ {
			vx := -1.0
			if s.Kind == Storm {
				vx = -3 - rng.Float64()*2
			}
			particles = append(particles, Particle{
				X:       rng.Float64()*width*1.5 - width*0.25,
				Y:       -20,
				VX:      vx,
				VY:      12 + rng.Float64()*5,
				Size:    2 + rng.Float64()*2,
				Opacity: 0.4 + rng.Float64()*0.4,
			})
		}
		if s.Kind == Storm {
			s.LightningTimer -= dt
			if s.LightningTimer <= 0 {
				s.LightningFlash = 1
				s.LightningTimer = time.Duration(entropy.Float(rng, 2, 7) * float64(time.Second))
			}
		}

	case Snow:
		n := int(math.Floor(s.Intensity * snowSpawnRate))
		for i := 0; i < n && len(particles) < maxSnowParticles; i++ {
			particles = append(particles, Particle{
				X:       rng.Float64()*width*1.2 - width*0.1,
				Y:       -10,
				VX:      (rng.Float64() - 0.5) * 2,
				VY:      1 + rng.Float64()*2,
				Size:    3 + rng.Float64()*4,
				Opacity: 0.6 + rng.Float64()*0.4,
			})
		}
		for i := range particles {
			p := &particles[i]
			p.VX += (rng.Float64() - 0.5) * 2 * snowDriftStep
			p.VX = math.Max(-snowDriftLimit, math.Min(snowDriftLimit, p.VX))
		}

	case Rainbow:
		s.RainbowOpacity = math.Min(1, s.RainbowOpacity+rainbowFadeStep)
	}

	s.LightningFlash *= flashDecay

	kept := particles[:0]
	for _, p := range particles {
		p.X += p.VX
		p.Y += p.VY
		if p.Y < height+particleFloor && p.X > -particleMargin && p.X < width+particleMargin {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.Particles = kept
	return s
}

func startEpisode(s State, rng entropy.Source) State {
	kinds := [...]Kind{Rain, Snow, Storm}
	s.Kind = kinds[rng.Intn(len(kinds))]
	s.Intensity = entropy.Float(rng, 0.5, 1.0)
	s.Remaining = time.Duration(entropy.Float(rng, 30, 90) * float64(time.Second))
	return s
}

func endEpisode(s State, rng entropy.Source) State {
	prev := s.Kind
	s.Particles = nil
	s.Remaining = 0
	s.Kind = Clear
	if (prev == Rain || prev == Storm) && rng.Float64() > 0.5 {
		s.Kind = Rainbow
		s.Remaining = rainbowDuration
		s.RainbowOpacity = 0
	}
	return s
}
