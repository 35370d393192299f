// Package entropy provides the random sources injected into the simulation.
// Production code seeds a math/rand generator from crypto/rand; tests inject
// a fixed seed or a scripted Sequence to make probability-driven branches
// deterministic.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source is the subset of *rand.Rand the simulation draws from.
type Source interface {
	Float64() float64 // uniform in [0, 1)
	Intn(n int) int   // uniform in [0, n)
}

// NewSeeded returns a deterministic source. Seed offsets separate the
// streams of independent subsystems that share one configured seed.
func NewSeeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Seed returns a random seed from crypto/rand. Used when no seed is configured.
func Seed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// Float returns a float in [lo, hi) drawn from src.
func Float(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Sign returns -1 or 1 with equal probability.
func Sign(src Source) int {
	if src.Float64() > 0.5 {
		return 1
	}
	return -1
}

// Chance reports whether an event with probability p fires.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Sequence replays a fixed list of values, cycling when exhausted.
// Intn maps the next value onto [0, n).
type Sequence struct {
	Values []float64
	pos    int
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

// Intn returns the next scripted value scaled onto [0, n).
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
