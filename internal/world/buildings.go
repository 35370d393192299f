package world

import (
	"fmt"
	"math"
	"time"

	"github.com/shainyguy/followercity/internal/entropy"
)

// BuildingKind enumerates the procedurally drawn building types.
type BuildingKind uint8

const (
	BuildingTent BuildingKind = iota
	BuildingCampfire
	BuildingHouse
	BuildingTower
	BuildingSkyscraper
	BuildingFuturistic
	BuildingPark
	BuildingITCenter
	BuildingPlaza
	BuildingBillboard

	buildingKindCount
)

var buildingKindNames = [buildingKindCount]string{
	"tent", "campfire", "house", "tower", "skyscraper",
	"futuristic", "park", "it_center", "plaza", "billboard",
}

// BuildingKinds returns every kind in declaration order.
func BuildingKinds() []BuildingKind {
	kinds := make([]BuildingKind, buildingKindCount)
	for i := range kinds {
		kinds[i] = BuildingKind(i)
	}
	return kinds
}

func (k BuildingKind) String() string {
	if k < buildingKindCount {
		return buildingKindNames[k]
	}
	return fmt.Sprintf("building(%d)", uint8(k))
}

// ParseBuildingKind resolves a building kind by its configuration name.
func ParseBuildingKind(s string) (BuildingKind, error) {
	for i, name := range buildingKindNames {
		if name == s {
			return BuildingKind(i), nil
		}
	}
	return 0, fmt.Errorf("world: unknown building kind %q", s)
}

// Construction and flicker rates, per tick.
const (
	constructionRate = 0.005
	flickerChance    = 0.001
)

// Building is one structure of the active tier, placed on the grid.
type Building struct {
	ID         string
	Kind       BuildingKind
	GridX      int
	GridY      int
	Progress   float64       // construction ratio 0..1
	SmokeTimer time.Duration // drives smoke puff phase
	LightOn    bool
}

// Complete reports whether construction has finished.
func (b *Building) Complete() bool {
	return b.Progress >= 1
}

// Advance grows construction, accumulates the smoke phase and occasionally
// flips the window light.
func (b *Building) Advance(dt time.Duration, rng entropy.Source) {
	if b.Progress < 1 {
		b.Progress = math.Min(1, b.Progress+constructionRate)
	}
	if dt > 0 {
		b.SmokeTimer += dt
	}
	if entropy.Chance(rng, flickerChance) {
		b.LightOn = !b.LightOn
	}
}

// LayoutBuildings places kinds on rings around (center, center): building i
// of n sits at angle i/n of a full turn, on a ring whose radius grows by two
// cells for every four buildings.
func LayoutBuildings(kinds []BuildingKind, center int, rng entropy.Source) []Building {
	n := len(kinds)
	out := make([]Building, 0, n)
	for i, kind := range kinds {
		angle := float64(i) / float64(n) * 2 * math.Pi
		radius := 2 + float64(i/4)*2
		out = append(out, Building{
			ID:         fmt.Sprintf("building_%d", i),
			Kind:       kind,
			GridX:      int(math.Round(float64(center) + math.Cos(angle)*radius)),
			GridY:      int(math.Round(float64(center) + math.Sin(angle)*radius)),
			SmokeTimer: time.Duration(rng.Float64() * float64(time.Second)),
			LightOn:    rng.Float64() > 0.5,
		})
	}
	return out
}
