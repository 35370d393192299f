// Package world defines the city's static configuration and terrain: tiers,
// building kinds and their layout, paths, the river, bridges and scenery.
package world

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/shainyguy/followercity/internal/palette"
)

// ErrNoLevels is returned when a tier list is empty.
var ErrNoLevels = errors.New("world: tier list is empty")

// Level is one named stage of city growth.
type Level struct {
	Name         string
	MinFollowers int
	Buildings    []BuildingKind
	Background   color.NRGBA
	Description  string
}

// Levels is an ordered tier list with strictly increasing thresholds.
type Levels []Level

// Validate checks the configuration invariants. A failure is fatal at startup.
func (l Levels) Validate() error {
	if len(l) == 0 {
		return ErrNoLevels
	}
	for i, lvl := range l {
		if lvl.Name == "" {
			return fmt.Errorf("world: tier %d has no name", i)
		}
		if i > 0 && lvl.MinFollowers <= l[i-1].MinFollowers {
			return fmt.Errorf("world: tier %q threshold %d not above %d",
				lvl.Name, lvl.MinFollowers, l[i-1].MinFollowers)
		}
	}
	return nil
}

// TierOf returns the index of the highest tier whose threshold is <= n.
// Counts below the first threshold map to tier 0.
func (l Levels) TierOf(n int) int {
	for i := len(l) - 1; i >= 0; i-- {
		if n >= l[i].MinFollowers {
			return i
		}
	}
	return 0
}

// Progress returns the ratio of the way from the current tier's threshold to
// the next one, in [0, 1]. The last tier always reports 1.
func (l Levels) Progress(n int) float64 {
	if len(l) == 0 {
		return 0
	}
	tier := l.TierOf(n)
	if tier >= len(l)-1 {
		return 1
	}
	cur, next := l[tier].MinFollowers, l[tier+1].MinFollowers
	p := float64(n-cur) / float64(next-cur)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// NextThreshold returns the follower count that unlocks the next tier, or
// the current tier's threshold when already at the last tier.
func (l Levels) NextThreshold(n int) int {
	if len(l) == 0 {
		return 0
	}
	tier := l.TierOf(n)
	if tier >= len(l)-1 {
		return l[tier].MinFollowers
	}
	return l[tier+1].MinFollowers
}

// DefaultLevels returns the stock six-tier progression.
func DefaultLevels() Levels {
	return Levels{
		{
			Name: "Tent", MinFollowers: 0,
			Buildings:   []BuildingKind{BuildingTent},
			Background:  palette.MustHex("#4ade80"),
			Description: "A lone tent in an empty field",
		},
		{
			Name: "Camp", MinFollowers: 100,
			Buildings:   []BuildingKind{BuildingTent, BuildingCampfire, BuildingTent},
			Background:  palette.MustHex("#22c55e"),
			Description: "A small camp around a campfire",
		},
		{
			Name: "Village", MinFollowers: 500,
			Buildings:   []BuildingKind{BuildingHouse, BuildingHouse, BuildingPark, BuildingHouse, BuildingBillboard},
			Background:  palette.MustHex("#16a34a"),
			Description: "A cozy village with its first houses",
		},
		{
			Name: "City", MinFollowers: 1000,
			Buildings:   []BuildingKind{BuildingHouse, BuildingTower, BuildingPlaza, BuildingHouse, BuildingITCenter, BuildingTower},
			Background:  palette.MustHex("#15803d"),
			Description: "A growing city with towers and a plaza",
		},
		{
			Name: "Metropolis", MinFollowers: 5000,
			Buildings:   []BuildingKind{BuildingTower, BuildingSkyscraper, BuildingITCenter, BuildingPlaza, BuildingSkyscraper, BuildingTower, BuildingPark},
			Background:  palette.MustHex("#166534"),
			Description: "A metropolis of skyscrapers",
		},
		{
			Name: "Future City", MinFollowers: 10000,
			Buildings:   []BuildingKind{BuildingFuturistic, BuildingFuturistic, BuildingSkyscraper, BuildingITCenter, BuildingFuturistic, BuildingPlaza, BuildingFuturistic},
			Background:  palette.MustHex("#14532d"),
			Description: "A city of the future",
		},
	}
}
