// Package traffic spawns and moves the vehicles that cross the city along
// its central avenues.
package traffic

import (
	"fmt"
	"image/color"

	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/palette"
)

// Kind is a vehicle type.
type Kind uint8

const (
	Car Kind = iota
	Bus
	Train
	Drone
	UFO
)

var kindNames = [...]string{"car", "bus", "train", "drone", "ufo"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("vehicle(%d)", uint8(k))
}

// Airborne reports whether the kind flies above the rooftops.
func (k Kind) Airborne() bool {
	return k == Drone || k == UFO
}

// ArrivalRadius is the distance from target at which a vehicle is retired.
const ArrivalRadius = 0.5

// Colors is the body paint palette.
var Colors = []color.NRGBA{
	palette.MustHex("#ef4444"),
	palette.MustHex("#3b82f6"),
	palette.MustHex("#22c55e"),
	palette.MustHex("#f59e0b"),
	palette.MustHex("#8b5cf6"),
	palette.MustHex("#ec4899"),
	palette.MustHex("#14b8a6"),
}

// Vehicle is one traffic actor on a straight path.
type Vehicle struct {
	ID        int
	Kind      Kind
	X, Y      float64
	TargetX   float64
	TargetY   float64
	Speed     float64
	Color     color.NRGBA
	Direction int // 1 while moving toward +x, -1 otherwise (vertical routes included)
	AnimFrame int
}

// Quota returns how many vehicles a tier supports.
func Quota(tier int) int {
	switch {
	case tier >= 5:
		return 8
	case tier >= 4:
		return 6
	case tier >= 3:
		return 4
	case tier >= 2:
		return 2
	default:
		return 0
	}
}

func kindsFor(tier int) []Kind {
	switch {
	case tier >= 5:
		return []Kind{Car, Bus, Drone, UFO}
	case tier >= 4:
		return []Kind{Car, Bus, Train, Drone}
	case tier >= 3:
		return []Kind{Car, Bus}
	default:
		return []Kind{Car}
	}
}

func speedFor(k Kind) float64 {
	switch k {
	case Drone, UFO:
		return 0.08
	case Train:
		return 0.05
	default:
		return 0.04
	}
}

// New creates a vehicle at one end of the horizontal or vertical avenue
// through the map center, heading to the opposite end.
func New(id, tier, mapSize int, rng entropy.Source) Vehicle {
	kinds := kindsFor(tier)
	kind := kinds[rng.Intn(len(kinds))]
	size := float64(mapSize)
	c := float64(mapSize / 2)

	v := Vehicle{
		ID:        id,
		Kind:      kind,
		Speed:     speedFor(kind),
		Color:     Colors[rng.Intn(len(Colors))],
		Direction: 1,
	}
	if rng.Float64() > 0.5 {
		v.X, v.Y, v.TargetX, v.TargetY = 0, c, size, c
	} else {
		v.X, v.Y, v.TargetX, v.TargetY = c, 0, c, size
	}
	return v
}

// Advance moves the vehicle one tick toward its target. It returns false once
// the vehicle is within ArrivalRadius of the target; the caller replaces it.
func (v *Vehicle) Advance() bool {
	v.AnimFrame++
	dx := v.TargetX - v.X
	if geom.Dist(v.X, v.Y, v.TargetX, v.TargetY) < ArrivalRadius {
		return false
	}
	v.X, v.Y, _ = geom.StepToward(v.X, v.Y, v.TargetX, v.TargetY, v.Speed)
	if dx > 0 {
		v.Direction = 1
	} else {
		v.Direction = -1
	}
	return true
}
