// Citizen behavior: a countdown-driven random state machine with
// straight-line walking.
package citizens

import (
	"math"

	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/geom"
)

const (
	// ArriveRadius ends a walk.
	ArriveRadius = 0.1

	wanderSpan   = 12.0 // random walks target center ± 6
	actionSpan   = 15.0 // forced walks target center ± 7.5
	actionTicks  = 300
	minStateTime = 100
	maxStateTime = 300
	jumpPeriod   = 60
	jumpHeight   = 20.0
)

var randomStates = [...]State{StateWalking, StateIdle, StateWorking, StateWaving}

// Step advances one citizen by one tick. featured keeps the citizen
// highlighted (citizen of the day).
func Step(c *Citizen, rng entropy.Source, center float64, featured bool) {
	c.AnimFrame++
	c.StateTimer--

	if featured {
		c.Highlighted = true
	}

	if c.Jumping {
		c.JumpOffset = math.Abs(math.Sin(float64(c.AnimFrame)/5)) * jumpHeight
		if c.AnimFrame%jumpPeriod == 0 {
			c.Jumping = false
			c.JumpOffset = 0
		}
	}

	if c.StateTimer <= 0 {
		c.State = randomStates[rng.Intn(len(randomStates))]
		c.StateTimer = minStateTime + rng.Intn(maxStateTime-minStateTime)
		if c.State == StateWalking {
			c.TargetX = center + (rng.Float64()-0.5)*wanderSpan
			c.TargetY = center + (rng.Float64()-0.5)*wanderSpan
		}
	}

	if c.State == StateWalking {
		walk(c)
	}
}

func walk(c *Citizen) {
	if geom.Dist(c.X, c.Y, c.TargetX, c.TargetY) <= ArriveRadius {
		c.State = StateIdle
		return
	}
	if c.TargetX > c.X {
		c.Direction = 1
	} else if c.TargetX < c.X {
		c.Direction = -1
	}
	var remaining float64
	c.X, c.Y, remaining = geom.StepToward(c.X, c.Y, c.TargetX, c.TargetY, c.Speed)
	if remaining <= ArriveRadius {
		c.State = StateIdle
	}
}

// Force puts a citizen into state for an extended period. Walking also
// picks a fresh target around center.
func Force(c *Citizen, state State, rng entropy.Source, center float64) {
	c.State = state
	c.StateTimer = actionTicks
	if state == StateWalking {
		c.TargetX = center + (rng.Float64()-0.5)*actionSpan
		c.TargetY = center + (rng.Float64()-0.5)*actionSpan
	}
}
