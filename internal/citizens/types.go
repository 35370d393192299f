// Package citizens provides the citizen data model, spawning and the
// per-tick behavior state machine.
package citizens

import (
	"fmt"
	"image/color"
	"time"
)

// State is a citizen's behavioral state.
type State uint8

const (
	StateIdle State = iota
	StateWalking
	StateWorking
	StateWaving
	StateEntering // reserved; never produced by the state machine
)

var stateNames = [...]string{"idle", "walking", "working", "waving", "entering"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState resolves a state by name.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return StateIdle, fmt.Errorf("citizens: unknown state %q", s)
}

// Citizen is the in-city avatar of one follower.
type Citizen struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`

	X       float64 `json:"x"` // grid units
	Y       float64 `json:"y"`
	TargetX float64 `json:"target_x"`
	TargetY float64 `json:"target_y"`

	State      State `json:"state"`
	StateTimer int   `json:"state_timer"` // ticks until the next random transition
	AnimFrame  int   `json:"anim_frame"`

	Color     color.NRGBA `json:"-"`
	Scale     float64     `json:"scale"`
	Direction int         `json:"direction"` // -1 faces left, 1 faces right
	Speed     float64     `json:"speed"`     // grid units per tick

	Highlighted bool    `json:"highlighted"`
	Jumping     bool    `json:"jumping"`
	JumpOffset  float64 `json:"-"`

	VIP      bool   `json:"vip"`
	OldTimer bool   `json:"old_timer"`
	Avatar   string `json:"avatar,omitempty"` // avatar cache key
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
