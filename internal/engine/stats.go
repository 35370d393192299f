package engine

import (
	"github.com/shainyguy/followercity/internal/achievements"
	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/effects"
	"github.com/shainyguy/followercity/internal/roster"
	"github.com/shainyguy/followercity/internal/traffic"
	"github.com/shainyguy/followercity/internal/weather"
	"github.com/shainyguy/followercity/internal/world"
)

// Stats summarizes the city for the HUD and the API.
type Stats struct {
	CitizenCount      int     `json:"citizens"`
	TierIndex         int     `json:"tier"` // 0-based
	TierName          string  `json:"tier_name"`
	Progress          float64 `json:"progress"`
	NextTierThreshold int     `json:"next_tier"`
	TodayJoined       int     `json:"today_joined"`
}

// SearchResult is the outcome of the last citizen search.
type SearchResult struct {
	Found    bool   `json:"found"`
	Username string `json:"username"`
}

func (s *Simulation) computeStats() Stats {
	n := len(s.followers)
	tier := s.levels.TierOf(n)
	return Stats{
		CitizenCount:      n,
		TierIndex:         tier,
		TierName:          s.levels[tier].Name,
		Progress:          s.levels.Progress(n),
		NextTierThreshold: s.levels.NextThreshold(n),
		TodayJoined:       roster.JoinedSince(s.followers, roster.StartOfDay(s.now())),
	}
}

// updateStats recomputes the stats and notifies OnStats when they changed.
func (s *Simulation) updateStats() {
	st := s.computeStats()
	if st == s.stats && s.statsSent {
		return
	}
	s.stats = st
	s.statsSent = true
	if s.OnStats != nil {
		s.OnStats(st)
	}
}

// Stats returns the current city summary.
func (s *Simulation) Stats() Stats {
	return s.stats
}

// Level returns the active tier.
func (s *Simulation) Level() world.Level {
	return s.levels[s.stats.TierIndex]
}

// Citizens returns the live citizens in insertion order. The pointers are
// owned by the simulation.
func (s *Simulation) Citizens() []*citizens.Citizen {
	out := make([]*citizens.Citizen, len(s.citizens))
	copy(out, s.citizens)
	return out
}

// Citizen looks up a citizen by follower id.
func (s *Simulation) Citizen(id string) (*citizens.Citizen, bool) {
	c, ok := s.index[id]
	return c, ok
}

// Buildings returns a copy of the building layout.
func (s *Simulation) Buildings() []world.Building {
	return append([]world.Building(nil), s.buildings...)
}

// Vehicles returns a copy of the vehicle fleet.
func (s *Simulation) Vehicles() []traffic.Vehicle {
	return append([]traffic.Vehicle(nil), s.vehicles...)
}

// Particles returns the number of live celebration particles.
func (s *Simulation) Particles() int {
	return len(s.particles)
}

// Clouds returns a copy of the cloud layer.
func (s *Simulation) Clouds() []effects.Cloud {
	return append([]effects.Cloud(nil), s.clouds...)
}

// Achievements returns a copy of the achievement list with unlock state.
func (s *Simulation) Achievements() []achievements.Achievement {
	return append([]achievements.Achievement(nil), s.achievements...)
}

// Weather returns the weather state. Its particle slice is shared and must
// not be modified.
func (s *Simulation) Weather() weather.State {
	return s.weather
}

// Selected returns the citizen picked by SelectAt, or nil.
func (s *Simulation) Selected() *citizens.Citizen {
	return s.selected
}

// SearchResult returns the outcome of the last search, or nil.
func (s *Simulation) SearchResult() *SearchResult {
	return s.search
}

// Featured returns the citizen of the day, or nil.
func (s *Simulation) Featured() *citizens.Citizen {
	return s.index[s.featuredID]
}

// TimeOfDay returns the day-cycle position in [0, 1).
func (s *Simulation) TimeOfDay() float64 {
	return s.timeOfDay
}

// Camera returns the camera state.
func (s *Simulation) Camera() Camera {
	return s.cam
}

// Size returns the viewport size.
func (s *Simulation) Size() (w, h float64) {
	return s.width, s.height
}

// Map returns the static terrain.
func (s *Simulation) Map() *world.Map {
	return s.worldMap
}
