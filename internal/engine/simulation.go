// Simulation ties together the city systems and advances them each frame.
package engine

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/shainyguy/followercity/internal/achievements"
	"github.com/shainyguy/followercity/internal/avatars"
	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/effects"
	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/roster"
	"github.com/shainyguy/followercity/internal/traffic"
	"github.com/shainyguy/followercity/internal/weather"
	"github.com/shainyguy/followercity/internal/world"
)

// ErrUnknownCitizen is returned for operations naming a citizen id that is
// not in the city.
var ErrUnknownCitizen = errors.New("engine: unknown citizen")

// Scene tuning.
const (
	DefaultClouds      = 5
	startTimeOfDay     = 0.3
	dayCycleRate       = 0.00001 // day fraction per millisecond
	featuredInterval   = time.Hour
	recentJoinWindow   = 24 * time.Hour
	syntheticChance    = 0.0001
	syntheticMinRoster = 10
)

var achievementColors = []color.NRGBA{
	palette.MustHex("#fbbf24"), palette.MustHex("#a855f7"), palette.MustHex("#22c55e"),
}

// Options configures a new Simulation.
type Options struct {
	Levels       world.Levels
	Achievements []achievements.Achievement // nil uses achievements.Default
	Map          *world.Map
	Width        float64 // viewport, in pixels
	Height       float64
	Rng          entropy.Source
	Now          func() time.Time // nil uses time.Now
	Avatars      *avatars.Cache   // optional
	Clouds       int              // 0 uses DefaultClouds

	// Billboard copy passed to the renderer.
	Headline string
	Tagline  string
}

// Simulation holds the complete scene state. It is not safe for concurrent
// use; Engine.Do serializes outside access.
type Simulation struct {
	// Change notifications. Each fires only when its value changed.
	OnStats       func(Stats)
	OnEvents      func([]Event)
	OnAchievement func(achievements.Achievement)
	OnSelect      func(*citizens.Citizen)
	OnWeather     func(weather.Kind)

	levels   world.Levels
	worldMap *world.Map
	rng      entropy.Source
	now      func() time.Time
	avatars  *avatars.Cache
	spawner  *citizens.Spawner

	width, height float64
	headline      string
	tagline       string

	followers []roster.Follower

	citizens []*citizens.Citizen
	index    map[string]*citizens.Citizen

	buildings     []world.Building
	vehicles      []traffic.Vehicle
	nextVehicleID int
	clouds        []effects.Cloud
	particles     []effects.Particle
	weather       weather.State
	achievements  []achievements.Achievement
	events        []Event

	stats     Stats
	statsSent bool

	cam       Camera
	timeOfDay float64
	lastTS    time.Duration
	clock     time.Duration
	frame     int

	highlighted *citizens.Citizen
	selected    *citizens.Citizen
	search      *SearchResult
	featuredID  string
	featuredAt  time.Time

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewSimulation validates opts and builds an empty city.
func NewSimulation(opts Options) (*Simulation, error) {
	if err := opts.Levels.Validate(); err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	if opts.Map == nil || opts.Map.Size <= 0 {
		return nil, fmt.Errorf("engine: map is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("engine: invalid viewport %gx%g", opts.Width, opts.Height)
	}
	if opts.Rng == nil {
		return nil, fmt.Errorf("engine: random source is required")
	}
	achs := opts.Achievements
	if achs == nil {
		achs = achievements.Default()
	}
	if err := achievements.Validate(achs); err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clouds := opts.Clouds
	if clouds <= 0 {
		clouds = DefaultClouds
	}

	s := &Simulation{
		levels:       opts.Levels,
		worldMap:     opts.Map,
		rng:          opts.Rng,
		now:          now,
		avatars:      opts.Avatars,
		spawner:      citizens.NewSpawner(opts.Rng, float64(opts.Map.Center())),
		headline:     opts.Headline,
		tagline:      opts.Tagline,
		index:        make(map[string]*citizens.Citizen),
		achievements: append([]achievements.Achievement(nil), achs...),
		timeOfDay:    startTimeOfDay,
	}
	s.Resize(opts.Width, opts.Height)
	s.clouds = effects.NewClouds(clouds, s.width, s.rng)
	s.stats = s.computeStats()
	return s, nil
}

// SetFollowers reconciles the city with a full roster snapshot. Applying the
// same snapshot twice is a no-op apart from the hourly citizen-of-the-day
// rotation.
func (s *Simulation) SetFollowers(list []roster.Follower) {
	prevTier := s.levels.TierOf(len(s.followers))
	s.followers = append([]roster.Follower(nil), list...)
	tier := s.levels.TierOf(len(s.followers))

	if tier > prevTier {
		s.levelUp(tier)
	}

	s.syncBuildings(tier)
	s.syncCitizens()
	s.updateStats()
	s.syncVehicles(tier)
	s.checkAchievements()
	s.rotateFeatured()
}

func (s *Simulation) levelUp(tier int) {
	lvl := s.levels[tier]
	s.particles = append(s.particles,
		effects.Burst(s.rng, effects.LevelUpBurst(s.width, s.height, citizens.Palette))...)
	s.addEvent(Event{
		ID:        "level_" + uuid.NewString(),
		Message:   fmt.Sprintf("New level: %s! (%s followers)", lvl.Name, humanize.Comma(int64(lvl.MinFollowers))),
		Timestamp: s.now(),
		Category:  CategoryLevel,
	})
}

// syncBuildings rebuilds the layout only when the tier's building count
// differs from the current one.
func (s *Simulation) syncBuildings(tier int) {
	kinds := s.levels[tier].Buildings
	if len(kinds) == len(s.buildings) {
		return
	}
	s.buildings = world.LayoutBuildings(kinds, s.worldMap.Center(), s.rng)
}

func (s *Simulation) syncCitizens() {
	now := s.now()
	for _, f := range s.followers {
		if _, ok := s.index[f.ID]; ok {
			continue
		}
		c := s.spawner.Spawn(f)
		s.avatars.Acquire(c.Avatar)
		s.citizens = append(s.citizens, c)
		s.index[c.ID] = c

		if now.Sub(f.JoinedAt) < recentJoinWindow {
			s.addEvent(Event{
				ID:        "join_" + f.ID,
				Message:   fmt.Sprintf("%s joined the city!", f.Username),
				Timestamp: f.JoinedAt,
				Category:  CategoryJoin,
			})
		}
	}

	present := make(map[string]bool, len(s.followers))
	for _, f := range s.followers {
		present[f.ID] = true
	}
	kept := s.citizens[:0]
	for _, c := range s.citizens {
		if present[c.ID] {
			kept = append(kept, c)
			continue
		}
		s.remove(c)
	}
	for i := len(kept); i < len(s.citizens); i++ {
		s.citizens[i] = nil
	}
	s.citizens = kept
}

// remove drops every reference to c except its slot in s.citizens.
func (s *Simulation) remove(c *citizens.Citizen) {
	delete(s.index, c.ID)
	s.avatars.Release(c.Avatar)
	if s.selected == c {
		s.selected = nil
		if s.OnSelect != nil {
			s.OnSelect(nil)
		}
	}
	if s.highlighted == c {
		s.highlighted = nil
	}
	if s.featuredID == c.ID {
		s.featuredID = ""
	}
}

func (s *Simulation) syncVehicles(tier int) {
	for len(s.vehicles) < traffic.Quota(tier) {
		s.vehicles = append(s.vehicles, s.newVehicle(tier))
	}
}

func (s *Simulation) newVehicle(tier int) traffic.Vehicle {
	v := traffic.New(s.nextVehicleID, tier, s.worldMap.Size, s.rng)
	s.nextVehicleID++
	return v
}

func (s *Simulation) checkAchievements() {
	res := achievements.Evaluate(s.achievements, s.stats.CitizenCount, s.stats.TodayJoined, s.now())
	s.achievements = res.Updated

	for _, a := range res.NewlyUnlocked {
		if s.OnAchievement != nil {
			s.OnAchievement(a)
		}
		s.addEvent(Event{
			ID:        "ach_" + a.ID,
			Message:   fmt.Sprintf("Achievement: %s!", a.Title),
			Timestamp: a.UnlockedAt,
			Category:  CategoryMilestone,
		})
		s.particles = append(s.particles,
			effects.Burst(s.rng, effects.AchievementBurst(s.width, s.height, achievementColors))...)
	}
}

// rotateFeatured picks a new citizen of the day once the rotation interval
// has passed.
func (s *Simulation) rotateFeatured() {
	now := s.now()
	if len(s.citizens) == 0 || (!s.featuredAt.IsZero() && now.Sub(s.featuredAt) <= featuredInterval) {
		return
	}
	s.featuredAt = now

	if prev, ok := s.index[s.featuredID]; ok {
		prev.Highlighted = false
	}
	c := s.citizens[s.rng.Intn(len(s.citizens))]
	s.featuredID = c.ID

	s.addEvent(Event{
		ID:        "cotd_" + uuid.NewString(),
		Message:   fmt.Sprintf("Citizen of the day: %s!", c.Username),
		Timestamp: now,
		Category:  CategoryMilestone,
	})
}

// Update advances the scene to ts, the time since the loop started.
func (s *Simulation) Update(ts time.Duration) {
	dt := ts - s.lastTS
	if dt < 0 {
		dt = 0
	}
	s.lastTS = ts
	s.clock = ts
	s.frame++

	ms := float64(dt) / float64(time.Millisecond)
	s.timeOfDay = math.Mod(s.timeOfDay+dayCycleRate*ms, 1)

	s.cam.Ease(CameraEase)

	prev := s.weather.Kind
	s.weather = weather.Advance(s.weather, s.rng, s.width, s.height, dt)
	if s.weather.Kind != prev && s.OnWeather != nil {
		s.OnWeather(s.weather.Kind)
	}

	effects.DriftClouds(s.clouds, s.width, s.rng)

	for i := range s.buildings {
		s.buildings[i].Advance(dt, s.rng)
	}

	center := float64(s.worldMap.Center())
	for _, c := range s.citizens {
		citizens.Step(c, s.rng, center, c.ID == s.featuredID)
	}

	tier := s.levels.TierOf(len(s.followers))
	for i := range s.vehicles {
		if !s.vehicles[i].Advance() {
			s.vehicles[i] = s.newVehicle(tier)
		}
	}

	s.particles = effects.Step(s.particles)

	if len(s.followers) > syntheticMinRoster && entropy.Chance(s.rng, syntheticChance) {
		bonus := 5 + s.rng.Intn(20)
		s.addEvent(Event{
			ID:        "event_" + uuid.NewString(),
			Message:   fmt.Sprintf("A post brought +%d new residents!", bonus),
			Timestamp: s.now(),
			Category:  CategoryJoin,
		})
	}
}
