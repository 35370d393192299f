package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"

	"github.com/shainyguy/followercity/internal/achievements"
	"github.com/shainyguy/followercity/internal/avatars"
	"github.com/shainyguy/followercity/internal/config"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/fonts"
	"github.com/shainyguy/followercity/internal/persistence"
	"github.com/shainyguy/followercity/internal/roster"
	"github.com/shainyguy/followercity/internal/weather"
	"github.com/shainyguy/followercity/internal/world"
)

type loadFunc func() (*config.Config, error)

// city is one fully wired scene: simulation, engine and its feeds.
type city struct {
	cfg    *config.Config
	sim    *engine.Simulation
	eng    *engine.Engine
	face   font.Face
	source roster.Source
	feed   *weather.Feed
	closer func() error
}

// openSource picks the roster source: an explicit file, the configured
// file, the SQLite store, or the bundled sample.
func openSource(cfg *config.Config, rosterPath string) (roster.Source, func() error, error) {
	if rosterPath == "" {
		rosterPath = cfg.Roster.File
	}
	switch {
	case rosterPath != "":
		slog.Info("roster source", "file", rosterPath)
		return roster.FileSource{Path: rosterPath}, nil, nil
	case cfg.Roster.Database != "":
		db, err := persistence.Open(cfg.Roster.Database)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("roster source", "database", cfg.Roster.Database)
		return db, db.Close, nil
	default:
		slog.Info("roster source", "sample", true)
		return roster.Static(roster.Sample()), nil, nil
	}
}

// newCity builds the scene at a w x h viewport and applies the first
// roster snapshot.
func newCity(ctx context.Context, cfg *config.Config, rosterPath string, w, h int) (*city, error) {
	levels, err := cfg.Levels()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.Seed()
	}
	gen := cfg.GenConfig()
	gen.Seed = seed
	worldMap := world.Generate(gen)

	source, closer, err := openSource(cfg, rosterPath)
	if err != nil {
		return nil, err
	}

	sim, err := engine.NewSimulation(engine.Options{
		Levels:       levels,
		Achievements: cfg.AchievementList(),
		Map:          worldMap,
		Width:        float64(w),
		Height:       float64(h),
		Rng:          entropy.NewSeeded(seed),
		Avatars:      avatars.New(ctx, avatars.NewLoader(cfg.Avatars.Dir, cfg.Avatars.Timeout)),
		Headline:     cfg.Billboard.Headline,
		Tagline:      cfg.Billboard.Tagline,
	})
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	list, err := source.Load(ctx)
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	sim.SetFollowers(list)

	stats := sim.Stats()
	slog.Info("city ready",
		"seed", seed,
		"map", worldMap.Size,
		"followers", humanize.Comma(int64(stats.CitizenCount)),
		"tier", stats.TierName,
		"decorations", len(worldMap.Decorations),
	)

	c := &city{
		cfg:    cfg,
		sim:    sim,
		eng:    engine.NewEngine(sim),
		face:   fonts.Load(cfg.Font.Path, cfg.Font.Size),
		source: source,
		closer: closer,
	}
	c.feed = weather.NewFeed(weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Location), cfg.Weather.PollInterval)
	c.wire()
	return c, nil
}

// wire attaches the engine hooks. Both run on the engine thread with the
// simulation already locked.
func (c *city) wire() {
	c.sim.OnAchievement = func(a achievements.Achievement) {
		slog.Info("achievement unlocked", "id", a.ID, "title", a.Title)
	}
	c.sim.OnWeather = func(k weather.Kind) {
		slog.Debug("weather changed", "kind", k)
	}

	// Every second: drain the real-weather feed.
	c.eng.OnSecond = func(uint64) {
		r, ok := c.feed.Poll()
		if !ok {
			return
		}
		if err := c.sim.ApplyReading(r); err != nil {
			slog.Debug("real weather not episodic", "kind", r.Kind, "description", r.Description)
			return
		}
		slog.Info("real weather applied", "kind", r.Kind, "intensity", fmt.Sprintf("%.2f", r.Intensity), "description", r.Description)
	}

	// Every scene minute: status line.
	c.eng.OnMinute = func(frame uint64) {
		stats := c.sim.Stats()
		slog.Info("city status",
			"time", engine.SceneTime(frame),
			"citizens", stats.CitizenCount,
			"tier", stats.TierName,
			"progress", fmt.Sprintf("%.1f%%", stats.Progress*100),
			"today", stats.TodayJoined,
			"vehicles", len(c.sim.Vehicles()),
			"particles", c.sim.Particles(),
		)
	}
}

// start launches the weather feed and, for reloadable sources, the roster
// poller. Both stop with ctx.
func (c *city) start(ctx context.Context) {
	if c.feed != nil {
		slog.Info("real weather enabled", "location", c.cfg.Weather.Location)
		go c.feed.Run(ctx)
	}
	if _, static := c.source.(roster.Static); static {
		return
	}
	go c.pollRoster(ctx, c.cfg.Roster.PollInterval)
}

// pollRoster reloads the roster on each tick and applies it as a full
// snapshot. Load errors keep the previous snapshot.
func (c *city) pollRoster(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		list, err := c.source.Load(ctx)
		if err != nil {
			slog.Warn("roster reload failed", "error", err)
			continue
		}
		c.eng.Do(func(sim *engine.Simulation) { sim.SetFollowers(list) })
		slog.Debug("roster reloaded", "followers", len(list))
	}
}

func (c *city) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
