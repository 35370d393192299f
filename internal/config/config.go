// Package config loads the city configuration: embedded defaults, an
// optional YAML file on top, then environment overrides.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shainyguy/followercity/internal/achievements"
	"github.com/shainyguy/followercity/internal/palette"
	"github.com/shainyguy/followercity/internal/world"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the full application configuration.
type Config struct {
	Seed     int64  `yaml:"seed"`
	LogLevel string `yaml:"log_level"`

	Window struct {
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Title  string `yaml:"title"`
	} `yaml:"window"`

	Map struct {
		Size          int     `yaml:"size"`
		FlowerTries   int     `yaml:"flower_tries"`
		FlowerDensity float64 `yaml:"flower_density"`
	} `yaml:"map"`

	Roster struct {
		File         string        `yaml:"file"`
		Database     string        `yaml:"database"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"roster"`

	Server struct {
		Port               int    `yaml:"port"`
		AdminKey           string `yaml:"admin_key"`
		SnapshotWidth      int    `yaml:"snapshot_width"`
		SnapshotHeight     int    `yaml:"snapshot_height"`
		SnapshotsPerMinute int    `yaml:"snapshots_per_minute"`
	} `yaml:"server"`

	Weather struct {
		APIKey       string        `yaml:"api_key"`
		Location     string        `yaml:"location"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"weather"`

	Avatars struct {
		Dir     string        `yaml:"dir"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"avatars"`

	Font struct {
		Path string  `yaml:"path"`
		Size float64 `yaml:"size"`
	} `yaml:"font"`

	Billboard struct {
		Headline string `yaml:"headline"`
		Tagline  string `yaml:"tagline"`
	} `yaml:"billboard"`

	Tiers        []LevelSpec                `yaml:"levels"`
	Achievements []achievements.Achievement `yaml:"achievements"`
}

// LevelSpec is the file form of a tier.
type LevelSpec struct {
	Name         string   `yaml:"name"`
	MinFollowers int      `yaml:"min_followers"`
	Buildings    []string `yaml:"buildings"`
	Background   string   `yaml:"background"`
	Description  string   `yaml:"description"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	return &cfg, nil
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides individual keys from the environment.
func (c *Config) applyEnv() {
	c.Seed = envInt64OrDefault("FOLLOWERCITY_SEED", c.Seed)
	c.LogLevel = envOrDefault("FOLLOWERCITY_LOG_LEVEL", c.LogLevel)
	c.Server.Port = envIntOrDefault("FOLLOWERCITY_PORT", c.Server.Port)
	c.Server.AdminKey = envOrDefault("FOLLOWERCITY_ADMIN_KEY", c.Server.AdminKey)
	c.Roster.File = envOrDefault("FOLLOWERCITY_ROSTER", c.Roster.File)
	c.Roster.Database = envOrDefault("FOLLOWERCITY_DB", c.Roster.Database)
	c.Weather.APIKey = envOrDefault("OPENWEATHER_API_KEY", c.Weather.APIKey)
	c.Weather.Location = envOrDefault("FOLLOWERCITY_WEATHER_LOCATION", c.Weather.Location)
}

// Validate checks every configuration invariant. A failure is fatal.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Server.SnapshotWidth <= 0 || c.Server.SnapshotHeight <= 0 {
		return fmt.Errorf("config: invalid snapshot size %dx%d", c.Server.SnapshotWidth, c.Server.SnapshotHeight)
	}
	if c.Server.SnapshotsPerMinute < 1 {
		return fmt.Errorf("config: snapshots_per_minute must be >= 1, got %d", c.Server.SnapshotsPerMinute)
	}
	if c.Map.Size < 4 {
		return fmt.Errorf("config: map size %d is too small", c.Map.Size)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Levels(); err != nil {
		return err
	}
	if err := achievements.Validate(c.Achievements); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// GenConfig returns the map generation parameters.
func (c *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Size:          c.Map.Size,
		Seed:          c.Seed,
		FlowerTries:   c.Map.FlowerTries,
		FlowerDensity: c.Map.FlowerDensity,
	}
}

// AchievementList returns the configured milestones, or the stock list.
func (c *Config) AchievementList() []achievements.Achievement {
	if len(c.Achievements) == 0 {
		return achievements.Default()
	}
	out := make([]achievements.Achievement, len(c.Achievements))
	copy(out, c.Achievements)
	return out
}

// Levels converts the tier specs, resolving building names and colors.
func (c *Config) Levels() (world.Levels, error) {
	out := make(world.Levels, 0, len(c.Tiers))
	for _, spec := range c.Tiers {
		lvl := world.Level{
			Name:         spec.Name,
			MinFollowers: spec.MinFollowers,
			Description:  spec.Description,
		}
		bg, err := palette.ParseHex(spec.Background)
		if err != nil {
			return nil, fmt.Errorf("config: tier %q: %w", spec.Name, err)
		}
		lvl.Background = bg
		for _, name := range spec.Buildings {
			k, err := world.ParseBuildingKind(name)
			if err != nil {
				return nil, fmt.Errorf("config: tier %q: %w", spec.Name, err)
			}
			lvl.Buildings = append(lvl.Buildings, k)
		}
		out = append(out, lvl)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64OrDefault(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
