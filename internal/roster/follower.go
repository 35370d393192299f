// Package roster loads the follower list that the city is built from.
// A roster is always a full snapshot; the simulation diffs it by id.
package roster

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

// Follower is one social-media follower.
type Follower struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
	Avatar   string    `json:"avatar,omitempty"` // URL or path, optional
}

// Source supplies roster snapshots.
type Source interface {
	Load(ctx context.Context) ([]Follower, error)
}

// ErrDuplicateID is returned when two followers share an id.
var ErrDuplicateID = errors.New("roster: duplicate follower id")

// Validate checks that every follower has an id and a username and that
// ids are unique.
func Validate(list []Follower) error {
	seen := make(map[string]bool, len(list))
	for i, f := range list {
		if f.ID == "" {
			return fmt.Errorf("roster: follower %d has no id", i)
		}
		if f.Username == "" {
			return fmt.Errorf("roster: follower %q has no username", f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// JoinedSince counts followers who joined at or after t.
func JoinedSince(list []Follower, t time.Time) int {
	n := 0
	for _, f := range list {
		if !f.JoinedAt.Before(t) {
			n++
		}
	}
	return n
}

// fileFollower is the on-disk shape. Timestamps stay strings so both YAML
// and JSON files parse the same way.
type fileFollower struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	JoinedAt string `yaml:"joined_at"`
	Avatar   string `yaml:"avatar,omitempty"`
}

type fileRoster struct {
	Followers []fileFollower `yaml:"followers"`
}

// Parse decodes a YAML or JSON roster document.
func Parse(data []byte) ([]Follower, error) {
	var doc fileRoster
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	out := make([]Follower, 0, len(doc.Followers))
	for _, ff := range doc.Followers {
		joined, err := time.Parse(time.RFC3339, strings.TrimSpace(ff.JoinedAt))
		if err != nil {
			return nil, fmt.Errorf("follower %q joined_at: %w", ff.ID, err)
		}
		out = append(out, Follower{
			ID:       ff.ID,
			Username: ff.Username,
			JoinedAt: joined,
			Avatar:   ff.Avatar,
		})
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a roster in the file format accepted by Parse.
func Marshal(list []Follower) ([]byte, error) {
	doc := fileRoster{Followers: make([]fileFollower, 0, len(list))}
	for _, f := range list {
		doc.Followers = append(doc.Followers, fileFollower{
			ID:       f.ID,
			Username: f.Username,
			JoinedAt: f.JoinedAt.UTC().Format(time.RFC3339),
			Avatar:   f.Avatar,
		})
	}
	return yaml.Marshal(doc)
}

// LoadFile reads a roster file.
func LoadFile(path string) ([]Follower, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// SaveFile writes a roster file.
func SaveFile(path string, list []Follower) error {
	data, err := Marshal(list)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}

// Sample returns the built-in demo roster.
func Sample() []Follower {
	list, err := Parse(sampleYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded roster: %v", err))
	}
	return list
}

// FileSource re-reads a roster file on every Load.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) ([]Follower, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// Static serves a fixed snapshot.
type Static []Follower

// Load implements Source.
func (s Static) Load(context.Context) ([]Follower, error) {
	return s, nil
}
