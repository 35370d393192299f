// Package achievements evaluates follower milestones.
package achievements

import (
	"fmt"
	"time"
)

// Category selects which counter an achievement is measured against.
type Category string

const (
	CategoryFollowers Category = "followers" // total follower count
	CategoryDaily     Category = "daily"     // followers who joined today
	CategoryBuildings Category = "buildings" // reserved, never auto-evaluated
	CategoryDays      Category = "days"      // reserved, never auto-evaluated
	CategorySpecial   Category = "special"   // reserved, never auto-evaluated
)

// Achievement is one milestone definition together with its unlock state.
type Achievement struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
	Requirement int       `json:"requirement" yaml:"requirement"`
	Category    Category  `json:"category" yaml:"category"`
	Unlocked    bool      `json:"unlocked" yaml:"unlocked"`
	UnlockedAt  time.Time `json:"unlocked_at,omitempty" yaml:"-"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Updated       []Achievement
	NewlyUnlocked []Achievement
}

// Evaluate unlocks every locked achievement whose requirement is met.
// Unlocking is monotonic: unlocked entries are copied through untouched.
// The input slice is not modified.
func Evaluate(current []Achievement, followers, todayJoined int, now time.Time) Result {
	res := Result{Updated: make([]Achievement, len(current))}
	copy(res.Updated, current)

	for i := range res.Updated {
		a := &res.Updated[i]
		if a.Unlocked {
			continue
		}
		var met bool
		switch a.Category {
		case CategoryFollowers:
			met = followers >= a.Requirement
		case CategoryDaily:
			met = todayJoined >= a.Requirement
		}
		if !met {
			continue
		}
		a.Unlocked = true
		a.UnlockedAt = now
		res.NewlyUnlocked = append(res.NewlyUnlocked, *a)
	}
	return res
}

// Validate checks that ids are present and unique.
func Validate(list []Achievement) error {
	seen := make(map[string]bool, len(list))
	for i, a := range list {
		if a.ID == "" {
			return fmt.Errorf("achievement %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Default returns the stock milestone list.
func Default() []Achievement {
	return []Achievement{
		{ID: "first_10", Title: "First Steps", Description: "Reach 10 followers", Icon: "🌱", Requirement: 10, Category: CategoryFollowers},
		{ID: "first_50", Title: "Small Community", Description: "Reach 50 followers", Icon: "🏕️", Requirement: 50, Category: CategoryFollowers},
		{ID: "first_100", Title: "First Hundred", Description: "Reach 100 followers", Icon: "💯", Requirement: 100, Category: CategoryFollowers},
		{ID: "first_500", Title: "Village Founded", Description: "Reach 500 followers", Icon: "🏘️", Requirement: 500, Category: CategoryFollowers},
		{ID: "first_1000", Title: "City Status", Description: "Reach 1000 followers", Icon: "🏙️", Requirement: 1000, Category: CategoryFollowers},
		{ID: "first_5000", Title: "Metropolis", Description: "Reach 5000 followers", Icon: "🌆", Requirement: 5000, Category: CategoryFollowers},
		{ID: "first_10000", Title: "City of the Future", Description: "Reach 10000 followers", Icon: "🚀", Requirement: 10000, Category: CategoryFollowers},
		{ID: "daily_10", Title: "Good Day", Description: "10 new followers in one day", Icon: "⭐", Requirement: 10, Category: CategoryDaily},
		{ID: "daily_50", Title: "Viral Day", Description: "50 new followers in one day", Icon: "🔥", Requirement: 50, Category: CategoryDaily},
	}
}
