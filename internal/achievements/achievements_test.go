package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestEvaluateUnlocksByCategory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := Evaluate(Default(), 120, 12, now)

	assert.Equal(t, []string{"first_10", "first_50", "first_100", "daily_10"}, ids(res.NewlyUnlocked))
	for _, a := range res.NewlyUnlocked {
		assert.True(t, a.Unlocked)
		assert.Equal(t, now, a.UnlockedAt)
	}
	require.Len(t, res.Updated, len(Default()))
	assert.False(t, res.Updated[3].Unlocked)
}

func TestEvaluateIsMonotonic(t *testing.T) {
	first := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res := Evaluate(Default(), 60, 0, first)
	require.Len(t, res.NewlyUnlocked, 2)

	// Equal and greater counts never unlock the same entry twice.
	for i, n := range []int{60, 60, 100, 5000} {
		later := first.Add(time.Duration(i+1) * time.Hour)
		next := Evaluate(res.Updated, n, 0, later)
		for _, a := range next.NewlyUnlocked {
			assert.NotContains(t, []string{"first_10", "first_50"}, a.ID)
		}
		res = next
	}

	// Falling counts never re-lock.
	res = Evaluate(res.Updated, 0, 0, first.Add(24*time.Hour))
	assert.Empty(t, res.NewlyUnlocked)
	for _, a := range res.Updated[:6] {
		assert.True(t, a.Unlocked, a.ID)
	}
	assert.Equal(t, first, res.Updated[0].UnlockedAt)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	in := Default()
	_ = Evaluate(in, 100000, 100, time.Now())
	for _, a := range in {
		assert.False(t, a.Unlocked)
	}
}

func TestReservedCategoriesStayLocked(t *testing.T) {
	list := []Achievement{{ID: "x", Requirement: 0, Category: CategorySpecial}}
	res := Evaluate(list, 1000, 1000, time.Now())
	assert.Empty(t, res.NewlyUnlocked)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))
	assert.Error(t, Validate([]Achievement{{ID: "a"}, {ID: "a"}}))
	assert.Error(t, Validate([]Achievement{{}}))
}
