package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/geom"
)

func TestQuota(t *testing.T) {
	for _, tc := range []struct{ tier, want int }{
		{0, 0}, {1, 0}, {2, 2}, {3, 4}, {4, 6}, {5, 8}, {9, 8},
	} {
		assert.Equal(t, tc.want, Quota(tc.tier), "tier %d", tc.tier)
	}
}

func TestNewPlacesOnAvenue(t *testing.T) {
	rng := entropy.NewSeeded(1)
	for i := 0; i < 50; i++ {
		v := New(i, 5, 30, rng)
		horizontal := v.Y == 15 && v.X == 0 && v.TargetX == 30 && v.TargetY == 15
		vertical := v.X == 15 && v.Y == 0 && v.TargetX == 15 && v.TargetY == 30
		assert.True(t, horizontal || vertical, "vehicle %d off avenue: %+v", i, v)
		assert.Contains(t, []Kind{Car, Bus, Drone, UFO}, v.Kind)
		if v.Kind.Airborne() {
			assert.Equal(t, 0.08, v.Speed)
		} else {
			assert.Equal(t, 0.04, v.Speed)
		}
	}
}

func TestLowTierOnlyCars(t *testing.T) {
	rng := entropy.NewSeeded(2)
	for i := 0; i < 20; i++ {
		assert.Equal(t, Car, New(i, 2, 30, rng).Kind)
	}
}

func TestTrainSpeed(t *testing.T) {
	// Intn(4) on 0.6 picks index 2, the train at tier 4.
	v := New(1, 4, 30, &entropy.Sequence{Values: []float64{0.6}})
	require.Equal(t, Train, v.Kind)
	assert.Equal(t, 0.05, v.Speed)
}

func TestAdvanceLifecycle(t *testing.T) {
	v := New(1, 5, 30, entropy.NewSeeded(3))
	ticks := 0
	for {
		near := geom.Dist(v.X, v.Y, v.TargetX, v.TargetY) < ArrivalRadius
		alive := v.Advance()
		ticks++
		require.Equal(t, !near, alive, "tick %d", ticks)
		if !alive {
			break
		}
		require.Less(t, ticks, 10000)
	}
	assert.Equal(t, ticks, v.AnimFrame)
	assert.Less(t, geom.Dist(v.X, v.Y, v.TargetX, v.TargetY), ArrivalRadius)
}

func TestDirectionFollowsX(t *testing.T) {
	east := Vehicle{X: 0, Y: 15, TargetX: 30, TargetY: 15, Speed: 0.04}
	require.True(t, east.Advance())
	assert.Equal(t, 1, east.Direction)

	south := Vehicle{X: 15, Y: 0, TargetX: 15, TargetY: 30, Speed: 0.04, Direction: 1}
	require.True(t, south.Advance())
	assert.Equal(t, -1, south.Direction, "vertical routes face left")
}
