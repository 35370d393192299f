package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/roster"
	"github.com/shainyguy/followercity/internal/weather"
)

func namedFollowers(names ...string) []roster.Follower {
	out := make([]roster.Follower, len(names))
	for i, n := range names {
		out[i] = roster.Follower{ID: n, Username: n, JoinedAt: testNow.Add(-72 * time.Hour)}
	}
	return out
}

func TestSearchCitizen(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.SetFollowers(namedFollowers("alexey_dev", "maria", "Bob"))

	res := sim.SearchCitizen("  ALEX ")
	require.NotNil(t, res)
	assert.Equal(t, SearchResult{Found: true, Username: "alexey_dev"}, *res)

	c, _ := sim.Citizen("alexey_dev")
	assert.True(t, c.Highlighted)
	assert.True(t, c.Jumping)

	cam := sim.Camera()
	p := geom.ToIso(c.X, c.Y)
	assert.InDelta(t, 400-p.X, cam.TargetX, 1e-9)
	assert.InDelta(t, 300-p.Y, cam.TargetY, 1e-9)
	assert.Equal(t, FocusZoom, cam.TargetZoom)

	res = sim.SearchCitizen("bob")
	require.NotNil(t, res)
	assert.Equal(t, "Bob", res.Username)
	assert.False(t, c.Highlighted, "only one citizen is highlighted at a time")

	res = sim.SearchCitizen("Zed")
	require.NotNil(t, res)
	assert.Equal(t, SearchResult{Found: false, Username: "zed"}, *res)
	bob, _ := sim.Citizen("Bob")
	assert.False(t, bob.Highlighted)

	assert.Nil(t, sim.SearchCitizen("   "))
	assert.Nil(t, sim.SearchResult())
}

func TestCameraZoomIsClamped(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.ZoomBy(10)
	assert.Equal(t, MaxZoom, sim.Camera().TargetZoom)
	sim.SetZoom(0.1)
	assert.Equal(t, MinZoom, sim.Camera().TargetZoom)
	sim.ZoomBy(1.1)
	assert.InDelta(t, 0.55, sim.Camera().TargetZoom, 1e-9)
}

func TestCameraEase(t *testing.T) {
	cam := NewCamera(0, 0)
	cam.Pan(100, -50)
	cam.SetZoom(2)
	cam.Ease(CameraEase)
	assert.InDelta(t, 10, cam.X, 1e-9)
	assert.InDelta(t, -5, cam.Y, 1e-9)
	assert.InDelta(t, 1.1, cam.Zoom, 1e-9)

	for i := 0; i < 200; i++ {
		cam.Ease(CameraEase)
	}
	assert.InDelta(t, 100, cam.X, 1e-6)
	assert.InDelta(t, 2, cam.Zoom, 1e-6)
}

func TestCameraProjectPivotsOnCenter(t *testing.T) {
	cam := NewCamera(0, 0)
	cam.Zoom = 2
	p := cam.Project(geom.Point{X: 400, Y: 300}, 800, 600)
	assert.Equal(t, geom.Point{X: 400, Y: 300}, p)

	p = cam.Project(geom.Point{X: 410, Y: 300}, 800, 600)
	assert.Equal(t, 420.0, p.X)
}

func TestSelectAtPicksNearest(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.SetFollowers(namedFollowers("a", "b", "c"))

	a, _ := sim.Citizen("a")
	b, _ := sim.Citizen("b")
	c, _ := sim.Citizen("c")
	a.X, a.Y = 10, 10
	b.X, b.Y = 10.2, 10
	c.X, c.Y = 25, 25

	var got []*citizens.Citizen
	sim.OnSelect = func(c *citizens.Citizen) { got = append(got, c) }

	p := sim.ScreenPos(b)
	assert.Same(t, b, sim.SelectAt(p.X, p.Y))
	assert.Same(t, b, sim.Selected())
	assert.True(t, b.Highlighted)

	p = sim.ScreenPos(a)
	assert.Same(t, a, sim.SelectAt(p.X-3, p.Y))
	assert.False(t, b.Highlighted)

	assert.Nil(t, sim.SelectAt(-5000, -5000))
	assert.Nil(t, sim.Selected())
	assert.False(t, a.Highlighted)
	assert.Nil(t, sim.SearchResult())

	require.Len(t, got, 3)
	assert.Same(t, b, got[0])
	assert.Same(t, a, got[1])
	assert.Nil(t, got[2])
}

func TestSelectAtRespectsZoom(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.SetFollowers(namedFollowers("a"))
	a, _ := sim.Citizen("a")

	p := sim.ScreenPos(a)
	assert.Nil(t, sim.SelectAt(p.X+35, p.Y), "outside the pick radius at zoom 1")

	sim.SetZoom(2)
	for i := 1; i <= 100; i++ {
		sim.Update(time.Duration(i) * 16 * time.Millisecond)
	}
	p = sim.ScreenPos(a)
	assert.Same(t, a, sim.SelectAt(p.X+35, p.Y), "the radius grows with zoom")
}

func TestSetCitizenAction(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.SetFollowers(namedFollowers("a"))

	err := sim.SetCitizenAction("nobody", citizens.StateWaving)
	assert.ErrorIs(t, err, ErrUnknownCitizen)

	assert.Error(t, sim.SetCitizenAction("a", citizens.StateEntering))

	require.NoError(t, sim.SetCitizenAction("a", citizens.StateWalking))
	a, _ := sim.Citizen("a")
	assert.Equal(t, citizens.StateWalking, a.State)
	assert.Equal(t, 300, a.StateTimer)
	center := float64(sim.Map().Center())
	assert.InDelta(t, center, a.TargetX, 7.5)
	assert.InDelta(t, center, a.TargetY, 7.5)

	require.NoError(t, sim.SetCitizenAction("a", citizens.StateWaving))
	assert.Equal(t, citizens.StateWaving, a.State)
}

func TestTriggerWeather(t *testing.T) {
	sim, _ := newTestSim(t)
	var kinds []weather.Kind
	sim.OnWeather = func(k weather.Kind) { kinds = append(kinds, k) }

	assert.ErrorIs(t, sim.TriggerWeather(weather.Rainbow), weather.ErrInvalidKind)
	assert.ErrorIs(t, sim.TriggerWeather(weather.Clear), weather.ErrInvalidKind)

	require.NoError(t, sim.TriggerWeather(weather.Snow))
	w := sim.Weather()
	assert.Equal(t, weather.Snow, w.Kind)
	assert.GreaterOrEqual(t, w.Intensity, 0.7)
	assert.GreaterOrEqual(t, w.Remaining, 20*time.Second)
	assert.LessOrEqual(t, w.Remaining, 60*time.Second)
	assert.Equal(t, []weather.Kind{weather.Snow}, kinds)
}

func TestApplyReadingUsesRealIntensity(t *testing.T) {
	sim, _ := newTestSim(t)
	var kinds []weather.Kind
	sim.OnWeather = func(k weather.Kind) { kinds = append(kinds, k) }

	require.NoError(t, sim.ApplyReading(weather.Reading{Kind: weather.Rain, Intensity: 0.55}))
	assert.Equal(t, weather.Rain, sim.Weather().Kind)
	assert.Equal(t, 0.55, sim.Weather().Intensity)

	assert.ErrorIs(t, sim.ApplyReading(weather.Reading{Kind: weather.Clear}), weather.ErrInvalidKind)
	assert.Equal(t, weather.Rain, sim.Weather().Kind, "a clear reading leaves the episode running")
	assert.Equal(t, []weather.Kind{weather.Rain}, kinds)
}

func TestResizeRecentersCamera(t *testing.T) {
	sim, _ := newTestSim(t)
	sim.SetZoom(1.5)
	sim.Resize(1200, 900)
	w, h := sim.Size()
	assert.Equal(t, 1200.0, w)
	assert.Equal(t, 900.0, h)
	cam := sim.Camera()
	assert.Equal(t, 600.0, cam.TargetX)
	assert.Equal(t, 300.0, cam.TargetY)
	assert.Equal(t, 1.5, cam.TargetZoom, "zoom survives a resize")

	sim.Resize(0, 10)
	w, _ = sim.Size()
	assert.Equal(t, 1200.0, w)
}

func TestSubscribeFanOut(t *testing.T) {
	sim, _ := newTestSim(t)
	id, ch := sim.Subscribe()
	other, otherCh := sim.Subscribe()
	assert.NotEqual(t, id, other)

	list := namedFollowers("newbie")
	list[0].JoinedAt = testNow.Add(-time.Minute)
	sim.SetFollowers(list)

	select {
	case e := <-ch:
		assert.Equal(t, "join_newbie", e.ID)
	default:
		t.Fatal("subscriber received nothing")
	}
	assert.NotEmpty(t, otherCh)

	sim.Unsubscribe(id)
	for range ch {
	}
	sim.Unsubscribe(id)
	sim.Unsubscribe(other)
}
