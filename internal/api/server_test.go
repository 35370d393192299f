package api

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/entropy"
	"github.com/shainyguy/followercity/internal/roster"
	"github.com/shainyguy/followercity/internal/weather"
	"github.com/shainyguy/followercity/internal/world"
)

const testKey = "letmein"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := world.DefaultGenConfig()
	gen.Seed = 1
	sim, err := engine.NewSimulation(engine.Options{
		Levels: world.DefaultLevels(),
		Map:    world.Generate(gen),
		Width:  320,
		Height: 240,
		Rng:    entropy.NewSeeded(3),
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	sim.SetFollowers([]roster.Follower{
		{ID: "1", Username: "alexey_dev", JoinedAt: now.Add(-72 * time.Hour)},
		{ID: "2", Username: "maria", JoinedAt: now.Add(-72 * time.Hour)},
		{ID: "3", Username: "newbie", JoinedAt: now.Add(-time.Minute)},
	})

	return &Server{
		Sim:      sim,
		Eng:      engine.NewEngine(sim),
		Face:     basicfont.Face7x13,
		AdminKey: testKey,
	}
}

func do(t *testing.T, h http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndStats(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "Follower City", status["name"])
	assert.Equal(t, 3.0, status["citizens"])
	assert.Equal(t, "Tent", status["tier"])
	assert.Equal(t, "clear", status["weather"])

	rec = do(t, h, http.MethodGet, "/api/v1/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats engine.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.CitizenCount)
	assert.Equal(t, 1, stats.TodayJoined)
	assert.Equal(t, 100, stats.NextTierThreshold)
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/events?category=join", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []eventView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "join_3", events[0].ID)
	assert.Equal(t, engine.CategoryJoin, events[0].Category)
	assert.NotEmpty(t, events[0].Age)
}

func TestCitizens(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/citizens?q=ALEX", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alexey_dev", list[0]["username"])

	rec = do(t, h, http.MethodGet, "/api/v1/citizens?q=nobody", "", "")
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/citizen/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var c map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "maria", c["username"])

	rec = do(t, h, http.MethodGet, "/api/v1/citizen/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/citizen/", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCitizenAction(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	path := "/api/v1/citizen/1/action"

	for _, tc := range []struct {
		name string
		body string
		key  string
		want int
	}{
		{"no token", `{"action":"waving"}`, "", http.StatusUnauthorized},
		{"wrong token", `{"action":"waving"}`, "nope", http.StatusUnauthorized},
		{"bad json", `{`, testKey, http.StatusBadRequest},
		{"unknown state", `{"action":"dancing"}`, testKey, http.StatusBadRequest},
		{"reserved state", `{"action":"entering"}`, testKey, http.StatusBadRequest},
		{"ok", `{"action":"waving"}`, testKey, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, path, tc.body, tc.key)
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	var state citizens.State
	s.Eng.Do(func(sim *engine.Simulation) {
		c, _ := sim.Citizen("1")
		state = c.State
	})
	assert.Equal(t, citizens.StateWaving, state)

	rec := do(t, h, http.MethodPost, "/api/v1/citizen/99/action", `{"action":"idle"}`, testKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	s := newTestServer(t)
	s.AdminKey = ""
	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/weather", `{"kind":"rain"}`, "anything")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWeather(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/weather", `{"kind":"storm"}`, testKey)
	require.Equal(t, http.StatusOK, rec.Code)
	var wv weatherView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wv))
	assert.Equal(t, "storm", wv.Kind)
	assert.GreaterOrEqual(t, wv.Remaining, 20.0)

	rec = do(t, h, http.MethodGet, "/api/v1/weather", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wv))
	assert.Equal(t, weather.Storm.String(), wv.Kind)

	rec = do(t, h, http.MethodPost, "/api/v1/weather", `{"kind":"rainbow"}`, testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/weather", `{"kind":"hail"}`, testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/search", `{"query":"mar"}`, testKey)
	require.Equal(t, http.StatusOK, rec.Code)
	var res engine.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Found)
	assert.Equal(t, "maria", res.Username)

	rec = do(t, h, http.MethodPost, "/api/v1/search", `{"query":"  "}`, testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpeed(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":4}`, testKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"speed":4}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":-1}`, testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAchievements(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/achievements", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Unlocked int `json:"unlocked"`
		Total    int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 9, body.Total)
	assert.Zero(t, body.Unlocked, "first snapshot of three followers unlocks nothing")
}

func TestSnapshotPNG(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/snapshot.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestCORS(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://city.example.com")
	s := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://city.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://city.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamSendsCatchUp(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: join", sc.Text())
	require.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), `"id":"join_3"`)
}

func TestStreamRequiresRelayKey(t *testing.T) {
	s := newTestServer(t)
	s.RelayKey = "relay"
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBudgetWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := newBudget(2, time.Minute)
	b.now = func() time.Time { return now }

	left, _, ok := b.take("snapshot", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, left)
	_, _, ok = b.take("snapshot", "a")
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	left, wait, ok := b.take("snapshot", "a")
	assert.False(t, ok)
	assert.Zero(t, left)
	assert.Equal(t, 40*time.Second, wait)

	_, _, ok = b.take("snapshot", "b")
	assert.True(t, ok, "clients are charged separately")
	_, _, ok = b.take("other", "a")
	assert.True(t, ok, "routes are charged separately")

	now = now.Add(40 * time.Second)
	_, _, ok = b.take("snapshot", "a")
	assert.True(t, ok, "the window reopens")

	now = now.Add(5 * time.Minute)
	b.take("snapshot", "c")
	assert.Len(t, b.spent, 1, "closed windows are swept")
}

func TestSnapshotBudget(t *testing.T) {
	s := newTestServer(t)
	s.SnapshotsPerMinute = 1
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/snapshot.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(t, h, http.MethodGet, "/api/v1/snapshot.png", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.NotEqual(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 192.168.0.1")
	assert.Equal(t, "10.0.0.1", clientIP(req))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", clientIP(req))
}
