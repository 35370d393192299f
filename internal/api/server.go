// Package api provides the HTTP API for observing the city.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"

	"github.com/shainyguy/followercity/internal/achievements"
	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/engine"
	"github.com/shainyguy/followercity/internal/render/raster"
	"github.com/shainyguy/followercity/internal/weather"
)

const maxSSEConns = 2

// Server serves the city state over HTTP. Every read or write of the
// simulation goes through Eng.Do so requests never race the frame loop.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Face     font.Face // label face for PNG snapshots
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	RelayKey string // Bearer token for the SSE stream. Empty = open stream.

	// Per-client snapshot renders per minute. Zero uses the default.
	SnapshotsPerMinute int

	// Active SSE connection count (atomic).
	sseConns int32

	frames *budget
	srv    *http.Server
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	perMinute := s.SnapshotsPerMinute
	if perMinute <= 0 {
		perMinute = defaultSnapshotsPerMinute
	}
	s.frames = newBudget(perMinute, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/citizens", s.handleCitizens)
	mux.HandleFunc("/api/v1/citizen/", s.handleCitizenRoutes)
	mux.HandleFunc("/api/v1/achievements", s.handleAchievements)
	mux.HandleFunc("/api/v1/snapshot.png", s.limited("snapshot", s.handleSnapshot))

	// SSE streaming endpoint.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Endpoints that read on GET and act on POST.
	mux.HandleFunc("/api/v1/weather", s.adminOnly(s.handleWeather))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/search", s.adminOnly(s.handleSearch))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "relay_auth", s.RelayKey != "")

	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a server begun with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken reports whether r carries "Bearer <key>".
func checkBearerToken(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no FOLLOWERCITY_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !checkBearerToken(r, s.AdminKey) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	frame, speed, running := s.Eng.Status()

	var status map[string]any
	s.Eng.Do(func(sim *engine.Simulation) {
		stats := sim.Stats()
		wx := sim.Weather()
		status = map[string]any{
			"name":        "Follower City",
			"frame":       frame,
			"scene_time":  engine.SceneTime(frame),
			"speed":       speed,
			"running":     running,
			"citizens":    stats.CitizenCount,
			"tier":        stats.TierName,
			"progress":    stats.Progress,
			"time_of_day": sim.TimeOfDay(),
			"weather":     wx.Kind.String(),
			"vehicles":    len(sim.Vehicles()),
			"buildings":   len(sim.Buildings()),
		}
	})
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats engine.Stats
	s.Eng.Do(func(sim *engine.Simulation) { stats = sim.Stats() })
	writeJSON(w, stats)
}

// eventView is an Event with a human-readable age.
type eventView struct {
	engine.Event
	Age string `json:"age"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := engine.MaxEvents
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	var events []engine.Event
	s.Eng.Do(func(sim *engine.Simulation) { events = sim.Events() })

	// Optional category filter.
	if cat := r.URL.Query().Get("category"); cat != "" {
		var filtered []engine.Event
		for _, e := range events {
			if string(e.Category) == cat {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if len(events) > limit {
		events = events[:limit]
	}

	result := make([]eventView, 0, len(events))
	for _, e := range events {
		result = append(result, eventView{Event: e, Age: humanize.Time(e.Timestamp)})
	}
	writeJSON(w, result)
}

// citizenSummary is the list form of a citizen.
type citizenSummary struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	State    citizens.State `json:"state"`
	VIP      bool           `json:"vip"`
	OldTimer bool           `json:"old_timer"`
	Joined   string         `json:"joined"`
}

func (s *Server) handleCitizens(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	var result []citizenSummary
	s.Eng.Do(func(sim *engine.Simulation) {
		for _, c := range sim.Citizens() {
			if q != "" && !strings.Contains(strings.ToLower(c.Username), q) {
				continue
			}
			result = append(result, citizenSummary{
				ID:       c.ID,
				Username: c.Username,
				State:    c.State,
				VIP:      c.VIP,
				OldTimer: c.OldTimer,
				Joined:   humanize.Time(c.JoinedAt),
			})
		}
	})
	if result == nil {
		result = []citizenSummary{}
	}
	writeJSON(w, result)
}

// handleCitizenRoutes dispatches between citizen detail (GET
// /api/v1/citizen/:id) and the action control (POST /api/v1/citizen/:id/action).
func (s *Server) handleCitizenRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/citizen/"), "/")
	id := parts[0]
	if id == "" {
		http.Error(w, "missing citizen id", http.StatusBadRequest)
		return
	}

	if len(parts) >= 2 && parts[1] == "action" {
		s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
			s.handleCitizenAction(w, r, id)
		})(w, r)
		return
	}

	var (
		snap citizens.Citizen
		ok   bool
	)
	s.Eng.Do(func(sim *engine.Simulation) {
		var c *citizens.Citizen
		if c, ok = sim.Citizen(id); ok {
			snap = *c
		}
	})
	if !ok {
		http.Error(w, "citizen not found", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleCitizenAction(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	state, err := citizens.ParseState(req.Action)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Eng.Do(func(sim *engine.Simulation) { err = sim.SetCitizenAction(id, state) })
	switch {
	case errors.Is(err, engine.ErrUnknownCitizen):
		http.Error(w, "citizen not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("citizen action set", "citizen", id, "action", state)
	writeJSON(w, map[string]any{"success": true, "id": id, "action": state})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	var list []achievements.Achievement
	s.Eng.Do(func(sim *engine.Simulation) { list = sim.Achievements() })

	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, map[string]any{
		"unlocked":     unlocked,
		"total":        len(list),
		"achievements": list,
	})
}

// weatherView is the public form of the weather state.
type weatherView struct {
	Kind      string  `json:"kind"`
	Intensity float64 `json:"intensity"`
	Remaining float64 `json:"remaining_seconds"`
	Particles int     `json:"particles"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var err error
	if r.Method == http.MethodPost {
		var req struct {
			Kind string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		kind, perr := weather.ParseKind(req.Kind)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		s.Eng.Do(func(sim *engine.Simulation) { err = sim.TriggerWeather(kind) })
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Info("weather triggered", "kind", kind)
	}

	var wx weather.State
	s.Eng.Do(func(sim *engine.Simulation) { wx = sim.Weather() })
	writeJSON(w, weatherView{
		Kind:      wx.Kind.String(),
		Intensity: wx.Intensity,
		Remaining: wx.Remaining.Seconds(),
		Particles: len(wx.Particles),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	_, speed, _ := s.Eng.Status()
	writeJSON(w, map[string]float64{"speed": speed})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var res *engine.SearchResult
	s.Eng.Do(func(sim *engine.Simulation) { res = sim.SearchCitizen(req.Query) })
	if res == nil {
		http.Error(w, "query required", http.StatusBadRequest)
		return
	}
	writeJSON(w, res)
}

// handleSnapshot renders the current frame to PNG at the viewport size.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.Face == nil {
		http.Error(w, "snapshots disabled", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	var err error
	s.Eng.Do(func(sim *engine.Simulation) {
		vw, vh := sim.Size()
		var surf *raster.Surface
		if surf, err = raster.New(int(vw), int(vh), s.Face); err != nil {
			return
		}
		if err = sim.Render(surf); err != nil {
			return
		}
		err = surf.EncodePNG(&buf)
	})
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleStream provides an SSE endpoint for real-time event streaming.
// Limits concurrent connections; requires the relay key when one is set.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.RelayKey != "" && !checkBearerToken(r, s.RelayKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Connection limit.
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe to events.
	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	// Send the current feed as catch-up, oldest first.
	var events []engine.Event
	s.Eng.Do(func(sim *engine.Simulation) { events = sim.Events() })
	for i := len(events) - 1; i >= 0; i-- {
		writeSSEEvent(w, events[i])
	}
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	// Stream loop with heartbeat.
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, data)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
