package api

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultSnapshotsPerMinute applies when Server.SnapshotsPerMinute is unset.
const defaultSnapshotsPerMinute = 30

// budget admits at most limit requests per route and client within a window.
// A client's window opens at its first request and is fixed from then on.
type budget struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	spent   map[budgetKey]*spend
	sweepAt time.Time
}

type budgetKey struct {
	route  string
	client string
}

type spend struct {
	count int
	start time.Time
}

func newBudget(limit int, window time.Duration) *budget {
	return &budget{
		limit:  limit,
		window: window,
		now:    time.Now,
		spent:  make(map[budgetKey]*spend),
	}
}

// take charges one request to (route, client). It returns how many requests
// remain in the window, or, once none do, false and the wait until it reopens.
func (b *budget) take(route, client string) (remaining int, wait time.Duration, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweep(now)

	k := budgetKey{route: route, client: client}
	sp := b.spent[k]
	if sp == nil || now.Sub(sp.start) >= b.window {
		sp = &spend{start: now}
		b.spent[k] = sp
	}
	if sp.count >= b.limit {
		return 0, sp.start.Add(b.window).Sub(now), false
	}
	sp.count++
	return b.limit - sp.count, 0, true
}

// sweep drops closed windows, at most once per window length.
func (b *budget) sweep(now time.Time) {
	if now.Before(b.sweepAt) {
		return
	}
	for k, sp := range b.spent {
		if now.Sub(sp.start) >= b.window {
			delete(b.spent, k)
		}
	}
	b.sweepAt = now.Add(b.window)
}

// clientIP returns the first X-Forwarded-For hop, or the remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limited charges each request to route's budget. Spent budgets get a 429
// with Retry-After in whole seconds.
func (s *Server) limited(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		remaining, wait, ok := s.frames.take(route, client)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.frames.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			slog.Debug("request budget spent", "route", route, "client", client, "retry_after", secs)
			http.Error(w, route+" budget spent, retry in "+strconv.Itoa(secs)+"s", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
