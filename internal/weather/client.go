package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	owmEndpoint = "https://api.openweathermap.org/data/2.5/weather"

	readingTTL = 5 * time.Minute
	minRetry   = time.Minute
	maxRetry   = 10 * time.Minute

	stormWind = 15.0 // m/s

	// Hourly precipitation, in mm, at which an episode runs at full intensity.
	heavyRain = 8.0
	heavySnow = 4.0
)

// Reading is the city's view of the weather at a real place: the episode it
// maps to and how hard it is coming down.
type Reading struct {
	Kind        Kind      `json:"kind"`
	Intensity   float64   `json:"intensity"`
	Description string    `json:"description"`
	Temp        float64   `json:"temp"` // Celsius
	Wind        float64   `json:"wind"` // m/s
	At          time.Time `json:"at"`
}

// Client reads current conditions for one location from OpenWeatherMap.
// Readings are reused for readingTTL; failed requests open a retry window
// that doubles up to maxRetry.
type Client struct {
	apiKey   string
	location string
	endpoint string
	http     *http.Client
	now      func() time.Time

	mu    sync.Mutex
	last  Reading
	have  bool
	retry retryWindow
}

// NewClient creates a client for location. Returns nil if apiKey is empty.
func NewClient(apiKey, location string) *Client {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "Moscow,RU"
	}
	return &Client{
		apiKey:   apiKey,
		location: location,
		endpoint: owmEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// retryWindow blocks requests until a deadline after each failure.
type retryWindow struct {
	until time.Time
	wait  time.Duration
}

func (w *retryWindow) failed(now time.Time) {
	switch {
	case w.wait == 0:
		w.wait = minRetry
	case w.wait < maxRetry:
		w.wait = min(2*w.wait, maxRetry)
	}
	w.until = now.Add(w.wait)
}

// Fetch returns the current reading. While a request is failing the last
// good reading is returned instead, if there is one.
func (c *Client) Fetch(ctx context.Context) (Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.have && now.Sub(c.last.At) < readingTTL {
		return c.last, nil
	}
	if now.Before(c.retry.until) {
		if c.have {
			return c.last, nil
		}
		return Reading{}, fmt.Errorf("weather: retrying in %s", c.retry.until.Sub(now).Round(time.Second))
	}

	r, err := c.query(ctx)
	if err != nil {
		c.retry.failed(now)
		slog.Debug("weather request failed", "location", c.location, "retry_in", c.retry.wait, "error", err)
		if c.have {
			return c.last, nil
		}
		return Reading{}, err
	}

	r.At = now
	c.last, c.have = r, true
	c.retry = retryWindow{}
	slog.Debug("weather read", "location", c.location, "kind", r.Kind, "intensity", r.Intensity)
	return r, nil
}

func (c *Client) query(ctx context.Context) (Reading, error) {
	q := url.Values{
		"q":     {c.location},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("building weather request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Reading{}, fmt.Errorf("weather: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{}, fmt.Errorf("decoding weather response: %w", err)
	}
	return body.reading(), nil
}

// owmResponse is the subset of the current-weather payload the city uses.
type owmResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneHour float64 `json:"1h"`
	} `json:"snow"`
}

func (o owmResponse) reading() Reading {
	r := Reading{Kind: Clear, Temp: o.Main.Temp, Wind: o.Wind.Speed}
	group := ""
	if len(o.Weather) > 0 {
		r.Description = o.Weather[0].Description
		group = strings.ToLower(o.Weather[0].Main)
	}

	switch {
	case group == "thunderstorm" || r.Wind > stormWind:
		r.Kind = Storm
		r.Intensity = precipitation(o.Rain.OneHour, heavyRain, 0.7)
	case group == "snow":
		r.Kind = Snow
		r.Intensity = precipitation(o.Snow.OneHour, heavySnow, 0.5)
	case group == "rain" || group == "drizzle":
		r.Kind = Rain
		r.Intensity = precipitation(o.Rain.OneHour, heavyRain, 0.5)
	}
	return r
}

// precipitation maps an hourly volume onto [floor, 1], reaching 1 at heavy.
func precipitation(mm, heavy, floor float64) float64 {
	return floor + (1-floor)*math.Min(math.Max(mm/heavy, 0), 1)
}
