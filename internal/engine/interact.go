package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/geom"
	"github.com/shainyguy/followercity/internal/weather"
)

// pickRadius is the click tolerance around a citizen at zoom 1, in pixels.
const pickRadius = 30.0

// Resize sets the viewport and recenters the camera.
func (s *Simulation) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	s.width, s.height = w, h
	zoom, target := s.cam.Zoom, s.cam.TargetZoom
	s.cam = NewCamera(w/2, h/3)
	if zoom > 0 {
		s.cam.Zoom, s.cam.TargetZoom = zoom, target
	}
}

// Pan shifts the camera target by (dx, dy) screen pixels.
func (s *Simulation) Pan(dx, dy float64) {
	s.cam.Pan(dx, dy)
}

// ZoomBy multiplies the target zoom.
func (s *Simulation) ZoomBy(f float64) {
	s.cam.ZoomBy(f)
}

// SetZoom sets the target zoom.
func (s *Simulation) SetZoom(z float64) {
	s.cam.SetZoom(z)
}

// ScreenPos returns where c is drawn on screen.
func (s *Simulation) ScreenPos(c *citizens.Citizen) geom.Point {
	return s.cam.Project(geom.ToIso(c.X, c.Y), s.width, s.height)
}

// SearchCitizen highlights the first citizen whose username contains query,
// case-insensitively, and points the camera at it. An empty query clears
// the highlight and returns nil.
func (s *Simulation) SearchCitizen(query string) *SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		s.clearHighlight()
		s.search = nil
		return nil
	}

	for _, c := range s.citizens {
		if strings.Contains(strings.ToLower(c.Username), q) {
			s.highlight(c)
			s.search = &SearchResult{Found: true, Username: c.Username}
			return s.search
		}
	}

	s.clearHighlight()
	s.search = &SearchResult{Found: false, Username: q}
	return s.search
}

func (s *Simulation) highlight(c *citizens.Citizen) {
	if s.highlighted != nil {
		s.highlighted.Highlighted = false
	}
	c.Highlighted = true
	c.Jumping = true
	s.highlighted = c

	p := geom.ToIso(c.X, c.Y)
	s.cam.TargetX = s.width/2 - p.X
	s.cam.TargetY = s.height/2 - p.Y
	s.cam.TargetZoom = FocusZoom
}

func (s *Simulation) clearHighlight() {
	if s.highlighted != nil {
		s.highlighted.Highlighted = false
		s.highlighted = nil
	}
}

// SelectAt picks the citizen nearest to screen point (px, py) within the
// pick radius. A miss clears the selection, the highlight and the search.
func (s *Simulation) SelectAt(px, py float64) *citizens.Citizen {
	var (
		best     *citizens.Citizen
		bestDist = math.Inf(1)
	)
	limit := pickRadius * s.cam.Zoom
	for _, c := range s.citizens {
		p := s.ScreenPos(c)
		if d := geom.Dist(px, py, p.X, p.Y); d < limit && d < bestDist {
			best, bestDist = c, d
		}
	}

	if best != nil {
		s.selected = best
		s.highlight(best)
		if s.OnSelect != nil {
			s.OnSelect(best)
		}
		return best
	}

	if s.selected != nil {
		s.selected = nil
		if s.OnSelect != nil {
			s.OnSelect(nil)
		}
	}
	if s.highlighted != nil {
		s.clearHighlight()
		s.search = nil
	}
	return nil
}

// SetCitizenAction forces a citizen into state for an extended period.
func (s *Simulation) SetCitizenAction(id string, state citizens.State) error {
	c, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCitizen, id)
	}
	switch state {
	case citizens.StateWalking, citizens.StateIdle, citizens.StateWorking, citizens.StateWaving:
	default:
		return fmt.Errorf("engine: state %s cannot be forced", state)
	}
	citizens.Force(c, state, s.rng, float64(s.worldMap.Center()))
	return nil
}

// TriggerWeather starts a rain, snow or storm episode now.
func (s *Simulation) TriggerWeather(kind weather.Kind) error {
	next, err := weather.Trigger(s.weather, kind, s.rng)
	return s.setWeather(next, err)
}

// ApplyReading starts the episode a real-weather reading maps to, at the
// reading's intensity. Clear readings are rejected with ErrInvalidKind.
func (s *Simulation) ApplyReading(r weather.Reading) error {
	next, err := weather.TriggerAt(s.weather, r.Kind, r.Intensity, s.rng)
	return s.setWeather(next, err)
}

func (s *Simulation) setWeather(next weather.State, err error) error {
	if err != nil {
		return err
	}
	s.weather = next
	if s.OnWeather != nil {
		s.OnWeather(next.Kind)
	}
	return nil
}
