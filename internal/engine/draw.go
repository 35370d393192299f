package engine

import (
	"fmt"
	"sort"

	"github.com/shainyguy/followercity/internal/render"
)

// drawable is one depth-sorted scene object.
type drawable struct {
	y    float64
	draw func(cv *render.Canvas, env render.Env)
}

// Env returns the per-frame render context.
func (s *Simulation) Env() render.Env {
	return render.Env{
		Frame:     s.frame,
		Time:      s.clock,
		TimeOfDay: s.timeOfDay,
		Zoom:      s.cam.Zoom,
		Headline:  s.headline,
		Tagline:   s.tagline,
	}
}

// Render draws the whole scene onto surf: sky, clouds, then the zoomed world
// (river, ground, bridges and depth-sorted objects), then the weather
// overlay and celebration particles.
func (s *Simulation) Render(surf render.Surface) error {
	cv, err := render.NewCanvas(surf)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	env := s.Env()
	w, h := cv.Size()

	render.DrawSky(cv, s.timeOfDay)
	for _, c := range s.clouds {
		render.DrawCloud(cv, c)
	}

	cv.Save()
	cv.Translate(w/2, h/2)
	cv.Scale(s.cam.Zoom, s.cam.Zoom)
	cv.Translate(-w/2, -h/2)
	cv.Translate(s.cam.X, s.cam.Y)

	m := s.worldMap
	for _, t := range m.River {
		render.DrawRiverTile(cv, t, env)
	}
	bg := s.Level().Background
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if _, river := m.RiverAt(x, y); river {
				continue
			}
			render.DrawGroundTile(cv, x, y, bg, m.Tint(x, y), m.IsPath(x, y))
		}
	}
	for _, b := range m.Bridges {
		render.DrawBridge(cv, b)
	}

	for _, d := range s.drawables() {
		d.draw(cv, env)
	}
	cv.Restore()

	render.DrawWeather(cv, s.weather, env)
	for _, p := range s.particles {
		render.DrawParticle(cv, p)
	}
	return nil
}

// drawables collects buildings, citizens, vehicles and decorations sorted
// by depth. Ties keep insertion order.
func (s *Simulation) drawables() []drawable {
	out := make([]drawable, 0, len(s.buildings)+len(s.citizens)+len(s.vehicles)+len(s.worldMap.Decorations))
	for _, b := range s.buildings {
		b := b
		out = append(out, drawable{y: float64(b.GridY), draw: func(cv *render.Canvas, env render.Env) {
			render.DrawBuilding(cv, b, env)
		}})
	}
	for _, c := range s.citizens {
		c := c
		avatar := s.avatars.Image(c.Avatar)
		out = append(out, drawable{y: c.Y, draw: func(cv *render.Canvas, env render.Env) {
			render.DrawCitizen(cv, c, avatar, env)
		}})
	}
	for _, v := range s.vehicles {
		v := v
		out = append(out, drawable{y: v.Y, draw: func(cv *render.Canvas, _ render.Env) {
			render.DrawVehicle(cv, v)
		}})
	}
	for _, d := range s.worldMap.Decorations {
		d := d
		out = append(out, drawable{y: float64(d.Y), draw: func(cv *render.Canvas, env render.Env) {
			render.DrawDecoration(cv, d, env)
		}})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].y < out[j].y })
	return out
}
