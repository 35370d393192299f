package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"

	"github.com/shainyguy/followercity/internal/display/ui"
	"github.com/shainyguy/followercity/internal/engine"
)

// Game implements ebiten.Game. Each Update applies input and advances the
// engine one frame; Draw renders the scene and the HUD.
type Game struct {
	ctx  context.Context
	eng  *engine.Engine
	surf *Surface
	now  func() time.Time

	w, h int

	drag      ui.Drag
	touchDrag bool
	pinch     ui.Pinch
	search    ui.SearchBox
	touches   []ebiten.TouchID
	chars     []rune

	renderErr bool
}

// NewGame wires eng to a window. The game ends when ctx is cancelled.
func NewGame(ctx context.Context, eng *engine.Engine, face font.Face) *Game {
	return &Game{
		ctx:  ctx,
		eng:  eng,
		surf: NewSurface(face),
		now:  time.Now,
	}
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

// Update handles input and steps the scene.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.eng.Do(g.handleInput)
	g.eng.Advance(1)
	return nil
}

// Draw renders the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.eng.Do(func(sim *engine.Simulation) {
		g.surf.Begin(screen)
		if err := sim.Render(g.surf); err != nil && !g.renderErr {
			g.renderErr = true
			slog.Error("render failed", "error", err)
		}
		g.surf.End()

		drawHUD(screen, ui.State{
			Stats:      sim.Stats(),
			Events:     sim.Events(),
			Weather:    sim.Weather(),
			Selected:   sim.Selected(),
			Featured:   sim.Featured(),
			Search:     sim.SearchResult(),
			SearchOpen: g.search.Open,
			Query:      g.search.Query(),
			Now:        g.now(),
		})
	})
}

// Layout follows the window size and keeps the viewport in sync.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.eng.Do(func(sim *engine.Simulation) {
			sim.Resize(float64(outsideWidth), float64(outsideHeight))
		})
	}
	return outsideWidth, outsideHeight
}

func (g *Game) handleInput(sim *engine.Simulation) {
	if g.handleSearch(sim) {
		return
	}
	g.handleKeys(sim)
	g.handlePointer(sim)
}

// handleSearch drives the "/" query line. It reports whether the line
// consumed the keyboard this frame.
func (g *Game) handleSearch(sim *engine.Simulation) bool {
	if !g.search.Open {
		if inpututil.IsKeyJustPressed(ebiten.KeySlash) {
			g.search.Open = true
			g.chars = ebiten.AppendInputChars(g.chars[:0])
			g.search.Insert(g.chars)
			return true
		}
		return false
	}

	g.chars = ebiten.AppendInputChars(g.chars[:0])
	g.search.Insert(g.chars)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.search.Backspace()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		q := g.search.Close()
		if res := sim.SearchCitizen(q); res != nil {
			slog.Debug("citizen search", "query", q, "found", res.Found)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.search.Close()
		sim.SearchCitizen("")
	}
	return true
}

func (g *Game) handleKeys(sim *engine.Simulation) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		sim.SearchCitizen("")
	}
	for key, kind := range weatherKeys {
		if inpututil.IsKeyJustPressed(key) {
			if err := sim.TriggerWeather(kind); err != nil {
				slog.Warn("weather trigger failed", "kind", kind, "error", err)
			}
		}
	}
	sel := sim.Selected()
	if sel == nil {
		return
	}
	for key, state := range actionKeys {
		if inpututil.IsKeyJustPressed(key) {
			if err := sim.SetCitizenAction(sel.ID, state); err != nil {
				slog.Warn("citizen action failed", "citizen", sel.ID, "error", err)
			}
		}
	}
}

// handlePointer pans on drag, selects on click and zooms on wheel or pinch.
func (g *Game) handlePointer(sim *engine.Simulation) {
	if _, dy := ebiten.Wheel(); dy != 0 {
		sim.ZoomBy(ui.WheelZoom(dy))
	}
	zoom := sim.Camera().Zoom

	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	switch len(g.touches) {
	case 0:
		g.pinch.Reset()
		if g.touchDrag {
			g.touchDrag = false
			if g.drag.End() {
				sim.SelectAt(g.drag.LastX, g.drag.LastY)
			}
		}
	case 1:
		g.pinch.Reset()
		x, y := ebiten.TouchPosition(g.touches[0])
		if !g.touchDrag {
			g.touchDrag = true
			g.drag.Begin(float64(x), float64(y))
			break
		}
		dx, dy := g.drag.Move(float64(x), float64(y))
		sim.Pan(dx/zoom, dy/zoom)
	default:
		// A second finger turns the gesture into a pinch; it never clicks.
		g.drag.Active = false
		x0, y0 := ebiten.TouchPosition(g.touches[0])
		x1, y1 := ebiten.TouchPosition(g.touches[1])
		if f := g.pinch.Update(float64(x0), float64(y0), float64(x1), float64(y1)); f != 1 {
			sim.ZoomBy(f)
		}
	}
	if g.touchDrag {
		return
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.drag.Begin(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if g.drag.End() {
			sim.SelectAt(x, y)
		}
	case g.drag.Active && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		dx, dy := g.drag.Move(x, y)
		sim.Pan(dx/zoom, dy/zoom)
	}
}
