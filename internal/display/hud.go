package display

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/shainyguy/followercity/internal/citizens"
	"github.com/shainyguy/followercity/internal/display/ui"
	"github.com/shainyguy/followercity/internal/weather"
)

const (
	hudLineHeight = 16
	hudPad        = 10
	hudWidth      = 320
	hudColumns    = 50
)

var (
	hudPanel    = color.NRGBA{R: 15, G: 23, B: 42, A: 180}
	hudBarTrack = color.NRGBA{R: 51, G: 65, B: 85, A: 255}
	hudBarFill  = color.NRGBA{R: 74, G: 222, B: 128, A: 255}
)

// weatherKeys trigger a weather episode.
var weatherKeys = map[ebiten.Key]weather.Kind{
	ebiten.KeyR: weather.Rain,
	ebiten.KeyN: weather.Snow,
	ebiten.KeyT: weather.Storm,
}

// actionKeys set the selected citizen's behavior.
var actionKeys = map[ebiten.Key]citizens.State{
	ebiten.Key1: citizens.StateWalking,
	ebiten.Key2: citizens.StateIdle,
	ebiten.Key3: citizens.StateWorking,
	ebiten.Key4: citizens.StateWaving,
}

// drawHUD paints the panel, the tier progress bar and the help line.
func drawHUD(screen *ebiten.Image, st ui.State) {
	lines := ui.Lines(st)
	h := float32(len(lines)*hudLineHeight + 3*hudPad)
	vector.DrawFilledRect(screen, hudPad, hudPad, hudWidth, h, hudPanel, false)

	y := 2 * hudPad
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, ui.Truncate(line, hudColumns), 2*hudPad, y)
		y += hudLineHeight
		if i == ui.ProgressLine {
			barW := float32(hudWidth - 2*hudPad)
			vector.DrawFilledRect(screen, 2*hudPad, float32(y), barW, 4, hudBarTrack, false)
			vector.DrawFilledRect(screen, 2*hudPad, float32(y), barW*float32(st.Stats.Progress), 4, hudBarFill, false)
			y += hudPad / 2
		}
	}

	sh := screen.Bounds().Dy()
	ebitenutil.DebugPrintAt(screen, ui.HelpLine, hudPad, sh-hudLineHeight-hudPad/2)
}
