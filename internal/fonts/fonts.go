// Package fonts loads the font face shared by the raster and window surfaces.
package fonts

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultSize is the label size in points at 72 DPI.
const DefaultSize = 10

// Load returns a face for the TrueType/OpenType file at path, or for the
// embedded Go Regular font when path is empty. Any failure falls back to
// the fixed 7x13 bitmap face.
func Load(path string, size float64) font.Face {
	if size <= 0 {
		size = DefaultSize
	}
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("font load failed, using bitmap face", "path", path, "error", err)
			return basicfont.Face7x13
		}
		data = b
	}
	face, err := parse(data, size)
	if err != nil {
		slog.Warn("font parse failed, using bitmap face", "path", path, "error", err)
		return basicfont.Face7x13
	}
	return face
}

func parse(data []byte, size float64) (font.Face, error) {
	tt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingVertical,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}
