package avatars

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbSize is the edge length avatars are downscaled to.
const ThumbSize = 64

const maxAvatarBytes = 4 << 20

// Loader fetches avatars from http(s) URLs or from files relative to BaseDir.
type Loader struct {
	BaseDir string
	Client  *http.Client
}

// NewLoader creates a loader with a bounded HTTP timeout.
func NewLoader(baseDir string, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{BaseDir: baseDir, Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (l *Loader) Fetch(ctx context.Context, key string) (image.Image, error) {
	rc, err := l.open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	src, _, err := image.Decode(io.LimitReader(rc, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("decode avatar %q: %w", key, err)
	}
	return Thumbnail(src, ThumbSize), nil
}

func (l *Loader) open(ctx context.Context, key string) (io.ReadCloser, error) {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
		if err != nil {
			return nil, fmt.Errorf("build avatar request: %w", err)
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch avatar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch avatar %q: status %d", key, resp.StatusCode)
		}
		return resp.Body, nil
	}

	path := key
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, filepath.FromSlash(key))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open avatar: %w", err)
	}
	return f, nil
}

// Thumbnail scales src into a size x size square and masks it to the
// inscribed circle. Pixels outside the circle are fully transparent.
func Thumbnail(src image.Image, size int) image.Image {
	square := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(square, square.Bounds(), src, src.Bounds(), draw.Src, nil)

	dst := image.NewRGBA(square.Bounds())
	draw.DrawMask(dst, dst.Bounds(), square, image.Point{}, circleMask{r: float64(size) / 2}, image.Point{}, draw.Over)
	return dst
}

// circleMask is an alpha mask of a disk of radius r anchored at the origin.
type circleMask struct {
	r float64
}

func (c circleMask) ColorModel() color.Model { return color.AlphaModel }

func (c circleMask) Bounds() image.Rectangle {
	d := int(math.Ceil(2 * c.r))
	return image.Rect(0, 0, d, d)
}

func (c circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - c.r
	dy := float64(y) + 0.5 - c.r
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
