package avatars

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAcquireIsIdempotentPerKey(t *testing.T) {
	var calls int32
	c := New(context.Background(), FetcherFunc(func(ctx context.Context, key string) (image.Image, error) {
		atomic.AddInt32(&calls, 1)
		return solid(color.White), nil
	}))

	c.Acquire("a.png")
	c.Acquire("a.png")
	c.Acquire("a.png")
	c.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, c.Refs("a.png"))
	assert.Equal(t, StatusReady, c.Status("a.png"))
	assert.NotNil(t, c.Image("a.png"))

	c.Release("a.png")
	c.Release("a.png")
	assert.NotNil(t, c.Image("a.png"))
	c.Release("a.png")
	assert.Nil(t, c.Image("a.png"))
	assert.Equal(t, StatusMissing, c.Status("a.png"))
}

func TestFailureIsAbsorbed(t *testing.T) {
	var calls int32
	c := New(context.Background(), FetcherFunc(func(ctx context.Context, key string) (image.Image, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom")
	}))
	c.Acquire("bad")
	c.Wait()
	c.Acquire("bad")
	c.Wait()

	assert.Equal(t, StatusFailed, c.Status("bad"))
	assert.Nil(t, c.Image("bad"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "failed loads are not retried")
}

func TestReleaseDuringLoadDropsResult(t *testing.T) {
	gate := make(chan struct{})
	c := New(context.Background(), FetcherFunc(func(ctx context.Context, key string) (image.Image, error) {
		<-gate
		return solid(color.Black), nil
	}))
	c.Acquire("slow")
	c.Release("slow")
	close(gate)
	c.Wait()
	assert.Equal(t, StatusMissing, c.Status("slow"))
}

func TestEmptyKeyAndNilCache(t *testing.T) {
	var nilCache *Cache
	nilCache.Acquire("x")
	nilCache.Release("x")
	assert.Nil(t, nilCache.Image("x"))

	c := New(context.Background(), FetcherFunc(func(context.Context, string) (image.Image, error) {
		t.Fatal("fetch called for empty key")
		return nil, nil
	}))
	c.Acquire("")
	c.Wait()
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, solid(color.NRGBA{R: 200, A: 255})))
}

func TestLoaderFileAndHTTP(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "photo"), 0o755))
	writePNG(t, filepath.Join(dir, "photo", "1.png"))

	l := NewLoader(dir, time.Second)
	img, err := l.Fetch(context.Background(), "photo/1.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, ThumbSize, ThumbSize), img.Bounds())
	r, _, _, _ := img.At(10, 10).RGBA()
	assert.Greater(t, r, uint32(0))

	_, err = l.Fetch(context.Background(), "photo/missing.png")
	assert.Error(t, err)

	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()
	img, err = l.Fetch(context.Background(), srv.URL+"/photo/1.png")
	require.NoError(t, err)
	assert.NotNil(t, img)

	_, err = l.Fetch(context.Background(), srv.URL+"/photo/none.png")
	assert.Error(t, err)
}

func TestThumbnailMasksCorners(t *testing.T) {
	img := Thumbnail(solid(color.NRGBA{G: 255, A: 255}), 16)
	require.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner lies outside the circle")
	_, g, _, a := img.At(8, 8).RGBA()
	assert.InDelta(t, 0xffff, a, 0x200)
	assert.InDelta(t, 0xffff, g, 0x200)
}
