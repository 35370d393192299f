// Package avatars provides the shared avatar image cache. Entries are keyed
// by URL and reference-counted; every citizen showing the same avatar holds
// the key, never its own copy of the pixels. Loads are best-effort: a
// failure is logged at debug level and the entry stays failed.
package avatars

import (
	"context"
	"image"
	"log/slog"
	"sync"
)

// Status is the load state of one cache entry.
type Status uint8

const (
	StatusMissing Status = iota // no entry for the key
	StatusLoading
	StatusReady
	StatusFailed
)

// Fetcher loads and decodes one avatar.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (image.Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, key string) (image.Image, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, key string) (image.Image, error) {
	return f(ctx, key)
}

type entry struct {
	refs   int
	status Status
	img    image.Image
}

// Cache is safe for concurrent use.
type Cache struct {
	ctx     context.Context
	fetcher Fetcher

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
}

// New creates a cache. Loads stop when ctx is cancelled.
func New(ctx context.Context, fetcher Fetcher) *Cache {
	return &Cache{
		ctx:     ctx,
		fetcher: fetcher,
		entries: make(map[string]*entry),
	}
}

// Acquire adds a reference to key and starts loading it if this is the
// first reference. Empty keys are ignored.
func (c *Cache) Acquire(key string) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		return
	}
	e := &entry{refs: 1, status: StatusLoading}
	c.entries[key] = e

	c.wg.Add(1)
	go c.load(key, e)
}

func (c *Cache) load(key string, e *entry) {
	defer c.wg.Done()

	img, err := c.fetcher.Fetch(c.ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The entry may have been released (and possibly recreated) meanwhile.
	if c.entries[key] != e {
		return
	}
	if err != nil {
		slog.Debug("avatar load failed", "key", key, "error", err)
		e.status = StatusFailed
		return
	}
	e.img = img
	e.status = StatusReady
}

// Release drops a reference. The entry is evicted at zero references.
func (c *Cache) Release(key string) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(c.entries, key)
	}
}

// Image returns the decoded image for key, or nil if it is not ready.
func (c *Cache) Image(key string) image.Image {
	if c == nil || key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.status == StatusReady {
		return e.img
	}
	return nil
}

// Status reports the load state of key.
func (c *Cache) Status(key string) Status {
	if c == nil {
		return StatusMissing
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.status
	}
	return StatusMissing
}

// Refs returns the reference count of key.
func (c *Cache) Refs(key string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Wait blocks until every in-flight load has finished.
func (c *Cache) Wait() {
	if c != nil {
		c.wg.Wait()
	}
}
