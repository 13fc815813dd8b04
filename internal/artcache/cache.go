// Package artcache holds decoded, size-bounded album artwork shared by all
// HTTP handlers. Entries are evicted strictly in insertion order.
package artcache

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"

	"mpdgoweb/internal/daemon"
)

const (
	DefaultCapacity = 100
	MaxDimension    = 256
)

// Key identifies one album's artwork.
type Key struct {
	Artist string
	Album  string
}

// Source fetches raw artwork for an album from the daemon.
type Source interface {
	AlbumArt(ctx context.Context, artist, album string) ([]byte, error)
}

// Store is an optional persistent tier consulted on a miss before the
// daemon. It holds already-scaled bytes.
type Store interface {
	Get(ctx context.Context, k Key) ([]byte, bool, error)
	Put(ctx context.Context, k Key, art []byte) error
}

// Cache maps Key to encoded image bytes. The mutex is never held across
// daemon, store or decode work, so two concurrent misses for one key both
// fetch; only the first to finish is inserted.
type Cache struct {
	mu      sync.Mutex
	entries map[Key][]byte
	order   []Key

	capacity    int
	maxDim      int
	source      Source
	store       Store
	placeholder []byte
	verbose     bool
}

type Option func(*Cache)

// WithCapacity sets the entry limit. Values below 1 keep the default.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n >= 1 {
			c.capacity = n
		}
	}
}

func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func WithPlaceholder(b []byte) Option {
	return func(c *Cache) { c.placeholder = b }
}

func WithVerbose(v bool) Option {
	return func(c *Cache) { c.verbose = v }
}

// New builds an empty cache. Without WithPlaceholder a generated 1x1 PNG
// stands in for missing art.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[Key][]byte),
		capacity: DefaultCapacity,
		maxDim:   MaxDimension,
		source:   src,
	}
	for _, o := range opts {
		o(c)
	}
	if len(c.placeholder) == 0 {
		c.placeholder = blankPNG()
	}
	return c
}

// GetOrFetch returns artwork for (artist, album), fetching and scaling it
// on a miss. It never fails: missing or undecodable art yields the
// placeholder. The returned slice is the caller's to keep.
func (c *Cache) GetOrFetch(ctx context.Context, artist, album string) []byte {
	k := Key{Artist: artist, Album: album}

	c.mu.Lock()
	art, ok := c.entries[k]
	if ok {
		art = bytes.Clone(art)
	}
	c.mu.Unlock()
	if ok {
		return art
	}

	art, cacheable := c.fetch(ctx, k)
	if cacheable {
		c.insert(k, art)
	}
	return bytes.Clone(art)
} // func (c *Cache) GetOrFetch

// fetch resolves a miss. cacheable is false only when the daemon could not
// be reached, so an outage does not pin placeholders.
func (c *Cache) fetch(ctx context.Context, k Key) (art []byte, cacheable bool) {
	if c.store != nil {
		stored, ok, err := c.store.Get(ctx, k)
		switch {
		case err != nil:
			log.Printf("[art] store get %q/%q: %v", k.Artist, k.Album, err)
		case ok && len(stored) > 0:
			return stored, true
		}
	}

	raw, err := c.source.AlbumArt(ctx, k.Artist, k.Album)
	if err != nil {
		var cerr *daemon.ConnectionError
		if errors.As(err, &cerr) {
			log.Printf("[art] %q/%q: %v, serving placeholder", k.Artist, k.Album, err)
			return c.placeholder, false
		}
		if c.verbose {
			log.Printf("[art] %q/%q: %v, using placeholder", k.Artist, k.Album, err)
		}
		return c.placeholder, true
	}
	if len(raw) == 0 {
		return c.placeholder, true
	}

	art, err = scaleDown(raw, c.maxDim)
	if err != nil {
		if c.verbose {
			log.Printf("[art] %q/%q: decode: %v, using placeholder", k.Artist, k.Album, err)
		}
		return c.placeholder, true
	}

	if c.store != nil {
		if err := c.store.Put(ctx, k, art); err != nil {
			log.Printf("[art] store put %q/%q: %v", k.Artist, k.Album, err)
		}
	}
	return art, true
} // func (c *Cache) fetch

// insert adds k unless a concurrent miss already did, recording it once in
// the eviction queue, then trims the oldest keys down to capacity.
func (c *Cache) insert(k Key, art []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[k]; ok {
		return
	}
	c.entries[k] = art
	c.order = append(c.order, k)

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		if c.verbose {
			log.Printf("[art] evicted %q/%q", oldest.Artist, oldest.Album)
		}
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys, oldest first.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Key(nil), c.order...)
}

// Placeholder returns a copy of the stand-in image.
func (c *Cache) Placeholder() []byte {
	return bytes.Clone(c.placeholder)
}
