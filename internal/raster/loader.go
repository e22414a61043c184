package raster

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// Cache provides thread-safe caching of grayscale rasters decoded from disk.
//
// Rasters are keyed by the exact path string used to load them. Batch
// analysis hits the same wall image several times (reference localization,
// crack detection, overlay rendering); the cache keeps that to one decode.
//
// Cached rasters remain in memory until Evict or Clear. Callers must not
// mutate a raster obtained from the cache.
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]*Gray
}

// NewCache creates an empty raster cache, safe for concurrent use.
func NewCache() *Cache {
	return &Cache{rasters: make(map[string]*Gray)}
}

// Load returns the grayscale raster for an image file, decoding it on the
// first request and serving the cached copy afterwards. Supported formats
// are PNG, JPEG and GIF.
func (c *Cache) Load(path string) (*Gray, error) {
	c.mu.RLock()
	if g, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	g, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}

	c.mu.Lock()
	c.rasters[path] = g
	c.mu.Unlock()

	return g, nil
}

// Evict removes a single raster from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Clear drops every cached raster, freeing the associated memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Gray)
	c.mu.Unlock()
}
