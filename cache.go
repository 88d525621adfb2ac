package img2ascii

import (
	"github.com/wbrown/img2ascii/imageutil"
)

// Source is an image together with its identity. Two sources with the
// same non-empty ID are treated as the same image; without an ID the
// image pointer is the identity.
type Source struct {
	ID    string
	Image *imageutil.RGBAImage
}

type sourceKey struct {
	id  string
	img *imageutil.RGBAImage
}

func (s Source) key() sourceKey {
	if s.ID != "" {
		return sourceKey{id: s.ID}
	}
	return sourceKey{img: s.Image}
}

func (s Source) String() string {
	if s.ID != "" {
		return s.ID
	}
	return "<anonymous image>"
}

// RunCache remembers the padded image and per-block brightness of the
// previous conversion, keyed on image identity and resolution.
type RunCache struct {
	valid      bool
	key        sourceKey
	resolution int
	padded     *imageutil.RGBAImage
	grid       imageutil.BlockGrid
	brightness [][]float64

	hits   int
	misses int
}

// Match reports whether the cache holds results for src at resolution.
func (c *RunCache) Match(src Source, resolution int) bool {
	return c.valid && c.key == src.key() && c.resolution == resolution
}

// Record counts a hit or a miss. Only conversions that produced output
// are recorded.
func (c *RunCache) Record(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Store replaces the cached results.
func (c *RunCache) Store(src Source, resolution int, padded *imageutil.RGBAImage,
	grid imageutil.BlockGrid, brightness [][]float64) {
	c.valid = true
	c.key = src.key()
	c.resolution = resolution
	c.padded = padded
	c.grid = grid
	c.brightness = brightness
}

// Brightness returns the cached brightness matrix without copying it.
func (c *RunCache) Brightness() [][]float64 {
	return c.brightness
}

// Grid returns the cached block layout.
func (c *RunCache) Grid() imageutil.BlockGrid {
	return c.grid
}

// Padded returns the cached padded image.
func (c *RunCache) Padded() *imageutil.RGBAImage {
	return c.padded
}

// Reset drops the cached results and statistics.
func (c *RunCache) Reset() {
	*c = RunCache{}
}

// Stats returns cache hit/miss statistics.
func (c *RunCache) Stats() (hits, misses int, hitRate float64) {
	total := c.hits + c.misses
	if total == 0 {
		return 0, 0, 0
	}
	return c.hits, c.misses, float64(c.hits) / float64(total)
}
