// Package img2ascii converts images to text by matching the brightness of
// square pixel blocks to the ink density of font glyphs.
package img2ascii

import (
	"log/slog"
	"math/bits"
	"sync"

	"github.com/wbrown/img2ascii/imageutil"
)

// Converter turns images into character grids. It keeps the brightness of
// the last image it converted and the brightness table of the last
// character set, so repeated runs only redo the work whose inputs changed.
// A Converter is safe for concurrent use; conversions are serialized.
type Converter struct {
	raster         Rasterizer
	rounding       RoundingMode
	minCharsPerRow int
	logger         *slog.Logger

	mu    sync.Mutex
	cache RunCache
	table *BrightnessTable
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a Converter with the given options. Defaults:
// Go Mono glyphs, RoundNearest, and a minimum resolution of
// max(1, paddedWidth/paddedHeight) characters per row.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		rounding: RoundNearest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRasterizer sets how glyph densities are measured.
func WithRasterizer(r Rasterizer) ConverterOption {
	return func(c *Converter) {
		c.raster = r
	}
}

// WithRoundingMode sets how block brightness is matched to glyphs.
func WithRoundingMode(mode RoundingMode) ConverterOption {
	return func(c *Converter) {
		c.rounding = mode
	}
}

// WithMinCharsPerRow raises the smallest accepted resolution.
func WithMinCharsPerRow(n int) ConverterOption {
	return func(c *Converter) {
		c.minCharsPerRow = n
	}
}

// WithLogger sets a logger for this converter instead of the package one.
func WithLogger(l *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = l
	}
}

func (c *Converter) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// SetRoundingMode changes the rounding mode for later conversions.
func (c *Converter) SetRoundingMode(mode RoundingMode) error {
	if !mode.Valid() {
		return configError("change rounding method", "unknown rounding mode %v", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rounding = mode
	return nil
}

// RoundingMode returns the current rounding mode.
func (c *Converter) RoundingMode() RoundingMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rounding
}

// ResolutionBounds returns the smallest and largest resolution accepted
// for an image of the given size. The upper bound is the largest power of
// two not exceeding width, so no column is made of padding alone.
func (c *Converter) ResolutionBounds(width, height int) (lo, hi int) {
	pw, ph := imageutil.NextPowerOfTwo(width), imageutil.NextPowerOfTwo(height)
	lo = max(1, pw/ph, c.minCharsPerRow)
	if width >= 1 {
		hi = 1 << (bits.Len(uint(width)) - 1)
	}
	return lo, hi
}

// ConvertImage converts img, using the image pointer as its identity.
func (c *Converter) ConvertImage(img *imageutil.RGBAImage, set CharacterSet, resolution int) ([][]rune, error) {
	return c.Convert(Source{Image: img}, set, resolution)
}

// Convert renders src as a grid of characters from set with resolution
// characters per row. Resolution must be a power of two within
// ResolutionBounds, and set must hold at least two characters.
//
// If src and resolution match the previous call the cached per-block
// brightness is reused and only the glyph lookup runs again. A changed
// set is reconciled into the existing table. On error no output is
// produced and the converter keeps its previous state.
func (c *Converter) Convert(src Source, set CharacterSet, resolution int) ([][]rune, error) {
	const op = "execute"
	if src.Image == nil || src.Image.Width() == 0 || src.Image.Height() == 0 {
		return nil, configError(op, "image is empty")
	}
	if set.Len() < MinCharacterSetSize {
		return nil, configError(op, "charset is too small (%d < %d)", set.Len(), MinCharacterSetSize)
	}
	if !imageutil.IsPowerOfTwo(resolution) {
		return nil, configError(op, "resolution %d is not a power of two", resolution)
	}
	if lo, hi := c.ResolutionBounds(src.Image.Width(), src.Image.Height()); resolution < lo || resolution > hi {
		return nil, configError(op, "exceeding boundaries: resolution %d not in [%d, %d]", resolution, lo, hi)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log().With("image", src.String(), "resolution", resolution)

	cached := c.cache.Match(src, resolution)
	var (
		padded     *imageutil.RGBAImage
		grid       imageutil.BlockGrid
		brightness [][]float64
	)
	if cached {
		log.Debug("reusing cached block brightness")
		grid, brightness = c.cache.Grid(), c.cache.Brightness()
	} else {
		log.Debug("computing block brightness")
		padded = imageutil.PadToPowerOfTwo(src.Image)
		var err error
		grid, err = imageutil.Partition(padded, resolution)
		if err != nil {
			return nil, &ConfigurationError{Op: op, Reason: "cannot partition image", Err: err}
		}
		brightness = grid.Brightness(padded)
	}

	if err := c.prepareTable(set, log); err != nil {
		return nil, err
	}
	c.cache.Record(cached)
	if !cached {
		c.cache.Store(src, resolution, padded, grid, brightness)
	}

	sel, err := c.table.selector(c.rounding)
	if err != nil {
		return nil, err
	}
	entries := c.table.entries
	out := make([][]rune, grid.Rows)
	for row := range out {
		out[row] = make([]rune, grid.Cols)
		for col := range out[row] {
			out[row][col] = sel(entries, brightness[row][col])
		}
	}

	log.Info("converted image", "rows", grid.Rows, "cols", grid.Cols,
		"cached", cached, "chars", c.table.Len(), "rounding", c.rounding)
	return out, nil
}

// prepareTable builds the table on first use and reconciles it with set
// afterwards.
func (c *Converter) prepareTable(set CharacterSet, log *slog.Logger) error {
	if c.raster == nil {
		r, err := DefaultRasterizer()
		if err != nil {
			return err
		}
		c.raster = r
	}
	if c.table == nil {
		t, err := NewBrightnessTable(set, c.raster)
		if err != nil {
			return err
		}
		c.table = t
		log.Debug("built brightness table", "chars", t.Len())
		return nil
	}
	stats, err := c.table.Reconcile(set)
	if err != nil {
		return err
	}
	if stats.Added > 0 || stats.Removed > 0 {
		log.Debug("reconciled brightness table", "added", stats.Added,
			"removed", stats.Removed, "rescans", stats.Rescans)
	}
	return nil
}

// LastBrightness returns a copy of the per-block brightness of the last
// successful conversion, or nil.
func (c *Converter) LastBrightness() [][]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.cache.Brightness()
	if src == nil {
		return nil
	}
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Glyphs returns the current brightness table entries, sorted by
// character, or nil before the first conversion.
func (c *Converter) Glyphs() []GlyphEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		return nil
	}
	return c.table.Entries()
}

// CacheStats returns brightness cache hit/miss statistics.
func (c *Converter) CacheStats() (hits, misses int, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Stats()
}

// Reset forgets the cached brightness and the brightness table.
func (c *Converter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Reset()
	c.table = nil
}
