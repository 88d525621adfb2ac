package img2ascii

import (
	"fmt"
	"image"
	"math/bits"
	"os"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

const (
	// GlyphSize is the side of the square cell every character is
	// rasterized into.
	GlyphSize = 16

	// FirstPrintable and LastPrintable bound the characters the font
	// rasterizer supports (printable ASCII).
	FirstPrintable rune = 32
	LastPrintable  rune = 126

	// alphaThreshold is the coverage above which a pixel counts as on.
	alphaThreshold = 127
)

// GlyphBitmap is a GlyphSize x GlyphSize bitmap of a rendered character.
// Row y is stored in element y, with bit x set when pixel (x, y) is on.
type GlyphBitmap [GlyphSize]uint16

// Get reports whether pixel (x, y) is on. Out of range pixels are off.
func (g GlyphBitmap) Get(x, y int) bool {
	if x < 0 || x >= GlyphSize || y < 0 || y >= GlyphSize {
		return false
	}
	return g[y]&(1<<x) != 0
}

// Set turns pixel (x, y) on or off. Out of range pixels are ignored.
func (g *GlyphBitmap) Set(x, y int, on bool) {
	if x < 0 || x >= GlyphSize || y < 0 || y >= GlyphSize {
		return
	}
	if on {
		g[y] |= 1 << x
	} else {
		g[y] &^= 1 << x
	}
}

// Count returns the number of on pixels.
func (g GlyphBitmap) Count() int {
	n := 0
	for _, row := range g {
		n += bits.OnesCount16(row)
	}
	return n
}

// Density returns the fraction of on pixels, in [0, 1].
func (g GlyphBitmap) Density() float64 {
	return float64(g.Count()) / float64(GlyphSize*GlyphSize)
}

// Rasterizer renders a character into a GlyphBitmap. Implementations
// must be deterministic; unsupported characters return an
// *InvalidCharacterError.
type Rasterizer interface {
	Rasterize(r rune) (GlyphBitmap, error)
}

// IsPrintable reports whether r is in the printable ASCII range.
func IsPrintable(r rune) bool {
	return r >= FirstPrintable && r <= LastPrintable
}

// FontRasterizer renders printable ASCII characters from a TrueType font.
// Results are memoized per character.
type FontRasterizer struct {
	font *truetype.Font
	face font.Face
	name string

	mu    sync.Mutex
	cache map[rune]GlyphBitmap
}

var (
	defaultRasterizer     *FontRasterizer
	defaultRasterizerErr  error
	defaultRasterizerOnce sync.Once
)

// DefaultRasterizer returns a shared FontRasterizer using the Go Mono
// font bundled with golang.org/x/image.
func DefaultRasterizer() (*FontRasterizer, error) {
	defaultRasterizerOnce.Do(func() {
		defaultRasterizer, defaultRasterizerErr = NewFontRasterizer("Go Mono", gomono.TTF)
	})
	return defaultRasterizer, defaultRasterizerErr
}

// NewFontRasterizer parses ttf and prepares a rasterizer for it.
func NewFontRasterizer(name string, ttf []byte) (*FontRasterizer, error) {
	f, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	return &FontRasterizer{
		font: f,
		face: truetype.NewFace(f, &truetype.Options{
			Size:    GlyphSize,
			DPI:     72,
			Hinting: font.HintingFull,
		}),
		name:  name,
		cache: make(map[rune]GlyphBitmap),
	}, nil
}

// LoadFontRasterizer reads a TrueType font from path.
func LoadFontRasterizer(path string) (*FontRasterizer, error) {
	ttf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return NewFontRasterizer(path, ttf)
}

// Name returns the font name given at construction.
func (fr *FontRasterizer) Name() string {
	return fr.name
}

// Rasterize renders r, which must be printable ASCII.
func (fr *FontRasterizer) Rasterize(r rune) (GlyphBitmap, error) {
	if !IsPrintable(r) {
		return GlyphBitmap{}, &InvalidCharacterError{Op: "rasterize", Char: r}
	}

	fr.mu.Lock()
	defer fr.mu.Unlock()
	if g, ok := fr.cache[r]; ok {
		return g, nil
	}
	g, err := fr.render(r)
	if err != nil {
		return GlyphBitmap{}, err
	}
	fr.cache[r] = g
	return g, nil
}

// render draws r into an alpha image the size of a glyph cell and
// thresholds it. The glyph is centered horizontally on its advance and
// the baseline is placed so ascent and descent fit the cell.
func (fr *FontRasterizer) render(r rune) (GlyphBitmap, error) {
	img := image.NewAlpha(image.Rect(0, 0, GlyphSize, GlyphSize))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fr.font)
	ctx.SetFontSize(GlyphSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := fr.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	baselineY := (GlyphSize + ascent - descent) / 2

	x := fixed.I(0)
	if advance, ok := fr.face.GlyphAdvance(r); ok && advance < fixed.I(GlyphSize) {
		x = (fixed.I(GlyphSize) - advance) / 2
	}

	pt := fixed.Point26_6{X: x, Y: fixed.I(baselineY)}
	if _, err := ctx.DrawString(string(r), pt); err != nil {
		return GlyphBitmap{}, fmt.Errorf("failed to draw %q: %w", r, err)
	}

	var bitmap GlyphBitmap
	for y := 0; y < GlyphSize; y++ {
		for x := 0; x < GlyphSize; x++ {
			if img.AlphaAt(x, y).A > alphaThreshold {
				bitmap.Set(x, y, true)
			}
		}
	}
	return bitmap, nil
}
