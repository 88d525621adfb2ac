package img2ascii

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// GlyphData is a set of precomputed glyph bitmaps, the on-disk form
// written by cmd/compute_glyphs.
type GlyphData struct {
	FontName string
	Size     int
	Glyphs   map[rune]GlyphBitmap
}

// ComputeGlyphData rasterizes every printable ASCII character with r.
func ComputeGlyphData(name string, r Rasterizer) (*GlyphData, error) {
	data := &GlyphData{
		FontName: name,
		Size:     GlyphSize,
		Glyphs:   make(map[rune]GlyphBitmap),
	}
	for c := FirstPrintable; c <= LastPrintable; c++ {
		g, err := r.Rasterize(c)
		if err != nil {
			return nil, err
		}
		data.Glyphs[c] = g
	}
	return data, nil
}

// WriteGlyphData encodes data as a zstd compressed gob stream.
func WriteGlyphData(w io.Writer, data *GlyphData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(data); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode glyph data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// ReadGlyphData decodes a stream written by WriteGlyphData.
func ReadGlyphData(r io.Reader) (*GlyphData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var data GlyphData
	if err := gob.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode glyph data: %w", err)
	}
	if data.Size != GlyphSize {
		return nil, fmt.Errorf("glyph data has cell size %d, want %d", data.Size, GlyphSize)
	}
	return &data, nil
}

// SaveGlyphFile writes data to path.
func SaveGlyphFile(path string, data *GlyphData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteGlyphData(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// BitmapRasterizer serves glyphs from precomputed bitmaps.
type BitmapRasterizer struct {
	data *GlyphData
}

// NewBitmapRasterizer wraps already loaded glyph data.
func NewBitmapRasterizer(data *GlyphData) *BitmapRasterizer {
	return &BitmapRasterizer{data: data}
}

// LoadGlyphFile reads a glyph file written by SaveGlyphFile.
func LoadGlyphFile(path string) (*BitmapRasterizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glyph file: %w", err)
	}
	defer f.Close()

	data, err := ReadGlyphData(f)
	if err != nil {
		return nil, err
	}
	return NewBitmapRasterizer(data), nil
}

// Name returns the font name recorded in the glyph data.
func (br *BitmapRasterizer) Name() string {
	return br.data.FontName
}

// Rasterize returns the stored bitmap for r.
func (br *BitmapRasterizer) Rasterize(r rune) (GlyphBitmap, error) {
	g, ok := br.data.Glyphs[r]
	if !ok {
		return GlyphBitmap{}, &InvalidCharacterError{Op: "rasterize", Char: r}
	}
	return g, nil
}
