package img2ascii

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii/imageutil"
)

var midGray = imageutil.RGB{R: 128, G: 128, B: 128}

func TestConvertMidGray(t *testing.T) {
	img := imageutil.CreateSolidImage(2, 2, midGray)
	conv := NewConverter(WithRasterizer(stubRasterizer{'.': 4, '#': 60}))

	out, err := conv.ConvertImage(img, NewCharacterSet('.', '#'), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0], 1)
	assert.Equal(t, '#', out[0][0])

	b := conv.LastBrightness()
	require.Len(t, b, 1)
	assert.InDelta(t, 128.0/255, b[0][0], 1e-9)
}

func TestConvertMidGrayDefaultFont(t *testing.T) {
	img := imageutil.CreateSolidImage(2, 2, midGray)
	conv := NewConverter()

	out, err := conv.ConvertImage(img, NewCharacterSet('.', '#'), 1)
	require.NoError(t, err)
	assert.Equal(t, [][]rune{{'#'}}, out)
}

func TestConvertGrid(t *testing.T) {
	// Black left half, white right half.
	img := imageutil.NewRGBAImage(8, 8)
	img.Fill(imageutil.White)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGB(x, y, imageutil.RGB{})
		}
	}
	conv := NewConverter(WithRasterizer(abcd))

	out, err := conv.ConvertImage(img, CharacterSetFromString("ad"), 4)
	require.NoError(t, err)
	assert.Equal(t, [][]rune{
		[]rune("aadd"),
		[]rune("aadd"),
		[]rune("aadd"),
		[]rune("aadd"),
	}, out)
}

func TestConvertPadsToPowerOfTwo(t *testing.T) {
	// 3x2 black pads to 4x2 with a white column on the right.
	img := imageutil.CreateSolidImage(3, 2, imageutil.RGB{})
	conv := NewConverter(WithRasterizer(abcd))

	// Four columns would exceed the 3px image width.
	_, err := conv.ConvertImage(img, CharacterSetFromString("acd"), 4)
	assert.ErrorIs(t, err, ErrConfiguration)

	out, err := conv.ConvertImage(img, CharacterSetFromString("acd"), 2)
	require.NoError(t, err)
	// The right block is half black, half padding.
	assert.Equal(t, [][]rune{[]rune("ac")}, out)

	padded := conv.cache.Padded()
	require.NotNil(t, padded)
	assert.NotSame(t, img, padded)
	assert.Equal(t, 4, padded.Width())
	assert.Equal(t, 2, padded.Height())
	assert.Equal(t, imageutil.White, padded.GetRGB(3, 1))

	// A cache hit keeps the padded image from the first run.
	_, err = conv.ConvertImage(img, CharacterSetFromString("ad"), 2)
	require.NoError(t, err)
	assert.Same(t, padded, conv.cache.Padded())
}

func TestConvertRejectsPaddingColumns(t *testing.T) {
	img := imageutil.CreateSolidImage(100, 100, imageutil.RGB{})
	conv := NewConverter(WithRasterizer(abcd))

	_, err := conv.ConvertImage(img, CharacterSetFromString("ad"), 128)
	assert.ErrorIs(t, err, ErrConfiguration)

	out, err := conv.ConvertImage(img, CharacterSetFromString("ad"), 64)
	require.NoError(t, err)
	assert.Len(t, out[0], 64)
}

func TestConvertCacheReusesBrightness(t *testing.T) {
	img := imageutil.CreateGradientImage(64, 64)
	src := Source{ID: "gradient.png", Image: img}
	conv := NewConverter(WithRasterizer(abcd))

	first, err := conv.Convert(src, CharacterSetFromString("abcd"), 8)
	require.NoError(t, err)
	b1 := conv.LastBrightness()

	second, err := conv.Convert(src, CharacterSetFromString("ad"), 8)
	require.NoError(t, err)
	b2 := conv.LastBrightness()

	assert.Equal(t, b1, b2, "brightness must be bit-identical across runs")
	assert.NotEqual(t, first, second)
	for _, row := range second {
		for _, c := range row {
			assert.Contains(t, []rune("ad"), c)
		}
	}

	hits, misses, rate := conv.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 0.5, rate)

	// A different resolution or image identity is a miss.
	_, err = conv.Convert(src, CharacterSetFromString("ad"), 16)
	require.NoError(t, err)
	_, err = conv.Convert(Source{ID: "other.png", Image: img}, CharacterSetFromString("ad"), 16)
	require.NoError(t, err)
	hits, misses, _ = conv.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
}

func TestConvertAnonymousSourceUsesPointer(t *testing.T) {
	conv := NewConverter(WithRasterizer(abcd))
	set := CharacterSetFromString("abcd")
	a := imageutil.CreateGradientImage(16, 16)
	b := a.Clone()

	for _, img := range []*imageutil.RGBAImage{a, a, b} {
		_, err := conv.ConvertImage(img, set, 4)
		require.NoError(t, err)
	}
	hits, misses, _ := conv.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestConvertRejects(t *testing.T) {
	img := imageutil.CreateGradientImage(64, 32)
	tests := []struct {
		name       string
		img        *imageutil.RGBAImage
		set        string
		resolution int
		wantErr    error
	}{
		{"nil image", nil, "abcd", 4, ErrConfiguration},
		{"empty image", imageutil.NewRGBAImage(0, 0), "abcd", 4, ErrConfiguration},
		{"not a power of two", img, "abcd", 12, ErrConfiguration},
		{"zero resolution", img, "abcd", 0, ErrConfiguration},
		{"too wide", img, "abcd", 128, ErrConfiguration},
		{"too narrow", img, "abcd", 1, ErrConfiguration},
		{"small set", img, "a", 4, ErrConfiguration},
		{"degenerate set", img, "bB", 4, ErrConfiguration},
		{"unknown character", img, "ab?", 4, ErrInvalidCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConverter(WithRasterizer(abcd))
			out, err := conv.ConvertImage(tt.img, CharacterSetFromString(tt.set), tt.resolution)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
			assert.Nil(t, conv.LastBrightness())
			assert.Nil(t, conv.Glyphs())
		})
	}
}

func TestConvertErrorKeepsState(t *testing.T) {
	img := imageutil.CreateGradientImage(32, 32)
	conv := NewConverter(WithRasterizer(abcd))

	_, err := conv.ConvertImage(img, CharacterSetFromString("abcd"), 8)
	require.NoError(t, err)
	brightness := conv.LastBrightness()
	glyphs := conv.Glyphs()

	other := imageutil.CreateCheckerboardImage(32, 32, 4)
	_, err = conv.ConvertImage(other, CharacterSetFromString("abcd?"), 8)
	assert.ErrorIs(t, err, ErrInvalidCharacter)
	_, err = conv.ConvertImage(img, CharacterSetFromString("abcd"), 64)
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, brightness, conv.LastBrightness())
	assert.Equal(t, glyphs, conv.Glyphs())

	// Failed conversions are not counted.
	hits, misses, _ := conv.CacheStats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)

	// A failed set change on a cached image is not a hit either.
	_, err = conv.ConvertImage(img, CharacterSetFromString("ab?"), 8)
	assert.ErrorIs(t, err, ErrInvalidCharacter)
	hits, misses, _ = conv.CacheStats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)

	// The failed image was never cached, so converting img again hits.
	_, err = conv.ConvertImage(img, CharacterSetFromString("abcd"), 8)
	require.NoError(t, err)
	hits, misses, _ = conv.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestResolutionBounds(t *testing.T) {
	conv := NewConverter()
	lo, hi := conv.ResolutionBounds(100, 20)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 64, hi)

	lo, hi = conv.ResolutionBounds(20, 100)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 16, hi)

	_, hi = conv.ResolutionBounds(64, 64)
	assert.Equal(t, 64, hi)

	conv = NewConverter(WithMinCharsPerRow(16))
	lo, _ = conv.ResolutionBounds(64, 64)
	assert.Equal(t, 16, lo)
}

func TestSetRoundingMode(t *testing.T) {
	img := imageutil.CreateSolidImage(4, 4, imageutil.RGB{R: 77, G: 77, B: 77})
	conv := NewConverter(WithRasterizer(abcd))
	set := CharacterSetFromString("abcd")

	// 77/255 ~ 0.302: nearest b, ceiling c.
	out, err := conv.ConvertImage(img, set, 1)
	require.NoError(t, err)
	assert.Equal(t, 'b', out[0][0])

	require.NoError(t, conv.SetRoundingMode(RoundCeiling))
	assert.Equal(t, RoundCeiling, conv.RoundingMode())
	out, err = conv.ConvertImage(img, set, 1)
	require.NoError(t, err)
	assert.Equal(t, 'c', out[0][0])

	assert.ErrorIs(t, conv.SetRoundingMode(RoundingMode(9)), ErrConfiguration)
	assert.Equal(t, RoundCeiling, conv.RoundingMode())
}

func TestConverterReset(t *testing.T) {
	img := imageutil.CreateGradientImage(16, 16)
	conv := NewConverter(WithRasterizer(abcd))
	_, err := conv.ConvertImage(img, CharacterSetFromString("abcd"), 4)
	require.NoError(t, err)

	conv.Reset()
	assert.Nil(t, conv.LastBrightness())
	assert.Nil(t, conv.Glyphs())
	hits, misses, _ := conv.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestConverterLogging(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	conv := NewConverter(WithRasterizer(abcd))
	img := imageutil.CreateGradientImage(16, 16)
	_, err := conv.Convert(Source{ID: "grad", Image: img}, CharacterSetFromString("abcd"), 4)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "converted image")
	assert.Contains(t, out, "image=grad")
	assert.Contains(t, out, "rescanned brightness table")
}

func TestConverterWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	conv := NewConverter(WithRasterizer(abcd), WithLogger(logger))

	_, err := conv.ConvertImage(imageutil.CreateGradientImage(16, 16), CharacterSetFromString("abcd"), 4)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "image=\"<anonymous image>\"")
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError), "package logger should stay silent")
}
