package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

func TestBuildCharacterSet(t *testing.T) {
	set, err := buildCharacterSet("0123456789", []string{"a-c", "space"}, []string{"5-9"})
	require.NoError(t, err)
	assert.Equal(t, img2ascii.CharacterSetFromString("01234abc "), set)

	_, err = buildCharacterSet("01", []string{"ab"}, nil)
	assert.ErrorIs(t, err, img2ascii.ErrInvalidCharacter)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "", outputPath("", 64, 3))
	assert.Equal(t, "out.html", outputPath("out.html", 64, 1))
	assert.Equal(t, "out_64.html", outputPath("out.html", 64, 2))
	assert.Equal(t, "dir/art_8", outputPath("dir/art", 8, 2))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "gradient.png")
	require.NoError(t, imageutil.SaveImage(imageutil.CreateGradientImage(64, 64).RGBA, in))

	opts := &Options{
		Resolutions: []int{8, 16},
		Chars:       "0123456789",
		Add:         []string{"space"},
		Round:       "nearest",
		Format:      "console",
		Output:      filepath.Join(dir, "art.txt"),
		Scale:       1,
	}
	opts.Args.Image = in
	t.Cleanup(func() { img2ascii.SetLogger(nil) })
	require.NoError(t, run(opts))

	for _, res := range []int{8, 16} {
		b, err := os.ReadFile(outputPath(opts.Output, res, 2))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
		assert.Len(t, lines, res)
		for _, l := range lines {
			assert.Equal(t, res, len(l))
		}
	}
}

func TestRunRejectsBadResolution(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "solid.png")
	require.NoError(t, imageutil.SaveImage(imageutil.CreateSolidImage(16, 16, imageutil.White).RGBA, in))

	opts := &Options{Resolutions: []int{6}, Chars: "01", Round: "nearest", Format: "console"}
	opts.Args.Image = in
	t.Cleanup(func() { img2ascii.SetLogger(nil) })
	assert.ErrorIs(t, run(opts), img2ascii.ErrConfiguration)
}

func TestLoadRasterizer(t *testing.T) {
	_, err := loadRasterizer("a.ttf", "b.glyphs")
	assert.Error(t, err)

	r, err := loadRasterizer("", "")
	require.NoError(t, err)
	assert.NotNil(t, r)
}
