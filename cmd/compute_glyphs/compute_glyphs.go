package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/wbrown/img2ascii"
)

// Options are the command line flags of compute_glyphs.
type Options struct {
	Font   string `long:"font" description:"TrueType font to rasterize (default: Go Mono)"`
	Output string `short:"o" long:"output" description:"Glyph file to write" required:"yes"`
	Show   string `long:"show" description:"Print the bitmaps of these characters after computing"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(&opts, logger); err != nil {
		logger.Error("failed to compute glyphs", "err", err)
		os.Exit(1)
	}
}

func run(opts *Options, logger *slog.Logger) error {
	var (
		raster *img2ascii.FontRasterizer
		err    error
	)
	if opts.Font != "" {
		raster, err = img2ascii.LoadFontRasterizer(opts.Font)
	} else {
		raster, err = img2ascii.DefaultRasterizer()
	}
	if err != nil {
		return err
	}

	name := raster.Name()
	if opts.Font != "" {
		name = strings.TrimSuffix(filepath.Base(opts.Font), filepath.Ext(opts.Font))
	}
	logger.Info("computing glyphs", "font", name, "size", img2ascii.GlyphSize)

	data, err := img2ascii.ComputeGlyphData(name, raster)
	if err != nil {
		return err
	}
	if err := img2ascii.SaveGlyphFile(opts.Output, data); err != nil {
		return err
	}

	attrs := []any{"path", opts.Output, "glyphs", len(data.Glyphs)}
	if fi, err := os.Stat(opts.Output); err == nil {
		attrs = append(attrs, "kb", fmt.Sprintf("%.2f", float64(fi.Size())/1024))
	}
	logger.Info("saved glyph data", attrs...)

	for _, c := range opts.Show {
		if g, ok := data.Glyphs[c]; ok {
			fmt.Printf("%q density %.4f\n%s\n", c, g.Density(), drawGlyph(g))
		}
	}
	return nil
}

func drawGlyph(g img2ascii.GlyphBitmap) string {
	var sb strings.Builder
	for y := 0; y < img2ascii.GlyphSize; y++ {
		for x := 0; x < img2ascii.GlyphSize; x++ {
			if g.Get(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
