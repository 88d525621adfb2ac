package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

// Options are the command line flags of asciify.
type Options struct {
	Resolutions []int    `short:"r" long:"res" description:"Characters per row, a power of two; repeat to render several resolutions" default:"128"`
	Chars       string   `short:"c" long:"chars" description:"Initial character set" default:"0123456789"`
	Add         []string `long:"add" description:"Add characters: a single char, 'space', 'all' or a range like a-z"`
	Remove      []string `long:"remove" description:"Remove characters, same syntax as --add"`
	Round       string   `long:"round" description:"Rounding method" choice:"nearest" choice:"abs" choice:"ceiling" choice:"up" choice:"floor" choice:"down" default:"nearest"`
	Format      string   `short:"f" long:"format" description:"Output format" choice:"console" choice:"html" choice:"png" default:"console"`
	Output      string   `short:"o" long:"output" description:"Output file (console format prints to stdout when empty)"`
	Font        string   `long:"font" description:"TrueType font used to measure glyphs (default: Go Mono)"`
	Glyphs      string   `long:"glyphs" description:"Precomputed glyph file from compute_glyphs, used instead of --font"`
	HTMLFont    string   `long:"html-font" description:"Font family of the HTML output" default:"Courier New"`
	HTMLFg      string   `long:"html-fg" description:"Text color of the HTML output" default:"#000000"`
	HTMLBg      string   `long:"html-bg" description:"Background color of the HTML output" default:"#ffffff"`
	Scale       int      `long:"scale" description:"Pixel scale of PNG output glyphs" default:"1"`
	Verbose     bool     `short:"v" long:"verbose" description:"Log pipeline details to stderr"`

	Args struct {
		Image string `positional-arg-name:"IMAGE" description:"Image to convert"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}

	if err := run(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "asciify: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *Options) error {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	img2ascii.SetLogger(logger)

	set, err := buildCharacterSet(opts.Chars, opts.Add, opts.Remove)
	if err != nil {
		return err
	}
	mode, err := img2ascii.ParseRoundingMode(opts.Round)
	if err != nil {
		return err
	}
	raster, err := loadRasterizer(opts.Font, opts.Glyphs)
	if err != nil {
		return err
	}

	start := time.Now()
	img, err := imageutil.LoadImage(opts.Args.Image)
	if err != nil {
		return err
	}
	logger.Debug("loaded image", "path", opts.Args.Image,
		"width", img.Width(), "height", img.Height(), "elapsed", time.Since(start))

	conv := img2ascii.NewConverter(
		img2ascii.WithRasterizer(raster),
		img2ascii.WithRoundingMode(mode),
	)
	src := img2ascii.Source{ID: opts.Args.Image, Image: img}

	for _, res := range opts.Resolutions {
		grid, err := conv.Convert(src, set, res)
		if err != nil {
			return err
		}
		if err := write(opts, grid, raster, outputPath(opts.Output, res, len(opts.Resolutions))); err != nil {
			return err
		}
	}

	hits, misses, _ := conv.CacheStats()
	logger.Debug("done", "elapsed", time.Since(start), "cache_hits", hits, "cache_misses", misses)
	return nil
}

// buildCharacterSet applies the --add and --remove edits, in that order,
// to the initial set.
func buildCharacterSet(initial string, add, remove []string) (img2ascii.CharacterSet, error) {
	set := img2ascii.CharacterSetFromString(initial)
	for _, spec := range add {
		if err := img2ascii.EditCharacterSet(set, img2ascii.OpAdd, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range remove {
		if err := img2ascii.EditCharacterSet(set, img2ascii.OpRemove, spec); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func loadRasterizer(fontPath, glyphPath string) (img2ascii.Rasterizer, error) {
	switch {
	case glyphPath != "" && fontPath != "":
		return nil, errors.New("--font and --glyphs are mutually exclusive")
	case glyphPath != "":
		return img2ascii.LoadGlyphFile(glyphPath)
	case fontPath != "":
		return img2ascii.LoadFontRasterizer(fontPath)
	}
	return img2ascii.DefaultRasterizer()
}

// outputPath derives one file name per resolution when several are
// rendered, e.g. out.html -> out_64.html.
func outputPath(path string, res, count int) string {
	if path == "" || count <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), res, ext)
}

func write(opts *Options, grid [][]rune, raster img2ascii.Rasterizer, path string) error {
	switch opts.Format {
	case "html":
		if path == "" {
			return img2ascii.RenderHTML(os.Stdout, grid, htmlOptions(opts))
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := img2ascii.RenderHTML(f, grid, htmlOptions(opts)); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "png":
		if path == "" {
			return errors.New("png output needs --output")
		}
		img, err := img2ascii.RenderImage(grid, raster, opts.Scale, imageutil.RGB{}, imageutil.White)
		if err != nil {
			return err
		}
		return imageutil.SaveImage(img.RGBA, path)
	}

	text := img2ascii.RenderText(grid)
	if path == "" {
		_, err := fmt.Print(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

func htmlOptions(opts *Options) img2ascii.HTMLOptions {
	h := img2ascii.DefaultHTMLOptions()
	h.Title = filepath.Base(opts.Args.Image)
	h.FontFamily = opts.HTMLFont
	h.Foreground = opts.HTMLFg
	h.Background = opts.HTMLBg
	return h
}
