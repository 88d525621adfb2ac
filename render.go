package img2ascii

import (
	"bufio"
	"fmt"
	"html"
	"image"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/wbrown/img2ascii/imageutil"
)

// RenderText joins the grid into lines, one per row, each terminated by
// a newline.
func RenderText(grid [][]rune) string {
	var sb strings.Builder
	for _, row := range grid {
		for _, r := range row {
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HTMLOptions controls RenderHTML.
type HTMLOptions struct {
	Title      string
	FontFamily string
	// FontSize is in pixels.
	FontSize   float64
	Foreground string // any hex color go-colorful accepts, e.g. "#000" or "#1a1a1a"
	Background string
}

// DefaultHTMLOptions matches a plain monospace page, black on white.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:      "ASCII Art",
		FontFamily: "Courier New",
		FontSize:   4,
		Foreground: "#000000",
		Background: "#ffffff",
	}
}

// RenderHTML writes grid as a standalone HTML document.
func RenderHTML(w io.Writer, grid [][]rune, opts HTMLOptions) error {
	fg, err := colorful.Hex(opts.Foreground)
	if err != nil {
		return fmt.Errorf("invalid foreground color %q: %w", opts.Foreground, err)
	}
	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return fmt.Errorf("invalid background color %q: %w", opts.Background, err)
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultHTMLOptions().FontSize
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n",
		html.EscapeString(opts.Title))
	fmt.Fprintf(bw, "<style>body{background:%s;margin:0}"+
		"pre{color:%s;font-family:'%s',monospace;font-size:%gpx;line-height:1;letter-spacing:%gpx}</style>\n",
		bg.Hex(), fg.Hex(), html.EscapeString(opts.FontFamily), opts.FontSize, opts.FontSize*0.4)
	bw.WriteString("</head>\n<body>\n<pre>\n")
	for _, row := range grid {
		for _, r := range row {
			bw.WriteString(html.EscapeString(string(r)))
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("</pre>\n</body>\n</html>\n")
	return bw.Flush()
}

// RenderImage draws every character of grid with its glyph bitmap, each
// cell GlyphSize*scale pixels square.
func RenderImage(grid [][]rune, r Rasterizer, scale int, fg, bg imageutil.RGB) (*imageutil.RGBAImage, error) {
	if scale < 1 {
		scale = 1
	}
	if len(grid) == 0 {
		return imageutil.NewRGBAImage(0, 0), nil
	}

	cell := GlyphSize * scale
	img := imageutil.NewRGBAImage(len(grid[0])*cell, len(grid)*cell)
	img.Fill(bg)

	fgSrc := image.NewUniform(fg.ToColor())
	for y, row := range grid {
		for x, c := range row {
			bitmap, err := r.Rasterize(c)
			if err != nil {
				return nil, err
			}
			drawBitmap(img, bitmap, x*cell, y*cell, scale, fgSrc)
		}
	}
	return img, nil
}

// drawBitmap fills the on pixels of bitmap, scaled, at (startX, startY).
func drawBitmap(img *imageutil.RGBAImage, bitmap GlyphBitmap, startX, startY, scale int, src image.Image) {
	for y := 0; y < GlyphSize; y++ {
		for x := 0; x < GlyphSize; x++ {
			if !bitmap.Get(x, y) {
				continue
			}
			rect := image.Rect(startX+x*scale, startY+y*scale,
				startX+(x+1)*scale, startY+(y+1)*scale)
			draw.Draw(img.RGBA, rect, src, image.Point{}, draw.Src)
		}
	}
}
