package imageutil

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Values below 1
// map to 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if IsPowerOfTwo(n) {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// PadToPowerOfTwo returns img centered on a white canvas whose width and
// height are the next powers of two. The leading margin on each axis is
// floor(diff/2). If both sides already are powers of two img itself is
// returned. The input is never modified.
func PadToPowerOfTwo(img *RGBAImage) *RGBAImage {
	width, height := img.Width(), img.Height()
	paddedWidth := NextPowerOfTwo(width)
	paddedHeight := NextPowerOfTwo(height)
	if paddedWidth == width && paddedHeight == height {
		return img
	}

	canvas := NewRGBAImage(paddedWidth, paddedHeight)
	canvas.Fill(White)

	offset := image.Pt((paddedWidth-width)/2, (paddedHeight-height)/2)
	dst := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(width, height))}
	draw.Draw(canvas.RGBA, dst, img.RGBA, img.Bounds().Min, draw.Src)
	return canvas
}

// PadOffset returns where PadToPowerOfTwo places the top-left pixel of
// an image of the given size.
func PadOffset(width, height int) image.Point {
	return image.Pt(
		(NextPowerOfTwo(width)-width)/2,
		(NextPowerOfTwo(height)-height)/2,
	)
}
