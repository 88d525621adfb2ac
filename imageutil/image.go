// Package imageutil provides the pure Go image model used by img2ascii:
// decoding, power-of-two padding, block partitioning and luminance.
package imageutil

import (
	"image"
	"image/color"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// White is the background used when padding images.
var White = RGB{R: 255, G: 255, B: 255}

// ToColor converts RGB to color.RGBA for use with standard library.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
// Images built by this package always have their origin at (0, 0).
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to RGBAImage, moving the
// origin to (0, 0).
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

// RGBAImageFromRows builds an image from a row-major grid of colors. Every
// row must have the same length as the first; shorter rows are padded
// with black.
func RGBAImageFromRows(rows [][]RGB) *RGBAImage {
	if len(rows) == 0 {
		return NewRGBAImage(0, 0)
	}
	img := NewRGBAImage(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if x >= img.Width() {
				break
			}
			img.SetRGB(x, y, c)
		}
	}
	return img
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// Fill sets every pixel of the image to c.
func (img *RGBAImage) Fill(c RGB) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 255
	}
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := NewRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// Crop returns a copy of the pixels inside r, with its origin moved to
// (0, 0). Parts of r outside the image are left black.
func (img *RGBAImage) Crop(r image.Rectangle) *RGBAImage {
	out := NewRGBAImage(r.Dx(), r.Dy())
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetRGBA(x-r.Min.X, y-r.Min.Y, img.RGBAAt(x, y))
		}
	}
	return out
}

// Equal reports whether both images have the same size and pixels.
func (img *RGBAImage) Equal(other *RGBAImage) bool {
	if img.Width() != other.Width() || img.Height() != other.Height() {
		return false
	}
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.RGBAAt(x, y) != other.RGBAAt(x, y) {
				return false
			}
		}
	}
	return true
}
