package imageutil

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// BT.709 luma weights.
const (
	redWeight   = 0.2126
	greenWeight = 0.7152
	blueWeight  = 0.0722

	maxChannel = 255.0
)

// Luminance returns the perceptual gray value of c in [0, 255] using the
// ITU-R BT.709 weights.
func Luminance(c RGB) float64 {
	return redWeight*float64(c.R) + greenWeight*float64(c.G) + blueWeight*float64(c.B)
}

// BlockBrightness averages the luminance of every pixel of img inside r
// and scales it into [0, 1]. An empty rectangle has brightness 0.
func BlockBrightness(img *RGBAImage, r image.Rectangle) float64 {
	return meanBrightness(blockLuminance(img, r, nil))
}

// ImageBrightness is BlockBrightness over the whole image.
func ImageBrightness(img *RGBAImage) float64 {
	return BlockBrightness(img, img.Bounds())
}

// blockLuminance appends the luminance of every pixel in r to buf.
func blockLuminance(img *RGBAImage, r image.Rectangle, buf []float64) []float64 {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			buf = append(buf, Luminance(img.GetRGB(x, y)))
		}
	}
	return buf
}

func meanBrightness(lum []float64) float64 {
	if len(lum) == 0 {
		return 0
	}
	b := stat.Mean(lum, nil) / maxChannel
	// Rounding in the weighted sum can land a hair outside the range.
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}
