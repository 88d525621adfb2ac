package imageutil

import (
	"errors"
	"fmt"
	"image"
)

// ErrResolutionOutOfBounds is returned when a resolution cannot split an
// image into equal square blocks.
var ErrResolutionOutOfBounds = errors.New("resolution out of bounds")

// BlockGrid describes how an image splits into Rows x Cols square blocks
// of Side pixels. Rows*Side equals the image height and Cols*Side equals
// the image width.
type BlockGrid struct {
	Rows int
	Cols int
	Side int
}

// Partition splits img into square blocks, resolution blocks per row.
// The block side is width/resolution and the row count follows from the
// height. Resolutions that do not divide the image evenly are rejected
// rather than truncated.
func Partition(img *RGBAImage, resolution int) (BlockGrid, error) {
	width, height := img.Width(), img.Height()
	if resolution <= 0 || resolution > width {
		return BlockGrid{}, fmt.Errorf("%w: %d blocks per row for width %d",
			ErrResolutionOutOfBounds, resolution, width)
	}
	if width%resolution != 0 {
		return BlockGrid{}, fmt.Errorf("%w: width %d is not divisible by %d",
			ErrResolutionOutOfBounds, width, resolution)
	}
	side := width / resolution
	if height%side != 0 {
		return BlockGrid{}, fmt.Errorf("%w: height %d is not divisible by block side %d",
			ErrResolutionOutOfBounds, height, side)
	}
	return BlockGrid{Rows: height / side, Cols: resolution, Side: side}, nil
}

// Rect returns the pixel rectangle covered by block (row, col).
func (g BlockGrid) Rect(row, col int) image.Rectangle {
	return image.Rect(
		col*g.Side, row*g.Side,
		(col+1)*g.Side, (row+1)*g.Side,
	)
}

// Len returns the number of blocks.
func (g BlockGrid) Len() int {
	return g.Rows * g.Cols
}

// SubImage copies block (row, col) out of img.
func (g BlockGrid) SubImage(img *RGBAImage, row, col int) *RGBAImage {
	return img.Crop(g.Rect(row, col))
}

// Brightness computes BlockBrightness for every block of img, indexed
// [row][col].
func (g BlockGrid) Brightness(img *RGBAImage) [][]float64 {
	out := make([][]float64, g.Rows)
	buf := make([]float64, 0, g.Side*g.Side)
	for row := range out {
		out[row] = make([]float64, g.Cols)
		for col := range out[row] {
			buf = blockLuminance(img, g.Rect(row, col), buf[:0])
			out[row][col] = meanBrightness(buf)
		}
	}
	return out
}
