// Package morph implements binary morphological operations with a square
// structuring element: erosion, dilation and the opening/closing compounds.
//
// All operations use explicit neighborhood-window scans over the bit grid.
// Pixels outside the image are treated as background, so erosion shrinks
// regions touching the border while dilation may grow up to it.
package morph

import (
	"fmt"

	"github.com/wallscan/wallscan/internal/raster"
)

// Erode keeps a foreground pixel only if every pixel under the kernelSize x
// kernelSize window centered on it is foreground. kernelSize must be a
// positive odd number.
func Erode(img *raster.Binary, kernelSize int) (*raster.Binary, error) {
	return apply(img, kernelSize, erodeAt)
}

// Dilate marks a pixel as foreground if any pixel under the kernelSize x
// kernelSize window centered on it is foreground. kernelSize must be a
// positive odd number.
func Dilate(img *raster.Binary, kernelSize int) (*raster.Binary, error) {
	return apply(img, kernelSize, dilateAt)
}

// Open applies an erosion followed by a dilation. Opening removes speckle
// smaller than the kernel while preserving the shape of larger structures,
// which is how the crack pipeline strips single-pixel noise before labeling.
func Open(img *raster.Binary, kernelSize int) (*raster.Binary, error) {
	eroded, err := Erode(img, kernelSize)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, kernelSize)
}

// Close applies a dilation followed by an erosion, fusing narrow breaks and
// filling small holes.
func Close(img *raster.Binary, kernelSize int) (*raster.Binary, error) {
	dilated, err := Dilate(img, kernelSize)
	if err != nil {
		return nil, err
	}
	return Erode(dilated, kernelSize)
}

func apply(img *raster.Binary, kernelSize int, window func(*raster.Binary, int, int, int) bool) (*raster.Binary, error) {
	if img == nil || img.Height == 0 || img.Width == 0 {
		return nil, fmt.Errorf("%w: empty image", raster.ErrInvalidInput)
	}
	if kernelSize <= 0 {
		return nil, fmt.Errorf("%w: kernel size %d must be positive", raster.ErrInvalidConfiguration, kernelSize)
	}
	if kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: kernel size %d must be odd", raster.ErrInvalidConfiguration, kernelSize)
	}

	out, err := raster.NewBinarySize(img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	radius := kernelSize / 2
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			out.Bits[row][col] = window(img, row, col, radius)
		}
	}
	return out, nil
}

func erodeAt(img *raster.Binary, row, col, radius int) bool {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			nr, nc := row+dr, col+dc
			if nr < 0 || nr >= img.Height || nc < 0 || nc >= img.Width {
				return false
			}
			if !img.Bits[nr][nc] {
				return false
			}
		}
	}
	return true
}

func dilateAt(img *raster.Binary, row, col, radius int) bool {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			nr, nc := row+dr, col+dc
			if nr < 0 || nr >= img.Height || nc < 0 || nc >= img.Width {
				continue
			}
			if img.Bits[nr][nc] {
				return true
			}
		}
	}
	return false
}
