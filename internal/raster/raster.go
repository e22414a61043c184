package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// Sentinel errors shared by every analysis package in this module.
//
// ErrInvalidInput marks a malformed image: zero dimensions or a ragged
// (non-rectangular) pixel grid. ErrInvalidConfiguration marks an out-of-range
// parameter, such as an unsupported connectivity or an even kernel size.
// Callers discriminate with errors.Is; no operation returns partial results
// alongside either error.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Gray is an immutable-by-convention grayscale raster.
//
// Samples are 8-bit intensities stored row-major as Pix[row][col], with
// (0,0) at the top-left corner, rows increasing downward and columns
// increasing rightward. Every row has length Width; construction validates
// this so downstream algorithms can index without bounds anxiety.
type Gray struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Pix    [][]uint8 `json:"-"`
}

// Binary is a two-valued raster produced by thresholding a Gray image.
// True marks foreground.
type Binary struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Bits   [][]bool `json:"-"`
}

// NewGray wraps an existing pixel grid, validating that it is non-empty and
// rectangular. The grid is used directly, not copied.
func NewGray(pix [][]uint8) (*Gray, error) {
	if len(pix) == 0 || len(pix[0]) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	width := len(pix[0])
	for row := range pix {
		if len(pix[row]) != width {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d",
				ErrInvalidInput, row, len(pix[row]), width)
		}
	}
	return &Gray{Width: width, Height: len(pix), Pix: pix}, nil
}

// NewGraySize allocates a zero-filled grayscale raster.
func NewGraySize(width, height int) (*Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, width, height)
	}
	pix := make([][]uint8, height)
	for row := range pix {
		pix[row] = make([]uint8, width)
	}
	return &Gray{Width: width, Height: height, Pix: pix}, nil
}

// NewBinary wraps an existing bit grid, validating that it is non-empty and
// rectangular. The grid is used directly, not copied.
func NewBinary(bits [][]bool) (*Binary, error) {
	if len(bits) == 0 || len(bits[0]) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	width := len(bits[0])
	for row := range bits {
		if len(bits[row]) != width {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d",
				ErrInvalidInput, row, len(bits[row]), width)
		}
	}
	return &Binary{Width: width, Height: len(bits), Bits: bits}, nil
}

// NewBinarySize allocates an all-background binary raster.
func NewBinarySize(width, height int) (*Binary, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, width, height)
	}
	bits := make([][]bool, height)
	for row := range bits {
		bits[row] = make([]bool, width)
	}
	return &Binary{Width: width, Height: height, Bits: bits}, nil
}

// FromImage converts a decoded image to a grayscale raster.
//
// Color input is reduced to luminance using ITU-R BT.601 weights via the
// imaging package, matching the conversion used throughout this module.
func FromImage(img image.Image) (*Gray, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	gray := imaging.Grayscale(img)
	pix := make([][]uint8, height)
	for row := 0; row < height; row++ {
		pix[row] = make([]uint8, width)
		for col := 0; col < width; col++ {
			// Grayscale output has R == G == B; the red channel is the sample.
			pix[row][col] = gray.Pix[gray.PixOffset(col, row)]
		}
	}
	return &Gray{Width: width, Height: height, Pix: pix}, nil
}

// At returns the intensity at (row, col). Callers are responsible for bounds.
func (g *Gray) At(row, col int) uint8 {
	return g.Pix[row][col]
}

// Clone returns a deep copy of the raster.
func (g *Gray) Clone() *Gray {
	pix := make([][]uint8, g.Height)
	for row := range pix {
		pix[row] = make([]uint8, g.Width)
		copy(pix[row], g.Pix[row])
	}
	return &Gray{Width: g.Width, Height: g.Height, Pix: pix}
}

// ToImage renders the raster as a standard library grayscale image.
func (g *Gray) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			img.Pix[img.PixOffset(col, row)] = g.Pix[row][col]
		}
	}
	return img
}

// Stats returns the population mean and standard deviation of all samples.
func (g *Gray) Stats() (mean, stddev float64) {
	samples := make([]float64, 0, g.Width*g.Height)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			samples = append(samples, float64(g.Pix[row][col]))
		}
	}
	return stat.Mean(samples, nil), stat.PopStdDev(samples, nil)
}

// MinMax returns the smallest and largest intensity present in the raster.
func (g *Gray) MinMax() (min, max uint8) {
	min, max = g.Pix[0][0], g.Pix[0][0]
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v := g.Pix[row][col]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

// At returns whether the pixel at (row, col) is foreground.
func (b *Binary) At(row, col int) bool {
	return b.Bits[row][col]
}

// Set marks the pixel at (row, col).
func (b *Binary) Set(row, col int, v bool) {
	b.Bits[row][col] = v
}

// Clone returns a deep copy of the raster.
func (b *Binary) Clone() *Binary {
	bits := make([][]bool, b.Height)
	for row := range bits {
		bits[row] = make([]bool, b.Width)
		copy(bits[row], b.Bits[row])
	}
	return &Binary{Width: b.Width, Height: b.Height, Bits: bits}
}

// ForegroundCount returns the number of foreground pixels.
func (b *Binary) ForegroundCount() int {
	n := 0
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			if b.Bits[row][col] {
				n++
			}
		}
	}
	return n
}

// ToImage renders foreground as white (255) and background as black (0).
func (b *Binary) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			if b.Bits[row][col] {
				img.Pix[img.PixOffset(col, row)] = 255
			}
		}
	}
	return img
}
