// Package refmark locates the calibration reference marker in a surface
// image and derives a pixel-to-centimeter scale from it.
//
// The marker is a bright sheet of known physical size placed on the
// surface before the photograph is taken. Localization is a bright
// threshold followed by connected-component labeling; the largest bright
// region is taken to be the sheet. The ratio between the region's bounding
// box and the sheet's known dimensions gives the scale that turns pixel
// measurements into physical ones.
package refmark

import (
	"errors"
	"fmt"

	"github.com/wallscan/wallscan/internal/label"
	"github.com/wallscan/wallscan/internal/raster"
)

// ErrMarkerNotFound reports that no bright region large enough to be the
// reference marker exists in the image.
var ErrMarkerNotFound = errors.New("reference marker not found")

// Config holds the locator parameters.
type Config struct {
	// Threshold is the minimum intensity of a marker pixel. The sheet is
	// assumed to be the brightest large object in the frame.
	Threshold uint8 `json:"threshold" yaml:"threshold"`

	// MinPixels rejects bright specks smaller than this as markers.
	MinPixels int `json:"min_pixels" yaml:"min_pixels"`

	// WidthCM and HeightCM are the sheet's known physical dimensions.
	WidthCM  float64 `json:"width_cm" yaml:"width_cm"`
	HeightCM float64 `json:"height_cm" yaml:"height_cm"`
}

// DefaultConfig matches the usual setup: an A-series sheet of 26 x 36 cm
// photographed against a darker wall.
func DefaultConfig() Config {
	return Config{
		Threshold: 150,
		MinPixels: 100,
		WidthCM:   26.0,
		HeightCM:  36.0,
	}
}

func (c Config) validate() error {
	if c.MinPixels < 0 {
		return fmt.Errorf("%w: min pixels %d", raster.ErrInvalidConfiguration, c.MinPixels)
	}
	if c.WidthCM <= 0 || c.HeightCM <= 0 {
		return fmt.Errorf("%w: reference dimensions %gx%g cm", raster.ErrInvalidConfiguration, c.WidthCM, c.HeightCM)
	}
	return nil
}

// Marker is the located reference region.
type Marker struct {
	// Component is the bright region identified as the marker.
	Component label.Component `json:"component"`

	// Mask contains only the marker's pixels, for composition with other
	// masks.
	Mask *raster.Binary `json:"-"`
}

// Calibration converts pixel measurements to physical units.
type Calibration struct {
	// PxPerCM is the scale factor, averaged over both marker axes to even
	// out perspective skew.
	PxPerCM float64 `json:"px_per_cm"`
}

// LengthCM converts a pixel distance to centimeters.
func (c Calibration) LengthCM(px float64) float64 {
	return px / c.PxPerCM
}

// AreaCM2 converts a pixel count to square centimeters.
func (c Calibration) AreaCM2(pixels int) float64 {
	return float64(pixels) / (c.PxPerCM * c.PxPerCM)
}

// Locate finds the reference marker and derives the calibration.
//
// The image is thresholded at Config.Threshold (bright pixels become
// foreground), labeled with 8-connectivity, and the component with the
// largest pixel count is chosen. ErrMarkerNotFound is returned when no
// component reaches Config.MinPixels.
func Locate(img *raster.Gray, cfg Config) (*Marker, *Calibration, error) {
	if img == nil || img.Height == 0 || img.Width == 0 {
		return nil, nil, fmt.Errorf("%w: empty image", raster.ErrInvalidInput)
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	bits := make([][]bool, img.Height)
	for row := 0; row < img.Height; row++ {
		bits[row] = make([]bool, img.Width)
		for col := 0; col < img.Width; col++ {
			bits[row][col] = img.Pix[row][col] >= cfg.Threshold
		}
	}
	mask, err := raster.NewBinary(bits)
	if err != nil {
		return nil, nil, err
	}

	labeled, err := label.Label(mask, label.Eight)
	if err != nil {
		return nil, nil, fmt.Errorf("labeling bright regions: %w", err)
	}

	best := -1
	for i, c := range labeled.Components {
		if best < 0 || c.PixelCount > labeled.Components[best].PixelCount {
			best = i
		}
	}
	if best < 0 || labeled.Components[best].PixelCount < cfg.MinPixels {
		return nil, nil, fmt.Errorf("%w: threshold %d, min pixels %d", ErrMarkerNotFound, cfg.Threshold, cfg.MinPixels)
	}

	marker := labeled.Components[best]
	only, err := raster.NewBinarySize(img.Width, img.Height)
	if err != nil {
		return nil, nil, err
	}
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			only.Bits[row][col] = labeled.Grid[row][col] == marker.Label
		}
	}

	cal := Calibration{
		PxPerCM: (float64(marker.Bounds.Width())/cfg.WidthCM +
			float64(marker.Bounds.Height())/cfg.HeightCM) / 2,
	}

	return &Marker{Component: marker, Mask: only}, &cal, nil
}
