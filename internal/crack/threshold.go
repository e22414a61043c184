package crack

import (
	"fmt"
	"math"

	"github.com/ernyoke/imger/threshold"

	"github.com/wallscan/wallscan/internal/raster"
)

// ThresholdMode names a strategy for picking the intensity cutoff.
type ThresholdMode string

const (
	// ThresholdFixed uses Config.Threshold as-is.
	ThresholdFixed ThresholdMode = "fixed"
	// ThresholdStat derives the cutoff from a global statistic:
	// mean - StatK*stddev, clamped to [0, 255].
	ThresholdStat ThresholdMode = "stat"
	// ThresholdOtsu uses Otsu's histogram method, inverted so that dark
	// pixels become foreground.
	ThresholdOtsu ThresholdMode = "otsu"
)

// binarize produces the dark-pixel foreground mask and the effective cutoff.
func binarize(img *raster.Gray, cfg Config) (*raster.Binary, uint8, error) {
	switch cfg.ThresholdMode {
	case ThresholdFixed:
		min, max := img.MinMax()
		if cfg.Threshold < min || cfg.Threshold > max {
			return nil, 0, fmt.Errorf("%w: threshold %d outside image intensity range [%d, %d]",
				raster.ErrInvalidConfiguration, cfg.Threshold, min, max)
		}
		return maskAtOrBelow(img, cfg.Threshold), cfg.Threshold, nil

	case ThresholdStat:
		mean, stddev := img.Stats()
		cutoff := clampIntensity(mean - cfg.StatK*stddev)
		return maskAtOrBelow(img, cutoff), cutoff, nil

	case ThresholdOtsu:
		inverted, err := threshold.OtsuThreshold(img.ToImage(), threshold.ThreshBinaryInv)
		if err != nil {
			return nil, 0, fmt.Errorf("otsu threshold: %w", err)
		}
		bits := make([][]bool, img.Height)
		for row := 0; row < img.Height; row++ {
			bits[row] = make([]bool, img.Width)
			for col := 0; col < img.Width; col++ {
				bits[row][col] = inverted.Pix[inverted.PixOffset(col, row)] > 0
			}
		}
		mask, err := raster.NewBinary(bits)
		if err != nil {
			return nil, 0, err
		}
		// Otsu does not expose the cutoff it selected; recover it as the
		// brightest intensity that landed in the foreground.
		return mask, foregroundCeiling(img, mask), nil
	}

	return nil, 0, fmt.Errorf("%w: unknown threshold mode %q", raster.ErrInvalidConfiguration, cfg.ThresholdMode)
}

func maskAtOrBelow(img *raster.Gray, cutoff uint8) *raster.Binary {
	bits := make([][]bool, img.Height)
	for row := 0; row < img.Height; row++ {
		bits[row] = make([]bool, img.Width)
		for col := 0; col < img.Width; col++ {
			bits[row][col] = img.Pix[row][col] <= cutoff
		}
	}
	mask, _ := raster.NewBinary(bits)
	return mask
}

func foregroundCeiling(img *raster.Gray, mask *raster.Binary) uint8 {
	var ceiling uint8
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			if mask.Bits[row][col] && img.Pix[row][col] > ceiling {
				ceiling = img.Pix[row][col]
			}
		}
	}
	return ceiling
}

func clampIntensity(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
