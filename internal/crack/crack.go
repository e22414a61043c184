package crack

import (
	"fmt"
	"sort"

	"github.com/anthonynsimon/bild/blur"

	"github.com/wallscan/wallscan/internal/label"
	"github.com/wallscan/wallscan/internal/morph"
	"github.com/wallscan/wallscan/internal/raster"
)

// Config holds the tunable parameters of the detection pipeline. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// ThresholdMode selects how the intensity cutoff is obtained:
	// ThresholdStat (default), ThresholdFixed or ThresholdOtsu.
	ThresholdMode ThresholdMode `json:"threshold_mode" yaml:"threshold_mode"`

	// Threshold is the fixed intensity cutoff, used only with
	// ThresholdFixed. Pixels with intensity <= Threshold become mask
	// foreground. Must lie within the image's intensity range.
	Threshold uint8 `json:"threshold" yaml:"threshold"`

	// StatK scales the standard deviation in the statistical cutoff
	// mean - StatK*stddev, used with ThresholdStat.
	StatK float64 `json:"stat_k" yaml:"stat_k"`

	// BlurRadius smooths the image with a Gaussian of this radius before
	// thresholding. 0 disables smoothing. Smoothing suppresses sensor
	// noise but erodes the contrast of 1-pixel-wide cracks, so it is off
	// by default.
	BlurRadius float64 `json:"blur_radius" yaml:"blur_radius"`

	// KernelSize is the square structuring element used for the
	// morphological opening applied to the mask before labeling. Must be
	// positive and odd. 1 disables the opening; larger kernels remove
	// speckle but also erase structures thinner than the kernel.
	KernelSize int `json:"kernel_size" yaml:"kernel_size"`

	// MinComponentSize drops components with fewer pixels.
	MinComponentSize int `json:"min_component_size" yaml:"min_component_size"`

	// MinElongation and MaxElongation bound the accepted bounding-box
	// aspect ratio (longer side over shorter side, >= 1). Cracks are thin
	// and elongated; compact blobs have ratios near 1. MaxElongation <= 0
	// means unbounded above.
	MinElongation float64 `json:"min_elongation" yaml:"min_elongation"`
	MaxElongation float64 `json:"max_elongation" yaml:"max_elongation"`
}

// DefaultConfig returns the baseline parameters: statistical threshold at
// mean - 1.5*stddev, no smoothing, no opening, components of at least 20
// pixels with elongation 3 or more.
func DefaultConfig() Config {
	return Config{
		ThresholdMode:    ThresholdStat,
		StatK:            1.5,
		BlurRadius:       0,
		KernelSize:       1,
		MinComponentSize: 20,
		MinElongation:    3.0,
		MaxElongation:    0,
	}
}

func (c Config) validate() error {
	switch c.ThresholdMode {
	case ThresholdFixed, ThresholdStat, ThresholdOtsu:
	default:
		return fmt.Errorf("%w: unknown threshold mode %q", raster.ErrInvalidConfiguration, c.ThresholdMode)
	}
	if c.KernelSize <= 0 {
		return fmt.Errorf("%w: kernel size %d must be positive", raster.ErrInvalidConfiguration, c.KernelSize)
	}
	if c.KernelSize%2 == 0 {
		return fmt.Errorf("%w: kernel size %d must be odd", raster.ErrInvalidConfiguration, c.KernelSize)
	}
	if c.MinComponentSize < 0 {
		return fmt.Errorf("%w: min component size %d", raster.ErrInvalidConfiguration, c.MinComponentSize)
	}
	if c.MinElongation < 0 {
		return fmt.Errorf("%w: min elongation %g", raster.ErrInvalidConfiguration, c.MinElongation)
	}
	if c.MaxElongation > 0 && c.MaxElongation < c.MinElongation {
		return fmt.Errorf("%w: elongation bounds [%g, %g] are inverted",
			raster.ErrInvalidConfiguration, c.MinElongation, c.MaxElongation)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("%w: blur radius %g", raster.ErrInvalidConfiguration, c.BlurRadius)
	}
	return nil
}

// Crack is one surviving defect candidate.
type Crack struct {
	label.Component

	// Elongation is the component's bounding-box aspect ratio.
	Elongation float64 `json:"elongation"`
}

// Report is the result of one detection call. It is freshly allocated per
// call and shares no state with other invocations.
type Report struct {
	// Cracks lists the surviving components sorted descending by pixel
	// count, ties broken by ascending label for determinism.
	Cracks []Crack `json:"cracks"`

	// Threshold is the effective intensity cutoff used for the mask.
	Threshold uint8 `json:"threshold"`

	// Mask is the filtered binary crack mask (after morphology, before
	// shape filtering), suitable for composition with other masks.
	Mask *raster.Binary `json:"-"`
}

// Detect runs the crack-detection pipeline on a grayscale surface image:
//
//  1. optional Gaussian smoothing
//  2. threshold: intensity <= cutoff becomes foreground (cracks are darker
//     than the surrounding surface)
//  3. morphological opening with the configured kernel
//  4. 8-connected component labeling
//  5. shape filter by pixel count and bounding-box elongation
//
// An all-background mask is not an error: the report simply contains no
// cracks. Detect never modifies its input and is safe to call concurrently
// on different images.
func Detect(img *raster.Gray, cfg Config) (*Report, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	work := img
	if cfg.BlurRadius > 0 {
		smoothed, err := raster.FromImage(blur.Gaussian(img.ToImage(), cfg.BlurRadius))
		if err != nil {
			return nil, fmt.Errorf("smoothing: %w", err)
		}
		work = smoothed
	}

	mask, cutoff, err := binarize(work, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.KernelSize > 1 {
		mask, err = morph.Open(mask, cfg.KernelSize)
		if err != nil {
			return nil, fmt.Errorf("opening: %w", err)
		}
	}

	labeled, err := label.Label(mask, label.Eight)
	if err != nil {
		return nil, fmt.Errorf("labeling crack mask: %w", err)
	}

	cracks := make([]Crack, 0, len(labeled.Components))
	for _, c := range labeled.Components {
		if c.PixelCount < cfg.MinComponentSize {
			continue
		}
		ratio := c.Bounds.AspectRatio()
		if ratio < cfg.MinElongation {
			continue
		}
		if cfg.MaxElongation > 0 && ratio > cfg.MaxElongation {
			continue
		}
		cracks = append(cracks, Crack{Component: c, Elongation: ratio})
	}

	sort.SliceStable(cracks, func(i, j int) bool {
		if cracks[i].PixelCount != cracks[j].PixelCount {
			return cracks[i].PixelCount > cracks[j].PixelCount
		}
		return cracks[i].Label < cracks[j].Label
	})

	return &Report{Cracks: cracks, Threshold: cutoff, Mask: mask}, nil
}

func validateImage(img *raster.Gray) error {
	if img == nil || img.Height == 0 || img.Width == 0 || len(img.Pix) == 0 {
		return fmt.Errorf("%w: empty image", raster.ErrInvalidInput)
	}
	for row := range img.Pix {
		if len(img.Pix[row]) != img.Width {
			return fmt.Errorf("%w: row %d has %d samples, want %d",
				raster.ErrInvalidInput, row, len(img.Pix[row]), img.Width)
		}
	}
	return nil
}
