// Package analyze sequences the detection stages over whole wall images
// and summarizes the result as structural-health metrics.
//
// One Analyze call runs reference-marker localization (optional) and crack
// detection on a single image, then reduces the surviving cracks to a
// damage ratio and a severity grade. When a reference marker is located,
// pixel measurements are additionally reported in physical units.
//
// Calls are independent and share no mutable state, so a batch of images
// is processed by a plain worker pool with one result slot per input.
package analyze

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/wallscan/wallscan/internal/crack"
	"github.com/wallscan/wallscan/internal/raster"
	"github.com/wallscan/wallscan/internal/refmark"
)

// Severity grades the overall damage level of a surface.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// severityFor maps a damage ratio to a grade. The cut points follow the
// original survey practice: under half a percent of the wall surface is
// cosmetic, under two percent warrants monitoring, beyond that repair.
func severityFor(ratio float64, cracks int) Severity {
	switch {
	case cracks == 0:
		return SeverityNone
	case ratio < 0.005:
		return SeverityMinor
	case ratio < 0.02:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// Config holds the per-stage parameters of a full analysis.
type Config struct {
	// Crack configures the defect detector.
	Crack crack.Config `json:"crack" yaml:"crack"`

	// Reference configures the marker locator, used when LocateReference
	// is set.
	Reference refmark.Config `json:"reference" yaml:"reference"`

	// LocateReference enables marker localization and physical-unit
	// reporting. Analysis fails if the marker cannot be found.
	LocateReference bool `json:"locate_reference" yaml:"locate_reference"`
}

// DefaultConfig returns the default parameters for both stages, with
// reference localization disabled.
func DefaultConfig() Config {
	return Config{
		Crack:     crack.DefaultConfig(),
		Reference: refmark.DefaultConfig(),
	}
}

// Summary is the structural-health report for one image.
type Summary struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Threshold is the effective intensity cutoff the detector used.
	Threshold uint8 `json:"threshold"`

	// Cracks lists the surviving defect candidates, largest first.
	Cracks []crack.Crack `json:"cracks"`

	// CrackPixels is the total pixel area of all surviving cracks.
	CrackPixels int `json:"crack_pixels"`

	// WallPixels is the assessed surface area in pixels: the whole image
	// minus the reference marker, when one was located.
	WallPixels int `json:"wall_pixels"`

	// DamageRatio is CrackPixels / WallPixels.
	DamageRatio float64 `json:"damage_ratio"`

	// Severity grades the damage ratio.
	Severity Severity `json:"severity"`

	// Marker and Calibration are set when reference localization ran.
	Marker      *refmark.Marker      `json:"marker,omitempty"`
	Calibration *refmark.Calibration `json:"calibration,omitempty"`

	// CrackAreaCM2 and WallAreaCM2 are the physical equivalents of the
	// pixel areas, present only when calibrated.
	CrackAreaCM2 float64 `json:"crack_area_cm2,omitempty"`
	WallAreaCM2  float64 `json:"wall_area_cm2,omitempty"`

	// Mask is the combined detection mask (cracks plus marker), for
	// overlay rendering.
	Mask *raster.Binary `json:"-"`
}

// Analyze runs the full pipeline on one grayscale image.
func Analyze(img *raster.Gray, cfg Config) (*Summary, error) {
	report, err := crack.Detect(img, cfg.Crack)
	if err != nil {
		return nil, fmt.Errorf("crack detection: %w", err)
	}

	s := &Summary{
		Width:     img.Width,
		Height:    img.Height,
		Threshold: report.Threshold,
		Cracks:    report.Cracks,
		Mask:      report.Mask,
	}
	for _, c := range report.Cracks {
		s.CrackPixels += c.PixelCount
	}
	s.WallPixels = img.Width * img.Height

	if cfg.LocateReference {
		marker, cal, err := refmark.Locate(img, cfg.Reference)
		if err != nil {
			return nil, fmt.Errorf("reference localization: %w", err)
		}
		s.Marker = marker
		s.Calibration = cal
		s.WallPixels -= marker.Component.PixelCount
		s.CrackAreaCM2 = cal.AreaCM2(s.CrackPixels)
		s.WallAreaCM2 = cal.AreaCM2(s.WallPixels)

		combined := report.Mask.Clone()
		for row := 0; row < combined.Height; row++ {
			for col := 0; col < combined.Width; col++ {
				if marker.Mask.Bits[row][col] {
					combined.Bits[row][col] = true
				}
			}
		}
		s.Mask = combined
	}

	if s.WallPixels > 0 {
		s.DamageRatio = float64(s.CrackPixels) / float64(s.WallPixels)
	}
	s.Severity = severityFor(s.DamageRatio, len(s.Cracks))

	return s, nil
}

// Result pairs one batch input with its outcome.
type Result struct {
	Path    string   `json:"path"`
	Summary *Summary `json:"summary,omitempty"`
	Err     error    `json:"-"`
}

// Batch analyzes a list of image files concurrently. Results are returned
// in input order; a failure on one image does not stop the others.
// workers <= 0 uses one worker per CPU.
func Batch(cache *raster.Cache, paths []string, cfg Config, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = analyzeFile(cache, paths[i], cfg)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func analyzeFile(cache *raster.Cache, path string, cfg Config) Result {
	img, err := cache.Load(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	summary, err := Analyze(img, cfg)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	return Result{Path: path, Summary: summary}
}

// IsMarkerMissing reports whether a batch result failed only because the
// reference marker was absent.
func IsMarkerMissing(err error) bool {
	return errors.Is(err, refmark.ErrMarkerNotFound)
}
