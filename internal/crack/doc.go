// Package crack detects crack-like defects in grayscale surface images.
//
// A crack reads as a thin, elongated run of pixels darker than the
// surrounding surface. The detector isolates such structures with a staged
// pipeline: threshold the image into a dark-pixel mask, clean the mask with
// a morphological opening, label its connected components, then keep only
// components that are large enough and elongated enough to be crack
// candidates.
//
// # Threshold Strategies
//
// The intensity cutoff can be supplied directly, derived from a global
// statistic (mean minus a multiple of the standard deviation), or picked by
// Otsu's method. The strategy is configuration rather than a constant
// because the right choice depends on the lighting of the source material.
//
// # Shape Filtering
//
// The bounding-box aspect ratio (longer side over shorter side) separates
// thin cracks from compact blob noise: a hairline crack 50 pixels long has
// a ratio near 50, while a paint chip has a ratio near 1. Both bounds are
// configurable; the upper bound is open by default.
//
// All entry points are pure functions over their inputs. Detection on an
// all-background image yields an empty report, not an error.
package crack
