// Package raster defines the image value types shared by every analysis
// package in this module, plus a cached disk loader.
//
// # Coordinate System
//
// All pixel coordinates are 0-based (row, col) pairs with the origin at the
// top-left corner: rows increase downward, columns increase rightward.
// Valid coordinates satisfy 0 <= row < Height and 0 <= col < Width.
//
// # Value Semantics
//
// Gray and Binary validate their dimensions at construction: every row must
// have the same length and both dimensions must be positive. Analysis
// functions treat their input rasters as read-only, so a raster may be
// shared across concurrent calls without synchronization.
//
// # Error Handling
//
// The package exports the two sentinel errors used module-wide:
// ErrInvalidInput for malformed images and ErrInvalidConfiguration for
// out-of-range parameters. Wrap sites add context with fmt.Errorf and %w.
package raster
