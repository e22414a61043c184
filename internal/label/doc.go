// Package label implements connected-component labeling for binary images.
//
// Labeling partitions the foreground of a binary image into maximal
// connected regions under a chosen connectivity (4- or 8-neighbor) and
// reports per-region statistics: pixel count, bounding box and centroid.
//
// # Determinism
//
// Labels are assigned in raster scan order of each component's first pixel
// and compacted to the contiguous range 1..N, with 0 reserved for
// background. Two calls on the same input always produce identical output,
// which downstream defect reports and their tests rely on.
//
// # Invariants
//
// Components are disjoint and their union is exactly the foreground pixel
// set: every foreground pixel belongs to one component and every background
// pixel has label 0.
package label
