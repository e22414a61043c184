package label

import (
	"fmt"

	"github.com/wallscan/wallscan/internal/raster"
)

// Connectivity selects the neighbor-adjacency rule used when growing
// components.
type Connectivity int

const (
	// Four treats only the up/down/left/right neighbors as adjacent.
	Four Connectivity = 4
	// Eight additionally treats the diagonal neighbors as adjacent.
	Eight Connectivity = 8
)

// Bounds is the axis-aligned bounding box of a component, in inclusive
// (row, col) coordinates.
type Bounds struct {
	MinRow int `json:"min_row"`
	MinCol int `json:"min_col"`
	MaxRow int `json:"max_row"`
	MaxCol int `json:"max_col"`
}

// Width returns the number of columns spanned by the box.
func (b Bounds) Width() int { return b.MaxCol - b.MinCol + 1 }

// Height returns the number of rows spanned by the box.
func (b Bounds) Height() int { return b.MaxRow - b.MinRow + 1 }

// AspectRatio returns the ratio of the box's longer side to its shorter
// side, always >= 1. A 1-pixel-wide line of length 50 has ratio 50; a
// square has ratio 1.
func (b Bounds) AspectRatio() float64 {
	w, h := float64(b.Width()), float64(b.Height())
	if w > h {
		return w / h
	}
	return h / w
}

// Centroid is the mean pixel coordinate of a component.
type Centroid struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Component describes one maximal connected foreground region.
type Component struct {
	// Label is the component's identifier in the label grid, >= 1.
	// Label 0 is reserved for background. Labels are assigned in raster
	// scan order of each component's first pixel, so numbering is fully
	// determined by the input grid and connectivity.
	Label int `json:"label"`

	// PixelCount is the number of foreground pixels in the component.
	PixelCount int `json:"pixel_count"`

	// Bounds is the component's bounding box.
	Bounds Bounds `json:"bounds"`

	// Centroid is the mean coordinate of the component's pixels.
	Centroid Centroid `json:"centroid"`
}

// Result holds the output of a labeling pass.
type Result struct {
	// Grid assigns every pixel its component label, 0 for background.
	// It has the same dimensions as the input image.
	Grid [][]int `json:"-"`

	// Components lists the detected components ordered by ascending label.
	Components []Component `json:"components"`
}

// ForegroundMask returns a binary image whose foreground is every labeled
// pixel (label > 0). Labeling this mask again reproduces the same partition.
func (r *Result) ForegroundMask() *raster.Binary {
	bits := make([][]bool, len(r.Grid))
	for row := range r.Grid {
		bits[row] = make([]bool, len(r.Grid[row]))
		for col, v := range r.Grid[row] {
			bits[row][col] = v > 0
		}
	}
	mask, _ := raster.NewBinary(bits)
	return mask
}

// Label assigns a unique integer label to each maximal connected foreground
// region of a binary image.
//
// The implementation is the classic two-pass algorithm. The first pass
// scans in raster order, propagating the label of any already-visited
// neighbor (up and left, plus the upper diagonals under Eight connectivity)
// and recording label equivalences in a disjoint-set structure whenever a
// pixel bridges two provisional labels. The second pass resolves every
// provisional label to its set root and compacts the roots to a contiguous
// range starting at 1, numbered by the raster-scan position of each
// component's first pixel. Component statistics (pixel count, bounding box,
// centroid) are accumulated during the second pass.
//
// Label is a pure function: identical inputs always produce an identical
// grid and component list, and the input image is never modified.
func Label(img *raster.Binary, conn Connectivity) (*Result, error) {
	if err := validate(img); err != nil {
		return nil, err
	}
	if conn != Four && conn != Eight {
		return nil, fmt.Errorf("%w: connectivity %d, want 4 or 8", raster.ErrInvalidConfiguration, int(conn))
	}

	height, width := img.Height, img.Width

	// Neighbors already visited at each step of a raster scan.
	offsets := [][2]int{{-1, 0}, {0, -1}}
	if conn == Eight {
		offsets = append(offsets, [2]int{-1, -1}, [2]int{-1, 1})
	}

	grid := make([][]int, height)
	for row := range grid {
		grid[row] = make([]int, width)
	}

	// First pass: provisional labels plus equivalences.
	sets := newDisjointSet()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if !img.Bits[row][col] {
				continue
			}

			assigned := 0
			for _, off := range offsets {
				nr, nc := row+off[0], col+off[1]
				if nr < 0 || nc < 0 || nc >= width {
					continue
				}
				neighbor := grid[nr][nc]
				if neighbor == 0 {
					continue
				}
				if assigned == 0 {
					assigned = neighbor
				} else if assigned != neighbor {
					sets.union(assigned-1, neighbor-1)
					if neighbor < assigned {
						assigned = neighbor
					}
				}
			}

			if assigned == 0 {
				assigned = sets.add() + 1
			}
			grid[row][col] = assigned
		}
	}

	// Second pass: resolve equivalences and compact to final labels in
	// order of first appearance.
	final := make(map[int]int)
	var components []Component
	var sumRow, sumCol []float64

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if grid[row][col] == 0 {
				continue
			}
			root := sets.find(grid[row][col] - 1)
			id, ok := final[root]
			if !ok {
				id = len(components) + 1
				final[root] = id
				components = append(components, Component{
					Label:  id,
					Bounds: Bounds{MinRow: row, MinCol: col, MaxRow: row, MaxCol: col},
				})
				sumRow = append(sumRow, 0)
				sumCol = append(sumCol, 0)
			}
			grid[row][col] = id

			c := &components[id-1]
			c.PixelCount++
			if row < c.Bounds.MinRow {
				c.Bounds.MinRow = row
			}
			if row > c.Bounds.MaxRow {
				c.Bounds.MaxRow = row
			}
			if col < c.Bounds.MinCol {
				c.Bounds.MinCol = col
			}
			if col > c.Bounds.MaxCol {
				c.Bounds.MaxCol = col
			}
			sumRow[id-1] += float64(row)
			sumCol[id-1] += float64(col)
		}
	}

	for i := range components {
		n := float64(components[i].PixelCount)
		components[i].Centroid = Centroid{Row: sumRow[i] / n, Col: sumCol[i] / n}
	}

	return &Result{Grid: grid, Components: components}, nil
}

func validate(img *raster.Binary) error {
	if img == nil || img.Height == 0 || img.Width == 0 || len(img.Bits) == 0 {
		return fmt.Errorf("%w: empty image", raster.ErrInvalidInput)
	}
	if len(img.Bits) != img.Height {
		return fmt.Errorf("%w: %d rows, header says %d", raster.ErrInvalidInput, len(img.Bits), img.Height)
	}
	for row := range img.Bits {
		if len(img.Bits[row]) != img.Width {
			return fmt.Errorf("%w: row %d has %d samples, want %d",
				raster.ErrInvalidInput, row, len(img.Bits[row]), img.Width)
		}
	}
	return nil
}
