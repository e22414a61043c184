package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewGray_Validation(t *testing.T) {
	if _, err := NewGray(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil grid: got %v, want ErrInvalidInput", err)
	}
	if _, err := NewGray([][]uint8{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty grid: got %v, want ErrInvalidInput", err)
	}
	if _, err := NewGray([][]uint8{{1, 2}, {1}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ragged grid: got %v, want ErrInvalidInput", err)
	}

	g, err := NewGray([][]uint8{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}
	if g.Width != 3 || g.Height != 2 {
		t.Errorf("dimensions: got %dx%d, want 3x2", g.Width, g.Height)
	}
	if g.At(1, 2) != 6 {
		t.Errorf("At(1,2): got %d, want 6", g.At(1, 2))
	}
}

func TestNewGraySize_Validation(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 5}} {
		if _, err := NewGraySize(dims[0], dims[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("dims %v: got %v, want ErrInvalidInput", dims, err)
		}
	}

	g, err := NewGraySize(4, 3)
	if err != nil {
		t.Fatalf("NewGraySize failed: %v", err)
	}
	if g.Width != 4 || g.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 4x3", g.Width, g.Height)
	}
}

func TestFromImage_Luminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(2, 0, color.RGBA{0, 0, 255, 255})
	img.Set(3, 0, color.RGBA{128, 128, 128, 255})

	g, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	// BT.601: red ~76, green ~150, blue ~29, gray 128.
	cases := []struct {
		col  int
		want uint8
	}{
		{0, 76}, {1, 150}, {2, 29}, {3, 128},
	}
	for _, tc := range cases {
		got := g.At(0, tc.col)
		if diff := int(got) - int(tc.want); diff < -3 || diff > 3 {
			t.Errorf("col %d: luminance %d, want ~%d", tc.col, got, tc.want)
		}
	}
}

func TestGray_ToImageRoundTrip(t *testing.T) {
	g, _ := NewGray([][]uint8{{0, 100}, {200, 255}})

	back, err := FromImage(g.ToImage())
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			if back.At(row, col) != g.At(row, col) {
				t.Errorf("(%d,%d): got %d, want %d", row, col, back.At(row, col), g.At(row, col))
			}
		}
	}
}

func TestGray_Stats(t *testing.T) {
	g, _ := NewGray([][]uint8{{0, 255}, {0, 255}})

	mean, stddev := g.Stats()
	if mean != 127.5 {
		t.Errorf("mean: got %v, want 127.5", mean)
	}
	if stddev != 127.5 {
		t.Errorf("stddev: got %v, want 127.5", stddev)
	}
}

func TestGray_MinMax(t *testing.T) {
	g, _ := NewGray([][]uint8{{40, 200}, {90, 120}})

	min, max := g.MinMax()
	if min != 40 || max != 200 {
		t.Errorf("got [%d, %d], want [40, 200]", min, max)
	}
}

func TestGray_CloneIsIndependent(t *testing.T) {
	g, _ := NewGray([][]uint8{{1, 2}, {3, 4}})
	c := g.Clone()
	c.Pix[0][0] = 99

	if g.Pix[0][0] != 1 {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestBinary_Basics(t *testing.T) {
	b, err := NewBinary([][]bool{{true, false}, {false, true}})
	if err != nil {
		t.Fatalf("NewBinary failed: %v", err)
	}

	if b.ForegroundCount() != 2 {
		t.Errorf("foreground count: got %d, want 2", b.ForegroundCount())
	}

	img := b.ToImage()
	if img.GrayAt(0, 0).Y != 255 || img.GrayAt(1, 0).Y != 0 {
		t.Error("ToImage should render foreground white and background black")
	}

	c := b.Clone()
	c.Set(0, 0, false)
	if !b.At(0, 0) {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestNewBinary_Validation(t *testing.T) {
	if _, err := NewBinary([][]bool{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty: got %v, want ErrInvalidInput", err)
	}
	if _, err := NewBinary([][]bool{{true}, {true, false}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ragged: got %v, want ErrInvalidInput", err)
	}
}
