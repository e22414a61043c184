// Package compose combines detection masks and renders inspection results
// into viewable images: tinted mask overlays, per-component bounding-box
// annotations, and distinct-color label visualizations.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/wallscan/wallscan/internal/label"
	"github.com/wallscan/wallscan/internal/raster"
)

// Combine ORs any number of same-sized binary masks into one. The crack
// mask and the reference-marker mask are combined this way to show every
// detected region in a single image.
func Combine(masks ...*raster.Binary) (*raster.Binary, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("%w: no masks to combine", raster.ErrInvalidInput)
	}
	width, height := masks[0].Width, masks[0].Height
	for i, m := range masks {
		if m == nil {
			return nil, fmt.Errorf("%w: mask %d is nil", raster.ErrInvalidInput, i)
		}
		if m.Width != width || m.Height != height {
			return nil, fmt.Errorf("%w: mask %d is %dx%d, want %dx%d",
				raster.ErrInvalidInput, i, m.Width, m.Height, width, height)
		}
	}

	out, err := raster.NewBinarySize(width, height)
	if err != nil {
		return nil, err
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			for _, m := range masks {
				if m.Bits[row][col] {
					out.Bits[row][col] = true
					break
				}
			}
		}
	}
	return out, nil
}

// Overlay renders the grayscale image with mask pixels blended toward the
// tint color. tint is a hex string like "#FF0000"; opacity in [0, 1]
// controls the blend strength.
func Overlay(img *raster.Gray, mask *raster.Binary, tint string, opacity float64) (*image.RGBA, error) {
	if img == nil || mask == nil {
		return nil, fmt.Errorf("%w: nil image or mask", raster.ErrInvalidInput)
	}
	if img.Width != mask.Width || img.Height != mask.Height {
		return nil, fmt.Errorf("%w: image %dx%d vs mask %dx%d",
			raster.ErrInvalidInput, img.Width, img.Height, mask.Width, mask.Height)
	}
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: opacity %g outside [0, 1]", raster.ErrInvalidConfiguration, opacity)
	}
	tc, err := colorful.Hex(tint)
	if err != nil {
		return nil, fmt.Errorf("%w: tint %q: %v", raster.ErrInvalidConfiguration, tint, err)
	}
	tr, tg, tb := tc.RGB255()

	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	draw.Draw(out, out.Bounds(), img.ToImage(), image.Point{}, draw.Src)

	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			if !mask.Bits[row][col] {
				continue
			}
			g := float64(img.Pix[row][col])
			out.SetRGBA(col, row, color.RGBA{
				R: blend(g, float64(tr), opacity),
				G: blend(g, float64(tg), opacity),
				B: blend(g, float64(tb), opacity),
				A: 255,
			})
		}
	}
	return out, nil
}

func blend(base, tint, opacity float64) uint8 {
	v := base*(1-opacity) + tint*opacity
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Annotate draws the bounding box and a centroid cross for each component
// onto dst, in the given hex color. Drawing is clipped to the image.
func Annotate(dst *image.RGBA, comps []label.Component, hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("%w: annotation color %q: %v", raster.ErrInvalidConfiguration, hex, err)
	}
	r, g, b := c.RGB255()
	rgba := color.RGBA{R: r, G: g, B: b, A: 255}

	for _, comp := range comps {
		bb := comp.Bounds
		for col := bb.MinCol; col <= bb.MaxCol; col++ {
			setClipped(dst, col, bb.MinRow, rgba)
			setClipped(dst, col, bb.MaxRow, rgba)
		}
		for row := bb.MinRow; row <= bb.MaxRow; row++ {
			setClipped(dst, bb.MinCol, row, rgba)
			setClipped(dst, bb.MaxCol, row, rgba)
		}

		cr, cc := int(comp.Centroid.Row), int(comp.Centroid.Col)
		for d := -2; d <= 2; d++ {
			setClipped(dst, cc+d, cr, rgba)
			setClipped(dst, cc, cr+d, rgba)
		}
	}
	return nil
}

func setClipped(dst *image.RGBA, x, y int, c color.RGBA) {
	if p := (image.Point{X: x, Y: y}); p.In(dst.Bounds()) {
		dst.SetRGBA(x, y, c)
	}
}

// Palette returns n visually distinct, fully saturated colors spaced evenly
// around the hue wheel. Deterministic for a given n.
func Palette(n int) []color.RGBA {
	colors := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		hue := float64(i) * 360.0 / float64(n)
		r, g, b := colorful.Hsv(hue, 0.85, 0.95).RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// RenderLabels paints each labeled component in its own color on a black
// background, for inspecting a labeling result visually.
func RenderLabels(res *label.Result) *image.RGBA {
	height := len(res.Grid)
	width := 0
	if height > 0 {
		width = len(res.Grid[0])
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if len(res.Components) == 0 {
		return out
	}

	palette := Palette(len(res.Components))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if v := res.Grid[row][col]; v > 0 {
				out.SetRGBA(col, row, palette[v-1])
			}
		}
	}
	return out
}

// Scale resizes a rendered image by the given factor using Lanczos
// resampling. Factor 1 returns the input unchanged.
func Scale(img image.Image, factor float64) (image.Image, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: scale factor %g", raster.ErrInvalidConfiguration, factor)
	}
	if factor == 1 {
		return img, nil
	}
	w := int(float64(img.Bounds().Dx()) * factor)
	h := int(float64(img.Bounds().Dy()) * factor)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}
