package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CropRect is a normalized page region: left, top, width, height in
// [0,1] relative to page dimensions. Out-of-range components are
// clamped, not rejected.
type CropRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ParseCrop parses "left,top,width,height" into a clamped CropRect.
// Empty input returns nil (no crop). A rectangle that clamps to zero
// area also returns nil.
func ParseCrop(s string) (*CropRect, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop needs 4 components (left,top,width,height): %q", s)
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("crop component %d: %w", i+1, err)
		}
		vals[i] = v
	}

	r := CropRect{Left: vals[0], Top: vals[1], Width: vals[2], Height: vals[3]}
	r = r.Clamp()
	if r.Width <= 0 || r.Height <= 0 {
		return nil, nil
	}
	return &r, nil
}

// Clamp forces the rectangle inside the unit square.
func (r CropRect) Clamp() CropRect {
	r.Left = clamp01(r.Left)
	r.Top = clamp01(r.Top)
	r.Width = clampRange(r.Width, 0, 1-r.Left)
	r.Height = clampRange(r.Height, 0, 1-r.Top)
	return r
}

// PixelBounds converts the normalized rectangle to integer pixel
// bounds for an image of the given size. Returns ok=false when the
// region rounds to zero area.
func (r CropRect) PixelBounds(width, height int) (x0, y0, x1, y1 int, ok bool) {
	x0 = int(r.Left*float64(width) + 0.5)
	y0 = int(r.Top*float64(height) + 0.5)
	x1 = int((r.Left+r.Width)*float64(width) + 0.5)
	y1 = int((r.Top+r.Height)*float64(height) + 0.5)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1, y1, true
}

// String formats the rectangle in the parseable form.
func (r CropRect) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.Left, r.Top, r.Width, r.Height)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
