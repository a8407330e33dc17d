package geometry

import (
	"image"
	"math"
)

// Rect is an axis aligned box in absolute pixel coordinates defined by its
// top left (X1, Y1) and bottom right (X2, Y2) corners
type Rect struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// NewRect returns a Rect with the given corner coordinates
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// FromRectangle converts an integer image.Rectangle to a Rect
func FromRectangle(r image.Rectangle) Rect {
	return Rect{
		X1: float64(r.Min.X),
		Y1: float64(r.Min.Y),
		X2: float64(r.Max.X),
		Y2: float64(r.Max.Y),
	}
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rectangle, or zero if it is degenerate
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}

	return r.Width() * r.Height()
}

// Empty reports whether the rectangle has zero or negative width or height
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Rectangle returns the integer pixel region covered by the rectangle.
// Coordinates are truncated toward zero.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(r.X1), int(r.Y1)),
		Max: image.Pt(int(r.X2), int(r.Y2)),
	}
}

// Clamp clips the rectangle into the bounds [0,width]x[0,height] of an image.
// The returned rectangle always satisfies X1 <= X2 and Y1 <= Y2, a degenerate
// input results in a zero area rectangle.
func Clamp(r Rect, width, height int) Rect {

	w := float64(width)
	h := float64(height)

	out := Rect{
		X1: clampVal(r.X1, 0, w),
		Y1: clampVal(r.Y1, 0, h),
		X2: clampVal(r.X2, 0, w),
		Y2: clampVal(r.Y2, 0, h),
	}

	if out.X2 < out.X1 {
		out.X2 = out.X1
	}

	if out.Y2 < out.Y1 {
		out.Y2 = out.Y1
	}

	return out
}

// Translate offsets all four coordinates of the rectangle by dx, dy.  It is
// used to move a box from a crop's local frame into the frame of the image
// the crop was taken from.
func Translate(r Rect, dx, dy float64) Rect {
	return Rect{
		X1: r.X1 + dx,
		Y1: r.Y1 + dy,
		X2: r.X2 + dx,
		Y2: r.Y2 + dy,
	}
}

// clampVal restricts val to the range min and max.  NaN collapses to min.
func clampVal(val, min, max float64) float64 {

	if math.IsNaN(val) || val <= min {
		return min
	}

	if val >= max {
		return max
	}

	return val
}
