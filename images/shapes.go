// Package images - Image processing utilities
package images

import "github.com/chewxy/math32"

// Rect is an axis-aligned box in floating point pixel space, anchored at its top-left corner.
type Rect struct {
	X0, Y0        float32
	Width, Height float32
}

// Right returns the exclusive right edge of the box.
func (r Rect) Right() float32 { return r.X0 + r.Width }

// Bottom returns the exclusive bottom edge of the box.
func (r Rect) Bottom() float32 { return r.Y0 + r.Height }

// Area returns the area of the box. Degenerate boxes report their signed product.
func (r Rect) Area() float32 { return r.Width * r.Height }

// Intersect returns the overlapping region of r and o.
//
// When the boxes do not overlap the result is the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math32.Max(r.X0, o.X0)
	y0 := math32.Max(r.Y0, o.Y0)
	x1 := math32.Min(r.Right(), o.Right())
	y1 := math32.Min(r.Bottom(), o.Bottom())

	if x1-x0 <= 0 || y1-y0 <= 0 {
		return Rect{}
	}

	return Rect{X0: x0, Y0: y0, Width: x1 - x0, Height: y1 - y0}
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
// IoU is a number between 0.0 and 1.0 that answers the question "how much do these two boxes
// overlap?":
//
//	IoU = Area of Intersection / Area of Union
//
// The intersection is found by clipping both boxes against each other: the top-left corner is the
// maximum of the two top-left corners and the bottom-right corner is the minimum of the two
// bottom-right corners. A non-positive intersection width or height means the boxes only touch or
// are disjoint, so the intersection area is 0.
//
// The union uses inclusion-exclusion:
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
// A union that is not strictly positive (two degenerate boxes) yields 0 instead of a division by
// zero.
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// @example
//
//	a := Rect{X0: 0, Y0: 0, Width: 10, Height: 10}
//	b := Rect{X0: 5, Y0: 5, Width: 10, Height: 10}
//	iou := CalculateIoU(a, b) // 25 / 175 = 0.142857
func CalculateIoU(r, o Rect) float32 {
	inter := r.Intersect(o).Area()
	if inter <= 0 {
		return 0
	}

	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}
