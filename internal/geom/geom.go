// Package geom provides the shared screen-space geometry types used across
// the preview engine. Two vertical-origin conventions are in play: pointer
// queries and surface/capture geometry use a top-left origin, while tray and
// window-tree geometry arrives with a bottom-left origin. FlipPointY and
// FlipRectY convert between the two; both are involutions.
package geom

// Point is a screen-space coordinate in pixels.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Rect is a screen-space rectangle. The origin corner depends on the
// coordinate convention of the producer; Width and Height are always
// non-negative for rectangles produced by this module.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies within r. The left and top edges are
// inclusive, the right and bottom edges exclusive, so adjacent rectangles
// never both claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle covering both a and b. An empty
// rectangle acts as the identity.
func Union(a, b Rect) Rect {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	x1 := min(a.X, b.X)
	y1 := min(a.Y, b.Y)
	x2 := max(a.X+a.Width, b.X+b.Width)
	y2 := max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// FlipPointY converts p between top-origin and bottom-origin coordinates
// for a screen of the given height.
func FlipPointY(p Point, screenHeight int) Point {
	return Point{X: p.X, Y: screenHeight - p.Y}
}

// FlipRectY converts r between vertical-origin conventions while keeping
// its on-screen position. The origin corner moves to the opposite edge, so
// applying the conversion twice yields the input.
func FlipRectY(r Rect, screenHeight int) Rect {
	return Rect{
		X:      r.X,
		Y:      screenHeight - r.Y - r.Height,
		Width:  r.Width,
		Height: r.Height,
	}
}

// ClampX shifts x so that a span of the given width starting at x stays
// within the horizontal extent of bounds. Spans wider than bounds pin to
// the left edge.
func ClampX(x, width int, bounds Rect) int {
	if x+width > bounds.X+bounds.Width {
		x = bounds.X + bounds.Width - width
	}
	if x < bounds.X {
		x = bounds.X
	}
	return x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
