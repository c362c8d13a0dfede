package overlay

import (
	"github.com/1broseidon/dockpeek/internal/geom"
)

// Placement carries everything the surface needs to position itself over
// a hovered icon once it knows its own rendered size. All rectangles use
// top-left-origin screen coordinates.
type Placement struct {
	// IconRect is the hovered strip cell.
	IconRect geom.Rect

	// Usable is the screen area previews may occupy.
	Usable geom.Rect

	// OffsetPx separates the surface's bottom edge from the icon's top.
	OffsetPx int

	// MaxWidth caps the surface width; the renderer shrinks content to
	// fit rather than exceed it.
	MaxWidth int
}

// Origin computes the top-left corner for a surface of the given size:
// centered horizontally over the icon, a fixed offset above its top edge,
// clamped so the full width stays within the usable bounds. A surface too
// tall for the gap above the icon pins to the usable top instead of
// running off screen.
func (p Placement) Origin(size geom.Size) geom.Point {
	x := p.IconRect.X + p.IconRect.Width/2 - size.Width/2
	x = geom.ClampX(x, size.Width, p.Usable)

	y := p.IconRect.Y - p.OffsetPx - size.Height
	if y < p.Usable.Y {
		y = p.Usable.Y
	}
	return geom.Point{X: x, Y: y}
}
