package overlay

import (
	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// EventType distinguishes the three instructions a surface can receive.
type EventType int

const (
	// EventShow presents the surface for a new target.
	EventShow EventType = iota
	// EventUpdate refreshes the window list of the current target in
	// place.
	EventUpdate
	// EventHide takes the surface down.
	EventHide
)

// String returns the event name for logs.
func (t EventType) String() string {
	switch t {
	case EventShow:
		return "show"
	case EventUpdate:
		return "update"
	case EventHide:
		return "hide"
	default:
		return "unknown"
	}
}

// Event is one discrete instruction to the preview surface. Show and
// Update carry the window list and placement; Hide carries neither.
type Event struct {
	Type      EventType
	Target    string
	Windows   []windows.AppWindow
	Placement Placement
}

// Surface is the controller's view of the preview panel: whether it is on
// screen and where. The grace poll reads both to decide if the pointer is
// "still interacting". Implementations answer from their own state and
// never call back into the controller.
type Surface interface {
	// Visible reports whether the panel is currently mapped.
	Visible() bool

	// Bounds returns the panel rectangle in top-left-origin screen
	// coordinates, ok=false while the panel has never been shown.
	Bounds() (geom.Rect, bool)
}
