package platform

import (
	"image"
	"time"

	"github.com/1broseidon/dockpeek/internal/geom"
)

// WindowHandle identifies a window in the host's window tree. Handles are
// capability tokens: they are only ever passed back into Backend calls and
// are valid until the window goes away.
type WindowHandle uint32

// CaptureID identifies an on-screen compositor window that can be imaged.
// It carries no guaranteed relationship to any WindowHandle; reparenting
// window managers give frame windows their own identities.
type CaptureID uint32

// TrayIcon is one cell of the taskbar icon strip: the application label the
// host shows for it and the screen rectangle of its button.
//
// Rect uses bottom-left-origin screen coordinates (see the Backend
// contract). Handle refers to the host object the geometry was read from.
type TrayIcon struct {
	Label  string
	Rect   geom.Rect
	Handle WindowHandle
}

// TreeWindow is a window as reported by the host's window tree, the
// authoritative source for existence, title, bounds, minimized state and
// the handle used by control actions.
//
// Bounds uses bottom-left-origin screen coordinates. Instance carries the
// window's secondary class tag when the host exposes one (profile-separated
// browser windows report distinct instances).
type TreeWindow struct {
	Handle    WindowHandle
	Title     string
	Bounds    geom.Rect
	PID       int
	Minimized bool
	Instance  string
}

// SurfaceWindow is an on-screen window as reported by the compositor-level
// enumeration, the authoritative source for capturable images. Bounds uses
// top-left-origin screen coordinates and includes decoration.
type SurfaceWindow struct {
	ID     CaptureID
	Title  string
	Bounds geom.Rect
}

// Process is one entry of the host's process table.
type Process struct {
	PID  int
	Name string
}

// Backend abstracts the host window system.
//
// Coordinate contract: TrayIcons and TreeWindows report geometry with a
// bottom-left screen origin, and MoveResize accepts it; PointerPosition,
// SurfaceWindows and captures use the display's native top-left origin.
// Callers convert between the two with the geom flip helpers.
//
// Query methods degrade, they do not break the engine: callers treat errors
// as transient and fall back to previous or empty results.
type Backend interface {
	// ScreenSize returns the full size of the screen in pixels.
	ScreenSize() (geom.Size, error)

	// UsableBounds returns the screen area not reserved by docks or other
	// host chrome, in top-left-origin coordinates.
	UsableBounds() (geom.Rect, error)

	// TrayIcons returns the current icon strip cells.
	TrayIcons() ([]TrayIcon, error)

	// PointerPosition returns the pointer location.
	PointerPosition() (geom.Point, error)

	// Processes lists running processes.
	Processes() ([]Process, error)

	// ActivePID returns the pid owning the focused window, 0 if unknown.
	ActivePID() (int, error)

	// TreeWindows returns the window-tree view for a process. A pid of 0
	// returns every managed window.
	TreeWindows(pid int) ([]TreeWindow, error)

	// SurfaceWindows returns the compositor view for a process.
	SurfaceWindows(pid int) ([]SurfaceWindow, error)

	// Capture images an on-screen window. Fails for windows that are not
	// currently viewable.
	Capture(id CaptureID) (*image.RGBA, error)

	// AppIcon returns the application icon attached to a window, or an
	// error when none is set.
	AppIcon(h WindowHandle) (*image.RGBA, error)

	// Activate unminimizes, raises and focuses a window.
	Activate(h WindowHandle) error

	// Close asks the window to close through its close affordance.
	Close(h WindowHandle) error

	// SetMinimized iconifies or restores a window.
	SetMinimized(h WindowHandle, minimized bool) error

	// MoveResize repositions a window; r uses the tree coordinate
	// convention.
	MoveResize(h WindowHandle, r geom.Rect) error

	// HideApp iconifies every managed window of a process.
	HideApp(pid int) error

	// TerminateProcess signals a process to exit, escalating to a forced
	// kill when it is still alive after the grace period.
	TerminateProcess(pid int, grace time.Duration) error
}

// InterceptVerdict is the synchronous decision of a pointer-down filter.
type InterceptVerdict int

const (
	// VerdictPass lets the host deliver the event as if unobserved.
	VerdictPass InterceptVerdict = iota
	// VerdictConsume swallows the event before the host acts on it.
	VerdictConsume
)

// String returns the verdict name for logs.
func (v InterceptVerdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictConsume:
		return "consume"
	default:
		return "unknown"
	}
}

// PointerInterceptor is an optional interface for backends that can filter
// pointer-down events on the icon strip before the host handles them.
// Callers discover it with a type assertion on Backend.
type PointerInterceptor interface {
	// InterceptPointerDown installs the synchronous filter. The handler
	// receives the event position in top-left-origin coordinates and must
	// return within microseconds.
	InterceptPointerDown(fn func(geom.Point) InterceptVerdict) error

	// RefreshIntercept re-resolves the icon strip windows and re-installs
	// grabs after the strip changes. Safe to call on every tray refresh.
	RefreshIntercept() error
}
