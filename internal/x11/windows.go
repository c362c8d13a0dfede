package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ListClients returns every window managed by the window manager in
// _NET_CLIENT_LIST order (oldest mapped first).
func (c *Connection) ListClients() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// StackingClients returns managed windows in bottom-to-top stacking order.
func (c *Connection) StackingClients() ([]xproto.Window, error) {
	return ewmh.ClientListStackingGet(c.XUtil)
}

// WindowTitle returns a window's title, preferring _NET_WM_NAME and falling
// back to the ICCCM WM_NAME. Returns "" when neither is set.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}

// WindowClass returns the WM_CLASS pair: the instance tag (distinct per
// browser profile) and the class name taskbars group by.
func (c *Connection) WindowClass(windowID xproto.Window) (instance, class string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Instance), strings.TrimSpace(wmClass.Class)
}

// WindowPID returns the _NET_WM_PID of a window, 0 when unset.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowGeometry returns a window's root-relative position and size in the
// display's native top-left coordinates. Reparenting window managers hand
// out frame-relative geometry, so the position comes from translating the
// window origin to root space.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// TopLevelAncestor walks up the window tree to the ancestor sitting
// directly below the root. Under a reparenting window manager that is the
// frame holding the client plus its decorations; without reparenting it is
// the client itself.
func (c *Connection) TopLevelAncestor(windowID xproto.Window) (xproto.Window, error) {
	for {
		tree, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
		if err != nil {
			return 0, fmt.Errorf("query tree for %d: %w", windowID, err)
		}
		if tree.Parent == 0 || tree.Parent == tree.Root {
			return windowID, nil
		}
		windowID = tree.Parent
	}
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" ||
			t == "_NET_WM_WINDOW_TYPE_TOOLTIP" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// IsMinimized reports whether a window carries _NET_WM_STATE_HIDDEN.
func (c *Connection) IsMinimized(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

// IsViewable reports whether the X server currently maps the window. Only
// viewable windows have backing content that can be imaged.
func (c *Connection) IsViewable(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// Sends a client message to the root window per EWMH spec.
// We build the message manually because the xgbutil ewmh helpers panic on
// this library version (uint vs int type assertion).
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// CloseWindow requests a graceful close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	deleteReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteReply.Atom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// MinimizeWindow iconifies a window via WM_CHANGE_STATE.
func (c *Connection) MinimizeWindow(windowID xproto.Window) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// RestoreWindow maps an iconified window again. Mapping deiconifies per
// ICCCM; raising and focusing is a separate FocusWindow call.
func (c *Connection) RestoreWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// MoveResizeWindow moves and resizes a window to the specified geometry
// in native top-left coordinates.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Unmaximize first or the size request is ignored by most WMs.
	// Some windows don't support this; that's fine.
	_ = c.unmaximizeWindow(windowID)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(
		c.XUtil,
		windowID,
		x, y, width, height,
	)

	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}

	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	hasMaxH := false
	hasMaxV := false

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" {
			hasMaxH = true
		}
		if state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			hasMaxV = true
		}
	}

	if hasMaxH {
		ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_HORZ")
	}
	if hasMaxV {
		ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_VERT")
	}

	return nil
}

// GetActiveWindow returns the currently focused window.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
