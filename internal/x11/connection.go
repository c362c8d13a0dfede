package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	wmName string
}

// NewConnection connects to the X server named by DISPLAY and verifies an
// EWMH-compliant window manager is running. Everything downstream (the
// taskbar scan, window enumeration, previews, actions) reads or writes
// _NET_* properties, so a non-EWMH session cannot be driven at all and is
// reported here instead of as per-window failures later.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Required for global hotkey grabs.
	keybind.Initialize(xu)

	wmName, err := ewmh.GetEwmhWM(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("no EWMH window manager detected (is a window manager running?): %w", err)
	}

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		wmName: wmName,
	}, nil
}

// WMName returns the window manager name advertised via
// _NET_SUPPORTING_WM_CHECK, for startup logging.
func (c *Connection) WMName() string {
	return c.wmName
}

// EventLoop runs the X event dispatch loop (blocking). Button grabs and
// hotkey handlers fire on this goroutine.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// StopEventLoop makes EventLoop return after the current event.
func (c *Connection) StopEventLoop() {
	xevent.Quit(c.XUtil)
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
