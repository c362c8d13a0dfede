package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// IconGeometry returns the taskbar button rectangle a pager advertised for
// a window via _NET_WM_ICON_GEOMETRY, in native top-left root coordinates.
// ok is false when the taskbar does not publish the property.
func (c *Connection) IconGeometry(windowID xproto.Window) (x, y, width, height int, ok bool) {
	nums, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, windowID, "_NET_WM_ICON_GEOMETRY"))
	if err != nil || len(nums) < 4 {
		return 0, 0, 0, 0, false
	}
	return int(nums[0]), int(nums[1]), int(nums[2]), int(nums[3]), true
}

// DockWindows returns the managed windows of type _NET_WM_WINDOW_TYPE_DOCK
// in client-list order. Taskbars and panels show up here; window managers
// that keep docks out of the client list simply yield an empty slice.
func (c *Connection) DockWindows() []xproto.Window {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var docks []xproto.Window
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				docks = append(docks, windowID)
				break
			}
		}
	}
	return docks
}
