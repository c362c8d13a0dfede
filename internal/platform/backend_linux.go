//go:build linux

package platform

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend implements Backend on top of an X11 connection. It owns the
// conversion between the display's native top-left coordinates and the
// bottom-left convention the Backend contract uses for tray and tree
// geometry.
type LinuxBackend struct {
	conn *x11.Connection
	grab *x11.ClickGrab
}

var (
	_ Backend            = (*LinuxBackend)(nil)
	_ PointerInterceptor = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking). Click grabs and hotkeys
// dispatch from it.
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// WMName reports the running window manager, for startup logging.
func (b *LinuxBackend) WMName() string {
	if b == nil || b.conn == nil {
		return ""
	}
	return b.conn.WMName()
}

// ScreenSize returns the full root window size.
func (b *LinuxBackend) ScreenSize() (geom.Size, error) {
	width, height, err := b.conn.RootSize()
	if err != nil {
		return geom.Size{}, err
	}
	return geom.Size{Width: width, Height: height}, nil
}

// UsableBounds returns the struts-adjusted monitor under the pointer in
// top-left-origin coordinates.
func (b *LinuxBackend) UsableBounds() (geom.Rect, error) {
	mon, err := b.conn.UsableArea()
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}, nil
}

// TrayIcons derives the icon strip from _NET_WM_ICON_GEOMETRY, which
// taskbars advertise per window. Windows the taskbar groups under one
// button carry the same geometry, so cells sharing a label are unioned.
// When no window carries the property the strip is synthesized by dividing
// the first dock window evenly across the labeled clients.
func (b *LinuxBackend) TrayIcons() ([]TrayIcon, error) {
	_, rootHeight, err := b.conn.RootSize()
	if err != nil {
		return nil, err
	}
	clients, err := b.conn.ListClients()
	if err != nil {
		return nil, err
	}

	type group struct {
		rect   geom.Rect
		handle WindowHandle
	}
	var order []string
	groups := make(map[string]*group)

	for _, win := range clients {
		if !b.conn.IsNormalWindow(win) {
			continue
		}
		x, y, width, height, ok := b.conn.IconGeometry(win)
		if !ok || width <= 0 || height <= 0 {
			continue
		}
		label := b.iconLabel(win)
		if label == "" {
			continue
		}
		rect := geom.FlipRectY(geom.Rect{X: x, Y: y, Width: width, Height: height}, rootHeight)
		if g, ok := groups[label]; ok {
			g.rect = geom.Union(g.rect, rect)
			continue
		}
		groups[label] = &group{rect: rect, handle: WindowHandle(win)}
		order = append(order, label)
	}

	if len(order) == 0 {
		return b.synthesizeTray(rootHeight, clients), nil
	}

	icons := make([]TrayIcon, 0, len(order))
	for _, label := range order {
		g := groups[label]
		icons = append(icons, TrayIcon{Label: label, Rect: g.rect, Handle: g.handle})
	}
	return icons, nil
}

// synthesizeTray approximates the icon strip for taskbars that never set
// _NET_WM_ICON_GEOMETRY: the first dock window is divided into equal cells,
// one per distinct label, in client-list order.
func (b *LinuxBackend) synthesizeTray(rootHeight int, clients []xproto.Window) []TrayIcon {
	docks := b.conn.DockWindows()
	if len(docks) == 0 {
		return nil
	}
	dockX, dockY, dockWidth, dockHeight, err := b.conn.WindowGeometry(docks[0])
	if err != nil || dockWidth <= 0 || dockHeight <= 0 {
		return nil
	}

	var labels []string
	handles := make(map[string]xproto.Window)
	for _, win := range clients {
		if !b.conn.IsNormalWindow(win) {
			continue
		}
		label := b.iconLabel(win)
		if label == "" {
			continue
		}
		if _, ok := handles[label]; ok {
			continue
		}
		handles[label] = win
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil
	}

	cellWidth := dockWidth / len(labels)
	if cellWidth <= 0 {
		return nil
	}

	icons := make([]TrayIcon, 0, len(labels))
	for i, label := range labels {
		cell := geom.Rect{X: dockX + i*cellWidth, Y: dockY, Width: cellWidth, Height: dockHeight}
		icons = append(icons, TrayIcon{
			Label:  label,
			Rect:   geom.FlipRectY(cell, rootHeight),
			Handle: WindowHandle(handles[label]),
		})
	}
	return icons
}

// PointerPosition returns the pointer location in top-left coordinates.
func (b *LinuxBackend) PointerPosition() (geom.Point, error) {
	x, y, err := b.conn.PointerPosition()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

// Processes lists running processes from /proc.
func (b *LinuxBackend) Processes() ([]Process, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc: %w", err)
	}

	procs := make([]Process, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(comm))
		if name == "" {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: name})
	}
	return procs, nil
}

// ActivePID returns the pid owning the focused window, 0 when nothing is
// focused or the window doesn't advertise one.
func (b *LinuxBackend) ActivePID() (int, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	if win == 0 {
		return 0, nil
	}
	return b.conn.WindowPID(win), nil
}

// TreeWindows returns the managed windows of a process in client-list
// order, with bounds converted to the bottom-left convention. A pid of 0
// returns every managed window.
func (b *LinuxBackend) TreeWindows(pid int) ([]TreeWindow, error) {
	_, rootHeight, err := b.conn.RootSize()
	if err != nil {
		return nil, err
	}
	clients, err := b.conn.ListClients()
	if err != nil {
		return nil, err
	}

	windows := make([]TreeWindow, 0, len(clients))
	for _, win := range clients {
		if !b.conn.IsNormalWindow(win) {
			continue
		}
		winPID := b.conn.WindowPID(win)
		if pid != 0 && winPID != pid {
			continue
		}
		x, y, width, height, err := b.conn.WindowGeometry(win)
		if err != nil {
			continue
		}
		instance, _ := b.conn.WindowClass(win)
		windows = append(windows, TreeWindow{
			Handle:    WindowHandle(win),
			Title:     b.conn.WindowTitle(win),
			Bounds:    geom.FlipRectY(geom.Rect{X: x, Y: y, Width: width, Height: height}, rootHeight),
			PID:       winPID,
			Minimized: b.conn.IsMinimized(win),
			Instance:  instance,
		})
	}
	return windows, nil
}

// SurfaceWindows returns the viewable windows of a process, topmost first,
// in top-left coordinates. A pid of 0 returns all viewable windows.
func (b *LinuxBackend) SurfaceWindows(pid int) ([]SurfaceWindow, error) {
	stack, err := b.conn.StackingClients()
	if err != nil {
		return nil, err
	}

	windows := make([]SurfaceWindow, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		win := stack[i]
		if pid != 0 && b.conn.WindowPID(win) != pid {
			continue
		}
		if !b.conn.IsViewable(win) {
			continue
		}
		// Capture and position the frame, not the client: the compositor
		// stacks frames, and thumbnails should include decorations.
		frame, err := b.conn.TopLevelAncestor(win)
		if err != nil {
			frame = win
		}
		x, y, width, height, err := b.conn.WindowGeometry(frame)
		if err != nil {
			continue
		}
		windows = append(windows, SurfaceWindow{
			ID:     CaptureID(frame),
			Title:  b.conn.WindowTitle(win),
			Bounds: geom.Rect{X: x, Y: y, Width: width, Height: height},
		})
	}
	return windows, nil
}

// Capture images an on-screen window.
func (b *LinuxBackend) Capture(id CaptureID) (*image.RGBA, error) {
	return b.conn.CaptureImage(xproto.Window(id))
}

// AppIcon returns the application icon attached to a window.
func (b *LinuxBackend) AppIcon(h WindowHandle) (*image.RGBA, error) {
	return b.conn.WindowIcon(xproto.Window(h))
}

// Activate unminimizes, raises and focuses a window.
func (b *LinuxBackend) Activate(h WindowHandle) error {
	win := xproto.Window(h)
	if b.conn.IsMinimized(win) {
		if err := b.conn.RestoreWindow(win); err != nil {
			return err
		}
	}
	return b.conn.FocusWindow(win)
}

// Close requests a graceful window close.
func (b *LinuxBackend) Close(h WindowHandle) error {
	return b.conn.CloseWindow(xproto.Window(h))
}

// SetMinimized iconifies or restores a window.
func (b *LinuxBackend) SetMinimized(h WindowHandle, minimized bool) error {
	win := xproto.Window(h)
	if minimized {
		return b.conn.MinimizeWindow(win)
	}
	return b.conn.RestoreWindow(win)
}

// MoveResize repositions a window. r arrives in the bottom-left convention.
func (b *LinuxBackend) MoveResize(h WindowHandle, r geom.Rect) error {
	_, rootHeight, err := b.conn.RootSize()
	if err != nil {
		return err
	}
	native := geom.FlipRectY(r, rootHeight)
	return b.conn.MoveResizeWindow(xproto.Window(h), native.X, native.Y, native.Width, native.Height)
}

// HideApp iconifies every managed window of a process.
func (b *LinuxBackend) HideApp(pid int) error {
	windows, err := b.TreeWindows(pid)
	if err != nil {
		return err
	}
	var firstErr error
	for _, w := range windows {
		if w.Minimized {
			continue
		}
		if err := b.conn.MinimizeWindow(xproto.Window(w.Handle)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TerminateProcess sends SIGTERM and escalates to SIGKILL when the process
// is still alive after the grace period.
func (b *LinuxBackend) TerminateProcess(pid int, grace time.Duration) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
		// Signal 0 probes liveness without delivering anything.
		if err := syscall.Kill(pid, 0); err != nil {
			return nil
		}
	}

	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("failed to kill pid %d: %w", pid, err)
	}
	return nil
}

// InterceptPointerDown installs a synchronous left-button filter over the
// taskbar's dock windows.
func (b *LinuxBackend) InterceptPointerDown(fn func(geom.Point) InterceptVerdict) error {
	if b.grab != nil {
		return fmt.Errorf("pointer interception already installed")
	}
	b.grab = x11.NewClickGrab(b.conn, func(x, y int) bool {
		return fn(geom.Point{X: x, Y: y}) == VerdictConsume
	})
	return b.RefreshIntercept()
}

// RefreshIntercept re-resolves the dock windows and reconciles the grabs.
func (b *LinuxBackend) RefreshIntercept() error {
	if b.grab == nil {
		return nil
	}
	return b.grab.Update(b.conn.DockWindows())
}

// iconLabel is the name a taskbar shows on a window's button: the WM_CLASS
// class when set, otherwise the instance.
func (b *LinuxBackend) iconLabel(win xproto.Window) string {
	instance, class := b.conn.WindowClass(win)
	if class != "" {
		return class
	}
	return instance
}
