// Package windows resolves a hovered taskbar label into the list of
// windows a preview shows. Two host enumerations feed it: the window tree
// is authoritative for existence, titles, bounds, minimized state and
// control handles, while the surface list is authoritative for capturable
// images. Neither carries a stable identity linking it to the other, so
// the two are paired heuristically per pass.
package windows

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
)

// AppWindow is one window of the hovered application, assembled fresh on
// every enumeration pass. ID is an ordinal within the pass; it and Handle
// are only meaningful until the next pass for the same app.
type AppWindow struct {
	ID        int
	Title     string
	Bounds    geom.Rect
	PID       int
	Minimized bool
	Image     *image.RGBA
	Handle    platform.WindowHandle
	Profile   string
}

// Options tune enumeration, matching and fallback rendering.
type Options struct {
	// MinWindowSize drops helper windows: a non-minimized window below
	// this in either dimension is excluded. Exactly this size is kept.
	MinWindowSize int

	// PositionTolerance and SizeTolerance absorb the frame offsets
	// reparenting window managers introduce between the two sources.
	PositionTolerance int
	SizeTolerance     int

	// Placeholder geometry and fill for minimized windows.
	PlaceholderWidth  int
	PlaceholderHeight int
	PlaceholderBG     color.RGBA

	// TerminateGrace is how long a process gets to exit after the polite
	// signal before the forced one.
	TerminateGrace time.Duration
}

func (o Options) withDefaults() Options {
	if o.MinWindowSize <= 0 {
		o.MinWindowSize = 50
	}
	if o.PositionTolerance <= 0 {
		o.PositionTolerance = 10
	}
	if o.SizeTolerance <= 0 {
		o.SizeTolerance = 10
	}
	if o.PlaceholderWidth <= 0 {
		o.PlaceholderWidth = 240
	}
	if o.PlaceholderHeight <= 0 {
		o.PlaceholderHeight = 150
	}
	if o.PlaceholderBG == (color.RGBA{}) {
		o.PlaceholderBG = color.RGBA{R: 0x2e, G: 0x34, B: 0x40, A: 0xff}
	}
	if o.TerminateGrace <= 0 {
		o.TerminateGrace = 500 * time.Millisecond
	}
	return o
}

// Enumerator builds preview window lists and services the window actions
// the preview surface offers.
type Enumerator struct {
	backend  platform.Backend
	resolver *Resolver
	cache    *ImageCache

	mu   sync.RWMutex
	opts Options
}

// NewEnumerator wires an enumerator over the backend, resolver and
// thumbnail cache.
func NewEnumerator(backend platform.Backend, resolver *Resolver, cache *ImageCache, opts Options) *Enumerator {
	return &Enumerator{
		backend:  backend,
		resolver: resolver,
		cache:    cache,
		opts:     opts.withDefaults(),
	}
}

// UpdateOptions swaps the tuning, typically after a config reload. Passes
// already in flight finish with the options they started with.
func (e *Enumerator) UpdateOptions(opts Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts.withDefaults()
}

func (e *Enumerator) options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// Cache exposes the thumbnail cache for status reporting.
func (e *Enumerator) Cache() *ImageCache {
	return e.cache
}

// Enumerate returns the preview windows for a hovered label. Unresolvable
// labels and dead host queries yield an empty list, never an error; the
// preview simply has nothing to show.
func (e *Enumerator) Enumerate(label string) []AppWindow {
	procs, err := e.backend.Processes()
	if err != nil {
		return nil
	}
	proc, ok := e.resolver.ResolveProcess(label, procs)
	if !ok {
		return nil
	}
	return e.EnumeratePID(proc.PID)
}

// EnumeratePID builds the window list for a process the caller already
// resolved.
func (e *Enumerator) EnumeratePID(pid int) []AppWindow {
	opts := e.options()

	screen, err := e.backend.ScreenSize()
	if err != nil {
		return nil
	}

	surfaces, err := e.backend.SurfaceWindows(pid)
	if err != nil {
		surfaces = nil
	}

	tree, err := e.backend.TreeWindows(pid)
	if err != nil {
		// No tree view at all: degrade to what the surface list knows.
		return e.surfaceOnly(pid, surfaces, screen.Height, opts)
	}

	cands := make([]candidate, len(surfaces))
	for i, s := range surfaces {
		cands[i] = candidate{
			surface: s,
			bounds:  geom.FlipRectY(s.Bounds, screen.Height),
		}
	}

	windows := make([]AppWindow, 0, len(tree))
	for _, tw := range tree {
		if tw.Title == "" && !tw.Minimized {
			continue
		}
		if !tw.Minimized &&
			(tw.Bounds.Width < opts.MinWindowSize || tw.Bounds.Height < opts.MinWindowSize) {
			continue
		}

		win := AppWindow{
			ID:        len(windows),
			Title:     tw.Title,
			Bounds:    tw.Bounds,
			PID:       tw.PID,
			Minimized: tw.Minimized,
			Handle:    tw.Handle,
			Profile:   tw.Instance,
		}

		if idx := claimBest(tw, cands, opts.PositionTolerance, opts.SizeTolerance); idx >= 0 {
			if img, err := e.backend.Capture(cands[idx].surface.ID); err == nil && img != nil {
				win.Image = img
				e.cache.Put(tw.PID, tw.Title, img)
			}
		}
		if win.Image == nil {
			win.Image = e.fallbackImage(tw, opts)
		}

		windows = append(windows, win)
	}
	return windows
}

// surfaceOnly lists whatever the surface enumeration exposes: titles and
// bounds but no minimized awareness and no control handles.
func (e *Enumerator) surfaceOnly(pid int, surfaces []platform.SurfaceWindow, screenHeight int, opts Options) []AppWindow {
	windows := make([]AppWindow, 0, len(surfaces))
	for _, s := range surfaces {
		if s.Title == "" {
			continue
		}
		if s.Bounds.Width < opts.MinWindowSize || s.Bounds.Height < opts.MinWindowSize {
			continue
		}

		win := AppWindow{
			ID:     len(windows),
			Title:  s.Title,
			Bounds: geom.FlipRectY(s.Bounds, screenHeight),
			PID:    pid,
		}
		if img, err := e.backend.Capture(s.ID); err == nil && img != nil {
			win.Image = img
			e.cache.Put(pid, s.Title, img)
		} else if cached, ok := e.cache.Get(pid, s.Title); ok {
			win.Image = cached
		}
		windows = append(windows, win)
	}
	return windows
}

// fallbackImage fills in for a failed live capture: minimized windows get
// a placeholder bearing the app icon, visible ones get their previous
// thumbnail when one is cached.
func (e *Enumerator) fallbackImage(tw platform.TreeWindow, opts Options) *image.RGBA {
	if tw.Minimized {
		var icon *image.RGBA
		if ic, err := e.backend.AppIcon(tw.Handle); err == nil {
			icon = ic
		}
		return renderPlaceholder(icon, opts.PlaceholderWidth, opts.PlaceholderHeight, opts.PlaceholderBG)
	}
	if img, ok := e.cache.Get(tw.PID, tw.Title); ok {
		return img
	}
	return nil
}

// Activate unminimizes, raises and focuses a window.
func (e *Enumerator) Activate(win AppWindow) error {
	if win.Handle == 0 {
		return fmt.Errorf("window %q has no control handle", win.Title)
	}
	return e.backend.Activate(win.Handle)
}

// Close asks a window to close and forgets its thumbnail.
func (e *Enumerator) Close(win AppWindow) error {
	if win.Handle == 0 {
		return fmt.Errorf("window %q has no control handle", win.Title)
	}
	err := e.backend.Close(win.Handle)
	e.cache.Purge(win.PID, win.Title)
	return err
}

// Minimize toggles a window's minimized state.
func (e *Enumerator) Minimize(win AppWindow) error {
	if win.Handle == 0 {
		return fmt.Errorf("window %q has no control handle", win.Title)
	}
	return e.backend.SetMinimized(win.Handle, !win.Minimized)
}

// ToggleMaximize grows a window to fill the usable screen area, the
// bounds minus any reserved host chrome.
func (e *Enumerator) ToggleMaximize(win AppWindow) error {
	if win.Handle == 0 {
		return fmt.Errorf("window %q has no control handle", win.Title)
	}
	usable, err := e.backend.UsableBounds()
	if err != nil {
		return err
	}
	screen, err := e.backend.ScreenSize()
	if err != nil {
		return err
	}
	// Usable bounds arrive top-left; MoveResize speaks the tree
	// convention.
	return e.backend.MoveResize(win.Handle, geom.FlipRectY(usable, screen.Height))
}

// Terminate signals the owning process to exit, escalating after the
// grace period, and forgets every thumbnail it owned.
func (e *Enumerator) Terminate(win AppWindow) error {
	if win.PID <= 0 {
		return fmt.Errorf("window %q has no known owner process", win.Title)
	}
	err := e.backend.TerminateProcess(win.PID, e.options().TerminateGrace)
	e.cache.PurgePID(win.PID)
	return err
}
