// Package hover turns raw pointer positions into icon hover transitions.
package hover

import (
	"sync"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
	"github.com/1broseidon/dockpeek/internal/tray"
)

// Hovered identifies the icon under the pointer. The zero value means the
// pointer is over no icon.
type Hovered struct {
	Label string
	Rect  geom.Rect
}

// None reports whether h describes the absence of a hovered icon.
func (h Hovered) None() bool {
	return h.Label == ""
}

// Tracker polls the pointer and publishes a transition whenever the
// hovered label changes. Identical consecutive samples are swallowed here;
// this is the only debounce in the pipeline, flicker control past this
// point belongs to the overlay grace period.
type Tracker struct {
	backend  platform.Backend
	registry *tray.Registry

	// OnHover receives every transition: a populated value when the
	// pointer settles on a labeled cell, the zero value when it leaves
	// the strip. Called from the polling goroutine.
	OnHover func(Hovered)

	mu      sync.Mutex
	current Hovered
}

// NewTracker creates a tracker over the backend and icon registry.
func NewTracker(backend platform.Backend, registry *tray.Registry) *Tracker {
	return &Tracker{backend: backend, registry: registry}
}

// Tick samples the pointer once. Pointer queries report top-left-origin
// coordinates while the strip cells use the bottom-left convention, so the
// sample is flipped before the containment test.
func (t *Tracker) Tick() error {
	p, err := t.backend.PointerPosition()
	if err != nil {
		return err
	}
	size, err := t.backend.ScreenSize()
	if err != nil {
		return err
	}

	var next Hovered
	if icon, ok := t.registry.IconAt(geom.FlipPointY(p, size.Height)); ok {
		next = Hovered{Label: icon.Label, Rect: icon.Rect}
	}

	t.mu.Lock()
	changed := next.Label != t.current.Label
	if changed {
		t.current = next
	}
	cb := t.OnHover
	t.mu.Unlock()

	if changed && cb != nil {
		cb(next)
	}
	return nil
}

// Current returns the most recently published hover value.
func (t *Tracker) Current() Hovered {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
