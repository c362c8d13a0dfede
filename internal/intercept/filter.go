// Package intercept implements click-to-hide: pointer-down events on the
// icon strip are judged before the host sees them, and a click on the
// foreground app's own icon hides that app instead of refocusing it.
package intercept

import (
	"log"
	"sync"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
	"github.com/1broseidon/dockpeek/internal/tray"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// State is the snapshot the filter judges against. The judge runs on the
// input-event delivery path with the pointer frozen, so it never queries
// the window system itself; the engine loop pushes fresh snapshots here.
type State struct {
	// Screen is the root size used to flip pointer coordinates into the
	// strip's convention.
	Screen geom.Size

	// Procs is the current process table for label resolution.
	Procs []platform.Process

	// ActivePID owns the focused window, 0 when nothing is focused.
	ActivePID int

	// Hidden marks pids whose windows are all minimized.
	Hidden map[int]bool
}

// Filter decides, per pointer-down on the strip, whether the host gets
// the event. Consuming it hides the clicked app; passing it through lets
// the host run its native focus-or-unhide handling. Either way a resolved
// click is reported so the preview can refresh once the dust settles.
type Filter struct {
	registry *tray.Registry
	resolver *windows.Resolver
	backend  platform.Backend

	// OnClick receives the clicked label for every resolved strip click.
	// Called from a fresh goroutine, never from the event path.
	OnClick func(label string)

	mu      sync.RWMutex
	enabled bool
	state   State
}

// NewFilter builds a filter over the registry and resolver. It starts
// with the given enabled state; SetEnabled flips it at runtime.
func NewFilter(registry *tray.Registry, resolver *windows.Resolver, backend platform.Backend, enabled bool) *Filter {
	return &Filter{
		registry: registry,
		resolver: resolver,
		backend:  backend,
		enabled:  enabled,
		state:    State{Hidden: map[int]bool{}},
	}
}

// SetEnabled toggles the filter. Disabled means every event passes.
func (f *Filter) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// Enabled reports the current toggle for status output.
func (f *Filter) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled
}

// UpdateState replaces the judged snapshot wholesale.
func (f *Filter) UpdateState(s State) {
	if s.Hidden == nil {
		s.Hidden = map[int]bool{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

// Judge is the synchronous verdict for one pointer-down at p (top-left
// origin screen coordinates). It reads snapshots only and defers the
// actual hide and the refresh signal to goroutines.
func (f *Filter) Judge(p geom.Point) platform.InterceptVerdict {
	f.mu.RLock()
	enabled := f.enabled
	state := f.state
	f.mu.RUnlock()

	if !enabled {
		return platform.VerdictPass
	}

	icon, ok := f.registry.IconAt(geom.FlipPointY(p, state.Screen.Height))
	if !ok {
		return platform.VerdictPass
	}
	proc, ok := f.resolver.ResolveProcess(icon.Label, state.Procs)
	if !ok {
		return platform.VerdictPass
	}

	verdict := platform.VerdictPass
	if !state.Hidden[proc.PID] && proc.PID == state.ActivePID {
		// Clicking the foreground app's own icon: swallow the refocus
		// and hide the app instead.
		verdict = platform.VerdictConsume
		f.markHidden(proc.PID)
		go f.hide(proc.PID)
	}

	if cb := f.OnClick; cb != nil {
		go cb(icon.Label)
	}
	return verdict
}

// markHidden records our own hide immediately so the very next click on
// the same icon passes through and unhides, without waiting for the next
// snapshot push. The map is replaced, not mutated: judges hold snapshot
// copies without the lock.
func (f *Filter) markHidden(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[int]bool, len(f.state.Hidden)+1)
	for p, hidden := range f.state.Hidden {
		next[p] = hidden
	}
	next[pid] = true
	f.state.Hidden = next
}

func (f *Filter) hide(pid int) {
	if err := f.backend.HideApp(pid); err != nil {
		log.Printf("Intercept: hide pid %d failed: %v", pid, err)
	}
}
