// Package tray maintains the cached view of the taskbar icon strip that
// hover detection runs against.
package tray

import (
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
)

// minCellSpan is the smallest width or height an icon cell can have and
// still be hoverable. Separators and collapsed padding report slivers.
const minCellSpan = 2

// Registry caches the most recent successful read of the icon strip.
// Taskbars restart and briefly report nothing; a failed read keeps the
// previous snapshot so hover detection doesn't blank out with them.
type Registry struct {
	backend platform.Backend

	mu        sync.RWMutex
	icons     []platform.TrayIcon
	updatedAt time.Time
}

// NewRegistry creates an empty registry over the backend. Nothing is read
// until the first Refresh.
func NewRegistry(backend platform.Backend) *Registry {
	return &Registry{backend: backend}
}

// Refresh polls the icon strip once, dropping unlabeled cells and slivers.
// On error the previous snapshot stays in place and the error is returned
// for the caller to log.
func (r *Registry) Refresh() error {
	icons, err := r.backend.TrayIcons()
	if err != nil {
		return err
	}

	kept := make([]platform.TrayIcon, 0, len(icons))
	for _, icon := range icons {
		if strings.TrimSpace(icon.Label) == "" {
			continue
		}
		if icon.Rect.Width < minCellSpan || icon.Rect.Height < minCellSpan {
			continue
		}
		kept = append(kept, icon)
	}

	r.mu.Lock()
	r.icons = kept
	r.updatedAt = time.Now()
	r.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current icon cells in strip order.
func (r *Registry) Snapshot() []platform.TrayIcon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]platform.TrayIcon, len(r.icons))
	copy(out, r.icons)
	return out
}

// IconAt returns the first icon whose cell contains p, in strip order.
// Adjacent cells can touch but Contains treats right and bottom edges as
// exclusive, so a boundary point belongs to exactly one cell.
func (r *Registry) IconAt(p geom.Point) (platform.TrayIcon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, icon := range r.icons {
		if icon.Rect.Contains(p) {
			return icon, true
		}
	}
	return platform.TrayIcon{}, false
}

// UpdatedAt reports when the last successful refresh happened, zero before
// the first one.
func (r *Registry) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}
