// Package hotkeys registers the daemon's global keyboard shortcuts.
package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/dockpeek/internal/platform"
)

// Previewer is the slice of the engine the hotkeys drive.
type Previewer interface {
	// HidePreview dismisses the preview immediately.
	HidePreview()

	// ToggleClickToHide flips the click filter and reports the new state.
	ToggleClickToHide() (bool, error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler registers global hotkeys on the root window. Callbacks fire on
// the X event goroutine.
type Handler struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	previewer Previewer
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. Backends without X11 internals
// yield a handler whose registrations fail.
func NewHandler(backend platform.Backend, previewer Previewer) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:        xu,
		root:      root,
		previewer: previewer,
	}
}

// RegisterHide binds the preview dismiss shortcut.
func (h *Handler) RegisterHide(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		log.Println("Hotkeys: hide preview")
		h.previewer.HidePreview()
	})
}

// RegisterClickToHideToggle binds the click-to-hide toggle shortcut.
func (h *Handler) RegisterClickToHideToggle(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		enabled, err := h.previewer.ToggleClickToHide()
		if err != nil {
			log.Printf("Hotkeys: click-to-hide toggle: %v", err)
			return
		}
		log.Printf("Hotkeys: click-to-hide now %v", enabled)
	})
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("backend does not expose hotkey registration")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of the lock-key state:
// every combination of CapsLock, NumLock and ScrollLock is ignored.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
