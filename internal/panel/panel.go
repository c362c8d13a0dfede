// Package panel is the on-screen preview surface: one override-redirect
// X11 window whose content is composed off screen and painted wholesale.
package panel

import (
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/overlay"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// Config tunes the panel's rendering.
type Config struct {
	// ThumbWidth is the natural card width before max-width clamping.
	ThumbWidth int

	// Background fills the area between cards.
	Background color.RGBA
}

func (c Config) withDefaults() Config {
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = 240
	}
	if c.Background.A == 0 {
		c.Background = color.RGBA{0x2e, 0x34, 0x40, 0xff}
	}
	return c
}

// Panel presents the hovered app's window cards. It consumes the
// controller's event stream on its own goroutine and answers the
// controller's grace-poll geometry queries through Visible and Bounds.
type Panel struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	cfg  Config

	// OnAction receives clicks resolved to a window control. Dispatched
	// on a fresh goroutine, never on the X event goroutine.
	OnAction func(action overlay.Action, win windows.AppWindow)

	mu      sync.Mutex
	win     xproto.Window
	created bool
	mapped  bool
	bounds  geom.Rect
	shown   bool
	regions []cardRegion
	ximg    *xgraphics.Image
}

var _ overlay.Surface = (*Panel)(nil)

// NewPanel builds the surface. The window itself is created lazily on the
// first show.
func NewPanel(xu *xgbutil.XUtil, root xproto.Window, cfg Config) *Panel {
	return &Panel{xu: xu, root: root, cfg: cfg.withDefaults()}
}

// UpdateConfig restyles future paints. A strip already on screen keeps its
// look until the next present.
func (p *Panel) UpdateConfig(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg.withDefaults()
}

// Run consumes controller events until the stream closes.
func (p *Panel) Run(events <-chan overlay.Event) {
	for ev := range events {
		switch ev.Type {
		case overlay.EventShow, overlay.EventUpdate:
			p.present(ev)
		case overlay.EventHide:
			p.hide()
		}
	}
}

// Visible reports whether the panel window is currently mapped.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mapped
}

// Bounds returns the panel rectangle in top-left screen coordinates,
// ok=false until the panel has been shown once.
func (p *Panel) Bounds() (geom.Rect, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bounds, p.shown
}

// Close hides and destroys the panel window.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.created {
		return
	}
	if p.ximg != nil {
		p.ximg.Destroy()
		p.ximg = nil
	}
	xevent.Detach(p.xu, p.win)
	xproto.DestroyWindow(p.xu.Conn(), p.win)
	p.win = 0
	p.created = false
	p.mapped = false
}

// present composes the card strip, positions the window per the placement
// and paints. Show and update take the same path; the content size can
// change whenever the window list does.
func (p *Panel) present(ev overlay.Event) {
	p.mu.Lock()
	cfg := p.cfg
	p.mu.Unlock()

	img, regions := compose(ev.Windows, cfg.ThumbWidth, ev.Placement.MaxWidth, cfg.Background)
	size := geom.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	origin := ev.Placement.Origin(size)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureWindowLocked(); err != nil {
		log.Printf("Panel: create window: %v", err)
		return
	}

	rect := geom.Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
	p.configureLocked(rect)
	p.paintLocked(img)
	if !p.mapped {
		xproto.MapWindow(p.xu.Conn(), p.win)
		p.mapped = true
	}
	p.bounds = rect
	p.shown = true
	p.regions = regions
}

// hide unmaps the window but keeps it for the next show.
func (p *Panel) hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.created || !p.mapped {
		return
	}
	xproto.UnmapWindow(p.xu.Conn(), p.win)
	p.mapped = false
}

func (p *Panel) ensureWindowLocked() error {
	if p.created {
		return nil
	}

	conn := p.xu.Conn()
	screen := p.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// Override-redirect keeps the window manager's hands off the panel.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		p.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		// Value list order follows the bit positions of the mask (low
		// to high): back_pixel, override_redirect, event_mask.
		[]uint32{0, 1, uint32(xproto.EventMaskButtonPress)},
	).Check()
	if err != nil {
		return err
	}

	xevent.ButtonPressFun(p.onButtonPress).Connect(p.xu, wid)

	p.win = wid
	p.created = true
	return nil
}

func (p *Panel) configureLocked(rect geom.Rect) {
	xproto.ConfigureWindow(
		p.xu.Conn(),
		p.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(rect.X),
			uint32(rect.Y),
			uint32(rect.Width),
			uint32(rect.Height),
			xproto.StackModeAbove,
		},
	)
}

func (p *Panel) paintLocked(img *image.RGBA) {
	if p.ximg != nil {
		p.ximg.Destroy()
		p.ximg = nil
	}

	ximg := xgraphics.NewConvert(p.xu, img)
	if err := ximg.XSurfaceSet(p.win); err != nil {
		log.Printf("Panel: set surface: %v", err)
		return
	}
	ximg.XDraw()
	ximg.XPaint(p.win)
	p.ximg = ximg
}

func (p *Panel) onButtonPress(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	p.mu.Lock()
	regions := p.regions
	p.mu.Unlock()

	action, win, ok := hitTest(regions, geom.Point{X: int(ev.EventX), Y: int(ev.EventY)})
	if !ok {
		return
	}
	if cb := p.OnAction; cb != nil {
		// Controls can block (terminate waits on the process); never
		// stall event delivery.
		go cb(action, win)
	}
}
