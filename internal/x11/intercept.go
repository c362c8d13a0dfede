package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ClickJudge decides the fate of an intercepted pointer-down at the given
// native root coordinates. Returning true swallows the click before the
// grabbed window sees it. The judge runs on the X event loop goroutine
// while the server holds pointer processing frozen, so it must return
// immediately.
type ClickJudge func(x, y int) bool

// ClickGrab owns synchronous left-button grabs on a set of windows. A sync
// grab freezes pointer event processing on each press until AllowEvents
// releases it, which is what makes a pass-or-swallow decision possible.
type ClickGrab struct {
	conn  *Connection
	judge ClickJudge

	mu      sync.Mutex
	grabbed map[xproto.Window]struct{}
}

// NewClickGrab prepares a grab set over the connection. No window is
// grabbed until the first Update call.
func NewClickGrab(conn *Connection, judge ClickJudge) *ClickGrab {
	return &ClickGrab{
		conn:    conn,
		judge:   judge,
		grabbed: make(map[xproto.Window]struct{}),
	}
}

// Update reconciles the grab set against the given windows: new windows
// are grabbed, vanished ones released. Safe to call on every tray refresh.
func (g *ClickGrab) Update(windows []xproto.Window) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	want := make(map[xproto.Window]struct{}, len(windows))
	for _, win := range windows {
		want[win] = struct{}{}
	}

	for win := range g.grabbed {
		if _, ok := want[win]; ok {
			continue
		}
		xproto.UngrabButton(g.conn.XUtil.Conn(), xproto.ButtonIndex1, win, xproto.ModMaskAny)
		xevent.Detach(g.conn.XUtil, win)
		delete(g.grabbed, win)
	}

	var firstErr error
	for win := range want {
		if _, ok := g.grabbed[win]; ok {
			continue
		}
		if err := g.grabOne(win); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		g.grabbed[win] = struct{}{}
	}
	return firstErr
}

func (g *ClickGrab) grabOne(win xproto.Window) error {
	err := xproto.GrabButtonChecked(
		g.conn.XUtil.Conn(),
		true, // owner events: the taskbar's own event selection stays intact
		win,
		uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync,  // freeze the pointer until AllowEvents
		xproto.GrabModeAsync, // keyboard unaffected
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.ButtonIndex1,
		xproto.ModMaskAny,
	).Check()
	if err != nil {
		return fmt.Errorf("failed to grab button on window %d: %w", win, err)
	}

	xevent.ButtonPressFun(g.handlePress).Connect(g.conn.XUtil, win)
	return nil
}

// handlePress runs on the X event loop with the pointer frozen.
func (g *ClickGrab) handlePress(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	// Replay hands the press to the taskbar as if no grab existed. Async
	// resumes event processing without replaying, so the press vanishes.
	mode := byte(xproto.AllowReplayPointer)
	if g.judge != nil && g.judge(int(ev.RootX), int(ev.RootY)) {
		mode = xproto.AllowAsyncPointer
	}
	xproto.AllowEvents(xu.Conn(), mode, ev.Time)
}
