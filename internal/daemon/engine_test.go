package daemon

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/dockpeek/internal/config"
	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/overlay"
	"github.com/1broseidon/dockpeek/internal/platform"
)

// fakeBackend is a complete in-memory host: an icon strip, a process
// table, a window tree and capturable surfaces. The standard scenario is
// a 1920x1080 screen with a bottom taskbar showing Mail (thunderbird,
// one visible and one minimized window), Files (nautilus, fully
// minimized) and Firefox (one visible window). A chat process runs
// without a strip icon for alias tests.
type fakeBackend struct {
	mu        sync.Mutex
	screen    geom.Size
	usable    geom.Rect
	icons     []platform.TrayIcon
	pointer   geom.Point
	procs     []platform.Process
	activePID int
	tree      []platform.TreeWindow
	surfaces  map[int][]platform.SurfaceWindow
	captures  map[platform.CaptureID]*image.RGBA

	hidden     map[int]bool
	activated  []platform.WindowHandle
	closed     []platform.WindowHandle
	minimizes  []string
	terminated []int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		screen: geom.Size{Width: 1920, Height: 1080},
		usable: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
		icons: []platform.TrayIcon{
			{Label: "Mail", Rect: geom.Rect{X: 100, Y: 0, Width: 48, Height: 40}},
			{Label: "Files", Rect: geom.Rect{X: 148, Y: 0, Width: 48, Height: 40}},
			{Label: "Firefox", Rect: geom.Rect{X: 196, Y: 0, Width: 48, Height: 40}},
		},
		procs: []platform.Process{
			{PID: 101, Name: "thunderbird"},
			{PID: 202, Name: "nautilus"},
			{PID: 303, Name: "firefox"},
			{PID: 404, Name: "weechat"},
		},
		activePID: 101,
		tree: []platform.TreeWindow{
			{Handle: 0x1001, Title: "Inbox", Bounds: geom.Rect{X: 100, Y: 200, Width: 800, Height: 600}, PID: 101},
			{Handle: 0x1002, Title: "Drafts", Bounds: geom.Rect{X: 300, Y: 300, Width: 640, Height: 480}, PID: 101, Minimized: true},
			{Handle: 0x2001, Title: "Home", Bounds: geom.Rect{X: 50, Y: 100, Width: 900, Height: 700}, PID: 202, Minimized: true},
			{Handle: 0x3001, Title: "Mozilla Firefox", Bounds: geom.Rect{X: 0, Y: 100, Width: 1200, Height: 800}, PID: 303},
			{Handle: 0x4001, Title: "weechat 4.1", Bounds: geom.Rect{X: 400, Y: 400, Width: 700, Height: 500}, PID: 404},
		},
		surfaces: map[int][]platform.SurfaceWindow{
			101: {{ID: 0xC001, Title: "Inbox", Bounds: geom.Rect{X: 100, Y: 280, Width: 800, Height: 600}}},
			303: {{ID: 0xC003, Title: "Mozilla Firefox", Bounds: geom.Rect{X: 0, Y: 180, Width: 1200, Height: 800}}},
		},
		captures: map[platform.CaptureID]*image.RGBA{
			0xC001: image.NewRGBA(image.Rect(0, 0, 800, 600)),
			0xC003: image.NewRGBA(image.Rect(0, 0, 1200, 800)),
		},
		hidden: map[int]bool{},
	}
}

func (f *fakeBackend) ScreenSize() (geom.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen, nil
}

func (f *fakeBackend) UsableBounds() (geom.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usable, nil
}

func (f *fakeBackend) TrayIcons() ([]platform.TrayIcon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.TrayIcon(nil), f.icons...), nil
}

func (f *fakeBackend) PointerPosition() (geom.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pointer, nil
}

func (f *fakeBackend) Processes() ([]platform.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Process(nil), f.procs...), nil
}

func (f *fakeBackend) ActivePID() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activePID, nil
}

func (f *fakeBackend) TreeWindows(pid int) ([]platform.TreeWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.TreeWindow, 0, len(f.tree))
	for _, w := range f.tree {
		if pid == 0 || w.PID == pid {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeBackend) SurfaceWindows(pid int) ([]platform.SurfaceWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.SurfaceWindow(nil), f.surfaces[pid]...), nil
}

func (f *fakeBackend) Capture(id platform.CaptureID) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if img, ok := f.captures[id]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("surface %d not capturable", id)
}

func (f *fakeBackend) AppIcon(h platform.WindowHandle) (*image.RGBA, error) {
	return nil, fmt.Errorf("no icon property")
}

func (f *fakeBackend) Activate(h platform.WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, h)
	return nil
}

func (f *fakeBackend) Close(h platform.WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, h)
	return nil
}

func (f *fakeBackend) SetMinimized(h platform.WindowHandle, minimized bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimizes = append(f.minimizes, fmt.Sprintf("%#x:%t", uint32(h), minimized))
	return nil
}

func (f *fakeBackend) MoveResize(h platform.WindowHandle, r geom.Rect) error {
	return nil
}

// HideApp mimics the host: every window of the process iconifies.
func (f *fakeBackend) HideApp(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[pid] = true
	for i := range f.tree {
		if f.tree[i].PID == pid {
			f.tree[i].Minimized = true
		}
	}
	return nil
}

func (f *fakeBackend) TerminateProcess(pid int, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	return nil
}

func (f *fakeBackend) setPointer(p geom.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pointer = p
}

func (f *fakeBackend) setActivePID(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activePID = pid
}

func (f *fakeBackend) hiddenPIDs() map[int]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]bool, len(f.hidden))
	for pid := range f.hidden {
		out[pid] = true
	}
	return out
}

func (f *fakeBackend) activatedHandles() []platform.WindowHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.WindowHandle(nil), f.activated...)
}

// interceptBackend adds pointer interception so the click filter installs.
type interceptBackend struct {
	*fakeBackend

	imu       sync.Mutex
	fn        func(geom.Point) platform.InterceptVerdict
	refreshes int
}

func newInterceptBackend() *interceptBackend {
	return &interceptBackend{fakeBackend: newFakeBackend()}
}

func (b *interceptBackend) InterceptPointerDown(fn func(geom.Point) platform.InterceptVerdict) error {
	b.imu.Lock()
	defer b.imu.Unlock()
	b.fn = fn
	return nil
}

func (b *interceptBackend) RefreshIntercept() error {
	b.imu.Lock()
	defer b.imu.Unlock()
	b.refreshes++
	return nil
}

// click delivers one pointer-down through the installed filter, exactly
// as the host event path would.
func (b *interceptBackend) click(p geom.Point) platform.InterceptVerdict {
	b.imu.Lock()
	fn := b.fn
	b.imu.Unlock()
	if fn == nil {
		return platform.VerdictPass
	}
	return fn(p)
}

// fakeSurface reports whatever visibility the test sets; it never shows
// on its own, so grace polls resolve on the first tick.
type fakeSurface struct {
	mu      sync.Mutex
	visible bool
	bounds  geom.Rect
	shown   bool
}

func (f *fakeSurface) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

func (f *fakeSurface) Bounds() (geom.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bounds, f.shown
}

// quickConfig shortens the timing knobs so timer-driven transitions land
// within test deadlines.
func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.GracePollMS = 20
	cfg.SettleMS = config.SettleMS{Minimize: 25, Close: 25, Activate: 25, Maximize: 25, Terminate: 25}
	return cfg
}

func newTestEngine(t *testing.T, backend platform.Backend, cfg *config.Config, configPath string) (*Engine, *fakeSurface) {
	t.Helper()
	surf := &fakeSurface{}
	eng, err := New(Options{
		Config:     cfg,
		ConfigPath: configPath,
		Backend:    backend,
		Surface:    surf,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(eng.Close)
	return eng, surf
}

func waitEvent(t *testing.T, events <-chan overlay.Event, want overlay.EventType) overlay.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed waiting for %v", want)
			}
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v event", want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHoverToPreviewEndToEnd(t *testing.T) {
	b := newFakeBackend()
	eng, _ := newTestEngine(t, b, quickConfig(), "")
	events := eng.Events()
	eng.RefreshNow()

	// Pointer over the Mail cell, in the display's top-left convention.
	b.setPointer(geom.Point{X: 110, Y: 1070})
	eng.hoverPass()

	ev := waitEvent(t, events, overlay.EventShow)
	if ev.Target != "Mail" {
		t.Fatalf("show target = %q, want Mail", ev.Target)
	}
	if len(ev.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(ev.Windows))
	}
	if ev.Windows[0].Title != "Inbox" || ev.Windows[0].Image == nil {
		t.Fatalf("first window = %q (image %v), want captured Inbox", ev.Windows[0].Title, ev.Windows[0].Image != nil)
	}
	if !ev.Windows[1].Minimized || ev.Windows[1].Image == nil {
		t.Fatalf("second window should be the minimized Drafts placeholder, got %+v", ev.Windows[1])
	}

	wantIcon := geom.Rect{X: 100, Y: 1040, Width: 48, Height: 40}
	if ev.Placement.IconRect != wantIcon {
		t.Fatalf("placement icon rect = %+v, want %+v", ev.Placement.IconRect, wantIcon)
	}
	if ev.Placement.MaxWidth != 1152 {
		t.Fatalf("placement max width = %d, want 1152", ev.Placement.MaxWidth)
	}

	st := eng.Status()
	if st.Phase != "showing" || st.Target != "Mail" || st.WindowCount != 2 {
		t.Fatalf("status = %+v, want showing Mail with 2 windows", st)
	}
}

func TestHoverLeaveHidesAfterGrace(t *testing.T) {
	b := newFakeBackend()
	eng, _ := newTestEngine(t, b, quickConfig(), "")
	events := eng.Events()
	eng.RefreshNow()

	b.setPointer(geom.Point{X: 110, Y: 1070})
	eng.hoverPass()
	waitEvent(t, events, overlay.EventShow)

	// Off the strip entirely; the surface fake never reports visible, so
	// the first grace poll concludes the pointer left.
	b.setPointer(geom.Point{X: 500, Y: 500})
	eng.hoverPass()

	waitEvent(t, events, overlay.EventHide)
	if st := eng.Status(); st.Phase != "idle" || st.Target != "" {
		t.Fatalf("status after leave = %+v, want idle", st)
	}
}

func TestStatusIconsAndWindows(t *testing.T) {
	b := newFakeBackend()
	eng, _ := newTestEngine(t, b, quickConfig(), "")
	eng.RefreshNow()

	st := eng.Status()
	if st.IconCount != 3 {
		t.Fatalf("icon count = %d, want 3", st.IconCount)
	}
	if !st.ClickToHide {
		t.Fatal("click-to-hide should default on")
	}
	if st.CachedImages != 0 {
		t.Fatalf("cached images = %d before any enumeration", st.CachedImages)
	}

	icons := eng.Icons()
	if len(icons) != 3 || icons[0].Label != "Mail" || icons[0].Y != 0 {
		t.Fatalf("icons = %+v, want strip order starting at Mail on the bottom edge", icons)
	}

	wins := eng.Windows("Mail")
	if len(wins) != 2 {
		t.Fatalf("got %d windows, want 2", len(wins))
	}
	if wins[0].ID != 0 || wins[0].Title != "Inbox" || !wins[0].HasImage || wins[0].Handle != 0x1001 {
		t.Fatalf("first window = %+v", wins[0])
	}
	if wins[1].ID != 1 || !wins[1].Minimized || !wins[1].HasImage {
		t.Fatalf("second window = %+v", wins[1])
	}

	if got := eng.Windows("Ghost"); len(got) != 0 {
		t.Fatalf("unresolvable label listed %d windows", len(got))
	}

	if st := eng.Status(); st.CachedImages != 1 {
		t.Fatalf("cached images = %d after enumerating Mail, want 1", st.CachedImages)
	}
}

func TestShowAndHidePreviewCommands(t *testing.T) {
	b := newFakeBackend()
	eng, _ := newTestEngine(t, b, quickConfig(), "")
	events := eng.Events()
	eng.RefreshNow()

	// Lookup is case-insensitive; the canonical label still wins.
	if err := eng.ShowPreview("mail"); err != nil {
		t.Fatalf("ShowPreview: %v", err)
	}
	ev := waitEvent(t, events, overlay.EventShow)
	if ev.Target != "Mail" {
		t.Fatalf("show target = %q, want Mail", ev.Target)
	}

	err := eng.ShowPreview("Ghost")
	if err == nil || !strings.Contains(err.Error(), "no taskbar icon") {
		t.Fatalf("ShowPreview(Ghost) = %v, want icon lookup error", err)
	}

	eng.HidePreview()
	waitEvent(t, events, overlay.EventHide)
}

func TestWindowActionDispatch(t *testing.T) {
	b := newFakeBackend()
	// Default settle delays keep the controller observably locked.
	eng, _ := newTestEngine(t, b, config.DefaultConfig(), "")
	eng.RefreshNow()

	if err := eng.WindowAction("activate", "Mail", 0); err != nil {
		t.Fatalf("WindowAction: %v", err)
	}
	got := b.activatedHandles()
	if len(got) != 1 || got[0] != 0x1001 {
		t.Fatalf("activated handles = %v, want [0x1001]", got)
	}
	if st := eng.Status(); st.Phase != "locked" {
		t.Fatalf("phase after action = %q, want locked", st.Phase)
	}

	err := eng.WindowAction("shred", "Mail", 0)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("unknown action error = %v", err)
	}

	err = eng.WindowAction("close", "Mail", 99)
	if err == nil || !strings.Contains(err.Error(), "no window 99") {
		t.Fatalf("missing window error = %v", err)
	}
}

func TestSetClickToHidePersists(t *testing.T) {
	b := newFakeBackend()
	path := filepath.Join(t.TempDir(), "config.yaml")
	eng, _ := newTestEngine(t, b, quickConfig(), path)

	if err := eng.SetClickToHide(false); err != nil {
		t.Fatalf("SetClickToHide: %v", err)
	}
	if eng.filter.Enabled() {
		t.Fatal("filter should be disabled")
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload persisted config: %v", err)
	}
	if res.Config.ClickToHideEnabled() {
		t.Fatal("persisted config should have click_to_hide false")
	}

	on, err := eng.ToggleClickToHide()
	if err != nil || !on {
		t.Fatalf("ToggleClickToHide = (%v, %v), want (true, nil)", on, err)
	}
	res, err = config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload persisted config: %v", err)
	}
	if !res.Config.ClickToHideEnabled() {
		t.Fatal("persisted config should have click_to_hide true again")
	}
}

func TestInterceptVerdictsEndToEnd(t *testing.T) {
	ib := newInterceptBackend()
	eng, _ := newTestEngine(t, ib, quickConfig(), "")
	eng.installIntercept()
	eng.RefreshNow()

	// The pointer rests on the Mail cell, as it does under a real click.
	ib.setPointer(geom.Point{X: 110, Y: 1070})
	eng.hoverPass()

	// Mail owns the focused window: consume and hide.
	if v := ib.click(geom.Point{X: 110, Y: 1070}); v != platform.VerdictConsume {
		t.Fatalf("foreground click verdict = %v, want consume", v)
	}
	waitFor(t, func() bool { return ib.hiddenPIDs()[101] }, "thunderbird was never hidden")

	// Focus moved on and thunderbird is now all-minimized; refresh the
	// snapshot the judge reads.
	ib.setActivePID(303)
	eng.trayPass()

	// Files is fully minimized: pass so the host's native unhide runs.
	if v := ib.click(geom.Point{X: 160, Y: 1070}); v != platform.VerdictPass {
		t.Fatalf("hidden app click verdict = %v, want pass", v)
	}
	if ib.hiddenPIDs()[202] {
		t.Fatal("a pass verdict must not hide the app")
	}

	// Firefox now owns focus: consume and hide.
	if v := ib.click(geom.Point{X: 210, Y: 1070}); v != platform.VerdictConsume {
		t.Fatalf("focused firefox click verdict = %v, want consume", v)
	}

	// Clicks landing between cells are none of our business.
	if v := ib.click(geom.Point{X: 1000, Y: 1070}); v != platform.VerdictPass {
		t.Fatalf("off-strip click verdict = %v, want pass", v)
	}

	eng.filter.SetEnabled(false)
	if v := ib.click(geom.Point{X: 110, Y: 1070}); v != platform.VerdictPass {
		t.Fatalf("disabled filter verdict = %v, want pass", v)
	}
}

func TestReloadAppliesConfig(t *testing.T) {
	b := newFakeBackend()
	path := filepath.Join(t.TempDir(), "config.yaml")
	lv := new(slog.LevelVar)

	surf := &fakeSurface{}
	eng, err := New(Options{
		Config:     quickConfig(),
		ConfigPath: path,
		Backend:    b,
		Surface:    surf,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: lv})),
		Level:      lv,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(eng.Close)
	eng.RefreshNow()

	// Without the alias nothing links the label to the chat process.
	if got := eng.Windows("Team Chat"); len(got) != 0 {
		t.Fatalf("label resolved before alias existed: %d windows", len(got))
	}

	applied := make(chan *config.Config, 1)
	eng.OnReload = func(c *config.Config) {
		select {
		case applied <- c:
		default:
		}
	}

	yaml := "log_level: debug\n" +
		"tray_refresh_ms: 500\n" +
		"click_to_hide: false\n" +
		"aliases:\n" +
		"  Team Chat: weechat\n" +
		"preview:\n" +
		"  thumbnail_width: 300\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := eng.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	select {
	case cfg := <-applied:
		if cfg.Preview.ThumbnailWidth != 300 {
			t.Fatalf("applied thumbnail width = %d, want 300", cfg.Preview.ThumbnailWidth)
		}
	default:
		t.Fatal("OnReload was not called")
	}
	if eng.filter.Enabled() {
		t.Fatal("reload should apply click_to_hide false")
	}
	if lv.Level() != slog.LevelDebug {
		t.Fatalf("log level = %v, want debug", lv.Level())
	}
	if got := eng.Windows("Team Chat"); len(got) != 1 || got[0].Title != "weechat 4.1" {
		t.Fatalf("alias did not take effect: %+v", got)
	}

	// A config that fails validation leaves the running one in place.
	if err := os.WriteFile(path, []byte("hover_poll_ms: 5\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := eng.Reload(); err == nil {
		t.Fatal("Reload should fail on invalid config")
	}
	eng.mu.RLock()
	tray := eng.cfg.TrayRefreshMS
	eng.mu.RUnlock()
	if tray != 500 {
		t.Fatalf("failed reload changed config: tray_refresh_ms = %d", tray)
	}
}

func TestRunLoopPollsAndStops(t *testing.T) {
	b := newFakeBackend()
	cfg := quickConfig()
	cfg.TrayRefreshMS = 50
	cfg.HoverPollMS = 10
	eng, _ := newTestEngine(t, b, cfg, "")
	events := eng.Events()

	b.setPointer(geom.Point{X: 110, Y: 1070})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	ev := waitEvent(t, events, overlay.EventShow)
	if ev.Target != "Mail" {
		t.Fatalf("show target = %q, want Mail", ev.Target)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}

	// The stream closes with the engine.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event stream still open after shutdown")
		}
	}
}
