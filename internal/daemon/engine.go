// Package daemon runs the dockpeek engine: the poll loops that keep the
// icon strip, hover state and click filter fresh, and the glue between
// the preview pipeline's parts. One Engine instance backs the daemon
// process; the IPC server drives it for remote control.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/dockpeek/internal/config"
	"github.com/1broseidon/dockpeek/internal/hover"
	"github.com/1broseidon/dockpeek/internal/intercept"
	"github.com/1broseidon/dockpeek/internal/ipc"
	"github.com/1broseidon/dockpeek/internal/overlay"
	"github.com/1broseidon/dockpeek/internal/platform"
	"github.com/1broseidon/dockpeek/internal/tray"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// Options configures engine construction.
type Options struct {
	// Config is the effective configuration; nil falls back to defaults.
	Config *config.Config

	// ConfigPath pins reloads and persistence to an explicit file. Empty
	// means the default path under the user config directory.
	ConfigPath string

	// Backend is the window system the engine polls and controls.
	Backend platform.Backend

	// Surface is the preview panel the overlay controller queries for
	// visibility and bounds during grace polling.
	Surface overlay.Surface

	// Logger receives engine logs; nil builds a stderr text logger.
	Logger *slog.Logger

	// Level, when set, is retuned on config reload so log_level changes
	// take effect without a restart.
	Level *slog.LevelVar
}

// Engine owns the preview pipeline. Run drives two tickers: a slow one
// refreshing the icon strip and the click filter's snapshot, and a fast
// one polling the pointer for hover transitions. Everything else reacts
// to those polls through callbacks.
type Engine struct {
	backend    platform.Backend
	registry   *tray.Registry
	resolver   *windows.Resolver
	cache      *windows.ImageCache
	enumerator *windows.Enumerator
	tracker    *hover.Tracker
	controller *overlay.Controller
	filter     *intercept.Filter
	logger     *slog.Logger
	level      *slog.LevelVar
	configPath string
	startTime  time.Time

	// OnReload observes every applied config swap. The command layer uses
	// it to restyle the panel, which the engine only knows as a Surface.
	OnReload func(*config.Config)

	mu       sync.RWMutex
	cfg      *config.Config
	reloaded chan struct{}
}

var _ ipc.Engine = (*Engine)(nil)

// New wires the pipeline: registry, hover tracker, resolver, thumbnail
// cache, enumerator, overlay controller and click filter, with hover
// transitions and strip clicks routed into the controller.
func New(opts Options) (*Engine, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if opts.Surface == nil {
		return nil, fmt.Errorf("surface is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: LogLevel(cfg.LogLevel),
		}))
	}

	registry := tray.NewRegistry(opts.Backend)
	resolver := windows.NewResolver(cfg.Aliases)
	cache := windows.NewImageCache(cfg.CacheCapacity)
	enumerator := windows.NewEnumerator(opts.Backend, resolver, cache, enumeratorOptions(cfg))
	controller := overlay.NewController(opts.Backend, enumerator, opts.Surface, controllerConfig(cfg))

	tracker := hover.NewTracker(opts.Backend, registry)
	tracker.OnHover = controller.HandleHover

	filter := intercept.NewFilter(registry, resolver, opts.Backend, cfg.ClickToHideEnabled())
	filter.OnClick = controller.SignalClick

	return &Engine{
		backend:    opts.Backend,
		registry:   registry,
		resolver:   resolver,
		cache:      cache,
		enumerator: enumerator,
		tracker:    tracker,
		controller: controller,
		filter:     filter,
		logger:     logger,
		level:      opts.Level,
		configPath: opts.ConfigPath,
		startTime:  time.Now(),
		cfg:        cfg,
		reloaded:   make(chan struct{}, 1),
	}, nil
}

// LogLevel maps a config log_level value onto a slog level.
func LogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Events exposes the overlay event stream for the surface to consume.
// Closed when the engine shuts down.
func (e *Engine) Events() <-chan overlay.Event {
	return e.controller.Events()
}

// Do runs one preview control action. The panel's card click dispatch
// lands here.
func (e *Engine) Do(action overlay.Action, win windows.AppWindow) error {
	return e.controller.Do(action, win)
}

// Run polls until ctx is cancelled. The icon strip and the click filter's
// snapshot refresh on the slow ticker, the pointer on the fast one.
func (e *Engine) Run(ctx context.Context) {
	e.mu.RLock()
	trayEvery := e.cfg.TrayRefreshInterval()
	hoverEvery := e.cfg.HoverPollInterval()
	e.mu.RUnlock()

	e.logger.Info("engine started", "tray_refresh", trayEvery, "hover_poll", hoverEvery)

	e.installIntercept()
	e.RefreshNow()

	trayTicker := time.NewTicker(trayEvery)
	defer trayTicker.Stop()
	hoverTicker := time.NewTicker(hoverEvery)
	defer hoverTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			e.controller.Stop()
			return
		case <-trayTicker.C:
			e.trayPass()
		case <-hoverTicker.C:
			e.hoverPass()
		case <-e.reloaded:
			e.mu.RLock()
			trayTicker.Reset(e.cfg.TrayRefreshInterval())
			hoverTicker.Reset(e.cfg.HoverPollInterval())
			e.mu.RUnlock()
		}
	}
}

// Close releases the overlay pipeline and its event stream. Run calls it
// on cancellation; standalone users call it directly.
func (e *Engine) Close() {
	e.controller.Stop()
}

// RefreshNow runs one immediate strip refresh outside the ticker cadence,
// used at startup so the first hover doesn't race an empty registry.
func (e *Engine) RefreshNow() {
	e.trayPass()
}

// installIntercept hooks the click filter into the backend when the
// backend can filter pointer events at all.
func (e *Engine) installIntercept() {
	ic, ok := e.backend.(platform.PointerInterceptor)
	if !ok {
		e.logger.Info("backend cannot intercept pointer events; click-to-hide inactive")
		return
	}
	if err := ic.InterceptPointerDown(e.filter.Judge); err != nil {
		e.logger.Warn("click-to-hide unavailable", "error", err)
	}
}

// trayPass is one slow-cadence refresh. A panic here must not take the
// poll loop down with it.
func (e *Engine) trayPass() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tray pass panic recovered", "panic", r)
		}
	}()

	if err := e.registry.Refresh(); err != nil {
		// Keep the previous snapshot; taskbars restart and blink out.
		e.logger.Warn("tray refresh failed", "error", err)
	}
	if ic, ok := e.backend.(platform.PointerInterceptor); ok {
		if err := ic.RefreshIntercept(); err != nil {
			e.logger.Debug("intercept refresh failed", "error", err)
		}
	}
	e.refreshFilterState()
}

func (e *Engine) hoverPass() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("hover pass panic recovered", "panic", r)
		}
	}()

	if err := e.tracker.Tick(); err != nil {
		e.logger.Debug("pointer poll failed", "error", err)
	}
}

// refreshFilterState pushes a fresh judgment snapshot into the click
// filter. The judge runs synchronously on the input path, so everything
// it needs is gathered here, off that path.
func (e *Engine) refreshFilterState() {
	screen, err := e.backend.ScreenSize()
	if err != nil {
		e.logger.Debug("screen size query failed", "error", err)
		return
	}
	procs, err := e.backend.Processes()
	if err != nil {
		e.logger.Debug("process listing failed", "error", err)
		return
	}
	activePID, err := e.backend.ActivePID()
	if err != nil {
		activePID = 0
	}

	hidden := map[int]bool{}
	if tree, err := e.backend.TreeWindows(0); err == nil {
		total := map[int]int{}
		minimized := map[int]int{}
		for _, w := range tree {
			if w.PID <= 0 {
				continue
			}
			total[w.PID]++
			if w.Minimized {
				minimized[w.PID]++
			}
		}
		for pid, n := range total {
			if minimized[pid] == n {
				hidden[pid] = true
			}
		}
	}

	e.filter.UpdateState(intercept.State{
		Screen:    screen,
		Procs:     procs,
		ActivePID: activePID,
		Hidden:    hidden,
	})
}

// Status assembles the GET_STATUS payload.
func (e *Engine) Status() ipc.StatusData {
	st := e.controller.Status()
	return ipc.StatusData{
		Phase:         st.Phase.String(),
		Target:        st.Target,
		WindowCount:   st.WindowCount,
		Visible:       st.Visible,
		IconCount:     len(e.registry.Snapshot()),
		ClickToHide:   e.filter.Enabled(),
		CachedImages:  e.cache.Len(),
		UptimeSeconds: int64(time.Since(e.startTime).Seconds()),
	}
}

// Icons lists the current strip snapshot.
func (e *Engine) Icons() []ipc.IconInfo {
	icons := e.registry.Snapshot()
	out := make([]ipc.IconInfo, len(icons))
	for i, icon := range icons {
		out[i] = ipc.IconInfo{
			Label:  icon.Label,
			X:      icon.Rect.X,
			Y:      icon.Rect.Y,
			Width:  icon.Rect.Width,
			Height: icon.Rect.Height,
		}
	}
	return out
}

// Windows enumerates the preview list for a label on demand.
func (e *Engine) Windows(label string) []ipc.WindowInfo {
	wins := e.enumerator.Enumerate(label)
	out := make([]ipc.WindowInfo, len(wins))
	for i, w := range wins {
		out[i] = ipc.WindowInfo{
			ID:        w.ID,
			Title:     w.Title,
			X:         w.Bounds.X,
			Y:         w.Bounds.Y,
			Width:     w.Bounds.Width,
			Height:    w.Bounds.Height,
			PID:       w.PID,
			Minimized: w.Minimized,
			Handle:    uint32(w.Handle),
			HasImage:  w.Image != nil,
		}
	}
	return out
}

// ShowPreview forces the preview open for a labeled icon, as if hovered.
func (e *Engine) ShowPreview(label string) error {
	icon, ok := e.lookupIcon(label)
	if !ok {
		return fmt.Errorf("no taskbar icon labeled %q", label)
	}
	e.controller.ShowFor(icon.Label, icon.Rect)
	return nil
}

func (e *Engine) lookupIcon(label string) (platform.TrayIcon, bool) {
	icons := e.registry.Snapshot()
	for _, icon := range icons {
		if icon.Label == label {
			return icon, true
		}
	}
	lower := strings.ToLower(label)
	for _, icon := range icons {
		if strings.ToLower(icon.Label) == lower {
			return icon, true
		}
	}
	return platform.TrayIcon{}, false
}

// HidePreview dismisses whatever is showing.
func (e *Engine) HidePreview() {
	e.controller.Dismiss()
}

// SetClickToHide flips the click filter and persists the toggle so it
// survives restarts. The runtime flip sticks even when persistence fails.
func (e *Engine) SetClickToHide(enabled bool) error {
	e.filter.SetEnabled(enabled)

	e.mu.Lock()
	e.cfg.SetClickToHide(enabled)
	err := e.saveConfigLocked()
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("toggle applied but not persisted: %w", err)
	}
	return nil
}

// ToggleClickToHide flips the filter to the opposite state and reports
// the new one. Bound to the toggle hotkey.
func (e *Engine) ToggleClickToHide() (bool, error) {
	next := !e.filter.Enabled()
	return next, e.SetClickToHide(next)
}

func (e *Engine) saveConfigLocked() error {
	if e.configPath != "" {
		return e.cfg.SaveTo(e.configPath)
	}
	return e.cfg.Save()
}

// WindowAction runs a control action against one window of a labeled app.
// The window list is enumerated fresh and matched by ordinal, so the id
// should come from a recent LIST_WINDOWS of the same label.
func (e *Engine) WindowAction(action string, label string, windowID int) error {
	act := overlay.Action(action)
	if !act.Valid() {
		return fmt.Errorf("unknown action %q", action)
	}
	for _, win := range e.enumerator.Enumerate(label) {
		if win.ID == windowID {
			return e.controller.Do(act, win)
		}
	}
	return fmt.Errorf("no window %d for %q", windowID, label)
}

// Reload re-reads the config file and applies it: aliases, matching
// tolerances, timing, appearance and the click-to-hide default. Poll
// intervals retune on the next loop iteration.
func (e *Engine) Reload() error {
	var (
		cfg *config.Config
		err error
	)
	if e.configPath != "" {
		var res *config.LoadResult
		res, err = config.LoadFromPath(e.configPath)
		if res != nil {
			cfg = res.Config
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	e.applyConfig(cfg)
	return nil
}

func (e *Engine) applyConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()

	e.resolver.UpdateAliases(cfg.Aliases)
	e.enumerator.UpdateOptions(enumeratorOptions(cfg))
	e.controller.UpdateConfig(controllerConfig(cfg))
	e.filter.SetEnabled(cfg.ClickToHideEnabled())
	if e.level != nil {
		e.level.Set(LogLevel(cfg.LogLevel))
	}

	select {
	case e.reloaded <- struct{}{}:
	default:
	}

	if cb := e.OnReload; cb != nil {
		cb(cfg)
	}

	e.logger.Info("config applied",
		"tray_refresh_ms", cfg.TrayRefreshMS,
		"hover_poll_ms", cfg.HoverPollMS,
		"click_to_hide", cfg.ClickToHideEnabled(),
		"aliases", len(cfg.Aliases))
}

// enumeratorOptions derives enumeration tuning from config. Placeholder
// cards share the thumbnail width and the 8:5 card ratio the panel uses.
func enumeratorOptions(cfg *config.Config) windows.Options {
	bg, _ := cfg.Preview.BackgroundRGBA()
	return windows.Options{
		MinWindowSize:     cfg.Match.MinWindowSize,
		PositionTolerance: cfg.Match.PositionTolerance,
		SizeTolerance:     cfg.Match.SizeTolerance,
		PlaceholderWidth:  cfg.Preview.ThumbnailWidth,
		PlaceholderHeight: cfg.Preview.ThumbnailWidth * 5 / 8,
		PlaceholderBG:     bg,
	}
}

func controllerConfig(cfg *config.Config) overlay.Config {
	return overlay.Config{
		GracePoll:        cfg.GracePollInterval(),
		OffsetPx:         cfg.Preview.OffsetPx,
		MaxWidthFraction: cfg.Preview.MaxWidthFraction,
		Settle: overlay.SettleDelays{
			Activate:  time.Duration(cfg.SettleMS.Activate) * time.Millisecond,
			Close:     time.Duration(cfg.SettleMS.Close) * time.Millisecond,
			Minimize:  time.Duration(cfg.SettleMS.Minimize) * time.Millisecond,
			Maximize:  time.Duration(cfg.SettleMS.Maximize) * time.Millisecond,
			Terminate: time.Duration(cfg.SettleMS.Terminate) * time.Millisecond,
		},
	}
}
