// Package overlay drives the preview surface lifecycle: when it appears,
// what it lists, where it sits, and when it may disappear.
package overlay

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/hover"
	"github.com/1broseidon/dockpeek/internal/platform"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// SettleDelays is how long each action gets before the listing is
// rebuilt. Minimize and close apply fast; activation, maximize and
// terminate need the window system longer to raise, resize or reap.
type SettleDelays struct {
	Activate  time.Duration
	Close     time.Duration
	Minimize  time.Duration
	Maximize  time.Duration
	Terminate time.Duration
}

// For returns the delay for an action. Click signals ride the activate
// delay.
func (s SettleDelays) For(a Action) time.Duration {
	switch a {
	case ActionClose:
		return s.Close
	case ActionMinimize:
		return s.Minimize
	case ActionMaximize:
		return s.Maximize
	case ActionTerminate:
		return s.Terminate
	default:
		return s.Activate
	}
}

// Config tunes the controller's timing and placement outputs.
type Config struct {
	GracePoll        time.Duration
	OffsetPx         int
	MaxWidthFraction float64
	Settle           SettleDelays
}

func (c Config) withDefaults() Config {
	if c.GracePoll <= 0 {
		c.GracePoll = 100 * time.Millisecond
	}
	if c.OffsetPx <= 0 {
		c.OffsetPx = 16
	}
	if c.MaxWidthFraction <= 0 || c.MaxWidthFraction > 1 {
		c.MaxWidthFraction = 0.6
	}
	if c.Settle.Activate <= 0 {
		c.Settle.Activate = 500 * time.Millisecond
	}
	if c.Settle.Close <= 0 {
		c.Settle.Close = 250 * time.Millisecond
	}
	if c.Settle.Minimize <= 0 {
		c.Settle.Minimize = 250 * time.Millisecond
	}
	if c.Settle.Maximize <= 0 {
		c.Settle.Maximize = 500 * time.Millisecond
	}
	if c.Settle.Terminate <= 0 {
		c.Settle.Terminate = 750 * time.Millisecond
	}
	return c
}

// Enumerator is the window service the controller drives: one listing
// call plus the five preview actions.
type Enumerator interface {
	Enumerate(label string) []windows.AppWindow
	Activate(win windows.AppWindow) error
	Close(win windows.AppWindow) error
	Minimize(win windows.AppWindow) error
	ToggleMaximize(win windows.AppWindow) error
	Terminate(win windows.AppWindow) error
}

// Controller is the overlay state machine. Hover transitions, grace
// polls, settle timers and click signals all mutate one set of fields
// under one mutex; enumeration runs asynchronously and its results are
// gated by a generation counter so a stale pass for an abandoned target
// is discarded on apply.
type Controller struct {
	backend    platform.Backend
	enumerator Enumerator
	surface    Surface
	cfg        Config

	events chan Event

	mu          sync.Mutex
	phase       Phase
	target      string
	targetRect  geom.Rect // strip cell in the bottom-left convention
	current     []windows.AppWindow
	lastHover   hover.Hovered
	visible     bool
	shownTarget string
	generation  int
	graceTimer  *time.Timer
	settleTimer *time.Timer
	stopped     bool
}

// Status is a point-in-time controller snapshot for the control socket.
type Status struct {
	Phase       Phase
	Target      string
	WindowCount int
	Visible     bool
}

// NewController wires the state machine. Events start flowing once hover
// transitions arrive.
func NewController(backend platform.Backend, enumerator Enumerator, surface Surface, cfg Config) *Controller {
	return &Controller{
		backend:    backend,
		enumerator: enumerator,
		surface:    surface,
		cfg:        cfg.withDefaults(),
		events:     make(chan Event, 32),
		phase:      PhaseIdle,
	}
}

// Events is the surface instruction stream. Closed by Stop.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// UpdateConfig swaps the timing and placement tunables. Timers already
// armed keep the delay they were armed with.
func (c *Controller) UpdateConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg.withDefaults()
}

// Status returns the current phase, target and listing size.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Phase:       c.phase,
		Target:      c.target,
		WindowCount: len(c.current),
		Visible:     c.visible,
	}
}

// HandleHover receives every transition the tracker publishes.
func (c *Controller) HandleHover(h hover.Hovered) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastHover = h

	if c.stopped || c.phase == PhaseLocked {
		// Locked defers everything to the settle timer, which reads
		// lastHover when it fires.
		return
	}

	if h.None() {
		if c.phase == PhaseShowing {
			c.enterGraceLocked()
		}
		return
	}

	if h.Label == c.target && (c.phase == PhaseShowing || c.phase == PhaseGraceLeaving) {
		// Pointer came back to the icon during grace; the surface is
		// already right.
		c.cancelGraceLocked()
		c.phase = PhaseShowing
		return
	}

	c.beginTargetLocked(h.Label, h.Rect)
}

// SignalClick schedules the post-click refresh for an icon. A click on
// the strip just changed some window state for that app, so it rides the
// settle path of a mutating action without changing the hover target.
func (c *Controller) SignalClick(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.lastHover.None() || c.lastHover.Label != label {
		return // pointer moved on; stale signal
	}
	if c.target == "" {
		// Nothing was showing (the last enumeration was empty); adopt
		// the icon so the refresh can present what the click revealed.
		c.target = label
		c.targetRect = c.lastHover.Rect
		c.current = nil
	}
	if label != c.target {
		return
	}
	c.cancelGraceLocked()
	c.phase = PhaseLocked
	c.generation++ // pre-click listings are stale once the click lands
	c.armSettleLocked(c.cfg.Settle.For(ActionActivate))
}

// Do runs a window action through the lock-refresh cycle: dismissal is
// suppressed while the host applies the change, and the listing is
// rebuilt once the action's settle delay elapses. The action's own error
// is returned for the caller; the state machine proceeds regardless and
// lets the delayed re-enumeration reveal whatever actually happened.
func (c *Controller) Do(action Action, win windows.AppWindow) error {
	if !action.Valid() {
		return fmt.Errorf("unknown action %q", action)
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return fmt.Errorf("controller stopped")
	}
	c.cancelGraceLocked()
	c.phase = PhaseLocked
	c.generation++ // in-flight passes predate the action; discard them
	c.armSettleLocked(c.cfg.Settle.For(action))
	c.mu.Unlock()

	var err error
	switch action {
	case ActionActivate:
		err = c.enumerator.Activate(win)
	case ActionClose:
		err = c.enumerator.Close(win)
	case ActionMinimize:
		err = c.enumerator.Minimize(win)
	case ActionMaximize:
		err = c.enumerator.ToggleMaximize(win)
	case ActionTerminate:
		err = c.enumerator.Terminate(win)
	}
	if err != nil {
		log.Printf("Overlay: %s failed: %v", action, err)
	}
	return err
}

// ShowFor forces a preview for a label as if the pointer hovered the
// given strip cell. Used by the control socket.
func (c *Controller) ShowFor(label string, rect geom.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.beginTargetLocked(label, rect)
}

// Dismiss hides the surface immediately from any phase.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.toIdleLocked()
}

// Stop cancels all timers and closes the event stream.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	c.cancelGraceLocked()
	c.cancelSettleLocked()
	close(c.events)
}

// beginTargetLocked switches to a new target and kicks off enumeration.
// The surface is not hidden here: a direct icon-to-icon hover swap keeps
// it up until the new windows arrive, and an empty result takes it down
// then.
func (c *Controller) beginTargetLocked(label string, rect geom.Rect) {
	c.cancelGraceLocked()
	c.cancelSettleLocked()
	c.phase = PhaseShowing
	c.target = label
	c.targetRect = rect
	c.current = nil
	c.generation++
	c.spawnEnumerateLocked()
}

// spawnEnumerateLocked starts the asynchronous pass for the current
// target. Captures take tens of milliseconds, so the pointer may have
// moved on by the time results land; applyEnumeration checks.
func (c *Controller) spawnEnumerateLocked() {
	gen := c.generation
	label := c.target
	go func() {
		wins := c.enumerator.Enumerate(label)
		c.applyEnumeration(gen, label, wins)
	}()
}

func (c *Controller) applyEnumeration(gen int, label string, wins []windows.AppWindow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || gen != c.generation || label != c.target {
		return
	}

	if len(wins) == 0 {
		c.toIdleLocked()
		return
	}

	c.current = wins
	c.emitContentLocked()
}

// emitContentLocked sends the current listing to the surface: Show when
// the surface is hidden or the target changed since it last presented,
// Update otherwise.
func (c *Controller) emitContentLocked() {
	ev := Event{
		Target:    c.target,
		Windows:   c.current,
		Placement: c.placementLocked(),
	}
	if !c.visible || c.shownTarget != c.target {
		ev.Type = EventShow
	} else {
		ev.Type = EventUpdate
	}
	c.visible = true
	c.shownTarget = c.target
	c.emitLocked(ev)
}

// placementLocked computes where the surface belongs for the current
// strip cell.
func (c *Controller) placementLocked() Placement {
	screen, err := c.backend.ScreenSize()
	if err != nil {
		log.Printf("Overlay: screen size unavailable: %v", err)
		return Placement{OffsetPx: c.cfg.OffsetPx}
	}
	usable, err := c.backend.UsableBounds()
	if err != nil {
		usable = geom.Rect{Width: screen.Width, Height: screen.Height}
	}
	return Placement{
		IconRect: geom.FlipRectY(c.targetRect, screen.Height),
		Usable:   usable,
		OffsetPx: c.cfg.OffsetPx,
		MaxWidth: int(float64(screen.Width) * c.cfg.MaxWidthFraction),
	}
}

func (c *Controller) toIdleLocked() {
	c.cancelGraceLocked()
	c.cancelSettleLocked()
	c.phase = PhaseIdle
	c.target = ""
	c.current = nil
	c.generation++
	if c.visible {
		c.visible = false
		c.shownTarget = ""
		c.emitLocked(Event{Type: EventHide})
	}
}

func (c *Controller) enterGraceLocked() {
	c.phase = PhaseGraceLeaving
	c.armGraceLocked()
}

// armGraceLocked re-arms the single grace timer, cancelling any previous
// instance so two polls never overlap.
func (c *Controller) armGraceLocked() {
	if c.graceTimer != nil {
		c.graceTimer.Stop()
	}
	c.graceTimer = time.AfterFunc(c.cfg.GracePoll, c.graceTick)
}

func (c *Controller) cancelGraceLocked() {
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
}

func (c *Controller) armSettleLocked(delay time.Duration) {
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	c.settleTimer = time.AfterFunc(delay, c.settleElapsed)
}

func (c *Controller) cancelSettleLocked() {
	if c.settleTimer != nil {
		c.settleTimer.Stop()
		c.settleTimer = nil
	}
}

// graceTick decides whether the pointer is still interacting with the
// surface. The surface and pointer are sampled before taking the mutex;
// the surface has its own lock and ordering the two is not worth it.
func (c *Controller) graceTick() {
	pointer, pointerErr := c.backend.PointerPosition()
	surfaceVisible := c.surface.Visible()
	surfaceRect, surfaceOK := c.surface.Bounds()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.phase != PhaseGraceLeaving {
		return
	}

	if !surfaceVisible {
		// The surface went away on its own; nothing left to grace.
		c.toIdleLocked()
		return
	}

	if pointerErr != nil {
		// Can't prove the pointer left; keep the surface.
		c.armGraceLocked()
		return
	}

	if surfaceOK && surfaceRect.Contains(pointer) {
		c.armGraceLocked()
		return
	}

	c.toIdleLocked()
}

// settleElapsed ends the locked phase: refresh for wherever the pointer
// is now, or start the leave grace when it is already gone.
func (c *Controller) settleElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.phase != PhaseLocked {
		return
	}

	if c.lastHover.None() {
		if c.target == "" {
			c.toIdleLocked()
			return
		}
		// Dismiss race: the pointer left while the action settled.
		c.enterGraceLocked()
		return
	}

	if c.lastHover.Label != c.target {
		// The pointer moved to another icon while locked; the switch
		// was deferred to now.
		c.beginTargetLocked(c.lastHover.Label, c.lastHover.Rect)
		return
	}

	c.phase = PhaseShowing
	c.targetRect = c.lastHover.Rect
	c.spawnEnumerateLocked()
}

// emitLocked queues an event without ever blocking a timer or hover
// goroutine; if the consumer is wedged the event is dropped and the next
// refresh repairs the surface.
func (c *Controller) emitLocked(ev Event) {
	if c.stopped {
		return
	}
	select {
	case c.events <- ev:
	default:
		log.Printf("Overlay: dropped %s event, surface consumer is behind", ev.Type)
	}
}
