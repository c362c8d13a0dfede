package picker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/1broseidon/dockpeek/internal/ipc"
)

// scriptStep selects the item with the given action at one Show call.
type scriptStep struct {
	pick string
	code int
}

type showCall struct {
	prompt  string
	items   []Item
	message string
}

// fakeBackend replays a script of selections and records every Show call.
// An exhausted script behaves like the user pressing Escape.
type fakeBackend struct {
	caps   Capabilities
	script []scriptStep
	calls  []showCall
}

func (f *fakeBackend) Show(prompt string, items []Item, message string) (SelectResult, error) {
	f.calls = append(f.calls, showCall{prompt: prompt, items: items, message: message})
	if len(f.script) == 0 {
		return SelectResult{}, ErrCancelled
	}
	step := f.script[0]
	f.script = f.script[1:]
	for _, item := range items {
		if item.Action == step.pick {
			return SelectResult{Item: item, ExitCode: step.code}, nil
		}
	}
	return SelectResult{}, fmt.Errorf("script: no item with action %q in %v", step.pick, actionsOf(items))
}

func (f *fakeBackend) Capabilities() Capabilities {
	return f.caps
}

func actionsOf(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Action)
	}
	return out
}

type actionCall struct {
	action string
	label  string
	id     int
}

type fakeDaemon struct {
	status  ipc.StatusData
	icons   []ipc.IconInfo
	windows map[string][]ipc.WindowInfo

	shown   []string
	hidden  int
	actions []actionCall
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{
		status: ipc.StatusData{
			Phase:       "showing",
			Target:      "Firefox",
			Visible:     true,
			IconCount:   3,
			ClickToHide: true,
		},
		icons: []ipc.IconInfo{
			{Label: "Mail", X: 100, Y: 0, Width: 48, Height: 40},
			{Label: "Files", X: 148, Y: 0, Width: 48, Height: 40},
			{Label: "Firefox", X: 196, Y: 0, Width: 48, Height: 40},
		},
		windows: map[string][]ipc.WindowInfo{
			"Mail": {
				{ID: 0, Title: "Inbox", PID: 101, HasImage: true},
				{ID: 1, Title: "Drafts", PID: 101, Minimized: true, HasImage: true},
				{ID: 2, Title: "", PID: 101, Minimized: true},
			},
			"Firefox": {
				{ID: 0, Title: "Mozilla Firefox", PID: 303, HasImage: true},
			},
		},
	}
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	s := d.status
	return &s, nil
}

func (d *fakeDaemon) ListIcons() (*ipc.IconsData, error) {
	return &ipc.IconsData{Icons: d.icons}, nil
}

func (d *fakeDaemon) ListWindows(label string) (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Label: label, Windows: d.windows[label]}, nil
}

func (d *fakeDaemon) ShowPreview(label string) error {
	d.shown = append(d.shown, label)
	return nil
}

func (d *fakeDaemon) HidePreview() error {
	d.hidden++
	return nil
}

func (d *fakeDaemon) WindowAction(action string, label string, windowID int) error {
	d.actions = append(d.actions, actionCall{action: action, label: label, id: windowID})
	return nil
}

func rofiCaps() Capabilities {
	return NewRofiBackend().Capabilities()
}

func findItem(t *testing.T, items []Item, action string) Item {
	t.Helper()
	for _, item := range items {
		if item.Action == action {
			return item
		}
	}
	t.Fatalf("no item with action %q in %v", action, actionsOf(items))
	return Item{}
}

func TestFlowDrillDownToWindowAction(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail"},
		{pick: "win:1"},
		{pick: "minimize"},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(daemon.actions) != 1 {
		t.Fatalf("expected 1 action, got %v", daemon.actions)
	}
	want := actionCall{action: "minimize", label: "Mail", id: 1}
	if daemon.actions[0] != want {
		t.Fatalf("expected %+v, got %+v", want, daemon.actions[0])
	}

	if len(backend.calls) != 3 {
		t.Fatalf("expected 3 menus, got %d", len(backend.calls))
	}
	if backend.calls[0].prompt != "dockpeek" {
		t.Fatalf("expected root prompt dockpeek, got %q", backend.calls[0].prompt)
	}
	if backend.calls[1].prompt != "Mail" || backend.calls[2].prompt != "Mail" {
		t.Fatalf("expected app label prompts, got %q and %q", backend.calls[1].prompt, backend.calls[2].prompt)
	}
}

func TestFlowQuickPreviewWithCustomKey(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail", code: ExitCustom1},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected a single menu, got %d", len(backend.calls))
	}
	if len(daemon.shown) != 1 || daemon.shown[0] != "Mail" {
		t.Fatalf("expected quick preview of Mail, got %v", daemon.shown)
	}
}

func TestFlowShowPreviewEntry(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail"},
		{pick: "show"},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(daemon.shown) != 1 || daemon.shown[0] != "Mail" {
		t.Fatalf("expected preview of Mail, got %v", daemon.shown)
	}
}

func TestFlowHidePreviewEntry(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "hide"},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if daemon.hidden != 1 {
		t.Fatalf("expected one hide call, got %d", daemon.hidden)
	}
}

func TestFlowHideEntryOnlyWhenVisible(t *testing.T) {
	daemon := newFakeDaemon()
	daemon.status.Visible = false
	daemon.status.Target = ""
	backend := &fakeBackend{caps: rofiCaps()}

	err := NewFlow(backend, daemon).Run()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected cancel, got %v", err)
	}
	for _, item := range backend.calls[0].items {
		if item.Action == actionHide {
			t.Fatalf("expected no hide entry when preview is hidden")
		}
	}
}

func TestFlowWindowQuickKeys(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail"},
		{pick: "win:0", code: ExitCustom2},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := actionCall{action: "close", label: "Mail", id: 0}
	if len(daemon.actions) != 1 || daemon.actions[0] != want {
		t.Fatalf("expected %+v, got %+v", want, daemon.actions)
	}
}

func TestFlowBackNavigation(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail"},
		{pick: "win:0"},
		{pick: actionBack}, // action level back to windows
		{pick: actionBack}, // window level back to apps
		{pick: "app:Firefox", code: ExitCustom1},
	}}

	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(backend.calls) != 5 {
		t.Fatalf("expected 5 menus, got %d", len(backend.calls))
	}
	prompts := []string{"dockpeek", "Mail", "Mail", "Mail", "dockpeek"}
	for i, want := range prompts {
		if backend.calls[i].prompt != want {
			t.Fatalf("menu %d: expected prompt %q, got %q", i, want, backend.calls[i].prompt)
		}
	}
	if len(daemon.actions) != 0 {
		t.Fatalf("expected no window actions, got %v", daemon.actions)
	}
	if len(daemon.shown) != 1 || daemon.shown[0] != "Firefox" {
		t.Fatalf("expected final preview of Firefox, got %v", daemon.shown)
	}
}

func TestFlowCancelAtRoot(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps()}

	err := NewFlow(backend, daemon).Run()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(daemon.shown) != 0 || len(daemon.actions) != 0 || daemon.hidden != 0 {
		t.Fatalf("expected no daemon calls after cancel")
	}
}

func TestFlowRowStatesAndTitles(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail"},
	}}

	err := NewFlow(backend, daemon).Run()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected cancel after script, got %v", err)
	}

	apps := backend.calls[0].items
	if !findItem(t, apps, "app:Firefox").IsActive {
		t.Fatalf("expected the previewed app to be marked active")
	}
	if findItem(t, apps, "app:Mail").IsActive {
		t.Fatalf("expected other apps not to be active")
	}

	wins := backend.calls[1].items
	if findItem(t, wins, "win:0").IsUrgent {
		t.Fatalf("expected visible window not to be urgent")
	}
	if !findItem(t, wins, "win:1").IsUrgent {
		t.Fatalf("expected minimized window to be urgent")
	}
	if got := findItem(t, wins, "win:2").Label; got != "window 2" {
		t.Fatalf("expected placeholder title for untitled window, got %q", got)
	}
	if wins[0].Action != actionBack {
		t.Fatalf("expected back entry first, got %q", wins[0].Action)
	}
}

func TestFlowEmptyWindowListShowsHeader(t *testing.T) {
	daemon := newFakeDaemon()
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Files"},
		{pick: actionNoop}, // header selection re-shows the level
		{pick: actionBack},
	}}

	err := NewFlow(backend, daemon).Run()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected cancel after script, got %v", err)
	}

	wins := backend.calls[1].items
	header := findItem(t, wins, actionNoop)
	if !header.IsHeader || header.Label != "(no windows)" {
		t.Fatalf("expected no-windows header, got %+v", header)
	}
	// Selecting the header re-shows the same level.
	if backend.calls[2].prompt != "Files" {
		t.Fatalf("expected level re-shown after header selection, got %q", backend.calls[2].prompt)
	}
}

func TestFlowEmptyTrayErrors(t *testing.T) {
	daemon := newFakeDaemon()
	daemon.icons = nil
	backend := &fakeBackend{caps: rofiCaps()}

	err := NewFlow(backend, daemon).Run()
	if err == nil || !strings.Contains(err.Error(), "no taskbar icons") {
		t.Fatalf("expected empty tray error, got %v", err)
	}
}

func TestFlowMessageFollowsCapabilities(t *testing.T) {
	daemon := newFakeDaemon()

	// Full rofi capabilities: escaped context plus small-span hints.
	backend := &fakeBackend{caps: rofiCaps(), script: []scriptStep{
		{pick: "app:Mail", code: ExitCustom1},
	}}
	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	msg := backend.calls[0].message
	if !strings.Contains(msg, "3 apps") || !strings.Contains(msg, "preview: Firefox") {
		t.Fatalf("expected context in message, got %q", msg)
	}
	if !strings.Contains(msg, "<span size='small'>") {
		t.Fatalf("expected markup hints for rofi, got %q", msg)
	}

	// Builtin: message bar without markup; hints stay plain.
	backend = &fakeBackend{caps: NewBuiltinBackend().Capabilities(), script: []scriptStep{
		{pick: "app:Mail", code: ExitCustom1},
	}}
	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	msg = backend.calls[0].message
	if strings.Contains(msg, "<span") {
		t.Fatalf("expected plain hints for builtin, got %q", msg)
	}
	if !strings.Contains(msg, "Alt+Enter") {
		t.Fatalf("expected hints for custom-key backend, got %q", msg)
	}

	// dmenu: no message bar at all.
	backend = &fakeBackend{caps: NewDmenuBackend().Capabilities(), script: []scriptStep{
		{pick: "app:Mail", code: ExitCustom1},
	}}
	if err := NewFlow(backend, daemon).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend.calls[0].message != "" {
		t.Fatalf("expected empty message for dmenu, got %q", backend.calls[0].message)
	}
}
