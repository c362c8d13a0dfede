package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/1broseidon/dockpeek/internal/ipc"
)

// fakeStatusSource stands in for the daemon socket and records every call.
type fakeStatusSource struct {
	status     *ipc.StatusData
	statusErr  error
	icons      []ipc.IconInfo
	iconsErr   error
	windows    map[string][]ipc.WindowInfo
	windowsErr error
	opErr      error

	calls []string
}

func (f *fakeStatusSource) GetStatus() (*ipc.StatusData, error) {
	f.calls = append(f.calls, "status")
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func (f *fakeStatusSource) ListIcons() (*ipc.IconsData, error) {
	f.calls = append(f.calls, "icons")
	if f.iconsErr != nil {
		return nil, f.iconsErr
	}
	return &ipc.IconsData{Icons: f.icons}, nil
}

func (f *fakeStatusSource) ListWindows(label string) (*ipc.WindowsData, error) {
	f.calls = append(f.calls, "windows:"+label)
	if f.windowsErr != nil {
		return nil, f.windowsErr
	}
	return &ipc.WindowsData{Label: label, Windows: f.windows[label]}, nil
}

func (f *fakeStatusSource) ShowPreview(label string) error {
	f.calls = append(f.calls, "show:"+label)
	return f.opErr
}

func (f *fakeStatusSource) HidePreview() error {
	f.calls = append(f.calls, "hide")
	return f.opErr
}

func (f *fakeStatusSource) SetClickToHide(enabled bool) error {
	f.calls = append(f.calls, fmt.Sprintf("clickhide:%t", enabled))
	return f.opErr
}

func (f *fakeStatusSource) WindowAction(action string, label string, windowID int) error {
	f.calls = append(f.calls, fmt.Sprintf("action:%s:%s:%d", action, label, windowID))
	return f.opErr
}

func (f *fakeStatusSource) WindowActionByTitle(action string, label string, title string) error {
	f.calls = append(f.calls, fmt.Sprintf("action-title:%s:%s:%s", action, label, title))
	return f.opErr
}

func newTestServer(fake *fakeStatusSource) *Server {
	return &Server{daemon: fake}
}

func TestDockStatusReportsDaemonState(t *testing.T) {
	fake := &fakeStatusSource{status: &ipc.StatusData{
		Phase:         "visible",
		Target:        "Mail",
		WindowCount:   3,
		Visible:       true,
		IconCount:     5,
		ClickToHide:   true,
		CachedImages:  7,
		UptimeSeconds: 42,
		DaemonRunning: true,
	}}
	s := newTestServer(fake)

	_, out, err := s.handleDockStatus(context.Background(), nil, DockStatusInput{})
	if err != nil {
		t.Fatalf("handleDockStatus error: %v", err)
	}
	if !out.Running {
		t.Fatal("Running = false, want true")
	}
	if out.Phase != "visible" || out.Target != "Mail" {
		t.Errorf("phase/target = %q/%q, want visible/Mail", out.Phase, out.Target)
	}
	if out.WindowCount != 3 || out.IconCount != 5 || out.CachedImages != 7 {
		t.Errorf("counts = %d/%d/%d, want 3/5/7", out.WindowCount, out.IconCount, out.CachedImages)
	}
	if !out.Visible || !out.ClickToHide {
		t.Errorf("visible/clickToHide = %v/%v, want true/true", out.Visible, out.ClickToHide)
	}
	if out.UptimeSeconds != 42 {
		t.Errorf("UptimeSeconds = %d, want 42", out.UptimeSeconds)
	}
}

func TestDockStatusUnreachableDaemonIsNotAnError(t *testing.T) {
	fake := &fakeStatusSource{statusErr: errors.New("failed to connect to daemon")}
	s := newTestServer(fake)

	_, out, err := s.handleDockStatus(context.Background(), nil, DockStatusInput{})
	if err != nil {
		t.Fatalf("handleDockStatus error: %v", err)
	}
	if out.Running {
		t.Fatal("Running = true, want false")
	}
	if out.Phase != "" || out.IconCount != 0 {
		t.Errorf("unexpected fields on unreachable daemon: %+v", out)
	}
}

func TestListIconsMapsCells(t *testing.T) {
	fake := &fakeStatusSource{icons: []ipc.IconInfo{
		{Label: "Mail", X: 10, Y: 4, Width: 48, Height: 32},
		{Label: "Files", X: 58, Y: 4, Width: 48, Height: 32},
	}}
	s := newTestServer(fake)

	_, out, err := s.handleListIcons(context.Background(), nil, ListIconsInput{})
	if err != nil {
		t.Fatalf("handleListIcons error: %v", err)
	}
	if len(out.Icons) != 2 {
		t.Fatalf("icons len = %d, want 2", len(out.Icons))
	}
	if out.Icons[0].Label != "Mail" || out.Icons[0].X != 10 || out.Icons[0].Width != 48 {
		t.Errorf("icon 0 = %+v", out.Icons[0])
	}
	if out.Icons[1].Label != "Files" || out.Icons[1].X != 58 {
		t.Errorf("icon 1 = %+v", out.Icons[1])
	}
}

func TestListIconsPropagatesError(t *testing.T) {
	fake := &fakeStatusSource{iconsErr: errors.New("boom")}
	s := newTestServer(fake)

	_, _, err := s.handleListIcons(context.Background(), nil, ListIconsInput{})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestListWindowsMapsWindows(t *testing.T) {
	fake := &fakeStatusSource{windows: map[string][]ipc.WindowInfo{
		"Mail": {
			{ID: 0, Title: "Inbox", X: 100, Y: 200, Width: 800, Height: 600, PID: 1234, HasImage: true},
			{ID: 1, Title: "Drafts", Minimized: true},
		},
	}}
	s := newTestServer(fake)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Label: "Mail"})
	if err != nil {
		t.Fatalf("handleListWindows error: %v", err)
	}
	if out.Label != "Mail" {
		t.Errorf("label = %q, want Mail", out.Label)
	}
	if len(out.Windows) != 2 {
		t.Fatalf("windows len = %d, want 2", len(out.Windows))
	}
	first := out.Windows[0]
	if first.ID != 0 || first.Title != "Inbox" || first.PID != 1234 || !first.HasImage {
		t.Errorf("window 0 = %+v", first)
	}
	if first.X != 100 || first.Y != 200 || first.Width != 800 || first.Height != 600 {
		t.Errorf("window 0 geometry = %+v", first)
	}
	if !out.Windows[1].Minimized {
		t.Error("window 1 Minimized = false, want true")
	}
}

func TestListWindowsRequiresLabel(t *testing.T) {
	s := newTestServer(&fakeStatusSource{})

	_, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Label: "  "})
	if err == nil || !strings.Contains(err.Error(), "label") {
		t.Fatalf("error = %v, want label is required", err)
	}
}

func TestShowPreview(t *testing.T) {
	fake := &fakeStatusSource{}
	s := newTestServer(fake)

	_, out, err := s.handleShowPreview(context.Background(), nil, ShowPreviewInput{Label: "Mail"})
	if err != nil {
		t.Fatalf("handleShowPreview error: %v", err)
	}
	if !out.Shown || out.Label != "Mail" {
		t.Errorf("output = %+v, want shown Mail", out)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "show:Mail" {
		t.Errorf("calls = %v, want [show:Mail]", fake.calls)
	}

	_, _, err = s.handleShowPreview(context.Background(), nil, ShowPreviewInput{})
	if err == nil {
		t.Fatal("expected error for empty label")
	}
}

func TestShowPreviewPropagatesError(t *testing.T) {
	fake := &fakeStatusSource{opErr: errors.New(`unknown label "Nope"`)}
	s := newTestServer(fake)

	_, out, err := s.handleShowPreview(context.Background(), nil, ShowPreviewInput{Label: "Nope"})
	if err == nil || !strings.Contains(err.Error(), "Nope") {
		t.Fatalf("error = %v, want unknown label", err)
	}
	if out.Shown {
		t.Error("Shown = true on error, want false")
	}
}

func TestHidePreview(t *testing.T) {
	fake := &fakeStatusSource{}
	s := newTestServer(fake)

	_, out, err := s.handleHidePreview(context.Background(), nil, HidePreviewInput{})
	if err != nil {
		t.Fatalf("handleHidePreview error: %v", err)
	}
	if !out.Hidden {
		t.Error("Hidden = false, want true")
	}
	if len(fake.calls) != 1 || fake.calls[0] != "hide" {
		t.Errorf("calls = %v, want [hide]", fake.calls)
	}
}

func TestSetClickToHide(t *testing.T) {
	fake := &fakeStatusSource{}
	s := newTestServer(fake)

	_, out, err := s.handleSetClickToHide(context.Background(), nil, SetClickToHideInput{Enabled: true})
	if err != nil {
		t.Fatalf("handleSetClickToHide error: %v", err)
	}
	if !out.Enabled {
		t.Error("Enabled = false, want true")
	}

	if _, out, _ = s.handleSetClickToHide(context.Background(), nil, SetClickToHideInput{Enabled: false}); out.Enabled {
		t.Error("Enabled = true, want false")
	}

	want := []string{"clickhide:true", "clickhide:false"}
	if len(fake.calls) != 2 || fake.calls[0] != want[0] || fake.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestWindowActionValidation(t *testing.T) {
	s := newTestServer(&fakeStatusSource{})

	_, _, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{Action: "fling", Label: "Mail"})
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("error = %v, want unknown action", err)
	}

	_, _, err = s.handleWindowAction(context.Background(), nil, WindowActionInput{Action: "close"})
	if err == nil || !strings.Contains(err.Error(), "label") {
		t.Fatalf("error = %v, want label is required", err)
	}
}

func TestWindowActionRoutesByIDAndTitle(t *testing.T) {
	fake := &fakeStatusSource{}
	s := newTestServer(fake)

	_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
		Action: "activate", Label: "Mail", WindowID: 2,
	})
	if err != nil {
		t.Fatalf("handleWindowAction error: %v", err)
	}
	if out.Action != "activate" || out.Label != "Mail" || out.WindowID != 2 {
		t.Errorf("output = %+v", out)
	}

	_, out, err = s.handleWindowAction(context.Background(), nil, WindowActionInput{
		Action: "close", Label: "Mail", Title: "dra",
	})
	if err != nil {
		t.Fatalf("handleWindowAction by title error: %v", err)
	}
	if out.Title != "dra" {
		t.Errorf("output = %+v, want title dra", out)
	}

	want := []string{"action:activate:Mail:2", "action-title:close:Mail:dra"}
	if len(fake.calls) != 2 || fake.calls[0] != want[0] || fake.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestWindowActionPropagatesDaemonError(t *testing.T) {
	fake := &fakeStatusSource{opErr: errors.New(`no window 9 for "Mail"`)}
	s := newTestServer(fake)

	_, _, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
		Action: "minimize", Label: "Mail", WindowID: 9,
	})
	if err == nil || !strings.Contains(err.Error(), "no window 9") {
		t.Fatalf("error = %v, want no window 9", err)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer()
	if s.mcpServer == nil {
		t.Fatal("mcpServer is nil")
	}
	if s.daemon == nil {
		t.Fatal("daemon is nil")
	}
}
