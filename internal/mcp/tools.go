package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/dockpeek/internal/overlay"
)

func (s *Server) handleDockStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DockStatusInput) (*mcpsdk.CallToolResult, DockStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		// An unreachable daemon is a reportable state, not a tool failure.
		return nil, DockStatusOutput{Running: false}, nil
	}

	return nil, DockStatusOutput{
		Running:       status.DaemonRunning,
		Phase:         status.Phase,
		Target:        status.Target,
		Visible:       status.Visible,
		WindowCount:   status.WindowCount,
		IconCount:     status.IconCount,
		ClickToHide:   status.ClickToHide,
		CachedImages:  status.CachedImages,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListIcons(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListIconsInput) (*mcpsdk.CallToolResult, ListIconsOutput, error) {
	data, err := s.daemon.ListIcons()
	if err != nil {
		return nil, ListIconsOutput{}, err
	}

	icons := make([]IconCell, 0, len(data.Icons))
	for _, ic := range data.Icons {
		icons = append(icons, IconCell{
			Label:  ic.Label,
			X:      ic.X,
			Y:      ic.Y,
			Width:  ic.Width,
			Height: ic.Height,
		})
	}
	return nil, ListIconsOutput{Icons: icons}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	if strings.TrimSpace(args.Label) == "" {
		return nil, ListWindowsOutput{}, fmt.Errorf("label is required")
	}

	data, err := s.daemon.ListWindows(args.Label)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	windows := make([]PreviewWindow, 0, len(data.Windows))
	for _, win := range data.Windows {
		windows = append(windows, PreviewWindow{
			ID:        win.ID,
			Title:     win.Title,
			X:         win.X,
			Y:         win.Y,
			Width:     win.Width,
			Height:    win.Height,
			PID:       win.PID,
			Minimized: win.Minimized,
			HasImage:  win.HasImage,
		})
	}
	return nil, ListWindowsOutput{Label: data.Label, Windows: windows}, nil
}

func (s *Server) handleShowPreview(_ context.Context, _ *mcpsdk.CallToolRequest, args ShowPreviewInput) (*mcpsdk.CallToolResult, ShowPreviewOutput, error) {
	if strings.TrimSpace(args.Label) == "" {
		return nil, ShowPreviewOutput{}, fmt.Errorf("label is required")
	}

	if err := s.daemon.ShowPreview(args.Label); err != nil {
		return nil, ShowPreviewOutput{}, err
	}
	return nil, ShowPreviewOutput{Label: args.Label, Shown: true}, nil
}

func (s *Server) handleHidePreview(_ context.Context, _ *mcpsdk.CallToolRequest, _ HidePreviewInput) (*mcpsdk.CallToolResult, HidePreviewOutput, error) {
	if err := s.daemon.HidePreview(); err != nil {
		return nil, HidePreviewOutput{}, err
	}
	return nil, HidePreviewOutput{Hidden: true}, nil
}

func (s *Server) handleSetClickToHide(_ context.Context, _ *mcpsdk.CallToolRequest, args SetClickToHideInput) (*mcpsdk.CallToolResult, SetClickToHideOutput, error) {
	if err := s.daemon.SetClickToHide(args.Enabled); err != nil {
		return nil, SetClickToHideOutput{}, err
	}
	return nil, SetClickToHideOutput{Enabled: args.Enabled}, nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	if !overlay.Action(args.Action).Valid() {
		return nil, WindowActionOutput{}, fmt.Errorf("unknown action %q; valid: activate, close, maximize, minimize, terminate", args.Action)
	}
	if strings.TrimSpace(args.Label) == "" {
		return nil, WindowActionOutput{}, fmt.Errorf("label is required")
	}

	if args.Title != "" {
		if err := s.daemon.WindowActionByTitle(args.Action, args.Label, args.Title); err != nil {
			return nil, WindowActionOutput{}, err
		}
	} else if err := s.daemon.WindowAction(args.Action, args.Label, args.WindowID); err != nil {
		return nil, WindowActionOutput{}, err
	}

	return nil, WindowActionOutput{
		Action:   args.Action,
		Label:    args.Label,
		WindowID: args.WindowID,
		Title:    args.Title,
	}, nil
}
