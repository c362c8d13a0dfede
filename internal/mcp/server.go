package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/dockpeek/internal/ipc"
)

const (
	ServerName    = "dockpeek"
	ServerVersion = "0.1.0"
)

// StatusSource is the daemon surface the tools call. *ipc.Client
// implements it over the daemon socket.
type StatusSource interface {
	GetStatus() (*ipc.StatusData, error)
	ListIcons() (*ipc.IconsData, error)
	ListWindows(label string) (*ipc.WindowsData, error)
	ShowPreview(label string) error
	HidePreview() error
	SetClickToHide(enabled bool) error
	WindowAction(action string, label string, windowID int) error
	WindowActionByTitle(action string, label string, title string) error
}

// Server is the MCP server for dockpeek preview control. Every tool is a
// thin typed wrapper over one daemon IPC command.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    StatusSource
}

// NewServer creates an MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{daemon: ipc.NewClient()}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_status",
		Description: "Get the dockpeek daemon's current state: hover phase, targeted taskbar label, preview visibility, icon and window counts, cached preview images, and uptime. Returns running=false when the daemon is not reachable. Every other tool requires a running daemon.",
	}, s.handleDockStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_icons",
		Description: "List the taskbar icon cells the daemon currently tracks, with their labels and screen bounds. Labels are the keys for list_windows, show_preview, and window_action.",
	}, s.handleListIcons)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the preview windows of a taskbar application by label. Window ids are positional and only stable between adjacent scans, so use them promptly or address windows by title in window_action.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_preview",
		Description: "Open the preview strip for a taskbar application as if the pointer were resting on its icon. Errors when the label is not on the taskbar. The preview then follows the normal hover lifecycle (leave grace, click-to-hide) and can be dismissed with hide_preview.",
	}, s.handleShowPreview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_preview",
		Description: "Dismiss the currently visible preview immediately. Does nothing when no preview is shown.",
	}, s.handleHidePreview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_click_to_hide",
		Description: "Enable or disable click-to-hide, where any click outside the preview dismisses it. The change applies immediately and is persisted to the config file.",
	}, s.handleSetClickToHide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Run a window control against one window of a taskbar application: activate, close, maximize, minimize, or terminate. Pick the window by window_id from a recent list_windows call (default 0, the first window) or by title, a case-insensitive substring of the window title. Title takes precedence when both are set.",
	}, s.handleWindowAction)
}
