package mcp

// DockStatusInput is the input for the dock_status tool.
type DockStatusInput struct{}

// DockStatusOutput is the output for the dock_status tool.
type DockStatusOutput struct {
	Running       bool   `json:"running"`
	Phase         string `json:"phase,omitempty"`
	Target        string `json:"target,omitempty"`
	Visible       bool   `json:"visible"`
	WindowCount   int    `json:"window_count"`
	IconCount     int    `json:"icon_count"`
	ClickToHide   bool   `json:"click_to_hide"`
	CachedImages  int    `json:"cached_images"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ListIconsInput is the input for the list_icons tool.
type ListIconsInput struct{}

// IconCell describes one taskbar icon cell.
type IconCell struct {
	Label  string `json:"label"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListIconsOutput is the output for the list_icons tool.
type ListIconsOutput struct {
	Icons []IconCell `json:"icons"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Label string `json:"label" jsonschema:"required,Taskbar label of the application (see list_icons)"`
}

// PreviewWindow describes one window of a taskbar application.
type PreviewWindow struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PID       int    `json:"pid"`
	Minimized bool   `json:"minimized"`
	HasImage  bool   `json:"has_image"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Label   string          `json:"label"`
	Windows []PreviewWindow `json:"windows"`
}

// ShowPreviewInput is the input for the show_preview tool.
type ShowPreviewInput struct {
	Label string `json:"label" jsonschema:"required,Taskbar label of the application to preview"`
}

// ShowPreviewOutput is the output for the show_preview tool.
type ShowPreviewOutput struct {
	Label string `json:"label"`
	Shown bool   `json:"shown"`
}

// HidePreviewInput is the input for the hide_preview tool.
type HidePreviewInput struct{}

// HidePreviewOutput is the output for the hide_preview tool.
type HidePreviewOutput struct {
	Hidden bool `json:"hidden"`
}

// SetClickToHideInput is the input for the set_click_to_hide tool.
type SetClickToHideInput struct {
	Enabled bool `json:"enabled" jsonschema:"required,Whether clicks outside the preview should dismiss it"`
}

// SetClickToHideOutput is the output for the set_click_to_hide tool.
type SetClickToHideOutput struct {
	Enabled bool `json:"enabled"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	Action   string `json:"action" jsonschema:"required,Window control to run: activate, close, maximize, minimize, or terminate"`
	Label    string `json:"label" jsonschema:"required,Taskbar label of the application"`
	WindowID int    `json:"window_id,omitempty" jsonschema:"Window id from a recent list_windows call (default 0, the first window)"`
	Title    string `json:"title,omitempty" jsonschema:"Case-insensitive substring of the window title. When set, the window is picked by title instead of window_id."`
}

// WindowActionOutput is the output for the window_action tool.
type WindowActionOutput struct {
	Action   string `json:"action"`
	Label    string `json:"label"`
	WindowID int    `json:"window_id"`
	Title    string `json:"title,omitempty"`
}
