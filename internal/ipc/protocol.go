package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing           CommandType = "PING"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListIcons      CommandType = "LIST_ICONS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandShowPreview    CommandType = "SHOW_PREVIEW"
	CommandHidePreview    CommandType = "HIDE_PREVIEW"
	CommandSetClickToHide CommandType = "SET_CLICK_TO_HIDE"
	CommandWindowAction   CommandType = "WINDOW_ACTION"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Phase         string `json:"phase"`
	Target        string `json:"target,omitempty"`
	WindowCount   int    `json:"window_count"`
	Visible       bool   `json:"visible"`
	IconCount     int    `json:"icon_count"`
	ClickToHide   bool   `json:"click_to_hide"`
	CachedImages  int    `json:"cached_images"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// IconInfo describes one taskbar icon cell in bottom-origin coordinates.
type IconInfo struct {
	Label  string `json:"label"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// IconsData represents the data returned by LIST_ICONS
type IconsData struct {
	Icons []IconInfo `json:"icons"`
}

// WindowInfo describes one preview window of an application.
type WindowInfo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PID       int    `json:"pid"`
	Minimized bool   `json:"minimized"`
	Handle    uint32 `json:"handle,omitempty"`
	HasImage  bool   `json:"has_image"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Label   string       `json:"label"`
	Windows []WindowInfo `json:"windows"`
}

// LabelPayload carries the taskbar label for LIST_WINDOWS and SHOW_PREVIEW.
type LabelPayload struct {
	Label string `json:"label"`
}

// SetClickToHidePayload represents the payload for SET_CLICK_TO_HIDE
type SetClickToHidePayload struct {
	Enabled bool `json:"enabled"`
}

// WindowActionPayload represents the payload for WINDOW_ACTION. When
// Title is set the window is picked by case-insensitive substring match
// instead of WindowID.
type WindowActionPayload struct {
	Action   string `json:"action"`
	Label    string `json:"label"`
	WindowID int    `json:"window_id"`
	Title    string `json:"title,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
