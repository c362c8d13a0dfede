package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/dockpeek/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	req := &Request{
		Command: CommandPing,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListIcons retrieves the cached taskbar icon cells
func (c *Client) ListIcons() (*IconsData, error) {
	req := &Request{
		Command: CommandListIcons,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data IconsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse icons data: %w", err)
	}

	return &data, nil
}

// ListWindows retrieves the preview window list for a taskbar label
func (c *Client) ListWindows(label string) (*WindowsData, error) {
	payload, err := json.Marshal(LabelPayload{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal windows payload: %w", err)
	}

	req := &Request{
		Command: CommandListWindows,
		Payload: payload,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}

	return &data, nil
}

// ShowPreview asks the daemon to open the preview for a taskbar label
func (c *Client) ShowPreview(label string) error {
	payload, err := json.Marshal(LabelPayload{Label: label})
	if err != nil {
		return fmt.Errorf("failed to marshal show payload: %w", err)
	}

	req := &Request{
		Command: CommandShowPreview,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// HidePreview asks the daemon to dismiss the preview immediately
func (c *Client) HidePreview() error {
	req := &Request{
		Command: CommandHidePreview,
	}

	_, err := c.sendRequest(req)
	return err
}

// SetClickToHide toggles the click-to-hide interceptor and persists the choice
func (c *Client) SetClickToHide(enabled bool) error {
	payload, err := json.Marshal(SetClickToHidePayload{Enabled: enabled})
	if err != nil {
		return fmt.Errorf("failed to marshal click-to-hide payload: %w", err)
	}

	req := &Request{
		Command: CommandSetClickToHide,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// WindowAction runs a preview control against one window of a label
func (c *Client) WindowAction(action string, label string, windowID int) error {
	payload, err := json.Marshal(WindowActionPayload{
		Action:   action,
		Label:    label,
		WindowID: windowID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal action payload: %w", err)
	}

	req := &Request{
		Command: CommandWindowAction,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// WindowActionByTitle runs a preview control against the first window of
// a label whose title contains the given substring.
func (c *Client) WindowActionByTitle(action string, label string, title string) error {
	payload, err := json.Marshal(WindowActionPayload{
		Action: action,
		Label:  label,
		Title:  title,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal action payload: %w", err)
	}

	req := &Request{
		Command: CommandWindowAction,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}
