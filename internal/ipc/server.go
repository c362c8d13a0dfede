package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/1broseidon/dockpeek/internal/runtimepath"
)

// Engine is the daemon surface the IPC server drives. The daemon
// implements it; tests substitute fakes.
type Engine interface {
	Status() StatusData
	Icons() []IconInfo
	Windows(label string) []WindowInfo
	ShowPreview(label string) error
	HidePreview()
	SetClickToHide(enabled bool) error
	WindowAction(action string, label string, windowID int) error
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(engine Engine) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     engine,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListIcons:
		return s.handleListIcons()
	case CommandListWindows:
		return s.handleListWindows(req.Payload)
	case CommandShowPreview:
		return s.handleShowPreview(req.Payload)
	case CommandHidePreview:
		s.engine.HidePreview()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandSetClickToHide:
		return s.handleSetClickToHide(req.Payload)
	case CommandWindowAction:
		return s.handleWindowAction(req.Payload)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status := s.engine.Status()
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListIcons() *Response {
	data := IconsData{Icons: s.engine.Icons()}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleListWindows(payload json.RawMessage) *Response {
	var req LabelPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid windows payload: %v", err))
	}
	if strings.TrimSpace(req.Label) == "" {
		return NewErrorResponse("label is required")
	}

	data := WindowsData{
		Label:   req.Label,
		Windows: s.engine.Windows(req.Label),
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleShowPreview(payload json.RawMessage) *Response {
	var req LabelPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid show payload: %v", err))
	}
	if strings.TrimSpace(req.Label) == "" {
		return NewErrorResponse("label is required")
	}

	if err := s.engine.ShowPreview(req.Label); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to show preview: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetClickToHide(payload json.RawMessage) *Response {
	var req SetClickToHidePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid click-to-hide payload: %v", err))
	}

	if err := s.engine.SetClickToHide(req.Enabled); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set click-to-hide: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleWindowAction(payload json.RawMessage) *Response {
	var req WindowActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid action payload: %v", err))
	}
	if req.Action == "" {
		return NewErrorResponse("action is required")
	}
	if strings.TrimSpace(req.Label) == "" {
		return NewErrorResponse("label is required")
	}

	windowID := req.WindowID
	if req.Title != "" {
		id, err := s.resolveWindowTitle(req.Label, req.Title)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		windowID = id
	}

	if err := s.engine.WindowAction(req.Action, req.Label, windowID); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to run action: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// resolveWindowTitle maps a title substring to a window id. The match is
// case-insensitive and the first hit wins.
func (s *Server) resolveWindowTitle(label, title string) (int, error) {
	needle := strings.ToLower(title)
	for _, win := range s.engine.Windows(label) {
		if strings.Contains(strings.ToLower(win.Title), needle) {
			return win.ID, nil
		}
	}
	return 0, fmt.Errorf("no window of %q matching title %q", label, title)
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	if err := s.engine.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
