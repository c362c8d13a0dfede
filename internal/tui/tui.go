// Package tui is the interactive dashboard: live daemon status, the
// current taskbar strip, and a settings editor that writes the config
// file back and reloads the daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// TUI wraps the bubbletea program for the dashboard.
type TUI struct {
	configPath string
}

// New creates a new TUI instance. An empty configPath uses the default
// config location.
func New(configPath string) *TUI {
	return &TUI{configPath: configPath}
}

// Run starts the dashboard and blocks until the user quits.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(t.configPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
