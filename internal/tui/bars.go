package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockpeek/internal/ipc"
)

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(connected bool, status ipc.StatusData, cacheCap int, width int) string {
	var text string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if status.Phase != "" {
			parts = append(parts, "phase:"+status.Phase)
		}
		if status.Target != "" {
			parts = append(parts, "target:"+status.Target)
		}
		if cacheCap > 0 {
			parts = append(parts, fmt.Sprintf("cache:%d/%d", status.CachedImages, cacheCap))
		} else {
			parts = append(parts, fmt.Sprintf("cache:%d", status.CachedImages))
		}
		text = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderMessageLine renders the transient action feedback line.
func renderMessageLine(text string, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("42")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(editing bool, width int) string {
	help := "enter: show preview  h: hide  c: click-to-hide  r: reload  e: edit  ctrl-s: save  q/ctrl-c: quit"
	if editing {
		help = "esc: cancel  enter: next field  ctrl-s: save  ctrl-c: quit"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
