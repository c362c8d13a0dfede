package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockpeek/internal/config"
	"github.com/1broseidon/dockpeek/internal/ipc"
	"github.com/1broseidon/dockpeek/internal/panel"
)

// iconItem implements list.Item for the taskbar icon sidebar.
type iconItem struct {
	label    string
	isTarget bool
}

func (i iconItem) Title() string {
	prefix := "  "
	if i.isTarget {
		prefix = "* "
	}
	return prefix + i.label
}

func (i iconItem) Description() string { return "" }
func (i iconItem) FilterValue() string { return i.label }

// clearStatusMsg clears the transient message after a delay.
type clearStatusMsg struct{}

// refreshMsg triggers a poll of daemon state.
type refreshMsg struct{}

func refreshTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func clearStatusTick() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// model is the root bubbletea model for the dashboard.
type model struct {
	configPath string
	result     *config.LoadResult
	client     *ipc.Client

	// Daemon state
	daemonConnected bool
	status          ipc.StatusData

	// Icon list plus the window set of the icon under the cursor
	icons      list.Model
	selLabel   string
	selWindows []ipc.WindowInfo

	// Settings editor
	editor SettingsEditor

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	statusText string

	width  int
	height int
}

func newModel(configPath string) model {
	m := model{configPath: configPath}

	m.loadConfig()

	// Snapshot original config for diff preview on save
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Taskbar"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	m.icons = l

	m.editor = NewSettingsEditor(m.cfg())

	m.client = ipc.NewClient()
	m.refreshDaemon()

	return m
}

func (m *model) cfg() *config.Config {
	if m.result == nil {
		return nil
	}
	return m.result.Config
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error

	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		return
	}
	m.result = res
}

// refreshDaemon pulls status, icons and the selected icon's windows from
// the daemon. Any error counts as disconnected until the next poll.
func (m *model) refreshDaemon() {
	status, err := m.client.GetStatus()
	if err != nil {
		m.daemonConnected = false
		m.status = ipc.StatusData{}
		m.icons.SetItems(nil)
		m.selLabel = ""
		m.selWindows = nil
		return
	}
	m.daemonConnected = true
	m.status = *status

	m.rebuildIcons()
	m.refreshSelection()
}

func (m *model) rebuildIcons() {
	prev := m.selectedLabel()

	data, err := m.client.ListIcons()
	if err != nil {
		return
	}

	items := make([]list.Item, 0, len(data.Icons))
	for _, icon := range data.Icons {
		items = append(items, iconItem{
			label:    icon.Label,
			isTarget: m.status.Target != "" && icon.Label == m.status.Target,
		})
	}
	m.icons.SetItems(items)

	// Keep the cursor on the same label across refreshes.
	if prev == "" {
		return
	}
	for i, it := range items {
		if ii, ok := it.(iconItem); ok && ii.label == prev {
			m.icons.Select(i)
			return
		}
	}
}

func (m *model) selectedLabel() string {
	item, ok := m.icons.SelectedItem().(iconItem)
	if !ok {
		return ""
	}
	return item.label
}

// refreshSelection fetches the window list for the icon under the cursor.
func (m *model) refreshSelection() {
	label := m.selectedLabel()
	if label == "" || !m.daemonConnected {
		m.selLabel = ""
		m.selWindows = nil
		return
	}
	data, err := m.client.ListWindows(label)
	if err != nil {
		return
	}
	m.selLabel = label
	m.selWindows = data.Windows
}

func (m *model) resize() {
	m.icons.SetSize(m.sidebarWidth(), m.contentHeight())
}

func (m model) sidebarWidth() int {
	// Sidebar takes ~35% of width, min 20, max 40
	sw := m.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

func (m model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

// contentHeight returns the height between the status bar and the
// message and help bars.
func (m model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return refreshTick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ticks fire in every mode.
	switch msg.(type) {
	case refreshMsg:
		m.refreshDaemon()
		return m, refreshTick()
	case clearStatusMsg:
		m.statusText = ""
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.cfg(), m.configPath, m.client, m.daemonConnected)
			// After a successful save, the file is the new baseline
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg())
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
			m.resize()
		}
		return m, nil
	}

	// ctrl+s triggers the save overlay from any context (including the form)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.cfg() != nil {
			m.saveOverlay.Show(m.originalConfig, m.cfg())
		}
		return m, nil
	}

	// The settings form consumes keys while open; only ctrl+c escapes.
	if m.editor.editing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
			m.resize()
			sub := tea.WindowSizeMsg{Width: m.formWidth(), Height: m.contentHeight()}
			m.editor, _ = m.editor.Update(sub)
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.applied {
			m.editor.applied = false
			m.statusText = "settings applied, ctrl-s to save"
			return m, tea.Batch(cmd, clearStatusTick())
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			return m.showSelected()
		case "h":
			return m.hidePreview()
		case "c":
			return m.toggleClickToHide()
		case "r":
			return m.reload()
		case "e":
			m.editor.Start(m.cfg(), m.formWidth())
			return m, m.editor.form.Init()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	// Remaining keys drive the icon list; refetch windows when the
	// cursor lands on a different icon.
	var cmd tea.Cmd
	m.icons, cmd = m.icons.Update(msg)
	if m.selectedLabel() != m.selLabel {
		m.refreshSelection()
	}
	return m, cmd
}

func (m model) showSelected() (model, tea.Cmd) {
	label := m.selectedLabel()
	if label == "" {
		return m, nil
	}
	if !m.daemonConnected {
		m.statusText = "daemon not connected"
		return m, clearStatusTick()
	}
	if err := m.client.ShowPreview(label); err != nil {
		m.statusText = fmt.Sprintf("error: %v", err)
	} else {
		m.statusText = fmt.Sprintf("preview: %s", label)
		m.refreshDaemon()
	}
	return m, clearStatusTick()
}

func (m model) hidePreview() (model, tea.Cmd) {
	if !m.daemonConnected {
		m.statusText = "daemon not connected"
		return m, clearStatusTick()
	}
	if err := m.client.HidePreview(); err != nil {
		m.statusText = fmt.Sprintf("error: %v", err)
	} else {
		m.statusText = "preview hidden"
		m.refreshDaemon()
	}
	return m, clearStatusTick()
}

func (m model) toggleClickToHide() (model, tea.Cmd) {
	if !m.daemonConnected {
		m.statusText = "daemon not connected"
		return m, clearStatusTick()
	}
	next := !m.status.ClickToHide
	if err := m.client.SetClickToHide(next); err != nil {
		m.statusText = fmt.Sprintf("error: %v", err)
	} else if next {
		m.statusText = "click-to-hide on"
	} else {
		m.statusText = "click-to-hide off"
	}
	m.refreshDaemon()
	return m, clearStatusTick()
}

// reload re-reads the config file and, when connected, has the daemon do
// the same. Unsaved form edits are discarded.
func (m model) reload() (model, tea.Cmd) {
	if m.daemonConnected {
		if err := m.client.Reload(); err != nil {
			m.statusText = fmt.Sprintf("error: %v", err)
			return m, clearStatusTick()
		}
	}

	m.loadConfig()
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}
	m.editor = NewSettingsEditor(m.cfg())

	if m.daemonConnected {
		m.refreshDaemon()
		m.statusText = "config reloaded, daemon notified"
	} else {
		m.statusText = "config reloaded"
	}
	return m, clearStatusTick()
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, m.status, m.cacheCapacity(), m.width)
	message := renderMessageLine(m.statusText, m.width)
	helpBar := renderHelpBar(m.editor.editing, m.width)

	contentHeight := m.height - lipgloss.Height(statusBar) - lipgloss.Height(message) - lipgloss.Height(helpBar)
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.editor.editing:
		content = m.editor.View(contentHeight)
	default:
		content = m.viewDashboard(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		message,
		helpBar,
	)
}

func (m model) cacheCapacity() int {
	if cfg := m.cfg(); cfg != nil {
		return cfg.CacheCapacity
	}
	return 0
}

func (m model) viewDashboard(height int) string {
	sidebarWidth := m.sidebarWidth()
	paneWidth := m.width - sidebarWidth - 3 // 3 for separator + padding
	if paneWidth < 10 {
		paneWidth = 10
	}

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(height).
		Render(m.icons.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))

	pane := m.renderStripPane(paneWidth, height)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, pane)
}

// renderStripPane sketches the preview strip the daemon would compose for
// the selected icon's windows, with the window titles below it.
func (m model) renderStripPane(width, height int) string {
	dimCentered := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center, lipgloss.Center)

	if !m.daemonConnected {
		return dimCentered.Render("daemon not running")
	}
	if m.selLabel == "" {
		return dimCentered.Render("no taskbar icons")
	}
	if len(m.selWindows) == 0 {
		return dimCentered.Render(m.selLabel + ": no preview windows")
	}

	thumbWidth := 240
	maxWidth := 0
	if cfg := m.cfg(); cfg != nil {
		thumbWidth = cfg.Preview.ThumbnailWidth
		maxWidth = int(previewScreenWidth * cfg.Preview.MaxWidthFraction)
	}
	cards, size := panel.PreviewCards(len(m.selWindows), thumbWidth, maxWidth)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Render(fmt.Sprintf(" %s  [%d windows]", m.selLabel, len(m.selWindows)))

	summary := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(" " + summarizeStrip(cards, size))

	titleLines := make([]string, 0, len(m.selWindows))
	for i, w := range m.selWindows {
		text := w.Title
		if text == "" {
			text = "(untitled)"
		}
		if w.Minimized {
			text += " (minimized)"
		}
		titleLines = append(titleLines, fmt.Sprintf(" %d. %s", i+1, text))
	}

	sketchHeight := height - 3 - len(titleLines)
	if sketchHeight < 5 {
		sketchHeight = 5
	}
	sketchWidth := width - 2
	if sketchWidth < 5 {
		sketchWidth = 5
	}
	lines := renderStripSketch(cards, size, sketchWidth, sketchHeight)

	sketch := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Render(strings.Join(lines, "\n"))

	titles := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(strings.Join(titleLines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, sketch, titles)
}
