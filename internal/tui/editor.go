package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockpeek/internal/config"
)

// SettingsEditor is the form for the daemon tunables. Submitting applies
// the values to the in-memory config; writing the file is a separate
// ctrl+s step so several edits can land in one save.
type SettingsEditor struct {
	cfg *config.Config

	width int

	editing bool
	applied bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fTrayRefresh   string
	fHoverPoll     string
	fGracePoll     string
	fClickToHide   string
	fOffsetPx      string
	fMaxWidthFrac  string
	fThumbWidth    string
	fBackground    string
	fMinWindowSize string
	fPosTolerance  string
	fSizeTolerance string
	fCacheCapacity string
}

// NewSettingsEditor creates a SettingsEditor over the loaded config.
func NewSettingsEditor(cfg *config.Config) SettingsEditor {
	return SettingsEditor{cfg: cfg}
}

// Start opens the form prefilled from the config.
func (e *SettingsEditor) Start(cfg *config.Config, width int) {
	e.cfg = cfg

	src := cfg
	if src == nil {
		src = config.DefaultConfig()
	}

	e.fTrayRefresh = strconv.Itoa(src.TrayRefreshMS)
	e.fHoverPoll = strconv.Itoa(src.HoverPollMS)
	e.fGracePoll = strconv.Itoa(src.GracePollMS)
	e.fOffsetPx = strconv.Itoa(src.Preview.OffsetPx)
	e.fMaxWidthFrac = strconv.FormatFloat(src.Preview.MaxWidthFraction, 'g', -1, 64)
	e.fThumbWidth = strconv.Itoa(src.Preview.ThumbnailWidth)
	e.fBackground = src.Preview.Background
	e.fMinWindowSize = strconv.Itoa(src.Match.MinWindowSize)
	e.fPosTolerance = strconv.Itoa(src.Match.PositionTolerance)
	e.fSizeTolerance = strconv.Itoa(src.Match.SizeTolerance)
	e.fCacheCapacity = strconv.Itoa(src.CacheCapacity)
	if src.ClickToHideEnabled() {
		e.fClickToHide = "on"
	} else {
		e.fClickToHide = "off"
	}

	clickOpts := []huh.Option[string]{
		huh.NewOption("on", "on"),
		huh.NewOption("off", "off"),
	}

	w := width
	if w < 40 {
		w = 40
	}
	e.width = w

	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("tray_refresh_ms").
				Title("Tray Refresh (ms)").
				Description("Taskbar re-scan period").
				Value(&e.fTrayRefresh),

			huh.NewInput().
				Key("hover_poll_ms").
				Title("Hover Poll (ms)").
				Description("Pointer poll period while idle").
				Value(&e.fHoverPoll),

			huh.NewInput().
				Key("grace_poll_ms").
				Title("Grace Poll (ms)").
				Description("Pointer poll period during the leave grace").
				Value(&e.fGracePoll),

			huh.NewSelect[string]().
				Key("click_to_hide").
				Title("Click To Hide").
				Description("Dismiss the preview on outside clicks").
				Options(clickOpts...).
				Value(&e.fClickToHide),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("offset_px").
				Title("Preview Offset (px)").
				Description("Gap between the strip and the icon").
				Value(&e.fOffsetPx),

			huh.NewInput().
				Key("max_width_fraction").
				Title("Max Width Fraction").
				Description("Strip width cap as a fraction of screen width").
				Value(&e.fMaxWidthFrac),

			huh.NewInput().
				Key("thumbnail_width").
				Title("Thumbnail Width (px)").
				Value(&e.fThumbWidth),

			huh.NewInput().
				Key("background").
				Title("Background").
				Description("Panel fill as #rrggbb").
				Value(&e.fBackground),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("min_window_size").
				Title("Min Window Size (px)").
				Description("Windows smaller than this are dropped").
				Value(&e.fMinWindowSize),

			huh.NewInput().
				Key("position_tolerance").
				Title("Position Tolerance (px)").
				Value(&e.fPosTolerance),

			huh.NewInput().
				Key("size_tolerance").
				Title("Size Tolerance (px)").
				Value(&e.fSizeTolerance),

			huh.NewInput().
				Key("cache_capacity").
				Title("Cache Capacity").
				Description("Retained preview images").
				Value(&e.fCacheCapacity),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	e.editing = true
	e.applied = false
}

// Update handles input while the form is open.
func (e SettingsEditor) Update(msg tea.Msg) (SettingsEditor, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			e.editing = false
			e.form = nil
			return e, nil
		}
	case tea.WindowSizeMsg:
		e.width = msg.Width
	}

	if e.form == nil {
		return e, nil
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.applyForm()
		e.editing = false
		e.applied = true
		e.form = nil
		return e, nil
	}

	return e, cmd
}

// applyForm writes parseable, in-range values back to the config.
// Out-of-range input keeps the old value rather than failing the save
// later.
func (e *SettingsEditor) applyForm() {
	if e.cfg == nil {
		return
	}

	if v, err := strconv.Atoi(e.fTrayRefresh); err == nil && v >= 200 {
		e.cfg.TrayRefreshMS = v
	}
	if v, err := strconv.Atoi(e.fHoverPoll); err == nil && v >= 10 && v <= 1000 {
		e.cfg.HoverPollMS = v
	}
	if v, err := strconv.Atoi(e.fGracePoll); err == nil && v >= 10 && v <= 1000 {
		e.cfg.GracePollMS = v
	}
	if v, err := strconv.Atoi(e.fOffsetPx); err == nil && v >= 0 {
		e.cfg.Preview.OffsetPx = v
	}
	if v, err := strconv.ParseFloat(e.fMaxWidthFrac, 64); err == nil && v > 0 && v <= 1 {
		e.cfg.Preview.MaxWidthFraction = v
	}
	if v, err := strconv.Atoi(e.fThumbWidth); err == nil && v >= 64 {
		e.cfg.Preview.ThumbnailWidth = v
	}
	probe := config.Preview{Background: e.fBackground}
	if _, err := probe.BackgroundRGBA(); err == nil {
		e.cfg.Preview.Background = e.fBackground
	}
	if v, err := strconv.Atoi(e.fMinWindowSize); err == nil && v >= 1 {
		e.cfg.Match.MinWindowSize = v
	}
	if v, err := strconv.Atoi(e.fPosTolerance); err == nil && v >= 0 {
		e.cfg.Match.PositionTolerance = v
	}
	if v, err := strconv.Atoi(e.fSizeTolerance); err == nil && v >= 0 {
		e.cfg.Match.SizeTolerance = v
	}
	if v, err := strconv.Atoi(e.fCacheCapacity); err == nil && v >= 2 {
		e.cfg.CacheCapacity = v
	}
	switch e.fClickToHide {
	case "on":
		e.cfg.SetClickToHide(true)
	case "off":
		e.cfg.SetClickToHide(false)
	}
}

// View renders the open form.
func (e SettingsEditor) View(height int) string {
	if !e.editing || e.form == nil {
		return ""
	}

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	content := header + "\n\n" + e.form.View()

	style := lipgloss.NewStyle().
		Width(e.width).
		Height(height).
		Padding(1, 2)

	return style.Render(content)
}
