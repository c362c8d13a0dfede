package picker

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/1broseidon/dockpeek/internal/ipc"
)

// Daemon is the slice of the IPC client the picker drives.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListIcons() (*ipc.IconsData, error)
	ListWindows(label string) (*ipc.WindowsData, error)
	ShowPreview(label string) error
	HidePreview() error
	WindowAction(action string, label string, windowID int) error
}

// Flow walks the user from the taskbar app list down to a single window
// action: apps, then the windows of the chosen app, then a control for the
// chosen window. Every level is fetched from the daemon when entered, so the
// menus always reflect the live tray.
type Flow struct {
	backend Backend
	daemon  Daemon
}

// NewFlow creates a picker flow on the given backend and daemon connection.
func NewFlow(backend Backend, daemon Daemon) *Flow {
	return &Flow{backend: backend, daemon: daemon}
}

const (
	actionBack = "__back__"
	actionNoop = "noop"
	actionShow = "show"
	actionHide = "hide"

	appPrefix    = "app:"
	windowPrefix = "win:"
)

// Run shows the menus until the user executes an action or cancels.
// Cancelling at the top level returns ErrCancelled; cancelling deeper in the
// hierarchy goes back one level.
func (f *Flow) Run() error {
	for {
		app, err := f.pickApp()
		if err != nil {
			return err
		}
		switch {
		case app.hide:
			return f.daemon.HidePreview()
		case app.quick:
			return f.daemon.ShowPreview(app.label)
		}

		err = f.browseWindows(app.label)
		if errors.Is(err, ErrCancelled) {
			continue
		}
		return err
	}
}

type appChoice struct {
	label string
	hide  bool
	quick bool
}

func (f *Flow) pickApp() (appChoice, error) {
	status, err := f.daemon.GetStatus()
	if err != nil {
		return appChoice{}, err
	}
	icons, err := f.daemon.ListIcons()
	if err != nil {
		return appChoice{}, err
	}
	if len(icons.Icons) == 0 {
		return appChoice{}, fmt.Errorf("no taskbar icons detected")
	}

	items := make([]Item, 0, len(icons.Icons)+2)
	for _, ic := range icons.Icons {
		items = append(items, Item{
			Label:    ic.Label,
			Action:   appPrefix + ic.Label,
			Icon:     themeIcon(ic.Label),
			Meta:     "app preview windows",
			IsActive: status.Target != "" && ic.Label == status.Target,
		})
	}
	if status.Visible {
		items = append(items,
			Item{Label: "────────────────", Action: actionNoop, IsDivider: true},
			Item{Label: "Hide preview", Action: actionHide, Icon: "window-close", Meta: "dismiss hide preview"},
		)
	}

	msg := f.message(appContext(status, len(icons.Icons)), "Alt+Enter: peek preview")

	for {
		res, err := f.backend.Show("dockpeek", items, msg)
		if err != nil {
			return appChoice{}, err
		}
		switch {
		case res.Item.IsHeader || res.Item.IsDivider || res.Item.Action == actionNoop:
			continue
		case res.Item.Action == actionHide:
			return appChoice{hide: true}, nil
		}
		return appChoice{
			label: strings.TrimPrefix(res.Item.Action, appPrefix),
			quick: res.ExitCode == ExitCustom1,
		}, nil
	}
}

// browseWindows shows the window list for one app and dispatches the chosen
// control. Returns ErrCancelled when the user backs out to the app list.
func (f *Flow) browseWindows(label string) error {
	for {
		sel, err := f.pickWindow(label)
		if err != nil {
			return err
		}
		switch {
		case sel.back:
			return ErrCancelled
		case sel.show:
			return f.daemon.ShowPreview(label)
		case sel.code == ExitCustom1:
			return f.daemon.WindowAction("activate", label, sel.id)
		case sel.code == ExitCustom2:
			return f.daemon.WindowAction("close", label, sel.id)
		}

		err = f.pickAction(label, sel.id, sel.title)
		if errors.Is(err, ErrCancelled) {
			continue
		}
		return err
	}
}

type windowChoice struct {
	back  bool
	show  bool
	id    int
	title string
	code  int
}

func (f *Flow) pickWindow(label string) (windowChoice, error) {
	wd, err := f.daemon.ListWindows(label)
	if err != nil {
		return windowChoice{}, err
	}

	items := make([]Item, 0, len(wd.Windows)+3)
	items = append(items,
		Item{Label: "← Back", Action: actionBack, Icon: "go-previous"},
		Item{Label: "Show preview", Action: actionShow, Icon: "image-x-generic", Meta: "preview strip thumbnails"},
	)
	for _, w := range wd.Windows {
		title := strings.TrimSpace(w.Title)
		if title == "" {
			title = fmt.Sprintf("window %d", w.ID)
		}
		items = append(items, Item{
			Label:  title,
			Action: windowPrefix + strconv.Itoa(w.ID),
			Icon:   themeIcon(label),
			Info:   strconv.Itoa(w.ID),
			Meta:   "window " + label,
			// Minimized windows reuse the urgent highlight so they stand out.
			IsUrgent: w.Minimized,
		})
	}
	if len(wd.Windows) == 0 {
		items = append(items, Item{Label: "(no windows)", Action: actionNoop, Icon: "dialog-information", IsHeader: true})
	}

	msg := f.message(
		fmt.Sprintf("%s • %d windows", label, len(wd.Windows)),
		"Alt+Enter: activate | Alt+d: close",
	)

	for {
		res, err := f.backend.Show(label, items, msg)
		if err != nil {
			return windowChoice{}, err
		}
		switch {
		case res.Item.IsHeader || res.Item.IsDivider || res.Item.Action == actionNoop:
			continue
		case res.Item.Action == actionBack:
			return windowChoice{back: true}, nil
		case res.Item.Action == actionShow:
			return windowChoice{show: true}, nil
		}
		id, err := strconv.Atoi(strings.TrimPrefix(res.Item.Action, windowPrefix))
		if err != nil {
			continue
		}
		return windowChoice{id: id, title: res.Item.Label, code: res.ExitCode}, nil
	}
}

func (f *Flow) pickAction(label string, windowID int, title string) error {
	items := []Item{
		{Label: "← Back", Action: actionBack, Icon: "go-previous"},
		{Label: "Activate", Action: "activate", Icon: "go-jump", Meta: "focus raise activate"},
		{Label: "Minimize", Action: "minimize", Icon: "go-bottom", Meta: "iconify minimize"},
		{Label: "Maximize", Action: "maximize", Icon: "view-fullscreen", Meta: "maximize restore"},
		{Label: "Close", Action: "close", Icon: "window-close", Meta: "close quit"},
		{Label: "Terminate", Action: "terminate", Icon: "process-stop", Meta: "kill force terminate"},
	}

	res, err := f.backend.Show(label, items, f.message(title, ""))
	if err != nil {
		return err
	}
	if res.Item.Action == actionBack {
		return ErrCancelled
	}
	return f.daemon.WindowAction(res.Item.Action, label, windowID)
}

// message assembles the context line and keybinding hints for the backend's
// message bar, respecting its markup and custom-key support.
func (f *Flow) message(context string, hints string) string {
	caps := f.backend.Capabilities()
	if !caps.MessageBar {
		return ""
	}
	context = strings.TrimSpace(context)
	if !caps.CustomKeys {
		hints = ""
	}
	if caps.Markup {
		if context != "" {
			context = html.EscapeString(context)
		}
		if hints != "" {
			hints = fmt.Sprintf("<span size='small'>%s</span>", hints)
		}
	}
	switch {
	case context == "":
		return hints
	case hints == "":
		return context
	default:
		return context + "\n" + hints
	}
}

func appContext(status *ipc.StatusData, iconCount int) string {
	parts := []string{fmt.Sprintf("%d apps", iconCount)}
	if status.Visible && status.Target != "" {
		parts = append(parts, "preview: "+status.Target)
	}
	if status.ClickToHide {
		parts = append(parts, "click-to-hide on")
	}
	return strings.Join(parts, " • ")
}

// themeIcon guesses a freedesktop icon name from a taskbar label. Labels are
// app names more often than not, and the lowercased name usually matches the
// icon theme ("Firefox" -> "firefox").
func themeIcon(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
}
