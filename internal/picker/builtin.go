package picker

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// builtinBackend renders the picker inside the current terminal with a
// bubbletea list. It is the fallback when no launcher is installed.
type builtinBackend struct{}

// NewBuiltinBackend creates the terminal list backend.
func NewBuiltinBackend() Backend {
	return &builtinBackend{}
}

func (b *builtinBackend) Capabilities() Capabilities {
	return Capabilities{
		Icons:         false,
		Markup:        false,
		NonSelectable: true,
		CustomKeys:    true,
		IndexOutput:   true,
		MessageBar:    true,
		RowStates:     true,
	}
}

func (b *builtinBackend) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("picker: no items to show")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return SelectResult{}, fmt.Errorf("builtin picker requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newBuiltinModel(prompt, items, message), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return SelectResult{}, fmt.Errorf("builtin picker failed: %w", err)
	}

	m, ok := final.(builtinModel)
	if !ok || m.choice < 0 {
		return SelectResult{}, ErrCancelled
	}
	return SelectResult{Item: items[m.choice], ExitCode: m.exitCode}, nil
}

// listEntry adapts an Item to the bubbles list.
type listEntry struct {
	item  Item
	index int
}

func (e listEntry) Title() string {
	prefix := "  "
	if e.item.IsActive {
		prefix = "* "
	} else if e.item.IsUrgent {
		prefix = "! "
	}
	return prefix + sanitizeLabel(e.item.Label)
}

func (e listEntry) Description() string { return "" }
func (e listEntry) FilterValue() string { return e.item.Label + " " + e.item.Meta }

type builtinModel struct {
	list    list.Model
	message string

	choice   int
	exitCode int
}

func newBuiltinModel(prompt string, items []Item, message string) builtinModel {
	entries := make([]list.Item, 0, len(items))
	selected := -1
	firstSelectable := -1
	for i, item := range items {
		entries = append(entries, listEntry{item: item, index: i})
		if item.IsHeader || item.IsDivider {
			continue
		}
		if firstSelectable == -1 {
			firstSelectable = i
		}
		if item.IsActive && selected == -1 {
			selected = i
		}
	}
	if selected == -1 {
		selected = firstSelectable
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(entries, delegate, 0, 0)
	l.Title = prompt
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	if selected >= 0 {
		l.Select(selected)
	}

	return builtinModel{list: l, message: message, choice: -1}
}

// Init implements tea.Model.
func (m builtinModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m builtinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		listHeight := msg.Height - m.messageHeight()
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(msg.Width, listHeight)
		return m, nil

	case tea.KeyMsg:
		// While the filter input is open the list owns the keyboard.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = -1
			return m, tea.Quit
		case "enter":
			return m.choose(ExitNormal)
		case "alt+enter":
			return m.choose(ExitCustom1)
		case "alt+d":
			return m.choose(ExitCustom2)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m builtinModel) choose(exitCode int) (tea.Model, tea.Cmd) {
	entry, ok := m.list.SelectedItem().(listEntry)
	if !ok {
		return m, nil
	}
	// Headers and dividers are not selectable; stay on the list.
	if entry.item.IsHeader || entry.item.IsDivider {
		return m, nil
	}
	m.choice = entry.index
	m.exitCode = exitCode
	return m, tea.Quit
}

func (m builtinModel) messageHeight() int {
	if m.message == "" {
		return 0
	}
	return strings.Count(m.message, "\n") + 1
}

// View implements tea.Model.
func (m builtinModel) View() string {
	view := m.list.View()
	if m.message == "" {
		return view
	}
	bar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(m.message)
	return lipgloss.JoinVertical(lipgloss.Left, view, bar)
}
