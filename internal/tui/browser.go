package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/repolens/internal/report"
)

// Action represents the action to take after browsing
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionReadme
	ActionQuit
)

// BrowseResult holds the result of the browser
type BrowseResult struct {
	Action Action
	Entry  *Entry
	// Readme is set when the user completed the README wizard.
	Readme *ReadmeOptions
}

// BrowseOptions configures the browser.
type BrowseOptions struct {
	// Target is the analyzed path or URL, used to prefill the wizard.
	Target string
	// AllowReadme enables the "r" key and the README wizard.
	AllowReadme bool
	// Readme holds the wizard defaults.
	Readme ReadmeOptions
}

// entryItem implements list.Item for report entries
type entryItem struct {
	entry Entry
}

func (i entryItem) Title() string {
	return i.entry.Name
}

func (i entryItem) Description() string {
	status := i.entry.Status
	if status == "" {
		status = glyphPlain
	}
	return status + " " + i.entry.Detail
}

func (i entryItem) FilterValue() string {
	return i.entry.Name + " " + i.entry.Group
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the report browser
type Model struct {
	list     list.Model
	opts     BrowseOptions
	result   BrowseResult
	wizard   *wizardModel
	quitting bool
	width    int
	height   int
}

// NewBrowser creates a browser over a report
func NewBrowser(r *report.Report, opts BrowseOptions) Model {
	items := buildGroupedItems(buildGroups(r))

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = fmt.Sprintf("repolens - %s (%d entries)", filepath.Base(r.Root()), len(items)-headerCount(items))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	m := Model{list: l, opts: opts}
	skipHeaders(&m.list, 1)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.wizard != nil {
		return m.updateWizard(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				e := item.entry
				m.result = BrowseResult{Action: ActionSelect, Entry: &e}
				m.quitting = true
				return m, tea.Quit
			}

		case "r":
			if m.opts.AllowReadme {
				defaults := m.opts.Readme
				if defaults.Target == "" {
					defaults.Target = m.opts.Target
				}
				w := newWizardModel(defaults)
				w.width, w.height = m.width, m.height
				m.wizard = &w
				return m, w.Init()
			}

		case "q", "esc":
			m.result = BrowseResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		if isHeaderSelected(&m.list) {
			skipHeaders(&m.list, navigationDirection(msg))
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		m.list.SetSize(size.Width, size.Height-4)
		m.wizard.width, m.wizard.height = size.Width, size.Height
	}

	done, opts, cmd := m.wizard.Update(msg)
	if !done {
		return m, cmd
	}
	m.wizard = nil
	if opts == nil {
		// cancelled: back to the report
		return m, nil
	}
	m.result = BrowseResult{Action: ActionReadme, Readme: opts}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.wizard != nil {
		return m.wizard.View()
	}

	keys := "[enter] Select  [/] Filter  [q] Quit"
	if m.opts.AllowReadme {
		keys = "[enter] Select  [r] README  [/] Filter  [q] Quit"
	}
	return m.list.View() + "\n" + helpStyle.Render(keys)
}

// Result returns the browser result
func (m Model) Result() BrowseResult {
	return m.result
}

// RunBrowser runs the interactive report browser
func RunBrowser(r *report.Report, opts BrowseOptions) (BrowseResult, error) {
	m := NewBrowser(r, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return BrowseResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimpleView is a non-interactive rendering of the browser sections, used
// when the output is not a terminal.
func SimpleView(r *report.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("repolens - %s\n", r.Root()))
	sb.WriteString(strings.Repeat("─", 60) + "\n")

	groups := buildGroups(r)
	if len(groups) == 0 {
		sb.WriteString("\nNothing to report: no analyzable files found.\n")
		return sb.String()
	}

	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", g.label, len(g.entries)))
		for _, e := range g.entries {
			sb.WriteString(fmt.Sprintf("  %s %s", e.Status, e.Name))
			if e.Detail != "" {
				sb.WriteString(" | " + e.Detail)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
