package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/repolens/internal/report"
)

// Status glyphs shown in front of entry details.
const (
	glyphOK      = "✓"
	glyphWarn    = "⚠"
	glyphIgnored = "○"
	glyphPlain   = "●"
)

// Entry is one selectable line of the browser.
type Entry struct {
	Group  string
	Name   string
	Detail string
	// Path is the repository path the entry refers to, if any.
	Path   string
	Status string
}

// group is a titled section of the report.
type group struct {
	label   string
	entries []Entry
}

// headerItem is a non-selectable group separator in the browser list.
type headerItem struct {
	label string
}

func (h headerItem) FilterValue() string { return "" }
func (h headerItem) Title() string       { return h.label }
func (h headerItem) Description() string { return "" }

// buildGroups splits a report into sections. Empty sections are left out.
func buildGroups(r *report.Report) []group {
	var groups []group
	add := func(label string, entries []Entry) {
		if len(entries) > 0 {
			groups = append(groups, group{label: label, entries: entries})
		}
	}

	var langs []Entry
	counts := r.Languages()
	for _, name := range r.LanguageNames() {
		langs = append(langs, Entry{
			Group:  "Languages",
			Name:   name,
			Detail: plural(counts[name], "source file"),
			Status: glyphPlain,
		})
	}
	add("Languages", langs)

	var frameworks []Entry
	for _, h := range r.Frameworks() {
		frameworks = append(frameworks, Entry{Group: "Frameworks", Name: h.Name, Detail: h.Evidence, Status: glyphOK})
	}
	add("Frameworks", frameworks)

	// Dependencies arrive sorted by ecosystem.
	var (
		eco  report.Ecosystem
		deps []Entry
	)
	flush := func() {
		add(fmt.Sprintf("Dependencies (%s)", eco), deps)
		deps = nil
	}
	for _, d := range r.Dependencies() {
		if d.Ecosystem != eco {
			flush()
			eco = d.Ecosystem
		}
		detail := d.Constraint
		if detail == "" {
			detail = "any version"
		}
		if d.Scope != "" {
			detail += " | " + d.Scope
		}
		deps = append(deps, Entry{
			Group:  fmt.Sprintf("Dependencies (%s)", d.Ecosystem),
			Name:   d.Name,
			Detail: detail + " | " + truncatePath(d.Manifest, 30),
			Path:   d.Manifest,
			Status: glyphPlain,
		})
	}
	flush()

	var manifests []Entry
	for _, m := range r.Manifests() {
		e := Entry{
			Group:  "Manifests",
			Name:   m.Path,
			Detail: fmt.Sprintf("%s | %s", m.Format, plural(m.Dependencies, "dependency")),
			Path:   m.Path,
			Status: glyphOK,
		}
		if m.Partial {
			e.Status = glyphWarn
			e.Detail += " | partial: " + m.Error
		}
		manifests = append(manifests, e)
	}
	add("Manifests", manifests)

	var ignored []Entry
	for _, rule := range r.IgnoreRules() {
		ignored = append(ignored, Entry{Group: "Ignored", Name: rule.Pattern, Detail: rule.Reason, Status: glyphIgnored})
	}
	add("Ignored", ignored)

	var skipped []Entry
	for _, s := range r.Skipped() {
		skipped = append(skipped, Entry{Group: "Skipped", Name: s.Path, Detail: s.Reason, Path: s.Path, Status: glyphWarn})
	}
	add("Skipped", skipped)

	var commands []Entry
	c := r.Insights().Commands
	for _, kv := range [][2]string{
		{"install", c.Install}, {"run", c.Run}, {"dev", c.Dev}, {"test", c.Test}, {"build", c.Build},
	} {
		if kv[1] != "" {
			commands = append(commands, Entry{Group: "Commands", Name: kv[0], Detail: kv[1], Status: glyphPlain})
		}
	}
	add("Commands", commands)

	return groups
}

// buildGroupedItems flattens groups into list items with headerItem
// separators.
func buildGroupedItems(groups []group) []list.Item {
	if len(groups) == 0 {
		return nil
	}
	var items []list.Item
	for _, g := range groups {
		items = append(items, headerItem{label: fmt.Sprintf("%s (%d)", g.label, len(g.entries))})
		for _, e := range g.entries {
			items = append(items, entryItem{entry: e})
		}
	}
	return items
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// headerStyle is the style for group header items.
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("241")).
	PaddingLeft(2)

// groupedDelegate renders both headerItem and entryItem in the browser list.
type groupedDelegate struct {
	inner list.DefaultDelegate
}

func newGroupedDelegate() groupedDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return groupedDelegate{inner: delegate}
}

func (d groupedDelegate) Height() int                             { return d.inner.Height() }
func (d groupedDelegate) Spacing() int                            { return d.inner.Spacing() }
func (d groupedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d groupedDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if h, ok := item.(headerItem); ok {
		fmt.Fprint(w, headerStyle.Render(h.label))
		return
	}
	d.inner.Render(w, m, index, item)
}

// skipHeaders moves the cursor off a headerItem. direction should be 1
// (down) or -1 (up).
func skipHeaders(l *list.Model, direction int) {
	items := l.Items()
	if len(items) == 0 {
		return
	}

	idx := l.Index()
	if _, ok := items[idx].(headerItem); !ok {
		return
	}

	next := idx + direction
	if next >= 0 && next < len(items) {
		if _, ok := items[next].(headerItem); !ok {
			l.Select(next)
			return
		}
	}

	opposite := idx - direction
	if opposite >= 0 && opposite < len(items) {
		if _, ok := items[opposite].(headerItem); !ok {
			l.Select(opposite)
			return
		}
	}

	for i := 0; i < len(items); i++ {
		candidate := ((idx+i*direction)%len(items) + len(items)) % len(items)
		if _, ok := items[candidate].(headerItem); !ok {
			l.Select(candidate)
			return
		}
	}
}

func isHeaderSelected(l *list.Model) bool {
	if item := l.SelectedItem(); item != nil {
		_, ok := item.(headerItem)
		return ok
	}
	return false
}

// navigationDirection returns -1 for up/k keys and 1 otherwise.
func navigationDirection(msg tea.KeyMsg) int {
	switch msg.String() {
	case "up", "k", "pgup", "home", "g":
		return -1
	default:
		return 1
	}
}

// headerCount returns the number of headerItems in items.
func headerCount(items []list.Item) int {
	count := 0
	for _, item := range items {
		if _, ok := item.(headerItem); ok {
			count++
		}
	}
	return count
}
