package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/repolens/internal/config"
)

// ReadmeOptions are the choices collected by the README wizard.
type ReadmeOptions struct {
	Target   string
	Provider string
	Model    string
	Output   string
}

// wizardStep identifies the current step.
type wizardStep int

const (
	stepTarget wizardStep = iota
	stepProvider
	stepModel
	stepOutput
	stepConfirm
)

// wizardModel drives the README generation wizard.
type wizardModel struct {
	step     wizardStep
	defaults ReadmeOptions

	targetInput  textinput.Model
	providerList list.Model
	modelInput   textinput.Model
	outputInput  textinput.Model

	selectedTarget   string
	selectedProvider string
	selectedModel    string
	selectedOutput   string

	width  int
	height int
}

// providerItem implements list.Item for provider selection.
type providerItem struct {
	name        string
	description string
}

func (p providerItem) Title() string       { return p.name }
func (p providerItem) Description() string { return p.description }
func (p providerItem) FilterValue() string { return p.name }

var providers = []providerItem{
	{config.ProviderOllama, "Local models served by Ollama"},
	{config.ProviderGemini, "Google Gemini API (reads the API key from the environment)"},
}

var (
	wizardTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	wizardStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardActiveStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	wizardLabelStyle = lipgloss.NewStyle().
				Bold(true).
				MarginBottom(1)

	wizardValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	wizardDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func newWizardModel(defaults ReadmeOptions) wizardModel {
	if defaults.Provider == "" {
		defaults.Provider = config.ProviderOllama
	}
	if defaults.Output == "" {
		defaults.Output = "README.md"
	}

	ti := textinput.New()
	ti.Placeholder = "path/to/project or https://github.com/owner/repo"
	ti.SetValue(defaults.Target)
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60
	ti.ShowSuggestions = true

	mi := textinput.New()
	mi.Placeholder = "model name"
	mi.CharLimit = 128
	mi.Width = 40

	oi := textinput.New()
	oi.Placeholder = "README.md"
	oi.SetValue(defaults.Output)
	oi.CharLimit = 256
	oi.Width = 60
	oi.ShowSuggestions = true

	return wizardModel{
		step:        stepTarget,
		defaults:    defaults,
		targetInput: ti,
		modelInput:  mi,
		outputInput: oi,
	}
}

func (w *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes a message and returns (done, options, cmd).
// done=true with non-nil options means the wizard completed.
// done=true with nil options means it was cancelled.
func (w *wizardModel) Update(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return true, nil, nil
		case tea.KeyEsc:
			return w.handleBack()
		}
	}

	switch w.step {
	case stepTarget:
		return w.updateTarget(msg)
	case stepProvider:
		return w.updateProvider(msg)
	case stepModel:
		return w.updateModel(msg)
	case stepOutput:
		return w.updateOutput(msg)
	case stepConfirm:
		return w.updateConfirm(msg)
	}

	return false, nil, nil
}

func (w *wizardModel) handleBack() (bool, *ReadmeOptions, tea.Cmd) {
	switch w.step {
	case stepTarget:
		return true, nil, nil
	case stepProvider:
		w.step = stepTarget
		w.targetInput.Focus()
		return false, nil, textinput.Blink
	case stepModel:
		w.step = stepProvider
		w.modelInput.Blur()
		return false, nil, nil
	case stepOutput:
		w.step = stepModel
		w.outputInput.Blur()
		w.modelInput.Focus()
		return false, nil, textinput.Blink
	case stepConfirm:
		w.step = stepOutput
		w.outputInput.Focus()
		return false, nil, textinput.Blink
	}
	return false, nil, nil
}

func (w *wizardModel) updateTarget(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		target := strings.TrimSpace(w.targetInput.Value())
		if target == "" {
			return false, nil, nil
		}
		w.selectedTarget = target
		w.step = stepProvider
		w.targetInput.Blur()
		w.loadProviders()
		return false, nil, nil
	}

	var cmd tea.Cmd
	w.targetInput, cmd = w.targetInput.Update(msg)
	w.targetInput.SetSuggestions(pathSuggestions(w.targetInput.Value(), true))
	return false, nil, cmd
}

func (w *wizardModel) updateProvider(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if item, ok := w.providerList.SelectedItem().(providerItem); ok {
			w.selectedProvider = item.name
			w.step = stepModel
			w.modelInput.SetValue(suggestModel(w.defaults, item.name))
			w.modelInput.Focus()
			return false, nil, textinput.Blink
		}
		return false, nil, nil
	}

	var cmd tea.Cmd
	w.providerList, cmd = w.providerList.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateModel(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		model := strings.TrimSpace(w.modelInput.Value())
		if model == "" {
			return false, nil, nil
		}
		w.selectedModel = model
		w.step = stepOutput
		w.modelInput.Blur()
		w.outputInput.Focus()
		return false, nil, textinput.Blink
	}

	var cmd tea.Cmd
	w.modelInput, cmd = w.modelInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateOutput(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		output := strings.TrimSpace(w.outputInput.Value())
		if output == "" {
			return false, nil, nil
		}
		w.selectedOutput = output
		w.step = stepConfirm
		w.outputInput.Blur()
		return false, nil, nil
	}

	var cmd tea.Cmd
	w.outputInput, cmd = w.outputInput.Update(msg)
	w.outputInput.SetSuggestions(pathSuggestions(w.outputInput.Value(), false))
	return false, nil, cmd
}

func (w *wizardModel) updateConfirm(msg tea.Msg) (bool, *ReadmeOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "y":
			return true, &ReadmeOptions{
				Target:   w.selectedTarget,
				Provider: w.selectedProvider,
				Model:    w.selectedModel,
				Output:   w.selectedOutput,
			}, nil
		case "n":
			*w = newWizardModel(w.defaults)
			return false, nil, textinput.Blink
		}
	}
	return false, nil, nil
}

func (w *wizardModel) View() string {
	var b strings.Builder

	b.WriteString(wizardTitleStyle.Render("Generate README"))
	b.WriteString("\n")
	b.WriteString(w.progressBar())
	b.WriteString("\n\n")

	switch w.step {
	case stepTarget:
		b.WriteString(wizardLabelStyle.Render("Repository:"))
		b.WriteString("\n")
		b.WriteString(w.targetInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("A local directory or a git URL. Tab to complete paths."))
	case stepProvider:
		b.WriteString(wizardLabelStyle.Render("Select provider:"))
		b.WriteString("\n")
		b.WriteString(w.providerList.View())
	case stepModel:
		b.WriteString(wizardLabelStyle.Render("Model:"))
		b.WriteString("\n")
		b.WriteString(w.modelInput.View())
	case stepOutput:
		b.WriteString(wizardLabelStyle.Render("Output file:"))
		b.WriteString("\n")
		b.WriteString(w.outputInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Use - to print the README instead of writing a file."))
	case stepConfirm:
		b.WriteString(wizardLabelStyle.Render("Confirm:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Repository: %s\n", wizardValueStyle.Render(w.selectedTarget)))
		b.WriteString(fmt.Sprintf("  Provider:   %s\n", wizardValueStyle.Render(w.selectedProvider)))
		b.WriteString(fmt.Sprintf("  Model:      %s\n", wizardValueStyle.Render(w.selectedModel)))
		b.WriteString(fmt.Sprintf("  Output:     %s\n", wizardValueStyle.Render(w.selectedOutput)))
		b.WriteString("\n")
		b.WriteString(wizardDimStyle.Render("Enter to generate, n to restart, Esc to go back."))
	}

	return b.String()
}

func (w *wizardModel) progressBar() string {
	names := []string{"Repository", "Provider", "Model", "Output", "Confirm"}

	var parts []string
	for i, name := range names {
		label := fmt.Sprintf("%d. %s", i+1, name)
		if wizardStep(i) == w.step {
			parts = append(parts, wizardActiveStepStyle.Render(label))
		} else {
			parts = append(parts, wizardStepStyle.Render(label))
		}
	}

	return strings.Join(parts, wizardDimStyle.Render(" > "))
}

func (w *wizardModel) loadProviders() {
	items := make([]list.Item, len(providers))
	selected := 0
	for i, p := range providers {
		items[i] = p
		if p.name == w.defaults.Provider {
			selected = i
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 60, 10)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	if w.width > 0 {
		l.SetWidth(w.width - 4)
	}
	if w.height > 0 {
		l.SetHeight(w.height - 10)
	}
	l.Select(selected)

	w.providerList = l
}

// suggestModel keeps the configured model when the provider is unchanged
// and falls back to the provider default otherwise.
func suggestModel(defaults ReadmeOptions, provider string) string {
	if provider == defaults.Provider && defaults.Model != "" {
		return defaults.Model
	}
	return config.DefaultModel(provider)
}

// pathSuggestions completes val against the file system. Remote URLs get no
// suggestions.
func pathSuggestions(val string, dirsOnly bool) []string {
	if val == "" || strings.Contains(val, "://") {
		return nil
	}

	expanded := val
	if strings.HasPrefix(val, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = home + val[1:]
		}
	}

	dir := expanded
	prefix := ""
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		dir = filepath.Dir(expanded)
		prefix = filepath.Base(expanded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var suggestions []string
	for _, entry := range entries {
		if dirsOnly && !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		full := filepath.Join(dir, name)
		if strings.HasPrefix(val, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				full = "~" + strings.TrimPrefix(full, home)
			}
		}
		suggestions = append(suggestions, full)
	}
	return suggestions
}

// wizardProgram runs the wizard on its own, outside the browser.
type wizardProgram struct {
	wizard wizardModel
	result *ReadmeOptions
	done   bool
}

func (p wizardProgram) Init() tea.Cmd {
	return p.wizard.Init()
}

func (p wizardProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.wizard.width, p.wizard.height = size.Width, size.Height
	}
	done, opts, cmd := p.wizard.Update(msg)
	if done {
		p.result, p.done = opts, true
		return p, tea.Quit
	}
	return p, cmd
}

func (p wizardProgram) View() string {
	if p.done {
		return ""
	}
	return p.wizard.View()
}

// RunReadmeWizard asks for README options interactively. It returns nil
// when the user cancels.
func RunReadmeWizard(defaults ReadmeOptions) (*ReadmeOptions, error) {
	p := tea.NewProgram(wizardProgram{wizard: newWizardModel(defaults)}, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(wizardProgram).result, nil
}
