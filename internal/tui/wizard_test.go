package tui

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/repolens/internal/config"
)

func TestSuggestModel(t *testing.T) {
	defaults := ReadmeOptions{Provider: config.ProviderOllama, Model: "mistral"}

	tests := []struct {
		provider string
		want     string
	}{
		{config.ProviderOllama, "mistral"},
		{config.ProviderGemini, config.DefaultModel(config.ProviderGemini)},
	}
	for _, tt := range tests {
		if got := suggestModel(defaults, tt.provider); got != tt.want {
			t.Errorf("suggestModel(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}

	if got := suggestModel(ReadmeOptions{Provider: config.ProviderOllama}, config.ProviderOllama); got != config.DefaultModel(config.ProviderOllama) {
		t.Errorf("empty model should fall back to the provider default, got %q", got)
	}
}

func TestNewWizardModelDefaults(t *testing.T) {
	w := newWizardModel(ReadmeOptions{Target: "."})

	if w.step != stepTarget {
		t.Fatalf("initial step = %v, want stepTarget", w.step)
	}
	if w.targetInput.Value() != "." {
		t.Errorf("target = %q, want %q", w.targetInput.Value(), ".")
	}
	if w.defaults.Provider != config.ProviderOllama {
		t.Errorf("provider default = %q", w.defaults.Provider)
	}
	if w.outputInput.Value() != "README.md" {
		t.Errorf("output = %q, want README.md", w.outputInput.Value())
	}
}

func TestWizardStepTransitions(t *testing.T) {
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	t.Run("empty target rejected", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{})

		done, _, _ := w.Update(enter)
		if done {
			t.Error("should not be done")
		}
		if w.step != stepTarget {
			t.Error("should stay on stepTarget with empty input")
		}
	})

	t.Run("target to provider", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "https://github.com/acme/app"})

		done, opts, _ := w.Update(enter)
		if done || opts != nil {
			t.Error("should not be done after the target step")
		}
		if w.step != stepProvider {
			t.Errorf("step = %v, want stepProvider", w.step)
		}
		if w.selectedTarget != "https://github.com/acme/app" {
			t.Errorf("selectedTarget = %q", w.selectedTarget)
		}
	})

	t.Run("provider preselects the default", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: ".", Provider: config.ProviderGemini})
		w.Update(enter)
		w.Update(enter)

		if w.selectedProvider != config.ProviderGemini {
			t.Errorf("selectedProvider = %q, want gemini", w.selectedProvider)
		}
		if w.step != stepModel {
			t.Errorf("step = %v, want stepModel", w.step)
		}
		if w.modelInput.Value() != config.DefaultModel(config.ProviderGemini) {
			t.Errorf("model = %q", w.modelInput.Value())
		}
	})

	t.Run("empty model rejected", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "."})
		w.step = stepModel
		w.modelInput.SetValue("  ")

		w.Update(enter)
		if w.step != stepModel {
			t.Error("should stay on stepModel with empty input")
		}
	})

	t.Run("full run", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "./app", Model: "codellama"})
		var (
			done bool
			opts *ReadmeOptions
		)
		for i := 0; i < 5 && !done; i++ {
			done, opts, _ = w.Update(enter)
		}
		if !done || opts == nil {
			t.Fatal("wizard should complete after five steps")
		}
		want := ReadmeOptions{Target: "./app", Provider: config.ProviderOllama, Model: "codellama", Output: "README.md"}
		if *opts != want {
			t.Errorf("options = %+v, want %+v", *opts, want)
		}
	})

	t.Run("restart from confirm", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "."})
		w.step = stepConfirm
		w.selectedTarget = "somewhere"

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
		if done {
			t.Error("restart should not finish the wizard")
		}
		if w.step != stepTarget || w.selectedTarget != "" {
			t.Errorf("wizard not reset: step %v target %q", w.step, w.selectedTarget)
		}
	})
}

func TestWizardBack(t *testing.T) {
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	t.Run("esc on first step cancels", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{})
		done, opts, _ := w.Update(esc)
		if !done || opts != nil {
			t.Error("esc on the first step should cancel")
		}
	})

	t.Run("esc steps back", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "."})
		w.step = stepOutput
		w.Update(esc)
		if w.step != stepModel {
			t.Errorf("step = %v, want stepModel", w.step)
		}
		w.Update(esc)
		if w.step != stepProvider {
			t.Errorf("step = %v, want stepProvider", w.step)
		}
	})

	t.Run("ctrl+c cancels anywhere", func(t *testing.T) {
		w := newWizardModel(ReadmeOptions{Target: "."})
		w.step = stepConfirm
		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if !done || opts != nil {
			t.Error("ctrl+c should cancel")
		}
	})
}

func TestWizardProgram(t *testing.T) {
	p := wizardProgram{wizard: newWizardModel(ReadmeOptions{Target: "."})}

	m, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p = m.(wizardProgram)
	if !p.done || p.result != nil {
		t.Error("esc on the first step should end the program without options")
	}
	if cmd == nil {
		t.Error("a finished wizard should quit the program")
	}
	if p.View() != "" {
		t.Error("View() should be empty once the wizard is done")
	}
}

func TestPathSuggestions(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"alpha", "beta", ".hidden"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "apple.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs := pathSuggestions(filepath.Join(root, "a"), true)
	if !slices.Equal(dirs, []string{filepath.Join(root, "alpha")}) {
		t.Errorf("dir suggestions = %v", dirs)
	}

	all := pathSuggestions(filepath.Join(root, "a"), false)
	if !slices.Equal(all, []string{filepath.Join(root, "alpha"), filepath.Join(root, "apple.md")}) {
		t.Errorf("file suggestions = %v", all)
	}

	if got := pathSuggestions(root+string(filepath.Separator), true); len(got) != 2 {
		t.Errorf("listing a directory should skip hidden entries, got %v", got)
	}

	if got := pathSuggestions("https://github.com/acme", true); got != nil {
		t.Errorf("URLs should get no suggestions, got %v", got)
	}
}

func TestWizardView(t *testing.T) {
	w := newWizardModel(ReadmeOptions{Target: "."})
	if view := w.View(); !strings.Contains(view, "Repository:") {
		t.Error("first step should ask for the repository")
	}

	w.step = stepConfirm
	w.selectedTarget, w.selectedProvider, w.selectedModel, w.selectedOutput = ".", "ollama", "mistral", "-"
	view := w.View()
	for _, want := range []string{"Confirm:", "mistral", "Enter to generate"} {
		if !strings.Contains(view, want) {
			t.Errorf("confirm view missing %q", want)
		}
	}
}
