package readme

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/firefly-engineering/repolens/internal/report"
)

// SystemPrompt is the instruction sent alongside every README prompt.
const SystemPrompt = "You are a senior technical writer. You write accurate, well-structured README files in GitHub-flavoured Markdown and never invent facts."

const (
	maxPromptDependencies = 25
	maxPromptSourceFiles  = 3
	maxSourceFileChars    = 1500
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

var promptTemplate = template.Must(
	template.New("prompt.md.tmpl").
		Funcs(template.FuncMap{"joinStrings": strings.Join}).
		ParseFS(templatesFS, "templates/prompt.md.tmpl"),
)

// PromptInput identifies the project being documented.
type PromptInput struct {
	// Name overrides the project name. When empty the manifest name is
	// used, then the repository name.
	Name string
	// Repository is the clone URL, empty for local trees.
	Repository string
}

type promptData struct {
	Name             string
	Repository       string
	Project          report.Project
	Insights         report.Insights
	Languages        []string
	Frameworks       []report.FrameworkHit
	Dependencies     []report.Dependency
	MoreDependencies int
	Structure        []StructureEntry
	ConfigFiles      []KeyFile
	SourceFiles      []KeyFile
	SetupTime        string
}

// BuildPrompt renders the README prompt for a report and its key files.
func BuildPrompt(r *report.Report, files []KeyFile, in PromptInput) string {
	ins := r.Insights()
	data := promptData{
		Name:       in.Name,
		Repository: in.Repository,
		Project:    ins.Project,
		Insights:   ins,
		Languages:  r.LanguageNames(),
		Frameworks: r.Frameworks(),
		Structure:  Structure(r),
		SetupTime:  setupTime(ins.Difficulty),
	}
	if ins.Project.Name != "" {
		data.Name = ins.Project.Name
	}
	if in.Name != "" {
		data.Name = in.Name
	}
	if data.Name == "" {
		data.Name = "project"
	}

	deps := r.Dependencies()
	if len(deps) > maxPromptDependencies {
		data.MoreDependencies = len(deps) - maxPromptDependencies
		deps = deps[:maxPromptDependencies]
	}
	data.Dependencies = deps

	for _, f := range files {
		if f.IsConfig() {
			data.ConfigFiles = append(data.ConfigFiles, f)
			continue
		}
		if len(data.SourceFiles) < maxPromptSourceFiles {
			f.Content = clip(f.Content, maxSourceFileChars)
			data.SourceFiles = append(data.SourceFiles, f)
		}
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to render README prompt: %v", err))
	}
	return buf.String()
}

func setupTime(difficulty string) string {
	switch difficulty {
	case "Easy":
		return "a few minutes"
	case "Medium":
		return "15-30 minutes"
	case "Hard":
		return "1-2 hours"
	default:
		return "2+ hours"
	}
}

// clip shortens s to at most n bytes on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + truncatedMarker
}
