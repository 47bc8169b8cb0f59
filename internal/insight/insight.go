// Package insight derives a project profile from an analysis report: project
// metadata, entry points, container setup, environment variables, CI, the
// usual commands and a rough setup difficulty.
package insight

import (
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/repolens/internal/manifest"
	"github.com/firefly-engineering/repolens/internal/report"
)

// maxFileBytes caps every file read while deriving insights.
const maxFileBytes = 256 << 10

// Difficulty thresholds on the complexity score.
const (
	easyBelow   = 10
	mediumBelow = 30
	hardBelow   = 60
)

// Architecture labels.
const (
	ArchMicroservices = "Microservices"
	ArchContainerized = "Containerized Application"
	ArchMultiLanguage = "Multi-language Application"
	ArchMonolithic    = "Monolithic Application"
)

// projectManifests are tried in order for project metadata.
var projectManifests = []string{"package.json", "pyproject.toml", "Cargo.toml", "composer.json", "pubspec.yaml"}

var entryPointPatterns = []string{
	"main.py", "app.py", "manage.py", "wsgi.py", "asgi.py", "run.py", "server.py",
	"src/*/__main__.py",
	"index.js", "server.js", "app.js", "main.js",
	"src/index.{js,jsx,ts,tsx}", "src/main.{js,jsx,ts,tsx}", "src/server.{js,ts}",
	"main.go", "cmd/*/main.go",
	"src/main.rs", "src/bin/*.rs",
	"Program.cs", "src/main/java/**/*Application.java", "src/main/kotlin/**/*Application.kt",
	"lib/main.dart", "config.ru", "bin/rails", "index.php", "public/index.php",
}

var ciProviders = []struct {
	pattern string
	name    string
}{
	{".github/workflows/*.{yml,yaml}", "GitHub Actions"},
	{".gitlab-ci.yml", "GitLab CI"},
	{"Jenkinsfile", "Jenkins"},
	{".circleci/config.yml", "CircleCI"},
	{".travis.yml", "Travis CI"},
	{"azure-pipelines.yml", "Azure Pipelines"},
	{"bitbucket-pipelines.yml", "Bitbucket Pipelines"},
}

// Derive computes insights for the report of root. Only regular files the
// walk accepted are read, resolved inside root; unreadable ones are left out.
func Derive(root string, r *report.Report) report.Insights {
	skipped := make(map[string]bool)
	for _, s := range r.Skipped() {
		skipped[s.Path] = true
	}
	files := r.Files()
	present := make(map[string]bool, len(files))
	for _, f := range files {
		switch f.Role {
		case report.RoleSource, report.RoleManifest:
			present[f.Path] = true
		case report.RoleUnknown:
			// Symlinks and unreadable entries are listed with a skip reason.
			if !skipped[f.Path] {
				present[f.Path] = true
			}
		}
	}
	read := func(rel string) ([]byte, bool) {
		if !present[rel] {
			return nil, false
		}
		return readFile(root, rel)
	}

	var ins report.Insights
	for _, name := range projectManifests {
		if content, ok := read(name); ok {
			if p, ok := manifest.ProjectInfo(name, content); ok {
				ins.Project = p
				break
			}
		}
	}

	if names := r.LanguageNames(); len(names) > 0 {
		ins.MainLanguage = names[0]
	}

	for _, f := range files {
		if f.Role != report.RoleSource {
			continue
		}
		for _, p := range entryPointPatterns {
			if ok, _ := doublestar.Match(p, f.Path); ok {
				ins.EntryPoints = append(ins.EntryPoints, f.Path)
				break
			}
		}
	}

	for _, name := range []string{"Dockerfile", "Containerfile"} {
		if content, ok := read(name); ok {
			ins.Docker = parseDockerfile(name, content)
			break
		}
	}
	for _, name := range composeFiles {
		if content, ok := read(name); ok {
			ins.Compose = parseCompose(name, content)
			break
		}
	}

	for _, name := range envExampleFiles {
		if content, ok := read(name); ok {
			ins.EnvVars = mergeSorted(ins.EnvVars, envNames(content))
		}
	}

	for _, ci := range ciProviders {
		for p := range present {
			if ok, _ := doublestar.Match(ci.pattern, p); ok {
				ins.CI = append(ins.CI, ci.name)
				break
			}
		}
	}

	ins.Commands = commands(r, present, ins, read)
	ins.Complexity = complexity(r, ins)
	ins.Difficulty = difficulty(ins.Complexity)
	ins.Architecture = architecture(r, ins)
	return ins
}

func readFile(root, rel string) ([]byte, bool) {
	full, err := securejoin.SecureJoin(root, filepath.FromSlash(rel))
	if err != nil {
		return nil, false
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxFileBytes))
	if err != nil {
		return nil, false
	}
	return content, true
}

// complexity scores how much a newcomer has to set up before running the
// project.
func complexity(r *report.Report, ins report.Insights) int {
	score := float64(len(r.Languages())) * 2
	score += float64(len(r.Frameworks())) * 1.5
	if ins.Docker != nil || ins.Compose != nil {
		score += 5
	}
	if ins.Compose != nil {
		score += float64(len(ins.Compose.Services)) * 2
		score += float64(len(ins.Compose.Databases)) * 3
	}
	score += float64(len(ins.EnvVars)) * 0.5
	score += float64(len(r.Dependencies())) * 0.1
	return int(score)
}

func difficulty(score int) string {
	switch {
	case score < easyBelow:
		return "Easy"
	case score < mediumBelow:
		return "Medium"
	case score < hardBelow:
		return "Hard"
	default:
		return "Expert"
	}
}

func architecture(r *report.Report, ins report.Insights) string {
	switch {
	case ins.Compose != nil && len(ins.Compose.Services) > 3:
		return ArchMicroservices
	case ins.Docker != nil || ins.Compose != nil:
		return ArchContainerized
	case len(r.Languages()) > 2:
		return ArchMultiLanguage
	default:
		return ArchMonolithic
	}
}

func mergeSorted(a, b []string) []string {
	out := append(a, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
