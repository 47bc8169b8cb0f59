package readme

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/repolens/internal/report"
)

// Defaults for KeyFiles.
const (
	DefaultMaxKeyFiles  = 15
	DefaultMaxFileBytes = 3000
	maxSourceFiles      = 5
	binarySniffBytes    = 1024
	truncatedMarker     = "\n... [truncated] ..."
)

// priorityFiles are shown to the model in this order when present.
var priorityFiles = []string{
	// manifests
	"package.json", "requirements.txt", "pyproject.toml", "setup.py", "Pipfile",
	"Cargo.toml", "go.mod", "pom.xml", "build.gradle", "build.gradle.kts", "composer.json",
	"Gemfile", "pubspec.yaml", "mix.exs", "*.csproj",
	// containers
	"Dockerfile", "Containerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml",
	// docs
	"README.md", "README.rst", "README.txt", "CHANGELOG.md",
	// environment and config
	".env.example", ".env.sample", ".env.template", "config.json", "config.yaml",
	// entry points
	"main.py", "app.py", "manage.py", "index.js", "server.js", "app.js",
	"main.go", "cmd/*/main.go", "src/main.rs", "Program.cs", "artisan",
	// build and CI
	"Makefile", "CMakeLists.txt", "webpack.config.js",
	".github/workflows/*.{yml,yaml}", ".gitlab-ci.yml", "Jenkinsfile",
	// database
	"schema.sql", "models.py",
}

// sourceLanguages are the languages whose small files round out the set.
var sourceLanguages = map[string]bool{
	"Python": true, "JavaScript": true, "TypeScript": true, "Java": true, "Go": true,
	"Rust": true, "PHP": true, "Ruby": true, "C#": true, "Kotlin": true,
}

// KeyFile is a file whose content is shown to the model.
type KeyFile struct {
	Path    string
	Content string
}

// IsConfig reports whether the file describes configuration rather than code.
func (k KeyFile) IsConfig() bool {
	base := filepath.Base(k.Path)
	switch base {
	case "Dockerfile", "Containerfile", "Makefile", "Jenkinsfile", "Gemfile", "Pipfile":
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json", ".txt", ".toml", ".yml", ".yaml", ".xml", ".mod", ".csproj", ".gradle", ".kts", ".exs", ".md", ".rst", ".sql":
		return true
	}
	return strings.HasPrefix(base, ".env")
}

// KeyFiles picks the files that best describe the project: priority files
// present in the report, in priority order, up to limit, then a few small
// source files in traversal order. Binary and unreadable files are left
// out; long ones are truncated to maxBytes.
func KeyFiles(root string, r *report.Report, limit, maxBytes int) []KeyFile {
	if limit <= 0 {
		limit = DefaultMaxKeyFiles
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	skipped := make(map[string]bool)
	for _, s := range r.Skipped() {
		skipped[s.Path] = true
	}
	var candidates []report.FileEntry
	for _, f := range r.Files() {
		if f.Role != report.RoleIgnored && !skipped[f.Path] {
			candidates = append(candidates, f)
		}
	}

	var out []KeyFile
	seen := make(map[string]bool)
	for _, pattern := range priorityFiles {
		for _, f := range candidates {
			if len(out) >= limit {
				break
			}
			if seen[f.Path] {
				continue
			}
			if ok, _ := doublestar.Match(pattern, f.Path); !ok {
				continue
			}
			if content, ok := readKeyFile(root, f.Path, maxBytes); ok {
				out = append(out, KeyFile{Path: f.Path, Content: content})
				seen[f.Path] = true
			}
		}
	}

	added := 0
	for _, f := range candidates {
		if added >= maxSourceFiles {
			break
		}
		if seen[f.Path] || f.Role != report.RoleSource || !sourceLanguages[f.Language] || f.Size >= int64(maxBytes) {
			continue
		}
		if content, ok := readKeyFile(root, f.Path, maxBytes); ok {
			out = append(out, KeyFile{Path: f.Path, Content: content})
			seen[f.Path] = true
			added++
		}
	}
	return out
}

func readKeyFile(root, rel string, maxBytes int) (string, bool) {
	full, err := securejoin.SecureJoin(root, filepath.FromSlash(rel))
	if err != nil {
		return "", false
	}
	f, err := os.Open(full)
	if err != nil {
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil || len(data) == 0 {
		return "", false
	}
	if bytes.IndexByte(data[:min(len(data), binarySniffBytes)], 0) >= 0 {
		return "", false
	}

	truncated := len(data) > maxBytes
	if truncated {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(data[cut]) {
			cut--
		}
		data = data[:cut]
	}
	content := strings.ToValidUTF8(string(data), "�")
	if truncated {
		content += truncatedMarker
	}
	return content, true
}
