package readme

import (
	"strings"

	"github.com/firefly-engineering/repolens/internal/report"
)

const maxStructureEntries = 15

var dirDescriptions = map[string]string{
	"src": "Source code", "source": "Source code", "app": "Application code",
	"lib": "Library code", "pkg": "Library packages", "internal": "Internal packages",
	"cmd": "Command entry points", "components": "Reusable UI components",
	"pages": "Application pages", "views": "Views and templates",
	"controllers": "Controllers", "models": "Data models", "services": "Business logic services",
	"utils": "Utility functions", "helpers": "Helper functions", "config": "Configuration",
	"static": "Static assets", "public": "Publicly served files", "assets": "Project assets",
	"tests": "Tests", "test": "Tests", "spec": "Test specifications",
	"docs": "Documentation", "scripts": "Build and deployment scripts", "tools": "Development tools",
	"migrations": "Database migrations", "templates": "Templates", "styles": "Stylesheets",
	"api": "API code", "middleware": "Middleware", "routes": "Routes", "database": "Database files",
}

var fileDescriptions = map[string]string{
	"package.json": "Node.js package manifest", "requirements.txt": "Python dependencies",
	"pyproject.toml": "Python project configuration", "setup.py": "Python package setup",
	"go.mod": "Go module definition", "cargo.toml": "Rust crate manifest",
	"dockerfile": "Container image definition", "docker-compose.yml": "Multi-container setup",
	"compose.yml": "Multi-container setup", "makefile": "Build automation",
	"readme.md": "Project documentation", "license": "Project license",
	".gitignore": "Git ignore rules", ".env.example": "Environment variables template",
	"tsconfig.json": "TypeScript configuration", "webpack.config.js": "Webpack configuration",
}

// StructureEntry is a top-level item of the repository.
type StructureEntry struct {
	Name        string
	Dir         bool
	Files       int
	Description string
}

// Structure lists the top-level directories and files that were not
// ignored, in traversal order.
func Structure(r *report.Report) []StructureEntry {
	var out []StructureEntry
	index := make(map[string]int)
	for _, f := range r.Files() {
		if f.Role == report.RoleIgnored {
			continue
		}
		top, _, isDir := strings.Cut(f.Path, "/")
		if i, ok := index[top]; ok {
			out[i].Files++
			continue
		}
		if len(out) >= maxStructureEntries {
			continue
		}
		e := StructureEntry{Name: top, Dir: isDir}
		if isDir {
			e.Files = 1
			e.Description = describe(dirDescriptions, top, "Project directory")
		} else {
			e.Description = describe(fileDescriptions, top, "Project file")
		}
		index[top] = len(out)
		out = append(out, e)
	}
	return out
}

func describe(table map[string]string, name, fallback string) string {
	if d, ok := table[strings.ToLower(name)]; ok {
		return d
	}
	return fallback
}
