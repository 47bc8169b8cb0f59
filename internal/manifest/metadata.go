package manifest

import (
	"encoding/json"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/repolens/internal/report"
)

// ProjectInfo reads project metadata from manifests that declare it. The
// boolean is false when rel is not such a manifest, it cannot be decoded, or
// it declares no name.
func ProjectInfo(rel string, content []byte) (report.Project, bool) {
	var (
		doc map[string]any
		err error
	)
	switch path.Base(rel) {
	case "package.json", "composer.json":
		err = json.Unmarshal(content, &doc)
	case "pyproject.toml":
		_, err = toml.Decode(string(content), &doc)
		if err == nil {
			if poetry := table(table(doc, "tool"), "poetry"); poetry["name"] != nil {
				doc = poetry
			} else {
				doc = table(doc, "project")
			}
		}
	case "Cargo.toml":
		_, err = toml.Decode(string(content), &doc)
		doc = table(doc, "package")
	case "pubspec.yaml":
		err = yaml.Unmarshal(content, &doc)
	default:
		return report.Project{}, false
	}
	if err != nil {
		return report.Project{}, false
	}

	p := report.Project{
		Name:        str(doc["name"]),
		Description: str(doc["description"]),
		Version:     str(doc["version"]),
		License:     license(doc["license"]),
		Source:      rel,
	}
	return p, p.Name != ""
}

// NPMScripts returns the script names declared by a package.json.
func NPMScripts(content []byte) []string {
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(pkg.Scripts))
}

func table(doc map[string]any, key string) map[string]any {
	t, _ := doc[key].(map[string]any)
	return t
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil, map[string]any:
		// {workspace = true} and similar indirections
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// license handles SPDX strings, {text = "..."} / {type = "..."} tables and
// lists of identifiers.
func license(v any) string {
	switch t := v.(type) {
	case map[string]any:
		for _, k := range []string{"text", "type", "file"} {
			if s := str(t[k]); s != "" {
				return s
			}
		}
	case []any:
		var parts []string
		for _, e := range t {
			if s := license(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " OR ")
	}
	return str(v)
}
