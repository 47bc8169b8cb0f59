package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/repolens/internal/report"
)

func decodeTOML[T any](content []byte) (T, error) {
	return parsePrefix(content, func(b []byte) (T, error) {
		var v T
		_, err := toml.Decode(string(b), &v)
		return v, err
	})
}

// renderValue renders a decoded TOML or YAML value as a compact constraint.
// Plain strings are returned as is.
func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return renderNested(v)
}

func renderNested(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strconv.Quote(t)
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			parts = append(parts, k+" = "+renderNested(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = renderNested(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

// tableDeps turns a name → spec table into dependencies in name order.
func tableDeps(table map[string]any, scope string, skip ...string) []report.Dependency {
	var deps []report.Dependency
	for _, name := range slices.Sorted(maps.Keys(table)) {
		if slices.Contains(skip, name) {
			continue
		}
		dep := report.Dependency{Name: name, Constraint: renderValue(table[name]), Scope: scope}
		if spec, ok := table[name].(map[string]any); ok && scope == "" {
			if opt, _ := spec["optional"].(bool); opt {
				dep.Scope = report.ScopeOptional
			}
		}
		deps = append(deps, dep)
	}
	return deps
}

// requirementDeps parses PEP 508 strings. Invalid entries are skipped and
// reported through the returned error.
func requirementDeps(reqs []string, scope string) ([]report.Dependency, error) {
	var (
		deps []report.Dependency
		bad  []string
	)
	for _, r := range reqs {
		name, constraint, ok := parseRequirement(r)
		if !ok {
			bad = append(bad, strconv.Quote(r))
			continue
		}
		deps = append(deps, report.Dependency{Name: name, Constraint: constraint, Scope: scope})
	}
	if len(bad) > 0 {
		return deps, fmt.Errorf("invalid requirements: %s", strings.Join(bad, ", "))
	}
	return deps, nil
}

type pyprojectDoc struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(content []byte) ([]report.Dependency, error) {
	doc, err := decodeTOML[pyprojectDoc](content)

	deps, reqErr := requirementDeps(doc.Project.Dependencies, "")
	for _, group := range slices.Sorted(maps.Keys(doc.Project.OptionalDependencies)) {
		d, e := requirementDeps(doc.Project.OptionalDependencies[group], report.ScopeOptional)
		deps = append(deps, d...)
		reqErr = firstErr(reqErr, e)
	}
	for _, group := range slices.Sorted(maps.Keys(doc.DependencyGroups)) {
		var reqs []string
		for _, entry := range doc.DependencyGroups[group] {
			// {include-group = "..."} entries carry no package
			if s, ok := entry.(string); ok {
				reqs = append(reqs, s)
			}
		}
		d, e := requirementDeps(reqs, report.ScopeDev)
		deps = append(deps, d...)
		reqErr = firstErr(reqErr, e)
	}

	poetry := doc.Tool.Poetry
	deps = append(deps, tableDeps(poetry.Dependencies, "", "python")...)
	deps = append(deps, tableDeps(poetry.DevDependencies, report.ScopeDev)...)
	for _, group := range slices.Sorted(maps.Keys(poetry.Group)) {
		scope := report.ScopeDev
		if group == "main" {
			scope = ""
		}
		deps = append(deps, tableDeps(poetry.Group[group].Dependencies, scope, "python")...)
	}

	return deps, firstErr(err, reqErr)
}

type pipfileDoc struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

func parsePipfile(content []byte) ([]report.Dependency, error) {
	doc, err := decodeTOML[pipfileDoc](content)
	deps := tableDeps(doc.Packages, "")
	deps = append(deps, tableDeps(doc.DevPackages, report.ScopeDev)...)
	return deps, err
}

type cargoDeps struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func (c cargoDeps) collect() []report.Dependency {
	deps := tableDeps(c.Dependencies, "")
	deps = append(deps, tableDeps(c.DevDependencies, report.ScopeDev)...)
	return append(deps, tableDeps(c.BuildDependencies, report.ScopeBuild)...)
}

type cargoDoc struct {
	cargoDeps
	Target    map[string]cargoDeps `toml:"target"`
	Workspace struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

func parseCargo(content []byte) ([]report.Dependency, error) {
	doc, err := decodeTOML[cargoDoc](content)
	deps := doc.collect()
	for _, target := range slices.Sorted(maps.Keys(doc.Target)) {
		deps = append(deps, doc.Target[target].collect()...)
	}
	deps = append(deps, tableDeps(doc.Workspace.Dependencies, "")...)
	return deps, err
}

type cargoLockDoc struct {
	Package []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Source  string `toml:"source"`
	} `toml:"package"`
}

func parseCargoLock(content []byte) ([]report.Dependency, error) {
	doc, err := decodeTOML[cargoLockDoc](content)
	var deps []report.Dependency
	for _, p := range doc.Package {
		// workspace members have no source
		if p.Source == "" {
			continue
		}
		deps = append(deps, report.Dependency{Name: p.Name, Constraint: p.Version})
	}
	return deps, err
}

type poetryLockDoc struct {
	Package []struct {
		Name     string `toml:"name"`
		Version  string `toml:"version"`
		Category string `toml:"category"`
		Optional bool   `toml:"optional"`
	} `toml:"package"`
}

func parsePoetryLock(content []byte) ([]report.Dependency, error) {
	doc, err := decodeTOML[poetryLockDoc](content)
	var deps []report.Dependency
	for _, p := range doc.Package {
		dep := report.Dependency{Name: p.Name, Constraint: p.Version}
		switch {
		case p.Category == "dev":
			dep.Scope = report.ScopeDev
		case p.Optional:
			dep.Scope = report.ScopeOptional
		}
		deps = append(deps, dep)
	}
	return deps, err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
