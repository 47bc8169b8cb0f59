package manifest

import (
	"golang.org/x/mod/modfile"

	"github.com/firefly-engineering/repolens/internal/report"
)

func parseGoMod(content []byte) ([]report.Dependency, error) {
	f, err := parsePrefix(content, func(b []byte) (*modfile.File, error) {
		return modfile.Parse("go.mod", b, nil)
	})
	if f == nil {
		return nil, err
	}

	var deps []report.Dependency
	for _, r := range f.Require {
		dep := report.Dependency{Name: r.Mod.Path, Constraint: r.Mod.Version}
		if r.Indirect {
			dep.Scope = report.ScopeIndirect
		}
		deps = append(deps, dep)
	}
	for _, r := range f.Replace {
		for i := range deps {
			if deps[i].Name == r.Old.Path && (r.Old.Version == "" || r.Old.Version == deps[i].Constraint) {
				deps[i].Constraint += " => " + replacementTarget(r)
			}
		}
	}
	return deps, err
}

func replacementTarget(r *modfile.Replace) string {
	if r.New.Version == "" {
		return r.New.Path
	}
	return r.New.Path + " " + r.New.Version
}
