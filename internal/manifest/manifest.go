// Package manifest extracts declared dependencies from package manifests and
// lockfiles.
//
// Every supported file is described by a Format in a static registry keyed by
// file name. Parsing never fails hard: malformed input yields whatever was
// extracted before the failure point and marks the result partial.
package manifest

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/firefly-engineering/repolens/internal/report"
)

// Kind is the parsing strategy of a format.
type Kind string

const (
	// KindLine formats declare one dependency per line.
	KindLine Kind = "line"
	// KindDeclarative formats list dependencies under well-known sections.
	KindDeclarative Kind = "declarative"
	// KindLockfile formats repeat one block per resolved package.
	KindLockfile Kind = "lockfile"
)

// parseFunc returns the dependencies found in content. A non-nil error means
// the returned dependencies are the ones extracted before the failure.
type parseFunc func(content []byte) ([]report.Dependency, error)

// Format describes one manifest file format.
type Format struct {
	Name      string
	Pattern   string
	Ecosystem report.Ecosystem
	Kind      Kind
	parse     parseFunc
}

// Result is the outcome of parsing one manifest.
type Result struct {
	Format       Format
	Dependencies []report.Dependency
	Partial      bool
	Err          error
}

// Status converts the result into the report's manifest status.
func (r *Result) Status(rel string) report.ManifestStatus {
	s := report.ManifestStatus{
		Path:         rel,
		Format:       r.Format.Name,
		Ecosystem:    r.Format.Ecosystem,
		Dependencies: len(r.Dependencies),
		Partial:      r.Partial,
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// registry is matched in order against the base name; the first match wins.
var registry = []Format{
	{Name: "requirements", Pattern: "requirements*.txt", Ecosystem: report.EcosystemPyPI, Kind: KindLine, parse: parseRequirements},
	{Name: "gemfile", Pattern: "Gemfile", Ecosystem: report.EcosystemRubyGems, Kind: KindLine, parse: parseGemfile},
	{Name: "pyproject", Pattern: "pyproject.toml", Ecosystem: report.EcosystemPyPI, Kind: KindDeclarative, parse: parsePyproject},
	{Name: "pipfile", Pattern: "Pipfile", Ecosystem: report.EcosystemPyPI, Kind: KindDeclarative, parse: parsePipfile},
	{Name: "package.json", Pattern: "package.json", Ecosystem: report.EcosystemNPM, Kind: KindDeclarative, parse: parsePackageJSON},
	{Name: "composer.json", Pattern: "composer.json", Ecosystem: report.EcosystemPackagist, Kind: KindDeclarative, parse: parseComposerJSON},
	{Name: "cargo", Pattern: "Cargo.toml", Ecosystem: report.EcosystemCrates, Kind: KindDeclarative, parse: parseCargo},
	{Name: "go.mod", Pattern: "go.mod", Ecosystem: report.EcosystemGo, Kind: KindDeclarative, parse: parseGoMod},
	{Name: "pubspec", Pattern: "pubspec.yaml", Ecosystem: report.EcosystemPub, Kind: KindDeclarative, parse: parsePubspec},
	{Name: "pom", Pattern: "pom.xml", Ecosystem: report.EcosystemMaven, Kind: KindDeclarative, parse: parsePom},
	{Name: "csproj", Pattern: "*.csproj", Ecosystem: report.EcosystemNuGet, Kind: KindDeclarative, parse: parseCsproj},
	{Name: "cargo.lock", Pattern: "Cargo.lock", Ecosystem: report.EcosystemCrates, Kind: KindLockfile, parse: parseCargoLock},
	{Name: "poetry.lock", Pattern: "poetry.lock", Ecosystem: report.EcosystemPyPI, Kind: KindLockfile, parse: parsePoetryLock},
	{Name: "gemfile.lock", Pattern: "Gemfile.lock", Ecosystem: report.EcosystemRubyGems, Kind: KindLockfile, parse: parseGemfileLock},
	{Name: "composer.lock", Pattern: "composer.lock", Ecosystem: report.EcosystemPackagist, Kind: KindLockfile, parse: parseComposerLock},
}

// Formats returns the registered formats in lookup order.
func Formats() []Format {
	out := make([]Format, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds the format for a slash-separated path by its base name.
func Lookup(rel string) (Format, bool) {
	base := path.Base(rel)
	for _, f := range registry {
		if ok, _ := doublestar.Match(f.Pattern, base); ok {
			return f, true
		}
	}
	return Format{}, false
}

// TryParse parses content if rel names a known manifest. The returned
// dependencies carry the format's ecosystem and rel as their manifest.
func TryParse(rel string, content []byte) (*Result, bool) {
	f, ok := Lookup(rel)
	if !ok {
		return nil, false
	}
	return f.Parse(rel, content), true
}

// Parse runs the format's parser over content.
func (f Format) Parse(rel string, content []byte) *Result {
	deps, err := f.parse(content)
	for i := range deps {
		deps[i].Ecosystem = f.Ecosystem
		deps[i].Manifest = rel
	}
	if deps == nil {
		deps = []report.Dependency{}
	}
	return &Result{
		Format:       f,
		Dependencies: deps,
		Partial:      err != nil,
		Err:          err,
	}
}
