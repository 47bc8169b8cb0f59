// Package report defines the analysis report and its single-writer builder.
//
// A Report is read-only once built: every accessor returns a copy, so a
// report can be handed to renderers, the TUI and prompt builders without
// coordination.
package report

import (
	"cmp"
	"maps"
	"slices"
)

// Report is the result of analysing one repository tree.
type Report struct {
	root           string
	catalogVersion string
	files          []FileEntry
	languages      map[string]int
	dependencies   []Dependency
	frameworks     []FrameworkHit
	ignoreRules    []IgnoreRule
	manifests      []ManifestStatus
	skipped        []Skipped
	insights       Insights
}

// Root returns the analysed root path.
func (r *Report) Root() string { return r.root }

// CatalogVersion returns the version of the catalog used for the analysis.
func (r *Report) CatalogVersion() string { return r.catalogVersion }

// Files returns the file entries in traversal order.
func (r *Report) Files() []FileEntry { return slices.Clone(r.files) }

// Languages returns source file counts per language.
func (r *Report) Languages() map[string]int { return maps.Clone(r.languages) }

// Dependencies returns the dependency set sorted by ecosystem then name.
func (r *Report) Dependencies() []Dependency { return slices.Clone(r.dependencies) }

// Frameworks returns detected frameworks sorted by name.
func (r *Report) Frameworks() []FrameworkHit { return slices.Clone(r.frameworks) }

// IgnoreRules returns triggered ignore rules in the order first triggered.
func (r *Report) IgnoreRules() []IgnoreRule { return slices.Clone(r.ignoreRules) }

// Manifests returns the parse status of every manifest in traversal order.
func (r *Report) Manifests() []ManifestStatus { return slices.Clone(r.manifests) }

// Skipped returns paths that could not be fully processed.
func (r *Report) Skipped() []Skipped { return slices.Clone(r.skipped) }

// Insights returns derived project insights.
func (r *Report) Insights() Insights { return r.insights.clone() }

// SourceFiles returns the number of entries with role=source.
func (r *Report) SourceFiles() int {
	n := 0
	for _, c := range r.languages {
		n += c
	}
	return n
}

// LanguageNames returns languages ordered by descending count, then name.
func (r *Report) LanguageNames() []string {
	names := slices.Collect(maps.Keys(r.languages))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(r.languages[b], r.languages[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

// HasFramework reports whether name was detected.
func (r *Report) HasFramework(name string) bool {
	return slices.ContainsFunc(r.frameworks, func(h FrameworkHit) bool { return h.Name == name })
}

// Builder accumulates findings for a single report. It is not safe for
// concurrent use; the analyzer owns it from a single goroutine.
type Builder struct {
	root           string
	catalogVersion string
	files          []FileEntry
	dependencies   []Dependency
	frameworks     []FrameworkHit
	ignoreRules    []IgnoreRule
	ignoreSeen     map[string]bool
	manifests      []ManifestStatus
	skipped        []Skipped
	insights       Insights
}

// NewBuilder starts a report for root.
func NewBuilder(root, catalogVersion string) *Builder {
	return &Builder{
		root:           root,
		catalogVersion: catalogVersion,
		ignoreSeen:     make(map[string]bool),
	}
}

// AddFile appends an entry in traversal order.
func (b *Builder) AddFile(e FileEntry) {
	b.files = append(b.files, e)
}

// RecordIgnore records a triggered rule once per pattern.
func (b *Builder) RecordIgnore(rule IgnoreRule) {
	if b.ignoreSeen[rule.Pattern] {
		return
	}
	b.ignoreSeen[rule.Pattern] = true
	b.ignoreRules = append(b.ignoreRules, rule)
}

// AddManifest records a parsed manifest and its dependencies. Dependencies
// are deduplicated by name and ecosystem at Build, later ones winning.
func (b *Builder) AddManifest(status ManifestStatus, deps []Dependency) {
	status.Dependencies = len(deps)
	b.manifests = append(b.manifests, status)
	b.dependencies = append(b.dependencies, deps...)
}

// AddSkipped records a degraded path.
func (b *Builder) AddSkipped(path, reason string) {
	b.skipped = append(b.skipped, Skipped{Path: path, Reason: reason})
}

// AddFramework records a hit unless the framework already has evidence.
func (b *Builder) AddFramework(hit FrameworkHit) bool {
	if slices.ContainsFunc(b.frameworks, func(h FrameworkHit) bool { return h.Name == hit.Name }) {
		return false
	}
	b.frameworks = append(b.frameworks, hit)
	return true
}

// SetInsights attaches derived insights.
func (b *Builder) SetInsights(i Insights) {
	b.insights = i.clone()
}

// Build produces an immutable report from the current state. The builder
// can keep accumulating and build again.
func (b *Builder) Build() *Report {
	r := &Report{
		root:           b.root,
		catalogVersion: b.catalogVersion,
		files:          slices.Clone(b.files),
		languages:      make(map[string]int),
		ignoreRules:    slices.Clone(b.ignoreRules),
		manifests:      slices.Clone(b.manifests),
		skipped:        slices.Clone(b.skipped),
		insights:       b.insights.clone(),
	}
	if r.files == nil {
		r.files = []FileEntry{}
	}

	for _, f := range b.files {
		if f.Role == RoleSource && f.Language != "" {
			r.languages[f.Language]++
		}
	}

	type depKey struct {
		name string
		eco  Ecosystem
	}
	index := make(map[depKey]int)
	deps := []Dependency{}
	for _, d := range b.dependencies {
		k := depKey{d.Name, d.Ecosystem}
		if i, ok := index[k]; ok {
			deps[i] = d
			continue
		}
		index[k] = len(deps)
		deps = append(deps, d)
	}
	slices.SortFunc(deps, func(a, b Dependency) int {
		if c := cmp.Compare(a.Ecosystem, b.Ecosystem); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	r.dependencies = deps

	r.frameworks = slices.Clone(b.frameworks)
	if r.frameworks == nil {
		r.frameworks = []FrameworkHit{}
	}
	slices.SortFunc(r.frameworks, func(a, b FrameworkHit) int { return cmp.Compare(a.Name, b.Name) })

	return r
}
