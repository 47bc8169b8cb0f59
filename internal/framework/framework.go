// Package framework detects technologies from dependencies, root config
// files and import markers in sampled source files.
package framework

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/firefly-engineering/repolens/internal/catalog"
	"github.com/firefly-engineering/repolens/internal/report"
)

// Sample is the head of a source file selected for marker search.
type Sample struct {
	Path     string
	Language string
	Head     []byte
}

// Detector matches catalog framework signatures. It holds no mutable state.
type Detector struct {
	frameworks []catalog.Framework
}

// New creates a detector over the catalog's framework signatures.
func New(c *catalog.Catalog) *Detector {
	return &Detector{frameworks: c.Frameworks()}
}

// Detect returns one hit per detected framework, sorted by name. Evidence is
// taken from the first pass that matches: dependencies, then root config
// files, then import markers.
func (d *Detector) Detect(entries []report.FileEntry, deps []report.Dependency, samples []Sample) []report.FrameworkHit {
	var hits []report.FrameworkHit
	seen := make(map[string]bool)
	add := func(name, evidence string) {
		if seen[name] {
			return
		}
		seen[name] = true
		hits = append(hits, report.FrameworkHit{Name: name, Evidence: evidence})
	}

	for _, dep := range deps {
		name := strings.ToLower(dep.Name)
		for _, fw := range d.frameworks {
			if matchAny(fw.Packages[string(dep.Ecosystem)], name) {
				add(fw.Name, fmt.Sprintf("dependency %s (%s) in %s", dep.Name, dep.Ecosystem, dep.Manifest))
			}
		}
	}

	for _, e := range entries {
		if e.Role == report.RoleIgnored || strings.Contains(e.Path, "/") {
			continue
		}
		for _, fw := range d.frameworks {
			if matchAny(fw.Files, e.Path) {
				add(fw.Name, "file "+e.Path)
			}
		}
	}

	for _, s := range samples {
		for _, fw := range d.frameworks {
			for _, marker := range fw.Imports[s.Language] {
				if bytes.Contains(s.Head, []byte(marker)) {
					add(fw.Name, fmt.Sprintf("import %q in %s", marker, s.Path))
					break
				}
			}
		}
	}

	slices.SortFunc(hits, func(a, b report.FrameworkHit) int { return cmp.Compare(a.Name, b.Name) })
	return hits
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
