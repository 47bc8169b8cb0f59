// Package catalog holds the closed configuration data the analyzer matches
// against: ignore patterns, the language table and framework signatures.
//
// The built-in catalog is embedded YAML. Additional catalog files can extend
// it at load time; after Load returns, a Catalog never changes and is safe to
// share between goroutines.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Kind tells which path segments an ignore rule applies to.
type Kind string

const (
	KindDir  Kind = "dir"
	KindFile Kind = "file"
)

// IgnoreRule is a single ignore pattern with its human-readable reason.
type IgnoreRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Reason  string `yaml:"reason" json:"reason"`
	Kind    Kind   `yaml:"kind" json:"kind"`
}

// Language maps extensions, exact filenames and shebang interpreters to a
// language name.
type Language struct {
	Name         string   `yaml:"name" json:"name"`
	Extensions   []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty" json:"filenames,omitempty"`
	Interpreters []string `yaml:"interpreters,omitempty" json:"interpreters,omitempty"`
}

// Framework describes how one technology is recognised.
type Framework struct {
	Name string `yaml:"name" json:"name"`
	// Packages maps an ecosystem to dependency name globs.
	Packages map[string][]string `yaml:"packages,omitempty" json:"packages,omitempty"`
	// Imports maps a language name to substrings searched in source heads.
	Imports map[string][]string `yaml:"imports,omitempty" json:"imports,omitempty"`
	// Files are globs matched against entries at the repository root.
	Files []string `yaml:"files,omitempty" json:"files,omitempty"`
}

type document struct {
	Version    string       `yaml:"version"`
	Ignore     []IgnoreRule `yaml:"ignore"`
	Languages  []Language   `yaml:"languages"`
	Frameworks []Framework  `yaml:"frameworks"`
}

// Catalog is the validated, indexed union of all loaded catalog documents.
type Catalog struct {
	version    string
	ignore     []IgnoreRule
	languages  []Language
	frameworks []Framework

	byExtension   map[string]string
	byFilename    map[string]string
	byInterpreter map[string]string
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data is invalid: %v", err))
	}
	return c
})

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Load builds a catalog from the embedded data extended by the given files.
// Extension files use the same schema as the embedded ones; every section is
// optional. Languages and frameworks that already exist are extended in place.
func Load(paths ...string) (*Catalog, error) {
	b := newBuilder()

	embedded, err := fs.Glob(dataFS, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	slices.Sort(embedded)
	for _, name := range embedded {
		data, err := dataFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := b.add(name, data, true); err != nil {
			return nil, err
		}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
		if err := b.add(p, data, false); err != nil {
			return nil, err
		}
	}

	return b.build(len(paths))
}

// Version identifies the catalog data. Extended catalogs carry a "+N" suffix
// with the number of extension files.
func (c *Catalog) Version() string {
	return c.version
}

// IgnoreRules returns the ignore rules in catalog order.
func (c *Catalog) IgnoreRules() []IgnoreRule {
	return slices.Clone(c.ignore)
}

// Languages returns the language table in catalog order.
func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.languages))
	for i, l := range c.languages {
		out[i] = Language{
			Name:         l.Name,
			Extensions:   slices.Clone(l.Extensions),
			Filenames:    slices.Clone(l.Filenames),
			Interpreters: slices.Clone(l.Interpreters),
		}
	}
	return out
}

// Frameworks returns the framework signatures in catalog order.
func (c *Catalog) Frameworks() []Framework {
	out := make([]Framework, len(c.frameworks))
	for i, f := range c.frameworks {
		out[i] = Framework{
			Name:     f.Name,
			Packages: cloneMap(f.Packages),
			Imports:  cloneMap(f.Imports),
			Files:    slices.Clone(f.Files),
		}
	}
	return out
}

// LanguageByExtension looks up a file extension including the leading dot.
func (c *Catalog) LanguageByExtension(ext string) (string, bool) {
	lang, ok := c.byExtension[strings.ToLower(ext)]
	return lang, ok
}

// LanguageByFilename looks up an exact file name.
func (c *Catalog) LanguageByFilename(name string) (string, bool) {
	lang, ok := c.byFilename[name]
	return lang, ok
}

// LanguageByInterpreter looks up the program named on a shebang line.
func (c *Catalog) LanguageByInterpreter(name string) (string, bool) {
	lang, ok := c.byInterpreter[strings.ToLower(name)]
	return lang, ok
}

// HasLanguage reports whether name is a language in the table.
func (c *Catalog) HasLanguage(name string) bool {
	return slices.ContainsFunc(c.languages, func(l Language) bool { return l.Name == name })
}

type builder struct {
	version    string
	ignore     []IgnoreRule
	languages  []Language
	frameworks []Framework
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) add(source string, data []byte, embedded bool) error {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("%s: %w", source, err)
	}

	if embedded {
		switch {
		case doc.Version == "":
			return fmt.Errorf("%s: missing version", source)
		case b.version == "":
			b.version = doc.Version
		case b.version != doc.Version:
			return fmt.Errorf("%s: version %q does not match %q", source, doc.Version, b.version)
		}
	}

	b.ignore = append(b.ignore, doc.Ignore...)

	for _, l := range doc.Languages {
		if i := slices.IndexFunc(b.languages, func(x Language) bool { return x.Name == l.Name }); i >= 0 {
			b.languages[i].Extensions = append(b.languages[i].Extensions, l.Extensions...)
			b.languages[i].Filenames = append(b.languages[i].Filenames, l.Filenames...)
			b.languages[i].Interpreters = append(b.languages[i].Interpreters, l.Interpreters...)
			continue
		}
		b.languages = append(b.languages, l)
	}

	for _, f := range doc.Frameworks {
		if i := slices.IndexFunc(b.frameworks, func(x Framework) bool { return x.Name == f.Name }); i >= 0 {
			b.frameworks[i].Packages = mergeMap(b.frameworks[i].Packages, f.Packages)
			b.frameworks[i].Imports = mergeMap(b.frameworks[i].Imports, f.Imports)
			b.frameworks[i].Files = append(b.frameworks[i].Files, f.Files...)
			continue
		}
		b.frameworks = append(b.frameworks, f)
	}
	return nil
}

func (b *builder) build(extensions int) (*Catalog, error) {
	c := &Catalog{
		version:       b.version,
		ignore:        b.ignore,
		languages:     b.languages,
		frameworks:    b.frameworks,
		byExtension:   make(map[string]string),
		byFilename:    make(map[string]string),
		byInterpreter: make(map[string]string),
	}
	if extensions > 0 {
		c.version = fmt.Sprintf("%s+%d", b.version, extensions)
	}

	if err := c.indexIgnore(); err != nil {
		return nil, err
	}
	if err := c.indexLanguages(); err != nil {
		return nil, err
	}
	if err := c.validateFrameworks(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) indexIgnore() error {
	seen := make(map[IgnoreRule]bool)
	for _, r := range c.ignore {
		if err := ValidateIgnoreRule(r); err != nil {
			return err
		}
		key := IgnoreRule{Pattern: r.Pattern, Kind: r.Kind}
		if seen[key] {
			return fmt.Errorf("ignore rule %q (%s) declared twice", r.Pattern, r.Kind)
		}
		seen[key] = true
	}
	return nil
}

// ValidateIgnoreRule checks a single rule. Patterns match one path segment,
// so they may not contain a slash.
func ValidateIgnoreRule(r IgnoreRule) error {
	if r.Pattern == "" || r.Reason == "" {
		return fmt.Errorf("ignore rule %q: pattern and reason are required", r.Pattern)
	}
	if r.Kind != KindDir && r.Kind != KindFile {
		return fmt.Errorf("ignore rule %q: invalid kind %q", r.Pattern, r.Kind)
	}
	if strings.Contains(r.Pattern, "/") || !doublestar.ValidatePattern(r.Pattern) {
		return fmt.Errorf("ignore rule %q: invalid segment pattern", r.Pattern)
	}
	return nil
}

func (c *Catalog) indexLanguages() error {
	names := make(map[string]bool)
	for _, l := range c.languages {
		if l.Name == "" {
			return fmt.Errorf("language without a name")
		}
		if names[l.Name] {
			return fmt.Errorf("language %q declared twice", l.Name)
		}
		names[l.Name] = true

		for _, ext := range l.Extensions {
			if !strings.HasPrefix(ext, ".") || ext != strings.ToLower(ext) || path.Base(ext) != ext {
				return fmt.Errorf("language %q: extension %q must be lowercase and start with a dot", l.Name, ext)
			}
			if err := claim(c.byExtension, ext, l.Name, "extension"); err != nil {
				return err
			}
		}
		for _, name := range l.Filenames {
			if err := claim(c.byFilename, name, l.Name, "filename"); err != nil {
				return err
			}
		}
		for _, interp := range l.Interpreters {
			if interp != strings.ToLower(interp) {
				return fmt.Errorf("language %q: interpreter %q must be lowercase", l.Name, interp)
			}
			if err := claim(c.byInterpreter, interp, l.Name, "interpreter"); err != nil {
				return err
			}
		}
	}
	return nil
}

func claim(index map[string]string, key, lang, what string) error {
	if owner, ok := index[key]; ok {
		return fmt.Errorf("%s %q mapped to both %s and %s", what, key, owner, lang)
	}
	index[key] = lang
	return nil
}

func (c *Catalog) validateFrameworks() error {
	names := make(map[string]bool)
	for _, f := range c.frameworks {
		if f.Name == "" {
			return fmt.Errorf("framework without a name")
		}
		if names[f.Name] {
			return fmt.Errorf("framework %q declared twice", f.Name)
		}
		names[f.Name] = true

		if len(f.Packages) == 0 && len(f.Imports) == 0 && len(f.Files) == 0 {
			return fmt.Errorf("framework %q has no signatures", f.Name)
		}
		for eco, globs := range f.Packages {
			for _, g := range globs {
				if g != strings.ToLower(g) || !doublestar.ValidatePattern(g) {
					return fmt.Errorf("framework %q: invalid %s package pattern %q", f.Name, eco, g)
				}
			}
		}
		for lang := range f.Imports {
			if !c.HasLanguage(lang) {
				return fmt.Errorf("framework %q: unknown language %q", f.Name, lang)
			}
		}
		for _, g := range f.Files {
			if strings.Contains(g, "/") || !doublestar.ValidatePattern(g) {
				return fmt.Errorf("framework %q: invalid file pattern %q", f.Name, g)
			}
		}
	}
	return nil
}

func cloneMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func mergeMap(dst, src map[string][]string) map[string][]string {
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
	return dst
}
