package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

var reportTemplates *template.Template

func init() {
	funcs := template.FuncMap{
		"joinStrings": strings.Join,
		"percent": func(n, total int) string {
			if total == 0 {
				return "0%"
			}
			return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
		},
	}
	reportTemplates = template.Must(
		template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.md.tmpl"),
	)
}

// view is the serialised form of a report.
type view struct {
	Root           string           `json:"root" yaml:"root"`
	CatalogVersion string           `json:"catalog_version" yaml:"catalog_version"`
	Languages      map[string]int   `json:"languages" yaml:"languages"`
	Dependencies   []Dependency     `json:"dependencies" yaml:"dependencies"`
	Frameworks     []FrameworkHit   `json:"frameworks" yaml:"frameworks"`
	IgnoreRules    []IgnoreRule     `json:"ignore_rules" yaml:"ignore_rules"`
	Manifests      []ManifestStatus `json:"manifests" yaml:"manifests"`
	Skipped        []Skipped        `json:"skipped" yaml:"skipped"`
	Insights       Insights         `json:"insights" yaml:"insights"`
	Files          []FileEntry      `json:"files" yaml:"files"`
}

func (r *Report) view() view {
	v := view{
		Root:           r.root,
		CatalogVersion: r.catalogVersion,
		Languages:      r.Languages(),
		Dependencies:   r.Dependencies(),
		Frameworks:     r.Frameworks(),
		IgnoreRules:    r.IgnoreRules(),
		Manifests:      r.Manifests(),
		Skipped:        r.Skipped(),
		Insights:       r.Insights(),
		Files:          r.Files(),
	}
	if v.IgnoreRules == nil {
		v.IgnoreRules = []IgnoreRule{}
	}
	if v.Manifests == nil {
		v.Manifests = []ManifestStatus{}
	}
	if v.Skipped == nil {
		v.Skipped = []Skipped{}
	}
	return v
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML implements yaml.Marshaler.
func (r *Report) MarshalYAML() (any, error) {
	return r.view(), nil
}

// JSON renders the report as indented JSON.
func JSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML renders the report as a YAML document.
func YAML(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type languageRow struct {
	Name  string
	Count int
}

type summaryData struct {
	Report    *Report
	Languages []languageRow
	Sources   int
	Partial   []ManifestStatus
	Insights  Insights
}

// Markdown renders a human-readable summary of the report.
func Markdown(r *Report) string {
	data := summaryData{
		Report:   r,
		Sources:  r.SourceFiles(),
		Insights: r.Insights(),
	}
	for _, name := range r.LanguageNames() {
		data.Languages = append(data.Languages, languageRow{Name: name, Count: r.languages[name]})
	}
	for _, m := range r.manifests {
		if m.Partial {
			data.Partial = append(data.Partial, m)
		}
	}
	return renderTemplate("summary.md.tmpl", data)
}

func renderTemplate(name string, data any) string {
	var buf bytes.Buffer
	if err := reportTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		panic("report: failed to render template " + name + ": " + err.Error())
	}
	return buf.String()
}
