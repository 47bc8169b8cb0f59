package manifest

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/firefly-engineering/repolens/internal/report"
)

// mavenScope maps Maven dependency scopes onto report scopes.
func mavenScope(scope string, optional bool) string {
	switch {
	case scope == "test":
		return report.ScopeDev
	case scope == "provided" || scope == "system":
		return report.ScopeBuild
	case optional:
		return report.ScopeOptional
	default:
		return ""
	}
}

func parsePom(content []byte) ([]report.Dependency, error) {
	var (
		deps  []report.Dependency
		stack []string
		cur   map[string]string
		text  strings.Builder
	)
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return deps, nil
		}
		if err != nil {
			return deps, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			text.Reset()
			// project/dependencies/dependency or
			// project/dependencyManagement/dependencies/dependency
			if t.Name.Local == "dependency" && len(stack) >= 2 && stack[len(stack)-2] == "dependencies" && !inPlugin(stack) {
				cur = make(map[string]string)
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch {
			case cur != nil && name == "dependency":
				if cur["groupId"] != "" || cur["artifactId"] != "" {
					deps = append(deps, report.Dependency{
						Name:       cur["groupId"] + ":" + cur["artifactId"],
						Constraint: cur["version"],
						Scope:      mavenScope(cur["scope"], cur["optional"] == "true"),
					})
				}
				cur = nil
			case cur != nil && len(stack) > 0 && stack[len(stack)-1] == "dependency":
				cur[name] = strings.TrimSpace(text.String())
			}
			text.Reset()
		}
	}
}

// inPlugin reports whether the dependency sits inside a build plugin, whose
// dependencies belong to the build tool rather than the project.
func inPlugin(stack []string) bool {
	for _, s := range stack {
		if s == "plugin" {
			return true
		}
	}
	return false
}

func parseCsproj(content []byte) ([]report.Dependency, error) {
	var (
		deps    []report.Dependency
		cur     *report.Dependency
		inVer   bool
		verText strings.Builder
	)
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return deps, nil
		}
		if err != nil {
			return deps, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "PackageReference":
				cur = &report.Dependency{}
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "Include":
						cur.Name = a.Value
					case "Version":
						cur.Constraint = a.Value
					case "PrivateAssets":
						if strings.EqualFold(a.Value, "all") {
							cur.Scope = report.ScopeDev
						}
					}
				}
			case cur != nil && t.Name.Local == "Version":
				inVer = true
				verText.Reset()
			}
		case xml.CharData:
			if inVer {
				verText.Write(t)
			}
		case xml.EndElement:
			switch {
			case inVer && t.Name.Local == "Version":
				inVer = false
				cur.Constraint = strings.TrimSpace(verText.String())
			case cur != nil && t.Name.Local == "PackageReference":
				// Update="..." references have no Include and name nothing new
				if cur.Name != "" {
					deps = append(deps, *cur)
				}
				cur = nil
			}
		}
	}
}
