package manifest

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/repolens/internal/report"
)

type pubspecDoc struct {
	Dependencies    yaml.Node `yaml:"dependencies"`
	DevDependencies yaml.Node `yaml:"dev_dependencies"`
}

func parsePubspec(content []byte) ([]report.Dependency, error) {
	doc, err := parsePrefix(content, func(b []byte) (pubspecDoc, error) {
		var d pubspecDoc
		return d, yaml.Unmarshal(b, &d)
	})
	deps := yamlDeps(&doc.Dependencies, "")
	deps = append(deps, yamlDeps(&doc.DevDependencies, report.ScopeDev)...)
	return deps, err
}

// yamlDeps reads a mapping node in document order. Nested specifications
// are rendered in flow style.
func yamlDeps(node *yaml.Node, scope string) []report.Dependency {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	var deps []report.Dependency
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		deps = append(deps, report.Dependency{Name: key.Value, Constraint: yamlConstraint(val), Scope: scope})
	}
	return deps
}

func yamlConstraint(n *yaml.Node) string {
	switch {
	case n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null":
		return ""
	case n.Kind == yaml.ScalarNode:
		return n.Value
	}
	flow := *n
	setFlow(&flow)
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func setFlow(n *yaml.Node) {
	n.Style |= yaml.FlowStyle
	n.Content = slices.Clone(n.Content)
	for i, c := range n.Content {
		cp := *c
		setFlow(&cp)
		n.Content[i] = &cp
	}
}
