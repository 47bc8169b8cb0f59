package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firefly-engineering/repolens/internal/report"
)

// JSON manifests are token-streamed so that entries before a syntax error
// are kept.

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("offset %d: expected %q, got %v", dec.InputOffset(), want, tok)
	}
	return nil
}

// walkObject calls fn for every key of the next object. fn must consume the
// key's value.
func walkObject(dec *json.Decoder, fn func(key string) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("offset %d: expected object key, got %v", dec.InputOffset(), tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

// walkArray calls fn for every element of the next array. fn must consume
// the element.
func walkArray(dec *json.Decoder, fn func() error) error {
	if err := expectDelim(dec, '['); err != nil {
		return err
	}
	for dec.More() {
		if err := fn(); err != nil {
			return err
		}
	}
	return expectDelim(dec, ']')
}

func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}

// jsonConstraint renders a dependency value; non-string values are kept as
// compact JSON.
func jsonConstraint(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// streamDeps reads a name → constraint object, appending to *deps as it goes.
func streamDeps(dec *json.Decoder, deps *[]report.Dependency, scope string, keep func(string) bool) error {
	return walkObject(dec, func(name string) error {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if keep == nil || keep(name) {
			*deps = append(*deps, report.Dependency{Name: name, Constraint: jsonConstraint(raw), Scope: scope})
		}
		return nil
	})
}

var packageJSONSections = map[string]string{
	"dependencies":         "",
	"devDependencies":      report.ScopeDev,
	"peerDependencies":     report.ScopePeer,
	"optionalDependencies": report.ScopeOptional,
}

func parsePackageJSON(content []byte) ([]report.Dependency, error) {
	var deps []report.Dependency
	dec := json.NewDecoder(bytes.NewReader(content))
	err := walkObject(dec, func(key string) error {
		scope, ok := packageJSONSections[key]
		if !ok {
			return skipValue(dec)
		}
		return streamDeps(dec, &deps, scope, nil)
	})
	return deps, err
}

// isComposerPackage filters out platform requirements such as php and ext-*.
func isComposerPackage(name string) bool {
	return strings.Contains(name, "/")
}

func parseComposerJSON(content []byte) ([]report.Dependency, error) {
	var deps []report.Dependency
	dec := json.NewDecoder(bytes.NewReader(content))
	err := walkObject(dec, func(key string) error {
		switch key {
		case "require":
			return streamDeps(dec, &deps, "", isComposerPackage)
		case "require-dev":
			return streamDeps(dec, &deps, report.ScopeDev, isComposerPackage)
		default:
			return skipValue(dec)
		}
	})
	return deps, err
}

func parseComposerLock(content []byte) ([]report.Dependency, error) {
	var deps []report.Dependency
	dec := json.NewDecoder(bytes.NewReader(content))
	err := walkObject(dec, func(key string) error {
		scope := ""
		switch key {
		case "packages":
		case "packages-dev":
			scope = report.ScopeDev
		default:
			return skipValue(dec)
		}
		return walkArray(dec, func() error {
			var pkg struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			}
			if err := dec.Decode(&pkg); err != nil {
				return err
			}
			deps = append(deps, report.Dependency{Name: pkg.Name, Constraint: pkg.Version, Scope: scope})
			return nil
		})
	})
	return deps, err
}
