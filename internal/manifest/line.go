package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/firefly-engineering/repolens/internal/report"
)

var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?\s*(.*)$`)

// parseRequirement splits a PEP 508 style requirement into name and raw
// constraint. The constraint is everything after the name and extras.
func parseRequirement(s string) (name, constraint string, ok bool) {
	m := requirementPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	rest := strings.TrimSpace(m[3])
	if rest != "" && !strings.ContainsRune("=<>!~@;,(", rune(rest[0])) {
		return "", "", false
	}
	return m[1], rest, true
}

// logicalLines yields lines with backslash continuations joined, along with
// the 1-based number of the line where each logical line started.
func logicalLines(content []byte, fn func(n int, line string) bool) {
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), len(content)+1)
	var (
		buf   strings.Builder
		start int
		n     int
	)
	for sc.Scan() {
		n++
		line := sc.Text()
		if buf.Len() == 0 {
			start = n
		}
		if strings.HasSuffix(line, `\`) {
			buf.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		buf.WriteString(line)
		if !fn(start, buf.String()) {
			return
		}
		buf.Reset()
	}
	if buf.Len() > 0 {
		fn(start, buf.String())
	}
}

// isDirectReference matches unnamed URL or path requirements.
func isDirectReference(line string) bool {
	return strings.Contains(line, "://") || strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/")
}

func parseRequirements(content []byte) ([]report.Dependency, error) {
	var (
		deps []report.Dependency
		err  error
	)
	logicalLines(content, func(n int, line string) bool {
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			return true
		case strings.HasPrefix(line, "-"):
			// -r other.txt, -e ., --index-url ...
			return true
		}
		name, constraint, ok := parseRequirement(line)
		if !ok && isDirectReference(line) {
			return true
		}
		if !ok {
			err = fmt.Errorf("line %d: malformed requirement %q", n, line)
			return false
		}
		deps = append(deps, report.Dependency{Name: name, Constraint: constraint})
		return true
	})
	return deps, err
}

// gemArgs splits the argument list of a gem call on commas outside quotes.
func gemArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		args = append(args, strings.TrimSpace(cur.String()))
	}
	return args
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func isDevGroup(s string) bool {
	return strings.Contains(s, "development") || strings.Contains(s, "test")
}

func parseGemfile(content []byte) ([]report.Dependency, error) {
	var (
		deps []report.Dependency
		err  error
		// one entry per open block, true for dev groups
		blocks []bool
	)
	inDev := func() bool {
		for _, dev := range blocks {
			if dev {
				return true
			}
		}
		return false
	}

	logicalLines(content, func(n int, line string) bool {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			return true
		case line == "end":
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
			return true
		case strings.HasSuffix(line, " do") || strings.Contains(line, " do |"),
			strings.HasPrefix(line, "if "), strings.HasPrefix(line, "unless "), strings.HasPrefix(line, "case "):
			blocks = append(blocks, strings.HasPrefix(line, "group") && isDevGroup(line))
			return true
		case !strings.HasPrefix(line, "gem ") && !strings.HasPrefix(line, "gem("):
			// source, ruby, gemspec and other DSL statements
			return true
		}

		for _, modifier := range []string{" if ", " unless "} {
			if i := strings.Index(line, modifier); i >= 0 {
				line = line[:i]
			}
		}
		args := gemArgs(strings.Trim(strings.TrimPrefix(line, "gem"), " ()"))
		name, ok := "", false
		if len(args) > 0 {
			name, ok = unquote(args[0])
		}
		if !ok || name == "" {
			err = fmt.Errorf("line %d: malformed gem declaration %q", n, line)
			return false
		}

		dep := report.Dependency{Name: name}
		var constraints []string
		for _, a := range args[1:] {
			if v, ok := unquote(a); ok {
				constraints = append(constraints, v)
				continue
			}
			if (strings.HasPrefix(a, "group") || strings.HasPrefix(a, ":group")) && isDevGroup(a) {
				dep.Scope = report.ScopeDev
			}
		}
		dep.Constraint = strings.Join(constraints, ", ")
		if inDev() {
			dep.Scope = report.ScopeDev
		}
		deps = append(deps, dep)
		return true
	})
	return deps, err
}

var lockSpecPattern = regexp.MustCompile(`^    ([^\s(]+) \(([^)]+)\)$`)

func parseGemfileLock(content []byte) ([]report.Dependency, error) {
	var (
		deps    []report.Dependency
		err     error
		inSpecs bool
	)
	logicalLines(content, func(n int, line string) bool {
		switch {
		case line == "":
			inSpecs = false
			return true
		case !strings.HasPrefix(line, " "):
			// GEM, GIT, PATH, PLATFORMS, DEPENDENCIES ...
			inSpecs = false
			return true
		case strings.TrimSpace(line) == "specs:":
			inSpecs = true
			return true
		case !inSpecs, strings.HasPrefix(line, "      "):
			// section attributes and nested requirements of a spec
			return true
		}
		m := lockSpecPattern.FindStringSubmatch(line)
		if m == nil {
			err = fmt.Errorf("line %d: malformed spec %q", n, strings.TrimSpace(line))
			return false
		}
		deps = append(deps, report.Dependency{Name: m[1], Constraint: m[2]})
		return true
	})
	return deps, err
}
