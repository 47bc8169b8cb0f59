// Package language classifies files by programming language.
package language

import (
	"bufio"
	"bytes"
	"path"
	"strings"

	"github.com/firefly-engineering/repolens/internal/catalog"
)

// Classifier maps file names to languages using the catalog tables. It holds
// no mutable state.
type Classifier struct {
	cat *catalog.Catalog
}

// New creates a classifier over the catalog's language table.
func New(c *catalog.Catalog) *Classifier {
	return &Classifier{cat: c}
}

// Classify resolves a language from the file name alone: exact filename
// first, then the lowercased extension.
func (c *Classifier) Classify(rel string) (string, bool) {
	base := path.Base(rel)
	if lang, ok := c.cat.LanguageByFilename(base); ok {
		return lang, true
	}
	if ext := extension(base); ext != "" {
		return c.cat.LanguageByExtension(ext)
	}
	return "", false
}

// NeedsContent reports whether a file can only be classified by sniffing its
// first bytes, which is the case for extension-less files with unknown names.
func (c *Classifier) NeedsContent(rel string) bool {
	base := path.Base(rel)
	if _, ok := c.cat.LanguageByFilename(base); ok {
		return false
	}
	return extension(base) == ""
}

// ClassifyContent is Classify with a shebang fallback over head.
func (c *Classifier) ClassifyContent(rel string, head []byte) (string, bool) {
	if lang, ok := c.Classify(rel); ok {
		return lang, true
	}
	if !c.NeedsContent(rel) {
		return "", false
	}
	interp, ok := Shebang(head)
	if !ok {
		return "", false
	}
	if lang, ok := c.cat.LanguageByInterpreter(interp); ok {
		return lang, true
	}
	// python3.12, ruby2.7
	return c.cat.LanguageByInterpreter(strings.TrimRight(interp, "0123456789."))
}

// Shebang returns the interpreter named on a "#!" first line, looking through
// /usr/bin/env and its flags and variable assignments.
func Shebang(head []byte) (string, bool) {
	if !bytes.HasPrefix(head, []byte("#!")) {
		return "", false
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(head[2:])).ReadLine()
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return "", false
	}

	prog := path.Base(fields[0])
	if prog == "env" {
		prog = ""
		for _, f := range fields[1:] {
			if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
				continue
			}
			prog = path.Base(f)
			break
		}
	}
	return prog, prog != ""
}

// extension returns the lowercased extension, treating a leading dot as part
// of the name (".bashrc" has none).
func extension(base string) string {
	trimmed := strings.TrimPrefix(base, ".")
	ext := path.Ext(trimmed)
	if ext == "" || ext == trimmed {
		return ""
	}
	return strings.ToLower(ext)
}
