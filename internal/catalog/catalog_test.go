package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDefault_Loads(t *testing.T) {
	c := Default()

	assert.Equal(t, "2026.10", c.Version())
	assert.NotEmpty(t, c.IgnoreRules())
	assert.True(t, c.HasLanguage("Python"))
	assert.Same(t, c, Default())
}

func TestDefault_Lookups(t *testing.T) {
	c := Default()

	tests := []struct {
		lookup func(string) (string, bool)
		key    string
		want   string
	}{
		{c.LanguageByExtension, ".py", "Python"},
		{c.LanguageByExtension, ".PY", "Python"},
		{c.LanguageByExtension, ".tsx", "TypeScript"},
		{c.LanguageByExtension, ".h", "C"},
		{c.LanguageByFilename, "Makefile", "Makefile"},
		{c.LanguageByFilename, "Dockerfile", "Dockerfile"},
		{c.LanguageByFilename, "CMakeLists.txt", "CMake"},
		{c.LanguageByInterpreter, "python3", "Python"},
		{c.LanguageByInterpreter, "node", "JavaScript"},
		{c.LanguageByInterpreter, "bash", "Shell"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := tt.lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := c.LanguageByExtension(".json")
	assert.False(t, ok, "data formats are not languages")
	_, ok = c.LanguageByExtension(".txt")
	assert.False(t, ok)
}

func TestDefault_IgnoreCatalog(t *testing.T) {
	rules := Default().IgnoreRules()

	find := func(pattern string) (IgnoreRule, bool) {
		for _, r := range rules {
			if r.Pattern == pattern {
				return r, true
			}
		}
		return IgnoreRule{}, false
	}

	r, ok := find("node_modules")
	require.True(t, ok)
	assert.Equal(t, KindDir, r.Kind)

	r, ok = find("*.pyc")
	require.True(t, ok)
	assert.Equal(t, KindFile, r.Kind)

	_, ok = find("*.lock")
	assert.False(t, ok, "lockfiles are parsed, not ignored")
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()

	rules := c.IgnoreRules()
	rules[0].Pattern = "mutated"
	assert.NotEqual(t, "mutated", c.IgnoreRules()[0].Pattern)

	fws := c.Frameworks()
	for i := range fws {
		if fws[i].Name == "Flask" {
			fws[i].Packages["pypi"][0] = "mutated"
		}
	}
	for _, f := range c.Frameworks() {
		if f.Name == "Flask" {
			assert.Equal(t, "flask", f.Packages["pypi"][0])
		}
	}
}

func TestLoad_Extension(t *testing.T) {
	p := writeCatalog(t, `
ignore:
  - {pattern: generated, kind: dir, reason: generated code}
languages:
  - name: Python
    extensions: [.pyx]
  - name: Gleam
    extensions: [.gleam]
frameworks:
  - name: Flask
    packages: {pypi: [quart]}
`)

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "2026.10+1", c.Version())
	lang, ok := c.LanguageByExtension(".pyx")
	assert.True(t, ok)
	assert.Equal(t, "Python", lang)
	lang, _ = c.LanguageByExtension(".gleam")
	assert.Equal(t, "Gleam", lang)

	for _, f := range c.Frameworks() {
		if f.Name == "Flask" {
			assert.Contains(t, f.Packages["pypi"], "quart")
			assert.Contains(t, f.Packages["pypi"], "flask")
		}
	}
}

func TestLoad_RejectsDuplicateExtension(t *testing.T) {
	p := writeCatalog(t, `
languages:
  - name: Perl6
    extensions: [.pl]
`)

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `extension ".pl" mapped to both Perl and Perl6`)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad kind",
			content: "ignore:\n  - {pattern: tmp, kind: folder, reason: x}\n",
			wantErr: "invalid kind",
		},
		{
			name:    "pattern with slash",
			content: "ignore:\n  - {pattern: a/b, kind: dir, reason: x}\n",
			wantErr: "invalid segment pattern",
		},
		{
			name:    "duplicate ignore",
			content: "ignore:\n  - {pattern: node_modules, kind: dir, reason: again}\n",
			wantErr: "declared twice",
		},
		{
			name:    "uppercase extension",
			content: "languages:\n  - name: Foo\n    extensions: [.FOO]\n",
			wantErr: "must be lowercase",
		},
		{
			name:    "unknown import language",
			content: "frameworks:\n  - name: Foo\n    imports: {Klingon: [qapla]}\n",
			wantErr: "unknown language",
		},
		{
			name:    "empty framework",
			content: "frameworks:\n  - name: Foo\n",
			wantErr: "no signatures",
		},
		{
			name:    "unknown field",
			content: "languages:\n  - name: Foo\n    suffixes: [.foo]\n",
			wantErr: "suffixes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
