package testutil

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"testing"
)

//go:embed all:testdata/repos
var reposFS embed.FS

const reposDir = "testdata/repos"

// SampleRepos lists the embedded sample repositories.
func SampleRepos() []string {
	entries, err := reposFS.ReadDir(reposDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// SampleRepo copies the named sample repository into a fresh temporary
// directory and returns its path.
func SampleRepo(t testing.TB, name string) string {
	t.Helper()

	src := path.Join(reposDir, name)
	if _, err := fs.Stat(reposFS, src); err != nil {
		t.Fatalf("unknown sample repository %q", name)
	}

	root := t.TempDir()
	err := fs.WalkDir(reposFS, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(filepath.FromSlash(src), filepath.FromSlash(p))
		dst := filepath.Join(root, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0755)
		}
		data, err := reposFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0644)
	})
	if err != nil {
		t.Fatalf("failed to copy sample repository %q: %v", name, err)
	}
	return root
}

// LoadSampleFile returns one file of a sample repository.
func LoadSampleFile(repo, rel string) ([]byte, error) {
	return reposFS.ReadFile(path.Join(reposDir, repo, rel))
}
