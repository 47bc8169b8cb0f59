package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSampleRepos(t *testing.T) {
	names := SampleRepos()
	want := []string{"flask", "polyglot", "webapp"}
	if len(names) != len(want) {
		t.Fatalf("SampleRepos() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("SampleRepos()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSampleRepo_CopiesHiddenFiles(t *testing.T) {
	root := SampleRepo(t, "webapp")

	for _, rel := range []string{"package.json", ".env.example", ".github/workflows/ci.yml", "node_modules/express/package.json"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s should be copied: %v", rel, err)
		}
	}
}

func TestLoadSampleFile(t *testing.T) {
	data, err := LoadSampleFile("flask", "requirements.txt")
	if err != nil {
		t.Fatalf("LoadSampleFile() error: %v", err)
	}
	if string(data) != "flask==2.0\nrequests\n" {
		t.Errorf("requirements.txt = %q", data)
	}
}

func TestWriteTree(t *testing.T) {
	root := WriteTree(t, map[string]string{
		"a/b/c.txt": "hello",
		"empty/":    "",
	})

	data, err := os.ReadFile(filepath.Join(root, "a", "b", "c.txt"))
	if err != nil || string(data) != "hello" {
		t.Errorf("a/b/c.txt = %q, %v", data, err)
	}
	info, err := os.Stat(filepath.Join(root, "empty"))
	if err != nil || !info.IsDir() {
		t.Errorf("empty/ should be a directory: %v", err)
	}
}
