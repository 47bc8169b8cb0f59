// Package testutil provides test utilities for building repository trees
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates the given files, keyed by slash-separated relative path,
// under a fresh temporary directory and returns its path. A key ending in
// "/" creates an empty directory.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	AddFiles(t, root, files)
	return root
}

// AddFiles writes files below root.
func AddFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// Symlink creates a symbolic link at rel below root pointing at target.
// The test is skipped where symlinks cannot be created.
func Symlink(t testing.TB, root, target, rel string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.Symlink(target, full); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

// MakeUnreadable removes all permissions from rel below root and restores
// them when the test ends. The test is skipped when running as root, where
// permissions are not enforced.
func MakeUnreadable(t testing.TB, root, rel string) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		t.Fatalf("Failed to stat %s: %v", rel, err)
	}
	if err := os.Chmod(full, 0); err != nil {
		t.Fatalf("Failed to chmod %s: %v", rel, err)
	}
	t.Cleanup(func() { _ = os.Chmod(full, info.Mode().Perm()) })
}
