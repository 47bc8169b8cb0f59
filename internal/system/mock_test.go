package system

import (
	"context"
	"io/fs"
	"testing"
)

func TestMockFS_WriteFile(t *testing.T) {
	mockFS := NewMockFS()

	if err := mockFS.WriteFile("/out/README.md", []byte("# demo\n"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, ok := mockFS.GetFile("/out/README.md")
	if !ok {
		t.Fatal("GetFile should find the written file")
	}
	if string(data) != "# demo\n" {
		t.Errorf("GetFile = %q, want %q", string(data), "# demo\n")
	}
	if _, ok := mockFS.GetFile("/nonexistent"); ok {
		t.Error("GetFile should not find a missing file")
	}
}

func TestMockFS_Exists(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddFile("/clone/app.py", []byte("x"))

	if !mockFS.Exists("/clone/app.py") {
		t.Error("File should exist")
	}
	if !mockFS.Exists("/clone") {
		t.Error("Parent dir should exist")
	}
	if mockFS.Exists("/nonexistent") {
		t.Error("Nonexistent should not exist")
	}
}

func TestMockFS_RemoveAll(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddFile("/clone/a.py", []byte("x"))
	mockFS.AddFile("/clone/pkg/b.py", []byte("y"))
	mockFS.AddFile("/clone-other/c.py", []byte("z"))

	if err := mockFS.RemoveAll("/clone"); err != nil {
		t.Fatalf("RemoveAll error: %v", err)
	}

	if mockFS.Exists("/clone/a.py") || mockFS.Exists("/clone/pkg/b.py") || mockFS.Exists("/clone") {
		t.Error("clone tree should be removed")
	}
	if !mockFS.Exists("/clone-other/c.py") {
		t.Error("sibling with shared name prefix should survive")
	}
}

func TestMockFS_MkdirAll(t *testing.T) {
	mockFS := NewMockFS()

	if err := mockFS.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mockFS.Exists(dir) {
			t.Errorf("%s should exist", dir)
		}
	}
}

func TestMockFS_ErrorInjection(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.WriteFileErr = fs.ErrPermission

	if err := mockFS.WriteFile("/anything", nil, 0644); err != fs.ErrPermission {
		t.Errorf("WriteFile error = %v, want ErrPermission", err)
	}
}

func TestMockExecutor_Execute(t *testing.T) {
	exec := NewMockExecutor()
	exec.AddResponse("git clone", []byte("Cloning into 'repo'...\n"), nil)

	output, err := exec.Execute(context.Background(), "git", "clone", "--depth", "1", "https://example.com/repo.git", "repo")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if string(output) != "Cloning into 'repo'...\n" {
		t.Errorf("Output = %q", string(output))
	}

	cmd, ok := exec.LastCommand()
	if !ok {
		t.Fatal("No command recorded")
	}
	if cmd.Name != "git" || len(cmd.Args) != 5 {
		t.Errorf("Command = %+v", cmd)
	}
}

func TestMockExecutor_DefaultResponse(t *testing.T) {
	exec := NewMockExecutor()
	exec.DefaultResponse = MockResponse{Output: []byte("default")}

	output, err := exec.Execute(context.Background(), "unknown", "command")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if string(output) != "default" {
		t.Errorf("Output = %q, want %q", string(output), "default")
	}
}

func TestMockExecutor_CanceledContext(t *testing.T) {
	exec := NewMockExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exec.Execute(ctx, "git", "clone"); err != context.Canceled {
		t.Errorf("Execute error = %v, want context.Canceled", err)
	}
}

func TestMockExecutor_LookPath(t *testing.T) {
	exec := NewMockExecutor()
	exec.Missing["git"] = true

	if _, err := exec.LookPath("git"); err == nil {
		t.Error("LookPath(git) should fail when marked missing")
	}
	if path, err := exec.LookPath("sh"); err != nil || path == "" {
		t.Errorf("LookPath(sh) = %q, %v", path, err)
	}
}

func TestMockExecutor_Reset(t *testing.T) {
	exec := NewMockExecutor()
	exec.Execute(context.Background(), "cmd1")
	exec.Execute(context.Background(), "cmd2")

	if len(exec.Commands) != 2 {
		t.Errorf("Commands length = %d, want 2", len(exec.Commands))
	}

	exec.Reset()

	if len(exec.Commands) != 0 {
		t.Errorf("Commands length after reset = %d, want 0", len(exec.Commands))
	}
}
