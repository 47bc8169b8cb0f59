package logging

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestSetup_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	Info("walk finished", "entries", 3)

	output := buf.String()
	if !strings.Contains(output, "walk finished") || !strings.Contains(output, "entries=3") {
		t.Errorf("unexpected text output: %s", output)
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, true, &buf)

	Info("walk finished", "root", "/repo")

	output := buf.String()
	if !strings.Contains(output, `"msg":"walk finished"`) {
		t.Errorf("Expected JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"root":"/repo"`) {
		t.Errorf("Expected root attribute, got: %s", output)
	}
}

func TestSetup_Verbosity(t *testing.T) {
	var buf bytes.Buffer

	Setup(false, false, &buf)
	if Verbose {
		t.Error("Verbose flag should be false after Setup(false, ...)")
	}
	Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug message leaked in non-verbose mode: %s", buf.String())
	}

	buf.Reset()
	Setup(true, false, &buf)
	if !Verbose {
		t.Error("Verbose flag should be true after Setup(true, ...)")
	}
	Debug("shown", "path", "a/b.py")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug message missing in verbose mode: %s", buf.String())
	}
}

func TestWarnAndError(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	Warn("manifest parsed partially", "path", "requirements.txt")
	Error("clone failed", fmt.Errorf("exit status 128"), "url", "https://example.com/r.git")

	output := buf.String()
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "level=ERROR") {
		t.Errorf("missing levels in output: %s", output)
	}
	if !strings.Contains(output, `error="exit status 128"`) || !strings.Contains(output, "url=https://example.com/r.git") {
		t.Errorf("error attributes missing: %s", output)
	}
}

func TestError_JSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, true, &buf)

	Error("command failed", fmt.Errorf("root not found"), "exit_code", 3)

	output := buf.String()
	for _, want := range []string{`"level":"ERROR"`, `"error":"root not found"`, `"exit_code":3`} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %s in %s", want, output)
		}
	}
}

func TestSetup_TextOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	Info("walk finished")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("text output should not carry timestamps: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	With("component", "analyzer").Info("started")

	if !strings.Contains(buf.String(), "component=analyzer") {
		t.Errorf("With attributes missing: %s", buf.String())
	}
}

func TestUserOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	defer func() { Stdout, Stderr = oldOut, oldErr }()

	UserInfo("Cloning %s", "repo")
	UserSuccess("done")
	UserWarning("%d skipped", 2)
	UserError("failed")

	if out.String() != "ℹ Cloning repo\n✓ done\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if errOut.String() != "⚠ 2 skipped\n✗ failed\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}
