package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/firefly-engineering/repolens/internal/app"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/llm"
	"github.com/firefly-engineering/repolens/internal/logging"
	"github.com/firefly-engineering/repolens/internal/report"
	"github.com/firefly-engineering/repolens/internal/system"
	"github.com/firefly-engineering/repolens/internal/testutil"
	"github.com/firefly-engineering/repolens/internal/tui"
)

// testEnv holds test environment state
type testEnv struct {
	tmpDir     string
	configPath string
	executor   *system.MockExecutor
	client     *llm.Mock
}

// setupTestEnv installs a mock executor and LLM client, writes a config
// file, and makes the browser non-interactive.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &testEnv{
		tmpDir:     tmpDir,
		configPath: filepath.Join(tmpDir, "repolens.toml"),
		executor:   system.NewMockExecutor(),
		client:     llm.NewMock("# Demo\n\nGenerated README.\n"),
	}
	env.writeConfig(t, "[analysis]\nworkers = 2\n")

	app.SetDefault(app.New(
		app.WithExecutor(env.executor),
		app.WithFS(system.DefaultFS()),
		app.WithLLM(env.client),
	))
	origTerminal, origBrowser := isTerminal, runBrowser
	isTerminal = func() bool { return false }
	t.Cleanup(func() {
		app.ResetDefault()
		isTerminal, runBrowser = origTerminal, origBrowser
	})
	return env
}

func (e *testEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// run executes a command with the test config.
func (e *testEnv) run(args ...string) (string, string, error) {
	return executeCommand(append([]string{"--config", e.configPath}, args...)...)
}

// resetFlags restores every flag of c and its subcommands to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	resetFlags(rootCmd)

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	origStdout, origStderr := logging.Stdout, logging.Stderr
	logging.Stdout, logging.Stderr = &stdout, &stderr

	err := cmd.ExecuteContext(context.Background())

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)
	logging.Stdout, logging.Stderr = origStdout, origStderr

	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	for _, want := range []string{"repolens", "Available Commands", "--verbose", "--json", "--config"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Help output should contain %q", want)
		}
	}
}

func TestCommands_Help(t *testing.T) {
	tests := []struct {
		cmd  string
		want []string
	}{
		{"analyze", []string{"--format", "--workers", "--no-insights", "--output"}},
		{"readme", []string{"--repo", "--provider", "--model", "--dry-run", "--keep-clone"}},
		{"catalog", []string{"ignore", "languages", "frameworks", "manifests"}},
		{"browse", []string{"README", "--clone-dir"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			stdout, _, err := executeCommand(tt.cmd, "--help")
			if err != nil {
				t.Fatalf("Help command failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("%s help should mention %q", tt.cmd, want)
				}
			}
		})
	}
}

func TestConfig_Invalid(t *testing.T) {
	env := setupTestEnv(t)
	env.writeConfig(t, "[analysis]\nworkers = 0\n")

	_, _, err := env.run("analyze", testutil.SampleRepo(t, "flask"))
	if got := errors.GetExitCode(err); got != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d (err: %v)", got, errors.ExitConfigError, err)
	}
}

func TestConfig_MissingFile(t *testing.T) {
	setupTestEnv(t)

	_, _, err := executeCommand("--config", filepath.Join(t.TempDir(), "nope.toml"), "catalog")
	if got := errors.GetExitCode(err); got != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", got, errors.ExitConfigError)
	}
}

func TestConfig_PreservesInjectedDependencies(t *testing.T) {
	env := setupTestEnv(t)

	if _, _, err := env.run("catalog"); err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	if app.Default.Executor != env.executor {
		t.Error("setup should keep the injected executor")
	}
	if app.Default.LLM != env.client {
		t.Error("setup should keep the injected LLM client")
	}
	if app.Default.Config.Analysis.Workers != 2 {
		t.Errorf("Workers = %d, want 2 from the config file", app.Default.Config.Analysis.Workers)
	}
}

func TestAnalyze_Text(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("analyze", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	for _, want := range []string{"Languages (1)", "Python", "Dependencies (pypi)", "flask", "node_modules"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("text output should contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestAnalyze_JSON(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("analyze", "--format", "json", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var got struct {
		Languages    map[string]int      `json:"languages"`
		Dependencies []report.Dependency `json:"dependencies"`
		Insights     report.Insights     `json:"insights"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.Languages["Python"] != 1 || len(got.Languages) != 1 {
		t.Errorf("languages = %v, want {Python:1}", got.Languages)
	}
	if len(got.Dependencies) != 2 {
		t.Errorf("dependencies = %v, want flask and requests", got.Dependencies)
	}
	if got.Insights.Difficulty == "" {
		t.Error("insights should be present by default")
	}
}

func TestAnalyze_NoInsights(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("analyze", "-f", "json", "--no-insights", "--workers", "1", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var got struct {
		Insights report.Insights `json:"insights"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Insights.Difficulty != "" {
		t.Errorf("Difficulty = %q, want empty with --no-insights", got.Insights.Difficulty)
	}
}

func TestAnalyze_YAMLAndMarkdown(t *testing.T) {
	env := setupTestEnv(t)
	root := testutil.SampleRepo(t, "webapp")

	stdout, _, err := env.run("analyze", "-f", "yaml", root)
	if err != nil {
		t.Fatalf("analyze yaml failed: %v", err)
	}
	if !strings.Contains(stdout, "languages:") || !strings.Contains(stdout, "JavaScript") {
		t.Errorf("yaml output unexpected:\n%s", stdout)
	}

	stdout, _, err = env.run("analyze", "-f", "markdown", root)
	if err != nil {
		t.Fatalf("analyze markdown failed: %v", err)
	}
	if !strings.Contains(stdout, "JavaScript") || !strings.Contains(stdout, "|") {
		t.Errorf("markdown output unexpected:\n%s", stdout)
	}
}

func TestAnalyze_UnknownFormat(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run("analyze", "-f", "xml", ".")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestAnalyze_MissingRoot(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run("analyze", filepath.Join(env.tmpDir, "missing"))
	if got := errors.GetExitCode(err); got != errors.ExitRootNotFound {
		t.Errorf("exit code = %d, want %d", got, errors.ExitRootNotFound)
	}
}

func TestAnalyze_OutputFile(t *testing.T) {
	env := setupTestEnv(t)
	out := filepath.Join(env.tmpDir, "reports", "flask.json")

	stdout, _, err := env.run("analyze", "-f", "json", "-o", out, testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !json.Valid(data) {
		t.Error("written report is not JSON")
	}
	if !strings.Contains(stdout, "Report written to") {
		t.Errorf("stdout should confirm the write, got %q", stdout)
	}
}

func TestAnalyze_OutputFailed(t *testing.T) {
	env := setupTestEnv(t)
	fs := system.NewMockFS()
	fs.WriteFileErr = stderrors.New("disk full")
	app.Default.FS = fs

	_, _, err := env.run("analyze", "-o", "report.txt", testutil.SampleRepo(t, "flask"))
	if got := errors.GetExitCode(err); got != errors.ExitOutputFailed {
		t.Errorf("exit code = %d, want %d (err: %v)", got, errors.ExitOutputFailed, err)
	}
}

// fakeClone makes the mock executor populate the clone destination.
func (e *testEnv) fakeClone(t *testing.T, files map[string]string) {
	e.executor.OnExecute = func(name string, args []string) {
		if name == "git" && len(args) > 0 && args[0] == "clone" {
			testutil.AddFiles(t, args[len(args)-1], files)
		}
	}
}

func TestAnalyze_Remote(t *testing.T) {
	env := setupTestEnv(t)
	env.fakeClone(t, map[string]string{"main.go": "package main\n", "go.mod": "module example.com/demo\n\ngo 1.22\n"})
	cloneDir := filepath.Join(env.tmpDir, "clone")

	stdout, _, err := env.run("analyze", "--clone-dir", cloneDir, "https://github.com/acme/demo.git")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if !strings.Contains(stdout, "Go") {
		t.Errorf("report should list Go, got:\n%s", stdout)
	}
	last, ok := env.executor.LastCommand()
	if !ok || last.Name != "git" || !slices.Contains(last.Args, "--depth") {
		t.Errorf("expected a shallow git clone, got %+v", last)
	}
	if _, err := os.Stat(cloneDir); !os.IsNotExist(err) {
		t.Error("clone should be removed after analysis")
	}
}

func TestAnalyze_RemoteKeepClone(t *testing.T) {
	env := setupTestEnv(t)
	env.fakeClone(t, map[string]string{"app.py": "print(1)\n"})
	cloneDir := filepath.Join(env.tmpDir, "clone")

	if _, _, err := env.run("analyze", "--clone-dir", cloneDir, "--keep-clone", "git@github.com:acme/demo.git"); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cloneDir, "app.py")); err != nil {
		t.Errorf("clone should be kept: %v", err)
	}
}

func TestAnalyze_CloneFailed(t *testing.T) {
	env := setupTestEnv(t)
	env.executor.DefaultResponse = system.MockResponse{
		Output: []byte("fatal: repository not found"),
		Err:    stderrors.New("exit status 128"),
	}

	_, _, err := env.run("analyze", "--clone-dir", filepath.Join(env.tmpDir, "clone"), "https://github.com/acme/missing")
	if got := errors.GetExitCode(err); got != errors.ExitCloneFailed {
		t.Errorf("exit code = %d, want %d", got, errors.ExitCloneFailed)
	}
	if err == nil || !strings.Contains(err.Error(), "repository not found") {
		t.Errorf("error should carry git's message, got %v", err)
	}
}

func TestReadme_DryRun(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("readme", "--dry-run", testutil.SampleRepo(t, "webapp"))
	if err != nil {
		t.Fatalf("readme failed: %v", err)
	}

	for _, want := range []string{"# webapp", "--- package.json ---", "=== SOURCE FILES ==="} {
		if !strings.Contains(stdout, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if len(env.client.Prompts) != 0 {
		t.Error("dry run should not call the model")
	}
}

func TestReadme_NameFallsBackToDirectory(t *testing.T) {
	env := setupTestEnv(t)
	root := filepath.Join(env.tmpDir, "myproject")
	testutil.AddFiles(t, root, map[string]string{"main.py": "print('hi')\n"})

	stdout, _, err := env.run("readme", "--dry-run", "--repo", root)
	if err != nil {
		t.Fatalf("readme failed: %v", err)
	}
	if !strings.Contains(stdout, "# myproject\n") {
		t.Errorf("prompt should use the directory name, got:\n%s", stdout)
	}

	stdout, _, err = env.run("readme", "--dry-run", "--name", "Custom", root)
	if err != nil {
		t.Fatalf("readme failed: %v", err)
	}
	if !strings.Contains(stdout, "# Custom\n") {
		t.Error("--name should override the project name")
	}
}

func TestReadme_Generate(t *testing.T) {
	env := setupTestEnv(t)
	env.client.Output = "```markdown\n# Demo\n\nGenerated README.\n```"
	out := filepath.Join(env.tmpDir, "docs", "README.md")

	stdout, _, err := env.run("readme", "-o", out, testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("readme failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("README not written: %v", err)
	}
	if string(data) != "# Demo\n\nGenerated README.\n" {
		t.Errorf("README = %q", data)
	}
	if !strings.Contains(stdout, "README written to") {
		t.Errorf("stdout should confirm the write, got %q", stdout)
	}
	if len(env.client.Prompts) != 1 || !strings.Contains(env.client.Prompts[0], "requirements.txt") {
		t.Error("the model should receive the prompt with key files")
	}
}

func TestReadme_Stdout(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("readme", "-o", "-", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("readme failed: %v", err)
	}
	if stdout != "# Demo\n\nGenerated README.\n" {
		t.Errorf("stdout should hold only the README, got %q", stdout)
	}
}

func TestReadme_GenerationFailed(t *testing.T) {
	env := setupTestEnv(t)
	env.client.Err = stderrors.New("model not found")

	_, _, err := env.run("readme", "-o", filepath.Join(env.tmpDir, "README.md"), testutil.SampleRepo(t, "flask"))
	if got := errors.GetExitCode(err); got != errors.ExitGenerationFailed {
		t.Errorf("exit code = %d, want %d", got, errors.ExitGenerationFailed)
	}
}

func TestReadme_InvalidInput(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run("readme", "--repo", ".", ".")
	if err == nil {
		t.Error("expected an error when both --repo and an argument are given")
	}

	_, _, err = env.run("readme", "--provider", "openai", ".")
	if err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestResolveLLM(t *testing.T) {
	setupTestEnv(t)
	base := cfg().LLM

	tests := []struct {
		name         string
		req          readmeRequest
		wantProvider string
		wantModel    string
	}{
		{"config", readmeRequest{}, base.Provider, base.Model},
		{"model only", readmeRequest{Model: "mistral"}, base.Provider, "mistral"},
		{"provider switch", readmeRequest{Provider: config.ProviderGemini}, config.ProviderGemini, config.DefaultModel(config.ProviderGemini)},
		{"provider and model", readmeRequest{Provider: config.ProviderGemini, Model: "gemini-pro"}, config.ProviderGemini, "gemini-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveLLM(tt.req)
			if got.Provider != tt.wantProvider || got.Model != tt.wantModel {
				t.Errorf("resolveLLM() = %s/%s, want %s/%s", got.Provider, got.Model, tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"catalog"}, []string{"Version:", "Languages:", "Manifest formats:"}},
		{[]string{"catalog", "ignore"}, []string{"PATTERN", "node_modules"}},
		{[]string{"catalog", "languages"}, []string{"LANGUAGE", "Python", ".py"}},
		{[]string{"catalog", "frameworks"}, []string{"FRAMEWORK", "Django"}},
		{[]string{"catalog", "manifests"}, []string{"FORMAT", "requirements.txt", "pypi"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, _, err := env.run(tt.args...)
			if err != nil {
				t.Fatalf("catalog failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("output should contain %q, got:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestBrowse_NonTerminal(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := env.run("browse", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if !strings.Contains(stdout, "Languages (1)") {
		t.Errorf("non-terminal browse should print the text view, got:\n%s", stdout)
	}
}

func TestBrowse_Select(t *testing.T) {
	env := setupTestEnv(t)
	isTerminal = func() bool { return true }
	runBrowser = func(r *report.Report, opts tui.BrowseOptions) (tui.BrowseResult, error) {
		if !opts.AllowReadme {
			t.Error("browse should enable the README wizard")
		}
		return tui.BrowseResult{
			Action: tui.ActionSelect,
			Entry:  &tui.Entry{Group: "Manifests", Name: "requirements.txt", Detail: "requirements.txt | 2 dependencies", Path: "requirements.txt"},
		}, nil
	}

	stdout, _, err := env.run("browse", testutil.SampleRepo(t, "flask"))
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if !strings.Contains(stdout, "Manifests: requirements.txt") || !strings.Contains(stdout, "path: requirements.txt") {
		t.Errorf("selected entry not printed, got:\n%s", stdout)
	}
}

func TestBrowse_Readme(t *testing.T) {
	env := setupTestEnv(t)
	root := testutil.SampleRepo(t, "flask")
	out := filepath.Join(env.tmpDir, "README.md")
	isTerminal = func() bool { return true }
	runBrowser = func(r *report.Report, opts tui.BrowseOptions) (tui.BrowseResult, error) {
		if opts.Readme.Provider != config.ProviderOllama || opts.Readme.Target != root {
			t.Errorf("wizard defaults = %+v", opts.Readme)
		}
		return tui.BrowseResult{
			Action: tui.ActionReadme,
			Readme: &tui.ReadmeOptions{Target: root, Provider: config.ProviderOllama, Model: "mistral", Output: out},
		}, nil
	}

	if _, _, err := env.run("browse", root); err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("README should be written from the wizard options: %v", err)
	}
}

func TestReportError(t *testing.T) {
	var userOut, logOut bytes.Buffer
	origStderr := logging.Stderr
	logging.Stderr = &userOut
	jsonOutput = true
	logging.Setup(false, true, &logOut)
	t.Cleanup(func() {
		logging.Stderr = origStderr
		jsonOutput = false
		logging.Setup(false, false, nil)
	})

	reportError(errors.RootNotFound("/missing"), false)

	if !strings.Contains(userOut.String(), "analysis root not found: /missing") {
		t.Errorf("user message missing, got %q", userOut.String())
	}
	var record map[string]any
	if err := json.Unmarshal(logOut.Bytes(), &record); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", logOut.String(), err)
	}
	if record["level"] != "ERROR" || record["exit_code"] != float64(errors.ExitRootNotFound) {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestReportError_PlainOutputHasNoRecord(t *testing.T) {
	var userOut, logOut bytes.Buffer
	origStderr := logging.Stderr
	logging.Stderr = &userOut
	logging.Setup(false, false, &logOut)
	t.Cleanup(func() {
		logging.Stderr = origStderr
		logging.Setup(false, false, nil)
	})

	reportError(stderrors.New("boom"), true)

	if userOut.String() != "✗ Interrupted\n" {
		t.Errorf("user output = %q", userOut.String())
	}
	if logOut.Len() != 0 {
		t.Errorf("no structured record expected, got %q", logOut.String())
	}
}
