package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/repolens/internal/catalog"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/llm"
	"github.com/firefly-engineering/repolens/internal/system"
)

func TestNew(t *testing.T) {
	app := New()

	if app == nil {
		t.Fatal("New() returned nil")
	}
	if app.Config == nil {
		t.Error("Config should default")
	}
	if app.Catalog != catalog.Default() {
		t.Error("Catalog should default to the embedded catalog")
	}
	if app.Executor == nil || app.FS == nil {
		t.Error("Executor and FS should default")
	}
	if app.LLM != nil {
		t.Error("LLM should be nil until set")
	}
}

func TestNew_WithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Workers = 2

	app := New(WithConfig(cfg))

	if app.Config != cfg {
		t.Error("WithConfig did not set config")
	}
}

func TestNew_MultipleOptions(t *testing.T) {
	exec := system.NewMockExecutor()
	fs := system.NewMockFS()
	client := llm.NewMock("# Demo\n")

	app := New(
		WithExecutor(exec),
		WithFS(fs),
		WithLLM(client),
	)

	if app.Executor != exec {
		t.Error("Executor not set correctly")
	}
	if app.FS != fs {
		t.Error("FS not set correctly")
	}
	got, err := app.Client()
	if err != nil {
		t.Fatalf("Client() error: %v", err)
	}
	if got != client {
		t.Error("Client() should return the fixed client")
	}
}

func TestClient_FromConfig(t *testing.T) {
	app := New()

	client, err := app.Client()
	if err != nil {
		t.Fatalf("Client() error: %v", err)
	}
	if client.Name() != config.ProviderOllama {
		t.Errorf("Client().Name() = %q, want %q", client.Name(), config.ProviderOllama)
	}
}

func TestClientFor_Override(t *testing.T) {
	app := New()
	cfg := app.Config.LLM
	cfg.Provider = config.ProviderGemini
	cfg.Model = config.DefaultModel(config.ProviderGemini)
	cfg.APIKeyEnv = "REPOLENS_TEST_MISSING_KEY"

	if _, err := app.ClientFor(cfg); err == nil {
		t.Error("ClientFor() should fail without an API key")
	}
	if app.Config.LLM.Provider != config.ProviderOllama {
		t.Error("ClientFor() must not change the loaded config")
	}

	fixed := llm.NewMock("ok")
	app.LLM = fixed
	got, err := app.ClientFor(cfg)
	if err != nil {
		t.Fatalf("ClientFor() error: %v", err)
	}
	if got != fixed {
		t.Error("ClientFor() should return the fixed client")
	}
}

func TestAnalyzer_UsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.ExtraIgnore = []config.IgnoreRule{{Pattern: "fixtures", Reason: "test fixtures", Kind: "dir"}}
	cfg.Analysis.Insights = false
	app := New(WithConfig(cfg))

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "fixtures"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "fixtures", "a.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.py"), []byte("print(1)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := app.Analyzer().Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if got := r.Languages()["Python"]; got != 1 {
		t.Errorf("Python count = %d, want 1", got)
	}
	rules := r.IgnoreRules()
	if len(rules) != 1 || rules[0].Pattern != "fixtures" {
		t.Errorf("IgnoreRules() = %v, want fixtures", rules)
	}
	if r.Insights().Difficulty != "" {
		t.Error("insights should be disabled")
	}
}

func TestSetDefault(t *testing.T) {
	original := Default
	defer func() { Default = original }()

	customApp := New(WithExecutor(system.NewMockExecutor()))
	SetDefault(customApp)

	if Default != customApp {
		t.Error("SetDefault did not update Default")
	}
}

func TestResetDefault(t *testing.T) {
	original := Default
	defer func() { Default = original }()

	customApp := New(WithExecutor(system.NewMockExecutor()))
	SetDefault(customApp)

	ResetDefault()

	if Default == customApp {
		t.Error("ResetDefault did not create new Default")
	}
	if Default.Config == nil {
		t.Error("ResetDefault should create app with default config")
	}
}
