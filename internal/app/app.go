// Package app provides the application context for repolens.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/repolens/internal/analyzer"
	"github.com/firefly-engineering/repolens/internal/catalog"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/llm"
	"github.com/firefly-engineering/repolens/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// Catalog is the active catalog data
	Catalog *catalog.Catalog

	// Executor runs external commands such as git
	Executor system.CommandExecutor

	// FS writes generated output and manages clone directories
	FS system.FileSystem

	// LLM overrides the configured language model backend when set
	LLM llm.Client
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets a custom config
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithCatalog sets custom catalog data
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *App) {
		a.Catalog = c
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

// WithFS sets a custom file system
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithLLM sets a fixed language model client
func WithLLM(client llm.Client) Option {
	return func(a *App) {
		a.LLM = client
	}
}

// New creates a new App with the given options.
// Unset dependencies fall back to defaults.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.Catalog == nil {
		app.Catalog = catalog.Default()
	}
	if app.Executor == nil {
		app.Executor = system.DefaultExecutor()
	}
	if app.FS == nil {
		app.FS = system.DefaultFS()
	}

	return app
}

// Analyzer builds an analyzer from the app's catalog and analysis config.
// Extra options are applied last.
func (a *App) Analyzer(opts ...analyzer.Option) *analyzer.Analyzer {
	cfg := a.Config.Analysis
	base := []analyzer.Option{
		analyzer.WithWorkers(cfg.Workers),
		analyzer.WithSampling(cfg.SampleFiles, cfg.SampleBytes),
		analyzer.WithMaxManifestBytes(cfg.MaxManifestBytes),
		analyzer.WithInsights(cfg.Insights),
	}
	if rules := cfg.IgnoreRules(); len(rules) > 0 {
		base = append(base, analyzer.WithIgnoreRules(rules...))
	}
	return analyzer.New(a.Catalog, append(base, opts...)...)
}

// Client returns the language model client for the configured provider.
func (a *App) Client() (llm.Client, error) {
	return a.ClientFor(a.Config.LLM)
}

// ClientFor returns a client for cfg, which callers derive from the loaded
// config with command-line overrides applied. A fixed client wins.
func (a *App) ClientFor(cfg config.LLMConfig) (llm.Client, error) {
	if a.LLM != nil {
		return a.LLM, nil
	}
	return llm.New(cfg)
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
