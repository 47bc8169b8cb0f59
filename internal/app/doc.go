// Package app provides the application context for repolens.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config   *config.Config          // Loaded configuration
//	    Catalog  *catalog.Catalog        // Ignore, language and framework data
//	    Executor system.CommandExecutor  // Runs git
//	    FS       system.FileSystem       // Writes output, removes clones
//	    LLM      llm.Client              // Optional fixed model backend
//	}
//
// # Creating an App
//
//	// Production usage
//	a := app.New(app.WithConfig(cfg), app.WithCatalog(c))
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithExecutor(system.NewMockExecutor()),
//	    app.WithFS(system.NewMockFS()),
//	    app.WithLLM(llm.NewMock("# Demo")),
//	)
//
// # Available Options
//
//	WithConfig(cfg)        // Custom configuration
//	WithCatalog(c)         // Custom catalog data
//	WithExecutor(exec)     // Custom command executor
//	WithFS(fs)             // Custom file system
//	WithLLM(client)        // Fixed language model client
package app
