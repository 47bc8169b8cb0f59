package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/app"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "Repository analyzer and README generator",
	Long: `repolens inspects a source tree and reports what it is made of.

A report contains:
  - Source file counts per language
  - Dependencies declared in manifests and lockfiles
  - Detected frameworks and tools
  - Ignore patterns that pruned the walk
  - Project insights: commands, Docker, CI, setup difficulty

Reports can be printed, browsed interactively, or turned into a README
by a language model.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup configures logging and rebuilds the application context from the
// config file. Injected executors, file systems and LLM clients survive so
// tests can swap them in before running a command.
func setup(cmd *cobra.Command, args []string) error {
	logging.Setup(verbose, jsonOutput, cmd.ErrOrStderr())

	loaded, err := config.Load(configPath)
	if err != nil {
		return errors.ConfigError("invalid configuration", err)
	}
	if loaded.File != "" {
		logging.Debug("loaded config", "file", loaded.File)
	}

	cat, err := loaded.LoadCatalog()
	if err != nil {
		return errors.ConfigError("invalid catalog", err)
	}
	logging.Debug("catalog ready", "version", cat.Version(), "files", loaded.Catalog.Files)

	cur := app.Default
	app.SetDefault(app.New(
		app.WithConfig(loaded),
		app.WithCatalog(cat),
		app.WithExecutor(cur.Executor),
		app.WithFS(cur.FS),
		app.WithLLM(cur.LLM),
	))
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, which stops analysis, clones and generation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(err, ctx.Err() != nil)
	}
	return err
}

// reportError prints err for the user. With --json or --verbose it is also
// logged as a structured record carrying the exit code.
func reportError(err error, interrupted bool) {
	if interrupted {
		logError("Interrupted")
	} else {
		logError("%v", err)
	}
	if jsonOutput || verbose {
		logging.Error("command failed", err, "exit_code", errors.GetExitCode(err), "interrupted", interrupted)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to repolens.toml")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
