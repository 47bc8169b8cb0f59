package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/analyzer"
	"github.com/firefly-engineering/repolens/internal/app"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/repo"
	"github.com/firefly-engineering/repolens/internal/report"
)

// cfg returns the loaded configuration.
// This is a helper to reduce repetition in commands.
func cfg() *config.Config {
	return app.Default.Config
}

// targetArg returns the positional target, defaulting to the working
// directory.
func targetArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// acquire resolves a local path or clones a remote repository. The caller
// must Close the returned source.
func acquire(ctx context.Context, target, cloneDir string, keep bool) (*repo.Source, error) {
	if cloneDir == "" {
		cloneDir = cfg().Readme.CloneDir
	}
	return repo.Acquire(ctx, app.Default.Executor, app.Default.FS, target, cloneDir, keep)
}

// release closes src, warning instead of failing when a clone cannot be
// removed.
func release(src *repo.Source) {
	if err := src.Close(); err != nil {
		logWarning("Failed to remove clone %s: %v", src.Root, err)
	}
}

// analyzeSource runs the configured analyzer over an acquired tree.
func analyzeSource(ctx context.Context, src *repo.Source, opts ...analyzer.Option) (*report.Report, error) {
	r, err := app.Default.Analyzer(opts...).Analyze(ctx, src.Root)
	if err != nil {
		return nil, err
	}
	if n := len(r.Skipped()); n > 0 {
		logWarning("%d path(s) could not be analyzed (run with -v for details)", n)
	}
	return r, nil
}

// projectName is the name used when neither a flag nor a manifest names
// the project.
func projectName(src *repo.Source, r *report.Report) string {
	if src.URL != "" {
		return repo.Name(src.URL)
	}
	return filepath.Base(r.Root())
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return errors.OutputFailed("stdout", err)
		}
		return nil
	}

	fs := app.Default.FS
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.OutputFailed(path, err)
		}
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return errors.OutputFailed(path, err)
	}
	return nil
}
