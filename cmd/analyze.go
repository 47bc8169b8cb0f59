package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/analyzer"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/report"
	"github.com/firefly-engineering/repolens/internal/tui"
)

var (
	analyzeFormat     string
	analyzeWorkers    int
	analyzeNoInsights bool
	analyzeOutput     string
	analyzeCloneDir   string
	analyzeKeepClone  bool
)

var analyzeFormats = []string{"text", "json", "yaml", "markdown"}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path|url]",
	Short: "Analyze a repository and print the report",
	Long: `Analyze walks a source tree and prints its report.

The target defaults to the current directory. Remote git URLs are cloned
shallowly first and removed afterwards unless --keep-clone is set.

Formats:
  text      grouped summary
  json      full report
  yaml      full report
  markdown  summary tables`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text, json, yaml or markdown")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Concurrent file workers (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoInsights, "no-insights", false, "Skip project insights")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "-", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeCloneDir, "clone-dir", "", "Directory for remote clones (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeKeepClone, "keep-clone", false, "Keep the clone of a remote repository")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	render, err := reportRenderer(analyzeFormat)
	if err != nil {
		return err
	}
	if analyzeWorkers < 0 {
		return errors.ValidationError(fmt.Sprintf("--workers must be positive, got %d", analyzeWorkers))
	}

	var opts []analyzer.Option
	if analyzeWorkers > 0 {
		opts = append(opts, analyzer.WithWorkers(analyzeWorkers))
	}
	if analyzeNoInsights {
		opts = append(opts, analyzer.WithInsights(false))
	}

	ctx := cmd.Context()
	src, err := acquire(ctx, targetArg(args), analyzeCloneDir, analyzeKeepClone || cfg().Readme.KeepClone)
	if err != nil {
		return err
	}
	defer release(src)

	r, err := analyzeSource(ctx, src, opts...)
	if err != nil {
		return err
	}

	data, err := render(r)
	if err != nil {
		return errors.OutputFailed(analyzeOutput, err)
	}
	if err := writeOutput(cmd, analyzeOutput, data); err != nil {
		return err
	}
	if analyzeOutput != "-" && analyzeOutput != "" {
		logSuccess("Report written to %s", analyzeOutput)
	}
	return nil
}

// reportRenderer returns the encoder for an output format.
func reportRenderer(format string) (func(*report.Report) ([]byte, error), error) {
	switch format {
	case "text":
		return func(r *report.Report) ([]byte, error) { return []byte(tui.SimpleView(r)), nil }, nil
	case "json":
		return func(r *report.Report) ([]byte, error) {
			data, err := report.JSON(r)
			return append(data, '\n'), err
		}, nil
	case "yaml":
		return report.YAML, nil
	case "markdown", "md":
		return func(r *report.Report) ([]byte, error) { return []byte(report.Markdown(r)), nil }, nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown format %q (want one of %v)", format, analyzeFormats))
	}
}
