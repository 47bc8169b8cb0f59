package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/tui"
)

var (
	browseCloneDir  string
	browseKeepClone bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [path|url]",
	Short: "Browse a repository report interactively",
	Long: `Browse analyzes a repository and opens the report in a terminal browser.

Keys:
  enter  show the selected entry
  r      generate a README (opens a wizard)
  /      filter
  q      quit

When stdout is not a terminal the report is printed as text instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

// isTerminal reports whether the browser can take over the terminal.
// Tests replace it.
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// runBrowser is the interactive browser. Tests replace it.
var runBrowser = tui.RunBrowser

func init() {
	browseCmd.Flags().StringVar(&browseCloneDir, "clone-dir", "", "Directory for remote clones (default from config)")
	browseCmd.Flags().BoolVar(&browseKeepClone, "keep-clone", false, "Keep the clone of a remote repository")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	ctx := cmd.Context()

	src, err := acquire(ctx, target, browseCloneDir, browseKeepClone || cfg().Readme.KeepClone)
	if err != nil {
		return err
	}
	r, err := analyzeSource(ctx, src)
	release(src)
	if err != nil {
		return err
	}

	if !isTerminal() {
		return writeOutput(cmd, "-", []byte(tui.SimpleView(r)))
	}

	llmCfg := cfg().LLM
	result, err := runBrowser(r, tui.BrowseOptions{
		Target:      target,
		AllowReadme: true,
		Readme: tui.ReadmeOptions{
			Target:   target,
			Provider: llmCfg.Provider,
			Model:    llmCfg.Model,
			Output:   cfg().Readme.Output,
		},
	})
	if err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}

	switch result.Action {
	case tui.ActionSelect:
		e := result.Entry
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", e.Group, e.Name)
		if e.Detail != "" {
			fmt.Fprintf(out, "  %s\n", e.Detail)
		}
		if e.Path != "" {
			fmt.Fprintf(out, "  path: %s\n", e.Path)
		}
	case tui.ActionReadme:
		req := readmeRequest{CloneDir: browseCloneDir, KeepClone: browseKeepClone}
		return generateReadme(cmd, req.withWizard(*result.Readme))
	}
	return nil
}
