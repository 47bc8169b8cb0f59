package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/app"
	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/llm"
	"github.com/firefly-engineering/repolens/internal/readme"
	"github.com/firefly-engineering/repolens/internal/tui"
)

var (
	readmeRepo        string
	readmeOutput      string
	readmeProvider    string
	readmeModel       string
	readmeName        string
	readmeCloneDir    string
	readmeKeepClone   bool
	readmeDryRun      bool
	readmeMaxFiles    int
	readmeInteractive bool
)

var readmeCmd = &cobra.Command{
	Use:   "readme [path|url]",
	Short: "Generate a README with a language model",
	Long: `Readme analyzes a repository, selects its key files and asks a language
model to write a README for it.

The repository is given as an argument or with --repo and defaults to the
current directory. Remote git URLs are cloned shallowly first.

Examples:
  repolens readme
  repolens readme https://github.com/owner/project -o docs/README.md
  repolens readme --provider gemini --model gemini-2.0-flash
  repolens readme --dry-run > prompt.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReadme,
}

func init() {
	readmeCmd.Flags().StringVar(&readmeRepo, "repo", "", "Repository path or URL")
	readmeCmd.Flags().StringVarP(&readmeOutput, "output", "o", "", "Output file, - for stdout (default from config)")
	readmeCmd.Flags().StringVar(&readmeProvider, "provider", "", "LLM provider: ollama or gemini (default from config)")
	readmeCmd.Flags().StringVar(&readmeModel, "model", "", "Model name (default from config or provider)")
	readmeCmd.Flags().StringVar(&readmeName, "name", "", "Project name to use in the README")
	readmeCmd.Flags().StringVar(&readmeCloneDir, "clone-dir", "", "Directory for remote clones (default from config)")
	readmeCmd.Flags().BoolVar(&readmeKeepClone, "keep-clone", false, "Keep the clone of a remote repository")
	readmeCmd.Flags().BoolVar(&readmeDryRun, "dry-run", false, "Print the prompt instead of calling the model")
	readmeCmd.Flags().IntVar(&readmeMaxFiles, "max-files", 0, "Maximum priority files sent to the model (default from config)")
	readmeCmd.Flags().BoolVarP(&readmeInteractive, "interactive", "i", false, "Choose options in an interactive wizard")
	rootCmd.AddCommand(readmeCmd)
}

// readmeRequest is one README generation, built from flags or the wizard.
type readmeRequest struct {
	Target    string
	Provider  string
	Model     string
	Output    string
	Name      string
	CloneDir  string
	KeepClone bool
	DryRun    bool
	MaxFiles  int
}

func runReadme(cmd *cobra.Command, args []string) error {
	if readmeRepo != "" && len(args) > 0 {
		return errors.ValidationError("give the repository either as an argument or with --repo, not both")
	}
	target := readmeRepo
	if target == "" {
		target = targetArg(args)
	}

	req := readmeRequest{
		Target:    target,
		Provider:  readmeProvider,
		Model:     readmeModel,
		Output:    readmeOutput,
		Name:      readmeName,
		CloneDir:  readmeCloneDir,
		KeepClone: readmeKeepClone,
		DryRun:    readmeDryRun,
		MaxFiles:  readmeMaxFiles,
	}

	if readmeInteractive {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.ValidationError("--interactive needs a terminal")
		}
		opts, err := tui.RunReadmeWizard(wizardDefaults(req))
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
		if opts == nil {
			logInfo("Cancelled")
			return nil
		}
		req = req.withWizard(*opts)
	}

	return generateReadme(cmd, req)
}

// wizardDefaults prefills the wizard with the request and the config.
func wizardDefaults(req readmeRequest) tui.ReadmeOptions {
	llmCfg := resolveLLM(req)
	output := req.Output
	if output == "" {
		output = cfg().Readme.Output
	}
	return tui.ReadmeOptions{
		Target:   req.Target,
		Provider: llmCfg.Provider,
		Model:    llmCfg.Model,
		Output:   output,
	}
}

func (req readmeRequest) withWizard(opts tui.ReadmeOptions) readmeRequest {
	req.Target = opts.Target
	req.Provider = opts.Provider
	req.Model = opts.Model
	req.Output = opts.Output
	return req
}

// resolveLLM applies the request's provider and model over the config. A
// provider switch without a model picks that provider's default model.
func resolveLLM(req readmeRequest) config.LLMConfig {
	llmCfg := cfg().LLM
	if req.Provider != "" && req.Provider != llmCfg.Provider {
		llmCfg.Provider = req.Provider
		llmCfg.Model = config.DefaultModel(req.Provider)
	}
	if req.Model != "" {
		llmCfg.Model = req.Model
	}
	return llmCfg
}

// generateReadme runs the whole pipeline: acquire, analyze, select key
// files, prompt, generate, write.
func generateReadme(cmd *cobra.Command, req readmeRequest) error {
	c := cfg()
	llmCfg := resolveLLM(req)
	switch llmCfg.Provider {
	case config.ProviderOllama, config.ProviderGemini:
	default:
		return errors.ValidationError(fmt.Sprintf("unknown provider %q (want %s or %s)", llmCfg.Provider, config.ProviderOllama, config.ProviderGemini))
	}
	if llmCfg.Model == "" {
		return errors.ValidationError("no model configured for provider " + llmCfg.Provider)
	}

	output := req.Output
	if output == "" {
		output = c.Readme.Output
	}
	maxFiles := req.MaxFiles
	if maxFiles <= 0 {
		maxFiles = c.Readme.MaxKeyFiles
	}

	// Build the client first so a missing API key fails before any clone.
	var client llm.Client
	if !req.DryRun {
		var err error
		client, err = app.Default.ClientFor(llmCfg)
		if err != nil {
			var e *errors.Error
			if errors.As(err, &e) {
				return err
			}
			return errors.ConfigError("failed to create LLM client", err)
		}
	}

	ctx := cmd.Context()
	src, err := acquire(ctx, req.Target, req.CloneDir, req.KeepClone || c.Readme.KeepClone)
	if err != nil {
		return err
	}
	defer release(src)

	r, err := analyzeSource(ctx, src)
	if err != nil {
		return err
	}

	files := readme.KeyFiles(src.Root, r, maxFiles, c.Readme.MaxFileBytes)
	in := readme.PromptInput{Name: req.Name, Repository: src.URL}
	if in.Name == "" && r.Insights().Project.Name == "" {
		in.Name = projectName(src, r)
	}
	prompt := readme.BuildPrompt(r, files, in)

	if req.DryRun {
		return writeOutput(cmd, "-", []byte(prompt))
	}

	toStdout := output == "-"
	if !toStdout {
		logInfo("Generating README with %s (%s) from %d key files...", client.Name(), llmCfg.Model, len(files))
	}

	genCtx, cancel := context.WithTimeout(ctx, llmCfg.Timeout)
	defer cancel()
	doc, err := readme.Generate(genCtx, client, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return errors.GenerationFailed(client.Name(), fmt.Errorf("no answer within %s", llmCfg.Timeout))
		}
		return err
	}

	if err := writeOutput(cmd, output, []byte(doc)); err != nil {
		return err
	}
	if !toStdout {
		logSuccess("README written to %s", output)
	}
	return nil
}
