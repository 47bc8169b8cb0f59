// Package readme turns an analysis report into a README through a language
// model: it selects key files, renders the prompt, and cleans the answer.
package readme

import (
	"context"
	"regexp"
	"strings"

	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/llm"
	"github.com/firefly-engineering/repolens/internal/logging"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z]*\\s*\\n")
	closingFence = regexp.MustCompile("\\n?```\\s*$")
	noteLine     = regexp.MustCompile(`(?im)^[ \t]*note:.*(\r?\n|$)`)
)

// Clean strips what models commonly wrap around a document: an enclosing
// code fence, commentary before the first top-level heading, and "Note:"
// lines.
func Clean(output string) string {
	out := strings.TrimSpace(output)
	if loc := openingFence.FindStringIndex(out); loc != nil {
		out = out[loc[1]:]
		out = closingFence.ReplaceAllString(out, "")
	}

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			lines = lines[i:]
			break
		}
	}
	out = strings.Join(lines, "\n")

	out = noteLine.ReplaceAllString(out, "")
	return strings.TrimSpace(out) + "\n"
}

// Generate asks client for a README and returns the cleaned document.
func Generate(ctx context.Context, client llm.Client, prompt string) (string, error) {
	logging.Debug("generating README", "provider", client.Name(), "prompt_chars", len(prompt))
	out, err := client.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errors.GenerationFailed(client.Name(), err)
	}

	doc := Clean(out)
	if strings.TrimSpace(doc) == "" {
		return "", errors.GenerationFailed(client.Name(), llm.ErrEmptyResponse)
	}
	return doc, nil
}
