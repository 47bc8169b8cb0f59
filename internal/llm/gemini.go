package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/logging"
)

const (
	geminiAttempts = 3
	geminiBackoff  = 300 * time.Millisecond
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini calls the Gemini API, retrying failed attempts with exponential
// backoff.
type Gemini struct {
	model     string
	maxPrompt int
	backoff   time.Duration
	generate  generateFunc
}

// NewGemini creates a client authenticated with the API key held in the
// environment variable keyEnv.
func NewGemini(ctx context.Context, keyEnv, model string, maxPrompt int) (*Gemini, error) {
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, errors.ConfigError(fmt.Sprintf("environment variable %s is not set", keyEnv), nil)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	logging.Debug("using gemini", "model", model)
	return &Gemini{
		model:     model,
		maxPrompt: maxPrompt,
		backoff:   geminiBackoff,
		generate:  cli.Models.GenerateContent,
	}, nil
}

func (g *Gemini) Name() string { return config.ProviderGemini }

func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	prompt = Truncate(prompt, g.maxPrompt)
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	var lastErr error
	for attempt := 0; attempt < geminiAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.backoff << (attempt - 1)):
			}
		}

		resp, err := g.generate(ctx, g.model, contents, cfg)
		if err == nil {
			if text := responseText(resp); text != "" {
				return text, nil
			}
			err = ErrEmptyResponse
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		logging.Warn("gemini attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
