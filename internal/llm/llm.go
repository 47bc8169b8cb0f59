// Package llm wraps the language model backends used to write READMEs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/logging"
)

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client generates text from a system instruction and a prompt.
type Client interface {
	// Name identifies the provider for messages and errors.
	Name() string

	// Generate returns the model's answer. Implementations honour ctx
	// cancellation even when the underlying API does not.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// New returns the client for the configured provider.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.Host, cfg.Model, cfg.MaxPromptChars)
	case config.ProviderGemini:
		return NewGemini(context.Background(), cfg.APIKeyEnv, cfg.Model, cfg.MaxPromptChars)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Truncate cuts prompt to at most max bytes without splitting a UTF-8
// sequence. max <= 0 disables truncation.
func Truncate(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	logging.Warn("prompt truncated", "from", len(prompt), "to", cut)
	return prompt[:cut]
}
