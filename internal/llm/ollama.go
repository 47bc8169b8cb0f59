package llm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JexSrs/go-ollama"

	"github.com/firefly-engineering/repolens/internal/config"
	"github.com/firefly-engineering/repolens/internal/logging"
)

// Ollama talks to a local Ollama server through its generate endpoint.
type Ollama struct {
	client    *ollama.Ollama
	model     string
	maxPrompt int
}

// NewOllama creates a client for the server at host.
func NewOllama(host, model string, maxPrompt int) (*Ollama, error) {
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q", host)
	}
	logging.Debug("using ollama", "host", host, "model", model)
	return &Ollama{
		client:    ollama.New(*u),
		model:     model,
		maxPrompt: maxPrompt,
	}, nil
}

func (o *Ollama) Name() string { return config.ProviderOllama }

type generateResult struct {
	text string
	err  error
}

func (o *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	prompt = Truncate(prompt, o.maxPrompt)
	logging.Debug("sending prompt to ollama", "chars", len(prompt), "model", o.model)

	// the generate call takes no context; the goroutine is abandoned on cancel
	done := make(chan generateResult, 1)
	go func() {
		res, err := o.client.Generate(
			o.client.Generate.WithModel(o.model),
			o.client.Generate.WithSystem(system),
			o.client.Generate.WithPrompt(prompt),
		)
		switch {
		case err != nil:
			done <- generateResult{err: err}
		case !res.Done:
			done <- generateResult{err: fmt.Errorf("ollama returned an unfinished response")}
		case res.Response == "":
			done <- generateResult{err: ErrEmptyResponse}
		default:
			done <- generateResult{text: res.Response}
		}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
