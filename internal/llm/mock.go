package llm

import (
	"context"
	"sync"
)

// Mock is a Client that returns canned output and records prompts.
type Mock struct {
	mu sync.Mutex

	Output string
	Err    error

	// Prompts records every prompt received, in order.
	Prompts []string
	Systems []string
}

// NewMock returns a Mock answering with output.
func NewMock(output string) *Mock {
	return &Mock{Output: output}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.Systems = append(m.Systems, system)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Output, m.Err
}
