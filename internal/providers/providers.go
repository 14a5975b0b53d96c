package providers

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// Prompt is a single-turn request to an LLM provider.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}

// Provider completes prompts with text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
