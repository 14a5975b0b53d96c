package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"recipebook/internal/providers"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Client is a client for the Gemini API.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{client: client, modelName: model}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return "gemini" }

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Complete sends the prompt to Gemini and returns the text of the first
// candidate. A fresh model handle is used per call since the system
// instruction and temperature differ between prompts.
func (c *Client) Complete(ctx context.Context, prompt providers.Prompt) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(prompt.Temperature)
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", providers.ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini: %w", providers.ErrEmptyResponse)
	}
	return strings.TrimSpace(b.String()), nil
}
