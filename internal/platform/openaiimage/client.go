// Package openaiimage paints recipe pictures with the OpenAI Images API.
package openaiimage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "dall-e-2"

// ErrNoImage is returned when the API answers without image data.
var ErrNoImage = errors.New("no image in response")

// Client generates recipe images.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a Client. opts are applied after the API key, so tests
// can point the client at another base URL.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: openai.NewClient(opts...), model: model}
}

// Generate returns a 512x512 PNG of the named dish.
func (c *Client) Generate(ctx context.Context, recipeName string) ([]byte, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt(recipeName),
		Model:          openai.ImageModel(c.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize512x512,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}

func prompt(recipeName string) string {
	return fmt.Sprintf("A professional food photography style image of %s, on a beautiful plate with garnish, soft lighting, high resolution", recipeName)
}
