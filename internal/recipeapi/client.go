// Package recipeapi is a client for the recipe generation HTTP API.
package recipeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"recipebook/internal/recipe"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recipe api: %d: %s", e.StatusCode, e.Message)
}

// GenerateRequest is the body of a generate-recipes call.
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
}

// GenerateResponse is the body returned by generate-recipes. Recipes is
// nil when the field is absent.
type GenerateResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// RecipeRequest is the body of recipe-details and nutrition-info calls.
type RecipeRequest struct {
	RecipeName  string   `json:"recipeName"`
	Ingredients []string `json:"ingredients"`
}

// DetailsResponse is the body returned by recipe-details.
type DetailsResponse struct {
	Recipe            string `json:"recipe"`
	NutritionAnalysis string `json:"nutritionAnalysis"`
}

// NutritionResponse is the body returned by nutrition-info.
type NutritionResponse struct {
	NutritionInfo string `json:"nutritionInfo"`
}

// Client calls the recipe API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	imageURL   string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithImageBaseURL sets where recipe images are fetched from. By default
// it is the API base URL without its path.
func WithImageBaseURL(u string) Option {
	return func(c *Client) { c.imageURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default(),
	}
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		c.imageURL = u.Scheme + "://" + u.Host
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateRecipes asks for recipes that use the given ingredients.
func (c *Client) GenerateRecipes(ctx context.Context, ingredients []string) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "generate-recipes", GenerateRequest{Ingredients: ingredients}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecipeDetails fetches the full text of a recipe.
func (c *Client) RecipeDetails(ctx context.Context, name string, ingredients []string) (*DetailsResponse, error) {
	var resp DetailsResponse
	if err := c.post(ctx, "recipe-details", RecipeRequest{RecipeName: name, Ingredients: ingredients}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NutritionInfo fetches the nutrition analysis of a recipe.
func (c *Client) NutritionInfo(ctx context.Context, name string, ingredients []string) (string, error) {
	var resp NutritionResponse
	if err := c.post(ctx, "nutrition-info", RecipeRequest{RecipeName: name, Ingredients: ingredients}, &resp); err != nil {
		return "", err
	}
	return resp.NutritionInfo, nil
}

// ImageURL returns the conventional image location for a recipe.
func (c *Client) ImageURL(name string) string {
	return c.imageURL + "/images/" + recipe.ImageName(name)
}

// ImageAvailable reports whether the recipe's image can be loaded. Any
// failure means the caller should show a placeholder.
func (c *Client) ImageAvailable(ctx context.Context, name string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.ImageURL(name), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("image probe failed", "recipe", name, "err", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("calling recipe api", "endpoint", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("recipe api error", "endpoint", endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage extracts the error text from a JSON error body, preferring
// the "error" field over "message".
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
