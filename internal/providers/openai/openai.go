// Package openai plans moves with the OpenAI Responses API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// Name is the registry key of this provider.
const Name = "openai"

const defaultBaseURL = "https://api.openai.com/v1"

// ErrEmptyOutput is returned when the response carries no output text.
var ErrEmptyOutput = errors.New("openai: response has no output text")

// Client calls the Responses endpoint through the official SDK.
type Client struct {
	api    sdk.Client
	model  string
	maxOut int
}

// New builds a client from the provider config. The API key is read from
// the environment variable the config names.
func New(cfg config.ProviderConfig) (*Client, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	// A failed call falls back to the local planner, so retries only add latency.
	api := sdk.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(base),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)
	return &Client{api: api, model: cfg.Model, maxOut: cfg.MaxTokens}, nil
}

// Complete implements registry.Provider.
// Reasoning models reject a temperature parameter, so it is not sent.
func (c *Client) Complete(ctx context.Context, req registry.Request) (string, error) {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: sdk.String(req.Prompt)},
	}
	if req.System != "" {
		params.Instructions = sdk.String(req.System)
	}
	maxOut := req.MaxTokens
	if maxOut == 0 {
		maxOut = c.maxOut
	}
	if maxOut > 0 {
		params.MaxOutputTokens = sdk.Int(int64(maxOut))
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	text := resp.OutputText()
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

func init() {
	registry.Register(Name, "OpenAI Responses", func(cfg config.ProviderConfig) (registry.Provider, error) {
		return New(cfg)
	})
}
