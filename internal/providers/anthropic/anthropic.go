// Package anthropic plans moves with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// Name is the registry key of this provider.
const Name = "anthropic"

const defaultBaseURL = "https://api.anthropic.com"

// ErrNoText is returned when the response has no text content block.
var ErrNoText = errors.New("anthropic: response has no text block")

// Client calls the Messages endpoint through the official SDK.
type Client struct {
	api         sdk.Client
	model       string
	maxTokens   int
	temperature float64
}

// New builds a client from the provider config.
func New(cfg config.ProviderConfig) (*Client, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 50
	}
	// A failed call falls back to the local planner, so retries only add latency.
	api := sdk.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(base),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)
	return &Client{
		api:         api,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete implements registry.Provider. The request's own MaxTokens and
// Temperature take precedence over the configured ones when set.
func (c *Client) Complete(ctx context.Context, req registry.Request) (string, error) {
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(temperature),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrNoText
}

func init() {
	registry.Register(Name, "Anthropic Messages", func(cfg config.ProviderConfig) (registry.Provider, error) {
		return New(cfg)
	})
}
