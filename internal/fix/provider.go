// Package fix generates replacement code for violations via an AI provider.
package fix

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Provider is the interface for fix-generation backends.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider is the factory for fix providers. It is a package-level
// variable so tests can replace it with a mock; tests must restore the
// original value.
var NewProvider func(cfg ProviderConfig) (Provider, error) = newAnthropicProvider

// ProviderConfig configures the backing model.
type ProviderConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// anthropicProvider calls the Anthropic Messages API.
type anthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fix: missing API key (set ANTHROPIC_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &anthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("fix: anthropic request: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
