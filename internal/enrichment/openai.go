package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Per-token pricing used to estimate spend, EUR per 1M tokens
const (
	promptTokenRate     = 0.15
	completionTokenRate = 0.60
)

const descriptionSystemPrompt = `You write concise retail product descriptions. ` +
	`Given a product's name, brand and category, produce a factual two-sentence ` +
	`description suitable for a webshop listing. Do not invent specifications.`

// AIConfig configures the OpenAI-backed provider
type AIConfig struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Model       string // defaults to gpt-4o-mini
	Temperature float64
}

// AIProvider rewrites sparse supplier descriptions into clean listing copy
// using a chat completion model. It only runs for products that already have
// at least a title to work from.
type AIProvider struct {
	client *openai.Client
	config AIConfig
	writer ProductWriter
	logger zerolog.Logger
}

// NewAIProvider creates an OpenAI-backed enrichment provider
func NewAIProvider(cfg AIConfig, writer ProductWriter, logger zerolog.Logger) (*AIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &AIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		writer: writer,
		logger: logger.With().Str("provider", "openai").Logger(),
	}, nil
}

func (p *AIProvider) Name() string { return "openai" }

// Enrich generates a listing description for the product. Products without a
// usable title are skipped (OK=false) rather than hallucinated about.
func (p *AIProvider) Enrich(ctx context.Context, ean string) (Result, error) {
	product, err := p.writer.MasterProduct(ctx, ean)
	if err != nil {
		return Result{}, fmt.Errorf("load product %s: %w", ean, err)
	}
	if product == nil || strings.TrimSpace(product.Description) == "" {
		p.logger.Debug().Str("ean", ean).Msg("No source text to enrich from")
		return Result{OK: false}, nil
	}

	prompt := fmt.Sprintf("Product: %s\nBrand: %s\nCategory: %s",
		product.Description, product.Brand, product.Category)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: descriptionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(p.config.Temperature),
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion for %s: %w", ean, err)
	}

	cost := float64(resp.Usage.PromptTokens)*promptTokenRate/1e6 +
		float64(resp.Usage.CompletionTokens)*completionTokenRate/1e6

	if len(resp.Choices) == 0 {
		return Result{Cost: cost}, fmt.Errorf("no choices in response for %s", ean)
	}

	description := strings.TrimSpace(resp.Choices[0].Message.Content)
	if description == "" {
		return Result{Cost: cost, OK: false}, nil
	}

	if err := p.writer.UpdateEnrichedFields(ctx, ean, description, product.Brand); err != nil {
		return Result{Cost: cost}, fmt.Errorf("persist enrichment for %s: %w", ean, err)
	}

	p.logger.Debug().
		Str("ean", ean).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Generated product description")

	return Result{OK: true, Cost: cost}, nil
}
