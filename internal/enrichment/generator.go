package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"invoiceflow/internal/logger"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrInvalidInput means category, item name or a positive price is missing.
	ErrInvalidInput = errors.New("category, item name and a positive price are required")
	// ErrGenerationFailed is the only error surfaced for upstream failures.
	ErrGenerationFailed = errors.New("could not generate description")
)

const promptTemplate = `You write short product descriptions for a small shop's inventory catalog.
Write an appealing description of 2 to 3 sentences for this item.

Category: %s
Item name: %s
Price: INR %.2f

Respond with JSON only: {"description": "<text>"}`

// Input is what the description is generated from.
type Input struct {
	Category string  `json:"category"`
	ItemName string  `json:"itemName"`
	Price    float64 `json:"price"`
}

// Validate checks all three fields are present and the price is positive.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.ItemName) == "" || in.Price <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// ChatCompleter is the part of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator writes a product description.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

type openAIGenerator struct {
	client ChatCompleter
	model  string
	log    zerolog.Logger
}

// New creates a generator for an OpenAI-compatible endpoint. An empty API
// key yields a generator that always fails with ErrGenerationFailed.
func New(apiKey, baseURL, model string) Generator {
	if apiKey == "" {
		return disabled{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewWithClient(openai.NewClientWithConfig(cfg), model)
}

// NewWithClient creates a generator over an existing client.
func NewWithClient(client ChatCompleter, model string) Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openAIGenerator{
		client: client,
		model:  model,
		log:    logger.WithComponent("enrichment"),
	}
}

type descriptionResponse struct {
	Description string `json:"description"`
}

func (g *openAIGenerator) Generate(ctx context.Context, in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(promptTemplate, in.Category, in.ItemName, in.Price),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		g.log.Error().Err(err).Str("item", in.ItemName).Msg("description request failed")
		return "", ErrGenerationFailed
	}
	if len(resp.Choices) == 0 {
		g.log.Error().Str("item", in.ItemName).Msg("description response had no choices")
		return "", ErrGenerationFailed
	}

	var out descriptionResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil || strings.TrimSpace(out.Description) == "" {
		g.log.Error().Err(err).Str("item", in.ItemName).Msg("description response was not usable")
		return "", ErrGenerationFailed
	}
	return strings.TrimSpace(out.Description), nil
}

type disabled struct{}

func (disabled) Generate(_ context.Context, in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	return "", ErrGenerationFailed
}
