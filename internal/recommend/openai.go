package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel balances cost and quality for short suggestions.
	DefaultModel = "gpt-4o-mini"

	systemPrompt = "You are an activity recommendation assistant. Follow the requested output format exactly."

	// Bound the generative call so a slow upstream can't stall requests.
	generateTimeout = 10 * time.Second
)

// OpenAIGenerator implements Generator against the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIGenerator creates a generator. An empty model selects DefaultModel.
func NewOpenAIGenerator(apiKey, model string, logger *slog.Logger) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Generate sends the prompt as a chat completion and returns the raw text.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	g.logger.Debug("generating recommendation", "model", g.model)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
