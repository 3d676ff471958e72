package services

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"studytrack-backend/internal/models"
)

type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
	count  int
	rate   rateGate
}

func NewAnthropicGenerator(apiKey, model string, count, concurrentReqs int) *AnthropicGenerator {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicGenerator{
		client: &client,
		model:  model,
		count:  count,
		rate:   newRateGate(concurrentReqs),
	}
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

func (g *AnthropicGenerator) Generate(ctx context.Context, topic, subject string) ([]models.QuizQuestion, error) {
	if err := g.rate.acquire(ctx); err != nil {
		return nil, err
	}
	defer g.rate.release()

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   2048,
		Temperature: anthropic.Float(0.7),
		System:      []anthropic.TextBlockParam{{Text: systemPromptJSON(g.count)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(topic, subject, g.count))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in Anthropic response")
	}

	questions, err := parseQuestionsJSON(text)
	if err != nil {
		return nil, fmt.Errorf("Anthropic response: %w", err)
	}
	return validateQuestions(questions, g.count), nil
}
