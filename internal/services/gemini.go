package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"studytrack-backend/internal/models"
)

type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	count  int
	rate   rateGate
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, count, concurrentReqs int) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPromptJSON(count)))

	return &GeminiGenerator{
		client: client,
		model:  model,
		count:  count,
		rate:   newRateGate(concurrentReqs),
	}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Close() {
	g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, topic, subject string) ([]models.QuizQuestion, error) {
	if err := g.rate.acquire(ctx); err != nil {
		return nil, err
	}
	defer g.rate.release()

	resp, err := g.model.GenerateContent(ctx, genai.Text(userPrompt(topic, subject, g.count)))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	questions, err := parseQuestionsJSON(extractText(resp))
	if err != nil {
		return nil, fmt.Errorf("Gemini response: %w", err)
	}
	return validateQuestions(questions, g.count), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
