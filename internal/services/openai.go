package services

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"studytrack-backend/internal/models"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIGenerator talks to OpenAI or, with lineFormat set, to an
// OpenAI-compatible endpoint whose models answer in the numbered text format.
type OpenAIGenerator struct {
	client     *openai.Client
	name       string
	model      string
	count      int
	lineFormat bool
	rate       rateGate
}

func NewOpenAIGenerator(apiKey, model string, count, concurrentReqs int) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		name:   "openai",
		model:  model,
		count:  count,
		rate:   newRateGate(concurrentReqs),
	}
}

// NewOpenRouterGenerator targets OpenRouter. Free models there do not honour
// JSON response formats, so questions are requested as numbered text.
func NewOpenRouterGenerator(apiKey, model, referer string, count, concurrentReqs int) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = openRouterBaseURL
	if referer == "" {
		referer = "http://localhost:5000"
	}
	config.HTTPClient = &http.Client{Transport: &headerTransport{
		base: http.DefaultTransport,
		headers: map[string]string{
			"HTTP-Referer": referer,
			"X-Title":      "StudyTrack",
		},
	}}

	return &OpenAIGenerator{
		client:     openai.NewClientWithConfig(config),
		name:       "openrouter",
		model:      model,
		count:      count,
		lineFormat: true,
		rate:       newRateGate(concurrentReqs),
	}
}

func (g *OpenAIGenerator) Name() string { return g.name }

func (g *OpenAIGenerator) Generate(ctx context.Context, topic, subject string) ([]models.QuizQuestion, error) {
	if err := g.rate.acquire(ctx); err != nil {
		return nil, err
	}
	defer g.rate.release()

	req := openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 2048,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPromptJSON(g.count)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(topic, subject, g.count)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if g.lineFormat {
		req.Messages[0].Content = systemPromptLines(g.count)
		req.ResponseFormat = nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", g.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in %s response", g.name)
	}
	content := resp.Choices[0].Message.Content

	if g.lineFormat {
		questions := validateQuestions(parseQuestionLines(content), g.count)
		if len(questions) == 0 {
			return fallbackQuestions(topic), nil
		}
		return questions, nil
	}

	questions, err := parseQuestionsJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%s response: %w", g.name, err)
	}
	return validateQuestions(questions, g.count), nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return t.base.RoundTrip(r)
}
