package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"studytrack-backend/internal/config"
	"studytrack-backend/internal/models"
)

const optionsPerQuestion = 4

// QuestionGenerator produces multiple-choice questions for a study session.
type QuestionGenerator interface {
	Name() string
	Generate(ctx context.Context, topic, subject string) ([]models.QuizQuestion, error)
}

// NewQuestionGenerator builds the generator named by cfg.QuizProvider. A
// provider without an API key degrades to the offline generator.
func NewQuestionGenerator(ctx context.Context, cfg *config.Config) (QuestionGenerator, error) {
	count := cfg.QuizQuestionCount
	if count <= 0 {
		count = 5
	}

	provider := cfg.QuizProvider
	switch provider {
	case "gemini", "anthropic", "openai", "openrouter", "fallback":
	default:
		return nil, fmt.Errorf("unknown quiz provider %q", provider)
	}
	if provider != "fallback" && cfg.ProviderAPIKey() == "" {
		slog.Warn("quiz provider has no API key, using offline questions", "provider", provider)
		provider = "fallback"
	}

	switch provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, count, cfg.QuizConcurrentReqs)
	case "anthropic":
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, count, cfg.QuizConcurrentReqs), nil
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, count, cfg.QuizConcurrentReqs), nil
	case "openrouter":
		return NewOpenRouterGenerator(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.FrontendURL, count, cfg.QuizConcurrentReqs), nil
	}
	return FallbackGenerator{}, nil
}

// rateGate is a token bucket bounding in-flight model calls.
type rateGate chan struct{}

func newRateGate(n int) rateGate {
	if n <= 0 {
		n = 1
	}
	g := make(rateGate, n)
	for i := 0; i < n; i++ {
		g <- struct{}{}
	}
	return g
}

func (g rateGate) acquire(ctx context.Context) error {
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for model rate slot")
	}
}

func (g rateGate) release() {
	g <- struct{}{}
}

func systemPromptJSON(count int) string {
	return fmt.Sprintf(`You are an expert educator creating multiple-choice questions for students. Generate exactly %d high-quality questions about the given topic. Each question must have exactly 4 options with exactly one correct answer. The wrong answers should be plausible but clearly incorrect.

CRITICAL: Return ONLY valid JSON. No preamble, no markdown, no backticks.
{"questions": [{"question": "string", "options": ["string", "string", "string", "string"], "correct_index": 0, "explanation": "string"}]}
correct_index is the 0-based index of the correct option.`, count)
}

func systemPromptLines(count int) string {
	return fmt.Sprintf(`You are an expert educator creating multiple choice questions for students. Generate exactly %d questions about the given topic. Each question should have 4 answer options (A, B, C, D) with only ONE correct answer. Include a clear explanation for each correct answer. Format your response exactly like this:

1. Q: What is the capital of France?
   A: London
   B: Paris
   C: Berlin
   D: Madrid
   CORRECT: B
   EXPLANATION: Paris is the capital and largest city of France.`, count)
}

func userPrompt(topic, subject string, count int) string {
	return fmt.Sprintf(`Create %d multiple choice questions about "%s" in the subject of %s. Make them educational, clear, and appropriate for students. Each question must have 4 different answer options with only one correct answer.`, count, topic, subject)
}

// parseQuestionsJSON accepts either {"questions": [...]} or a bare array,
// optionally wrapped in a markdown fence or surrounding prose.
func parseQuestionsJSON(raw string) ([]models.QuizQuestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var wrapped struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Questions != nil {
		return wrapped.Questions, nil
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err == nil {
		return questions, nil
	}

	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &wrapped); err == nil && wrapped.Questions != nil {
			return wrapped.Questions, nil
		}
	}
	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err == nil {
			return questions, nil
		}
	}
	return nil, fmt.Errorf("response is not a question list")
}

var (
	questionLine    = regexp.MustCompile(`(?i)^(\d+\.\s*)?Q:\s*`)
	optionLine      = regexp.MustCompile(`(?i)^[A-D]:\s*`)
	correctLine     = regexp.MustCompile(`(?i)^CORRECT:\s*([A-D])`)
	explanationLine = regexp.MustCompile(`(?i)^EXPLANATION:\s*`)
)

// parseQuestionLines reads the numbered "Q:/A:-D:/CORRECT:/EXPLANATION:"
// format. Blocks without four options and a correct letter are dropped.
func parseQuestionLines(text string) []models.QuizQuestion {
	var (
		out     []models.QuizQuestion
		cur     models.QuizQuestion
		correct = -1
		inQ     bool
	)

	flush := func() {
		if inQ && cur.Question != "" && len(cur.Options) == optionsPerQuestion && correct >= 0 {
			cur.CorrectIndex = correct
			if cur.Explanation == "" {
				cur.Explanation = "No explanation provided."
			}
			out = append(out, cur)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case questionLine.MatchString(trimmed):
			flush()
			cur = models.QuizQuestion{Question: strings.TrimSpace(questionLine.ReplaceAllString(trimmed, ""))}
			correct = -1
			inQ = true
		case optionLine.MatchString(trimmed):
			cur.Options = append(cur.Options, strings.TrimSpace(optionLine.ReplaceAllString(trimmed, "")))
		case correctLine.MatchString(trimmed):
			letter := strings.ToUpper(correctLine.FindStringSubmatch(trimmed)[1])
			correct = int(letter[0] - 'A')
		case explanationLine.MatchString(trimmed):
			cur.Explanation = strings.TrimSpace(explanationLine.ReplaceAllString(trimmed, ""))
		case cur.Explanation != "" && trimmed != "":
			cur.Explanation += " " + trimmed
		}
	}
	flush()

	return out
}

// validateQuestions keeps well-formed questions, up to limit.
func validateQuestions(questions []models.QuizQuestion, limit int) []models.QuizQuestion {
	valid := make([]models.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) != optionsPerQuestion {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
		if limit > 0 && len(valid) == limit {
			break
		}
	}
	return valid
}

// FallbackGenerator returns generic study-skill questions about the topic.
// It needs no network and never fails.
type FallbackGenerator struct{}

func (FallbackGenerator) Name() string { return "fallback" }

func (FallbackGenerator) Generate(_ context.Context, topic, _ string) ([]models.QuizQuestion, error) {
	return fallbackQuestions(topic), nil
}

func fallbackQuestions(topic string) []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			Question:     fmt.Sprintf("What is the primary focus when studying %s?", topic),
			Options:      []string{"Understanding core concepts and principles", "Memorizing dates only", "Learning unrelated subjects", "Ignoring practical applications"},
			CorrectIndex: 0,
			Explanation:  "Understanding core concepts and principles lets you apply knowledge in different contexts.",
		},
		{
			Question:     fmt.Sprintf("Why is learning about %s important?", topic),
			Options:      []string{"It builds foundational knowledge", "It has no practical use", "It only matters for tests", "It should be avoided"},
			CorrectIndex: 0,
			Explanation:  "Foundational knowledge is the basis for more complex topics and real-world applications.",
		},
		{
			Question:     fmt.Sprintf("What approach is best for mastering %s?", topic),
			Options:      []string{"Regular practice and review", "Cramming before exams", "Avoiding difficult concepts", "Skipping fundamentals"},
			CorrectIndex: 0,
			Explanation:  "Regular practice and review moves information into long-term memory.",
		},
	}
}
