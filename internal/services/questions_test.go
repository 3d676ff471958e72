package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"

	"studytrack-backend/internal/config"
	"studytrack-backend/internal/models"
)

const lineResponse = `Here are your questions:

1. Q: What is 2 + 2?
   A: 3
   B: 4
   C: 5
   D: 22
   CORRECT: B
   EXPLANATION: Two plus two
   equals four.

2. Q: Which one is a prime?
   A: 4
   B: 6
   C: 7
   CORRECT: C
   EXPLANATION: Only three options, dropped.

3. Q: Which is a colour?
   A: Blue
   B: Seven
   C: Table
   D: Run
   CORRECT: a
`

func TestParseQuestionLines(t *testing.T) {
	got := parseQuestionLines(lineResponse)
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(got), got)
	}

	if got[0].Question != "What is 2 + 2?" {
		t.Errorf("unexpected question text %q", got[0].Question)
	}
	if got[0].CorrectIndex != 1 {
		t.Errorf("expected correct index 1, got %d", got[0].CorrectIndex)
	}
	if got[0].Explanation != "Two plus two equals four." {
		t.Errorf("expected continued explanation, got %q", got[0].Explanation)
	}
	if got[1].Question != "Which is a colour?" || got[1].CorrectIndex != 0 {
		t.Errorf("unexpected second question %+v", got[1])
	}
	if got[1].Explanation != "No explanation provided." {
		t.Errorf("expected default explanation, got %q", got[1].Explanation)
	}
}

func TestParseQuestionLines_Empty(t *testing.T) {
	if got := parseQuestionLines("I cannot help with that."); len(got) != 0 {
		t.Errorf("expected no questions, got %d", len(got))
	}
}

func TestParseQuestionsJSON(t *testing.T) {
	q := `{"question":"Q?","options":["a","b","c","d"],"correct_index":2}`
	tests := []struct {
		name string
		raw  string
	}{
		{"wrapped", `{"questions":[` + q + `]}`},
		{"bare array", `[` + q + `]`},
		{"fenced", "```json\n{\"questions\":[" + q + "]}\n```"},
		{"prose around object", `Sure! {"questions":[` + q + `]} Good luck.`},
		{"prose around array", `Result: [` + q + `] done`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQuestionsJSON(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 || got[0].CorrectIndex != 2 || len(got[0].Options) != 4 {
				t.Errorf("unexpected parse result %+v", got)
			}
		})
	}

	if _, err := parseQuestionsJSON("no json here"); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestValidateQuestions(t *testing.T) {
	four := []string{"a", "b", "c", "d"}
	in := []models.QuizQuestion{
		{Question: "ok", Options: four, CorrectIndex: 3},
		{Question: "", Options: four, CorrectIndex: 0},
		{Question: "two options", Options: []string{"a", "b"}, CorrectIndex: 0},
		{Question: "bad index", Options: four, CorrectIndex: 4},
		{Question: "negative", Options: four, CorrectIndex: -1},
		{Question: "ok2", Options: four, CorrectIndex: 0},
		{Question: "ok3", Options: four, CorrectIndex: 1},
	}

	got := validateQuestions(in, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].Question != "ok" || got[1].Question != "ok2" {
		t.Errorf("unexpected survivors %+v", got)
	}

	if got := validateQuestions(in, 0); len(got) != 3 {
		t.Errorf("expected 3 questions with no limit, got %d", len(got))
	}
}

func TestFallbackGenerator(t *testing.T) {
	got, err := FallbackGenerator{}.Generate(context.Background(), "Photosynthesis", "Biology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	for _, q := range got {
		if !strings.Contains(q.Question, "Photosynthesis") {
			t.Errorf("expected topic in question %q", q.Question)
		}
	}
	if len(validateQuestions(got, 5)) != 3 {
		t.Error("fallback questions must pass validation")
	}
}

func TestNewQuestionGenerator(t *testing.T) {
	gen, err := NewQuestionGenerator(context.Background(), &config.Config{QuizProvider: "anthropic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Name() != "fallback" {
		t.Errorf("expected fallback without API key, got %s", gen.Name())
	}

	gen, err = NewQuestionGenerator(context.Background(), &config.Config{QuizProvider: "openrouter", OpenRouterAPIKey: "k", OpenRouterModel: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Name() != "openrouter" {
		t.Errorf("expected openrouter, got %s", gen.Name())
	}

	if _, err := NewQuestionGenerator(context.Background(), &config.Config{QuizProvider: "bard"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func newTestOpenAIGenerator(t *testing.T, lineFormat bool, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return &OpenAIGenerator{
		client:     openai.NewClientWithConfig(cfg),
		name:       "test",
		model:      "test-model",
		count:      5,
		lineFormat: lineFormat,
		rate:       newRateGate(1),
	}
}

func TestOpenAIGenerator_JSON(t *testing.T) {
	var gotFormat string
	g := newTestOpenAIGenerator(t, false, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat != nil {
			gotFormat = string(req.ResponseFormat.Type)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":[{"question":"Q?","options":["a","b","c","d"],"correct_index":1}]}`))
	})

	got, err := g.Generate(context.Background(), "Topic", "Subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CorrectIndex != 1 {
		t.Errorf("unexpected questions %+v", got)
	}
	if gotFormat != string(openai.ChatCompletionResponseFormatTypeJSONObject) {
		t.Errorf("expected json_object response format, got %q", gotFormat)
	}
}

func TestOpenAIGenerator_LineFormatFallsBack(t *testing.T) {
	g := newTestOpenAIGenerator(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("Sorry, I cannot do that."))
	})

	got, err := g.Generate(context.Background(), "Algebra", "Math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || !strings.Contains(got[0].Question, "Algebra") {
		t.Errorf("expected fallback questions, got %+v", got)
	}
}

func TestAnthropicGenerator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `[{"question":"Q?","options":["a","b","c","d"],"correct_index":3,"explanation":"because"}]`},
			},
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	t.Cleanup(server.Close)

	client := anthropic.NewClient(option.WithAPIKey("test-key"), option.WithBaseURL(server.URL))
	g := &AnthropicGenerator{client: &client, model: "claude-test", count: 5, rate: newRateGate(1)}

	got, err := g.Generate(context.Background(), "Topic", "Subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CorrectIndex != 3 || got[0].Explanation != "because" {
		t.Errorf("unexpected questions %+v", got)
	}
}
