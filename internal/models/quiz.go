package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
}

// PublicQuestion is the client view of a QuizQuestion, without the answer.
type PublicQuestion struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type QuizResult struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	SessionID      uuid.UUID       `json:"session_id"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	QuestionsJSON  json.RawMessage `json:"questions"`
	AnswersJSON    json.RawMessage `json:"user_answers"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SubmitQuizRequest struct {
	Answers map[int]int `json:"answers"`
}

type QuizSubmission struct {
	Score           int      `json:"score"`
	TotalQuestions  int      `json:"total_questions"`
	Percentage      int      `json:"percentage"`
	NewAchievements []string `json:"new_achievements"`
}
