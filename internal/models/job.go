package models

import (
	"time"

	"github.com/google/uuid"
)

const JobTypeQuestionGeneration = "question-generation"

// Job is a unit of background work pushed onto a Redis list.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type AchievementUnlockedEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Rarity      string `json:"rarity"`
	Icon        string `json:"icon"`
}

type QuestionsReadyEvent struct {
	SessionID     uuid.UUID `json:"session_id"`
	QuestionCount int       `json:"question_count"`
}
