package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StudySession is a planned unit of study. QuestionsJSON holds the quiz set
// generated for it the first time it was requested and is never sent to clients.
type StudySession struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Topic         string          `json:"topic"`
	Subject       string          `json:"subject"`
	EstimatedTime int             `json:"estimated_time"`
	Completed     bool            `json:"completed"`
	CompletedAt   *time.Time      `json:"completed_at"`
	QuestionsJSON json.RawMessage `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CreateSessionRequest struct {
	Topic         string `json:"topic" validate:"required,max=200"`
	Subject       string `json:"subject" validate:"required,max=100"`
	EstimatedTime int    `json:"estimated_time" validate:"required,min=1,max=1440"`
}
