package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	GoalTypeDaily  = "daily"
	GoalTypeWeekly = "weekly"
)

type Goal struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	TargetDate  time.Time  `json:"target_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateGoalRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Type       string `json:"type" validate:"required,oneof=daily weekly"`
	TargetDate string `json:"target_date" validate:"required,datetime=2006-01-02"`
}
