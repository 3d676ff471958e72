package models

import (
	"time"

	"github.com/google/uuid"
)

// StudyActivity accumulates minutes and points for one user on one calendar day.
type StudyActivity struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      time.Time `json:"date"`
	StudyTime int       `json:"study_time"`
	Score     int       `json:"score"`
}

type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfileImageURL *string   `json:"profile_image_url"`
	TotalScore      int       `json:"total_score"`
	Streak          int       `json:"streak"`
}
