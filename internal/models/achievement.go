package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AchievementRecord is the stored form of a catalog definition.
type AchievementRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Rarity        string          `json:"rarity"`
	Icon          string          `json:"icon"`
	ConditionJSON json.RawMessage `json:"condition"`
}

type UserAchievement struct {
	UserID        uuid.UUID `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
