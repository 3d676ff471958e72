package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studytrack-backend/internal/achievements"
	"studytrack-backend/internal/models"
)

const (
	EventAchievementUnlocked = "achievement_unlocked"
	EventQuestionsReady      = "questions_ready"
)

// Publisher fans events out to websocket hubs over Redis pub/sub.
type Publisher struct {
	redis   *redis.Client
	catalog *achievements.Catalog
}

func NewPublisher(redisClient *redis.Client, catalog *achievements.Catalog) *Publisher {
	return &Publisher{redis: redisClient, catalog: catalog}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (p *Publisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.redis.Publish(ctx, UserChannel(userID), string(data)).Err(); err != nil {
		slog.Warn("publish failed", "user_id", userID, "type", msg.Type, "error", err)
	}
}

func (p *Publisher) PublishAchievements(ctx context.Context, userID uuid.UUID, ids []string) {
	for _, msg := range achievementMessages(p.catalog, ids) {
		p.PublishUpdate(ctx, userID, msg)
	}
}

func (p *Publisher) PublishQuestionsReady(ctx context.Context, userID, sessionID uuid.UUID, count int) {
	p.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    EventQuestionsReady,
		Payload: models.QuestionsReadyEvent{SessionID: sessionID, QuestionCount: count},
	})
}

func achievementMessages(catalog *achievements.Catalog, ids []string) []models.WSMessage {
	msgs := make([]models.WSMessage, 0, len(ids))
	for _, id := range ids {
		def, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		msgs = append(msgs, models.WSMessage{
			Type: EventAchievementUnlocked,
			Payload: models.AchievementUnlockedEvent{
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
				Category:    string(def.Category),
				Rarity:      string(def.Rarity),
				Icon:        def.Icon,
			},
		})
	}
	return msgs
}
