package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type AchievementRepo struct {
	pool *pgxpool.Pool
}

func NewAchievementRepo(pool *pgxpool.Pool) *AchievementRepo {
	return &AchievementRepo{pool: pool}
}

func (r *AchievementRepo) UpsertDefinition(ctx context.Context, rec *models.AchievementRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO achievements (id, name, description, category, rarity, icon, condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			rarity = EXCLUDED.rarity,
			icon = EXCLUDED.icon,
			condition = EXCLUDED.condition`,
		rec.ID, rec.Name, rec.Description, rec.Category, rec.Rarity, rec.Icon, rec.ConditionJSON,
	)
	return err
}

func (r *AchievementRepo) ListDefinitions(ctx context.Context) ([]*models.AchievementRecord, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, description, category, rarity, icon, condition FROM achievements ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AchievementRecord
	for rows.Next() {
		rec := &models.AchievementRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Category, &rec.Rarity, &rec.Icon, &rec.ConditionJSON); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *AchievementRepo) HasAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)",
		userID, achievementID,
	).Scan(&exists)
	return exists, err
}

// Award inserts the pair and reports whether a row was written. An existing
// award is not an error.
func (r *AchievementRepo) Award(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		uuid.New(), userID, achievementID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AchievementRepo) ListUserAwards(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT user_id, achievement_id, unlocked_at FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.UserAchievement
	for rows.Next() {
		a := &models.UserAchievement{}
		if err := rows.Scan(&a.UserID, &a.AchievementID, &a.UnlockedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
