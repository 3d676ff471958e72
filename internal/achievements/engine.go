package achievements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
)

type Snapshotter interface {
	Build(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

type AwardStore interface {
	HasAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error)
	// Award reports false when the pair was already stored.
	Award(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error)
	ListUserAwards(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error)
}

// Engine awards catalog badges. Awards are never revoked.
type Engine struct {
	catalog   *Catalog
	snapshots Snapshotter
	awards    AwardStore
	locker    Locker
	loc       *time.Location
	logger    *slog.Logger
}

func NewEngine(catalog *Catalog, snapshots Snapshotter, awards AwardStore, locker Locker, loc *time.Location, logger *slog.Logger) *Engine {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:   catalog,
		snapshots: snapshots,
		awards:    awards,
		locker:    locker,
		loc:       loc,
		logger:    logger,
	}
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// EvaluateAndAward checks every badge the user does not hold yet against a
// fresh snapshot and awards the ones that now apply. The returned ids follow
// catalog order. A failure on one badge is logged and the pass continues; an
// error is returned only when the pass could not run at all.
func (e *Engine) EvaluateAndAward(ctx context.Context, userID uuid.UUID, latest *models.QuizResult) ([]string, error) {
	unlock, err := e.locker.Lock(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("acquire achievement lock: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			e.logger.Warn("achievement lock release failed", "user_id", userID, "error", err)
		}
	}()

	stats, err := e.snapshots.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build stats snapshot: %w", err)
	}

	attempt := NewAttempt(latest, e.loc)
	unlocked := []string{}

	for _, def := range e.catalog.defs {
		has, err := e.awards.HasAchievement(ctx, userID, def.ID)
		if err != nil {
			e.logger.Warn("achievement lookup failed",
				"user_id", userID, "achievement_id", def.ID, "error", err)
			continue
		}
		if has {
			continue
		}

		if !Evaluate(def.Condition, stats, attempt) {
			continue
		}

		inserted, err := e.awards.Award(ctx, userID, def.ID)
		if err != nil {
			e.logger.Warn("achievement award failed",
				"user_id", userID, "achievement_id", def.ID, "error", err)
			continue
		}
		if !inserted {
			continue
		}

		e.logger.Info("achievement unlocked", "user_id", userID, "achievement_id", def.ID)
		unlocked = append(unlocked, def.ID)
	}

	return unlocked, nil
}

// Status is one catalog entry as seen by a particular user.
type Status struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Rarity      Rarity     `json:"rarity"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Total       *int       `json:"total,omitempty"`
}

// ListForUser returns every catalog entry with the user's unlock state.
// Locked value-threshold badges carry progress towards their goal.
func (e *Engine) ListForUser(ctx context.Context, userID uuid.UUID) ([]Status, error) {
	awards, err := e.awards.ListUserAwards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load awards: %w", err)
	}
	unlockedAt := make(map[string]time.Time, len(awards))
	for _, a := range awards {
		unlockedAt[a.AchievementID] = a.UnlockedAt
	}

	stats, err := e.snapshots.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build stats snapshot: %w", err)
	}

	out := make([]Status, 0, len(e.catalog.defs))
	for _, def := range e.catalog.defs {
		st := Status{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			Rarity:      def.Rarity,
			Icon:        def.Icon,
		}
		if at, ok := unlockedAt[def.ID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
		} else if progress, total, ok := Progress(def.Condition, stats); ok {
			st.Progress = &progress
			st.Total = &total
		}
		out = append(out, st)
	}
	return out, nil
}
