package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type GoalRepo struct {
	pool *pgxpool.Pool
}

func NewGoalRepo(pool *pgxpool.Pool) *GoalRepo {
	return &GoalRepo{pool: pool}
}

const goalColumns = `id, user_id, title, type, target_date, completed, completed_at, created_at`

func scanGoal(row rowScanner) (*models.Goal, error) {
	g := &models.Goal{}
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Type, &g.TargetDate, &g.Completed, &g.CompletedAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GoalRepo) Create(ctx context.Context, g *models.Goal) error {
	g.ID = uuid.New()
	query := `INSERT INTO goals (id, user_id, title, type, target_date)
		VALUES ($1, $2, $3, $4, $5::date) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, g.ID, g.UserID, g.Title, g.Type, g.TargetDate.Format("2006-01-02")).Scan(&g.CreatedAt)
}

func (r *GoalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	return scanGoal(r.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
}

func (r *GoalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY target_date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Complete marks the goal done once. Completing it again returns the stored
// goal unchanged.
func (r *GoalRepo) Complete(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	_, err := r.pool.Exec(ctx,
		"UPDATE goals SET completed = TRUE, completed_at = NOW() WHERE id = $1 AND completed = FALSE", id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
