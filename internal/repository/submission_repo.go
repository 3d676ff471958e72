package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SubmissionRepo records a graded quiz as one unit of work.
type SubmissionRepo struct {
	pool txStarter
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// RecordSubmission completes the session, stores the result and adds the
// day's activity in a single transaction. It reports false, writing nothing,
// when the session was already completed.
func (r *SubmissionRepo) RecordSubmission(ctx context.Context, result *models.QuizResult, date time.Time, studyTime int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin submission: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := completeSession(ctx, tx, result.SessionID)
	if err != nil {
		return false, fmt.Errorf("failed to complete session: %w", err)
	}
	if !claimed {
		return false, nil
	}

	if err := insertResult(ctx, tx, result); err != nil {
		return false, fmt.Errorf("failed to store quiz result: %w", err)
	}

	if _, err := upsertActivity(ctx, tx, result.UserID, date, studyTime, result.Score); err != nil {
		return false, fmt.Errorf("failed to record activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit submission: %w", err)
	}
	return true, nil
}
