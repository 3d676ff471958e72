package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

const sessionColumns = `id, user_id, topic, subject, estimated_time, completed, completed_at, questions, created_at`

func scanSession(row rowScanner) (*models.StudySession, error) {
	s := &models.StudySession{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.Topic, &s.Subject, &s.EstimatedTime,
		&s.Completed, &s.CompletedAt, &s.QuestionsJSON, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	s.ID = uuid.New()
	query := `INSERT INTO study_sessions (id, user_id, topic, subject, estimated_time)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.Topic, s.Subject, s.EstimatedTime).Scan(&s.CreatedAt)
}

func (r *StudySessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1`, id))
}

// ListByUser returns sessions newest first.
func (r *StudySessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.StudySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CacheQuestions stores questions only if none are stored yet and returns
// whichever set the session ends up holding.
func (r *StudySessionRepo) CacheQuestions(ctx context.Context, id uuid.UUID, questions json.RawMessage) (json.RawMessage, error) {
	_, err := r.pool.Exec(ctx,
		"UPDATE study_sessions SET questions = $1 WHERE id = $2 AND questions IS NULL",
		questions, id,
	)
	if err != nil {
		return nil, err
	}

	var stored json.RawMessage
	err = r.pool.QueryRow(ctx, "SELECT questions FROM study_sessions WHERE id = $1", id).Scan(&stored)
	return stored, err
}

// completeSession marks the session completed. It reports false when the
// session was already completed.
func completeSession(ctx context.Context, db dbtx, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx,
		"UPDATE study_sessions SET completed = TRUE, completed_at = NOW() WHERE id = $1 AND completed = FALSE",
		id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
