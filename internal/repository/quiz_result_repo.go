package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type QuizResultRepo struct {
	pool *pgxpool.Pool
}

func NewQuizResultRepo(pool *pgxpool.Pool) *QuizResultRepo {
	return &QuizResultRepo{pool: pool}
}

const resultColumns = `id, user_id, session_id, score, total_questions, questions, user_answers, created_at`

func scanResult(row rowScanner) (*models.QuizResult, error) {
	q := &models.QuizResult{}
	err := row.Scan(&q.ID, &q.UserID, &q.SessionID, &q.Score, &q.TotalQuestions, &q.QuestionsJSON, &q.AnswersJSON, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func insertResult(ctx context.Context, db dbtx, q *models.QuizResult) error {
	q.ID = uuid.New()
	if q.QuestionsJSON == nil {
		q.QuestionsJSON = []byte("[]")
	}
	if q.AnswersJSON == nil {
		q.AnswersJSON = []byte("{}")
	}

	query := `INSERT INTO quiz_results (id, user_id, session_id, score, total_questions, questions, user_answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	return db.QueryRow(ctx, query,
		q.ID, q.UserID, q.SessionID, q.Score, q.TotalQuestions, q.QuestionsJSON, q.AnswersJSON,
	).Scan(&q.CreatedAt)
}

// ListByUser returns results newest first.
func (r *QuizResultRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM quiz_results WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.QuizResult
	for rows.Next() {
		q, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, q)
	}
	return results, rows.Err()
}
