package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

// upsertActivity adds minutes and points to the user's row for date,
// creating it on first use.
func upsertActivity(ctx context.Context, db dbtx, userID uuid.UUID, date time.Time, studyTime, score int) (*models.StudyActivity, error) {
	a := &models.StudyActivity{}
	query := `
		INSERT INTO study_activity (id, user_id, date, study_time, score)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE
		SET study_time = study_activity.study_time + EXCLUDED.study_time,
			score = study_activity.score + EXCLUDED.score
		RETURNING id, user_id, date, study_time, score`

	err := db.QueryRow(ctx, query, uuid.New(), userID, date.Format("2006-01-02"), studyTime, score).Scan(
		&a.ID, &a.UserID, &a.Date, &a.StudyTime, &a.Score,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListSince returns activity on or after since, oldest first.
func (r *ActivityRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudyActivity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, date, study_time, score FROM study_activity
		 WHERE user_id = $1 AND date >= $2::date ORDER BY date ASC`,
		userID, since.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.StudyActivity
	for rows.Next() {
		a := &models.StudyActivity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.StudyTime, &a.Score); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListDates returns every day the user has activity, newest first.
func (r *ActivityRepo) ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT date FROM study_activity WHERE user_id = $1 ORDER BY date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

type ScoreTotal struct {
	User       models.User
	TotalScore int
}

// TotalScoresSince sums activity points per user from since onward. Users
// without activity are included with zero.
func (r *ActivityRepo) TotalScoresSince(ctx context.Context, since time.Time) ([]ScoreTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.profile_image_url,
			COALESCE(SUM(a.score), 0)::int AS total_score
		FROM users u
		LEFT JOIN study_activity a ON a.user_id = u.id AND a.date >= $1::date
		GROUP BY u.id
		ORDER BY total_score DESC, u.username ASC`,
		since.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []ScoreTotal
	for rows.Next() {
		var t ScoreTotal
		if err := rows.Scan(&t.User.ID, &t.User.Username, &t.User.FirstName, &t.User.LastName, &t.User.ProfileImageURL, &t.TotalScore); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
