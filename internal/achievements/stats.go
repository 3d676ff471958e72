package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
	"studytrack-backend/internal/streak"
)

const (
	recentAccuracyWindow = 20
	activityWindowDays   = 365
)

// Stats is a point-in-time view of a user's history.
type Stats struct {
	TotalQuizzes       int
	TotalQuestions     int
	PerfectScores      int
	ConsecutivePerfect int
	// RecentAccuracy holds up to 20 percentages, newest first.
	RecentAccuracy []float64
	UniqueTopics   map[string]struct{}
	Streak         int
	TotalStudyTime int
	TodayQuizzes   int
}

// Attempt is the latest graded quiz as seen by the conditions that look at
// "this very attempt".
type Attempt struct {
	Score          int
	TotalQuestions int
	// Hour is the local hour the result was recorded.
	Hour int
}

func NewAttempt(r *models.QuizResult, loc *time.Location) Attempt {
	if r == nil {
		return Attempt{}
	}
	return Attempt{
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Hour:           r.CreatedAt.In(loc).Hour(),
	}
}

// Percentage is 0 for an attempt with no questions.
func (a Attempt) Percentage() float64 {
	return percentage(a.Score, a.TotalQuestions)
}

func percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

type QuizResultReader interface {
	// ListByUser returns results newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.QuizResult, error)
}

type SessionReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error)
}

type ActivityReader interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudyActivity, error)
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

// StatsBuilder assembles Stats from storage. It never caches.
type StatsBuilder struct {
	results  QuizResultReader
	sessions SessionReader
	activity ActivityReader
	now      func() time.Time
	loc      *time.Location
}

func NewStatsBuilder(results QuizResultReader, sessions SessionReader, activity ActivityReader, now func() time.Time, loc *time.Location) *StatsBuilder {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &StatsBuilder{
		results:  results,
		sessions: sessions,
		activity: activity,
		now:      now,
		loc:      loc,
	}
}

func (b *StatsBuilder) Build(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	results, err := b.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load quiz results: %w", err)
	}

	sessions, err := b.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load study sessions: %w", err)
	}

	today := b.now().In(b.loc)

	dates, err := b.activity.ListDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -activityWindowDays)
	activity, err := b.activity.ListSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	return summarize(results, sessions, activity, streak.Compute(dates, today), today), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// summarize expects results newest first and today in the calendar's location.
func summarize(results []*models.QuizResult, sessions []*models.StudySession, activity []*models.StudyActivity, streakDays int, today time.Time) *Stats {
	s := &Stats{
		TotalQuizzes:   len(results),
		UniqueTopics:   make(map[string]struct{}),
		Streak:         streakDays,
		RecentAccuracy: make([]float64, 0, recentAccuracyWindow),
	}

	runOpen := true
	for i, r := range results {
		s.TotalQuestions += r.TotalQuestions

		perfect := r.Score == r.TotalQuestions
		if perfect {
			s.PerfectScores++
		}
		if runOpen && perfect {
			s.ConsecutivePerfect++
		} else {
			runOpen = false
		}

		if i < recentAccuracyWindow {
			s.RecentAccuracy = append(s.RecentAccuracy, percentage(r.Score, r.TotalQuestions))
		}

		if sameDay(r.CreatedAt.In(today.Location()), today) {
			s.TodayQuizzes++
		}
	}

	for _, sess := range sessions {
		s.UniqueTopics[sess.Topic] = struct{}{}
	}

	for _, a := range activity {
		s.TotalStudyTime += a.StudyTime
	}

	return s
}
