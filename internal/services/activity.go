package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
	"studytrack-backend/internal/streak"
)

type ActivityReader interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudyActivity, error)
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

type ActivityService struct {
	activity ActivityReader
	now      func() time.Time
	loc      *time.Location
}

func NewActivityService(activity ActivityReader, now func() time.Time, loc *time.Location) *ActivityService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{activity: activity, now: now, loc: loc}
}

// today is the current calendar date expressed as UTC midnight, the same
// form the date column scans into.
func (s *ActivityService) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Recent returns the user's activity over the last days calendar days,
// oldest first.
func (s *ActivityService) Recent(ctx context.Context, userID uuid.UUID, days int) ([]*models.StudyActivity, error) {
	since := s.today().AddDate(0, 0, -days)
	activity, err := s.activity.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		activity = []*models.StudyActivity{}
	}
	return activity, nil
}

func (s *ActivityService) Streak(ctx context.Context, userID uuid.UUID) (int, error) {
	dates, err := s.activity.ListDates(ctx, userID)
	if err != nil {
		return 0, err
	}
	return streak.Compute(dates, s.today()), nil
}
