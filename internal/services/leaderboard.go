package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/streak"
)

const (
	leaderboardCacheKey   = "leaderboard:365d"
	leaderboardWindowDays = 365
	streakLookups         = 8
)

type ScoreReader interface {
	TotalScoresSince(ctx context.Context, since time.Time) ([]repository.ScoreTotal, error)
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

// LeaderboardService ranks users by points earned over the last year.
// Results are cached in Redis and dropped whenever a quiz is submitted.
type LeaderboardService struct {
	scores ScoreReader
	redis  *redis.Client
	ttl    time.Duration
	now    func() time.Time
	loc    *time.Location
}

func NewLeaderboardService(scores ScoreReader, redisClient *redis.Client, ttl time.Duration, loc *time.Location) *LeaderboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaderboardService{
		scores: scores,
		redis:  redisClient,
		ttl:    ttl,
		now:    time.Now,
		loc:    loc,
	}
}

func (s *LeaderboardService) Get(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, leaderboardCacheKey).Bytes(); err == nil {
			var entries []models.LeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil && s.ttl > 0 {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.redis.Set(ctx, leaderboardCacheKey, data, s.ttl).Err(); err != nil {
				slog.Warn("failed to cache leaderboard", "error", err)
			}
		}
	}
	return entries, nil
}

func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		slog.Warn("failed to invalidate leaderboard cache", "error", err)
	}
}

func (s *LeaderboardService) compute(ctx context.Context) ([]models.LeaderboardEntry, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	totals, err := s.scores.TotalScoresSince(ctx, today.AddDate(0, 0, -leaderboardWindowDays))
	if err != nil {
		return nil, err
	}

	streaks := make([]int, len(totals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(streakLookups)
	for i := range totals {
		g.Go(func() error {
			dates, err := s.scores.ListDates(gctx, totals[i].User.ID)
			if err != nil {
				return err
			}
			streaks[i] = streak.Compute(dates, today)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rankEntries(totals, streaks), nil
}

// rankEntries sorts by total score, highest first. Ties keep input order and
// share no rank; positions are 1-based.
func rankEntries(totals []repository.ScoreTotal, streaks []int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, len(totals))
	for i, t := range totals {
		entries[i] = models.LeaderboardEntry{
			UserID:          t.User.ID,
			Username:        t.User.Username,
			FirstName:       t.User.FirstName,
			LastName:        t.User.LastName,
			ProfileImageURL: t.User.ProfileImageURL,
			TotalScore:      t.TotalScore,
			Streak:          streaks[i],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].TotalScore > entries[j].TotalScore })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
