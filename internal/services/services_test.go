package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"studytrack-backend/internal/achievements"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

type memSessionStore struct {
	created []*models.StudySession
}

func (m *memSessionStore) Create(_ context.Context, s *models.StudySession) error {
	s.ID = uuid.New()
	m.created = append(m.created, s)
	return nil
}

func (m *memSessionStore) ListByUser(context.Context, uuid.UUID) ([]*models.StudySession, error) {
	return nil, nil
}

type memQueue struct {
	jobs []*models.Job
	err  error
}

func (q *memQueue) Enqueue(_ context.Context, job *models.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func TestSessionService_Create(t *testing.T) {
	store := &memSessionStore{}
	queue := &memQueue{}
	svc := NewSessionService(store, queue)
	userID := uuid.New()

	s, err := svc.Create(context.Background(), userID, models.CreateSessionRequest{
		Topic: "  Mitosis ", Subject: "Biology", EstimatedTime: 30,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Topic != "Mitosis" || s.UserID != userID {
		t.Errorf("unexpected session %+v", s)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(queue.jobs))
	}
	if j := queue.jobs[0]; j.SessionID != s.ID || j.Type != models.JobTypeQuestionGeneration {
		t.Errorf("unexpected job %+v", j)
	}
}

func TestSessionService_CreateQueueFailureIsNotFatal(t *testing.T) {
	svc := NewSessionService(&memSessionStore{}, &memQueue{err: errors.New("redis down")})
	if _, err := svc.Create(context.Background(), uuid.New(), models.CreateSessionRequest{
		Topic: "Rome", Subject: "History", EstimatedTime: 20,
	}); err != nil {
		t.Fatalf("expected session to be created, got %v", err)
	}
}

func TestSessionService_CreateValidation(t *testing.T) {
	store := &memSessionStore{}
	svc := NewSessionService(store, nil)

	_, err := svc.Create(context.Background(), uuid.New(), models.CreateSessionRequest{Topic: "   ", Subject: "Math", EstimatedTime: 10})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("invalid sessions must not be stored")
	}
}

func TestSessionService_ListNeverNil(t *testing.T) {
	got, err := NewSessionService(&memSessionStore{}, nil).List(context.Background(), uuid.New())
	if err != nil || got == nil {
		t.Fatalf("expected empty slice, got %v, %v", got, err)
	}
}

type memGoals struct {
	goals     map[uuid.UUID]*models.Goal
	completes int
}

func (m *memGoals) Create(_ context.Context, g *models.Goal) error {
	g.ID = uuid.New()
	m.goals[g.ID] = g
	return nil
}

func (m *memGoals) GetByID(_ context.Context, id uuid.UUID) (*models.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (m *memGoals) ListByUser(context.Context, uuid.UUID) ([]*models.Goal, error) {
	return nil, nil
}

func (m *memGoals) Complete(_ context.Context, id uuid.UUID) (*models.Goal, error) {
	m.completes++
	g := m.goals[id]
	now := time.Now()
	g.Completed = true
	g.CompletedAt = &now
	cp := *g
	return &cp, nil
}

func TestGoalService(t *testing.T) {
	store := &memGoals{goals: map[uuid.UUID]*models.Goal{}}
	svc := NewGoalService(store)
	ctx := context.Background()
	owner := uuid.New()

	goal, err := svc.Create(ctx, owner, models.CreateGoalRequest{Title: "Finish chapter 3", Type: "weekly", TargetDate: "2026-03-15"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !goal.TargetDate.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected target date %v", goal.TargetDate)
	}

	var forbidden *ForbiddenError
	if _, err := svc.Complete(ctx, uuid.New(), goal.ID); !errors.As(err, &forbidden) {
		t.Errorf("expected ForbiddenError, got %v", err)
	}

	var notFound *NotFoundError
	if _, err := svc.Complete(ctx, owner, uuid.New()); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	done, err := svc.Complete(ctx, owner, goal.ID)
	if err != nil || !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected completed goal, got %+v, %v", done, err)
	}
	again, err := svc.Complete(ctx, owner, goal.ID)
	if err != nil || !again.CompletedAt.Equal(*done.CompletedAt) {
		t.Errorf("completing twice must keep the first timestamp")
	}
	if store.completes != 1 {
		t.Errorf("expected 1 store completion, got %d", store.completes)
	}
}

type memActivityReader struct {
	since time.Time
	dates []time.Time
}

func (m *memActivityReader) ListSince(_ context.Context, _ uuid.UUID, since time.Time) ([]*models.StudyActivity, error) {
	m.since = since
	return nil, nil
}

func (m *memActivityReader) ListDates(context.Context, uuid.UUID) ([]time.Time, error) {
	return m.dates, nil
}

func TestActivityService(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	reader := &memActivityReader{dates: []time.Time{day(9), day(8), day(7), day(5)}}
	now := func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	svc := NewActivityService(reader, now, time.UTC)

	got, err := svc.Recent(context.Background(), uuid.New(), 7)
	if err != nil || got == nil {
		t.Fatalf("Recent: %v, %v", got, err)
	}
	if !reader.since.Equal(day(3)) {
		t.Errorf("expected window to start on %v, got %v", day(3), reader.since)
	}

	streakDays, err := svc.Streak(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streakDays != 3 {
		t.Errorf("expected streak 3 ending yesterday, got %d", streakDays)
	}
}

type memScores struct {
	totals []repository.ScoreTotal
	dates  map[uuid.UUID][]time.Time
	since  time.Time
}

func (m *memScores) TotalScoresSince(_ context.Context, since time.Time) ([]repository.ScoreTotal, error) {
	m.since = since
	return m.totals, nil
}

func (m *memScores) ListDates(_ context.Context, userID uuid.UUID) ([]time.Time, error) {
	return m.dates[userID], nil
}

func TestLeaderboardService_Get(t *testing.T) {
	ada, bob, cy := uuid.New(), uuid.New(), uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	scores := &memScores{
		totals: []repository.ScoreTotal{
			{User: models.User{ID: ada, Username: "ada"}, TotalScore: 10},
			{User: models.User{ID: bob, Username: "bob"}, TotalScore: 25},
			{User: models.User{ID: cy, Username: "cy"}, TotalScore: 10},
		},
		dates: map[uuid.UUID][]time.Time{
			bob: {today, today.AddDate(0, 0, -1)},
			ada: {today.AddDate(0, 0, -3)},
		},
	}

	svc := NewLeaderboardService(scores, nil, time.Minute, time.UTC)
	svc.now = func() time.Time { return today.Add(15 * time.Hour) }

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].UserID != bob || got[0].Rank != 1 || got[0].Streak != 2 {
		t.Errorf("expected bob first with streak 2, got %+v", got[0])
	}
	if got[1].UserID != ada || got[2].UserID != cy {
		t.Errorf("ties must keep storage order, got %s then %s", got[1].Username, got[2].Username)
	}
	if got[1].Streak != 0 || got[2].Rank != 3 {
		t.Errorf("unexpected tail %+v %+v", got[1], got[2])
	}
	if !scores.since.Equal(today.AddDate(0, 0, -365)) {
		t.Errorf("expected 365 day window, got %v", scores.since)
	}
}

func TestAchievementMessages(t *testing.T) {
	catalog := achievements.DefaultCatalog()
	msgs := achievementMessages(catalog, []string{"first_steps", "no_such_badge"})
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Type != EventAchievementUnlocked {
		t.Errorf("unexpected type %q", msgs[0].Type)
	}
	ev, ok := msgs[0].Payload.(models.AchievementUnlockedEvent)
	if !ok || ev.ID != "first_steps" || ev.Name == "" {
		t.Errorf("unexpected payload %+v", msgs[0].Payload)
	}
}

type memUsers struct {
	user *models.User
	hash string
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, pgx.ErrNoRows
	}
	cp := *m.user
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	cp := *user
	m.user = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, _ uuid.UUID, hash string) error {
	m.hash = hash
	return nil
}

func TestUserService(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	user := &models.User{ID: uuid.New(), Username: "ada", FirstName: "Ada", LastName: "L", PasswordHash: string(hash)}
	store := &memUsers{user: user}
	svc := NewUserService(store)
	ctx := context.Background()

	var notFound *NotFoundError
	if _, err := svc.Get(ctx, uuid.New()); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	first := " Augusta "
	updated, err := svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Augusta" || updated.LastName != "L" {
		t.Errorf("unexpected profile %+v", updated)
	}

	var verr *ValidationError
	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"})
	if !errors.As(err, &verr) || verr.Fields["current_password"] == "" {
		t.Errorf("expected current_password error, got %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(store.hash), []byte("newsecret")) != nil {
		t.Error("stored hash does not match the new password")
	}
}

func TestRandomAvatar(t *testing.T) {
	for i := 0; i < 20; i++ {
		got := randomAvatar()
		found := false
		for _, a := range defaultAvatars {
			if a == got {
				found = true
			}
		}
		if !found {
			t.Fatalf("unexpected avatar %q", got)
		}
	}
}
