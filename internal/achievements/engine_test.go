package achievements

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// memAwards records every insert so tests can see duplicates.
type memAwards struct {
	mu       sync.Mutex
	rows     []models.UserAchievement
	hasErr   map[string]error
	awardErr map[string]error
}

func newMemAwards() *memAwards {
	return &memAwards{hasErr: map[string]error{}, awardErr: map[string]error{}}
}

func (m *memAwards) HasAchievement(ctx context.Context, userID uuid.UUID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hasErr[id]; err != nil {
		return false, err
	}
	for _, r := range m.rows {
		if r.UserID == userID && r.AchievementID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAwards) Award(ctx context.Context, userID uuid.UUID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.awardErr[id]; err != nil {
		return false, err
	}
	m.rows = append(m.rows, models.UserAchievement{UserID: userID, AchievementID: id, UnlockedAt: noon})
	return true, nil
}

func (m *memAwards) ListUserAwards(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.UserAchievement
	for i := range m.rows {
		if m.rows[i].UserID == userID {
			r := m.rows[i]
			out = append(out, &r)
		}
	}
	return out, nil
}

func (m *memAwards) count(userID uuid.UUID, id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID && r.AchievementID == id {
			n++
		}
	}
	return n
}

// history is an in-memory user record the engine reads through StatsBuilder.
type history struct {
	results  stubResults
	sessions stubSessions
	activity stubActivity
	now      time.Time
}

func (h *history) submit(score, total int, topic string, minutes int) *models.QuizResult {
	r := &models.QuizResult{ID: uuid.New(), Score: score, TotalQuestions: total, CreatedAt: h.now}
	h.results.results = append([]*models.QuizResult{r}, h.results.results...)
	h.sessions.sessions = append(h.sessions.sessions, &models.StudySession{Topic: topic})
	h.addActivity(h.now, minutes)
	return r
}

func (h *history) addActivity(day time.Time, minutes int) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for _, a := range h.activity.activity {
		if a.Date.Equal(d) {
			a.StudyTime += minutes
			return
		}
	}
	h.activity.activity = append(h.activity.activity, &models.StudyActivity{Date: d, StudyTime: minutes})
	h.activity.dates = append(h.activity.dates, d)
}

func newTestEngine(h *history, awards AwardStore, catalog *Catalog) *Engine {
	builder := NewStatsBuilder(&h.results, &h.sessions, &h.activity, func() time.Time { return h.now }, time.UTC)
	return NewEngine(catalog, builder, awards, NewKeyedMutex(), time.UTC, discard)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestEngine_FirstPerfectQuiz(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	e := newTestEngine(h, awards, DefaultCatalog())
	userID := uuid.New()

	latest := h.submit(5, 5, "go", 10)
	got, err := e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"first_steps", "perfect_score"} {
		if !contains(got, id) {
			t.Errorf("expected %s in %v", id, got)
		}
	}
	if contains(got, "perfectionist") {
		t.Errorf("perfectionist should need 5 perfect scores, got %v", got)
	}

	latest = h.submit(5, 5, "go", 10)
	got, err = e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"first_steps", "perfect_score"} {
		if contains(got, id) {
			t.Errorf("%s listed again on second quiz: %v", id, got)
		}
	}

	for i := 0; i < 3; i++ {
		latest = h.submit(5, 5, "go", 1)
		got, _ = e.EvaluateAndAward(context.Background(), userID, latest)
	}
	if !contains(got, "perfectionist") {
		t.Errorf("expected perfectionist on the 5th perfect score, got %v", got)
	}
	if awards.count(userID, "perfectionist") != 1 {
		t.Errorf("expected a single perfectionist award")
	}
}

func TestEngine_Idempotent(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	e := newTestEngine(h, awards, DefaultCatalog())
	userID := uuid.New()
	latest := h.submit(4, 5, "go", 40)

	first, err := e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected some badges on the first pass")
	}

	second, err := e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected nothing new on the second pass, got %v", second)
	}

	for _, id := range first {
		if n := awards.count(userID, id); n != 1 {
			t.Errorf("%s stored %d times", id, n)
		}
	}
}

func TestEngine_ResultsFollowCatalogOrder(t *testing.T) {
	h := &history{now: noon}
	catalog := NewCatalog([]Definition{
		{ID: "c", Condition: QuizzesCompleted{Value: 1}},
		{ID: "a", Condition: PerfectScore{Value: 1}},
		{ID: "b", Condition: QuizzesCompleted{Value: 2}},
		{ID: "d", Condition: QuestionsAnswered{Value: 1}},
	})
	e := newTestEngine(h, newMemAwards(), catalog)

	got, _ := e.EvaluateAndAward(context.Background(), uuid.New(), h.submit(3, 3, "x", 5))
	want := []string{"c", "a", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEngine_NeverRevokes(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	e := newTestEngine(h, awards, DefaultCatalog())
	userID := uuid.New()

	latest := h.submit(5, 5, "go", 10)
	if _, err := e.EvaluateAndAward(context.Background(), userID, latest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// history no longer supports the badge
	h.results.results = nil
	h.sessions.sessions = nil

	got, err := e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contains(got, "first_steps") {
		t.Errorf("first_steps should not be re-listed")
	}
	if awards.count(userID, "first_steps") != 1 {
		t.Errorf("first_steps award should persist")
	}

	statuses, err := e.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, st := range statuses {
		if st.ID == "first_steps" && !st.Unlocked {
			t.Errorf("first_steps should still be unlocked")
		}
	}
}

func TestEngine_WeekWarriorOnSeventhDay(t *testing.T) {
	h := &history{now: noon}
	e := newTestEngine(h, newMemAwards(), DefaultCatalog())
	userID := uuid.New()

	for i := 6; i >= 1; i-- {
		h.addActivity(noon.AddDate(0, 0, -i), 5)
	}

	// evaluating before today's activity exists sees a six day streak
	early := &models.QuizResult{Score: 1, TotalQuestions: 2, CreatedAt: noon}
	got, err := e.EvaluateAndAward(context.Background(), userID, early)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contains(got, "week_warrior") {
		t.Fatalf("week_warrior fired with only six days: %v", got)
	}

	latest := h.submit(1, 2, "go", 5)
	got, err = e.EvaluateAndAward(context.Background(), userID, latest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(got, "week_warrior") {
		t.Errorf("expected week_warrior on the seventh day, got %v", got)
	}
}

func TestEngine_IsolatesPerBadgeFailures(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	awards.awardErr["first_steps"] = errors.New("insert failed")
	awards.hasErr["perfect_score"] = errors.New("lookup failed")
	e := newTestEngine(h, awards, DefaultCatalog())
	userID := uuid.New()

	got, err := e.EvaluateAndAward(context.Background(), userID, h.submit(5, 5, "go", 10))
	if err != nil {
		t.Fatalf("per-badge failures should not fail the pass: %v", err)
	}
	if contains(got, "first_steps") || contains(got, "perfect_score") {
		t.Errorf("failed badges should not be reported: %v", got)
	}
	if !contains(got, "early_adopter") {
		t.Errorf("later badges should still be evaluated, got %v", got)
	}
}

type failingSnapshots struct{ err error }

func (f failingSnapshots) Build(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	return nil, f.err
}

func TestEngine_SnapshotFailureAbortsPass(t *testing.T) {
	boom := errors.New("db down")
	awards := newMemAwards()
	e := NewEngine(DefaultCatalog(), failingSnapshots{err: boom}, awards, nil, nil, discard)

	got, err := e.EvaluateAndAward(context.Background(), uuid.New(), &models.QuizResult{Score: 5, TotalQuestions: 5})
	if !errors.Is(err, boom) {
		t.Fatalf("expected snapshot error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no ids, got %v", got)
	}
	if len(awards.rows) != 0 {
		t.Errorf("expected no awards, got %d", len(awards.rows))
	}
}

type leakyLocker struct{ err error }

func (l leakyLocker) Lock(ctx context.Context, key string) (func() error, error) {
	return func() error { return l.err }, nil
}

func TestEngine_ReleaseFailureIsLogged(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	builder := NewStatsBuilder(&h.results, &h.sessions, &h.activity, func() time.Time { return h.now }, time.UTC)
	e := NewEngine(DefaultCatalog(), builder, awards, leakyLocker{err: errLockLost}, time.UTC, logger)

	latest := h.submit(5, 5, "go", 10)
	got, err := e.EvaluateAndAward(context.Background(), uuid.New(), latest)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !contains(got, "first_steps") {
		t.Errorf("expected first_steps despite release failure, got %v", got)
	}
	if !strings.Contains(buf.String(), "achievement lock release failed") {
		t.Errorf("expected release failure in log, got %q", buf.String())
	}
}

func TestEngine_ConcurrentPassesAwardOnce(t *testing.T) {
	h := &history{now: noon}
	awards := newMemAwards()
	e := newTestEngine(h, awards, DefaultCatalog())
	userID := uuid.New()
	latest := h.submit(5, 5, "go", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	listed := map[string]int{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.EvaluateAndAward(context.Background(), userID, latest)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			for _, id := range got {
				listed[id]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for id, n := range listed {
		if n != 1 {
			t.Errorf("%s listed %d times", id, n)
		}
		if c := awards.count(userID, id); c != 1 {
			t.Errorf("%s stored %d times", id, c)
		}
	}
}

func TestEngine_ListForUser(t *testing.T) {
	h := &history{now: noon}
	e := newTestEngine(h, newMemAwards(), DefaultCatalog())
	userID := uuid.New()

	latest := h.submit(5, 5, "go", 10)
	if _, err := e.EvaluateAndAward(context.Background(), userID, latest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses, err := e.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != DefaultCatalog().Len() {
		t.Fatalf("expected %d entries, got %d", DefaultCatalog().Len(), len(statuses))
	}

	byID := map[string]Status{}
	for _, st := range statuses {
		byID[st.ID] = st
	}

	if st := byID["first_steps"]; !st.Unlocked || st.UnlockedAt == nil || st.Progress != nil {
		t.Errorf("unexpected first_steps status %+v", st)
	}
	if st := byID["getting_started"]; st.Unlocked || st.Progress == nil || *st.Progress != 1 || *st.Total != 10 {
		t.Errorf("unexpected getting_started status %+v", st)
	}
	if st := byID["sharp_mind"]; st.Progress != nil || st.Total != nil {
		t.Errorf("sharp_mind should carry no progress: %+v", st)
	}
}
