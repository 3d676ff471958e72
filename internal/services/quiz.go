package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/models"
)

type QuizSessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
	CacheQuestions(ctx context.Context, id uuid.UUID, questions json.RawMessage) (json.RawMessage, error)
}

// SubmissionRecorder completes the session, stores the result and adds the
// day's activity atomically. It reports false, writing nothing, when the
// session was already completed.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, result *models.QuizResult, date time.Time, studyTime int) (bool, error)
}

type AchievementEvaluator interface {
	EvaluateAndAward(ctx context.Context, userID uuid.UUID, latest *models.QuizResult) ([]string, error)
}

type AchievementPublisher interface {
	PublishAchievements(ctx context.Context, userID uuid.UUID, ids []string)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type QuizService struct {
	sessions    QuizSessionStore
	submissions SubmissionRecorder
	engine      AchievementEvaluator
	generator   QuestionGenerator
	publisher   AchievementPublisher
	leaderboard CacheInvalidator
	now         func() time.Time
	loc         *time.Location
	logger      *slog.Logger
}

type QuizServiceConfig struct {
	Sessions    QuizSessionStore
	Submissions SubmissionRecorder
	Engine      AchievementEvaluator
	Generator   QuestionGenerator
	Publisher   AchievementPublisher
	Leaderboard CacheInvalidator
	Now         func() time.Time
	Location    *time.Location
	Logger      *slog.Logger
}

func NewQuizService(cfg QuizServiceConfig) *QuizService {
	s := &QuizService{
		sessions:    cfg.Sessions,
		submissions: cfg.Submissions,
		engine:      cfg.Engine,
		generator:   cfg.Generator,
		publisher:   cfg.Publisher,
		leaderboard: cfg.Leaderboard,
		now:         cfg.Now,
		loc:         cfg.Location,
		logger:      cfg.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.generator == nil {
		s.generator = FallbackGenerator{}
	}
	return s
}

func (s *QuizService) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.StudySession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this session"}
	}
	return session, nil
}

// GetQuestions returns the session's quiz without answers. Questions are
// generated on first request and reused for every later view and for grading.
func (s *QuizService) GetQuestions(ctx context.Context, userID, sessionID uuid.UUID) ([]models.PublicQuestion, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	questions, err := s.ensureQuestions(ctx, session)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = models.PublicQuestion{Index: i, Question: q.Question, Options: q.Options}
	}
	return public, nil
}

// Prepare generates and caches questions for a session ahead of the first
// view. It is a no-op when they already exist.
func (s *QuizService) Prepare(ctx context.Context, sessionID uuid.UUID) (int, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	questions, err := s.ensureQuestions(ctx, session)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (s *QuizService) ensureQuestions(ctx context.Context, session *models.StudySession) ([]models.QuizQuestion, error) {
	if len(session.QuestionsJSON) > 0 {
		return decodeQuestions(session.QuestionsJSON)
	}

	generated, err := s.generator.Generate(ctx, session.Topic, session.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}
	if len(generated) == 0 {
		s.logger.Warn("generator returned no usable questions",
			"provider", s.generator.Name(), "session_id", session.ID)
		generated = fallbackQuestions(session.Topic)
	}

	raw, err := json.Marshal(generated)
	if err != nil {
		return nil, err
	}

	// Another request may have cached first; grade against whatever is stored.
	stored, err := s.sessions.CacheQuestions(ctx, session.ID, raw)
	if err != nil {
		return nil, err
	}
	session.QuestionsJSON = stored
	return decodeQuestions(stored)
}

func decodeQuestions(raw json.RawMessage) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("stored questions are corrupt: %w", err)
	}
	return questions, nil
}

// Grade counts answers that match the correct option. Unanswered questions
// and out-of-range indices score nothing.
func Grade(questions []models.QuizQuestion, answers map[int]int) int {
	score := 0
	for i, q := range questions {
		if choice, ok := answers[i]; ok && choice == q.CorrectIndex {
			score++
		}
	}
	return score
}

func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Submit grades the answers against the cached questions, records the
// attempt and the day's activity in one write, then runs achievement
// evaluation. Evaluation failures never fail the request.
func (s *QuizService) Submit(ctx context.Context, userID, sessionID uuid.UUID, req models.SubmitQuizRequest) (*models.QuizSubmission, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, &ConflictError{Message: "This quiz has already been submitted"}
	}
	if len(session.QuestionsJSON) == 0 {
		return nil, &ConflictError{Message: "Open the quiz before submitting answers"}
	}

	questions, err := decodeQuestions(session.QuestionsJSON)
	if err != nil {
		return nil, err
	}
	if req.Answers == nil {
		req.Answers = map[int]int{}
	}

	score := Grade(questions, req.Answers)
	total := len(questions)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}
	result := &models.QuizResult{
		UserID:         userID,
		SessionID:      session.ID,
		Score:          score,
		TotalQuestions: total,
		QuestionsJSON:  session.QuestionsJSON,
		AnswersJSON:    answersJSON,
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Nothing is kept when this fails, so the user can submit again.
	claimed, err := s.submissions.RecordSubmission(ctx, result, today, session.EstimatedTime)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, &ConflictError{Message: "This quiz has already been submitted"}
	}

	unlocked := s.evaluate(ctx, userID, result)

	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	return &models.QuizSubmission{
		Score:           score,
		TotalQuestions:  total,
		Percentage:      Percentage(score, total),
		NewAchievements: unlocked,
	}, nil
}

func (s *QuizService) evaluate(ctx context.Context, userID uuid.UUID, result *models.QuizResult) []string {
	if s.engine == nil {
		return []string{}
	}

	unlocked, err := s.engine.EvaluateAndAward(ctx, userID, result)
	if err != nil {
		s.logger.Warn("achievement evaluation failed",
			"user_id", userID, "session_id", result.SessionID, "error", err)
		return []string{}
	}

	if len(unlocked) > 0 && s.publisher != nil {
		s.publisher.PublishAchievements(ctx, userID, unlocked)
	}
	return unlocked
}
