package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
)

type SessionStore interface {
	Create(ctx context.Context, s *models.StudySession) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error)
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *models.Job) error
}

type SessionService struct {
	sessions SessionStore
	queue    JobEnqueuer
}

func NewSessionService(sessions SessionStore, queue JobEnqueuer) *SessionService {
	return &SessionService{sessions: sessions, queue: queue}
}

// Create stores the session and queues its quiz for background generation.
// A queue failure only delays generation until the quiz is first opened.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, req models.CreateSessionRequest) (*models.StudySession, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	session := &models.StudySession{
		UserID:        userID,
		Topic:         req.Topic,
		Subject:       req.Subject,
		EstimatedTime: req.EstimatedTime,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.queue != nil {
		job := &models.Job{
			ID:         uuid.New(),
			Type:       models.JobTypeQuestionGeneration,
			UserID:     userID,
			SessionID:  session.ID,
			EnqueuedAt: time.Now(),
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			slog.Warn("failed to enqueue question generation", "session_id", session.ID, "error", err)
		}
	}

	return session, nil
}

func (s *SessionService) List(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*models.StudySession{}
	}
	return sessions, nil
}
