package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/models"
)

type GoalStore interface {
	Create(ctx context.Context, g *models.Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Goal, error)
}

type GoalService struct {
	goals GoalStore
}

func NewGoalService(goals GoalStore) *GoalService {
	return &GoalService{goals: goals}
}

func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, req models.CreateGoalRequest) (*models.Goal, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	target, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"target_date": "Target date must be a date in YYYY-MM-DD format"}}
	}

	goal := &models.Goal{
		UserID:     userID,
		Title:      req.Title,
		Type:       req.Type,
		TargetDate: target,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []*models.Goal{}
	}
	return goals, nil
}

func (s *GoalService) Complete(ctx context.Context, userID, goalID uuid.UUID) (*models.Goal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Goal not found"}
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this goal"}
	}
	if goal.Completed {
		return goal, nil
	}
	return s.goals.Complete(ctx, goalID)
}
