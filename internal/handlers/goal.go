package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
)

type goalService interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreateGoalRequest) (*models.Goal, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error)
	Complete(ctx context.Context, userID, goalID uuid.UUID) (*models.Goal, error)
}

type GoalHandler struct {
	goals goalService
}

func NewGoalHandler(goals goalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	goals, err := h.goals.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := h.goals.Create(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	goalID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	goal, err := h.goals.Complete(r.Context(), userID, goalID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}
