package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"studytrack-backend/internal/achievements"
	"studytrack-backend/internal/middleware"
)

type achievementLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]achievements.Status, error)
}

type AchievementHandler struct {
	achievements achievementLister
}

func NewAchievementHandler(lister achievementLister) *AchievementHandler {
	return &AchievementHandler{achievements: lister}
}

// List returns the whole catalog with the caller's unlock state and progress.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeStatuses(w, r, middleware.GetUserID(r.Context()))
}

func (h *AchievementHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	h.writeStatuses(w, r, userID)
}

func (h *AchievementHandler) writeStatuses(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	statuses, err := h.achievements.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}
