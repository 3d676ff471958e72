package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
)

const recentActivityDays = 7

type activityService interface {
	Recent(ctx context.Context, userID uuid.UUID, days int) ([]*models.StudyActivity, error)
	Streak(ctx context.Context, userID uuid.UUID) (int, error)
}

type leaderboardService interface {
	Get(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type ActivityHandler struct {
	activity    activityService
	leaderboard leaderboardService
}

func NewActivityHandler(activity activityService, leaderboard leaderboardService) *ActivityHandler {
	return &ActivityHandler{activity: activity, leaderboard: leaderboard}
}

func (h *ActivityHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.writeRecent(w, r, middleware.GetUserID(r.Context()))
}

func (h *ActivityHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}
	h.writeRecent(w, r, userID)
}

func (h *ActivityHandler) writeRecent(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	activity, err := h.activity.Recent(r.Context(), userID, recentActivityDays)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) Streak(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	days, err := h.activity.Streak(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"streak": days})
}

func (h *ActivityHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Get(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
