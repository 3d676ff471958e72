package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
)

type quizService interface {
	GetQuestions(ctx context.Context, userID, sessionID uuid.UUID) ([]models.PublicQuestion, error)
	Submit(ctx context.Context, userID, sessionID uuid.UUID, req models.SubmitQuizRequest) (*models.QuizSubmission, error)
}

type QuizHandler struct {
	quiz quizService
}

func NewQuizHandler(quiz quizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

func (h *QuizHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, ok := uuidParam(w, r, "sessionId")
	if !ok {
		return
	}

	questions, err := h.quiz.GetQuestions(r.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, ok := uuidParam(w, r, "sessionId")
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Answers == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"answers": "Answers is required"}, r))
		return
	}

	submission, err := h.quiz.Submit(r.Context(), userID, sessionID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submission)
}
