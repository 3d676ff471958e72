package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/websocket"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Session     *handlers.SessionHandler
	Quiz        *handlers.QuizHandler
	Goal        *handlers.GoalHandler
	Activity    *handlers.ActivityHandler
	Achievement *handlers.AchievementHandler
	Ping        func(ctx context.Context) error // backs /health when set
}

func New(
	jwtAuth *middleware.JWTAuth,
	authCounter middleware.WindowCounter,
	h Handlers,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(authCounter, "auth", 10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if h.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── User Routes ────
			r.Route("/user", func(r chi.Router) {
				r.Get("/me", h.User.GetMe)
				r.Put("/me", h.User.UpdateMe)
				r.Put("/password", h.User.ChangePassword)
			})
			r.Get("/users/{id}", h.User.GetByID)
			r.Get("/users/{id}/achievements", h.Achievement.ForUser)

			// ──── Study Session & Quiz Routes ────
			r.Get("/sessions", h.Session.List)
			r.Post("/sessions", h.Session.Create)
			r.Get("/quiz/{sessionId}", h.Quiz.GetQuestions)
			r.Post("/quiz/{sessionId}/submit", h.Quiz.Submit)

			// ──── Progress Routes ────
			r.Get("/activity/me", h.Activity.Mine)
			r.Get("/activity/{userId}", h.Activity.ForUser)
			r.Get("/streak", h.Activity.Streak)
			r.Get("/leaderboard", h.Activity.Leaderboard)
			r.Get("/achievements", h.Achievement.List)

			// ──── Goal Routes ────
			r.Route("/goals", func(r chi.Router) {
				r.Get("/", h.Goal.List)
				r.Post("/", h.Goal.Create)
				r.Patch("/{id}/complete", h.Goal.Complete)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
