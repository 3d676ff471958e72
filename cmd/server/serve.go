package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studytrack-backend/internal/achievements"
	"studytrack-backend/internal/config"
	"studytrack-backend/internal/database"
	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/router"
	"studytrack-backend/internal/services"
	"studytrack-backend/internal/websocket"
	"studytrack-backend/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket hub and question workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Load()
	logger := newLogger(cfg)
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Infrastructure ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("postgres connected")

	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClients.Close()
	logger.Info("redis connected")

	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	// ──── Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewStudySessionRepo(pool)
	resultRepo := repository.NewQuizResultRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)
	goalRepo := repository.NewGoalRepo(pool)
	achievementRepo := repository.NewAchievementRepo(pool)

	catalog := achievements.DefaultCatalog()
	seeded, err := achievements.Seed(ctx, achievementRepo, catalog)
	if err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	logger.Info("achievement catalog seeded", "count", seeded)

	// ──── Achievement engine ────
	stats := achievements.NewStatsBuilder(resultRepo, sessionRepo, activityRepo, time.Now, loc)
	engine := achievements.NewEngine(
		catalog,
		stats,
		achievementRepo,
		achievements.NewRedisLocker(redisClients.Queue, cfg.AchievementLockTTL),
		loc,
		logger.With("component", "achievements"),
	)

	// ──── Services ────
	generator, err := services.NewQuestionGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("question generator: %w", err)
	}
	if closer, ok := generator.(interface{ Close() }); ok {
		defer closer.Close()
	}
	logger.Info("question generator ready", "provider", generator.Name())

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	publisher := services.NewPublisher(redisClients.Queue, catalog)
	leaderboard := services.NewLeaderboardService(activityRepo, redisClients.Queue, cfg.LeaderboardCacheTTL, loc)
	quizService := services.NewQuizService(services.QuizServiceConfig{
		Sessions:    sessionRepo,
		Submissions: repository.NewSubmissionRepo(pool),
		Engine:      engine,
		Generator:   generator,
		Publisher:   publisher,
		Leaderboard: leaderboard,
		Location:    loc,
		Logger:      logger.With("component", "quiz"),
	})
	queue := worker.NewQueue(redisClients.Queue)

	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	userService := services.NewUserService(userRepo)
	sessionService := services.NewSessionService(sessionRepo, queue)
	goalService := services.NewGoalService(goalRepo)
	activityService := services.NewActivityService(activityRepo, time.Now, loc)

	// ──── Workers & WebSocket ────
	workerPool := worker.NewPool(redisClients.Queue, quizService, publisher, cfg.WorkerCount, logger.With("component", "worker"))
	workerPool.Start()
	logger.Info("worker pool started", "workers", cfg.WorkerCount)

	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, cfg.FrontendURL)

	// ──── HTTP ────
	ping := func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return redisClients.Ping(ctx)
	}
	r := router.New(
		jwtAuth,
		middleware.NewRedisCounter(redisClients.Queue),
		router.Handlers{
			Auth:        handlers.NewAuthHandler(authService),
			User:        handlers.NewUserHandler(userService),
			Session:     handlers.NewSessionHandler(sessionService),
			Quiz:        handlers.NewQuizHandler(quizService),
			Goal:        handlers.NewGoalHandler(goalService),
			Activity:    handlers.NewActivityHandler(activityService, leaderboard),
			Achievement: handlers.NewAchievementHandler(engine),
			Ping:        ping,
		},
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("studytrack backend ready", "addr", server.Addr, "api", "/api/v1", "ws", "/api/v1/ws")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			workerPool.Stop()
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	workerPool.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
