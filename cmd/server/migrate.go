package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studytrack-backend/internal/achievements"
	"studytrack-backend/internal/config"
	"studytrack-backend/internal/database"
	"studytrack-backend/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := newLogger(cfg)
		ctx := cmd.Context()

		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed-achievements",
	Short: "Upsert the achievement catalog into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := newLogger(cfg)
		ctx := cmd.Context()

		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		repo := repository.NewAchievementRepo(pool)
		catalog := achievements.DefaultCatalog()

		n, err := achievements.Seed(ctx, repo, catalog)
		if err != nil {
			return fmt.Errorf("seed achievements: %w", err)
		}
		logger.Info("achievement catalog seeded", "count", n)

		orphans, err := achievements.Orphaned(ctx, repo, catalog)
		if err != nil {
			return err
		}
		if len(orphans) > 0 {
			logger.Warn("stored achievements missing from catalog", "ids", orphans)
		}
		return nil
	},
}
