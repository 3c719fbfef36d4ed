package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/repository"
	"github.com/noah-isme/asq3-api/internal/seed"
	"github.com/noah-isme/asq3-api/pkg/cache"
	"github.com/noah-isme/asq3-api/pkg/config"
	"github.com/noah-isme/asq3-api/pkg/database"
	"github.com/noah-isme/asq3-api/pkg/logger"
)

// seed applies migrations, writes the bundled ASQ-3 reference tables and
// tells running API instances to reload them.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	data, err := seed.Load(cfg.Reference.QuestionsCSV)
	if err != nil {
		logr.Fatal("failed to read seed data", zap.Error(err))
	}
	if missing := seed.MissingQuestions(data); len(missing) > 0 {
		logr.Warn("age intervals without questions, set REFERENCE_QUESTIONS_CSV to a complete question bank",
			zap.Ints("age_months", missing))
	}
	if err := repository.NewReferenceRepository(db).Replace(ctx, data); err != nil {
		logr.Fatal("failed to write reference data", zap.Error(err))
	}
	logr.Info("reference data written",
		zap.Int("domains", len(data.Domains)),
		zap.Int("intervals", len(data.Intervals)),
		zap.Int("questions", len(data.Questions)),
		zap.Int("cutoffs", len(data.Cutoffs)),
		zap.Int("recommendations", len(data.Recommendations)),
	)

	if cfg.Reference.ReloadChannel == "" {
		return
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running instances were not notified", zap.Error(err))
		return
	}
	bus := repository.NewCacheRepository(client, logr)
	defer bus.Close() //nolint:errcheck
	if err := bus.Publish(ctx, cfg.Reference.ReloadChannel, "seed"); err != nil {
		logr.Warn("reload broadcast failed", zap.Error(err))
		return
	}
	logr.Info("reload broadcast sent", zap.String("channel", cfg.Reference.ReloadChannel))
}
