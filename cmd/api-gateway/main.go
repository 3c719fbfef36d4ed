package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/asq3-api/api/swagger"
	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/handler"
	"github.com/noah-isme/asq3-api/internal/middleware"
	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/repository"
	"github.com/noah-isme/asq3-api/internal/seed"
	"github.com/noah-isme/asq3-api/internal/service"
	"github.com/noah-isme/asq3-api/pkg/cache"
	"github.com/noah-isme/asq3-api/pkg/config"
	"github.com/noah-isme/asq3-api/pkg/database"
	"github.com/noah-isme/asq3-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/asq3-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/asq3-api/pkg/middleware/requestid"
	"github.com/noah-isme/asq3-api/pkg/tracing"
)

// @title ASQ-3 Screening API
// @version 1.0.0
// @description Developmental screening engine: questionnaires, scoring, classification and follow-up
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		logr.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, results cache and reload broadcast disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.CacheTTL, logr, cfg.Results.CacheEnabled)
	validate := validator.New()

	referenceSvc := service.NewReferenceService(
		repository.NewReferenceRepository(db),
		cacheRepo,
		cacheSvc,
		metricsSvc,
		service.ReferenceOptions{
			AutoSeed:         cfg.Reference.AutoSeed,
			ReloadChannel:    cfg.Reference.ReloadChannel,
			Seed:             func() (asq3.ReferenceData, error) { return seed.Load(cfg.Reference.QuestionsCSV) },
			ReloadRetries:    cfg.Reference.ReloadRetries,
			ReloadRetryDelay: cfg.Reference.ReloadRetryDelay,
		},
		logr,
	)
	if err := referenceSvc.Load(ctx); err != nil {
		logr.Fatal("failed to load reference data", zap.Error(err))
	}
	go func() {
		if err := referenceSvc.Watch(ctx); err != nil {
			logr.Error("reference watch stopped", zap.Error(err))
		}
	}()

	var children service.ChildProvider = repository.NewChildRepository(db)
	if cfg.Children.Provider == config.ChildProviderHTTP {
		children = service.NewChildClient(cfg.Children.ServiceURL, cfg.Children.Token, cfg.Children.Timeout, cfg.Children.Retries, logr)
	}

	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	screeningSvc := service.NewScreeningService(
		repository.NewScreeningRepository(db),
		children,
		referenceSvc,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.ScreeningOptions{MaxRetries: cfg.Screening.MaxRetries},
	)
	interventionSvc := service.NewInterventionService(repository.NewInterventionRepository(db), screeningSvc, referenceSvc, validate, logr, nil)
	exportSvc := service.NewExportService(screeningSvc, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health"))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, referenceSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		auth:          authSvc,
		reference:     handler.NewReferenceHandler(referenceSvc),
		screenings:    handler.NewScreeningHandler(screeningSvc),
		interventions: handler.NewInterventionHandler(interventionSvc),
		exports:       handler.NewExportHandler(exportSvc),
		metrics:       metricsHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type routeDeps struct {
	auth          middleware.TokenValidator
	reference     *handler.ReferenceHandler
	screenings    *handler.ScreeningHandler
	interventions *handler.InterventionHandler
	exports       *handler.ExportHandler
	metrics       *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleNakes, models.RoleParent)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleNakes)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api.Use(middleware.JWT(deps.auth), middleware.WithResponseMeta())

	api.GET("/metrics/summary", admin, deps.metrics.Summary)

	ref := api.Group("/asq3", anyRole)
	ref.GET("/domains", deps.reference.Domains)
	ref.GET("/age-intervals", deps.reference.Intervals)
	ref.GET("/age-intervals/:id/questions", deps.reference.Questions)
	ref.GET("/recommendations", deps.reference.Recommendations)
	api.POST("/asq3/reference/reload", admin, deps.reference.Reload)

	api.POST("/children/:childId/screenings", anyRole, deps.screenings.Start)
	api.GET("/children/:childId/screenings", anyRole, deps.screenings.ListByChild)

	s := api.Group("/screenings/:id", anyRole)
	s.GET("", deps.screenings.Get)
	s.PATCH("", deps.screenings.UpdateNotes)
	s.POST("/answers", deps.screenings.SubmitAnswers)
	s.POST("/complete", deps.screenings.Complete)
	s.POST("/cancel", deps.screenings.Cancel)
	s.GET("/progress", deps.screenings.Progress)
	s.GET("/results", deps.screenings.Results)
	s.GET("/recommendations", deps.screenings.Recommendations)
	s.GET("/export", deps.exports.ScreeningResults)

	s.GET("/interventions", deps.interventions.List)
	s.POST("/interventions", staff, deps.interventions.Create)
	s.PATCH("/interventions/:interventionId", staff, deps.interventions.Update)
	s.DELETE("/interventions/:interventionId", staff, deps.interventions.Delete)
	s.POST("/interventions/:interventionId/complete", staff, deps.interventions.Complete)
}
