package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/models"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
	"github.com/noah-isme/asq3-api/pkg/jobs"
)

type referenceStore interface {
	LoadAll(ctx context.Context) (asq3.ReferenceData, error)
	CountIntervals(ctx context.Context) (int, error)
	Replace(ctx context.Context, data asq3.ReferenceData) error
}

type reloadBus interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}

// ReferenceOptions tunes ReferenceService.
type ReferenceOptions struct {
	AutoSeed      bool
	ReloadChannel string
	// Seed produces the bundled reference data used when the database is empty.
	Seed func() (asq3.ReferenceData, error)
	// ReloadRetries and ReloadRetryDelay govern rebuilds triggered by a broadcast.
	ReloadRetries    int
	ReloadRetryDelay time.Duration
}

// ReferenceService holds the process-wide reference catalog. Readers always see
// a complete catalog; Reload swaps in a freshly built one.
type ReferenceService struct {
	store      referenceStore
	bus        reloadBus
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	opts       ReferenceOptions
	instanceID string

	catalog atomic.Pointer[asq3.Catalog]
}

// NewReferenceService constructs the reference service. bus and cache may be nil.
func NewReferenceService(store referenceStore, bus reloadBus, cache *CacheService, metrics *MetricsService, opts ReferenceOptions, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		store:      store,
		bus:        bus,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
		instanceID: uuid.NewString(),
	}
}

// Catalog returns the loaded catalog or PreconditionFailed before the first load.
func (s *ReferenceService) Catalog() (*asq3.Catalog, error) {
	catalog := s.catalog.Load()
	if catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "reference data is not loaded")
	}
	return catalog, nil
}

// Use installs a prebuilt catalog.
func (s *ReferenceService) Use(catalog *asq3.Catalog) {
	s.catalog.Store(catalog)
}

// EnsureSeeded writes the bundled reference data when no age interval exists yet.
func (s *ReferenceService) EnsureSeeded(ctx context.Context) (bool, error) {
	count, err := s.store.CountIntervals(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if s.opts.Seed == nil {
		return false, errors.New("reference tables are empty and no seed source is configured")
	}
	data, err := s.opts.Seed()
	if err != nil {
		return false, fmt.Errorf("load seed data: %w", err)
	}
	if err := s.store.Replace(ctx, data); err != nil {
		return false, err
	}
	s.logger.Info("reference data seeded",
		zap.Int("intervals", len(data.Intervals)),
		zap.Int("questions", len(data.Questions)),
	)
	return true, nil
}

// Load seeds an empty database when configured and builds the first catalog.
func (s *ReferenceService) Load(ctx context.Context) error {
	if s.opts.AutoSeed {
		if _, err := s.EnsureSeeded(ctx); err != nil {
			return fmt.Errorf("seed reference data: %w", err)
		}
	}
	_, err := s.rebuild(ctx)
	return err
}

// Reload rebuilds the catalog from the store, drops cached results and asks
// other instances to reload. A failed rebuild keeps the previous catalog.
func (s *ReferenceService) Reload(ctx context.Context) (*models.ReferenceStats, error) {
	stats, err := s.rebuild(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload reference data")
	}
	if s.bus != nil && s.opts.ReloadChannel != "" {
		if err := s.bus.Publish(ctx, s.opts.ReloadChannel, s.instanceID); err != nil {
			s.logger.Warn("reference reload broadcast failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Watch reloads the catalog whenever another instance or the seeder announces
// new reference data. Bursts of announcements collapse into one rebuild and a
// failed rebuild is retried. It returns when ctx is cancelled.
func (s *ReferenceService) Watch(ctx context.Context) error {
	if s.bus == nil || s.opts.ReloadChannel == "" {
		return nil
	}
	messages, err := s.bus.Subscribe(ctx, s.opts.ReloadChannel)
	if err != nil {
		return err
	}

	queue := jobs.NewQueue("reference-reload", s.handleReloadTask, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: s.opts.ReloadRetries,
		RetryDelay: s.opts.ReloadRetryDelay,
		Logger:     s.logger,
	})
	queue.Start(ctx)
	defer queue.Stop()

	for msg := range messages {
		if msg == s.instanceID {
			continue
		}
		queued, err := queue.Submit(jobs.Task{Key: "catalog", Origin: msg})
		if err != nil {
			s.logger.Warn("reference reload not scheduled", zap.String("origin", msg), zap.Error(err))
			continue
		}
		if !queued {
			s.logger.Debug("reference reload already pending", zap.String("origin", msg))
		}
	}
	return nil
}

func (s *ReferenceService) handleReloadTask(ctx context.Context, task jobs.Task) error {
	if _, err := s.rebuild(ctx); err != nil {
		s.logger.Error("reference reload from broadcast failed", zap.String("origin", task.Origin), zap.Int("attempt", task.Attempt), zap.Error(err))
		return err
	}
	s.logger.Info("reference reloaded from broadcast", zap.String("origin", task.Origin))
	return nil
}

func (s *ReferenceService) rebuild(ctx context.Context) (*models.ReferenceStats, error) {
	start := time.Now()
	data, err := s.store.LoadAll(ctx)
	s.metrics.ObserveDBQuery("reference_load_all", time.Since(start))
	if err != nil {
		s.metrics.ReferenceReloaded("failure")
		return nil, err
	}
	catalog, err := asq3.NewCatalog(data)
	if err != nil {
		s.metrics.ReferenceReloaded("failure")
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	s.catalog.Store(catalog)
	s.metrics.ReferenceReloaded("success")

	if err := s.cache.PurgeResults(ctx); err != nil {
		s.logger.Warn("results cache not purged after reload", zap.Error(err))
	}

	stats := &models.ReferenceStats{Counts: catalog.Stats(), LoadedAt: catalog.BuiltAt()}
	s.logger.Info("reference catalog loaded",
		zap.Int("intervals", stats.Counts["intervals"]),
		zap.Int("questions", stats.Counts["questions"]),
		zap.Int("cutoffs", stats.Counts["cutoffs"]),
		zap.Int("recommendations", stats.Counts["recommendations"]),
	)
	return stats, nil
}

// Domains lists every domain in display order.
func (s *ReferenceService) Domains() ([]models.Domain, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Domains(), nil
}

// Intervals lists every age interval ordered by age.
func (s *ReferenceService) Intervals() ([]models.AgeInterval, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Intervals(), nil
}

// QuestionSheet returns an interval's questionnaire grouped by domain.
func (s *ReferenceService) QuestionSheet(intervalID string) (*models.QuestionSheet, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	interval, ok := catalog.Interval(intervalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "age interval not found")
	}
	return buildQuestionSheet(catalog, interval), nil
}

// Recommendations returns recommendation texts for an exact (domain, interval) pair.
func (s *ReferenceService) Recommendations(domainID, intervalID string) ([]string, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Domain(domainID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "domain not found")
	}
	if _, ok := catalog.Interval(intervalID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "age interval not found")
	}
	return catalog.RecommendationsFor(domainID, intervalID), nil
}

func buildQuestionSheet(catalog *asq3.Catalog, interval models.AgeInterval) *models.QuestionSheet {
	grouped := catalog.QuestionsFor(interval.ID)
	sheet := &models.QuestionSheet{AgeInterval: interval}
	for _, domain := range catalog.Domains() {
		questions := grouped[domain.Code]
		if len(questions) == 0 {
			continue
		}
		block := models.DomainQuestions{Domain: domain, Questions: questions}
		if cutoff, ok := catalog.Cutoff(interval.ID, domain.ID); ok {
			block.Cutoff = &cutoff
		}
		sheet.Domains = append(sheet.Domains, block)
		sheet.TotalQuestions += len(questions)
	}
	return sheet
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
