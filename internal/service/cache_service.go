package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/models"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
)

const resultsKeyPrefix = "asq3:results:"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches immutable screening results and records hit/miss metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// ResultsKey is the cache key of a screening's results view.
func ResultsKey(screeningID string) string {
	return resultsKeyPrefix + screeningID
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true on a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores value; a non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// CachedResults returns the cached results view of a screening. Cache errors
// are reported as misses.
func (s *CacheService) CachedResults(ctx context.Context, screeningID string) (*models.ScreeningResults, bool) {
	var results models.ScreeningResults
	hit, err := s.Get(ctx, ResultsKey(screeningID), &results)
	if err != nil || !hit {
		return nil, false
	}
	return &results, true
}

// StoreResults caches a completed screening's results view.
func (s *CacheService) StoreResults(ctx context.Context, results *models.ScreeningResults) {
	if results == nil {
		return
	}
	if err := s.Set(ctx, ResultsKey(results.ScreeningID), results, 0); err != nil {
		s.logger.Debug("results not cached", zap.String("screening_id", results.ScreeningID))
	}
}

// PurgeResults drops every cached results view.
func (s *CacheService) PurgeResults(ctx context.Context) error {
	if err := s.Invalidate(ctx, resultsKeyPrefix+"*"); err != nil {
		return fmt.Errorf("purge results cache: %w", err)
	}
	return nil
}
