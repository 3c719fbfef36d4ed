package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/asq3-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP, cache and screening workflow metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	screeningsStarted   prometheus.Counter
	screeningsCompleted *prometheus.CounterVec
	screeningsCancelled prometheus.Counter
	domainResults       *prometheus.CounterVec
	referenceReloads    *prometheus.CounterVec
	versionConflicts    prometheus.Counter

	startedCount         uint64
	completedCount       uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	screeningsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "asq3_screenings_started_total",
		Help: "Screenings started",
	})

	screeningsCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asq3_screenings_completed_total",
		Help: "Screenings completed by overall status",
	}, []string{"overall_status"})

	screeningsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "asq3_screenings_cancelled_total",
		Help: "Screenings cancelled",
	})

	domainResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asq3_domain_results_total",
		Help: "Domain classifications written on completion",
	}, []string{"domain", "status"})

	referenceReloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asq3_reference_reloads_total",
		Help: "Reference catalog reload attempts",
	}, []string{"outcome"})

	versionConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "asq3_screening_version_conflicts_total",
		Help: "Optimistic version conflicts on screening mutations",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration, goroutines,
		screeningsStarted, screeningsCompleted, screeningsCancelled, domainResults, referenceReloads, versionConflicts,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,

		screeningsStarted:   screeningsStarted,
		screeningsCompleted: screeningsCompleted,
		screeningsCancelled: screeningsCancelled,
		domainResults:       domainResults,
		referenceReloads:    referenceReloads,
		versionConflicts:    versionConflicts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ScreeningStarted counts a newly created screening.
func (m *MetricsService) ScreeningStarted() {
	if m == nil {
		return
	}
	m.screeningsStarted.Inc()
	atomic.AddUint64(&m.startedCount, 1)
}

// ScreeningCompleted counts a completion and each domain classification it produced.
func (m *MetricsService) ScreeningCompleted(overall models.DomainStatus, domains map[models.DomainCode]models.DomainStatus) {
	if m == nil {
		return
	}
	m.screeningsCompleted.WithLabelValues(string(overall)).Inc()
	for code, status := range domains {
		m.domainResults.WithLabelValues(string(code), string(status)).Inc()
	}
	atomic.AddUint64(&m.completedCount, 1)
}

// ScreeningCancelled counts a cancellation.
func (m *MetricsService) ScreeningCancelled() {
	if m == nil {
		return
	}
	m.screeningsCancelled.Inc()
}

// VersionConflict counts an optimistic concurrency retry.
func (m *MetricsService) VersionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}

// ReferenceReloaded records a catalog reload outcome ("success" or "failure").
func (m *MetricsService) ReferenceReloaded(outcome string) {
	if m == nil {
		return
	}
	m.referenceReloads.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated metrics for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		ScreeningsStarted:        atomic.LoadUint64(&m.startedCount),
		ScreeningsCompleted:      atomic.LoadUint64(&m.completedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
