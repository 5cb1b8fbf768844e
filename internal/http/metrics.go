package http

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"digibouquet/internal/store"
)

type Metrics struct {
	EmbedResolutions *prometheus.CounterVec
	BouquetsCreated  prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	FloodBlocked     prometheus.Counter
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		EmbedResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digibouquet_embed_resolutions_total",
				Help: "Total number of song link resolutions",
			},
			[]string{"platform", "outcome"},
		),
		BouquetsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "digibouquet_bouquets_created_total",
				Help: "Total number of bouquets created",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digibouquet_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "digibouquet_request_duration_seconds",
				Help:    "Time spent serving API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		FloodBlocked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "digibouquet_flood_blocked_total",
				Help: "Total number of writes rejected by the flood gate",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.EmbedResolutions,
		metrics.BouquetsCreated,
		metrics.ErrorsTotal,
		metrics.RequestDuration,
		metrics.FloodBlocked,
	)

	return metrics
}

// registerCacheMetrics exposes the read cache counters.
func registerCacheMetrics(registry *prometheus.Registry, stats func() store.CacheStats) {
	registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "digibouquet_cache_entries",
				Help: "Number of bouquets in the read cache",
			},
			func() float64 { return float64(stats().Cached) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "digibouquet_cache_hits_total",
				Help: "Bouquet reads served from the cache",
			},
			func() float64 { return float64(stats().Hits) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "digibouquet_cache_misses_total",
				Help: "Bouquet reads that went to the database",
			},
			func() float64 { return float64(stats().Misses) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "digibouquet_cache_filtered_total",
				Help: "Bouquet reads rejected by the known-ID filter",
			},
			func() float64 { return float64(stats().Filtered) },
		),
	)
}

// registerInventoryMetrics exposes the number of stored bouquets, counted on scrape.
func registerInventoryMetrics(registry *prometheus.Registry, inventory BouquetCounter, logger *zap.Logger) {
	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "digibouquet_bouquets_stored",
			Help: "Number of bouquets in the database",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer cancel()

			n, err := inventory.Count(ctx)
			if err != nil {
				logger.Warn("Failed to count stored bouquets", zap.Error(err))
				return 0
			}
			return float64(n)
		},
	))
}

func (m *Metrics) RecordEmbedResolution(platform, outcome string) {
	m.EmbedResolutions.WithLabelValues(platform, outcome).Inc()
}

func (m *Metrics) RecordBouquetCreated() {
	m.BouquetsCreated.Inc()
}

func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (m *Metrics) RecordRequestDuration(route string, duration time.Duration) {
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordFloodBlocked() {
	m.FloodBlocked.Inc()
}
