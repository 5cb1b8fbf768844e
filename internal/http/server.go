// Package http serves the bouquet API, health checks and Prometheus metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"digibouquet/internal/core"
	"digibouquet/internal/flood"
	"digibouquet/internal/store"
	"digibouquet/pkg/musiclink"
)

const (
	shutdownTimeout  = 10 * time.Second
	readinessTimeout = 2 * time.Second
	maxBodyBytes     = 64 << 10
)

// ReadinessChecker reports whether a dependency can serve requests.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// BouquetCounter reports how many bouquets are stored.
type BouquetCounter interface {
	Count(ctx context.Context) (int, error)
}

// Options carries the optional collaborators of a Server.
type Options struct {
	// Floodgate limits bouquet creation per client. Nil disables flood protection.
	Floodgate *flood.Floodgate
	// Readiness backs /readyz. Nil always reports ready.
	Readiness ReadinessChecker
	// CacheStats exposes read cache counters as metrics when set.
	CacheStats func() store.CacheStats
	// Inventory exposes the stored bouquet count as a metric when set.
	Inventory BouquetCounter
	// LookupTimeout bounds song info lookups.
	LookupTimeout time.Duration
}

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	metrics  *Metrics
	registry *prometheus.Registry

	bouquets  *core.BouquetService
	resolver  *musiclink.Manager
	floodgate *flood.Floodgate
	readiness ReadinessChecker

	lookupTimeout time.Duration
}

func NewServer(config *core.ServerConfig, bouquets *core.BouquetService, opts Options, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	metrics := newMetrics(registry)
	if opts.CacheStats != nil {
		registerCacheMetrics(registry, opts.CacheStats)
	}
	if opts.Inventory != nil {
		registerInventoryMetrics(registry, opts.Inventory, logger)
	}

	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = core.DefaultLookupTimeoutSecs * time.Second
	}

	s := &Server{
		config:        config,
		logger:        logger,
		metrics:       metrics,
		registry:      registry,
		bouquets:      bouquets,
		resolver:      musiclink.NewManager(),
		floodgate:     opts.Floodgate,
		readiness:     opts.Readiness,
		lookupTimeout: lookupTimeout,
	}
	s.server = createHTTPServer(config, s.setupRoutes())

	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthzHandler)
	mux.HandleFunc("GET /readyz", s.readyzHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/platforms", s.instrument("platforms", s.platformsHandler))
	mux.HandleFunc("GET /api/embed", s.instrument("embed", s.embedHandler))
	mux.HandleFunc("GET /api/song-info", s.instrument("song_info", s.songInfoHandler))
	mux.HandleFunc("POST /api/bouquets", s.instrument("create_bouquet", s.createBouquetHandler))
	mux.HandleFunc("GET /api/bouquets/{id}", s.instrument("get_bouquet", s.getBouquetHandler))
	mux.HandleFunc("GET /api/bouquets/{id}/metadata", s.instrument("bouquet_metadata", s.metadataHandler))
	mux.HandleFunc("GET /api/shared", s.instrument("shared", s.sharedHandler))
	mux.HandleFunc("GET /bouquet/shared", s.instrument("shared", s.sharedHandler))

	mux.HandleFunc("GET /{$}", homeHandler(s.logger))

	return mux
}

// instrument records the duration of every request to route and tags the response
// with the language of its user-facing strings.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	language := s.bouquets.Localizer().Language()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Language", language)
		start := time.Now()
		next(w, r)
		s.metrics.RecordRequestDuration(route, time.Since(start))
	}
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"digibouquet"}`))
}

func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := s.readiness.Ping(ctx); err != nil {
			s.logger.Warn("Readiness check failed", zap.Error(err))
			s.metrics.RecordError("store", "ping")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable","service":"digibouquet"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready","service":"digibouquet"}`))
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(homePage)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>digibouquet</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">💐 digibouquet</h1>
    <p>Digital bouquets with a song attached</p>

    <h2>Endpoints</h2>
    <div class="endpoint">🎶 <a href="/api/platforms">Platforms</a> - Accepted platform hints</div>
    <div class="endpoint">🎵 <code>GET /api/embed?url=&amp;platform=</code> - Resolve a song link to a player</div>
    <div class="endpoint">🔎 <code>GET /api/song-info?url=</code> - Look up song title and artist</div>
    <div class="endpoint">🌷 <code>POST /api/bouquets</code> - Create a bouquet</div>
    <div class="endpoint">💌 <code>GET /api/bouquets/{id}</code> - View a bouquet</div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`

// Handler returns the root handler, for embedding the API in tests or other servers.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}
