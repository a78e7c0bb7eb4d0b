package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rizzani/grovi-sub000/internal/config"
	"github.com/rizzani/grovi-sub000/internal/service"
	"github.com/rizzani/grovi-sub000/pkg/health"
	"github.com/rizzani/grovi-sub000/pkg/middleware"
)

// RequestTimeout bounds every API request.
const RequestTimeout = 30 * time.Second

// NewRouter creates a chi router with all search service routes registered.
func NewRouter(
	cfg *config.Config,
	searchService *service.SearchService,
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	cors := middleware.DefaultCORSConfig()
	cors.Environment = cfg.Environment
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(config.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(config.ServiceName))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	searchHandler := NewSearchHandler(searchService, cfg.DefaultPageSize, cfg.MaxPageSize, logger)
	listingHandler := NewListingHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(chimw.Timeout(RequestTimeout))

		r.Route("/search", func(r chi.Router) {
			r.Get("/", searchHandler.Search)
			r.Get("/suggest", searchHandler.Suggest)
			r.Get("/analyze", searchHandler.Analyze)
		})

		r.Route("/listings", func(r chi.Router) {
			r.With(chimw.AllowContentType("application/json")).Post("/", listingHandler.Index)
			r.With(chimw.AllowContentType("application/json")).Post("/bulk", listingHandler.BulkIndex)
			r.Delete("/{id}", listingHandler.Delete)
		})
	})

	return r
}
