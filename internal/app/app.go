// Package app wires the search service together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/rizzani/grovi-sub000/internal/config"
	"github.com/rizzani/grovi-sub000/internal/event"
	handler "github.com/rizzani/grovi-sub000/internal/handler/http"
	"github.com/rizzani/grovi-sub000/internal/ranking"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/internal/retrieval/cache"
	esretrieval "github.com/rizzani/grovi-sub000/internal/retrieval/elasticsearch"
	"github.com/rizzani/grovi-sub000/internal/retrieval/memory"
	"github.com/rizzani/grovi-sub000/internal/retrieval/postgres"
	"github.com/rizzani/grovi-sub000/internal/retrieval/remote"
	"github.com/rizzani/grovi-sub000/internal/service"
	"github.com/rizzani/grovi-sub000/pkg/database"
	"github.com/rizzani/grovi-sub000/pkg/health"
	"github.com/rizzani/grovi-sub000/pkg/httpclient"
	pkgkafka "github.com/rizzani/grovi-sub000/pkg/kafka"
	"github.com/rizzani/grovi-sub000/pkg/tracing"
)

// EventDedupTTL is how long processed event ids are remembered.
const EventDedupTTL = 24 * time.Hour

// App wires together all dependencies and runs the search service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	consumers      []*pkgkafka.Consumer
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	closers        []func() error
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	base, err := a.newBackend(ctx, healthHandler)
	if err != nil {
		a.release()
		return nil, err
	}

	// Optional Redis candidate cache.
	backend := base
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			a.release()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		backend = cache.New(base, redisClient, cfg.CandidateCacheTTL, logger)
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("candidate cache enabled",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Duration("ttl", cfg.CandidateCacheTTL),
		)
	}

	// Build the service layer.
	ranker := ranking.NewRanker(cfg.MaxCandidates)
	searchService := service.NewSearchService(backend, ranker, cfg.RetrievalTimeout, logger)
	catalogService := service.NewCatalogService(backend, logger)

	// Listing events are only consumed when the backend accepts writes.
	if cfg.KafkaEnabled {
		if _, ok := base.(retrieval.Indexer); ok {
			a.startConsumers(catalogService, redisClient, healthHandler)
		} else {
			logger.Warn("kafka enabled but the retrieval backend is read-only; listing events are not consumed",
				slog.String("backend", cfg.RetrievalBackend),
			)
		}
	}

	// HTTP router.
	router := handler.NewRouter(cfg, searchService, catalogService, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// newBackend builds the configured retrieval backend and registers its
// health check.
func (a *App) newBackend(ctx context.Context, healthHandler *health.Handler) (retrieval.Retriever, error) {
	cfg, logger := a.cfg, a.logger

	var backend retrieval.Retriever
	switch cfg.RetrievalBackend {
	case config.BackendElasticsearch:
		engine, err := esretrieval.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch retrieval: %w", err)
		}
		backend = engine
		logger.Info("elasticsearch retrieval initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)

	case config.BackendPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.Int("port", pgCfg.Port),
			slog.String("database", pgCfg.DBName),
		)

		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		database.SetSlowQueryLogging(200*time.Millisecond, logger)
		backend = postgres.New(pool)

	case config.BackendRemote:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			logger,
		)
		backend = remote.New(cfg.CatalogServiceURL, client, logger)
		logger.Info("remote catalog retrieval initialized", slog.String("url", cfg.CatalogServiceURL))

	default:
		backend = memory.New()
		logger.Info("in-memory retrieval initialized")
	}

	if p, ok := backend.(retrieval.Pinger); ok {
		healthHandler.Register(cfg.RetrievalBackend, p.Ping)
	}
	return backend, nil
}

// startConsumers creates one consumer per listing topic. Failed events go to
// the dead letter queue; redelivered events are skipped using Redis when it
// is configured and process memory otherwise.
func (a *App) startConsumers(catalog *service.CatalogService, redisClient *redis.Client, healthHandler *health.Handler) {
	cfg, logger := a.cfg, a.logger

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	dlq := pkgkafka.NewDeadLetterQueue(a.producer, logger)

	var store pkgkafka.IdempotencyStore
	if redisClient != nil {
		store = pkgkafka.NewRedisIdempotencyStore(redisClient, EventDedupTTL)
	} else {
		store = pkgkafka.NewMemoryIdempotencyStore(EventDedupTTL)
	}

	eventConsumer := event.NewConsumer(catalog, logger)
	for _, topic := range event.Topics() {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}
		c := pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger,
			pkgkafka.WithDeadLetterQueue(dlq),
			pkgkafka.WithIdempotencyStore(store),
		)
		a.consumers = append(a.consumers, c)
	}

	healthHandler.Register("kafka", a.producer.Ping)
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("group_id", cfg.KafkaGroupID),
		slog.Int("topic_count", len(a.consumers)),
	)
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer %s: %w", c.Topic(), err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.release())
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// release closes connection pools and clients in reverse order of creation.
func (a *App) release() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
