// Package config loads the search service configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	pkgconfig "github.com/rizzani/grovi-sub000/pkg/config"
	"github.com/rizzani/grovi-sub000/pkg/database"
	"github.com/rizzani/grovi-sub000/pkg/logger"
	"github.com/rizzani/grovi-sub000/pkg/tracing"
)

// Retrieval backends.
const (
	BackendMemory        = "memory"
	BackendElasticsearch = "elasticsearch"
	BackendPostgres      = "postgres"
	BackendRemote        = "remote"
)

// ServiceName identifies the service in logs, metrics and traces.
const ServiceName = "search"

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"SEARCH_HTTP_PORT" envDefault:"8010"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Per-client rate limit on /api/v1; RATE_LIMIT_RPS=0 disables it
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// Ranking and pagination
	MaxCandidates    int           `env:"MAX_CANDIDATES" envDefault:"5000"`
	RetrievalTimeout time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"2s"`
	DefaultPageSize  int           `env:"DEFAULT_PAGE_SIZE" envDefault:"50"`
	MaxPageSize      int           `env:"MAX_PAGE_SIZE" envDefault:"100"`

	// Retrieval backend: memory, elasticsearch, postgres or remote
	RetrievalBackend string `env:"RETRIEVAL_BACKEND" envDefault:"memory"`

	// Elasticsearch
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"grovi_listings"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"grovi"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"grovi"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"grovi"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	PostgresMinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`

	// Remote catalog
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8001"`

	// Redis candidate cache; disabled when REDIS_HOST is empty
	RedisHost         string        `env:"REDIS_HOST"`
	RedisPort         int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	CandidateCacheTTL time.Duration `env:"CANDIDATE_CACHE_TTL" envDefault:"60s"`

	// Kafka listing events
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"grovi-search"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	ServiceVersion string  `env:"SERVICE_VERSION" envDefault:"0.1.0"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(nil)
}

// LoadFrom reads configuration from environment instead of the process
// environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	if environment == nil {
		environment = map[string]string{}
	}
	return load(environment)
}

func load(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environment); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants, reporting every violation.
func (c *Config) validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel))
	}
	if !slices.Contains([]string{BackendMemory, BackendElasticsearch, BackendPostgres, BackendRemote}, c.RetrievalBackend) {
		errs = append(errs, fmt.Errorf("invalid RETRIEVAL_BACKEND %q: must be memory, elasticsearch, postgres or remote", c.RetrievalBackend))
	}
	if c.MaxCandidates < 1 {
		errs = append(errs, fmt.Errorf("MAX_CANDIDATES must be positive, got %d", c.MaxCandidates))
	}
	if c.RetrievalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_TIMEOUT must be positive, got %s", c.RetrievalTimeout))
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, fmt.Errorf("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE (%d) <= MAX_PAGE_SIZE (%d)", c.DefaultPageSize, c.MaxPageSize))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS (%g) and RATE_LIMIT_BURST (%d) must not be negative", c.RateLimitRPS, c.RateLimitBurst))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", c.OTELSampleRate))
	}

	switch c.RetrievalBackend {
	case BackendElasticsearch:
		errs = append(errs, validURL("ELASTICSEARCH_URL", c.ElasticsearchURL))
	case BackendRemote:
		errs = append(errs, validURL("CATALOG_SERVICE_URL", c.CatalogServiceURL))
	}
	if c.RedisHost != "" && c.CandidateCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CANDIDATE_CACHE_TTL must be positive, got %s", c.CandidateCacheTTL))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	return errors.Join(errs...)
}

func validURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// CacheEnabled reports whether candidate retrieval is cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

// Postgres returns the pool configuration for the postgres backend.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	pg.MaxConns = c.PostgresMaxConns
	pg.MinConns = c.PostgresMinConns
	return pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}
