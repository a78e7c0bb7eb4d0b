package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.RetrievalBackend)
	assert.Equal(t, 5000, cfg.MaxCandidates)
	assert.Equal(t, 2*time.Second, cfg.RetrievalTimeout)
	assert.Equal(t, 50, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, "grovi_listings", cfg.ElasticsearchIndex)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.CacheEnabled())
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ENVIRONMENT":          "production",
		"RETRIEVAL_BACKEND":    "postgres",
		"POSTGRES_HOST":        "db.internal",
		"POSTGRES_MAX_CONNS":   "25",
		"REDIS_HOST":           "cache.internal",
		"CANDIDATE_CACHE_TTL":  "5m",
		"KAFKA_ENABLED":        "true",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"RETRIEVAL_TIMEOUT":    "750ms",
		"CORS_ALLOWED_ORIGINS": "https://grovi.app,https://admin.grovi.app",
		"OTEL_ENABLED":         "true",
		"OTEL_SAMPLE_RATE":     "0.1",
	})
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 750*time.Millisecond, cfg.RetrievalTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://grovi.app", "https://admin.grovi.app"}, cfg.CORSAllowedOrigins)

	pg := cfg.Postgres()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, int32(25), pg.MaxConns)
	assert.Equal(t, time.Hour, pg.MaxConnLifetime)

	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, "cache.internal:6379", cfg.Redis().Addr())
	assert.Equal(t, 5*time.Minute, cfg.CandidateCacheTTL)

	tc := cfg.Tracing()
	assert.True(t, tc.Enabled)
	assert.Equal(t, ServiceName, tc.ServiceName)
	assert.InDelta(t, 0.1, tc.SampleRate, 1e-9)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port zero", map[string]string{"SEARCH_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"port too large", map[string]string{"SEARCH_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"unknown backend", map[string]string{"RETRIEVAL_BACKEND": "solr"}, "invalid RETRIEVAL_BACKEND"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "invalid LOG_LEVEL"},
		{"max candidates", map[string]string{"MAX_CANDIDATES": "0"}, "MAX_CANDIDATES"},
		{"timeout", map[string]string{"RETRIEVAL_TIMEOUT": "0s"}, "RETRIEVAL_TIMEOUT"},
		{"page sizes", map[string]string{"DEFAULT_PAGE_SIZE": "200"}, "DEFAULT_PAGE_SIZE"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"rate limit", map[string]string{"RATE_LIMIT_RPS": "-1"}, "RATE_LIMIT_RPS"},
		{"es url", map[string]string{"RETRIEVAL_BACKEND": "elasticsearch", "ELASTICSEARCH_URL": "localhost"}, "ELASTICSEARCH_URL"},
		{"catalog url", map[string]string{"RETRIEVAL_BACKEND": "remote", "CATALOG_SERVICE_URL": "::"}, "CATALOG_SERVICE_URL"},
		{"cache ttl", map[string]string{"REDIS_HOST": "cache", "CANDIDATE_CACHE_TTL": "0s"}, "CANDIDATE_CACHE_TTL"},
		{"malformed int", map[string]string{"MAX_CANDIDATES": "lots"}, "load search config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_ReportsAllViolations(t *testing.T) {
	_, err := LoadFrom(map[string]string{"SEARCH_HTTP_PORT": "0", "RETRIEVAL_BACKEND": "solr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
	assert.Contains(t, err.Error(), "invalid RETRIEVAL_BACKEND")
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SEARCH_HTTP_PORT", "9090")
	t.Setenv("RETRIEVAL_BACKEND", "remote")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, BackendRemote, cfg.RetrievalBackend)
}
