package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Brokers []string      `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"2s"`
	Enabled bool          `env:"TEST_CFG_ENABLED" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.False(t, cfg.Enabled)
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_TIMEOUT", "750ms")
	t.Setenv("TEST_CFG_ENABLED", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Enabled)
}

func TestLoadFrom_IgnoresProcessEnv(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")

	var cfg testConfig
	require.NoError(t, LoadFrom(&cfg, map[string]string{"TEST_CFG_TIMEOUT": "5s"}))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

type requiredConfig struct {
	URL string `env:"TEST_CFG_URL,required"`
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	err := LoadFrom(&cfg, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	require.NoError(t, LoadFrom(&cfg, map[string]string{"TEST_CFG_URL": "http://catalog"}))
	assert.Equal(t, "http://catalog", cfg.URL)
}

func TestLoad_InvalidType(t *testing.T) {
	var cfg testConfig
	err := LoadFrom(&cfg, map[string]string{"TEST_CFG_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
