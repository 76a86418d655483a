package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/raw", cfg.DataDir)
	assert.Equal(t, "artifacts/schema_manifest.json", cfg.ManifestPath)
	assert.Equal(t, "artifacts/risk_model.json", cfg.ModelPath)
	assert.Equal(t, "memory", cfg.WeatherCacheBackend)
	assert.Equal(t, time.Hour, cfg.WeatherCacheExpiry)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.False(t, cfg.KafkaSinkEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "risk-predictions", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("ARTIFACT_DIR", "/var/lib/riskd")
	t.Setenv("WEATHER_CACHE_BACKEND", "redis")
	t.Setenv("WEATHER_CACHE_EXPIRY", "15m")
	t.Setenv("KAFKA_SINK_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/riskd/schema_manifest.json", cfg.ManifestPath)
	assert.Equal(t, "redis", cfg.WeatherCacheBackend)
	assert.Equal(t, 15*time.Minute, cfg.WeatherCacheExpiry)
	assert.True(t, cfg.KafkaSinkEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad cache backend", func(t *testing.T) {
		t.Setenv("WEATHER_CACHE_BACKEND", "memcached")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("WEATHER_CACHE_EXPIRY", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("sink without brokers", func(t *testing.T) {
		t.Setenv("KAFKA_SINK_ENABLED", "true")
		t.Setenv("KAFKA_BROKERS", " ")
		_, err := Load()
		require.Error(t, err)
	})
}
