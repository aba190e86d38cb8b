package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://ftp.nhc.noaa.gov", cfg.NHCBaseURL)
	assert.Equal(t, 30*time.Second, cfg.NHCTimeout)
	assert.Equal(t, 64, cfg.NHCCacheSize)
	assert.Equal(t, 15*time.Minute, cfg.NHCCacheTTL)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "atcf-tracks", cfg.KafkaSinkTopic)
	assert.Equal(t, 4, cfg.ExportConcurrency)
	assert.Equal(t, 91, cfg.IsotachSegments)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_FILE", "/var/log/vortex/track.log")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("NHC_BASE_URL", "http://mirror.local:8000")
	t.Setenv("NHC_TIMEOUT", "5s")
	t.Setenv("NHC_CACHE_SIZE", "8")
	t.Setenv("NHC_CACHE_TTL", "1m")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("EXPORT_CONCURRENCY", "16")
	t.Setenv("ISOTACH_SEGMENTS", "31")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/var/log/vortex/track.log", cfg.LogFile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://mirror.local:8000", cfg.NHCBaseURL)
	assert.Equal(t, 5*time.Second, cfg.NHCTimeout)
	assert.Equal(t, 8, cfg.NHCCacheSize)
	assert.Equal(t, time.Minute, cfg.NHCCacheTTL)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, 16, cfg.ExportConcurrency)
	assert.Equal(t, 31, cfg.IsotachSegments)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"NHC_TIMEOUT", "bad"},
		{"NHC_TIMEOUT", "0s"},
		{"NHC_CACHE_TTL", "-5m"},
		{"NHC_CACHE_SIZE", "0"},
		{"NHC_CACHE_SIZE", "many"},
		{"EXPORT_CONCURRENCY", "-1"},
		{"ISOTACH_SEGMENTS", "1"},
		{"NHC_BASE_URL", "ftp.nhc.noaa.gov"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaDisabledUnlessTrue(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
