package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// NHC retrieval configuration.
	NHCBaseURL   string
	NHCTimeout   time.Duration
	NHCCacheSize int
	NHCCacheTTL  time.Duration

	// Kafka sink for the export pipeline.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	ExportConcurrency int
	IsotachSegments   int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nhcTimeout, err := parsePositiveDuration("NHC_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	nhcCacheTTL, err := parsePositiveDuration("NHC_CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}
	nhcCacheSize, err := parsePositiveInt("NHC_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("EXPORT_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	segments, err := parsePositiveInt("ISOTACH_SEGMENTS", 91)
	if err != nil {
		return nil, err
	}
	if segments < 2 {
		return nil, errors.New("ISOTACH_SEGMENTS must be at least 2")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		NHCBaseURL:   sharedcfg.EnvOrDefault("NHC_BASE_URL", "https://ftp.nhc.noaa.gov"),
		NHCTimeout:   nhcTimeout,
		NHCCacheSize: nhcCacheSize,
		NHCCacheTTL:  nhcCacheTTL,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "atcf-tracks"),

		ExportConcurrency: concurrency,
		IsotachSegments:   segments,
	}

	if u, err := url.Parse(cfg.NHCBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid NHC_BASE_URL %q", cfg.NHCBaseURL)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
