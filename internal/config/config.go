package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NWS upstream configuration.
	NWSBaseURL   string
	NWSTimeout   time.Duration
	NWSUserAgent string

	// Poll lifecycle.
	PollInterval time.Duration
	StaleAfter   time.Duration

	// Outbound rate limiting.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Persisted state.
	DataPath string

	// Kafka notification sink.
	KafkaBrokers     []string
	KafkaNotifyTopic string
	NotifyEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	nwsTimeout, err := parseDuration("NWS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	staleAfter, err := parseDuration("STALE_AFTER", "2m")
	if err != nil {
		return nil, err
	}

	rateLimitWindow, err := parseDuration("RATE_LIMIT_WINDOW", "60s")
	if err != nil {
		return nil, err
	}

	rateLimitMax, err := parseInt("RATE_LIMIT_MAX", 50)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	notifyEnabled := len(brokers) > 0
	if v := os.Getenv("NOTIFY_ENABLED"); v != "" {
		notifyEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NWSBaseURL:   envOrDefault("NWS_BASE_URL", "https://api.weather.gov"),
		NWSTimeout:   nwsTimeout,
		NWSUserAgent: envOrDefault("NWS_USER_AGENT", "storm-alert-service (github.com/couchcryptid/storm-alert-service)"),

		PollInterval: pollInterval,
		StaleAfter:   staleAfter,

		RateLimitMax:    rateLimitMax,
		RateLimitWindow: rateLimitWindow,

		DataPath: envOrDefault("DATA_PATH", "data/alerts.db"),

		KafkaBrokers:     brokers,
		KafkaNotifyTopic: envOrDefault("KAFKA_NOTIFY_TOPIC", "alert-notifications"),
		NotifyEnabled:    notifyEnabled,
	}

	if cfg.NWSBaseURL == "" {
		return nil, errors.New("NWS_BASE_URL is required")
	}
	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.NotifyEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("NOTIFY_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
