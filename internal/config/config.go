package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultWindsAloftURL serves the low-level FD bulletin for all US regions.
const DefaultWindsAloftURL = "https://aviationweather.gov/api/data/windtemp?region=all&level=low&fcst=06"

// Config holds all service settings, populated from environment variables.
type Config struct {
	WindsAloftURL  string
	FetchTimeout   time.Duration
	FetchRateLimit time.Duration // minimum spacing between upstream requests
	PollInterval   time.Duration

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// NATS publishing is enabled when NATSURL is set.
	NATSURL           string
	NATSSubjectPrefix string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	rateLimit, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_RATE_LIMIT", "1m"))
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid FETCH_RATE_LIMIT")
	}

	kafkaEnabled := true
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		WindsAloftURL:  sharedcfg.EnvOrDefault("WINDS_ALOFT_URL", DefaultWindsAloftURL),
		FetchTimeout:   fetchTimeout,
		FetchRateLimit: rateLimit,
		PollInterval:   pollInterval,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "winds-aloft"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: sharedcfg.EnvOrDefault("NATS_SUBJECT_PREFIX", "winds.aloft"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.WindsAloftURL == "" {
		return nil, errors.New("WINDS_ALOFT_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.NATSURL != "" && cfg.NATSSubjectPrefix == "" {
		return nil, errors.New("NATS_SUBJECT_PREFIX is required when NATS_URL is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
