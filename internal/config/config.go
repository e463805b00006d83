package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/nea-sg-weather/internal/weather"
	"github.com/i474232898/nea-sg-weather/internal/weather/nea"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// FetchInterval controls how often every metric is refreshed.
	FetchInterval time.Duration `validate:"min=1m"`

	HTTPTimeout    time.Duration `validate:"min=1s"`
	RefreshTimeout time.Duration `validate:"min=1s"`

	// Caller retry policy around one refresh cycle.
	RefreshMaxRetries int           `validate:"gte=0,lte=10"`
	RefreshBackoff    time.Duration `validate:"min=0s"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of snapshots per metric (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"min=0s"` // max age of snapshots (0 = unlimited)

	// DatabaseURL switches snapshots to Postgres when set.
	DatabaseURL string

	// Metrics to schedule. Empty METRICS means all of them.
	Metrics []weather.Metric `validate:"min=1,dive,metric"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	Endpoints map[weather.Metric]nea.EndpointPair
	Headers   map[string]string
}

// endpointsFile is the YAML document referenced by ENDPOINTS_FILE.
type endpointsFile struct {
	Endpoints map[weather.Metric]nea.EndpointPair `yaml:"endpoints"`
	Headers   map[string]string                   `yaml:"headers"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
		return weather.Metric(fl.Field().String()).Valid()
	})
	return v
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeout, err = getenvDuration("REFRESH_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.RefreshBackoff, err = getenvDuration("REFRESH_BACKOFF", "2s"); err != nil {
		return nil, err
	}
	cfg.RefreshMaxRetries = getenvInt("REFRESH_MAX_RETRIES", 2)

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))
	cfg.Metrics = parseMetrics(os.Getenv("METRICS"))

	cfg.Endpoints = nea.DefaultEndpoints()
	cfg.Headers = nea.DefaultHeaders()
	if path := os.Getenv("ENDPOINTS_FILE"); path != "" {
		if err := cfg.loadEndpointsFile(path); err != nil {
			return nil, err
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadEndpointsFile applies URL and header overrides from a YAML file.
func (c *AppConfig) loadEndpointsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ENDPOINTS_FILE: %w", err)
	}

	var doc endpointsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse ENDPOINTS_FILE: %w", err)
	}
	for m := range doc.Endpoints {
		if !m.Valid() {
			return fmt.Errorf("ENDPOINTS_FILE: unknown metric %q", m)
		}
	}

	c.Endpoints = nea.MergeEndpoints(doc.Endpoints)
	for k, v := range doc.Headers {
		c.Headers[k] = v
	}
	return nil
}

func parseMetrics(s string) []weather.Metric {
	if strings.TrimSpace(s) == "" {
		out := make([]weather.Metric, len(weather.AllMetrics))
		copy(out, weather.AllMetrics)
		return out
	}

	var out []weather.Metric
	seen := make(map[weather.Metric]bool)
	for _, part := range strings.Split(s, ",") {
		m := weather.Metric(strings.ToLower(strings.TrimSpace(part)))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
