package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Config carries process-level settings loaded from the environment.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	HTTPAddr    string
	DatabaseDSN string

	Tracing TracingConfig
	Draft   DraftConfig

	Bootstrap BootstrapConfig
}

// TracingConfig controls the OTLP exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// DraftConfig controls draft-session retention.
type DraftConfig struct {
	MaxIdle       time.Duration
	SweepInterval time.Duration
}

// BootstrapConfig controls startup seeding.
type BootstrapConfig struct {
	SeedTaxRates bool
}

// Load builds a Config from environment variables with local defaults.
func Load() Config {
	return Config{
		ServiceName:    envString("SERVICE_NAME", "invoicedesk"),
		ServiceVersion: envString("SERVICE_VERSION", "dev"),
		Environment:    envString("ENVIRONMENT", "development"),
		HTTPAddr:       envString("HTTP_ADDR", ":8080"),
		DatabaseDSN:    envString("DATABASE_DSN", "file:invoicedesk.db?cache=shared"),
		Tracing: TracingConfig{
			Enabled:          envBool("TRACING_ENABLED", false),
			ExporterEndpoint: envString("OTLP_ENDPOINT", ""),
			ExporterProtocol: envString("OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    envFloat("TRACING_SAMPLING_RATIO", 0.1),
		},
		Draft: DraftConfig{
			MaxIdle:       envDuration("DRAFT_MAX_IDLE", 30*time.Minute),
			SweepInterval: envDuration("DRAFT_SWEEP_INTERVAL", time.Minute),
		},
		Bootstrap: BootstrapConfig{
			SeedTaxRates: envBool("BOOTSTRAP_SEED_TAX_RATES", true),
		},
	}
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
