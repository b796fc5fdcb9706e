package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the support service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"support-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	InferenceURL     string        `env:"INFERENCE_URL"`
	InferenceKey     string        `env:"INFERENCE_KEY"`
	InferenceModelID string        `env:"INFERENCE_MODEL_ID"`
	StreamTimeout    time.Duration `env:"STREAM_TIMEOUT" envDefault:"60s"`
	SummarizeTimeout time.Duration `env:"SUMMARIZE_TIMEOUT" envDefault:"10s"`

	MaxTurns       int `env:"MAX_TURNS" envDefault:"3"`
	HistoryWindow  int `env:"HISTORY_WINDOW" envDefault:"12"`
	RecentKeep     int `env:"RECENT_KEEP" envDefault:"3"`
	DetectorBuffer int `env:"DETECTOR_BUFFER" envDefault:"4096"`

	Temperature float64 `env:"TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"800"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"5m"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.InferenceURL) == "" {
		return nil, fmt.Errorf("INFERENCE_URL is required")
	}
	if strings.TrimSpace(cfg.InferenceModelID) == "" {
		return nil, fmt.Errorf("INFERENCE_MODEL_ID is required")
	}

	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 3
	}
	if cfg.HistoryWindow <= cfg.RecentKeep {
		return nil, fmt.Errorf("HISTORY_WINDOW (%d) must exceed RECENT_KEEP (%d)", cfg.HistoryWindow, cfg.RecentKeep)
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
