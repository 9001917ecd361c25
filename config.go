package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	ProjectID   string `env:"GCP_PROJECT_ID"`
	Region      string `env:"GCP_REGION"`
	Model       string `env:"GEMINI_MODEL"`
	Locale      string `env:"LOCALE"`
	Filler      string `env:"FILLER_LETTERS" envDefault:"ABCDEFGHIJKLMNPRSTUVYZ"`
	PresetsFile string `env:"PRESETS_FILE"`

	// Themed word lists.
	SuggestTimeout time.Duration `env:"SUGGEST_TIMEOUT" envDefault:"30s"`

	// Tracing is exported only when an OTLP/HTTP endpoint is set.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// newLogger builds a logger from a level name (debug, info, warn, error)
// and a format (text or json).
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
