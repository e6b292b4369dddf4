// Package config loads runtime configuration from the environment. A .env
// file in the working directory is honored when present so local runs do not
// need exported variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration for the sync and grid commands.
type Config struct {
	// StartggToken authenticates against the start.gg GraphQL API.
	StartggToken string `env:"STARTGG_TOKEN"`

	// DBPath is the SQLite snapshot location.
	DBPath string `env:"DB_PATH" envDefault:"./trials.db"`

	// NameFilter keeps only tournaments whose name contains this substring.
	NameFilter string `env:"NAME_FILTER" envDefault:"Trial"`

	// PageSize for participant and set queries.
	PageSize int `env:"PAGE_SIZE" envDefault:"60"`

	// EventBatchSize is how many events share one sets query.
	EventBatchSize int `env:"EVENT_BATCH_SIZE" envDefault:"1"`

	// MaxConcurrency caps concurrent page fetches within one listing.
	MaxConcurrency int `env:"MAX_CONCURRENCY" envDefault:"4"`

	// ParticipantPauseMS and SetsPauseMS are the fixed pauses, in
	// milliseconds, after the corresponding fetches.
	ParticipantPauseMS int `env:"PARTICIPANT_PAUSE_MS" envDefault:"300"`
	SetsPauseMS        int `env:"SETS_PAUSE_MS" envDefault:"700"`

	// RedisURL enables the response cache when set.
	RedisURL string `env:"REDIS_URL"`

	// MetricsAddr enables the metrics/health listener when set,
	// e.g. ":9090".
	MetricsAddr string `env:"METRICS_ADDR"`

	// GridQueries is the TOML query pool for grid generation.
	GridQueries string `env:"GRID_QUERIES" envDefault:"./GridQueries.toml"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads configuration from the environment, after loading ./.env if it
// exists. It does not require StartggToken; commands that talk to the API
// call RequireToken.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.PageSize <= 0 {
		return Config{}, errors.New("PAGE_SIZE must be positive")
	}
	if cfg.EventBatchSize <= 0 {
		return Config{}, errors.New("EVENT_BATCH_SIZE must be positive")
	}
	if cfg.MaxConcurrency <= 0 {
		return Config{}, errors.New("MAX_CONCURRENCY must be positive")
	}
	return cfg, nil
}

// RequireToken fails when no API token is configured.
func (c Config) RequireToken() error {
	if c.StartggToken == "" {
		return errors.New("STARTGG_TOKEN is required")
	}
	return nil
}

// ParticipantPause returns the participant pause as a duration.
func (c Config) ParticipantPause() time.Duration {
	return time.Duration(c.ParticipantPauseMS) * time.Millisecond
}

// SetsPause returns the sets pause as a duration.
func (c Config) SetsPause() time.Duration {
	return time.Duration(c.SetsPauseMS) * time.Millisecond
}
