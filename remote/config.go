package remote

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration for the remote Store.
type Config struct {
	// EntityTable holds the six plain collections, keyed by entity type
	// and id. Default: "rosterstore_entities"
	EntityTable string `env:"ROSTERSTORE_ENTITY_TABLE"`

	// GameTable holds the game aggregates, keyed by id, with the
	// authoritative version number. Default: "rosterstore_games"
	GameTable string `env:"ROSTERSTORE_GAME_TABLE"`

	// ConflictTable holds the durable conflict-backup side-channel.
	// Default: "rosterstore_conflicts"
	ConflictTable string `env:"ROSTERSTORE_CONFLICT_TABLE"`

	// MaxAttempts bounds how many times a transient failure is attempted
	// in total, first try included. Default: 4
	MaxAttempts int `env:"ROSTERSTORE_MAX_ATTEMPTS"`

	// RequestTimeout bounds each individual attempt at the I/O boundary.
	// A timeout classifies as transient. Default: 10s
	RequestTimeout time.Duration `env:"ROSTERSTORE_REQUEST_TIMEOUT"`

	// InitialBackoff and MaxBackoff bound the jittered exponential delay
	// between transient retries. Defaults: 200ms and 5s.
	InitialBackoff time.Duration `env:"ROSTERSTORE_INITIAL_BACKOFF"`
	MaxBackoff     time.Duration `env:"ROSTERSTORE_MAX_BACKOFF"`
}

// DefaultConfig returns the defaults documented on each field.
func DefaultConfig() Config {
	var cfg Config
	cfg.validate()
	return cfg
}

// FromEnv loads configuration from environment variables, applying the
// documented defaults for anything unset.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.validate()
	return cfg, nil
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.EntityTable == "" {
		c.EntityTable = "rosterstore_entities"
	}
	if c.GameTable == "" {
		c.GameTable = "rosterstore_games"
	}
	if c.ConflictTable == "" {
		c.ConflictTable = "rosterstore_conflicts"
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 4
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = 5 * time.Second
	}
}
