package remote

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EntityTable != "rosterstore_entities" {
		t.Errorf("expected rosterstore_entities, got %q", cfg.EntityTable)
	}
	if cfg.GameTable != "rosterstore_games" {
		t.Errorf("expected rosterstore_games, got %q", cfg.GameTable)
	}
	if cfg.ConflictTable != "rosterstore_conflicts" {
		t.Errorf("expected rosterstore_conflicts, got %q", cfg.ConflictTable)
	}
	if cfg.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ROSTERSTORE_ENTITY_TABLE", "prod_entities")
	t.Setenv("ROSTERSTORE_MAX_ATTEMPTS", "7")
	t.Setenv("ROSTERSTORE_REQUEST_TIMEOUT", "3s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.EntityTable != "prod_entities" {
		t.Errorf("expected prod_entities, got %q", cfg.EntityTable)
	}
	if cfg.MaxAttempts != 7 {
		t.Errorf("expected 7, got %d", cfg.MaxAttempts)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.RequestTimeout)
	}
	// Unset variables keep their defaults.
	if cfg.GameTable != "rosterstore_games" {
		t.Errorf("expected default game table, got %q", cfg.GameTable)
	}
}

func TestConfigValidate_RepairsBadValues(t *testing.T) {
	cfg := Config{MaxAttempts: -1, MaxBackoff: time.Millisecond}
	cfg.validate()

	if cfg.MaxAttempts != 4 {
		t.Errorf("expected repaired attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		t.Errorf("expected max backoff >= initial, got %v < %v", cfg.MaxBackoff, cfg.InitialBackoff)
	}
}
