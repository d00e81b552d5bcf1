package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseFile != "cryptic.db" {
		t.Fatalf("expected default database file, got %q", cfg.DatabaseFile)
	}
	if cfg.MinerTick != 10*time.Second {
		t.Fatalf("expected default miner tick 10s, got %v", cfg.MinerTick)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_FILE", "/tmp/test.db")
	t.Setenv("MINER_TICK", "1s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseFile != "/tmp/test.db" {
		t.Fatalf("expected /tmp/test.db, got %q", cfg.DatabaseFile)
	}
	if cfg.MinerTick != time.Second {
		t.Fatalf("expected miner tick 1s, got %v", cfg.MinerTick)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
