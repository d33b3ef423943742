package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("default redis addr")
	}
	if cfg.KeyPattern != "logs:user_*:*" {
		t.Fatalf("default key pattern: %q", cfg.KeyPattern)
	}
	if cfg.BucketSeconds != 86400 {
		t.Fatalf("default bucket seconds")
	}
	if cfg.DrainIntervalSeconds != 60 {
		t.Fatalf("default drain interval")
	}
	if warnings, err := cfg.Validate(); err != nil || len(warnings) != 0 {
		t.Fatalf("defaults should validate cleanly: warnings=%v err=%v", warnings, err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flume.json")
	data := []byte(`{"redisAddr":"10.0.0.5:6379","ttlSeconds":172800,"drainIntervalSeconds":30,"logDir":"/srv/logs"}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RedisAddr != "10.0.0.5:6379" {
		t.Fatalf("expected overridden redis addr")
	}
	if cfg.TTLSeconds != 172800 || cfg.DrainIntervalSeconds != 30 {
		t.Fatalf("expected overridden ttl/interval")
	}
	// Untouched fields keep their defaults.
	if cfg.KeyPattern != "logs:user_*:*" {
		t.Fatalf("defaults should survive partial files")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("FLUME_REDIS_ADDR", "redis.internal:6379")
	os.Setenv("FLUME_DRAIN_INTERVAL", "15")
	os.Setenv("FLUME_DISABLE_TTL", "true")
	t.Cleanup(func() {
		os.Unsetenv("FLUME_REDIS_ADDR")
		os.Unsetenv("FLUME_DRAIN_INTERVAL")
		os.Unsetenv("FLUME_DISABLE_TTL")
	})
	FromEnv(&cfg)
	if cfg.RedisAddr != "redis.internal:6379" {
		t.Fatalf("env override addr")
	}
	if cfg.DrainIntervalSeconds != 15 {
		t.Fatalf("env override interval")
	}
	if !cfg.DisableTTL {
		t.Fatalf("env override disable ttl")
	}
}

func TestValidateTTLTooShort(t *testing.T) {
	cfg := Default()
	cfg.DrainIntervalSeconds = 60
	cfg.TTLSeconds = 120 // under the 5x absolute minimum
	if _, err := cfg.Validate(); err == nil {
		t.Fatalf("expected hard error for unsafe TTL")
	}
}

func TestValidateTTLThinMargin(t *testing.T) {
	cfg := Default()
	cfg.DrainIntervalSeconds = 60
	cfg.TTLSeconds = 600 // above 5x, below the recommended 100x
	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("thin margin should warn, not fail: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "recommended") {
		t.Fatalf("expected a thin-margin warning, got %v", warnings)
	}
}

func TestValidateDisabledTTLWarns(t *testing.T) {
	cfg := Default()
	cfg.DisableTTL = true
	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("disabled TTL is allowed: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "drainer") {
		t.Fatalf("expected a drainer-only-cleanup warning, got %v", warnings)
	}
}

func TestValidateRejectsBadCore(t *testing.T) {
	cfg := Default()
	cfg.DrainIntervalSeconds = 0
	if _, err := cfg.Validate(); err == nil {
		t.Fatalf("zero drain interval must fail")
	}
	cfg = Default()
	cfg.DrainConcurrency = 0
	if _, err := cfg.Validate(); err == nil {
		t.Fatalf("zero concurrency must fail")
	}
}
