package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLUME_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("FLUME_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("FLUME_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("FLUME_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("FLUME_KEY_PATTERN"); v != "" {
		cfg.KeyPattern = v
	}
	if v := os.Getenv("FLUME_BUCKET_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.BucketSeconds = n
		}
	}
	if v := os.Getenv("FLUME_TTL_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TTLSeconds = n
		}
	}
	if v := os.Getenv("FLUME_DISABLE_TTL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DisableTTL = b
		}
	}
	if v := os.Getenv("FLUME_DRAIN_INTERVAL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.DrainIntervalSeconds = n
		}
	}
	if v := os.Getenv("FLUME_DRAIN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DrainConcurrency = n
		}
	}
	if v := os.Getenv("FLUME_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("FLUME_RETRY_DELAY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RetryDelaySeconds = n
		}
	}
	if v := os.Getenv("FLUME_OP_TIMEOUT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.OpTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FLUME_CLEANUP_INTERVAL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.CleanupIntervalSeconds = n
		}
	}
	if v := os.Getenv("FLUME_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("FLUME_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
}
