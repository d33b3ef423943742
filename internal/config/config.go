package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rzbill/flume/internal/partition"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	RedisAddr string `json:"redisAddr"`
	HTTPAddr  string `json:"httpAddr"`
	LogDir    string `json:"logDir"`

	KeyPattern    string `json:"keyPattern"`
	BucketSeconds int64  `json:"bucketSeconds"`

	TTLSeconds int64 `json:"ttlSeconds"`
	DisableTTL bool  `json:"disableTTL"`

	DrainIntervalSeconds int64 `json:"drainIntervalSeconds"`
	DrainConcurrency     int   `json:"drainConcurrency"`
	MaxRetries           int   `json:"maxRetries"`
	RetryDelaySeconds    int64 `json:"retryDelaySeconds"`

	OpTimeoutSeconds       int64 `json:"opTimeoutSeconds"`
	CleanupIntervalSeconds int64 `json:"cleanupIntervalSeconds"`

	RateLimitPerMinute int `json:"rateLimitPerMinute"`
	RateLimitBurst     int `json:"rateLimitBurst"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		RedisAddr:              "127.0.0.1:6379",
		HTTPAddr:               ":8080",
		LogDir:                 "./logs",
		KeyPattern:             partition.DefaultKeyPattern,
		BucketSeconds:          partition.DefaultBucketSeconds,
		TTLSeconds:             86400,
		DrainIntervalSeconds:   60,
		DrainConcurrency:       4,
		MaxRetries:             3,
		RetryDelaySeconds:      30,
		OpTimeoutSeconds:       5,
		CleanupIntervalSeconds: 3600,
		RateLimitPerMinute:     100,
		RateLimitBurst:         20,
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Duration accessors.

// TTL returns the buffered-key expiry (zero when disabled).
func (c Config) TTL() time.Duration {
	if c.DisableTTL {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// DrainInterval returns the scheduler tick interval.
func (c Config) DrainInterval() time.Duration {
	return time.Duration(c.DrainIntervalSeconds) * time.Second
}

// RetryDelay returns the wait before retrying failed keys within a pass.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// OpTimeout bounds each store/file operation.
func (c Config) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutSeconds) * time.Second
}

// CleanupInterval returns the undrained-key watchdog sweep interval.
func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// TTL safety margins relative to the drain interval. A TTL under the
// absolute minimum loses data whenever the drainer is slow; below the
// recommended multiple the TTL stops being a safety net.
const (
	ttlAbsoluteMinMultiple    = 5
	ttlRecommendedMinMultiple = 100
)

// Validate checks invariants between settings. It returns human-readable
// warnings for risky-but-allowed configurations and an error for
// configurations that will lose data.
func (c Config) Validate() ([]string, error) {
	var warnings []string

	if c.DrainIntervalSeconds <= 0 {
		return nil, fmt.Errorf("drainIntervalSeconds must be positive, got %d", c.DrainIntervalSeconds)
	}
	if c.BucketSeconds <= 0 {
		return nil, fmt.Errorf("bucketSeconds must be positive, got %d", c.BucketSeconds)
	}
	if c.DrainConcurrency <= 0 {
		return nil, fmt.Errorf("drainConcurrency must be positive, got %d", c.DrainConcurrency)
	}

	if c.DisableTTL {
		warnings = append(warnings,
			"TTL disabled: cleanup relies entirely on the drainer; keys accumulate in the store if it fails")
		return warnings, nil
	}
	if c.TTLSeconds <= 0 {
		warnings = append(warnings,
			"TTL not set: cleanup relies entirely on the drainer")
		return warnings, nil
	}

	absoluteMin := c.DrainIntervalSeconds * ttlAbsoluteMinMultiple
	recommendedMin := c.DrainIntervalSeconds * ttlRecommendedMinMultiple
	if c.TTLSeconds < absoluteMin {
		return nil, fmt.Errorf(
			"ttlSeconds (%d) is dangerously short for drain interval (%ds): keys can expire before a pass runs; minimum %d",
			c.TTLSeconds, c.DrainIntervalSeconds, absoluteMin)
	}
	if c.TTLSeconds < recommendedMin {
		warnings = append(warnings, fmt.Sprintf(
			"ttlSeconds (%d) is below the recommended %dx drain interval (%d): the TTL safety margin is thin",
			c.TTLSeconds, ttlRecommendedMinMultiple, recommendedMin))
	}
	return warnings, nil
}
