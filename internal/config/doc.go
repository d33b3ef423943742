// Package config provides loading and environment overlay for Flume
// configuration. It exposes a Default() baseline, JSON file loading, and a
// FLUME_* env overlay, plus the TTL-vs-drain-interval safety validation.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/flume.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	warnings, err := cfg.Validate()
package config
