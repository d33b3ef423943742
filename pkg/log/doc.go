// Package log provides Flume's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog via a custom handler that routes records through a
// formatter/output pipeline, so components keep a consistent output format
// while the slog ecosystem remains available underneath.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("drain"))
//	l.Info("pass complete", log.Int("keys", 12))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// JSON or text formatting. RedirectStdLog routes stdlib log output (used by
// some third-party libraries) through the facade.
package log
