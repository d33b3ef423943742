package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	drainerrun "github.com/rzbill/flume/internal/cmd/drainer"
	serverrun "github.com/rzbill/flume/internal/cmd/server"
	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/event"
	logpkg "github.com/rzbill/flume/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// initialize logger for CLI
	// Respect FLUME_LOG_LEVEL for both CLI and service start output
	level := os.Getenv("FLUME_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "flume",
		Short: "Flume buffered event log CLI",
		Long:  "Flume buffers events in Redis and drains them to jsonl files. This CLI manages the ingest server, the drainer, and basic client operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Ingest server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the flume ingest server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			httpAddr, _ := cmd.Flags().GetString("http")
			redisAddr, _ := cmd.Flags().GetString("redis")
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if logLevel != "" {
				_ = os.Setenv("FLUME_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("FLUME_LOG_FORMAT", logFormat)
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if redisAddr != "" {
				cfg.RedisAddr = redisAddr
			}
			if err := serverrun.Run(ctx, serverrun.Options{HTTPAddr: httpAddr, Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default from config, :8080)")
	serverStartCmd.Flags().String("redis", "", "Redis address (default from config, 127.0.0.1:6379)")
	serverStartCmd.Flags().String("config", os.Getenv("FLUME_CONFIG"), "Path to JSON config file")
	serverStartCmd.Flags().String("log-level", os.Getenv("FLUME_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("FLUME_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// drainer start
	drainerCmd := &cobra.Command{Use: "drainer", Short: "Drainer commands"}
	drainerStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the flume drainer",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			redisAddr, _ := cmd.Flags().GetString("redis")
			logDir, _ := cmd.Flags().GetString("log-dir")
			pattern, _ := cmd.Flags().GetString("pattern")
			intervalSec, _ := cmd.Flags().GetInt64("interval")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if logLevel != "" {
				_ = os.Setenv("FLUME_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("FLUME_LOG_FORMAT", logFormat)
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if redisAddr != "" {
				cfg.RedisAddr = redisAddr
			}
			if logDir != "" {
				cfg.LogDir = logDir
			}
			if pattern != "" {
				cfg.KeyPattern = pattern
			}
			if intervalSec > 0 {
				cfg.DrainIntervalSeconds = intervalSec
			}
			if concurrency > 0 {
				cfg.DrainConcurrency = concurrency
			}
			if err := drainerrun.Run(ctx, drainerrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("drainer error: %w", err)
			}
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	drainerStartCmd.Flags().String("redis", "", "Redis address (default from config, 127.0.0.1:6379)")
	drainerStartCmd.Flags().String("log-dir", "", "Directory for drained jsonl files (if not specified, uses OS-specific application data directory)")
	drainerStartCmd.Flags().String("pattern", "", "Key pattern to drain (default logs:user_*:*)")
	drainerStartCmd.Flags().Int64("interval", 0, "Drain interval in seconds (default 60)")
	drainerStartCmd.Flags().Int("concurrency", 0, "Keys drained in parallel per pass (default 4)")
	drainerStartCmd.Flags().String("config", os.Getenv("FLUME_CONFIG"), "Path to JSON config file")
	drainerStartCmd.Flags().String("log-level", os.Getenv("FLUME_LOG_LEVEL"), "Log level: debug|info|warn|error")
	drainerStartCmd.Flags().String("log-format", os.Getenv("FLUME_LOG_FORMAT"), "Log format: text|json (default text)")
	drainerCmd.AddCommand(drainerStartCmd)
	rootCmd.AddCommand(drainerCmd)

	// log send / log buffered
	logCmd := &cobra.Command{Use: "log", Short: "Client operations against a running server"}
	logSendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send one event to the ingest endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			name, _ := cmd.Flags().GetString("event")
			ts, _ := cmd.Flags().GetInt64("ts")
			if ts == 0 {
				ts = time.Now().Unix()
			}
			b, _ := json.Marshal(event.Event{UserID: user, Event: name, Timestamp: ts})
			resp, err := http.Post(apiURL()+"/v1/logs", "application/json", bytes.NewReader(b))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Println("status:", resp.Status)
			fmt.Println(string(bytes.TrimSpace(body)))
			return nil
		},
	}
	logSendCmd.Flags().String("user", "", "Owner identifier")
	logSendCmd.Flags().String("event", "", "Event name")
	logSendCmd.Flags().Int64("ts", 0, "Unix-seconds timestamp (default now)")
	_ = logSendCmd.MarkFlagRequired("user")
	_ = logSendCmd.MarkFlagRequired("event")
	logCmd.AddCommand(logSendCmd)

	logBufferedCmd := &cobra.Command{
		Use:   "buffered",
		Short: "Show not-yet-drained events for an owner/time pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			ts, _ := cmd.Flags().GetInt64("ts")
			if ts == 0 {
				ts = time.Now().Unix()
			}
			resp, err := http.Get(fmt.Sprintf("%s/v1/logs/buffered?user=%s&ts=%d", apiURL(), user, ts))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Println("status:", resp.Status)
			fmt.Println(string(bytes.TrimSpace(body)))
			return nil
		},
	}
	logBufferedCmd.Flags().String("user", "", "Owner identifier")
	logBufferedCmd.Flags().Int64("ts", 0, "Unix-seconds timestamp (default now)")
	_ = logBufferedCmd.MarkFlagRequired("user")
	logCmd.AddCommand(logBufferedCmd)
	rootCmd.AddCommand(logCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}

func apiURL() string {
	if v := os.Getenv("FLUME_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
