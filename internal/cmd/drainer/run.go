package drainerrun

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rzbill/flume/internal/cleanup"
	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/drain"
	"github.com/rzbill/flume/internal/journal"
	"github.com/rzbill/flume/internal/runtime"
	logpkg "github.com/rzbill/flume/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	Config cfgpkg.Config
}

// Run starts the drain scheduler (plus the cleanup watchdog when key
// expiry is disabled) and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCfg := &logpkg.Config{
		Level:  getenvDefault("FLUME_LOG_LEVEL", "info"),
		Format: getenvDefault("FLUME_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(logCfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	warnings, err := opts.Config.Validate()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		procLogger.Warn(w)
	}

	if opts.Config.LogDir == "" {
		opts.Config.LogDir = cfgpkg.DefaultLogDir()
	}

	rt, err := runtime.Open(runtime.Options{Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.CheckHealth(sctx); err != nil {
		return err
	}

	procLogger.Info("Starting Flume drainer",
		logpkg.Str("redis", opts.Config.RedisAddr),
		logpkg.Str("log_dir", opts.Config.LogDir),
		logpkg.Str("pattern", opts.Config.KeyPattern),
		logpkg.Dur("interval", opts.Config.DrainInterval()),
		logpkg.Int("concurrency", opts.Config.DrainConcurrency))

	worker := drain.NewWorker(drain.WorkerOptions{
		Store:       rt.Store(),
		Journal:     journal.NewWriter(),
		Codec:       rt.Codec(),
		Logger:      procLogger.With(logpkg.Component("drain")),
		Pattern:     opts.Config.KeyPattern,
		BaseDir:     opts.Config.LogDir,
		Concurrency: opts.Config.DrainConcurrency,
	})
	scheduler := drain.NewScheduler(drain.SchedulerOptions{
		Worker:     worker,
		Logger:     procLogger.With(logpkg.Component("drain")),
		Interval:   opts.Config.DrainInterval(),
		MaxRetries: opts.Config.MaxRetries,
		RetryDelay: opts.Config.RetryDelay(),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(sctx)
	}()

	if opts.Config.DisableTTL {
		watchdog := cleanup.NewWatchdog(cleanup.WatchdogOptions{
			Store:    rt.Store(),
			Logger:   procLogger.With(logpkg.Component("cleanup")),
			Pattern:  opts.Config.KeyPattern,
			Interval: opts.Config.CleanupInterval(),
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			watchdog.Run(sctx)
		}()
	}

	<-sctx.Done()
	wg.Wait()
	return nil
}
