package serverrun

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/runtime"
	httpserver "github.com/rzbill/flume/internal/server/http"
	logpkg "github.com/rzbill/flume/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the ingest HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context. We
	// layer a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
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

	rt, err := runtime.Open(runtime.Options{Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.CheckHealth(sctx); err != nil {
		return err
	}

	addr := opts.HTTPAddr
	if addr == "" {
		addr = opts.Config.HTTPAddr
	}
	procLogger.Info("Starting Flume server",
		logpkg.Str("http", addr),
		logpkg.Str("redis", opts.Config.RedisAddr),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format))

	hsrv := httpserver.New(rt, procLogger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, addr); err != nil && sctx.Err() == nil {
			procLogger.Error("http server error", logpkg.Err(err))
		}
	}()

	<-sctx.Done()
	hsrv.Close()
	wg.Wait()
	return nil
}
