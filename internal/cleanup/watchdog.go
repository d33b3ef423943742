package cleanup

import (
	"context"
	"time"

	"github.com/rzbill/flume/internal/buffer"
	logpkg "github.com/rzbill/flume/pkg/log"
)

// WatchdogOptions configures a Watchdog.
type WatchdogOptions struct {
	Store    *buffer.Store
	Logger   logpkg.Logger
	Pattern  string
	Interval time.Duration
}

// Watchdog periodically sweeps the buffered store for keys that still
// hold data. With key expiry disabled nothing else reclaims a key the
// drainer keeps missing, so the watchdog surfaces them in the logs. It
// never deletes anything itself: removal would lose data the drainer
// could still land.
type Watchdog struct {
	store    *buffer.Store
	logger   logpkg.Logger
	pattern  string
	interval time.Duration
}

// NewWatchdog creates a Watchdog.
func NewWatchdog(opts WatchdogOptions) *Watchdog {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Watchdog{
		store:    opts.Store,
		logger:   logger,
		pattern:  opts.Pattern,
		interval: interval,
	}
}

// Run blocks, sweeping once per interval until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	w.logger.Info("cleanup watchdog started", logpkg.Dur("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup watchdog stopped")
			return
		case <-ticker.C:
		}
		w.Sweep(ctx)
	}
}

// Sweep scans the keyspace once and returns the number of keys still
// holding buffered entries.
func (w *Watchdog) Sweep(ctx context.Context) int {
	keys, err := w.store.Enumerate(ctx, w.pattern)
	if err != nil {
		w.logger.Error("sweep enumeration failed", logpkg.Err(err))
		return 0
	}

	undrained := 0
	for _, key := range keys {
		n, err := w.store.Len(ctx, key)
		if err != nil {
			w.logger.Warn("sweep length check failed", logpkg.Str("key", key), logpkg.Err(err))
			continue
		}
		if n > 0 {
			undrained++
			w.logger.Warn("key holds undrained entries",
				logpkg.Str("key", key),
				logpkg.Int64("entries", n))
		}
	}

	if undrained > 0 {
		w.logger.Warn("sweep found undrained keys; check the drainer",
			logpkg.Int("keys", undrained))
	} else {
		w.logger.Debug("sweep clean", logpkg.Int("scanned", len(keys)))
	}
	return undrained
}
