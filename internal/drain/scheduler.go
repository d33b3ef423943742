package drain

import (
	"context"
	"time"

	"github.com/rzbill/flume/pkg/id"
	logpkg "github.com/rzbill/flume/pkg/log"
)

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	Worker   *Worker
	Logger   logpkg.Logger
	Interval time.Duration

	// MaxRetries caps in-scheduler retries per failed key; RetryDelay is
	// the wait before the retry round. Keys over the cap stay buffered
	// and are re-attempted from scratch on later passes.
	MaxRetries int
	RetryDelay time.Duration
}

// Scheduler runs drain passes on a fixed interval, one at a time. The
// timer is re-armed only after a pass completes, so passes never overlap.
// A single active instance is assumed; concurrent schedulers duplicate
// work (harmless with the at-least-once design) but are the caller's
// responsibility to avoid.
type Scheduler struct {
	worker     *Worker
	logger     logpkg.Logger
	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	tracker    *retryTracker
	passIDs    *id.Generator
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		worker:     opts.Worker,
		logger:     logger,
		interval:   interval,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		tracker:    newRetryTracker(),
		passIDs:    id.NewGenerator(),
	}
}

// Run blocks, executing one pass per interval until ctx is cancelled. An
// in-flight pass is allowed to finish (the worker cuts at key boundaries,
// never mid-key) before Run returns. Run itself never fails: pass errors
// are operational signals, and the next tick is the retry.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("drain scheduler started",
		logpkg.Dur("interval", s.interval),
		logpkg.Int("max_retries", s.maxRetries),
		logpkg.Dur("retry_delay", s.retryDelay))

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("drain scheduler stopped")
			return
		case <-timer.C:
		}
		s.runOnce(ctx)
		timer.Reset(s.interval)
	}
}

// runOnce executes one pass plus its retry round.
func (s *Scheduler) runOnce(ctx context.Context) {
	plog := s.logger.With(logpkg.Str("pass", s.passIDs.Next().String()))
	start := time.Now()

	stats, err := s.worker.RunPass(ctx)
	if err != nil {
		// Enumeration failed: nothing was read or deleted. The next
		// scheduled pass is the retry.
		plog.Error("enumeration failed; skipping pass", logpkg.Err(err))
		return
	}

	s.tracker.reconcile(stats.FailedKeys)
	retryable := make([]string, 0, len(stats.FailedKeys))
	for _, key := range stats.FailedKeys {
		attempt := s.tracker.increment(key)
		if s.tracker.shouldRetry(key, s.maxRetries) {
			retryable = append(retryable, key)
			plog.Warn("key failed; will retry",
				logpkg.Str("key", key),
				logpkg.Int("attempt", attempt),
				logpkg.Int("max_retries", s.maxRetries))
		} else {
			plog.Error("key exceeded retry budget; leaving buffered for future passes",
				logpkg.Str("key", key),
				logpkg.Int("attempts", attempt))
		}
	}

	if len(retryable) > 0 && s.sleep(ctx, s.retryDelay) {
		for _, key := range retryable {
			if ctx.Err() != nil {
				break
			}
			if events, err := s.worker.DrainKey(ctx, key); err == nil {
				s.tracker.reset(key)
				stats.Drained++
				stats.Events += events
				stats.Failed--
			} else {
				s.tracker.increment(key)
			}
		}
	}

	plog.Info("drain pass complete",
		logpkg.Int("scanned", stats.Scanned),
		logpkg.Int("drained", stats.Drained),
		logpkg.Int("events", stats.Events),
		logpkg.Int("empty", stats.Empty),
		logpkg.Int("malformed", stats.Malformed),
		logpkg.Int("failed", stats.Failed),
		logpkg.Dur("took", time.Since(start)))
}

// sleep waits for d unless ctx ends first; reports whether the full wait
// elapsed.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
